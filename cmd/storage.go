package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/edwinckc/self-reflection-tool/internal/cache"
	"github.com/edwinckc/self-reflection-tool/internal/config"
	"github.com/edwinckc/self-reflection-tool/internal/store"
)

var flagPruneOlderThan string

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove stale PR snapshots from the local cache",
	Long: `Delete cached PR snapshots older than the validity window and reclaim
disk space. Snapshots expire after 24 hours anyway; pruning just removes
the dead rows.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := cache.Open(config.CachePath())
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer db.Close()

		maxAge := 24 * time.Hour
		if flagPruneOlderThan != "" {
			d, err := parseAge(flagPruneOlderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than value: %w", err)
			}
			maxAge = d
		}

		deleted, err := db.Prune(maxAge)
		if err != nil {
			return fmt.Errorf("pruning: %w", err)
		}

		if deleted == 0 {
			fmt.Println("Nothing to prune.")
		} else {
			fmt.Printf("Pruned %d snapshot(s) older than %s.\n", deleted, formatDuration(maxAge))
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache and store statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cachePath := config.CachePath()
		db, err := cache.Open(cachePath)
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer db.Close()

		snapshots, size, err := db.Stats(cachePath)
		if err != nil {
			return fmt.Errorf("reading cache stats: %w", err)
		}

		st, err := store.Open(config.StorePath(), log)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer st.Close()

		assessments, err := st.Count(cmd.Context())
		if err != nil {
			return fmt.Errorf("reading store stats: %w", err)
		}

		fmt.Printf("Cache: %s\n", cachePath)
		fmt.Printf("Snapshots: %d\n", snapshots)
		fmt.Printf("Size: %s\n", formatBytes(size))
		fmt.Printf("Store: %s\n", config.StorePath())
		fmt.Printf("Assessments: %d\n", assessments)
		return nil
	},
}

func init() {
	pruneCmd.Flags().StringVar(&flagPruneOlderThan, "older-than", "", "override snapshot age cutoff (e.g., 12h, 2d)")
}

// parseAge parses a duration, additionally supporting "Nd" day syntax.
func parseAge(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func formatDuration(d time.Duration) string {
	if days := int(d.Hours() / 24); days > 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
