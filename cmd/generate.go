package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/edwinckc/self-reflection-tool/internal/analysis"
	"github.com/edwinckc/self-reflection-tool/internal/cache"
	"github.com/edwinckc/self-reflection-tool/internal/config"
	"github.com/edwinckc/self-reflection-tool/internal/github"
	"github.com/edwinckc/self-reflection-tool/internal/llm"
	"github.com/edwinckc/self-reflection-tool/internal/rubric"
	"github.com/edwinckc/self-reflection-tool/internal/store"
	"github.com/edwinckc/self-reflection-tool/internal/tui"
)

var (
	flagUser    string
	flagEmail   string
	flagStart   string
	flagEnd     string
	flagLevel   string
	flagRefresh bool
	flagPRURLs  []string
	flagPlain   bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Fetch merged PRs and generate a self-assessment",
	Long: `Pull your merged pull requests for the review period, group them into
projects, map each project onto your level's rubric, and generate
reflection questions.

PR data is cached for 24 hours per review period; use --refresh to force
a new fetch, or --pr-urls to skip the API and paste PR links directly.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&flagUser, "user", "", "GitHub username (default: from config)")
	generateCmd.Flags().StringVar(&flagEmail, "email", "", "email identifying the assessment owner (default: from config)")
	generateCmd.Flags().StringVar(&flagStart, "start", "", "review period start, YYYY-MM-DD (default: 6 months ago)")
	generateCmd.Flags().StringVar(&flagEnd, "end", "", "review period end, YYYY-MM-DD (default: today)")
	generateCmd.Flags().StringVar(&flagLevel, "level", "", "rubric level: foundation, core or peak (default: from config)")
	generateCmd.Flags().BoolVar(&flagRefresh, "refresh", false, "ignore cached PR data and fetch again")
	generateCmd.Flags().StringSliceVar(&flagPRURLs, "pr-urls", nil, "comma-separated PR URLs to analyze instead of searching")
	generateCmd.Flags().BoolVar(&flagPlain, "plain", false, "plain progress output instead of the live view")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	email := firstNonEmpty(flagEmail, cfg.Email)
	if email == "" {
		return fmt.Errorf("no email set; pass --email or set it in the config")
	}
	user := firstNonEmpty(flagUser, cfg.GitHub.Username)

	level, err := rubric.ParseLevel(firstNonEmpty(flagLevel, cfg.Level))
	if err != nil {
		return err
	}

	start, end := reviewPeriod(flagStart, flagEnd, time.Now())

	if !cfg.AIEnabled() {
		return fmt.Errorf("AI is not configured; set ai.api_key in the config or REFLECT_AI_KEY")
	}
	gen, err := llm.New(cfg.AI, cfg.AIKey())
	if err != nil {
		return err
	}

	db, err := cache.Open(config.CachePath())
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer db.Close()

	st, err := store.Open(config.StorePath(), log)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	// Durable sync is optional and never blocks the local path.
	var remote *store.Remote
	if dsn := cfg.SyncDSN(); dsn != "" {
		remote, err = store.OpenRemote(cmd.Context(), dsn, log)
		if err != nil {
			log.Warnf("sync store unavailable: %v", err)
		} else {
			defer remote.Close()
		}
	}

	pipe := analysis.NewPipeline(gen, st, log)

	var assessment *analysis.Assessment
	work := func(report func(phase, detail string)) error {
		ctx := cmd.Context()

		prs, err := loadPRs(ctx, cfg, db, remote, user, email, start, end, report)
		if err != nil {
			return err
		}
		if len(prs) == 0 {
			return fmt.Errorf("no merged PRs found for %s between %s and %s", user, start, end)
		}

		assessment, err = pipe.Run(ctx, prs, level, email, func(p analysis.Progress) {
			report(fmt.Sprintf("Stage %d/3: %s", p.Step, p.Label), p.Detail)
		})
		return err
	}

	if flagPlain {
		err = runPlain(work)
	} else {
		err = tui.Run(work)
	}
	if err != nil {
		return err
	}

	if remote != nil {
		remote.MirrorAssessment(assessment)
	}

	fmt.Print(renderAssessment(assessment, level))
	return nil
}

// loadPRs returns the PR list for the run: pasted URLs if given, then a
// fresh-enough cached snapshot, then a full search + enrichment fetch.
func loadPRs(ctx context.Context, cfg *config.Config, db *cache.Cache, remote *store.Remote, user, email, start, end string, report func(phase, detail string)) ([]github.PullRequest, error) {
	if len(flagPRURLs) > 0 {
		prs := github.FromURLs(flagPRURLs)
		if len(prs) == 0 {
			return nil, fmt.Errorf("no usable PR URLs in --pr-urls")
		}
		return prs, nil
	}

	key := cache.Key(email)
	if !flagRefresh {
		snap, err := db.LoadSnapshot(key)
		if err != nil {
			log.Warnf("reading cached PRs: %v", err)
		}
		if snap.Fresh(time.Now(), start, end) {
			report(fmt.Sprintf("Using %d cached PRs", len(snap.PRs)), "")
			return snap.PRs, nil
		}
	}

	if user == "" {
		return nil, fmt.Errorf("no GitHub username set; pass --user or set it in the config")
	}
	client := github.New(cfg.GitHubToken(), log)

	hits, err := client.SearchMerged(ctx, user, start, end, func(p github.Progress) {
		report(fmt.Sprintf("Fetching PRs (%d/%d)", p.Fetched, p.Total), "")
	})
	if err != nil {
		return nil, err
	}

	prs := client.Enrich(ctx, hits, func(p github.Progress) {
		report(fmt.Sprintf("Enriching PRs (%d/%d)", p.Enriching, p.Total), "")
	})

	snap := &cache.Snapshot{
		PRs:       prs,
		FetchedAt: time.Now().UnixMilli(),
		DateRange: cache.DateRange{Start: start, End: end},
	}
	if err := db.SaveSnapshot(key, snap); err != nil {
		log.Warnf("caching PRs: %v", err)
	}
	if remote != nil {
		remote.MirrorSnapshot(key, snap)
	}
	return prs, nil
}

// runPlain prints one line per phase change instead of a live view.
func runPlain(work func(report func(phase, detail string)) error) error {
	var lastPhase string
	return work(func(phase, detail string) {
		if phase != "" && phase != lastPhase {
			lastPhase = phase
			fmt.Println(phase)
		}
	})
}

// reviewPeriod fills in defaults: the last six months ending today.
func reviewPeriod(start, end string, now time.Time) (string, string) {
	if end == "" {
		end = now.Format("2006-01-02")
	}
	if start == "" {
		start = now.AddDate(0, -6, 0).Format("2006-01-02")
	}
	return start, end
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
