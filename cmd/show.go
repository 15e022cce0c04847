package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/edwinckc/self-reflection-tool/internal/analysis"
	"github.com/edwinckc/self-reflection-tool/internal/config"
	"github.com/edwinckc/self-reflection-tool/internal/rubric"
	"github.com/edwinckc/self-reflection-tool/internal/store"
)

var flagShowEmail string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored assessment",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		email := firstNonEmpty(flagShowEmail, cfg.Email)
		if email == "" {
			return fmt.Errorf("no email set; pass --email or set it in the config")
		}

		st, err := store.Open(config.StorePath(), log)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer st.Close()

		a := st.LoadByUser(cmd.Context(), email)
		if a == nil {
			fmt.Printf("No assessment stored for %s. Run `reflect generate` first.\n", email)
			return nil
		}

		level, err := rubric.ParseLevel(cfg.Level)
		if err != nil {
			level = rubric.Core
		}
		fmt.Print(renderAssessment(a, level))
		return nil
	},
}

func init() {
	showCmd.Flags().StringVar(&flagShowEmail, "email", "", "email identifying the assessment owner (default: from config)")
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"})

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"})

	categoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"})
)

func renderAssessment(a *analysis.Assessment, level rubric.Level) string {
	mappings := make(map[string]analysis.CategoryMapping, len(a.Mappings))
	for _, m := range a.Mappings {
		mappings[m.ClusterID] = m
	}
	questions := make(map[string]analysis.QuestionSet, len(a.Questions))
	for _, q := range a.Questions {
		questions[q.ClusterID] = q
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%s\n", titleStyle.Render(fmt.Sprintf("Self-assessment for %s", a.UserEmail)))
	fmt.Fprintf(&sb, "%s\n\n", dimStyle.Render(fmt.Sprintf("%d projects · level %s · generated %s",
		len(a.Clusters), level, a.GeneratedAt.Format("Jan 2 15:04"))))

	for i, c := range a.Clusters {
		fmt.Fprintf(&sb, "%s\n", titleStyle.Render(fmt.Sprintf("%d. %s", i+1, c.Name)))
		if c.Summary != "" {
			fmt.Fprintf(&sb, "   %s\n", c.Summary)
		}
		fmt.Fprintf(&sb, "   %s\n", dimStyle.Render(fmt.Sprintf("%d PRs", len(c.PRs))))

		if m, ok := mappings[c.ID]; ok {
			for _, cat := range m.Categories {
				fmt.Fprintf(&sb, "   %s %s\n",
					categoryStyle.Render(fmt.Sprintf("[%s/%s]", cat.CategoryID, cat.Relevance)),
					cat.Evidence)
			}
		}

		if q, ok := questions[c.ID]; ok && len(q.Questions) > 0 {
			sb.WriteString("\n")
			for _, question := range q.Questions {
				fmt.Fprintf(&sb, "   • %s\n", question.Text)
				if question.Context != "" {
					fmt.Fprintf(&sb, "     %s\n", dimStyle.Render(question.Context))
				}
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
