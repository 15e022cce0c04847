// Package rubric defines the fixed expectation handbook used to evaluate a
// project's significance: three engineer levels, each with its own ordered
// set of categories.
package rubric

import (
	"fmt"
	"strings"
)

// Level selects which expectation set applies to the engineer under review.
type Level string

const (
	Foundation Level = "foundation"
	Core       Level = "core"
	Peak       Level = "peak"
)

// AllLevels returns the valid levels in ascending order.
func AllLevels() []Level {
	return []Level{Foundation, Core, Peak}
}

// ParseLevel maps a CLI/config string to a Level.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range AllLevels() {
		if l == valid {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown level %q (valid: foundation, core, peak)", s)
}

// Category is one expectation the handbook evaluates work against.
type Category struct {
	ID          string
	Name        string
	Description string
}

var categories = map[Level][]Category{
	Foundation: {
		{"technical-execution", "Technical Execution", "Delivers well-scoped tasks correctly and on time with guidance."},
		{"code-quality", "Code Quality", "Writes readable, tested code and responds well to review feedback."},
		{"learning-growth", "Learning & Growth", "Picks up new tools, codebases and domain knowledge quickly."},
		{"collaboration", "Collaboration", "Communicates progress clearly and works effectively within the team."},
		{"ownership", "Ownership", "Follows work through to production and fixes what breaks."},
	},
	Core: {
		{"technical-craft", "Technical Craft", "Designs and delivers medium-to-large features independently with sound tradeoffs."},
		{"project-leadership", "Project Leadership", "Drives a workstream end to end: scoping, sequencing, unblocking others."},
		{"collaboration-mentoring", "Collaboration & Mentoring", "Raises the team through reviews, pairing and knowledge sharing."},
		{"business-impact", "Business Impact", "Connects engineering work to user or company outcomes."},
		{"operational-excellence", "Operational Excellence", "Improves reliability, observability and incident response of owned systems."},
	},
	Peak: {
		{"technical-strategy", "Technical Strategy", "Sets multi-quarter technical direction across teams and systems."},
		{"org-influence", "Organizational Influence", "Shapes engineering practice and decisions beyond their immediate team."},
		{"force-multiplier", "Force Multiplier", "Grows senior engineers and removes systemic bottlenecks."},
		{"business-impact", "Business Impact", "Creates or protects significant business value through technical choices."},
		{"innovation", "Innovation", "Introduces approaches that meaningfully change what the organization can build."},
	},
}

// Categories returns the category list for a level in canonical order.
func Categories(l Level) []Category {
	return categories[l]
}

// CategoryIDs returns the valid category-id set for a level.
func CategoryIDs(l Level) []string {
	cats := categories[l]
	ids := make([]string, len(cats))
	for i, c := range cats {
		ids[i] = c.ID
	}
	return ids
}

// Has reports whether id is a valid category for the level.
func Has(l Level, id string) bool {
	for _, c := range categories[l] {
		if c.ID == id {
			return true
		}
	}
	return false
}

// PromptText renders the level's rubric for inclusion in a model prompt.
func PromptText(l Level) string {
	var sb strings.Builder
	for _, c := range categories[l] {
		fmt.Fprintf(&sb, "- %s (%s): %s\n", c.ID, c.Name, c.Description)
	}
	return sb.String()
}
