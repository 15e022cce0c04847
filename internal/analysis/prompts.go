package analysis

import (
	"fmt"
	"strings"

	"github.com/edwinckc/self-reflection-tool/internal/github"
	"github.com/edwinckc/self-reflection-tool/internal/rubric"
)

const prBodyLimit = 200

const clusterPromptFormat = `You are helping an engineer prepare a performance-review self-assessment. Group their merged pull requests into 3-8 coherent projects.

Group by repository, title-pattern similarity, time proximity, or cross-cutting topic. Every PR index below must appear in exactly one cluster; use a "Miscellaneous" cluster for anything that fits nowhere else.

Pull requests (index. [repo] title):
%s

Respond with a JSON array ONLY, no prose. Each element:
{"id": "short-slug", "name": "Project name", "summary": "1-2 sentence summary", "prIndices": [0, 1]}`

const mappingPromptFormat = `You are mapping an engineer's projects onto their level's expectation rubric.

Rubric categories (id (name): description):
%s
Valid category ids: %s

Projects:
%s

For EVERY project, assign the 2-4 most relevant category ids with a relevance tier ("high", "medium" or "low") and one sentence of evidence drawn from the PR work. Use only the valid category ids listed above.

Respond with a JSON array ONLY, no prose. Each element:
{"clusterId": "...", "categories": [{"categoryId": "...", "relevance": "high", "evidence": "..."}]}`

const questionPromptFormat = `You are preparing reflection questions for an engineer's self-assessment about one project.

Project: %s
Summary: %s

Representative pull requests:
%s

Rubric categories this project maps to:
%s

Write 2-4 open-ended reflection questions that reference the concrete PR work and connect it to business impact, collaboration, and challenges overcome. Each question needs a short context sentence explaining why it is worth answering.

Respond with a JSON array ONLY, no prose. Each element:
{"text": "...", "context": "..."}`

func buildClusterPrompt(prs []github.PullRequest) string {
	var sb strings.Builder
	for i, pr := range prs {
		merged := "unknown date"
		if pr.MergedAt != nil {
			merged = pr.MergedAt.Format("2006-01-02")
		}
		fmt.Fprintf(&sb, "%d. [%s] %s (merged %s, +%d/-%d)\n", i, pr.Repo, pr.Title, merged, pr.Additions, pr.Deletions)
		if body := truncate(pr.Body, prBodyLimit); body != "" {
			fmt.Fprintf(&sb, "   %s\n", body)
		}
	}
	return fmt.Sprintf(clusterPromptFormat, sb.String())
}

func buildMappingPrompt(level rubric.Level, clusters []Cluster) string {
	var sb strings.Builder
	for _, c := range clusters {
		fmt.Fprintf(&sb, "- id: %s\n  name: %s\n  summary: %s\n  PRs: %d across %s\n",
			c.ID, c.Name, c.Summary, len(c.PRs), strings.Join(distinctRepos(c.PRs), ", "))
		for i, pr := range c.PRs {
			if i >= 10 {
				break
			}
			fmt.Fprintf(&sb, "    * %s\n", pr.Title)
		}
	}
	return fmt.Sprintf(mappingPromptFormat,
		rubric.PromptText(level),
		strings.Join(rubric.CategoryIDs(level), ", "),
		sb.String())
}

func buildQuestionPrompt(c Cluster, mapping *CategoryMapping) string {
	var prList strings.Builder
	for i, pr := range c.PRs {
		if i >= 8 {
			break
		}
		fmt.Fprintf(&prList, "- [%s] %s\n", pr.Repo, pr.Title)
	}

	var catList strings.Builder
	if mapping != nil {
		for _, a := range mapping.Categories {
			fmt.Fprintf(&catList, "- %s: %s\n", a.CategoryID, a.Evidence)
		}
	}
	if catList.Len() == 0 {
		catList.WriteString("- (none mapped)\n")
	}

	return fmt.Sprintf(questionPromptFormat, c.Name, c.Summary, prList.String(), catList.String())
}

func distinctRepos(prs []github.PullRequest) []string {
	seen := make(map[string]bool)
	var repos []string
	for _, pr := range prs {
		if !seen[pr.Repo] {
			seen[pr.Repo] = true
			repos = append(repos, pr.Repo)
		}
	}
	return repos
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
