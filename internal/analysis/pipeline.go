package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/edwinckc/self-reflection-tool/internal/github"
	"github.com/edwinckc/self-reflection-tool/internal/llm"
	"github.com/edwinckc/self-reflection-tool/internal/parse"
	"github.com/edwinckc/self-reflection-tool/internal/rubric"
)

// Generation temperatures: low for structured extraction, higher for
// open-ended question writing.
const (
	structuredTemperature = 0.3
	creativeTemperature   = 0.5
)

// Progress reports pipeline stage transitions and streamed text chunks.
type Progress struct {
	Step   int
	Label  string
	Detail string
}

// Store persists the finished assessment.
type Store interface {
	Upsert(ctx context.Context, a *Assessment) error
}

// Pipeline runs the three sequential analysis stages: cluster PRs into
// projects, map projects onto the rubric, generate reflection questions
// per project. Each stage's output feeds the next; no stage starts before
// the previous one completes.
type Pipeline struct {
	gen   llm.Generator
	store Store
	log   logrus.FieldLogger
	now   func() time.Time
}

// NewPipeline creates a Pipeline. store may be nil to skip persistence.
func NewPipeline(gen llm.Generator, store Store, log logrus.FieldLogger) *Pipeline {
	return &Pipeline{gen: gen, store: store, log: log, now: time.Now}
}

// Run executes all three stages and assembles the assessment. The result
// is returned even when persistence fails; that failure is only logged.
func (p *Pipeline) Run(ctx context.Context, prs []github.PullRequest, level rubric.Level, userEmail string, onProgress func(Progress)) (*Assessment, error) {
	clusters, err := p.clusterStage(ctx, prs, onProgress)
	if err != nil {
		return nil, err
	}

	mappings, err := p.mappingStage(ctx, level, clusters, onProgress)
	if err != nil {
		return nil, err
	}

	questions, err := p.questionStage(ctx, clusters, mappings, onProgress)
	if err != nil {
		return nil, err
	}

	a := &Assessment{
		ID:          uuid.NewString(),
		UserEmail:   userEmail,
		Clusters:    clusters,
		Mappings:    mappings,
		Questions:   questions,
		GeneratedAt: p.now(),
	}

	if p.store != nil {
		if err := p.store.Upsert(ctx, a); err != nil {
			p.log.Warnf("persisting assessment: %v", err)
		}
	}
	return a, nil
}

// clusterStage partitions the PR list into 3-8 named projects. Zero PRs
// short-circuits to zero clusters with no generation call.
func (p *Pipeline) clusterStage(ctx context.Context, prs []github.PullRequest, onProgress func(Progress)) ([]Cluster, error) {
	if len(prs) == 0 {
		return nil, nil
	}

	text, err := p.generate(ctx, buildClusterPrompt(prs), structuredTemperature, 1, "Grouping work into projects", onProgress)
	if err != nil {
		return nil, fmt.Errorf("clustering stage: %w", err)
	}

	var raws []rawCluster
	parse.Decode(text, &raws, p.log)
	return p.resolveClusters(raws, prs), nil
}

// resolveClusters maps model-returned PR indices back to PR records.
// Out-of-range and repeated indices are dropped; clusters left without any
// PR are dropped; indices the model never assigned are collected into a
// synthesized catch-all cluster so no PR is silently lost.
func (p *Pipeline) resolveClusters(raws []rawCluster, prs []github.PullRequest) []Cluster {
	assigned := make([]bool, len(prs))
	var clusters []Cluster

	for _, rc := range raws {
		var members []github.PullRequest
		for _, idx := range rc.PRIndices {
			if idx < 0 || idx >= len(prs) || assigned[idx] {
				continue
			}
			assigned[idx] = true
			members = append(members, prs[idx])
		}
		if len(members) == 0 {
			continue
		}
		id := rc.ID
		if id == "" {
			id = fmt.Sprintf("cluster-%d", len(clusters)+1)
		}
		name := rc.Name
		if name == "" {
			name = id
		}
		clusters = append(clusters, Cluster{ID: id, Name: name, Summary: rc.Summary, PRs: members})
	}

	var leftover []github.PullRequest
	for i, ok := range assigned {
		if !ok {
			leftover = append(leftover, prs[i])
		}
	}
	if len(leftover) > 0 {
		p.log.Debugf("%d PRs unassigned by the model, adding catch-all cluster", len(leftover))
		clusters = append(clusters, Cluster{
			ID:      "misc",
			Name:    "Miscellaneous",
			Summary: "Work that did not fit one of the inferred projects.",
			PRs:     leftover,
		})
	}
	return clusters
}

// mappingStage assigns rubric categories to every cluster in a single
// generation call. Unknown category ids are rejected, relevance tiers are
// normalized, and at most four categories survive per cluster.
func (p *Pipeline) mappingStage(ctx context.Context, level rubric.Level, clusters []Cluster, onProgress func(Progress)) ([]CategoryMapping, error) {
	if len(clusters) == 0 {
		return nil, nil
	}

	text, err := p.generate(ctx, buildMappingPrompt(level, clusters), structuredTemperature, 2, "Mapping projects to expectations", onProgress)
	if err != nil {
		return nil, fmt.Errorf("category mapping stage: %w", err)
	}

	var raws []rawMapping
	parse.Decode(text, &raws, p.log)

	known := make(map[string]bool, len(clusters))
	for _, c := range clusters {
		known[c.ID] = true
	}

	seen := make(map[string]bool)
	var mappings []CategoryMapping
	for _, rm := range raws {
		if !known[rm.ClusterID] || seen[rm.ClusterID] {
			continue
		}
		seen[rm.ClusterID] = true

		var cats []CategoryAssignment
		for _, rc := range rm.Categories {
			if !rubric.Has(level, rc.CategoryID) {
				p.log.Debugf("dropping unknown category id %q for cluster %s", rc.CategoryID, rm.ClusterID)
				continue
			}
			cats = append(cats, CategoryAssignment{
				CategoryID: rc.CategoryID,
				Relevance:  normalizeRelevance(rc.Relevance),
				Evidence:   rc.Evidence,
			})
			if len(cats) == 4 {
				break
			}
		}
		mappings = append(mappings, CategoryMapping{ClusterID: rm.ClusterID, Categories: cats})
	}
	return mappings, nil
}

// questionStage generates reflection questions one cluster at a time,
// strictly sequentially. Question ids are always synthesized as
// <clusterID>-q<n>; ids proposed by the model are discarded.
func (p *Pipeline) questionStage(ctx context.Context, clusters []Cluster, mappings []CategoryMapping, onProgress func(Progress)) ([]QuestionSet, error) {
	byCluster := make(map[string]*CategoryMapping, len(mappings))
	for i := range mappings {
		byCluster[mappings[i].ClusterID] = &mappings[i]
	}

	var sets []QuestionSet
	for i, c := range clusters {
		label := fmt.Sprintf("Generating questions (%d/%d)", i+1, len(clusters))
		text, err := p.generate(ctx, buildQuestionPrompt(c, byCluster[c.ID]), creativeTemperature, 3, label, onProgress)
		if err != nil {
			return nil, fmt.Errorf("question stage for %s: %w", c.ID, err)
		}

		var raws []rawQuestion
		parse.Decode(text, &raws, p.log)

		set := QuestionSet{ClusterID: c.ID}
		for n, rq := range raws {
			if rq.Text == "" {
				continue
			}
			set.Questions = append(set.Questions, Question{
				ID:      fmt.Sprintf("%s-q%d", c.ID, n+1),
				Text:    rq.Text,
				Context: rq.Context,
			})
		}
		sets = append(sets, set)
	}
	return sets, nil
}

func (p *Pipeline) generate(ctx context.Context, prompt string, temperature float64, step int, label string, onProgress func(Progress)) (string, error) {
	report(onProgress, Progress{Step: step, Label: label})
	return p.gen.Stream(ctx, llm.Request{Prompt: prompt, Temperature: temperature}, func(delta string) {
		report(onProgress, Progress{Step: step, Label: label, Detail: delta})
	})
}

func report(onProgress func(Progress), p Progress) {
	if onProgress != nil {
		onProgress(p)
	}
}

func normalizeRelevance(s string) string {
	switch r := strings.ToLower(strings.TrimSpace(s)); r {
	case "high", "medium", "low":
		return r
	default:
		return "medium"
	}
}
