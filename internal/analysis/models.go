package analysis

import (
	"time"

	"github.com/edwinckc/self-reflection-tool/internal/github"
)

// Cluster is a model-inferred grouping of PRs representing one coherent
// project or work stream.
type Cluster struct {
	ID      string               `json:"id"`
	Name    string               `json:"name"`
	Summary string               `json:"summary"`
	PRs     []github.PullRequest `json:"prs"`
}

// CategoryAssignment ties one rubric category to a cluster.
type CategoryAssignment struct {
	CategoryID string `json:"categoryId"`
	Relevance  string `json:"relevance"` // high, medium or low
	Evidence   string `json:"evidence"`
}

// CategoryMapping holds the rubric assignments for one cluster.
type CategoryMapping struct {
	ClusterID  string               `json:"clusterId"`
	Categories []CategoryAssignment `json:"categories"`
}

// Question is one reflection prompt for the user to answer.
type Question struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Context string `json:"context"`
}

// QuestionSet holds the questions generated for one cluster.
type QuestionSet struct {
	ClusterID string     `json:"clusterId"`
	Questions []Question `json:"questions"`
}

// Assessment is the top-level persisted aggregate, owned by one user and
// replaced wholesale on every re-run.
type Assessment struct {
	ID          string            `json:"id"`
	UserEmail   string            `json:"userEmail"`
	Clusters    []Cluster         `json:"clusters"`
	Mappings    []CategoryMapping `json:"mappings"`
	Questions   []QuestionSet     `json:"questions"`
	Narrative   string            `json:"narrative"`
	GeneratedAt time.Time         `json:"generatedAt"`
}

// Raw model-output shapes, parsed leniently and validated before use.

type rawCluster struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Summary   string `json:"summary"`
	PRIndices []int  `json:"prIndices"`
}

type rawMapping struct {
	ClusterID  string `json:"clusterId"`
	Categories []struct {
		CategoryID string `json:"categoryId"`
		Relevance  string `json:"relevance"`
		Evidence   string `json:"evidence"`
	} `json:"categories"`
}

type rawQuestion struct {
	Text    string `json:"text"`
	Context string `json:"context"`
}
