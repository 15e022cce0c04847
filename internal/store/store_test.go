package store

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/edwinckc/self-reflection-tool/internal/analysis"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), log)
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleAssessment(email, clusterName string) *analysis.Assessment {
	return &analysis.Assessment{
		UserEmail: email,
		Clusters: []analysis.Cluster{
			{ID: "a", Name: clusterName, Summary: "s"},
		},
		GeneratedAt: time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestUpsertInsertsThenReplaces(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Upsert(ctx, sampleAssessment("dev@example.com", "First")); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := s.Upsert(ctx, sampleAssessment("dev@example.com", "Second")); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	count, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly 1 document after two upserts, got %d", count)
	}

	got := s.LoadByUser(ctx, "dev@example.com")
	if got == nil {
		t.Fatal("expected assessment, got nil")
	}
	if got.Clusters[0].Name != "Second" {
		t.Errorf("expected second upsert to win, got cluster %q", got.Clusters[0].Name)
	}
}

func TestUpsertKeepsDocumentID(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	first := sampleAssessment("dev@example.com", "First")
	if err := s.Upsert(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if first.ID == "" {
		t.Fatal("upsert should assign an id")
	}

	second := sampleAssessment("dev@example.com", "Second")
	if err := s.Upsert(ctx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("replacement should keep the document id: %q != %q", second.ID, first.ID)
	}
}

func TestUpsertSeparateUsers(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Upsert(ctx, sampleAssessment("a@example.com", "A")); err != nil {
		t.Fatalf("upsert a: %v", err)
	}
	if err := s.Upsert(ctx, sampleAssessment("b@example.com", "B")); err != nil {
		t.Fatalf("upsert b: %v", err)
	}

	count, _ := s.Count(ctx)
	if count != 2 {
		t.Errorf("expected 2 documents, got %d", count)
	}
	if got := s.LoadByUser(ctx, "b@example.com"); got == nil || got.Clusters[0].Name != "B" {
		t.Errorf("wrong document for b@example.com: %+v", got)
	}
}

func TestLoadByUserMissing(t *testing.T) {
	s := testStore(t)
	if got := s.LoadByUser(context.Background(), "nobody@example.com"); got != nil {
		t.Errorf("expected nil for missing user, got %+v", got)
	}
}

func TestLoadByUserSwallowsBackendErrors(t *testing.T) {
	s := testStore(t)
	s.db.Close() // force backend failure

	if got := s.LoadByUser(context.Background(), "dev@example.com"); got != nil {
		t.Errorf("expected nil on backend error, got %+v", got)
	}
}
