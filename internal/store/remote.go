package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/edwinckc/self-reflection-tool/internal/analysis"
	"github.com/edwinckc/self-reflection-tool/internal/cache"
)

const mirrorTimeout = 10 * time.Second

// Remote is the durable cross-device store. Writes to it are mirrored
// fire-and-forget from the local path: a Remote failure is logged and
// never affects the local cache or store.
type Remote struct {
	pool *pgxpool.Pool
	log  logrus.FieldLogger
}

// OpenRemote connects to Postgres and ensures the schema exists.
func OpenRemote(ctx context.Context, dsn string, log logrus.FieldLogger) (*Remote, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to sync store: %w", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS assessments (
			user_email   TEXT PRIMARY KEY,
			doc          JSONB NOT NULL,
			generated_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS pr_snapshots (
			key        TEXT PRIMARY KEY,
			doc        JSONB NOT NULL,
			fetched_at BIGINT NOT NULL
		);
	`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("initializing sync schema: %w", err)
	}
	return &Remote{pool: pool, log: log}, nil
}

func (r *Remote) Close() {
	r.pool.Close()
}

// MirrorAssessment writes the assessment to the durable store in the
// background. The caller's critical path never waits on it.
func (r *Remote) MirrorAssessment(a *analysis.Assessment) {
	doc, err := json.Marshal(a)
	if err != nil {
		r.log.Warnf("encoding assessment for sync: %v", err)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
		defer cancel()
		_, err := r.pool.Exec(ctx, `
			INSERT INTO assessments (user_email, doc, generated_at) VALUES ($1, $2, $3)
			ON CONFLICT (user_email) DO UPDATE SET
				doc = excluded.doc,
				generated_at = excluded.generated_at
		`, a.UserEmail, doc, a.GeneratedAt)
		if err != nil {
			r.log.Warnf("syncing assessment for %s: %v", a.UserEmail, err)
		}
	}()
}

// MirrorSnapshot writes a PR snapshot to the durable store in the
// background.
func (r *Remote) MirrorSnapshot(key string, snap *cache.Snapshot) {
	doc, err := json.Marshal(snap)
	if err != nil {
		r.log.Warnf("encoding snapshot for sync: %v", err)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
		defer cancel()
		_, err := r.pool.Exec(ctx, `
			INSERT INTO pr_snapshots (key, doc, fetched_at) VALUES ($1, $2, $3)
			ON CONFLICT (key) DO UPDATE SET
				doc = excluded.doc,
				fetched_at = excluded.fetched_at
		`, key, doc, snap.FetchedAt)
		if err != nil {
			r.log.Warnf("syncing snapshot %s: %v", key, err)
		}
	}()
}
