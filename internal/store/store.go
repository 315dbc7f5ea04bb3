// Package store persists research runs and caches finished records by
// domain with TTL expiry.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/DavidEscobar2707/bta-onboarding/internal/model"
)

// ErrNotFound is returned when a run or cached record does not exist
// (or has expired).
var ErrNotFound = eris.New("store: not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Domain string          `json:"domain,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store is the persistence interface for the research pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, domain string, role model.Role) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	CompleteRun(ctx context.Context, runID string, rec *model.ResearchRecord) error
	FailRun(ctx context.Context, runID string, cause string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Record cache, keyed by canonical domain. Expiry is checked on read.
	GetCachedRecord(ctx context.Context, domain string) (*model.ResearchRecord, error)
	SetCachedRecord(ctx context.Context, domain string, rec *model.ResearchRecord, ttl time.Duration) error
	DeleteExpiredRecords(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
