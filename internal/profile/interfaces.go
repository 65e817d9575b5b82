package profile

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned by stores when no record exists for a target.
var ErrNotFound = errors.New("record not found")

// Crawler walks a site and returns the crawl result. Per-page failures never
// surface here; the call only fails when the homepage itself is unreachable.
type Crawler interface {
	Crawl(ctx context.Context, siteURL, brandHint string) (CrawlResult, error)
}

// Summarizer is the opaque language-model boundary. Summarize turns a
// structured prompt into narrative text; StructureProfile returns the
// machine-readable profile as raw JSON which this core passes through
// without interpreting.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
	StructureProfile(ctx context.Context, prompt string) (json.RawMessage, error)
}

// OverviewStore persists generation records, one per target.
//
// TryStart atomically creates the record in running status, or transitions
// an existing one to running when the state machine allows it (failed, or
// complete with force). It reports acquired=false and the current record
// unchanged when the transition is not allowed (already running, or complete
// without force). The conditional update closes the read-modify-write race
// between near-simultaneous generate calls.
type OverviewStore interface {
	Get(ctx context.Context, targetID string) (BrandOverview, error)
	TryStart(ctx context.Context, targetID, id string, force bool, now time.Time) (rec BrandOverview, acquired bool, err error)
	Finish(ctx context.Context, targetID string, status OverviewStatus, summary string, structured json.RawMessage, warnings []string, errText string, now time.Time) (BrandOverview, error)
	List(ctx context.Context, status *OverviewStatus, limit, offset int) ([]BrandOverview, error)
}

// BlobStore writes raw page snapshots and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error)
}

// Publisher pushes completion events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Hasher computes digests for snapshot deduplication.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces record IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
