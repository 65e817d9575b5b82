// Package generator implements the generation orchestrator: the state
// machine that turns a crawl into a persisted brand profile.
package generator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/brandworks/siteprofiler/internal/crawl"
	"github.com/brandworks/siteprofiler/internal/metrics"
	"github.com/brandworks/siteprofiler/internal/profile"
)

// Config controls orchestrator behavior.
type Config struct {
	// Topic is the completion-event topic; empty disables notifications.
	Topic string
	// RunTimeout bounds one background pipeline execution.
	RunTimeout time.Duration
}

// Orchestrator drives the generate state machine. At most one run per target
// is ever in running status; the store's conditional transition enforces it.
type Orchestrator struct {
	store      profile.OverviewStore
	crawler    profile.Crawler
	summarizer profile.Summarizer
	publisher  profile.Publisher
	clock      profile.Clock
	idGen      profile.IDGenerator
	cfg        Config
	logger     *zap.Logger

	wg sync.WaitGroup
}

// New constructs an Orchestrator. publisher may be nil to disable
// completion notifications.
func New(
	store profile.OverviewStore,
	crawler profile.Crawler,
	summarizer profile.Summarizer,
	publisher profile.Publisher,
	clock profile.Clock,
	idGen profile.IDGenerator,
	cfg Config,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 5 * time.Minute
	}
	return &Orchestrator{
		store:      store,
		crawler:    crawler,
		summarizer: summarizer,
		publisher:  publisher,
		clock:      clock,
		idGen:      idGen,
		cfg:        cfg,
		logger:     logger,
	}
}

// Generate applies the state machine for one request and returns the record
// reflecting the outcome. When a new run is acquired the pipeline executes in
// the background; callers poll the overview for completion.
//
// Transitions:
//   - no record            -> create running, start pipeline
//   - running              -> return record unchanged
//   - complete, force=false -> return record unchanged
//   - complete, force=true  -> running, start pipeline
//   - failed  (any force)   -> running, start pipeline
func (o *Orchestrator) Generate(ctx context.Context, req profile.GenerateRequest) (profile.BrandOverview, error) {
	if req.TargetID == "" {
		return profile.BrandOverview{}, errors.New("target id is required")
	}
	if req.SiteURL == "" {
		return profile.BrandOverview{}, errors.New("site url is required")
	}

	existing, err := o.store.Get(ctx, req.TargetID)
	switch {
	case err == nil:
		if existing.Status == profile.StatusRunning {
			return existing, nil
		}
		if existing.Status == profile.StatusComplete && !req.Force {
			return existing, nil
		}
	case errors.Is(err, profile.ErrNotFound):
		// First generation for this target.
	default:
		return profile.BrandOverview{}, fmt.Errorf("load overview: %w", err)
	}

	id := existing.ID
	if id == "" {
		id, err = o.idGen.NewID()
		if err != nil {
			return profile.BrandOverview{}, fmt.Errorf("generate overview id: %w", err)
		}
	}

	rec, acquired, err := o.store.TryStart(ctx, req.TargetID, id, req.Force, o.clock.Now())
	if err != nil {
		return profile.BrandOverview{}, fmt.Errorf("start generation: %w", err)
	}
	if !acquired {
		// Lost the race to a concurrent request; its run is authoritative.
		return rec, nil
	}

	metrics.IncActiveGenerations()
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer metrics.DecActiveGenerations()
		// The request context dies with the HTTP request; the run gets its own.
		runCtx, cancel := context.WithTimeout(context.Background(), o.cfg.RunTimeout)
		defer cancel()
		o.runPipeline(runCtx, req)
	}()
	return rec, nil
}

// Wait blocks until all in-flight background runs finish. Used on shutdown.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// runPipeline executes crawl -> aggregate -> summarize -> persist for one
// acquired run. A crawl failure degrades to an empty result plus a warning;
// summarization and persistence failures mark the record failed.
func (o *Orchestrator) runPipeline(ctx context.Context, req profile.GenerateRequest) {
	start := time.Now()
	var warnings []string

	result, err := o.crawler.Crawl(ctx, req.SiteURL, req.BrandHint)
	if err != nil {
		o.logger.Warn("crawl failed, continuing with empty result",
			zap.String("target_id", req.TargetID),
			zap.Error(err),
		)
		result = crawl.EmptyResult(req.SiteURL)
		warnings = append(warnings, fmt.Sprintf("crawl failed: %v; profile generated without site content", err))
	}

	prompt := BuildPrompt(result)

	summary, err := o.summarizer.Summarize(ctx, prompt)
	if err != nil {
		o.fail(ctx, req, warnings, fmt.Errorf("summarize: %w", err), result, start)
		return
	}
	structured, err := o.summarizer.StructureProfile(ctx, prompt)
	if err != nil {
		o.fail(ctx, req, warnings, fmt.Errorf("structure profile: %w", err), result, start)
		return
	}

	rec, err := o.store.Finish(ctx, req.TargetID, profile.StatusComplete, summary, structured, warnings, "", o.clock.Now())
	if err != nil {
		o.logger.Error("persist overview failed",
			zap.String("target_id", req.TargetID),
			zap.Error(err),
		)
		o.fail(ctx, req, warnings, fmt.Errorf("persist overview: %w", err), result, start)
		return
	}

	metrics.ObserveGeneration(string(rec.Status), time.Since(start))
	o.notify(ctx, req.TargetID, rec.Status, result, "", start)
	o.logger.Info("generation complete",
		zap.String("target_id", req.TargetID),
		zap.Int("pages_crawled", result.PagesCrawled),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
}

// fail best-effort marks the record failed. A store failure here is logged
// and dropped; the record may be left running until a later force request.
func (o *Orchestrator) fail(
	ctx context.Context,
	req profile.GenerateRequest,
	warnings []string,
	cause error,
	result profile.CrawlResult,
	start time.Time,
) {
	o.logger.Error("generation failed",
		zap.String("target_id", req.TargetID),
		zap.Error(cause),
	)
	if _, err := o.store.Finish(ctx, req.TargetID, profile.StatusFailed, "", nil, warnings, cause.Error(), o.clock.Now()); err != nil {
		o.logger.Error("mark failed did not persist",
			zap.String("target_id", req.TargetID),
			zap.Error(err),
		)
	}
	metrics.ObserveGeneration(string(profile.StatusFailed), time.Since(start))
	o.notify(ctx, req.TargetID, profile.StatusFailed, result, cause.Error(), start)
}

func (o *Orchestrator) notify(
	ctx context.Context,
	targetID string,
	status profile.OverviewStatus,
	result profile.CrawlResult,
	errText string,
	start time.Time,
) {
	if o.publisher == nil || o.cfg.Topic == "" {
		return
	}
	payload := map[string]any{
		"target_id":     targetID,
		"status":        string(status),
		"pages_crawled": result.PagesCrawled,
		"duration_ms":   time.Since(start).Milliseconds(),
	}
	if errText != "" {
		payload["error"] = errText
	}
	if _, err := o.publisher.Publish(ctx, o.cfg.Topic, payload); err != nil {
		o.logger.Warn("completion publish failed",
			zap.String("target_id", targetID),
			zap.Error(err),
		)
	}
}
