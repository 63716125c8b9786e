// Package aggregate implements the multi-source search pipeline: concurrent
// fan-out to source adapters, normalization, scoring, dedup and ranking.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gokulchand98/jobscout/internal/cache"
	"github.com/gokulchand98/jobscout/internal/job"
	"github.com/gokulchand98/jobscout/internal/notify"
	"github.com/gokulchand98/jobscout/internal/policy"
	"github.com/gokulchand98/jobscout/internal/rubric"
	"github.com/gokulchand98/jobscout/internal/scoring"
	"github.com/gokulchand98/jobscout/internal/source"
)

// ErrInvalidInput marks a rejected search request. It is the only error a
// caller sees for a normal search: upstream volatility degrades to fewer
// results instead.
var ErrInvalidInput = errors.New("invalid input")

// defaultQuery covers the three priority domains when the caller supplies no
// query.
const defaultQuery = "data engineer OR mlops OR cloud engineer OR devops"

// Orchestration-layer notification triggers, independent of the rubric
// thresholds.
const (
	notifyRelevanceFloor = 15
	notifyResumeFloor    = 20
)

// Request describes one search call.
type Request struct {
	Query      string
	Location   string
	Limit      int
	ResumeText string
	Notify     bool
}

// Deps aggregates the engine's collaborators.
type Deps struct {
	// Sources in dispatch order; index 0 is the primary, high-trust source.
	// Declared order fixes dedup first-seen precedence.
	Sources       []source.Adapter
	Rubrics       *rubric.Store
	Notifications *notify.Manager
	Seen          *cache.SeenStore
	Thresholds    policy.Thresholds
	Logger        *zap.Logger
}

type Engine struct {
	deps Deps
}

func New(deps Deps) (*Engine, error) {
	if len(deps.Sources) == 0 {
		return nil, errors.New("at least one source adapter is required")
	}
	if deps.Rubrics == nil {
		return nil, errors.New("rubric store is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Thresholds == (policy.Thresholds{}) {
		deps.Thresholds = policy.DefaultThresholds()
	}
	return &Engine{deps: deps}, nil
}

// Search runs the full pipeline and returns the ranked postings, capped at
// the requested limit. If the multi-source path fails outright the search
// degrades to the primary source alone rather than returning an error.
func (e *Engine) Search(ctx context.Context, req Request) (*job.Postings, error) {
	if req.Limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidInput, req.Limit)
	}
	if strings.TrimSpace(req.Query) == "" {
		req.Query = defaultQuery
	}

	postings, err := e.searchAll(ctx, req)
	if err != nil {
		e.deps.Logger.Warn("multi-source search failed, falling back to primary source",
			zap.Error(err),
		)
		return e.searchPrimary(ctx, req), nil
	}
	return postings, nil
}

func (e *Engine) searchAll(ctx context.Context, req Request) (*job.Postings, error) {
	rub, err := e.deps.Rubrics.Current()
	if err != nil {
		return nil, fmt.Errorf("configuration unavailable: %w", err)
	}

	budgets := splitBudget(req.Limit, len(e.deps.Sources))
	results := make([]fetchResult, len(e.deps.Sources))

	// Join semantics: all dispatched fetches complete before merging. Tasks
	// never return an error, so one adapter's failure cannot cancel its
	// siblings through the group context.
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range e.deps.Sources {
		g.Go(func() error {
			postings, err := fetchGuarded(gctx, src, req.Query, req.Location, budgets[i])
			results[i] = fetchResult{postings: postings, err: err}
			return nil
		})
	}
	_ = g.Wait()

	merged := &job.Postings{}
	failed := 0
	for i, res := range results {
		name := e.deps.Sources[i].Name()
		if res.err != nil {
			failed++
			e.deps.Logger.Warn("source fetch failed, contributing empty set",
				zap.String("source", name),
				zap.Error(res.err),
			)
			continue
		}
		e.deps.Logger.Debug("source fetch completed",
			zap.String("source", name),
			zap.Int("count", res.postings.Len()),
		)
		merged.Append(res.postings)
	}

	if failed == len(e.deps.Sources) {
		// Degraded but successful: the caller gets an empty result, not an
		// error.
		e.deps.Logger.Warn("all sources failed", zap.String("query", req.Query))
		return &job.Postings{}, nil
	}

	e.finish(ctx, merged, rub, req)
	return merged, nil
}

// searchPrimary is the degraded path: primary source only, with the built-in
// rubric defaults if the store is unusable.
func (e *Engine) searchPrimary(ctx context.Context, req Request) *job.Postings {
	rub, err := e.deps.Rubrics.Current()
	if err != nil {
		rub = rubric.Default()
	}

	primary := e.deps.Sources[0]
	postings, err := fetchGuarded(ctx, primary, req.Query, req.Location, req.Limit)
	if err != nil {
		e.deps.Logger.Warn("primary source fetch failed",
			zap.String("source", primary.Name()),
			zap.Error(err),
		)
		return &job.Postings{}
	}

	e.finish(ctx, postings, rub, req)
	return postings
}

// finish runs the shared post-merge steps: score once, dedup first-seen,
// resume match, notifications, stable rank, truncate.
func (e *Engine) finish(ctx context.Context, postings *job.Postings, rub *rubric.Rubric, req Request) {
	for _, p := range postings.Items {
		p.PrefixID()
		if !p.Scored() {
			p.RelevanceScore = scoring.Score(p, rub)
			p.MarkScored()
		}
	}

	if dropped := postings.Dedup(); len(dropped) > 0 {
		e.deps.Logger.Debug("deduplicated postings",
			zap.Int("dropped", len(dropped)),
			zap.Int("left", postings.Len()),
		)
	}

	if strings.TrimSpace(req.ResumeText) != "" {
		for _, p := range postings.Items {
			p.ResumeMatchScore = scoring.ResumeMatch(p, req.ResumeText)
		}
	}

	if req.Notify && e.deps.Notifications != nil {
		e.notifyMatches(ctx, postings, rub)
	}

	postings.SortByRelevance()
	postings.Truncate(req.Limit)
}

func (e *Engine) notifyMatches(ctx context.Context, postings *job.Postings, rub *rubric.Rubric) {
	for _, p := range postings.Items {
		if p.RelevanceScore < notifyRelevanceFloor && p.ResumeMatchScore < notifyResumeFloor {
			continue
		}
		if !e.deps.Seen.MarkNotified(ctx, p.ID) {
			e.deps.Logger.Debug("notification suppressed, already sent",
				zap.String("posting_id", p.ID),
			)
			continue
		}
		decision := policy.Decide(p, p.RelevanceScore, rub, e.deps.Thresholds)
		p.Notification = e.deps.Notifications.NotifyMatch(ctx, p, decision.Tier)
	}
}

type fetchResult struct {
	postings *job.Postings
	err      error
}

// fetchGuarded isolates one adapter call: a panicking adapter is treated the
// same as any other adapter failure.
func fetchGuarded(ctx context.Context, src source.Adapter, query, location string, limit int) (postings *job.Postings, err error) {
	defer func() {
		if r := recover(); r != nil {
			postings = nil
			err = fmt.Errorf("source %s panicked: %v", src.Name(), r)
		}
	}()

	postings, err = src.Fetch(ctx, query, location, limit)
	if err != nil {
		return nil, err
	}
	if postings == nil {
		postings = &job.Postings{}
	}
	return postings, nil
}

// splitBudget allocates roughly half the limit to the primary source and
// spreads the remainder evenly across the auxiliaries, never below one.
func splitBudget(limit, sources int) []int {
	budgets := make([]int, sources)
	if sources == 1 {
		budgets[0] = limit
		return budgets
	}

	primary := (limit + 1) / 2
	if primary < 1 {
		primary = 1
	}
	budgets[0] = primary

	aux := sources - 1
	share := (limit - primary) / aux
	if share < 1 {
		share = 1
	}
	for i := 1; i < sources; i++ {
		budgets[i] = share
	}
	return budgets
}
