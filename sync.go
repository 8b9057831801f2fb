package feedsync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agentstation/feedsync/pkg/archive"
	"github.com/agentstation/feedsync/pkg/cache"
	"github.com/agentstation/feedsync/pkg/catalog"
	"github.com/agentstation/feedsync/pkg/checkpoint"
	"github.com/agentstation/feedsync/pkg/collections"
	"github.com/agentstation/feedsync/pkg/errors"
	"github.com/agentstation/feedsync/pkg/feed"
	"github.com/agentstation/feedsync/pkg/handle"
	"github.com/agentstation/feedsync/pkg/images"
	"github.com/agentstation/feedsync/pkg/inventory"
	"github.com/agentstation/feedsync/pkg/logging"
	"github.com/agentstation/feedsync/pkg/reconcile"
	"github.com/agentstation/feedsync/pkg/sync"
	"github.com/agentstation/feedsync/pkg/transform"
)

// Stage recorded for failures that happen outside reconciliation.
const (
	stageTransform = "transform"
	stageInventory = "inventory"
)

// pipeline holds the per-run components a group flows through.
type pipeline struct {
	transformer *transform.Transformer
	engine      *reconcile.Engine
	stock       *inventory.Synchronizer
	validation  *cache.Cache[images.Entry]
	ledger      *cache.Cache[time.Time]
	cursor      *checkpoint.Cursor
}

// Sync reads the feed and reconciles every product group against the
// catalog, resuming after the saved checkpoint. Per-product failures are
// collected in the result and never abort the run. When the pass is
// cancelled the result is returned together with an ErrCanceled error.
func (s *syncer) Sync(ctx context.Context, f Feed, opts ...sync.Option) (*sync.Result, error) {
	// Step 0: Set context
	if ctx == nil {
		ctx = context.Background()
	}

	// Step 1: Parse and validate options
	options := sync.Defaults().Apply(opts...)
	if err := options.Validate(); err != nil {
		return nil, err
	}
	if err := f.validate(); err != nil {
		return nil, err
	}

	// Step 2: Setup context with timeout
	var cancel context.CancelFunc
	if options.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
	} else {
		cancel = func() {} // No-op cancel if no timeout
	}
	defer cancel()

	// Step 3: Tag the run
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	ctx = logging.WithVendor(ctx, f.Profile.Vendor)
	log := logging.FromContext(ctx)

	res := &sync.Result{
		RunID:     runID,
		Vendor:    f.Profile.Vendor,
		StartedAt: s.config.now(),
		Fresh:     options.Fresh,
	}
	defer func() {
		res.Duration = s.config.now().Sub(res.StartedAt)
	}()

	// Step 4: Read the feed
	records, err := f.Source.Records(ctx)
	if err != nil {
		return nil, errors.WrapResource("read", "feed", f.Name(), err)
	}
	res.Records = len(records)

	// Step 5: Group rows into products
	groups := feed.GroupBy(ctx, records, f.Profile.KeyFunc())
	res.Groups = groups.Len()
	log.Info().Int("records", res.Records).Int("groups", res.Groups).Msg("Feed loaded")

	// Step 6: Open persistent caches; they are flushed on every exit path
	validation, err := cache.Open[images.Entry](ctx, s.config.backend, ValidationCacheName(f.Name()))
	if err != nil {
		return nil, err
	}
	defer validation.Release(ctx)

	ledger, err := cache.Open[time.Time](ctx, s.config.backend, ImportLedgerName(f.Name()))
	if err != nil {
		return nil, err
	}
	defer ledger.Release(ctx)

	// Step 7: Build the pipeline
	transformer, err := transform.New(f.Profile, images.New(validation, s.config.imageOpts...))
	if err != nil {
		return nil, err
	}
	p := &pipeline{
		transformer: transformer,
		engine:      reconcile.New(s.store, reconcile.WithLedger(ledger), reconcile.WithClock(s.config.now)),
		stock:       inventory.New(s.store),
		validation:  validation,
		ledger:      ledger,
		cursor:      checkpoint.New(s.config.backend, CheckpointName(f.Name()), runID),
	}

	// Step 8: Find where to resume
	if options.Fresh {
		if err := p.cursor.Delete(ctx); err != nil {
			return nil, err
		}
	}
	last, err := p.cursor.Load(ctx)
	var perr *errors.ParseError
	switch {
	case errors.As(err, &perr):
		log.Warn().Err(err).Msg("Ignoring unreadable checkpoint")
		last = ""
	case err != nil:
		return nil, err
	}
	all := groups.All()
	start := checkpoint.ResumeIndex(ctx, groups.Keys(), last)
	res.Resumed = start
	if start > 0 {
		log.Info().Str("checkpoint", last).Int("skipped", start).Msg("Resuming after checkpoint")
	}

	// Step 9: Reconcile each group in feed order
	var drafts []*catalog.Draft
	next := start
	for next < len(all) {
		if options.Limit > 0 && next-start >= options.Limit {
			log.Info().Int("limit", options.Limit).Msg("Group limit reached")
			break
		}
		if ctx.Err() != nil {
			break
		}
		if draft := s.process(ctx, p, all[next], res); draft != nil {
			drafts = append(drafts, draft)
		}
		next++
	}

	if err := ctx.Err(); err != nil {
		log.Warn().Err(err).Int("processed", res.Processed()).Msg("Sync interrupted, checkpoint kept")
		return res, fmt.Errorf("%w: %w", errors.ErrCanceled, err)
	}
	if next < len(all) {
		log.Info().Int("remaining", len(all)-next).Msg("Pass stopped early, checkpoint kept")
		return res, nil
	}

	// Step 10: Full pass completed
	res.Complete = true
	if err := p.cursor.Delete(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to delete checkpoint")
	}

	if options.Collections {
		s.ensureCollections(ctx, drafts, res)
	}
	if options.Archive {
		s.archive(ctx, f, transformer, all, options.MinArchiveHandles, res)
	}

	log.Info().
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("rejected", res.Rejected).
		Int("failed", res.Failed).
		Int("archived", res.Archived()).
		Msg("Sync completed")

	return res, nil
}

// process runs one group through transform, reconcile and inventory. It
// returns the draft when the product was reconciled.
func (s *syncer) process(ctx context.Context, p *pipeline, g *feed.Group, res *sync.Result) *catalog.Draft {
	h := p.transformer.Handle(g)
	ctx = logging.WithHandle(ctx, h)
	log := logging.FromContext(ctx).With().Str("group", g.Key).Logger()
	title := g.First().Get(p.transformer.Profile().TitleField)

	draft, err := p.transformer.Transform(ctx, g)
	switch {
	case errors.Is(err, transform.ErrUnsellable):
		res.Rejected++
		log.Info().Msg("Skipping product with no sellable variant")
		return nil
	case err != nil:
		s.fail(&log, res, errors.NewProductError(g.Key, title, stageTransform, err))
		return nil
	}

	outcome := p.engine.Reconcile(ctx, draft)
	if !outcome.OK() {
		s.fail(&log, res, errors.NewProductError(g.Key, title, outcome.Stage, outcome.Err))
		return nil
	}

	if outcome.Created {
		res.Created++
	} else {
		res.Updated++
	}
	res.VariantsAdded += outcome.VariantsAdded
	res.ImagesAdded += outcome.ImagesAdded
	res.ImagesAssigned += outcome.ImagesAssigned

	stock, err := p.stock.Sync(ctx, outcome.ProductID, draft.Variants)
	res.Inventory.Updated += stock.Updated
	res.Inventory.Missing += stock.Missing
	res.Inventory.Failed += stock.Failed
	if err != nil {
		log.Warn().Err(err).Int64("product_id", outcome.ProductID).Msg("Inventory pass failed")
		res.Failures = append(res.Failures, errors.NewProductError(g.Key, title, stageInventory, err))
	}

	s.flush(ctx, &log, p.validation, p.ledger)
	if err := p.cursor.Save(ctx, g.Key); err != nil {
		log.Warn().Err(err).Msg("Failed to save checkpoint")
	}

	s.hooks.triggerReconciled(draft, outcome)
	return draft
}

func (s *syncer) fail(log *zerolog.Logger, res *sync.Result, failure *errors.ProductError) {
	res.Failed++
	res.Failures = append(res.Failures, failure)
	log.Error().Err(failure.Err).Str("stage", failure.Stage).Msg("Product failed")
	s.hooks.triggerFailed(failure)
}

// flush persists both caches after a reconciled product.
func (s *syncer) flush(ctx context.Context, log *zerolog.Logger, validation *cache.Cache[images.Entry], ledger *cache.Cache[time.Time]) {
	if err := validation.Flush(ctx); err != nil {
		log.Warn().Err(err).Str("cache", validation.Name()).Msg("Failed to flush cache")
	}
	if err := ledger.Flush(ctx); err != nil {
		log.Warn().Err(err).Str("cache", ledger.Name()).Msg("Failed to flush cache")
	}
}

func (s *syncer) ensureCollections(ctx context.Context, drafts []*catalog.Draft, res *sync.Result) {
	out, err := collections.EnsureForTags(ctx, s.store, collections.Tags(drafts))
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Collection pass failed")
		return
	}
	res.Collections = out
}

// archive retires vendor entries whose handle is not produced by any group
// of the feed, including groups skipped by the checkpoint or rejected.
func (s *syncer) archive(ctx context.Context, f Feed, t *transform.Transformer, groups []*feed.Group, minHandles int, res *sync.Result) {
	seen := handle.NewSet()
	for _, g := range groups {
		if h := t.Handle(g); h != "" {
			seen.Add(h)
		}
	}

	guard := archive.New(s.store, f.Profile.Vendor, archive.WithMinHandles(minHandles))
	out, err := guard.Run(ctx, seen)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Archival pass failed")
	}
	res.Archive = out
	if out != nil {
		s.hooks.triggerArchived(out.Archived)
	}
}
