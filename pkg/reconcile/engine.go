// Package reconcile creates or merges drafts into the remote catalog.
//
// Each draft walks a small state machine: the handle is looked up, a missing
// entry is created and a found one is re-read and merged with a single
// update. Either path ends Done or Failed. After a successful write every
// draft image source is recorded in the import ledger and variant images are
// assigned from the draft's hints.
package reconcile

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/feedsync/pkg/cache"
	"github.com/agentstation/feedsync/pkg/catalog"
	"github.com/agentstation/feedsync/pkg/errors"
	"github.com/agentstation/feedsync/pkg/logging"
)

// State is a reconciliation state.
type State string

// Reconciliation states.
const (
	StateNotFound State = "not_found"
	StateFound    State = "found"
	StateCreate   State = "create"
	StateMerge    State = "merge"
	StateDone     State = "done"
	StateFailed   State = "failed"
)

// Stages name the step a failure happened in.
const (
	StageLookup = "lookup"
	StageCreate = "create"
	StageFetch  = "fetch"
	StageUpdate = "update"
)

// Outcome describes how one draft was reconciled.
type Outcome struct {
	// State is StateDone or StateFailed.
	State State

	// Path records the states visited, for example
	// [not_found create done].
	Path []State

	ProductID int64
	Created   bool

	VariantsAdded   int
	VariantsUpdated int
	ImagesAdded     int
	ImagesAssigned  int

	// Stage and Err are set when State is StateFailed.
	Stage string
	Err   error
}

// OK reports whether the draft reached StateDone.
func (o *Outcome) OK() bool {
	return o.State == StateDone
}

func (o *Outcome) enter(s State) {
	o.Path = append(o.Path, s)
	if s == StateDone || s == StateFailed {
		o.State = s
	}
}

func (o *Outcome) fail(stage string, err error) *Outcome {
	o.Stage = stage
	o.Err = err
	o.enter(StateFailed)
	return o
}

// Engine reconciles drafts against a catalog.Store.
type Engine struct {
	store  catalog.Store
	ledger *cache.Cache[time.Time]
	now    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLedger sets the import ledger: source URL to the time it was last
// submitted. Without a ledger every draft image is offered to merges.
func WithLedger(ledger *cache.Cache[time.Time]) Option {
	return func(e *Engine) {
		e.ledger = ledger
	}
}

// WithClock overrides the time source used for ledger entries.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New returns an Engine over store.
func New(store catalog.Store, opts ...Option) *Engine {
	e := &Engine{store: store, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reconcile creates or merges one draft. It never panics on store failures;
// they are reported in the returned Outcome.
func (e *Engine) Reconcile(ctx context.Context, draft *catalog.Draft) *Outcome {
	out := &Outcome{}
	log := logging.Ctx(ctx).With().Str("handle", draft.Handle).Logger()

	existing, err := e.store.LookupByHandle(ctx, draft.Handle)
	if err != nil {
		log.Error().Err(err).Msg("Lookup failed")
		return out.fail(StageLookup, err)
	}

	if existing == nil {
		out.enter(StateNotFound)
		if !e.create(ctx, &log, draft, out) {
			return out
		}
	} else {
		out.enter(StateFound)
		if !e.merge(ctx, &log, draft, existing.ID, out) {
			return out
		}
	}

	e.markImported(draft)
	e.assignImages(ctx, &log, draft, out)
	out.enter(StateDone)
	return out
}

func (e *Engine) create(ctx context.Context, log *zerolog.Logger, draft *catalog.Draft, out *Outcome) bool {
	out.enter(StateCreate)
	entry, err := e.store.CreateProduct(ctx, draft)
	if err != nil {
		log.Error().Err(err).Msg("Create failed")
		out.fail(StageCreate, err)
		return false
	}
	out.ProductID = entry.ID
	out.Created = true
	out.VariantsAdded = len(draft.Variants)
	out.ImagesAdded = len(draft.Images)
	log.Info().
		Int64("product_id", entry.ID).
		Int("variants", len(draft.Variants)).
		Int("images", len(draft.Images)).
		Msg("Product created")
	return true
}

func (e *Engine) merge(ctx context.Context, log *zerolog.Logger, draft *catalog.Draft, id int64, out *Outcome) bool {
	out.enter(StateMerge)
	out.ProductID = id

	// Always merge against a fresh read.
	current, err := e.store.GetProduct(ctx, id)
	if err != nil {
		log.Error().Err(err).Int64("product_id", id).Msg("Fetch before merge failed")
		out.fail(StageFetch, err)
		return false
	}

	variants := MergeVariants(current.Variants, draft.Variants)
	images := MergeImages(current.Images, draft.Images, e.imported)

	_, err = e.store.UpdateProduct(ctx, &catalog.ProductUpdate{
		ID:       id,
		Variants: variants.Variants,
		Images:   images.Images,
	})
	if err != nil {
		log.Error().Err(err).Int64("product_id", id).Msg("Update failed")
		out.fail(StageUpdate, err)
		return false
	}

	out.VariantsAdded = variants.Added
	out.VariantsUpdated = variants.Updated
	out.ImagesAdded = images.Added
	log.Info().
		Int64("product_id", id).
		Int("variants_updated", variants.Updated).
		Int("variants_added", variants.Added).
		Int("images_added", images.Added).
		Msg("Product merged")
	return true
}

func (e *Engine) imported(url string) bool {
	return e.ledger != nil && e.ledger.Has(url)
}

func (e *Engine) markImported(draft *catalog.Draft) {
	if e.ledger == nil {
		return
	}
	now := e.now().UTC()
	for _, src := range draft.ImageSources() {
		e.ledger.Set(src, now)
	}
}

// assignImages is best effort: failures are logged, never returned.
func (e *Engine) assignImages(ctx context.Context, log *zerolog.Logger, draft *catalog.Draft, out *Outcome) {
	if len(draft.Hints) == 0 {
		return
	}

	entry, err := e.store.GetProduct(ctx, out.ProductID)
	if err != nil {
		log.Warn().Err(err).Int64("product_id", out.ProductID).Msg("Variant image assignment skipped")
		return
	}

	for _, a := range AssignVariantImages(entry, draft) {
		if err := e.store.SetVariantImage(ctx, a.VariantID, a.ImageID); err != nil {
			if errors.IsCanceled(err) || ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Int64("variant_id", a.VariantID).Int64("image_id", a.ImageID).Msg("Variant image assignment failed")
			continue
		}
		out.ImagesAssigned++
	}
	if out.ImagesAssigned > 0 {
		log.Debug().Int("assigned", out.ImagesAssigned).Msg("Variant images assigned")
	}
}
