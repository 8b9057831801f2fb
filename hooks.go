package feedsync

import (
	"sync"

	"github.com/agentstation/feedsync/pkg/catalog"
	"github.com/agentstation/feedsync/pkg/errors"
	"github.com/agentstation/feedsync/pkg/reconcile"
)

// Hook function types for product events
type (
	// ProductCreatedHook is called when a draft was created in the catalog
	ProductCreatedHook func(draft *catalog.Draft, outcome *reconcile.Outcome)

	// ProductUpdatedHook is called when a draft was merged into an existing product
	ProductUpdatedHook func(draft *catalog.Draft, outcome *reconcile.Outcome)

	// ProductFailedHook is called when a product could not be reconciled
	ProductFailedHook func(failure *errors.ProductError)

	// ProductArchivedHook is called when a catalog entry was moved to draft
	ProductArchivedHook func(handle string)
)

// hooks manages event callbacks for product changes
type hooks struct {
	mu                sync.RWMutex
	onProductCreated  []ProductCreatedHook
	onProductUpdated  []ProductUpdatedHook
	onProductFailed   []ProductFailedHook
	onProductArchived []ProductArchivedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnProductCreated registers a callback for newly created products
func (h *hooks) OnProductCreated(fn ProductCreatedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onProductCreated = append(h.onProductCreated, fn)
}

// OnProductUpdated registers a callback for merged products
func (h *hooks) OnProductUpdated(fn ProductUpdatedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onProductUpdated = append(h.onProductUpdated, fn)
}

// OnProductFailed registers a callback for failed products
func (h *hooks) OnProductFailed(fn ProductFailedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onProductFailed = append(h.onProductFailed, fn)
}

// OnProductArchived registers a callback for archived entries
func (h *hooks) OnProductArchived(fn ProductArchivedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onProductArchived = append(h.onProductArchived, fn)
}

// triggerReconciled fires the created or updated hooks for a successful outcome
func (h *hooks) triggerReconciled(draft *catalog.Draft, outcome *reconcile.Outcome) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if outcome.Created {
		for _, hook := range h.onProductCreated {
			hook(draft, outcome)
		}
		return
	}
	for _, hook := range h.onProductUpdated {
		hook(draft, outcome)
	}
}

func (h *hooks) triggerFailed(failure *errors.ProductError) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onProductFailed {
		hook(failure)
	}
}

func (h *hooks) triggerArchived(handles []string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, handle := range handles {
		for _, hook := range h.onProductArchived {
			hook(handle)
		}
	}
}
