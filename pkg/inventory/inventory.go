// Package inventory sets absolute stock levels for reconciled products.
package inventory

import (
	"context"
	"strings"
	"sync"

	"github.com/agentstation/feedsync/pkg/catalog"
	"github.com/agentstation/feedsync/pkg/errors"
	"github.com/agentstation/feedsync/pkg/logging"
)

// Result counts the outcome of one product's inventory pass.
type Result struct {
	Updated int
	Missing int
	Failed  int
}

// Synchronizer writes variant quantities to the first catalog location.
// Once resolved, the location is reused for the Synchronizer's lifetime,
// so one Synchronizer should serve exactly one run. A failed lookup is
// retried on the next call.
type Synchronizer struct {
	store catalog.Store

	mu       sync.Mutex
	resolved bool
	location catalog.Location
}

// New returns a Synchronizer over store.
func New(store catalog.Store) *Synchronizer {
	return &Synchronizer{store: store}
}

// Location resolves and returns the location stock is written to.
func (s *Synchronizer) Location(ctx context.Context) (catalog.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resolved {
		return s.location, nil
	}

	locs, err := s.store.ListLocations(ctx)
	if err != nil {
		return catalog.Location{}, err
	}
	if len(locs) == 0 {
		return catalog.Location{}, errors.NewNotFoundError("location", "primary")
	}
	s.location = locs[0]
	s.resolved = true
	logging.Ctx(ctx).Debug().Int64("location_id", s.location.ID).Str("location", s.location.Name).Msg("Inventory location resolved")
	return s.location, nil
}

// Sync sets the quantity of every variant on the product. Variants without
// an inventory item and failed calls are logged and counted; only a failure
// to resolve the location or read the product is returned as an error.
func (s *Synchronizer) Sync(ctx context.Context, productID int64, variants []catalog.Variant) (Result, error) {
	var res Result

	loc, err := s.Location(ctx)
	if err != nil {
		return res, err
	}

	entry, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return res, err
	}

	items := make(map[string]int64, len(entry.Variants))
	for _, v := range entry.Variants {
		if v.InventoryItemID != 0 {
			items[strings.ToLower(strings.TrimSpace(v.SKU))] = v.InventoryItemID
		}
	}

	log := logging.Ctx(ctx)
	for _, v := range variants {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		item, ok := items[strings.ToLower(strings.TrimSpace(v.SKU))]
		if !ok {
			res.Missing++
			log.Warn().Str("sku", v.SKU).Int64("product_id", productID).Msg("No inventory item for variant")
			continue
		}
		qty := max(v.InventoryQuantity, 0)
		if err := s.store.SetInventoryLevel(ctx, item, loc.ID, qty); err != nil {
			res.Failed++
			log.Warn().Err(err).Str("sku", v.SKU).Int64("inventory_item_id", item).Msg("Inventory update failed")
			continue
		}
		res.Updated++
	}

	log.Debug().
		Int64("product_id", productID).
		Int("updated", res.Updated).
		Int("missing", res.Missing).
		Int("failed", res.Failed).
		Msg("Inventory synchronized")
	return res, nil
}
