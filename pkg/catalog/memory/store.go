// Package memory provides an in-memory catalog.Store.
//
// It behaves like the remote catalog where the reconciliation pipeline cares:
// ids are assigned on create, variants and images missing from an update are
// removed, and stored image filenames get a random suffix appended so that
// hash-suffix matching is exercised.
package memory

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/agentstation/feedsync/internal/utils/ptr"
	"github.com/agentstation/feedsync/pkg/catalog"
	"github.com/agentstation/feedsync/pkg/errors"
)

// Compile-time interface check.
var _ catalog.Store = (*Store)(nil)

// Store is a concurrent safe in-memory catalog.
type Store struct {
	mu          sync.RWMutex
	nextID      int64
	products    map[int64]*catalog.Entry
	order       []int64
	locations   []catalog.Location
	levels      map[int64]map[int64]int
	collections []catalog.Collection
	pageSize    int
	cdn         string
	failures    map[string]error
	calls       []string
}

// Option configures a Store.
type Option func(*Store)

// WithLocations sets the inventory locations, first one primary.
func WithLocations(locations ...catalog.Location) Option {
	return func(s *Store) {
		s.locations = append([]catalog.Location(nil), locations...)
	}
}

// WithPageSize sets how many entries ListProducts returns per page.
func WithPageSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithCDN sets the base URL stored images are served from.
func WithCDN(base string) Option {
	return func(s *Store) {
		s.cdn = strings.TrimRight(base, "/")
	}
}

// New creates an empty Store with a single default location.
func New(opts ...Option) *Store {
	s := &Store{
		nextID:    1000,
		products:  make(map[int64]*catalog.Entry),
		locations: []catalog.Location{{ID: 1, Name: "Warehouse"}},
		levels:    make(map[int64]map[int64]int),
		pageSize:  50,
		cdn:       "https://cdn.memory.test/files",
		failures:  make(map[string]error),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fail makes every subsequent call of the named method return err. A nil
// err clears the failure.
func (s *Store) Fail(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, method)
		return
	}
	s.failures[method] = err
}

// Calls returns the names of every method called, in order.
func (s *Store) Calls() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.calls...)
}

// CallCount returns how many times a method was called.
func (s *Store) CallCount(method string) int {
	n := 0
	for _, c := range s.Calls() {
		if c == method {
			n++
		}
	}
	return n
}

// ResetCalls clears the call log.
func (s *Store) ResetCalls() {
	s.mu.Lock()
	s.calls = nil
	s.mu.Unlock()
}

// Seed inserts an entry as-is, assigning ids where missing, and returns the
// stored copy.
func (s *Store) Seed(e catalog.Entry) *catalog.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == 0 {
		e.ID = s.id()
	}
	if e.Status == "" {
		e.Status = catalog.StatusActive
	}
	for i := range e.Variants {
		if e.Variants[i].ID == 0 {
			e.Variants[i].ID = s.id()
		}
		if e.Variants[i].InventoryItemID == 0 {
			e.Variants[i].InventoryItemID = s.id()
		}
	}
	for i := range e.Images {
		if e.Images[i].ID == 0 {
			e.Images[i].ID = s.id()
		}
	}
	stored := cloneEntry(&e)
	s.products[e.ID] = stored
	s.order = append(s.order, e.ID)
	return cloneEntry(stored)
}

// Product returns a copy of a stored entry.
func (s *Store) Product(id int64) (*catalog.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.products[id]
	if !ok {
		return nil, false
	}
	return cloneEntry(e), true
}

// Level returns the stored inventory level of an item at a location.
func (s *Store) Level(inventoryItemID, locationID int64) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.levels[inventoryItemID][locationID]
	return v, ok
}

// Len returns the number of stored products.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// LookupByHandle implements catalog.Store.
func (s *Store) LookupByHandle(_ context.Context, handle string) (*catalog.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("LookupByHandle"); err != nil {
		return nil, err
	}
	for _, id := range s.order {
		if e := s.products[id]; e.Handle == handle {
			return cloneEntry(e), nil
		}
	}
	return nil, nil
}

// CreateProduct implements catalog.Store.
func (s *Store) CreateProduct(_ context.Context, draft *catalog.Draft) (*catalog.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("CreateProduct"); err != nil {
		return nil, err
	}
	for _, e := range s.products {
		if e.Handle == draft.Handle {
			return nil, errors.NewAPIError("memory", 422, fmt.Sprintf("handle %s has already been taken", draft.Handle))
		}
	}

	e := &catalog.Entry{
		ID:     s.id(),
		Handle: draft.Handle,
		Title:  draft.Title,
		Vendor: draft.Vendor,
		Status: catalog.StatusActive,
		Tags:   append([]string(nil), draft.Tags...),
	}
	for _, v := range draft.Variants {
		ev := catalog.EntryVariant{
			ID:                  s.id(),
			SKU:                 v.SKU,
			Option1:             v.Color,
			Option2:             v.Size,
			Price:               v.Price,
			CompareAtPrice:      ptr.Clone(v.CompareAtPrice),
			Barcode:             v.Barcode,
			InventoryItemID:     s.id(),
			InventoryManagement: catalog.InventoryManagement,
			InventoryPolicy:     catalog.InventoryPolicy,
		}
		e.Variants = append(e.Variants, ev)
		if len(s.locations) > 0 {
			s.setLevel(ev.InventoryItemID, s.locations[0].ID, v.InventoryQuantity)
		}
	}
	for _, img := range draft.Images {
		e.Images = append(e.Images, s.storeImage(img))
	}

	s.products[e.ID] = e
	s.order = append(s.order, e.ID)
	return cloneEntry(e), nil
}

// GetProduct implements catalog.Store.
func (s *Store) GetProduct(_ context.Context, id int64) (*catalog.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("GetProduct"); err != nil {
		return nil, err
	}
	e, ok := s.products[id]
	if !ok {
		return nil, errors.NewAPIError("memory", 404, fmt.Sprintf("product %d not found", id))
	}
	return cloneEntry(e), nil
}

// UpdateProduct implements catalog.Store.
func (s *Store) UpdateProduct(_ context.Context, update *catalog.ProductUpdate) (*catalog.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("UpdateProduct"); err != nil {
		return nil, err
	}
	e, ok := s.products[update.ID]
	if !ok {
		return nil, errors.NewAPIError("memory", 404, fmt.Sprintf("product %d not found", update.ID))
	}

	existingVariants := make(map[int64]catalog.EntryVariant, len(e.Variants))
	for _, v := range e.Variants {
		existingVariants[v.ID] = v
	}
	variants := make([]catalog.EntryVariant, 0, len(update.Variants))
	for _, v := range update.Variants {
		v.CompareAtPrice = ptr.Clone(v.CompareAtPrice)
		if old, ok := existingVariants[v.ID]; ok && v.ID != 0 {
			v.InventoryItemID = old.InventoryItemID
			if v.ImageID == nil {
				v.ImageID = ptr.Clone(old.ImageID)
			}
		} else {
			v.ID = s.id()
			v.InventoryItemID = s.id()
		}
		variants = append(variants, v)
	}

	existingImages := make(map[int64]catalog.EntryImage, len(e.Images))
	for _, img := range e.Images {
		existingImages[img.ID] = img
	}
	images := make([]catalog.EntryImage, 0, len(update.Images))
	for _, ref := range update.Images {
		if ex, ok := ref.(catalog.ExistingImage); ok {
			if img, found := existingImages[ex.ID]; found {
				images = append(images, img)
			}
			continue
		}
		images = append(images, s.storeImage(ref))
	}

	e.Variants = variants
	e.Images = images
	return cloneEntry(e), nil
}

// SetVariantImage implements catalog.Store.
func (s *Store) SetVariantImage(_ context.Context, variantID, imageID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("SetVariantImage"); err != nil {
		return err
	}
	for _, e := range s.products {
		for i := range e.Variants {
			if e.Variants[i].ID == variantID {
				id := imageID
				e.Variants[i].ImageID = &id
				return nil
			}
		}
	}
	return errors.NewAPIError("memory", 404, fmt.Sprintf("variant %d not found", variantID))
}

// ListLocations implements catalog.Store.
func (s *Store) ListLocations(context.Context) ([]catalog.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("ListLocations"); err != nil {
		return nil, err
	}
	return append([]catalog.Location(nil), s.locations...), nil
}

// SetInventoryLevel implements catalog.Store.
func (s *Store) SetInventoryLevel(_ context.Context, inventoryItemID, locationID int64, available int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("SetInventoryLevel"); err != nil {
		return err
	}
	s.setLevel(inventoryItemID, locationID, available)
	return nil
}

// ListProducts implements catalog.Store.
func (s *Store) ListProducts(_ context.Context, vendor, cursor string) (*catalog.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("ListProducts"); err != nil {
		return nil, err
	}

	var matching []int64
	for _, id := range s.order {
		if s.products[id].Vendor == vendor {
			matching = append(matching, id)
		}
	}

	start := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 || n > len(matching) {
			return nil, errors.NewAPIError("memory", 400, "invalid page cursor "+cursor)
		}
		start = n
	}
	end := min(start+s.pageSize, len(matching))

	page := &catalog.Page{}
	for _, id := range matching[start:end] {
		page.Entries = append(page.Entries, *cloneEntry(s.products[id]))
	}
	if end < len(matching) {
		page.Next = strconv.Itoa(end)
	}
	return page, nil
}

// SetStatus implements catalog.Store.
func (s *Store) SetStatus(_ context.Context, id int64, status catalog.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("SetStatus"); err != nil {
		return err
	}
	e, ok := s.products[id]
	if !ok {
		return errors.NewAPIError("memory", 404, fmt.Sprintf("product %d not found", id))
	}
	e.Status = status
	return nil
}

// ListCollections implements catalog.Store.
func (s *Store) ListCollections(context.Context) ([]catalog.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("ListCollections"); err != nil {
		return nil, err
	}
	out := append([]catalog.Collection(nil), s.collections...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateCollection implements catalog.Store.
func (s *Store) CreateCollection(_ context.Context, c *catalog.Collection) (*catalog.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("CreateCollection"); err != nil {
		return nil, err
	}
	stored := catalog.Collection{ID: s.id(), Title: c.Title, Rules: append([]catalog.CollectionRule(nil), c.Rules...)}
	s.collections = append(s.collections, stored)
	return &stored, nil
}

func (s *Store) record(method string) error {
	s.calls = append(s.calls, method)
	return s.failures[method]
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) setLevel(item, location int64, available int) {
	if s.levels[item] == nil {
		s.levels[item] = make(map[int64]int)
	}
	s.levels[item][location] = available
}

// storeImage assigns an id and a suffixed filename the way the remote
// catalog does on upload.
func (s *Store) storeImage(ref catalog.ImageRef) catalog.EntryImage {
	name := ref.FileName()
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")
	return catalog.EntryImage{
		ID:  s.id(),
		Src: fmt.Sprintf("%s/%s_%s%s?v=%d", s.cdn, stem, suffix, ext, s.nextID),
	}
}

func cloneEntry(e *catalog.Entry) *catalog.Entry {
	c := *e
	c.Tags = append([]string(nil), e.Tags...)
	c.Variants = make([]catalog.EntryVariant, len(e.Variants))
	for i, v := range e.Variants {
		v.CompareAtPrice = ptr.Clone(v.CompareAtPrice)
		v.ImageID = ptr.Clone(v.ImageID)
		c.Variants[i] = v
	}
	c.Images = append([]catalog.EntryImage(nil), e.Images...)
	return &c
}
