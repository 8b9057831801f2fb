package catalog

import "context"

// Store is the remote catalog. Implementations report transport failures as
// *errors.APIError and apply their own throttle policy between calls.
type Store interface {
	// LookupByHandle returns the entry with the given handle, or nil when
	// none exists.
	LookupByHandle(ctx context.Context, handle string) (*Entry, error)

	// CreateProduct creates an entry from a draft, including variants and
	// images, and returns the stored entry.
	CreateProduct(ctx context.Context, draft *Draft) (*Entry, error)

	// GetProduct reads an entry by id.
	GetProduct(ctx context.Context, id int64) (*Entry, error)

	// UpdateProduct replaces an entry's variants and images in one request.
	UpdateProduct(ctx context.Context, update *ProductUpdate) (*Entry, error)

	// SetVariantImage points a variant at one of its product's images.
	SetVariantImage(ctx context.Context, variantID, imageID int64) error

	// ListLocations lists inventory locations in catalog order.
	ListLocations(ctx context.Context) ([]Location, error)

	// SetInventoryLevel sets the absolute available quantity of an
	// inventory item at a location.
	SetInventoryLevel(ctx context.Context, inventoryItemID, locationID int64, available int) error

	// ListProducts returns one page of entries for a vendor. An empty cursor
	// requests the first page.
	ListProducts(ctx context.Context, vendor, cursor string) (*Page, error)

	// SetStatus changes an entry's publication status.
	SetStatus(ctx context.Context, id int64, status Status) error

	// ListCollections lists every smart collection.
	ListCollections(ctx context.Context) ([]Collection, error)

	// CreateCollection creates a smart collection.
	CreateCollection(ctx context.Context, c *Collection) (*Collection, error)
}
