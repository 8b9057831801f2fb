package shopify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/agentstation/feedsync/internal/transport"
	"github.com/agentstation/feedsync/pkg/catalog"
	"github.com/agentstation/feedsync/pkg/errors"
)

type productEnvelope struct {
	Product product `json:"product"`
}

type productsEnvelope struct {
	Products []product `json:"products"`
}

// LookupByHandle implements catalog.Store.
func (c *Client) LookupByHandle(ctx context.Context, handle string) (*catalog.Entry, error) {
	var out productsEnvelope
	q := url.Values{"handle": {handle}}
	if _, err := c.call(ctx, c.read, http.MethodGet, "/products.json?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	for i := range out.Products {
		if out.Products[i].Handle == handle {
			return out.Products[i].entry(), nil
		}
	}
	return nil, nil
}

// CreateProduct implements catalog.Store.
func (c *Client) CreateProduct(ctx context.Context, draft *catalog.Draft) (*catalog.Entry, error) {
	var out productEnvelope
	in := productEnvelope{Product: draftProduct(draft)}
	if _, err := c.call(ctx, c.mutation, http.MethodPost, "/products.json", in, &out); err != nil {
		return nil, err
	}
	return out.Product.entry(), nil
}

// GetProduct implements catalog.Store.
func (c *Client) GetProduct(ctx context.Context, id int64) (*catalog.Entry, error) {
	var out productEnvelope
	if _, err := c.call(ctx, c.read, http.MethodGet, fmt.Sprintf("/products/%d.json", id), nil, &out); err != nil {
		return nil, err
	}
	return out.Product.entry(), nil
}

// UpdateProduct implements catalog.Store.
func (c *Client) UpdateProduct(ctx context.Context, update *catalog.ProductUpdate) (*catalog.Entry, error) {
	var out productEnvelope
	in := productEnvelope{Product: updateProduct(update)}
	if _, err := c.call(ctx, c.mutation, http.MethodPut, fmt.Sprintf("/products/%d.json", update.ID), in, &out); err != nil {
		return nil, err
	}
	return out.Product.entry(), nil
}

// SetVariantImage implements catalog.Store.
func (c *Client) SetVariantImage(ctx context.Context, variantID, imageID int64) error {
	in := map[string]any{"variant": map[string]int64{"id": variantID, "image_id": imageID}}
	_, err := c.call(ctx, c.mutation, http.MethodPut, fmt.Sprintf("/variants/%d.json", variantID), in, nil)
	return err
}

// SetStatus implements catalog.Store.
func (c *Client) SetStatus(ctx context.Context, id int64, status catalog.Status) error {
	in := productEnvelope{Product: product{ID: id, Status: string(status)}}
	_, err := c.call(ctx, c.mutation, http.MethodPut, fmt.Sprintf("/products/%d.json", id), in, nil)
	return err
}

// ListProducts implements catalog.Store. The cursor is the page_info token
// of the Link header; the API rejects other filters alongside it, so the
// vendor filter only applies to the first request.
func (c *Client) ListProducts(ctx context.Context, vendor, cursor string) (*catalog.Page, error) {
	q := url.Values{
		"limit":  {strconv.Itoa(c.pageSize)},
		"fields": {"id,handle,title,vendor,status,tags"},
	}
	if cursor != "" {
		q.Set("page_info", cursor)
	} else if vendor != "" {
		q.Set("vendor", vendor)
	}

	var out productsEnvelope
	h, err := c.call(ctx, c.read, http.MethodGet, "/products.json?"+q.Encode(), nil, &out)
	if err != nil {
		return nil, err
	}

	page := &catalog.Page{Next: pageInfo(transport.NextLink(h))}
	for i := range out.Products {
		page.Entries = append(page.Entries, *out.Products[i].entry())
	}
	return page, nil
}

// pageInfo extracts the page_info token of a next link.
func pageInfo(next string) string {
	if next == "" {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil {
		return ""
	}
	return u.Query().Get("page_info")
}

type locationsEnvelope struct {
	Locations []location `json:"locations"`
}

// ListLocations implements catalog.Store.
func (c *Client) ListLocations(ctx context.Context) ([]catalog.Location, error) {
	var out locationsEnvelope
	if _, err := c.call(ctx, c.read, http.MethodGet, "/locations.json", nil, &out); err != nil {
		return nil, err
	}
	locs := make([]catalog.Location, 0, len(out.Locations))
	for _, l := range out.Locations {
		locs = append(locs, catalog.Location{ID: l.ID, Name: l.Name})
	}
	return locs, nil
}

// SetInventoryLevel implements catalog.Store.
func (c *Client) SetInventoryLevel(ctx context.Context, inventoryItemID, locationID int64, available int) error {
	if inventoryItemID == 0 || locationID == 0 {
		return errors.NewValidationError("inventory_item_id", inventoryItemID, "inventory item and location are required")
	}
	in := inventoryLevel{LocationID: locationID, InventoryItemID: inventoryItemID, Available: available}
	_, err := c.call(ctx, c.inventory, http.MethodPost, "/inventory_levels/set.json", in, nil)
	return err
}

type collectionEnvelope struct {
	SmartCollection smartCollection `json:"smart_collection"`
}

type collectionsEnvelope struct {
	SmartCollections []smartCollection `json:"smart_collections"`
}

// ListCollections implements catalog.Store. All pages are read.
func (c *Client) ListCollections(ctx context.Context) ([]catalog.Collection, error) {
	var all []catalog.Collection
	next := "/smart_collections.json?limit=" + strconv.Itoa(c.pageSize)
	for next != "" {
		var out collectionsEnvelope
		h, err := c.call(ctx, c.read, http.MethodGet, next, nil, &out)
		if err != nil {
			return nil, err
		}
		for i := range out.SmartCollections {
			all = append(all, out.SmartCollections[i].collection())
		}
		next = transport.NextLink(h)
	}
	return all, nil
}

// CreateCollection implements catalog.Store.
func (c *Client) CreateCollection(ctx context.Context, col *catalog.Collection) (*catalog.Collection, error) {
	in := collectionEnvelope{SmartCollection: smartCollection{Title: col.Title}}
	for _, r := range col.Rules {
		in.SmartCollection.Rules = append(in.SmartCollection.Rules, rule{Column: r.Column, Relation: r.Relation, Condition: r.Condition})
	}

	var out collectionEnvelope
	if _, err := c.call(ctx, c.mutation, http.MethodPost, "/smart_collections.json", in, &out); err != nil {
		return nil, err
	}
	created := out.SmartCollection.collection()
	return &created, nil
}
