package shopify

import (
	"encoding/base64"
	"strings"

	"github.com/agentstation/feedsync/pkg/catalog"
)

// JSON shapes of the admin REST API.

type product struct {
	ID             int64     `json:"id,omitempty"`
	Title          string    `json:"title,omitempty"`
	Handle         string    `json:"handle,omitempty"`
	BodyHTML       string    `json:"body_html,omitempty"`
	Vendor         string    `json:"vendor,omitempty"`
	Status         string    `json:"status,omitempty"`
	Tags           string    `json:"tags,omitempty"`
	PublishedScope string    `json:"published_scope,omitempty"`
	Options        []option  `json:"options,omitempty"`
	Variants       []variant `json:"variants,omitempty"`
	Images         []image   `json:"images,omitempty"`
}

type option struct {
	Name     string   `json:"name"`
	Position int      `json:"position"`
	Values   []string `json:"values"`
}

type variant struct {
	ID                  int64   `json:"id,omitempty"`
	SKU                 string  `json:"sku"`
	Option1             string  `json:"option1,omitempty"`
	Option2             string  `json:"option2,omitempty"`
	Price               string  `json:"price"`
	CompareAtPrice      *string `json:"compare_at_price"`
	Barcode             string  `json:"barcode"`
	InventoryItemID     int64   `json:"inventory_item_id,omitempty"`
	InventoryManagement string  `json:"inventory_management,omitempty"`
	InventoryPolicy     string  `json:"inventory_policy,omitempty"`
	InventoryQuantity   *int    `json:"inventory_quantity,omitempty"`
	ImageID             *int64  `json:"image_id,omitempty"`
}

type image struct {
	ID         int64  `json:"id,omitempty"`
	Src        string `json:"src,omitempty"`
	Attachment string `json:"attachment,omitempty"`
	Filename   string `json:"filename,omitempty"`
}

type location struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type smartCollection struct {
	ID    int64  `json:"id,omitempty"`
	Title string `json:"title"`
	Rules []rule `json:"rules"`
}

type rule struct {
	Column    string `json:"column"`
	Relation  string `json:"relation"`
	Condition string `json:"condition"`
}

type inventoryLevel struct {
	LocationID      int64 `json:"location_id"`
	InventoryItemID int64 `json:"inventory_item_id"`
	Available       int   `json:"available"`
}

// draftProduct is the create payload for a draft.
func draftProduct(d *catalog.Draft) product {
	p := product{
		Title:          d.Title,
		Handle:         d.Handle,
		BodyHTML:       d.Description,
		Vendor:         d.Vendor,
		Status:         string(catalog.StatusActive),
		Tags:           joinTags(d.Tags),
		PublishedScope: "global",
	}

	var colors, sizes []string
	for _, v := range d.Variants {
		colors = appendUnique(colors, v.Color)
		sizes = appendUnique(sizes, v.Size)

		qty := v.InventoryQuantity
		p.Variants = append(p.Variants, variant{
			SKU:                 v.SKU,
			Option1:             v.Color,
			Option2:             v.Size,
			Price:               v.Price,
			CompareAtPrice:      v.CompareAtPrice,
			Barcode:             v.Barcode,
			InventoryManagement: catalog.InventoryManagement,
			InventoryPolicy:     catalog.InventoryPolicy,
			InventoryQuantity:   &qty,
		})
	}
	if len(colors) > 0 {
		p.Options = append(p.Options, option{Name: "Color", Position: 1, Values: colors})
	}
	if len(sizes) > 0 {
		p.Options = append(p.Options, option{Name: "Size", Position: len(p.Options) + 1, Values: sizes})
	}

	for _, ref := range d.Images {
		p.Images = append(p.Images, imagePayload(ref))
	}
	return p
}

// updateProduct is the merge payload. Variants without an id are created;
// variants omitted from the list are removed by the API.
func updateProduct(u *catalog.ProductUpdate) product {
	p := product{ID: u.ID}
	for _, v := range u.Variants {
		p.Variants = append(p.Variants, variant{
			ID:                  v.ID,
			SKU:                 v.SKU,
			Option1:             v.Option1,
			Option2:             v.Option2,
			Price:               v.Price,
			CompareAtPrice:      v.CompareAtPrice,
			Barcode:             v.Barcode,
			InventoryManagement: v.InventoryManagement,
			InventoryPolicy:     v.InventoryPolicy,
		})
	}
	for _, ref := range u.Images {
		p.Images = append(p.Images, imagePayload(ref))
	}
	return p
}

func imagePayload(ref catalog.ImageRef) image {
	switch img := ref.(type) {
	case catalog.ExistingImage:
		return image{ID: img.ID}
	case catalog.AttachedImage:
		return image{
			Attachment: base64.StdEncoding.EncodeToString(img.Data),
			Filename:   img.Filename,
		}
	case catalog.RemoteImage:
		return image{Src: img.URL}
	}
	return image{}
}

func (p *product) entry() *catalog.Entry {
	e := &catalog.Entry{
		ID:     p.ID,
		Handle: p.Handle,
		Title:  p.Title,
		Vendor: p.Vendor,
		Status: catalog.Status(p.Status),
		Tags:   splitTags(p.Tags),
	}
	for _, v := range p.Variants {
		e.Variants = append(e.Variants, catalog.EntryVariant{
			ID:                  v.ID,
			SKU:                 v.SKU,
			Option1:             v.Option1,
			Option2:             v.Option2,
			Price:               v.Price,
			CompareAtPrice:      v.CompareAtPrice,
			Barcode:             v.Barcode,
			InventoryItemID:     v.InventoryItemID,
			InventoryManagement: v.InventoryManagement,
			InventoryPolicy:     v.InventoryPolicy,
			ImageID:             v.ImageID,
		})
	}
	for _, img := range p.Images {
		e.Images = append(e.Images, catalog.EntryImage{ID: img.ID, Src: img.Src})
	}
	return e
}

func (c *smartCollection) collection() catalog.Collection {
	out := catalog.Collection{ID: c.ID, Title: c.Title}
	for _, r := range c.Rules {
		out.Rules = append(out.Rules, catalog.CollectionRule{Column: r.Column, Relation: r.Relation, Condition: r.Condition})
	}
	return out
}

func joinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

func splitTags(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func appendUnique(list []string, v string) []string {
	if v == "" {
		return list
	}
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
