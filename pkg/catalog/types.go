// Package catalog defines the normalized product model produced from vendor
// feeds, the shape of remote catalog entries, and the Store interface the
// reconciliation pipeline talks to.
package catalog

import (
	"path"
	"strings"
)

// Fixed variant settings. Inventory is tracked by the catalog itself and
// overselling is denied.
const (
	InventoryManagement = "shopify"
	InventoryPolicy     = "deny"
)

// Status is the publication state of a catalog entry.
type Status string

// Catalog entry statuses.
const (
	StatusActive   Status = "active"
	StatusDraft    Status = "draft"
	StatusArchived Status = "archived"
)

// HandleTagPrefix prefixes the tag that carries a product's own handle.
const HandleTagPrefix = "handle:"

// GroupTagPrefix prefixes tags that carry vendor grouping keys.
const GroupTagPrefix = "group_sku:"

// Draft is the normalized product built from one feed group. Drafts exist
// only for the duration of a run.
type Draft struct {
	GroupKey    string
	Title       string
	Handle      string
	Description string
	Vendor      string
	Tags        []string
	Variants    []Variant
	Images      []ImageRef

	// Hints maps a lowercased SKU, or failing that a lowercased color, to
	// the source URL of the image that variant should display.
	Hints map[string]string
}

// HandleTag returns the tag carrying the draft's handle.
func (d *Draft) HandleTag() string {
	return HandleTagPrefix + d.Handle
}

// Hint returns the image URL hinted for a variant, by SKU first and color
// second.
func (d *Draft) Hint(sku, color string) (string, bool) {
	for _, key := range []string{sku, color} {
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		if u, ok := d.Hints[key]; ok {
			return u, true
		}
	}
	return "", false
}

// ImageSources returns the feed URL behind every draft image.
func (d *Draft) ImageSources() []string {
	out := make([]string, 0, len(d.Images))
	for _, img := range d.Images {
		if src := img.SourceURL(); src != "" {
			out = append(out, src)
		}
	}
	return out
}

// Variant is one sellable unit of a draft.
type Variant struct {
	SKU   string
	Color string
	Size  string

	// Price is a non-negative decimal string with two decimals.
	Price string

	// CompareAtPrice is set only when the variant is discounted; it then
	// holds the regular price.
	CompareAtPrice *string

	Barcode           string
	InventoryQuantity int
}

// ImageRef is an image attached to a draft. It is either a RemoteImage the
// catalog downloads itself or an AttachedImage carrying resampled bytes.
// Update requests may also carry ExistingImage values to keep images that
// are already in the catalog.
type ImageRef interface {
	// SourceURL is the feed URL the image came from, empty for existing
	// catalog images.
	SourceURL() string

	// FileName is the name the catalog will store the image under.
	FileName() string

	isImageRef()
}

// RemoteImage is an image URL that passed validation as-is.
type RemoteImage struct {
	URL string
}

// SourceURL implements ImageRef.
func (i RemoteImage) SourceURL() string { return i.URL }

// FileName implements ImageRef.
func (i RemoteImage) FileName() string { return URLBase(i.URL) }

func (RemoteImage) isImageRef() {}

// AttachedImage carries resampled image bytes uploaded inline.
type AttachedImage struct {
	Source   string
	Filename string
	Data     []byte
}

// SourceURL implements ImageRef.
func (i AttachedImage) SourceURL() string { return i.Source }

// FileName implements ImageRef.
func (i AttachedImage) FileName() string { return i.Filename }

func (AttachedImage) isImageRef() {}

// ExistingImage references an image already stored on a catalog entry.
type ExistingImage struct {
	ID  int64
	Src string
}

// SourceURL implements ImageRef.
func (ExistingImage) SourceURL() string { return "" }

// FileName implements ImageRef.
func (i ExistingImage) FileName() string { return URLBase(i.Src) }

func (ExistingImage) isImageRef() {}

// URLBase returns the last path element of a URL, ignoring query and
// fragment.
func URLBase(rawURL string) string {
	u := rawURL
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	base := path.Base(u)
	if base == "." || base == "/" {
		return ""
	}
	return base
}

// Entry is a product as the remote catalog stores it.
type Entry struct {
	ID       int64
	Handle   string
	Title    string
	Vendor   string
	Status   Status
	Tags     []string
	Variants []EntryVariant
	Images   []EntryImage
}

// EntryVariant is a variant as the remote catalog stores it.
type EntryVariant struct {
	ID                  int64
	SKU                 string
	Option1             string
	Option2             string
	Price               string
	CompareAtPrice      *string
	Barcode             string
	InventoryItemID     int64
	InventoryManagement string
	InventoryPolicy     string
	ImageID             *int64
}

// EntryImage is an image as the remote catalog stores it.
type EntryImage struct {
	ID  int64
	Src string
}

// ProductUpdate is the single update request sent when merging a draft into
// an existing entry.
type ProductUpdate struct {
	ID       int64
	Variants []EntryVariant
	Images   []ImageRef
}

// Location is an inventory location.
type Location struct {
	ID   int64
	Name string
}

// Collection is a rule-based (smart) collection.
type Collection struct {
	ID    int64
	Title string
	Rules []CollectionRule
}

// CollectionRule is one matching rule of a smart collection.
type CollectionRule struct {
	Column    string
	Relation  string
	Condition string
}

// TagRule returns the rule matching products tagged exactly with tag.
func TagRule(tag string) CollectionRule {
	return CollectionRule{Column: "tag", Relation: "equals", Condition: tag}
}

// Page is one page of catalog entries. Next is empty on the last page.
type Page struct {
	Entries []Entry
	Next    string
}
