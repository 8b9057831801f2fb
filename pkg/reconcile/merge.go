package reconcile

import (
	"strings"

	"github.com/agentstation/feedsync/internal/utils/ptr"
	"github.com/agentstation/feedsync/pkg/catalog"
)

// VariantMerge is the result of merging draft variants into an entry.
type VariantMerge struct {
	Variants []catalog.EntryVariant
	Updated  int
	Added    int
}

// MergeVariants overlays draft variants on the existing ones, matched by SKU
// without regard to case. Matched variants take the draft's price, barcode
// and compare-at price (cleared when the draft has none) and keep everything
// else, inventory included. Unmatched draft variants are appended. Existing
// variants absent from the draft are kept.
func MergeVariants(existing []catalog.EntryVariant, draft []catalog.Variant) VariantMerge {
	out := VariantMerge{Variants: make([]catalog.EntryVariant, len(existing))}
	bySKU := make(map[string]int, len(existing))
	for i, v := range existing {
		out.Variants[i] = v
		if key := skuKey(v.SKU); key != "" {
			if _, dup := bySKU[key]; !dup {
				bySKU[key] = i
			}
		}
	}

	for _, dv := range draft {
		key := skuKey(dv.SKU)
		if i, ok := bySKU[key]; ok && key != "" {
			v := &out.Variants[i]
			v.Price = dv.Price
			v.CompareAtPrice = ptr.Clone(dv.CompareAtPrice)
			v.Barcode = dv.Barcode
			out.Updated++
			continue
		}

		out.Variants = append(out.Variants, catalog.EntryVariant{
			SKU:                 dv.SKU,
			Option1:             dv.Color,
			Option2:             dv.Size,
			Price:               dv.Price,
			CompareAtPrice:      ptr.Clone(dv.CompareAtPrice),
			Barcode:             dv.Barcode,
			InventoryManagement: catalog.InventoryManagement,
			InventoryPolicy:     catalog.InventoryPolicy,
		})
		if key != "" {
			bySKU[key] = len(out.Variants) - 1
		}
		out.Added++
	}
	return out
}

// ImageMerge is the result of merging draft images into an entry.
type ImageMerge struct {
	Images []catalog.ImageRef
	Added  int
}

// MergeImages keeps every existing image in order and appends the draft
// images whose key matches neither an existing image nor an image appended
// before it. skip reports source URLs that must not be submitted again; it
// may be nil.
func MergeImages(existing []catalog.EntryImage, draft []catalog.ImageRef, skip func(string) bool) ImageMerge {
	out := ImageMerge{Images: make([]catalog.ImageRef, 0, len(existing)+len(draft))}
	seen := make(map[string]struct{}, len(existing)+len(draft))
	for _, img := range existing {
		out.Images = append(out.Images, catalog.ExistingImage{ID: img.ID, Src: img.Src})
		seen[ImageKey(img.Src)] = struct{}{}
	}

	for _, ref := range draft {
		if skip != nil && ref.SourceURL() != "" && skip(ref.SourceURL()) {
			continue
		}
		key := ImageKey(ref.FileName())
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out.Images = append(out.Images, ref)
		out.Added++
	}
	return out
}

// Assignment points a variant at an image.
type Assignment struct {
	VariantID int64
	ImageID   int64
}

// AssignVariantImages resolves each variant's hinted image against the
// entry's images by key and returns the assignments that change a variant's
// current image. Variants without a hint or a matching image are skipped.
func AssignVariantImages(entry *catalog.Entry, draft *catalog.Draft) []Assignment {
	ids := make(map[string]int64, len(entry.Images))
	for _, img := range entry.Images {
		key := ImageKey(img.Src)
		if _, ok := ids[key]; !ok {
			ids[key] = img.ID
		}
	}

	var out []Assignment
	for _, v := range entry.Variants {
		hint, ok := draft.Hint(v.SKU, v.Option1)
		if !ok {
			continue
		}
		id, ok := ids[ImageKey(hint)]
		if !ok {
			continue
		}
		if v.ImageID != nil && *v.ImageID == id {
			continue
		}
		out = append(out, Assignment{VariantID: v.ID, ImageID: id})
	}
	return out
}

func skuKey(sku string) string {
	return strings.ToLower(strings.TrimSpace(sku))
}
