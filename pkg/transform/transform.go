// Package transform turns a feed group into a normalized product draft:
// canonical product fields, variants, tags, prices and validated images.
package transform

import (
	"context"
	"sort"
	"strings"

	"github.com/agentstation/feedsync/pkg/catalog"
	"github.com/agentstation/feedsync/pkg/errors"
	"github.com/agentstation/feedsync/pkg/feed"
	"github.com/agentstation/feedsync/pkg/handle"
	"github.com/agentstation/feedsync/pkg/logging"
)

// ErrUnsellable rejects a group whose every variant is priced at zero.
var ErrUnsellable = &errors.ValidationError{Field: "price", Message: "every variant is priced at zero"}

// ImagePreparer validates an image URL and returns the reference to submit.
type ImagePreparer interface {
	Prepare(ctx context.Context, url string) (catalog.ImageRef, bool)
}

// Transformer builds drafts for one vendor profile.
type Transformer struct {
	profile *Profile
	images  ImagePreparer
}

// New creates a Transformer. images may be nil, in which case every image
// URL is used as-is.
func New(profile *Profile, images ImagePreparer) (*Transformer, error) {
	if profile == nil {
		return nil, errors.NewValidationError("profile", nil, "profile cannot be nil")
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return &Transformer{profile: profile, images: images}, nil
}

// Profile returns the vendor profile.
func (t *Transformer) Profile() *Profile {
	return t.profile
}

// Handle returns the handle a group's draft will carry, without building
// the draft.
func (t *Transformer) Handle(g *feed.Group) string {
	return handle.Normalize(g.First().Get(t.profile.TitleField))
}

// Transform builds the draft for a group. It returns ErrUnsellable when
// every variant is priced at zero and a validation error when the group has
// no usable title.
func (t *Transformer) Transform(ctx context.Context, g *feed.Group) (*catalog.Draft, error) {
	p := t.profile
	first := g.First()
	log := logging.FromContext(ctx)

	title := first.Get(p.TitleField)
	h := handle.Normalize(title)
	if h == "" {
		return nil, errors.NewValidationError(p.TitleField, title, "title yields an empty handle")
	}

	draft := &catalog.Draft{
		GroupKey:    g.Key,
		Title:       title,
		Handle:      h,
		Description: firstNonEmpty(first, p.DescriptionFields),
		Vendor:      p.Vendor,
		Hints:       make(map[string]string),
	}

	draft.Tags = t.tags(first, draft)

	seenSKU := make(map[string]bool)
	seenURL := make(map[string]bool)
	usable := make(map[string]bool)

	for _, r := range g.Records {
		v := t.variant(r)
		key := strings.ToLower(v.SKU)
		if seenSKU[key] {
			log.Warn().Str("sku", v.SKU).Int("line", r.Line).Msg("Skipping duplicate SKU in feed group")
			continue
		}
		seenSKU[key] = true
		draft.Variants = append(draft.Variants, v)

		rowHint := ""
		for _, url := range t.imageURLs(r) {
			if !seenURL[url] {
				seenURL[url] = true
				if ref, ok := t.prepare(ctx, url); ok {
					usable[url] = true
					draft.Images = append(draft.Images, ref)
				}
			}
			if rowHint == "" && usable[url] {
				rowHint = url
			}
		}
		if rowHint != "" {
			if key != "" {
				draft.Hints[key] = rowHint
			}
			if color := strings.ToLower(v.Color); color != "" {
				if _, ok := draft.Hints[color]; !ok {
					draft.Hints[color] = rowHint
				}
			}
		}
	}

	sellable := false
	for _, v := range draft.Variants {
		if !isZero(v.Price) {
			sellable = true
			break
		}
	}
	if !sellable {
		return nil, ErrUnsellable
	}

	return draft, nil
}

func (t *Transformer) prepare(ctx context.Context, url string) (catalog.ImageRef, bool) {
	if t.images == nil {
		return catalog.RemoteImage{URL: url}, true
	}
	return t.images.Prepare(ctx, url)
}

// tags assembles the ordered tag list: the handle tag first, then category,
// title keyword and attribute tags, then genders.
func (t *Transformer) tags(first *feed.Record, draft *catalog.Draft) []string {
	p := t.profile
	set := newTagSet()
	set.add(draft.HandleTag())
	set.add(p.categoryTags(first)...)
	set.add(p.titleTags(draft.Title)...)
	set.add(p.attributeTags(first)...)

	genders := p.genderTags(first)
	if len(genders) == 0 && (p.AccessoryTag == "" || !set.has(p.AccessoryTag)) {
		genders = append(genders, p.DefaultGenders...)
	}
	sort.Strings(genders)
	set.add(genders...)

	return set.order
}

// variant maps one row onto a variant, applying the price rule.
func (t *Transformer) variant(r *feed.Record) catalog.Variant {
	p := t.profile

	parts := make([]string, 0, len(p.SKUFields))
	for _, f := range p.SKUFields {
		parts = append(parts, r.Get(f))
	}

	v := catalog.Variant{
		SKU:               strings.Join(parts, "-"),
		Color:             r.Get(p.ColorField),
		Size:              r.Get(p.SizeField),
		Barcode:           r.Get(p.BarcodeField),
		InventoryQuantity: ParseStock(r.Get(p.StockField), p.StockWords),
	}

	regular := ParsePrice(r.Get(p.PriceField))

	discount := ""
	if p.DiscountField != "" {
		discount = r.Get(p.DiscountField)
	}
	if p.OutletField != "" && strings.EqualFold(r.Get(p.OutletField), "yes") {
		wholesale := ParsePrice(r.Get(p.WholesaleField))
		discount = FormatPrice(p.Outlet.OutletPrice(regular, wholesale))
	}

	if discount != "" {
		v.Price = FormatPrice(ParsePrice(discount))
		compare := FormatPrice(regular)
		v.CompareAtPrice = &compare
	} else {
		v.Price = FormatPrice(regular)
	}
	return v
}

// imageURLs lists a row's image URLs in field order.
func (t *Transformer) imageURLs(r *feed.Record) []string {
	var urls []string
	for _, f := range t.profile.ImageFields {
		urls = append(urls, r.All(f)...)
	}
	return urls
}

func firstNonEmpty(r *feed.Record, fields []string) string {
	for _, f := range fields {
		if v := r.Get(f); v != "" {
			return v
		}
	}
	return ""
}
