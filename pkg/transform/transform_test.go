package transform_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/feedsync/pkg/catalog"
	"github.com/agentstation/feedsync/pkg/errors"
	"github.com/agentstation/feedsync/pkg/feed"
	"github.com/agentstation/feedsync/pkg/transform"
)

func testProfile() *transform.Profile {
	return &transform.Profile{
		Name:              "test",
		Vendor:            "Acme",
		GroupField:        "number",
		TitleField:        "name",
		DescriptionFields: []string{"description", "html"},
		SKUFields:         []string{"number", "size"},
		ColorField:        "color",
		SizeField:         "size",
		BarcodeField:      "ean",
		StockField:        "stock",
		StockWords:        transform.DefaultStockWords,
		PriceField:        "price",
		DiscountField:     "sale",
		CategoryField:     "category",
		Categories: transform.CategoryTable{
			Allowed: map[string]string{"jackor": "Jackor", "accessoarer": "Accessoarer", "herr": "Herr"},
			Extra:   map[string]string{"kängor": "Skor"},
		},
		GenderKeywords: []transform.KeywordRule{
			{Keywords: []string{"herr"}, Tag: "Herr"},
			{Keywords: []string{"dam"}, Tag: "Dam"},
		},
		TitleKeywords:   []transform.KeywordRule{{Keywords: []string{"jacka"}, Tag: "Jackor"}},
		AttributeFields: []string{"series"},
		ImageFields:     []string{"image", "extra"},
		AccessoryTag:    "Accessoarer",
		DefaultGenders:  []string{"Herr", "Dam"},
	}
}

func row(line int, kv ...string) *feed.Record {
	r := feed.NewRecord(line)
	for i := 0; i+1 < len(kv); i += 2 {
		r.Add(kv[i], kv[i+1])
	}
	return r
}

// fakeImages accepts every URL except those containing "broken".
type fakeImages struct {
	calls []string
}

func (f *fakeImages) Prepare(_ context.Context, url string) (catalog.ImageRef, bool) {
	f.calls = append(f.calls, url)
	if strings.Contains(url, "broken") {
		return nil, false
	}
	return catalog.RemoteImage{URL: url}, true
}

func TestTransformDiscountOnOneColor(t *testing.T) {
	p := testProfile()
	p.SKUFields = []string{"number", "color", "size"}
	tr, err := transform.New(p, &fakeImages{})
	require.NoError(t, err)

	group := &feed.Group{Key: "P1", Records: []*feed.Record{
		row(1, "number", "P1", "name", "Jacka Ram", "color", "Red", "size", "M", "price", "200", "sale", "150"),
		row(2, "number", "P1", "color", "Blue", "size", "M", "price", "200"),
	}}

	draft, err := tr.Transform(context.Background(), group)
	require.NoError(t, err)
	require.Len(t, draft.Variants, 2)

	regular := "200.00"
	want := []catalog.Variant{
		{SKU: "P1-Red-M", Color: "Red", Size: "M", Price: "150.00", CompareAtPrice: &regular},
		{SKU: "P1-Blue-M", Color: "Blue", Size: "M", Price: "200.00"},
	}
	if diff := cmp.Diff(want, draft.Variants); diff != "" {
		t.Errorf("variants mismatch (-want +got):\n%s", diff)
	}

	discounted := 0
	for _, v := range draft.Variants {
		if v.CompareAtPrice != nil {
			discounted++
		}
	}
	assert.Equal(t, 1, discounted)
}

func TestTransform(t *testing.T) {
	imgs := &fakeImages{}
	tr, err := transform.New(testProfile(), imgs)
	require.NoError(t, err)

	group := &feed.Group{Key: "100", Records: []*feed.Record{
		row(1, "number", "100", "name", "Tröja Jacka Åre", "html", "<p>Warm</p>",
			"size", "M", "color", "Black", "price", "1299,00", "sale", "999", "stock", "instock",
			"ean", "7300000000011", "category", "Herr > Jackor", "category", "Kängor", "series", "Moor",
			"image", "https://cdn/broken.jpg", "image", "https://cdn/black-front.jpg", "extra", "https://cdn/shared.jpg"),
		row(2, "number", "100", "name", "ignored title", "size", "L", "color", "Black", "price", "1299", "stock", "3",
			"image", "https://cdn/black-front.jpg", "extra", "https://cdn/black-side.jpg"),
		row(3, "number", "100", "size", "M", "color", "Green", "price", "1299", "stock", "nostock",
			"image", "https://cdn/shared.jpg"),
		row(4, "number", "100", "size", "m", "color", "Red", "price", "1"),
	}}

	draft, err := tr.Transform(context.Background(), group)
	require.NoError(t, err)

	assert.Equal(t, "100", draft.GroupKey)
	assert.Equal(t, "Tröja Jacka Åre", draft.Title)
	assert.Equal(t, "troja-jacka-are", draft.Handle)
	assert.Equal(t, "<p>Warm</p>", draft.Description)
	assert.Equal(t, "Acme", draft.Vendor)
	assert.Equal(t, []string{"handle:troja-jacka-are", "Herr", "Jackor", "Skor", "Moor"}, draft.Tags)

	sale := "1299.00"
	want := []catalog.Variant{
		{SKU: "100-M", Color: "Black", Size: "M", Price: "999.00", CompareAtPrice: &sale, Barcode: "7300000000011", InventoryQuantity: 50},
		{SKU: "100-L", Color: "Black", Size: "L", Price: "1299.00", InventoryQuantity: 3},
	}
	// Row 3 repeats SKU 100-M and row 4 differs only by case, so both are dropped.
	if diff := cmp.Diff(want, draft.Variants); diff != "" {
		t.Errorf("variants mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []catalog.ImageRef{
		catalog.RemoteImage{URL: "https://cdn/black-front.jpg"},
		catalog.RemoteImage{URL: "https://cdn/shared.jpg"},
		catalog.RemoteImage{URL: "https://cdn/black-side.jpg"},
	}, draft.Images)

	assert.Equal(t, map[string]string{
		"100-m": "https://cdn/black-front.jpg",
		"100-l": "https://cdn/black-front.jpg",
		"black": "https://cdn/black-front.jpg",
	}, draft.Hints)

	// Each distinct URL is validated once.
	assert.Len(t, imgs.calls, 4)
}

func TestTransformHintsPerColor(t *testing.T) {
	tr, err := transform.New(testProfile(), nil)
	require.NoError(t, err)

	draft, err := tr.Transform(context.Background(), &feed.Group{Key: "7", Records: []*feed.Record{
		row(1, "number", "7", "name", "Cap", "size", "S", "color", "Olive", "price", "100", "image", "https://cdn/olive.jpg"),
		row(2, "number", "7", "size", "L", "color", "Olive", "price", "100", "image", "https://cdn/olive-2.jpg"),
		row(3, "number", "7", "size", "S2", "color", "Navy", "price", "100"),
	}})
	require.NoError(t, err)

	assert.Equal(t, "https://cdn/olive.jpg", draft.Hints["olive"], "first image of the color wins")
	assert.Equal(t, "https://cdn/olive-2.jpg", draft.Hints["7-l"])
	_, ok := draft.Hints["navy"]
	assert.False(t, ok)
}

func TestTransformGenderDefaults(t *testing.T) {
	tr, err := transform.New(testProfile(), nil)
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		name     string
		category string
		want     []string
	}{
		{"no gender gets both", "Jackor", []string{"handle:vest", "Jackor", "Dam", "Herr"}},
		{"accessory gets none", "Accessoarer", []string{"handle:vest", "Accessoarer"}},
		{"detected gender only", "Dam > Jackor", []string{"handle:vest", "Jackor", "Dam"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft, err := tr.Transform(ctx, &feed.Group{Key: "1", Records: []*feed.Record{
				row(1, "number", "1", "name", "Vest", "size", "M", "price", "10", "category", tt.category),
			}})
			require.NoError(t, err)
			assert.Equal(t, tt.want, draft.Tags)
		})
	}
}

func TestTransformRejectsZeroPrices(t *testing.T) {
	tr, err := transform.New(testProfile(), nil)
	require.NoError(t, err)

	_, err = tr.Transform(context.Background(), &feed.Group{Key: "1", Records: []*feed.Record{
		row(1, "number", "1", "name", "Free Hat", "size", "S", "price", "0"),
		row(2, "number", "1", "size", "M", "price", "not a price"),
	}})
	assert.ErrorIs(t, err, transform.ErrUnsellable)
	assert.True(t, errors.IsValidationError(err))
}

func TestTransformRequiresTitle(t *testing.T) {
	tr, err := transform.New(testProfile(), nil)
	require.NoError(t, err)

	_, err = tr.Transform(context.Background(), &feed.Group{Key: "1", Records: []*feed.Record{
		row(1, "number", "1", "name", "®", "price", "10"),
	}})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.NotErrorIs(t, err, transform.ErrUnsellable)
}

func TestOutletPricing(t *testing.T) {
	p := testProfile()
	p.DiscountField = ""
	p.OutletField = "outlet"
	p.WholesaleField = "wholesale"
	p.Outlet = transform.DefaultOutletPolicy()
	tr, err := transform.New(p, nil)
	require.NoError(t, err)

	draft, err := tr.Transform(context.Background(), &feed.Group{Key: "1", Records: []*feed.Record{
		row(1, "number", "1", "name", "Jacka", "size", "S", "price", "1000", "outlet", "Yes", "wholesale", "250"),
		row(2, "number", "1", "size", "M", "price", "1000", "outlet", "yes"),
		row(3, "number", "1", "size", "L", "price", "1000", "outlet", "no", "wholesale", "250"),
	}})
	require.NoError(t, err)

	require.Len(t, draft.Variants, 3)
	assert.Equal(t, "550.00", draft.Variants[0].Price)
	assert.Equal(t, "1000.00", *draft.Variants[0].CompareAtPrice)
	assert.Equal(t, "700.00", draft.Variants[1].Price)
	assert.Equal(t, "1000.00", draft.Variants[2].Price)
	assert.Nil(t, draft.Variants[2].CompareAtPrice)
}

func TestHandleAndKeyFunc(t *testing.T) {
	p := testProfile()
	tr, err := transform.New(p, nil)
	require.NoError(t, err)

	g := &feed.Group{Key: "1", Records: []*feed.Record{row(1, "number", "1", "name", "Wax Jacket 2.0")}}
	assert.Equal(t, "wax-jacket-2-0", tr.Handle(g))
	assert.Equal(t, "1", p.KeyFunc()(g.First()))

	p.GroupField = ""
	assert.Equal(t, "wax-jacket-2-0", p.KeyFunc()(g.First()))
}

func TestNewValidatesProfile(t *testing.T) {
	_, err := transform.New(nil, nil)
	assert.Error(t, err)

	p := testProfile()
	p.PriceField = ""
	_, err = transform.New(p, nil)
	assert.True(t, errors.IsValidationError(err))

	p = testProfile()
	p.OutletField = "outlet"
	_, err = transform.New(p, nil)
	assert.Error(t, err)
}
