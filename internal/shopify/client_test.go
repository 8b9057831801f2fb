package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/feedsync/internal/utils/ptr"
	"github.com/agentstation/feedsync/pkg/catalog"
	"github.com/agentstation/feedsync/pkg/errors"
)

type recorded struct {
	Method string
	Path   string
	Query  string
	Token  string
	Body   map[string]any
}

// fakeAdmin is a scripted admin API keyed by "METHOD path".
type fakeAdmin struct {
	t        *testing.T
	mu       sync.Mutex
	requests []recorded
	routes   map[string]func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeAdmin) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := recorded{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Token: r.Header.Get(AccessTokenHeader)}
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		assert.NoError(f.t, json.Unmarshal(data, &rec.Body))
	}
	f.mu.Lock()
	f.requests = append(f.requests, rec)
	f.mu.Unlock()

	h, ok := f.routes[r.Method+" "+r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

func (f *fakeAdmin) last() recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func reply(status int, body string) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func newTestClient(t *testing.T, routes map[string]func(http.ResponseWriter, *http.Request)) (*Client, *fakeAdmin) {
	t.Helper()
	fake := &fakeAdmin{t: t, routes: routes}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := New(Config{
		StoreURL:          srv.URL,
		APIKey:            "shpat_test",
		MutationInterval:  time.Millisecond,
		InventoryInterval: time.Millisecond,
		ReadInterval:      time.Millisecond,
		PageSize:          2,
		HTTPClient:        srv.Client(),
	})
	require.NoError(t, err)
	return c, fake
}

const apiRoot = "/admin/api/2023-04"

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
		base    string
	}{
		{"missing store", Config{APIKey: "k"}, true, ""},
		{"missing key", Config{StoreURL: "shop.myshopify.com"}, true, ""},
		{"bare domain", Config{StoreURL: "shop.myshopify.com", APIKey: "k"}, false, "https://shop.myshopify.com/admin/api/2023-04"},
		{"custom version", Config{StoreURL: "https://shop.myshopify.com/", APIKey: "k", APIVersion: "2024-01"}, false, "https://shop.myshopify.com/admin/api/2024-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg)
			if tt.wantErr {
				var cfgErr *errors.ConfigError
				assert.True(t, errors.As(err, &cfgErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.base, c.BaseURL())
		})
	}
}

func TestLookupByHandle(t *testing.T) {
	c, fake := newTestClient(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET " + apiRoot + "/products.json": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("handle") == "jacka-ram" {
				reply(200, `{"products":[{"id":7,"handle":"jacka-ram","title":"Jacka Ram","status":"active","tags":"handle:jacka-ram, Herr",
					"variants":[{"id":70,"sku":"DH-1","option1":"Green","price":"999.00","compare_at_price":null,"inventory_item_id":700,"image_id":5}],
					"images":[{"id":5,"src":"https://cdn.shopify.com/a_0f3e.jpg?v=1"}]}]}`)(w, r)
				return
			}
			reply(200, `{"products":[]}`)(w, r)
		},
	})

	e, err := c.LookupByHandle(context.Background(), "jacka-ram")
	require.NoError(t, err)
	require.NotNil(t, e)

	want := &catalog.Entry{
		ID:     7,
		Handle: "jacka-ram",
		Title:  "Jacka Ram",
		Status: catalog.StatusActive,
		Tags:   []string{"handle:jacka-ram", "Herr"},
		Variants: []catalog.EntryVariant{{
			ID: 70, SKU: "DH-1", Option1: "Green", Price: "999.00", InventoryItemID: 700, ImageID: ptr.Int64(5),
		}},
		Images: []catalog.EntryImage{{ID: 5, Src: "https://cdn.shopify.com/a_0f3e.jpg?v=1"}},
	}
	if diff := cmp.Diff(want, e); diff != "" {
		t.Errorf("entry mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "shpat_test", fake.last().Token)

	none, err := c.LookupByHandle(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestCreateProductPayload(t *testing.T) {
	c, fake := newTestClient(t, map[string]func(http.ResponseWriter, *http.Request){
		"POST " + apiRoot + "/products.json": reply(201, `{"product":{"id":9,"handle":"wax-jacka"}}`),
	})

	draft := &catalog.Draft{
		Title:  "Wax Jacka",
		Handle: "wax-jacka",
		Vendor: "Chevalier",
		Tags:   []string{"handle:wax-jacka", "Jackor"},
		Variants: []catalog.Variant{
			{SKU: "1-G-M", Color: "Green", Size: "M", Price: "1999.00", CompareAtPrice: ptr.String("2499.00"), InventoryQuantity: 3},
			{SKU: "1-G-L", Color: "Green", Size: "L", Price: "1999.00", InventoryQuantity: 0},
		},
		Images: []catalog.ImageRef{
			catalog.RemoteImage{URL: "https://img.example.com/a.jpg"},
			catalog.AttachedImage{Source: "https://img.example.com/big.png", Filename: "big.jpg", Data: []byte("jpeg")},
		},
	}

	e, err := c.CreateProduct(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, int64(9), e.ID)

	body := fake.last().Body["product"].(map[string]any)
	assert.Equal(t, "handle:wax-jacka, Jackor", body["tags"])
	assert.Equal(t, "active", body["status"])

	options := body["options"].([]any)
	require.Len(t, options, 2)
	assert.Equal(t, []any{"M", "L"}, options[1].(map[string]any)["values"])

	variants := body["variants"].([]any)
	first := variants[0].(map[string]any)
	assert.Equal(t, "2499.00", first["compare_at_price"])
	assert.Equal(t, "shopify", first["inventory_management"])
	assert.Equal(t, "deny", first["inventory_policy"])
	assert.EqualValues(t, 3, first["inventory_quantity"])
	assert.Nil(t, variants[1].(map[string]any)["compare_at_price"])

	images := body["images"].([]any)
	assert.Equal(t, "https://img.example.com/a.jpg", images[0].(map[string]any)["src"])
	assert.Equal(t, "anBlZw==", images[1].(map[string]any)["attachment"])
	assert.Equal(t, "big.jpg", images[1].(map[string]any)["filename"])
}

func TestUpdateProductClearsCompareAt(t *testing.T) {
	c, fake := newTestClient(t, map[string]func(http.ResponseWriter, *http.Request){
		"PUT " + apiRoot + "/products/9.json": reply(200, `{"product":{"id":9}}`),
	})

	_, err := c.UpdateProduct(context.Background(), &catalog.ProductUpdate{
		ID: 9,
		Variants: []catalog.EntryVariant{
			{ID: 90, SKU: "1-G-M", Price: "2499.00"},
			{SKU: "1-G-XL", Price: "2499.00"},
		},
		Images: []catalog.ImageRef{catalog.ExistingImage{ID: 5, Src: "x"}, catalog.RemoteImage{URL: "https://img/b.jpg"}},
	})
	require.NoError(t, err)

	body := fake.last().Body["product"].(map[string]any)
	variants := body["variants"].([]any)
	first := variants[0].(map[string]any)
	assert.Contains(t, first, "compare_at_price")
	assert.Nil(t, first["compare_at_price"])
	assert.NotContains(t, variants[1].(map[string]any), "id")

	images := body["images"].([]any)
	assert.EqualValues(t, 5, images[0].(map[string]any)["id"])
	assert.Equal(t, "https://img/b.jpg", images[1].(map[string]any)["src"])
}

func TestListProductsPagination(t *testing.T) {
	var srvURL string
	c, fake := newTestClient(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET " + apiRoot + "/products.json": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("page_info") == "" {
				w.Header().Set("Link", fmt.Sprintf(`<%s%s/products.json?limit=2&page_info=p2>; rel="next"`, srvURL, apiRoot))
				reply(200, `{"products":[{"id":1,"handle":"a","status":"active"},{"id":2,"handle":"b","status":"draft"}]}`)(w, r)
				return
			}
			reply(200, `{"products":[{"id":3,"handle":"c","status":"active"}]}`)(w, r)
		},
	})
	srvURL = strings.TrimSuffix(c.BaseURL(), apiRoot)

	page, err := c.ListProducts(context.Background(), "Deerhunter", "")
	require.NoError(t, err)
	assert.Len(t, page.Entries, 2)
	assert.Equal(t, "p2", page.Next)
	assert.Contains(t, fake.last().Query, "vendor=Deerhunter")

	page, err = c.ListProducts(context.Background(), "Deerhunter", page.Next)
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, "c", page.Entries[0].Handle)
	assert.Empty(t, page.Next)
	assert.NotContains(t, fake.last().Query, "vendor=")
}

func TestInventoryAndStatus(t *testing.T) {
	c, fake := newTestClient(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET " + apiRoot + "/locations.json":             reply(200, `{"locations":[{"id":11,"name":"Lager"},{"id":12,"name":"Butik"}]}`),
		"POST " + apiRoot + "/inventory_levels/set.json": reply(200, `{"inventory_level":{}}`),
		"PUT " + apiRoot + "/products/4.json":            reply(200, `{"product":{"id":4,"status":"draft"}}`),
		"PUT " + apiRoot + "/variants/40.json":           reply(200, `{"variant":{"id":40,"image_id":8}}`),
	})
	ctx := context.Background()

	locs, err := c.ListLocations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []catalog.Location{{ID: 11, Name: "Lager"}, {ID: 12, Name: "Butik"}}, locs)

	require.NoError(t, c.SetInventoryLevel(ctx, 400, 11, 50))
	assert.Equal(t, map[string]any{"location_id": 11.0, "inventory_item_id": 400.0, "available": 50.0}, fake.last().Body)

	assert.True(t, errors.IsValidationError(c.SetInventoryLevel(ctx, 0, 11, 1)))

	require.NoError(t, c.SetStatus(ctx, 4, catalog.StatusDraft))
	assert.Equal(t, "draft", fake.last().Body["product"].(map[string]any)["status"])

	require.NoError(t, c.SetVariantImage(ctx, 40, 8))
	assert.EqualValues(t, 8, fake.last().Body["variant"].(map[string]any)["image_id"])
}

func TestCollections(t *testing.T) {
	c, fake := newTestClient(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET " + apiRoot + "/smart_collections.json":  reply(200, `{"smart_collections":[{"id":1,"title":"Herr","rules":[{"column":"tag","relation":"equals","condition":"Herr"}]}]}`),
		"POST " + apiRoot + "/smart_collections.json": reply(201, `{"smart_collection":{"id":2,"title":"Jackor","rules":[{"column":"tag","relation":"equals","condition":"Jackor"}]}}`),
	})
	ctx := context.Background()

	cols, err := c.ListCollections(ctx)
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.Equal(t, catalog.TagRule("Herr"), cols[0].Rules[0])

	created, err := c.CreateCollection(ctx, &catalog.Collection{Title: "Jackor", Rules: []catalog.CollectionRule{catalog.TagRule("Jackor")}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), created.ID)
	assert.Equal(t, "Jackor", fake.last().Body["smart_collection"].(map[string]any)["title"])
}

func TestErrorsAreTyped(t *testing.T) {
	c, _ := newTestClient(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET " + apiRoot + "/products/1.json": reply(429, `{"errors":"Exceeded 2 calls per second for api client."}`),
		"GET " + apiRoot + "/products/2.json": reply(503, ``),
		"POST " + apiRoot + "/products.json":  reply(422, `{"errors":{"handle":["has already been taken"]}}`),
	})
	ctx := context.Background()

	_, err := c.GetProduct(ctx, 1)
	assert.True(t, errors.IsRateLimited(err))

	_, err = c.GetProduct(ctx, 2)
	assert.True(t, errors.IsUnavailable(err))

	_, err = c.GetProduct(ctx, 3)
	assert.True(t, errors.IsNotFound(err))

	_, err = c.CreateProduct(ctx, &catalog.Draft{Title: "x", Handle: "x"})
	var apiErr *errors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 422, apiErr.StatusCode)
	assert.Equal(t, Service, apiErr.Service)
	assert.Contains(t, apiErr.Message, "already been taken")
}

func TestThrottleHonoursContext(t *testing.T) {
	c, err := New(Config{StoreURL: "shop.example.com", APIKey: "k", ReadInterval: time.Hour})
	require.NoError(t, err)

	// drain the single burst token
	require.True(t, c.read.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = c.GetProduct(ctx, 1)
	assert.Error(t, err)
}
