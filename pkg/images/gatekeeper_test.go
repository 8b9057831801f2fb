package images_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/feedsync/pkg/cache"
	"github.com/agentstation/feedsync/pkg/catalog"
	"github.com/agentstation/feedsync/pkg/images"
	"github.com/agentstation/feedsync/pkg/store"
)

func pngBytes(t *testing.T, w, h int, fill color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, fill)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type imageHost struct {
	*httptest.Server
	hits atomic.Int32
}

func newImageHost(t *testing.T, files map[string][]byte) *imageHost {
	t.Helper()
	h := &imageHost{}
	h.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.hits.Add(1)
		data, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	}))
	t.Cleanup(h.Close)
	return h
}

func newCache(t *testing.T) *cache.Cache[images.Entry] {
	t.Helper()
	c, err := cache.Open[images.Entry](context.Background(), store.NewMemory(), "validation")
	require.NoError(t, err)
	return c
}

var smallLimits = images.Limits{MaxBytes: 1 << 20, MaxWidth: 100, MaxHeight: 100, TargetMax: 50, Quality: 85}

func TestPrepareValid(t *testing.T) {
	host := newImageHost(t, map[string][]byte{"/ok.png": pngBytes(t, 40, 30, color.Black)})
	validation := newCache(t)
	g := images.New(validation, images.WithLimits(smallLimits))
	ctx := context.Background()
	url := host.URL + "/ok.png"

	ref, ok := g.Prepare(ctx, url)
	require.True(t, ok)
	assert.Equal(t, catalog.RemoteImage{URL: url}, ref)

	entry, cached := validation.Get(url)
	require.True(t, cached)
	assert.Equal(t, images.DecisionValid, entry.Decision)
	assert.Equal(t, 40, entry.Width)
	assert.Equal(t, 30, entry.Height)
	assert.Equal(t, "png", entry.Format)

	// A cached valid decision needs no network.
	_, ok = g.Prepare(ctx, url)
	assert.True(t, ok)
	assert.Equal(t, int32(1), host.hits.Load())
}

func TestPrepareFailed(t *testing.T) {
	host := newImageHost(t, map[string][]byte{"/garbage.jpg": []byte("not an image")})
	validation := newCache(t)
	g := images.New(validation)
	ctx := context.Background()

	for _, path := range []string{"/missing.jpg", "/garbage.jpg"} {
		url := host.URL + path
		ref, ok := g.Prepare(ctx, url)
		assert.False(t, ok, path)
		assert.Nil(t, ref)

		entry, cached := validation.Get(url)
		require.True(t, cached)
		assert.Equal(t, images.DecisionFailed, entry.Decision)
		assert.NotEmpty(t, entry.Reason)
	}
	require.Equal(t, int32(2), host.hits.Load())

	// Cached failures are not fetched again.
	_, ok := g.Prepare(ctx, host.URL+"/missing.jpg")
	assert.False(t, ok)
	assert.Equal(t, int32(2), host.hits.Load())
}

func TestPrepareResamples(t *testing.T) {
	transparent := color.NRGBA{R: 0, G: 0, B: 0, A: 0}
	host := newImageHost(t, map[string][]byte{"/big/photo.png": pngBytes(t, 300, 200, transparent)})
	validation := newCache(t)
	ctx := context.Background()
	url := host.URL + "/big/photo.png"

	g := images.New(validation, images.WithLimits(smallLimits))
	ref, ok := g.Prepare(ctx, url)
	require.True(t, ok)

	att, isAttachment := ref.(catalog.AttachedImage)
	require.True(t, isAttachment)
	assert.Equal(t, url, att.Source)
	assert.Equal(t, "photo.jpg", att.Filename)

	out, err := jpeg.Decode(bytes.NewReader(att.Data))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(50, 33), out.Bounds().Size())

	r, gr, b, _ := out.At(25, 16).RGBA()
	assert.Greater(t, r>>8, uint32(240), "transparent pixels are flattened onto white")
	assert.Greater(t, gr>>8, uint32(240))
	assert.Greater(t, b>>8, uint32(240))

	entry, _ := validation.Get(url)
	assert.Equal(t, images.DecisionResize, entry.Decision)
	assert.Equal(t, 300, entry.Width)
	assert.Equal(t, 200, entry.Height)

	// Same run: memoised, no refetch.
	_, ok = g.Prepare(ctx, url)
	require.True(t, ok)
	assert.Equal(t, int32(1), host.hits.Load())

	// Next run: the cache only knows the decision, so the bytes are rebuilt.
	next := images.New(validation, images.WithLimits(smallLimits))
	ref, ok = next.Prepare(ctx, url)
	require.True(t, ok)
	assert.IsType(t, catalog.AttachedImage{}, ref)
	assert.Equal(t, int32(2), host.hits.Load())
}

func TestPrepareResamplesOversizedBytes(t *testing.T) {
	data := pngBytes(t, 20, 20, color.White)
	host := newImageHost(t, map[string][]byte{"/heavy.png": data})
	limits := smallLimits
	limits.MaxBytes = int64(len(data) - 1)

	g := images.New(newCache(t), images.WithLimits(limits))
	ref, ok := g.Prepare(context.Background(), host.URL+"/heavy.png")
	require.True(t, ok)
	att := ref.(catalog.AttachedImage)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(att.Data))
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Width, "images within the dimension bound keep their size")
}

func TestLimitsExceeds(t *testing.T) {
	l := images.DefaultLimits()
	assert.False(t, l.Exceeds(1024, 5000, 5000))
	assert.True(t, l.Exceeds(1024, 5001, 10))
	assert.True(t, l.Exceeds(1024, 10, 5001))
	assert.True(t, l.Exceeds(20*1024*1024+1, 10, 10))
}
