package images

import (
	"bytes"
	"image"
	"image/jpeg"
	"path"
	"strings"

	"golang.org/x/image/draw"

	// Registered decoders for feed images.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/agentstation/feedsync/pkg/catalog"
)

// Resample flattens an image onto white, shrinks it so neither side exceeds
// targetMax while keeping the aspect ratio, and encodes it as JPEG.
func Resample(data []byte, targetMax, quality int) ([]byte, image.Point, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, image.Point{}, err
	}

	size := fit(src.Bounds().Size(), targetMax)
	dst := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, image.Point{}, err
	}
	return buf.Bytes(), size, nil
}

// fit scales size down so that its longer side is at most limit.
func fit(size image.Point, limit int) image.Point {
	longest := max(size.X, size.Y)
	if limit <= 0 || longest <= limit {
		return size
	}
	scale := float64(limit) / float64(longest)
	return image.Point{
		X: max(1, int(float64(size.X)*scale+0.5)),
		Y: max(1, int(float64(size.Y)*scale+0.5)),
	}
}

// attachmentName derives the upload filename of a resampled image from its
// source URL.
func attachmentName(url string) string {
	base := catalog.URLBase(url)
	stem := strings.TrimSuffix(base, path.Ext(base))
	if stem == "" {
		stem = "image"
	}
	return stem + ".jpg"
}
