// Package imaging crops uploaded pictures to a target aspect ratio, scales
// them down to a target width and stores them as JPEG.
package imaging

import (
	"image"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Spec describes one kind of stored image.
type Spec struct {
	// Kind is the storage subdirectory and metrics label.
	Kind  string
	Width int
	// Ratio is width divided by height.
	Ratio float64
}

var (
	ProfilePhoto = Spec{Kind: "profile_photos", Width: 400, Ratio: 1}
	PostImage    = Spec{Kind: "post_images", Width: 800, Ratio: 16.0 / 9.0}
)

// round matches the half-to-even rounding the stored dimensions were
// historically computed with.
func round(v float64) int {
	return int(math.RoundToEven(v))
}

// CropSize returns the largest w x h box with the given ratio that fits
// inside the source.
func CropSize(w, h int, ratio float64) (cropW, cropH int) {
	cropW = min(round(float64(h)*ratio), w)
	cropH = min(round(float64(w)/ratio), h)
	return max(cropW, 1), max(cropH, 1)
}

// TargetSize scales a crop box down to width. Boxes narrower than width
// keep their size.
func TargetSize(cropW, cropH, width int) (int, int) {
	factor := 1.0
	if cropW >= width {
		factor = float64(width) / float64(cropW)
	}
	return max(round(float64(cropW)*factor), 1), max(round(float64(cropH)*factor), 1)
}

// Resize crops src centered to spec.Ratio and scales it to spec.Width
// with bilinear resampling. It never upscales.
func Resize(src image.Image, spec Spec) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return src
	}

	cropW, cropH := CropSize(w, h, spec.Ratio)
	box := image.Rect(0, 0, cropW, cropH).Add(image.Point{
		X: b.Min.X + (w-cropW)/2,
		Y: b.Min.Y + (h-cropH)/2,
	})
	outW, outH := TargetSize(cropW, cropH, spec.Width)

	dst := image.NewRGBA(image.Rect(0, 0, outW, outH))
	if outW == cropW && outH == cropH {
		draw.Draw(dst, dst.Bounds(), src, box.Min, draw.Src)
		return dst
	}
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, box, xdraw.Src, nil)
	return dst
}
