package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

// Tray icons are rendered at startup so no asset files need to ship with
// the binary. The color tracks the task state.
var (
	iconIdle      = renderIcon(color.RGBA{R: 58, G: 110, B: 230, A: 255})
	iconCapturing = renderIcon(color.RGBA{R: 220, G: 60, B: 54, A: 255})
	iconAnalyzing = renderIcon(color.RGBA{R: 46, G: 160, B: 67, A: 255})
)

func renderIcon(fill color.RGBA) []byte {
	const size = 22
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	center := size / 2
	radius := size/2 - 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := x-center, y-center
			if dx*dx+dy*dy <= radius*radius {
				img.Set(x, y, fill)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}
