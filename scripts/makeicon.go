//go:build ignore
// +build ignore

package main

import (
	"image"
	"image/color"
	"image/png"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		os.Args = append(os.Args, "Icon.png")
	}

	// 512x512 icon: a magnifying glass over a memory droplet
	img := image.NewRGBA(image.Rect(0, 0, 512, 512))

	bgColor := color.RGBA{17, 24, 39, 255}
	accentColor := color.RGBA{34, 197, 94, 255}
	dropColor := color.RGBA{239, 68, 68, 255}

	for y := 0; y < 512; y++ {
		for x := 0; x < 512; x++ {
			img.Set(x, y, bgColor)
		}
	}

	// Leak droplet under the glass
	dcx, dcy := 220, 220
	dropRadius := 60
	for y := 0; y < 512; y++ {
		for x := 0; x < 512; x++ {
			dx := x - dcx
			dy := y - dcy
			if dx*dx+dy*dy <= dropRadius*dropRadius {
				img.Set(x, y, dropColor)
			}
		}
	}

	// Magnifying glass ring
	cx, cy := 220, 200
	radius := 120
	thickness := 20
	for y := 0; y < 512; y++ {
		for x := 0; x < 512; x++ {
			dx := x - cx
			dy := y - cy
			dist := dx*dx + dy*dy
			outer := (radius + thickness) * (radius + thickness)
			inner := radius * radius
			if dist <= outer && dist >= inner {
				img.Set(x, y, accentColor)
			}
		}
	}

	// Handle
	for i := 0; i < 160; i++ {
		for w := -14; w <= 14; w++ {
			x := cx + radius - 10 + i
			y := cy + radius - 10 + i + w
			if x >= 0 && x < 512 && y >= 0 && y < 512 {
				img.Set(x, y, accentColor)
			}
		}
	}

	f, err := os.Create(os.Args[1])
	if err != nil {
		panic(err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		panic(err)
	}
}
