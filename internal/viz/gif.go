package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"

	"github.com/san-kum/mdsim/internal/md"
)

const (
	gifCharW = 8
	gifCharH = 16
)

// Rasterize expands the braille canvas into a black and white image,
// one rectangle per lit sub-pixel.
func Rasterize(c *Canvas) *image.Paletted {
	imgW, imgH := c.Width*gifCharW, c.Height*gifCharH
	img := image.NewPaletted(image.Rect(0, 0, imgW, imgH), color.Palette{color.Black, color.White})

	dotW, dotH := gifCharW/2, gifCharH/4
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			r := c.Grid[row][col]
			if r <= 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)
			baseX, baseY := col*gifCharW, row*gifCharH

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					for py := 0; py < dotH; py++ {
						for px := 0; px < dotW; px++ {
							img.SetColorIndex(baseX+dx*dotW+px, baseY+dy*dotH+py, 1)
						}
					}
				}
			}
		}
	}
	return img
}

// SaveGIF writes captured frames as a looping animation.
func SaveGIF(frames []*image.Paletted, path string) error {
	if len(frames) == 0 {
		return fmt.Errorf("viz: no frames to save")
	}

	anim := gif.GIF{LoopCount: 0}
	for _, frame := range frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 2)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}

// RenderGIF rasterizes a stored trajectory into an animated GIF, one
// animation frame per stored snapshot, projected onto the XY plane.
func RenderGIF(frames [][]md.Vec3, box md.Box, path string, w, h int) error {
	if len(frames) == 0 {
		return fmt.Errorf("viz: no frames to render")
	}

	canvas := NewCanvas(w, h)
	imgs := make([]*image.Paletted, 0, len(frames))
	for _, pos := range frames {
		canvas.Clear()
		drawFrame2D(canvas, pos, box, 0)
		imgs = append(imgs, Rasterize(canvas))
	}
	return SaveGIF(imgs, path)
}
