package manager

import (
	"context"
	"fmt"

	"github.com/disintegration/imaging"
)

// maxOutputPixels guards against decompression-bomb sized results.
const maxOutputPixels = 256 << 20

// ResampleUpscaler enlarges images in-process with a Lanczos filter. It does
// not read the weights file; it exists for development and tests where no
// GPU upscaler is installed.
type ResampleUpscaler struct {
	scale int
}

func NewResampleUpscaler(scale int) *ResampleUpscaler {
	if scale <= 0 {
		scale = defaultScale
	}
	return &ResampleUpscaler{scale: scale}
}

func (u *ResampleUpscaler) Upscale(ctx context.Context, inputPath, outputPath, modelPath string, scale int) error {
	img, err := imaging.Open(inputPath, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("decode %s: %w", inputPath, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	b := img.Bounds()
	s := pickScale(scale, u.scale)
	w, h := b.Dx()*s, b.Dy()*s
	if w*h > maxOutputPixels {
		return fmt.Errorf("output of %dx%d exceeds the pixel limit", w, h)
	}
	dst := imaging.Resize(img, w, h, imaging.Lanczos)
	if err := ctx.Err(); err != nil {
		return err
	}
	return imaging.Save(dst, outputPath)
}
