package manager

import "context"

// Upscaler turns the image at inputPath into a PNG at outputPath using the
// weights at modelPath, enlarging by scale. A non-positive scale selects the
// upscaler's configured factor. Implementations must return when ctx is
// canceled and should not leave a partial output behind on success.
type Upscaler interface {
	Upscale(ctx context.Context, inputPath, outputPath, modelPath string, scale int) error
}

// pickScale returns scale when set, else the adapter's fallback.
func pickScale(scale, fallback int) int {
	if scale > 0 {
		return scale
	}
	return fallback
}

// Checker is implemented by upscalers that can probe their own availability
// (binary on PATH, remote service reachable).
type Checker interface {
	Check(ctx context.Context) error
}
