package types

// Model represents a model weights file available to the upscaler.
type Model struct {
	// Stable identifier for the weights (the file name).
	// example: RealESRGAN_x4plus.pth
	ID string `json:"id" example:"RealESRGAN_x4plus.pth"`
	// Human-friendly name.
	// example: RealESRGAN_x4plus
	Name string `json:"name" example:"RealESRGAN_x4plus"`
	// Absolute path to the weights file on disk.
	// example: /srv/models/RealESRGAN_x4plus.pth
	Path string `json:"path" example:"/srv/models/RealESRGAN_x4plus.pth"`
	// Upscale factor guessed from the file name (0 when unknown).
	// example: 4
	Scale int `json:"scale,omitempty" example:"4"`
	// True for the configured default weights.
	// example: true
	Default bool `json:"default,omitempty" example:"true"`
}
