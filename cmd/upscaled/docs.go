package main

// General API documentation for swaggo. Regenerate docs/ with `swag init -g cmd/upscaled/docs.go`.
//
// @title           upscaled API
// @version         1.0
// @description     HTTP API that upscales uploaded PNG and JPEG images with Real-ESRGAN weights.
//
// @contact.name   upscaled maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
