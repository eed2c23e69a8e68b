// Package docs holds the OpenAPI document served under /docs.
// Regenerate with: swag init -g cmd/upscaled/docs.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "upscaled maintainers"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["meta"],
                "summary": "Welcome message",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.WelcomeResponse"}}
                }
            }
        },
        "/upscale/": {
            "post": {
                "description": "Upload a PNG or JPEG as multipart field \"file\". The response is the upscaled PNG.",
                "consumes": ["multipart/form-data"],
                "produces": ["image/png"],
                "tags": ["upscale"],
                "summary": "Upscale an image",
                "parameters": [
                    {"type": "file", "description": "Image to upscale (image/png, image/jpeg)", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "description": "Registry model id; must precede the file part", "name": "model", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/models": {
            "get": {
                "produces": ["application/json"],
                "tags": ["models"],
                "summary": "List weights",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ModelsResponse"}}
                }
            }
        },
        "/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["meta"],
                "summary": "Service status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}
                }
            }
        },
        "/healthz": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["meta"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "ok"}}
            }
        },
        "/readyz": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["meta"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "ready"},
                    "503": {"description": "reason the service cannot serve requests"}
                }
            }
        }
    },
    "definitions": {
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 400},
                "error": {"type": "string", "example": "File provided is not an accepted image type."}
            }
        },
        "types.HostInfo": {
            "type": "object",
            "properties": {
                "cores": {"type": "integer", "example": 32},
                "cpu": {"type": "string", "example": "AMD Ryzen 9 7950X 16-Core Processor"},
                "hostname": {"type": "string", "example": "gpu-box-01"},
                "os": {"type": "string", "example": "linux ubuntu"}
            }
        },
        "types.Model": {
            "type": "object",
            "properties": {
                "default": {"type": "boolean", "example": true},
                "id": {"type": "string", "example": "RealESRGAN_x4plus.pth"},
                "name": {"type": "string", "example": "RealESRGAN_x4plus"},
                "path": {"type": "string", "example": "/srv/models/RealESRGAN_x4plus.pth"},
                "scale": {"type": "integer", "example": 4}
            }
        },
        "types.ModelsResponse": {
            "type": "object",
            "properties": {
                "models": {"type": "array", "items": {"$ref": "#/definitions/types.Model"}}
            }
        },
        "types.StatusResponse": {
            "type": "object",
            "properties": {
                "backend": {"type": "string", "example": "exec"},
                "failures_total": {"type": "integer", "example": 2},
                "host": {"$ref": "#/definitions/types.HostInfo"},
                "inflight": {"type": "integer", "example": 1},
                "last_error": {"type": "string"},
                "max_concurrent": {"type": "integer", "example": 1},
                "max_queue_depth": {"type": "integer", "example": 32},
                "model_path": {"type": "string", "example": "RealESRGAN_x4plus.pth"},
                "model_present": {"type": "boolean", "example": true},
                "queue_len": {"type": "integer", "example": 3},
                "scale": {"type": "integer", "example": 4},
                "scratch_files": {"type": "integer", "example": 0},
                "server_time_unix": {"type": "integer", "example": 1700000000},
                "state": {"type": "string", "example": "ready"},
                "upscales_total": {"type": "integer", "example": 120},
                "uptime_seconds": {"type": "integer", "example": 3600}
            }
        },
        "types.WelcomeResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Welcome to the Real-ESRGAN Upscaler API. Use the /docs endpoint to see the API documentation."}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "upscaled API",
	Description:      "Upload an image, receive it upscaled by a Real-ESRGAN model.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
