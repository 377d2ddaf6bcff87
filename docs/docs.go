// Package docs holds the OpenAPI document served under -tags=swagger.
// Regenerate with `swag init -g cmd/rld/docs.go -o docs`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/models": {
            "get": {
                "produces": ["application/json"],
                "tags": ["models"],
                "summary": "List models",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ModelsResponse"}}
                }
            }
        },
        "/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["status"],
                "summary": "Service status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}
                }
            }
        },
        "/models/{id}/space": {
            "get": {
                "produces": ["application/json"],
                "tags": ["models"],
                "summary": "Describe a model's spaces",
                "parameters": [
                    {"type": "string", "description": "Model id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.SpaceResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/models/{id}/baseline": {
            "get": {
                "description": "Baseline observation in flat and structured form. kind is zeros (default) or midpoint.",
                "produces": ["application/json"],
                "tags": ["engine"],
                "summary": "Attribution baseline",
                "parameters": [
                    {"type": "string", "description": "Model id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "zeros or midpoint", "name": "kind", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.BaselineResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/models/{id}/pack": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["engine"],
                "summary": "Pack a structured observation",
                "parameters": [
                    {"type": "string", "description": "Model id", "name": "id", "in": "path", "required": true},
                    {"description": "Observation", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.PackRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.PackResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/models/{id}/unpack": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["engine"],
                "summary": "Unpack a flat observation",
                "parameters": [
                    {"type": "string", "description": "Model id", "name": "id", "in": "path", "required": true},
                    {"description": "Flat observation", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.UnpackRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.UnpackResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/models/{id}/forward": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["engine"],
                "summary": "Run a model forward pass",
                "parameters": [
                    {"type": "string", "description": "Model id", "name": "id", "in": "path", "required": true},
                    {"description": "Observation (obs, batch or flat)", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.ForwardRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ForwardResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "504": {"description": "Gateway Timeout", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "space.Descriptor": {
            "type": "object",
            "properties": {
                "kind": {"type": "string", "example": "box"},
                "shape": {"type": "array", "items": {"type": "integer"}},
                "low": {"type": "array", "items": {"type": "number"}},
                "high": {"type": "array", "items": {"type": "number"}},
                "entries": {"type": "array", "items": {"$ref": "#/definitions/space.DescriptorEntry"}}
            }
        },
        "space.DescriptorEntry": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "pos"},
                "space": {"$ref": "#/definitions/space.Descriptor"}
            }
        },
        "types.Model": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "example": "cartpole"},
                "obs_space": {"$ref": "#/definitions/space.Descriptor"},
                "size": {"type": "integer", "example": 4},
                "input_device": {"type": "string", "example": "cpu"},
                "output_device": {"type": "string", "example": "cpu"}
            }
        },
        "types.ModelsResponse": {
            "type": "object",
            "properties": {
                "models": {"type": "array", "items": {"$ref": "#/definitions/types.Model"}}
            }
        },
        "types.SpaceResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "example": "cartpole"},
                "obs_space": {"$ref": "#/definitions/space.Descriptor"},
                "action_space": {"$ref": "#/definitions/space.Descriptor"},
                "action_space_error": {"type": "string"},
                "size": {"type": "integer", "example": 4}
            }
        },
        "types.PackRequest": {
            "type": "object",
            "properties": {
                "obs": {"type": "object"},
                "batch": {"type": "array", "items": {"type": "object"}}
            }
        },
        "types.PackResponse": {
            "type": "object",
            "properties": {
                "flat": {"type": "array", "items": {"type": "number"}},
                "shape": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "types.UnpackRequest": {
            "type": "object",
            "properties": {
                "flat": {"type": "array", "items": {"type": "number"}}
            }
        },
        "types.UnpackResponse": {
            "type": "object",
            "properties": {
                "obs": {"type": "object"},
                "batch": {"type": "integer", "example": 0}
            }
        },
        "types.ForwardRequest": {
            "type": "object",
            "properties": {
                "obs": {"type": "object"},
                "batch": {"type": "array", "items": {"type": "object"}},
                "flat": {"type": "array", "items": {"type": "number"}}
            }
        },
        "types.ForwardResponse": {
            "type": "object",
            "properties": {
                "call_id": {"type": "string", "example": "3f0c1a52-1f7e-4c55-9a51-0d4d7e1c2b7a"},
                "output": {"type": "array", "items": {"type": "number"}},
                "shape": {"type": "array", "items": {"type": "integer"}},
                "device": {"type": "string", "example": "cpu"}
            }
        },
        "types.BaselineResponse": {
            "type": "object",
            "properties": {
                "kind": {"type": "string", "example": "zeros"},
                "flat": {"type": "array", "items": {"type": "number"}},
                "obs": {"type": "object"}
            }
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "invalid JSON body"},
                "code": {"type": "integer", "example": 400}
            }
        },
        "types.StatusResponse": {
            "type": "object",
            "properties": {
                "models": {"type": "integer", "example": 2},
                "default_model": {"type": "string", "example": "cartpole"},
                "forward_calls": {"type": "integer", "example": 12},
                "uptime_seconds": {"type": "integer", "example": 3600},
                "server_time_unix": {"type": "integer", "example": 1700000000}
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
	Title:            "rld API",
	Description:      "Observation packing, unpacking and forward passes for wrapped policy models.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
