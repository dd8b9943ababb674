// Package docs registers the OpenAPI description served at /swagger.
// Regenerate with: swag init -g cmd/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/normalize/{broker}": {
            "post": {
                "description": "Parses one or more export files of the same broker in a single pass and returns canonical trades plus warnings. Nothing is stored.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["normalize"],
                "summary": "Normalize broker exports",
                "parameters": [
                    {"enum": ["schwab", "firstrade"], "type": "string", "description": "Broker name", "name": "broker", "in": "path", "required": true},
                    {"type": "file", "description": "Export file (repeatable)", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.NormalizeResponse"}},
                    "400": {"description": "Unknown broker, missing file or undecodable export", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "413": {"description": "Upload too large", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/imports/{broker}": {
            "post": {
                "description": "Normalizes and stores each uploaded file. Files already imported (same SHA-256) are skipped unless force=true.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["imports"],
                "summary": "Import broker exports",
                "parameters": [
                    {"enum": ["schwab", "firstrade"], "type": "string", "description": "Broker name", "name": "broker", "in": "path", "required": true},
                    {"type": "file", "description": "Export file (repeatable)", "name": "file", "in": "formData", "required": true},
                    {"type": "boolean", "description": "Replace an existing import of the same file", "name": "force", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ImportResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/trades": {
            "get": {
                "description": "Returns imported trades ordered by trade date, optionally filtered.",
                "produces": ["application/json"],
                "tags": ["trades"],
                "summary": "List stored trades",
                "parameters": [
                    {"type": "string", "example": "NVDA", "description": "Ticker", "name": "ticker", "in": "query"},
                    {"type": "string", "example": "DIVIDEND", "description": "Trade type", "name": "type", "in": "query"},
                    {"type": "string", "example": "2025-01-01", "description": "First trade date, YYYY-MM-DD", "name": "from", "in": "query"},
                    {"type": "string", "example": "2025-12-31", "description": "Last trade date (inclusive), YYYY-MM-DD", "name": "to", "in": "query"},
                    {"type": "integer", "description": "Max rows (default 500, max 5000)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.TradesResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/healthz": {
            "get": {
                "description": "Always returns OK if the service is running",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}}
            }
        },
        "/readyz": {
            "get": {
                "description": "Returns ready if the database is reachable",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "invalid request"},
                "error_details": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        },
        "dto.NormalizeResponse": {
            "type": "object",
            "properties": {
                "broker": {"type": "string", "example": "schwab"},
                "files": {"type": "integer", "example": 1},
                "trades": {"type": "array", "items": {"$ref": "#/definitions/models.Trade"}},
                "warnings": {"type": "array", "items": {"type": "string"}}
            }
        },
        "dto.ImportResponse": {
            "type": "object",
            "properties": {
                "broker": {"type": "string", "example": "firstrade"},
                "imports": {"type": "array", "items": {"$ref": "#/definitions/models.ImportResult"}}
            }
        },
        "dto.TradesResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer", "example": 2},
                "trades": {"type": "array", "items": {"$ref": "#/definitions/models.StoredTrade"}}
            }
        },
        "models.ImportResult": {
            "type": "object",
            "properties": {
                "import": {
                    "type": "object",
                    "properties": {
                        "id": {"type": "string"},
                        "broker": {"type": "string"},
                        "file_name": {"type": "string"},
                        "file_hash": {"type": "string"},
                        "trade_count": {"type": "integer"},
                        "warning_count": {"type": "integer"},
                        "imported_at": {"type": "string"}
                    }
                },
                "skipped": {"type": "boolean"},
                "warnings": {"type": "array", "items": {"type": "string"}}
            }
        },
        "models.Trade": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "type": {"type": "string", "example": "DIVIDEND"},
                "ticker": {"type": "string", "example": "NVDA"},
                "quantity": {"type": "string", "example": "0"},
                "price": {"type": "string", "example": "0"},
                "total_amount": {"type": "string", "example": "1.89"},
                "trade_date": {"type": "string"},
                "option_info": {"type": "object"},
                "dividend_info": {"type": "object"},
                "fee_info": {"type": "object"},
                "note": {"type": "string"},
                "raw_source": {"type": "string"}
            }
        },
        "models.StoredTrade": {
            "allOf": [
                {"$ref": "#/definitions/models.Trade"},
                {"type": "object", "properties": {"broker": {"type": "string"}, "import_id": {"type": "string"}}}
            ]
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "tradenorm API",
	Description:      "Normalizes Charles Schwab and Firstrade exports into canonical trades and stores them.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
