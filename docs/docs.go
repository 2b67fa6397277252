// Package docs registers the OpenAPI document served under /swagger.
// Regenerate with: swag init -g cmd/main.go
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
        "/api/v1/rates/live": {
            "get": {
                "produces": ["application/json"],
                "tags": ["rates"],
                "summary": "Current metal rates",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.LiveRatesResponse"}}
                }
            }
        },
        "/api/v1/rates/stream": {
            "get": {
                "produces": ["text/event-stream"],
                "tags": ["rates"],
                "summary": "Live rate stream (SSE, event \"live-rate\")",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.LiveRatesResponse"}}
                }
            }
        },
        "/api/v1/admin/margins/{metal}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Set the admin margin of a base metal and republish rates",
                "parameters": [
                    {"type": "string", "description": "gold or silver", "name": "metal", "in": "path", "required": true},
                    {"description": "margin per gram", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.SetMarginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.LiveRatesResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/v1/settings/booking": {
            "get": {
                "produces": ["application/json"],
                "tags": ["settings"],
                "summary": "Settings consumed by the booking flow",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Settings"}}
                }
            }
        },
        "/api/v1/admin/settings": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Replace the booking settings",
                "parameters": [
                    {"description": "settings", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.Settings"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Settings"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/v1/pricing/breakdown": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["pricing"],
                "summary": "Itemised quotation breakdown",
                "parameters": [
                    {"description": "items", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.BreakdownRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.BreakdownResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/v1/admin/pricing/breakdown": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Quotation breakdown with purchase cost",
                "parameters": [
                    {"description": "items", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.BreakdownRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.BreakdownResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/v1/bookings": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["bookings"],
                "summary": "Lock the current rate for a weight of metal",
                "parameters": [
                    {"description": "booking", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.FreezeRateRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.RateLock"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/v1/bookings/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["bookings"],
                "summary": "Read a rate lock; status resolves expiry at read time",
                "parameters": [
                    {"type": "string", "description": "lock id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.RateLock"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/v1/admin/bookings/{id}/fulfill": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Mark a locked, unexpired booking as fulfilled",
                "parameters": [
                    {"type": "string", "description": "lock id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.RateLock"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.RateEntry": {
            "type": "object",
            "properties": {
                "metal_type": {"type": "string"},
                "buy_rate": {"type": "number"},
                "admin_margin": {"type": "number"},
                "display_rate": {"type": "number"}
            }
        },
        "domain.RateLock": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "metal_type": {"type": "string"},
                "weight_grams": {"type": "number"},
                "locked_rate": {"type": "number"},
                "total_amount": {"type": "number"},
                "advance_amount": {"type": "number"},
                "contact": {"type": "string"},
                "status": {"type": "string", "enum": ["locked", "fulfilled", "expired"]},
                "expires_at": {"type": "string"},
                "created_at": {"type": "string"},
                "fulfilled_at": {"type": "string"}
            }
        },
        "domain.Settings": {
            "type": "object",
            "properties": {
                "import_duty_pct": {"type": "number"},
                "premium_pct": {"type": "number"},
                "making_charges": {
                    "type": "object",
                    "properties": {"gold": {"type": "number"}, "silver": {"type": "number"}}
                },
                "booking_weights": {
                    "type": "object",
                    "properties": {
                        "gold": {"type": "array", "items": {"type": "number"}},
                        "silver": {"type": "array", "items": {"type": "number"}}
                    }
                },
                "advance_amount": {"type": "number"},
                "allow_custom_weight": {"type": "boolean"}
            }
        },
        "handler.LiveRatesResponse": {
            "type": "object",
            "properties": {
                "ts": {"type": "string"},
                "source": {"type": "string"},
                "estimated": {"type": "boolean"},
                "rates": {"type": "array", "items": {"$ref": "#/definitions/domain.RateEntry"}}
            }
        },
        "handler.SetMarginRequest": {
            "type": "object",
            "properties": {"margin": {"type": "number"}}
        },
        "handler.FreezeRateRequest": {
            "type": "object",
            "properties": {
                "metal_type": {"type": "string"},
                "weight_grams": {"type": "number"},
                "contact": {"type": "string"},
                "advance_amount": {"type": "number"}
            }
        },
        "pricing.Item": {
            "type": "object",
            "properties": {
                "metal_type": {"type": "string"},
                "net_weight": {"type": "number"},
                "purity": {"type": "number"},
                "mc_mode": {"type": "string", "enum": ["per_gram", "fixed"]},
                "mc_value": {"type": "number"},
                "stone_charge": {"type": "number"},
                "tax_rate": {"type": "number"}
            }
        },
        "pricing.Breakdown": {
            "type": "object",
            "properties": {
                "rate": {"type": "number"},
                "purity_pct": {"type": "number"},
                "metal_cost": {"type": "number"},
                "making_charge": {"type": "number"},
                "stone_cost": {"type": "number"},
                "taxable": {"type": "number"},
                "cgst": {"type": "number"},
                "sgst": {"type": "number"},
                "total_tax": {"type": "number"},
                "total": {"type": "number"}
            }
        },
        "handler.BreakdownLine": {
            "type": "object",
            "allOf": [{"$ref": "#/definitions/pricing.Breakdown"}],
            "properties": {
                "purchase_cost": {"type": "number"}
            }
        },
        "pricing.BillTotals": {
            "type": "object",
            "properties": {
                "item_count": {"type": "integer"},
                "taxable": {"type": "number"},
                "cgst": {"type": "number"},
                "sgst": {"type": "number"},
                "total_tax": {"type": "number"},
                "total": {"type": "number"}
            }
        },
        "handler.BreakdownRequest": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/pricing.Item"}},
                "tax_rate": {"type": "number"},
                "rates": {"type": "object"}
            }
        },
        "handler.BreakdownResponse": {
            "type": "object",
            "properties": {
                "source": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/handler.BreakdownLine"}},
                "totals": {"$ref": "#/definitions/pricing.BillTotals"}
            }
        },
        "handler.errorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Metal Rates API",
	Description:      "Live precious-metal rates, quotation pricing and rate locks.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
