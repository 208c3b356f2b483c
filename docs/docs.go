// Package docs holds the OpenAPI description served at /swagger. Regenerate
// with `swag init -g cmd/server/main.go` after changing handler annotations.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}}
            }
        },
        "/api/pairs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["market"],
                "summary": "List supported pairs",
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            }
        },
        "/api/ticker/{pair}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["market"],
                "summary": "Get ticker for a pair",
                "parameters": [
                    {"type": "string", "description": "Trading pair (e.g., btc_jpy)", "name": "pair", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.TickerResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorBody"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/errorBody"}},
                    "504": {"description": "Gateway Timeout", "schema": {"$ref": "#/definitions/errorBody"}}
                }
            }
        },
        "/api/tickers": {
            "get": {
                "produces": ["application/json"],
                "tags": ["market"],
                "summary": "Get tickers for all pairs",
                "parameters": [
                    {"type": "string", "default": "all", "description": "all or jpy", "name": "market", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorBody"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/errorBody"}}
                }
            }
        },
        "/api/tickers/jpy": {
            "get": {
                "produces": ["application/json"],
                "tags": ["market"],
                "summary": "Get cached tickers for supported JPY pairs",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/errorBody"}}
                }
            }
        },
        "/api/candles/{pair}": {
            "get": {
                "description": "Returns OHLCV candles oldest first",
                "produces": ["application/json"],
                "tags": ["market"],
                "summary": "Get candlesticks for a pair",
                "parameters": [
                    {"type": "string", "description": "Trading pair", "name": "pair", "in": "path", "required": true},
                    {"type": "string", "default": "1day", "description": "Candle type", "name": "type", "in": "query"},
                    {"type": "string", "description": "YYYY for 4hour and longer, YYYYMMDD otherwise", "name": "date", "in": "query"},
                    {"type": "integer", "default": 200, "description": "Number of candles (1-1000)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorBody"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorBody"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/errorBody"}}
                }
            }
        },
        "/api/candles/{pair}/chart": {
            "get": {
                "produces": ["image/png"],
                "tags": ["market"],
                "summary": "Render a candlestick chart",
                "parameters": [
                    {"type": "string", "description": "Trading pair", "name": "pair", "in": "path", "required": true},
                    {"type": "string", "default": "1day", "description": "Candle type", "name": "type", "in": "query"},
                    {"type": "string", "description": "YYYY or YYYYMMDD", "name": "date", "in": "query"},
                    {"type": "integer", "default": 200, "description": "Number of candles", "name": "limit", "in": "query"},
                    {"type": "string", "default": "volume", "description": "volume, rsi or sma", "name": "study", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorBody"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorBody"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/errorBody"}}
                }
            }
        },
        "/api/orderbook/{pair}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["market"],
                "summary": "Get order book with cumulative totals",
                "parameters": [
                    {"type": "string", "description": "Trading pair", "name": "pair", "in": "path", "required": true},
                    {"type": "integer", "default": 20, "description": "Levels per side (1-200)", "name": "topN", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorBody"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/errorBody"}}
                }
            }
        },
        "/api/depth/{pair}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["market"],
                "summary": "Get raw depth levels",
                "parameters": [
                    {"type": "string", "description": "Trading pair", "name": "pair", "in": "path", "required": true},
                    {"type": "integer", "default": 200, "description": "Levels per side (1-500)", "name": "maxLevels", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorBody"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/errorBody"}}
                }
            }
        },
        "/api/transactions/{pair}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["market"],
                "summary": "Get recent trades with buy/sell stats",
                "parameters": [
                    {"type": "string", "description": "Trading pair", "name": "pair", "in": "path", "required": true},
                    {"type": "integer", "default": 100, "description": "Number of trades (1-1000)", "name": "limit", "in": "query"},
                    {"type": "string", "description": "YYYYMMDD; latest trades when empty", "name": "date", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorBody"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/errorBody"}}
                }
            }
        }
    },
    "definitions": {
        "errorBody": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "service.TickerResult": {
            "type": "object",
            "properties": {
                "normalized": {"type": "object"},
                "meta": {
                    "type": "object",
                    "properties": {"pair": {"type": "string"}, "fetchedAt": {"type": "string"}}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "bitbank market data API",
	Description:      "Read-only bitbank market data mirrored from the MCP tools.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
