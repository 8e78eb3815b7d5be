// Package docs registers the OpenAPI description served under /swagger.
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
        "/auth/signup": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Create an account",
                "parameters": [{"in": "body", "name": "credentials", "required": true, "schema": {"$ref": "#/definitions/credentials"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/TokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Exchange credentials for a token",
                "parameters": [{"in": "body", "name": "credentials", "required": true, "schema": {"$ref": "#/definitions/credentials"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TokenResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/meal-items": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["meals"],
                "summary": "Add a meal to today's log",
                "parameters": [{"in": "body", "name": "meal", "required": true, "schema": {"$ref": "#/definitions/addMealRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/AddMealResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/daily-logs": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["meals"],
                "summary": "Daily log history",
                "parameters": [
                    {"type": "string", "in": "query", "name": "start_date"},
                    {"type": "string", "in": "query", "name": "end_date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/DailyLog"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/daily-logs/summary": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["meals"],
                "summary": "Daily totals",
                "parameters": [{"type": "string", "in": "query", "name": "date"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/DailyLog"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/dashboard": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Dashboard for a date",
                "parameters": [{"type": "string", "in": "query", "name": "date"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/foods": {
            "get": {
                "produces": ["application/json"],
                "tags": ["foods"],
                "summary": "Selectable foods",
                "parameters": [{"type": "string", "in": "query", "name": "q"}],
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            }
        },
        "/foods/{id}/portion": {
            "get": {
                "produces": ["application/json"],
                "tags": ["foods"],
                "summary": "Nutrition for a portion",
                "parameters": [
                    {"type": "string", "in": "path", "name": "id", "required": true},
                    {"type": "number", "in": "query", "name": "grams", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/foods/custom": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["foods"],
                "summary": "Add a custom food",
                "parameters": [{"in": "body", "name": "food", "required": true, "schema": {"type": "object"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/profile": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Current user's profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/profile/targets": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Set daily targets",
                "parameters": [{"in": "body", "name": "targets", "required": true, "schema": {"$ref": "#/definitions/UserTargets"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/UserTargets"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/chat": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["text/event-stream"],
                "tags": ["chat"],
                "summary": "Chat with the wellness assistant",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"type": "object"}}],
                "responses": {
                    "200": {"description": "event stream", "schema": {"type": "string"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "fields": {"type": "array", "items": {"type": "string"}}
            }
        },
        "credentials": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "TokenResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "user": {"type": "object", "properties": {"id": {"type": "string"}, "email": {"type": "string"}}}
            }
        },
        "addMealRequest": {
            "type": "object",
            "properties": {
                "foodId": {"type": "string"},
                "grams": {"type": "number"},
                "caloriesTotal": {"type": "number"},
                "proteinTotal": {"type": "number"},
                "carbsTotal": {"type": "number"},
                "fatTotal": {"type": "number"}
            }
        },
        "AddMealResponse": {
            "type": "object",
            "properties": {"ok": {"type": "boolean"}, "dailyLog": {"$ref": "#/definitions/DailyLog"}}
        },
        "DailyLog": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user_id": {"type": "string"},
                "log_date": {"type": "string"},
                "total_calories": {"type": "integer"},
                "protein_g": {"type": "integer"},
                "carbs_g": {"type": "integer"},
                "fat_g": {"type": "integer"}
            }
        },
        "UserTargets": {
            "type": "object",
            "properties": {
                "daily_calories": {"type": "integer"},
                "protein_g": {"type": "integer"},
                "carbs_g": {"type": "integer"},
                "fat_g": {"type": "integer"}
            }
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
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "WellBalance API",
	Description:      "Meal logging, daily targets and the wellness chat assistant.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
