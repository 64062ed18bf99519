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
        "/health": {
            "get": {"tags": ["system"], "summary": "Health check", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}}
        },
        "/auth/sign-up": {
            "post": {"tags": ["auth"], "summary": "Sign up", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/credentials"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}
        },
        "/auth/sign-in": {
            "post": {"tags": ["auth"], "summary": "Sign in", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/credentials"}}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "500": {"description": "Internal Server Error"}}}
        },
        "/ws": {
            "get": {"tags": ["security"], "summary": "Security state stream",
                "description": "Pushes {\"type\":\"state\"} envelopes every interval. With a valid token the client may send {\"type\":\"set_mode\",\"mode\":\"auto|manual\"}.",
                "parameters": [{"in": "query", "name": "interval", "type": "string"}, {"in": "query", "name": "interval_ms", "type": "integer"}, {"in": "query", "name": "token", "type": "string"}],
                "responses": {"101": {"description": "Switching Protocols"}}}
        },
        "/api/v1/security/state": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["security"], "summary": "Get security state", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.SecurityState"}}, "401": {"description": "Unauthorized"}}}
        },
        "/api/v1/security/mode": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["security"], "summary": "Set operation mode", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.SetModeRequest"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/api/v1/security/motion": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["security"], "summary": "Simulate motion", "produces": ["application/json"],
                "responses": {"202": {"description": "Accepted"}, "503": {"description": "Service Unavailable"}}}
        },
        "/api/v1/identities": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["identities"], "summary": "List registered identities", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/identities/reload": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["identities"], "summary": "Reload registered identities", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "500": {"description": "Internal Server Error"}}}
        },
        "/api/v1/logs": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["logs"], "summary": "List logs", "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"},
                    {"type": "string", "name": "type", "in": "query"}
                ],
                "responses": {"200": {"description": "count, events"}, "400": {"description": "Bad Request"}}}
        }
    },
    "definitions": {
        "credentials": {
            "type": "object",
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "handlers.SetModeRequest": {
            "type": "object",
            "properties": {"mode": {"type": "string", "example": "manual"}}
        },
        "models.SecurityState": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "power": {"type": "boolean"},
                "color": {"type": "string"},
                "mode": {"type": "string"},
                "latest_identity": {"type": "string"},
                "latest_seen_at": {"type": "string"},
                "updated_at": {"type": "string"},
                "running": {"type": "boolean"},
                "session_active": {"type": "boolean"},
                "motion_count": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Motion Security API",
	Description:      "Motion-triggered security lighting with face recognition.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
