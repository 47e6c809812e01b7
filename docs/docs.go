// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with: swag init -g cmd/api/main.go
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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Create an account", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Exchange credentials for a bearer token", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/auth/refresh": {"post": {"tags": ["auth"], "summary": "Issue a new token for the current user", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/habits": {
            "get": {"tags": ["habits"], "summary": "List the caller's habits with their stats", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["habits"], "summary": "Create a habit", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/habits/public": {"get": {"tags": ["habits"], "summary": "Community feed of public habits, newest first", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/habits/{id}": {
            "get": {"tags": ["habits"], "summary": "Fetch one habit", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "patch": {"tags": ["habits"], "summary": "Partially update a habit", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}},
            "delete": {"tags": ["habits"], "summary": "Delete a habit", "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}}}
        },
        "/habits/{id}/complete": {"post": {"tags": ["habits"], "summary": "Record a completion at the current instant", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/habits/{id}/completions": {"get": {"tags": ["completions"], "summary": "List completions of a habit, newest first", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/completions/{id}": {"delete": {"tags": ["completions"], "summary": "Undo a completion", "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}}}},
        "/stats/summary": {"get": {"tags": ["stats"], "summary": "Dashboard for today", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/stats/range": {"get": {"tags": ["stats"], "summary": "Daily completion grid between two calendar days", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Kanso Habits API",
	Description:      "Habit tracking with streaks computed on read.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
