// Package swagger registers the OpenAPI document served under /swagger.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/ping": {
            "get": {
                "produces": ["application/json"],
                "tags": ["network"],
                "summary": "Ping the server",
                "responses": {"200": {"description": "pong"}}
            }
        },
        "/rooms": {
            "get": {
                "produces": ["application/json"],
                "tags": ["rooms"],
                "summary": "List the open rooms",
                "responses": {"200": {"description": "rooms"}}
            }
        },
        "/rooms/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["rooms"],
                "summary": "Public summary of one room",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "room"}, "404": {"description": "room not found"}}
            }
        },
        "/rooms/{id}/qr": {
            "get": {
                "produces": ["image/png"],
                "tags": ["rooms"],
                "summary": "QR code with the join link of a room",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "name": "size", "in": "query"}
                ],
                "responses": {"200": {"description": "png"}, "404": {"description": "room not found"}}
            }
        },
        "/skribble/rooms/{id}/seats": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["skribble"],
                "summary": "Reserve a seat in a Skribble room before connecting",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"201": {"description": "seat reserved"}, "400": {"description": "bad request"}, "404": {"description": "room not found"}, "409": {"description": "room full"}}
            }
        },
        "/skribble/seat": {
            "get": {
                "produces": ["application/json"],
                "tags": ["skribble"],
                "summary": "Seat reserved by this browser session",
                "responses": {"200": {"description": "seat"}, "404": {"description": "no seat"}}
            }
        },
        "/users/{username}/presence": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Online status of a user",
                "parameters": [{"type": "string", "name": "username", "in": "path", "required": true}],
                "responses": {"200": {"description": "presence"}}
            }
        },
        "/users/{username}/friends": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Friends of a user with their online status",
                "parameters": [{"type": "string", "name": "username", "in": "path", "required": true}],
                "responses": {"200": {"description": "friends"}, "503": {"description": "social store disabled"}}
            }
        },
        "/users/{username}/profile": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Public profile of a user",
                "parameters": [{"type": "string", "name": "username", "in": "path", "required": true}],
                "responses": {"200": {"description": "profile"}, "404": {"description": "profile not found"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Wordspy API",
	Description:      "Gin-Gonic server for the Spy and Skribble party games",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
