// Package docs registers the OpenAPI description served by swag.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": ["http"],
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "PrincipalAuth": {
            "type": "apiKey",
            "name": "x-ms-client-principal",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Tasks", "description": "Task management operations"},
        {"name": "Comments", "description": "Task comment operations"},
        {"name": "Attachments", "description": "Attachment upload and download operations"},
        {"name": "Users", "description": "User whitelist and role operations"},
        {"name": "Realtime", "description": "Hub negotiation and websocket endpoint"},
        {"name": "Discord", "description": "Slash command interactions webhook"}
    ],
    "paths": {}
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{"http"},
	Title:            "Task Board API",
	Description:      "API for the collaborative task board: tasks, comments, attachments and realtime sync.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
