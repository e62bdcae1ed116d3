// Package docs registers the OpenAPI description of the local portal with
// swag so echo-swagger can serve it at /swagger/*.
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
        "/api/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Login",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/authResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/failureResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/failureResponse"}}
                }
            }
        },
        "/api/logout": {
            "post": {
                "tags": ["auth"],
                "summary": "Logout",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/api/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register a new user",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/registerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/authResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/failureResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/failureResponse"}}
                }
            }
        },
        "/api/session": {
            "get": {
                "tags": ["auth"],
                "summary": "Current session",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Snapshot"}}}
            }
        },
        "/api/feedback": {
            "get": {
                "tags": ["feedback"],
                "summary": "List feedback",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "tab", "in": "query"},
                    {"type": "string", "name": "sentiment", "in": "query"},
                    {"type": "integer", "name": "employee_id", "in": "query"},
                    {"type": "string", "name": "q", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Feedback"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/failureResponse"}}
                }
            },
            "post": {
                "tags": ["feedback"],
                "summary": "Create feedback",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Feedback"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/failureResponse"}}
                }
            }
        },
        "/api/feedback/{id}/acknowledge": {
            "post": {
                "tags": ["feedback"],
                "summary": "Acknowledge feedback",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Feedback"}}}}
            }
        },
        "/api/feedback/{id}/comment": {
            "post": {
                "tags": ["feedback"],
                "summary": "Comment on feedback",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Feedback"}}}}
            }
        },
        "/api/stats": {
            "get": {
                "tags": ["feedback"],
                "summary": "Dashboard stats",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.DashboardStats"}}}
            }
        },
        "/api/requests": {
            "post": {
                "tags": ["feedback"],
                "summary": "Request feedback",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/failureResponse"}}
                }
            }
        },
        "/api/notifications": {
            "get": {
                "tags": ["notifications"],
                "summary": "Notifications",
                "parameters": [{"type": "boolean", "name": "refresh", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Inbox"}}}
            }
        },
        "/api/notifications/{id}/read": {
            "post": {
                "tags": ["notifications"],
                "summary": "Mark notification read",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Inbox"}}}
            }
        }
    },
    "definitions": {
        "loginRequest": {
            "type": "object",
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "registerRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "username": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string", "enum": ["manager", "employee"]}
            }
        },
        "authResponse": {
            "type": "object",
            "properties": {"user": {"$ref": "#/definitions/domain.User"}}
        },
        "failureResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "domain.User": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "username": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string"}
            }
        },
        "domain.Snapshot": {
            "type": "object",
            "properties": {
                "user": {"$ref": "#/definitions/domain.User"},
                "phase": {"type": "string", "enum": ["pending", "resolved"]}
            }
        },
        "domain.Feedback": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "manager_id": {"type": "integer"},
                "employee_id": {"type": "integer"},
                "strengths": {"type": "string"},
                "improvements": {"type": "string"},
                "sentiment": {"type": "string", "enum": ["positive", "neutral", "negative"]},
                "acknowledged": {"type": "boolean"},
                "comment": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "domain.DashboardStats": {
            "type": "object",
            "properties": {
                "total_feedback": {"type": "integer"},
                "positive_feedback": {"type": "integer"},
                "neutral_feedback": {"type": "integer"},
                "negative_feedback": {"type": "integer"},
                "acknowledged_feedback": {"type": "integer"}
            }
        },
        "domain.Inbox": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"type": "object"}},
                "unread": {"type": "integer"},
                "fetched_at": {"type": "string"}
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
	Title:            "Feedback Portal API",
	Description:      "Local portal over the feedback backend session.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
