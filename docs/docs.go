package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "UnifyHub API Documentation",
        "title": "UnifyHub API",
        "version": "1.0"
    },
    "host": "localhost:8080",
    "basePath": "/api/v1",
    "schemes": ["http"],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Health Check",
                "description": "Check if server is running",
                "responses": {
                    "200": {
                        "description": "Server is healthy"
                    }
                }
            }
        },
        "/api/v1/auth/token": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Exchange API Key",
                "description": "Exchange the dashboard API key for a JWT",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "credentials",
                        "description": "API key",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {
                                "api_key": {
                                    "type": "string",
                                    "example": "uh_live_xxxxxxxx"
                                }
                            }
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Token issued"
                    },
                    "401": {
                        "description": "Invalid API key"
                    }
                }
            }
        },
        "/api/v1/messages": {
            "get": {
                "tags": ["Messages"],
                "summary": "List Messages",
                "description": "List messages newest first, optionally filtered",
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {
                        "in": "query",
                        "name": "filter",
                        "type": "string",
                        "description": "all, unread, or a service id"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Messages with available filters"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        },
        "/api/v1/messages/search": {
            "get": {
                "tags": ["Messages"],
                "summary": "Search Messages",
                "description": "Fuzzy search over sender, subject and preview",
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {
                        "in": "query",
                        "name": "q",
                        "type": "string",
                        "required": true,
                        "description": "Search query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Matching messages"
                    }
                }
            }
        },
        "/api/v1/tasks/{id}/toggle": {
            "post": {
                "tags": ["Tasks"],
                "summary": "Toggle Task",
                "description": "Flip a task between pending and completed",
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Updated task"
                    },
                    "404": {
                        "description": "Task not found"
                    }
                }
            }
        },
        "/api/v1/calendar/grid": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Month Grid",
                "description": "Calendar month grid padded to full weeks",
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {
                        "in": "query",
                        "name": "month",
                        "type": "string",
                        "description": "Month in YYYY-MM format, defaults to the current month"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Grid of day cells"
                    },
                    "400": {
                        "description": "Invalid month"
                    }
                }
            }
        },
        "/api/v1/connections": {
            "post": {
                "tags": ["Connections"],
                "summary": "Connect Service",
                "description": "Connect one of the catalog services",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {
                        "in": "body",
                        "name": "request",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {
                                "service_id": {
                                    "type": "string",
                                    "example": "gmail"
                                }
                            }
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Service connected"
                    },
                    "400": {
                        "description": "Unknown service"
                    },
                    "409": {
                        "description": "Service already connected"
                    }
                }
            }
        },
        "/api/v1/connections/{id}/sync": {
            "post": {
                "tags": ["Connections"],
                "summary": "Sync Connection",
                "description": "Start a sync; the connection reports syncing until it completes",
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Connection marked syncing"
                    },
                    "404": {
                        "description": "Connection not found"
                    }
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Type 'Bearer' followed by a space and JWT token"
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http"},
	Title:            "UnifyHub API",
	Description:      "UnifyHub API Documentation",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
