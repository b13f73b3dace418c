package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "DMS API",
        "description": "Document management service with approval workflow",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Registration and login"},
        {"name": "Documents", "description": "Document metadata and change requests"},
        {"name": "Requests", "description": "Admin review of change requests"},
        {"name": "Notifications", "description": "Per-user notification inbox"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a new user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "200": {"description": "Created user", "schema": {"$ref": "#/definitions/UserInfo"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/APIError"}},
                    "409": {"description": "Email already registered", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange credentials for a JWT",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token", "schema": {"$ref": "#/definitions/LoginResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        },
        "/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current user profile",
                "responses": {
                    "200": {"description": "Profile", "schema": {"$ref": "#/definitions/UserInfo"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        },
        "/documents": {
            "get": {
                "tags": ["Documents"],
                "summary": "List documents with pagination and search",
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "q", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Page of documents", "schema": {"$ref": "#/definitions/DocumentPage"}}
                }
            },
            "post": {
                "tags": ["Documents"],
                "summary": "Register document metadata",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateDocumentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created document", "schema": {"$ref": "#/definitions/Document"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        },
        "/documents/export": {
            "get": {
                "tags": ["Documents"],
                "summary": "Download the document register (admin)",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Rendered file"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        },
        "/documents/{id}": {
            "get": {
                "tags": ["Documents"],
                "summary": "Document detail",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Document", "schema": {"$ref": "#/definitions/Document"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/APIError"}}
                }
            },
            "delete": {
                "tags": ["Documents"],
                "summary": "Open a delete request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Request opened", "schema": {"$ref": "#/definitions/OpenRequestResult"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/APIError"}},
                    "409": {"description": "Document locked", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        },
        "/documents/{id}/replace": {
            "put": {
                "tags": ["Documents"],
                "summary": "Open a replace request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReplaceDocumentRequest"}}
                ],
                "responses": {
                    "200": {"description": "Request opened", "schema": {"$ref": "#/definitions/OpenRequestResult"}},
                    "400": {"description": "Missing fileUrl", "schema": {"$ref": "#/definitions/APIError"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/APIError"}},
                    "409": {"description": "Document locked", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        },
        "/requests": {
            "get": {
                "tags": ["Requests"],
                "summary": "List change requests (admin)",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "enum": ["PENDING", "APPROVED", "REJECTED"]}
                ],
                "responses": {
                    "200": {"description": "Requests", "schema": {"$ref": "#/definitions/RequestList"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        },
        "/requests/{id}/approve": {
            "post": {
                "tags": ["Requests"],
                "summary": "Approve a pending change request (admin)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Decided request", "schema": {"$ref": "#/definitions/ChangeRequest"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/APIError"}},
                    "409": {"description": "Already decided", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        },
        "/requests/{id}/reject": {
            "post": {
                "tags": ["Requests"],
                "summary": "Reject a pending change request (admin)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/RejectRequest"}}
                ],
                "responses": {
                    "200": {"description": "Decided request", "schema": {"$ref": "#/definitions/ChangeRequest"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/APIError"}},
                    "409": {"description": "Already decided", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        },
        "/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List own notifications, newest first",
                "responses": {
                    "200": {"description": "Notifications", "schema": {"$ref": "#/definitions/NotificationList"}}
                }
            }
        },
        "/notifications/{id}/read": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Mark an owned notification as read",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Marked"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "required": ["name", "email", "password"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string", "enum": ["ADMIN", "USER"]}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "LoginResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"}
            }
        },
        "UserInfo": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string"}
            }
        },
        "CreateDocumentRequest": {
            "type": "object",
            "required": ["title"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "documentType": {"type": "string"},
                "fileUrl": {"type": "string"}
            }
        },
        "ReplaceDocumentRequest": {
            "type": "object",
            "required": ["fileUrl"],
            "properties": {
                "fileUrl": {"type": "string"}
            }
        },
        "RejectRequest": {
            "type": "object",
            "properties": {
                "reason": {"type": "string"}
            }
        },
        "Document": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "documentType": {"type": "string"},
                "fileUrl": {"type": "string"},
                "version": {"type": "integer"},
                "status": {"type": "string", "enum": ["ACTIVE", "PENDING_DELETE", "PENDING_REPLACE"]},
                "locked": {"type": "boolean"},
                "createdBy": {"type": "string"},
                "createdAt": {"type": "string", "format": "date-time"}
            }
        },
        "DocumentPage": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
                "total": {"type": "integer"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/Document"}}
            }
        },
        "ChangeRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "docId": {"type": "string"},
                "type": {"type": "string", "enum": ["DELETE", "REPLACE"]},
                "status": {"type": "string", "enum": ["PENDING", "APPROVED", "REJECTED"]},
                "requestedBy": {"type": "string"},
                "decidedBy": {"type": "string"},
                "decidedAt": {"type": "string", "format": "date-time"},
                "reason": {"type": "string"},
                "payload": {"type": "string"},
                "createdAt": {"type": "string", "format": "date-time"}
            }
        },
        "OpenRequestResult": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "request": {"$ref": "#/definitions/ChangeRequest"},
                "doc": {"$ref": "#/definitions/Document"}
            }
        },
        "RequestList": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/ChangeRequest"}}
            }
        },
        "NotificationList": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/Notification"}}
            }
        },
        "Notification": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "userId": {"type": "string"},
                "title": {"type": "string"},
                "message": {"type": "string"},
                "isRead": {"type": "boolean"},
                "createdAt": {"type": "string", "format": "date-time"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
