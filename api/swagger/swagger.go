package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Canteen Central API",
        "description": "Financial reporting backend for school canteen operations",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Login, token refresh, logout"},
        {"name": "Reports", "description": "Monthly report aggregate and status workflow"},
        {"name": "Notifications", "description": "Per-user notification feed"},
        {"name": "AI", "description": "Financial insights and assistant chat"}
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
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unreachable"}
                }
            }
        },
        "/metrics": {
            "get": {
                "summary": "Prometheus metrics",
                "responses": {
                    "200": {"description": "Metrics exposition"}
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate with email and password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token pair", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Rotate a refresh token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshRequest"}}
                ],
                "responses": {
                    "200": {"description": "New token pair", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid or expired refresh token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/auth/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "Revoke a refresh token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshRequest"}}
                ],
                "responses": {
                    "204": {"description": "Token revoked"},
                    "403": {"description": "Token belongs to another user", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/reports/monthly/{schoolId}/{year}/{month}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Fetch the monthly report with its child reports",
                "parameters": [
                    {"name": "schoolId", "in": "path", "required": true, "type": "integer"},
                    {"name": "year", "in": "path", "required": true, "type": "integer"},
                    {"name": "month", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Monthly report aggregate", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Role may not view this status", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Report not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Reports"],
                "summary": "Create a monthly report for the period",
                "parameters": [
                    {"name": "schoolId", "in": "path", "required": true, "type": "integer"},
                    {"name": "year", "in": "path", "required": true, "type": "integer"},
                    {"name": "month", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/CreateMonthlyReportRequest"}}
                ],
                "responses": {
                    "201": {"description": "Report created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Report already exists", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/reports/monthly/{schoolId}/{year}/{month}/status": {
            "patch": {
                "tags": ["Reports"],
                "summary": "Transition the monthly report status (cascades to children)",
                "parameters": [
                    {"name": "schoolId", "in": "path", "required": true, "type": "integer"},
                    {"name": "year", "in": "path", "required": true, "type": "integer"},
                    {"name": "month", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StatusChangeRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Transition not allowed for role", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Report not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/reports/daily/{schoolId}/{year}/{month}/status": {
            "patch": {
                "tags": ["Reports"],
                "summary": "Transition the daily financial report status",
                "parameters": [
                    {"name": "schoolId", "in": "path", "required": true, "type": "integer"},
                    {"name": "year", "in": "path", "required": true, "type": "integer"},
                    {"name": "month", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StatusChangeRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/reports/payroll/{schoolId}/{year}/{month}/status": {
            "patch": {
                "tags": ["Reports"],
                "summary": "Transition the payroll report status",
                "parameters": [
                    {"name": "schoolId", "in": "path", "required": true, "type": "integer"},
                    {"name": "year", "in": "path", "required": true, "type": "integer"},
                    {"name": "month", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StatusChangeRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/reports/voucher/{schoolId}/{year}/{month}/status": {
            "patch": {
                "tags": ["Reports"],
                "summary": "Transition the disbursement voucher status",
                "parameters": [
                    {"name": "schoolId", "in": "path", "required": true, "type": "integer"},
                    {"name": "year", "in": "path", "required": true, "type": "integer"},
                    {"name": "month", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StatusChangeRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/reports/liquidation/{schoolId}/{year}/{month}/{category}/status": {
            "patch": {
                "tags": ["Reports"],
                "summary": "Transition a liquidation report status",
                "parameters": [
                    {"name": "schoolId", "in": "path", "required": true, "type": "integer"},
                    {"name": "year", "in": "path", "required": true, "type": "integer"},
                    {"name": "month", "in": "path", "required": true, "type": "integer"},
                    {"name": "category", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StatusChangeRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unknown liquidation category", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/reports/monthly/{schoolId}/{year}/{month}/status-options": {
            "get": {
                "tags": ["Reports"],
                "summary": "List valid status transitions for the caller's role",
                "parameters": [
                    {"name": "schoolId", "in": "path", "required": true, "type": "integer"},
                    {"name": "year", "in": "path", "required": true, "type": "integer"},
                    {"name": "month", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Current status and valid transitions", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/reports/monthly/{schoolId}/{year}/{month}/export": {
            "get": {
                "tags": ["Reports"],
                "summary": "Export daily entries as CSV or PDF",
                "parameters": [
                    {"name": "schoolId", "in": "path", "required": true, "type": "integer"},
                    {"name": "year", "in": "path", "required": true, "type": "integer"},
                    {"name": "month", "in": "path", "required": true, "type": "integer"},
                    {"name": "format", "in": "query", "required": false, "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File attachment"},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/reports/monthly/{schoolId}/{year}/{month}/summary": {
            "get": {
                "tags": ["Reports"],
                "summary": "Aggregate financial summary for the period",
                "parameters": [
                    {"name": "schoolId", "in": "path", "required": true, "type": "integer"},
                    {"name": "year", "in": "path", "required": true, "type": "integer"},
                    {"name": "month", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Financial summary", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List the caller's notifications",
                "parameters": [
                    {"name": "include_archived", "in": "query", "required": false, "type": "boolean"},
                    {"name": "limit", "in": "query", "required": false, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Notification list", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/notifications/unread-count": {
            "get": {
                "tags": ["Notifications"],
                "summary": "Count unarchived notifications",
                "responses": {
                    "200": {"description": "Unread count", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/notifications/{id}/archive": {
            "post": {
                "tags": ["Notifications"],
                "summary": "Archive a notification",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Archived"},
                    "404": {"description": "Notification not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/ai/status": {
            "get": {
                "tags": ["AI"],
                "summary": "Report AI feature availability",
                "responses": {
                    "200": {"description": "Availability flags", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/ai/insights": {
            "post": {
                "tags": ["AI"],
                "summary": "Generate financial insights for a reporting period",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AIInsightsRequest"}}
                ],
                "responses": {
                    "200": {"description": "Generated insights", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "AI assistant unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/ai/chat": {
            "post": {
                "tags": ["AI"],
                "summary": "Ask the financial assistant a question",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChatRequest"}}
                ],
                "responses": {
                    "200": {"description": "Assistant reply", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "AI assistant unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RefreshRequest": {
            "type": "object",
            "required": ["refresh_token"],
            "properties": {
                "refresh_token": {"type": "string"}
            }
        },
        "CreateMonthlyReportRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"}
            }
        },
        "StatusChangeRequest": {
            "type": "object",
            "required": ["new_status"],
            "properties": {
                "new_status": {"type": "string", "enum": ["DRAFT", "REVIEW", "APPROVED", "REJECTED", "RECEIVED", "ARCHIVED"]},
                "comments": {"type": "string"}
            }
        },
        "AIInsightsRequest": {
            "type": "object",
            "required": ["year", "month"],
            "properties": {
                "school_id": {"type": "integer"},
                "year": {"type": "integer"},
                "month": {"type": "integer"}
            }
        },
        "ChatRequest": {
            "type": "object",
            "required": ["message"],
            "properties": {
                "school_id": {"type": "integer"},
                "message": {"type": "string"},
                "conversation_history": {"type": "array", "items": {"$ref": "#/definitions/ChatMessage"}}
            }
        },
        "ChatMessage": {
            "type": "object",
            "properties": {
                "role": {"type": "string"},
                "content": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "per_page": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
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
