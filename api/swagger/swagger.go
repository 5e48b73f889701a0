package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "School Roster API",
        "description": "Student roster, daily attendance and dashboards for school staff",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": ["http"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Login, demo seed and session"},
        {"name": "Students", "description": "Roster CRUD, CSV import and export"},
        {"name": "Attendance", "description": "One mark per student and calendar day"},
        {"name": "Dashboard", "description": "Aggregates over visible students"},
        {"name": "Users", "description": "Account provisioning"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {
                    "200": {"description": "Token issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Missing fields", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/seed": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Create demo accounts",
                "parameters": [{"name": "key", "in": "query", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Accounts already exist"},
                    "201": {"description": "Accounts created"},
                    "401": {"description": "Invalid seed key"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Profile"}, "401": {"description": "Unauthenticated"}}
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke the presented token",
                "security": [{"BearerAuth": []}],
                "responses": {"204": {"description": "Logged out"}}
            }
        },
        "/users": {
            "post": {
                "tags": ["Users"],
                "summary": "Create or replace account (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateUserRequest"}}],
                "responses": {"201": {"description": "Account saved"}, "403": {"description": "Not an admin"}}
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List visible students",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "grade", "in": "query", "type": "string"},
                    {"name": "residingCountry", "in": "query", "type": "string"},
                    {"name": "fatherName", "in": "query", "type": "string"},
                    {"name": "motherName", "in": "query", "type": "string"},
                    {"name": "q", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "Students", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Students"],
                "summary": "Create student",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Student"}}],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation error"},
                    "403": {"description": "Grade outside assigned classes"}
                }
            }
        },
        "/students/filters": {
            "get": {
                "tags": ["Students"],
                "summary": "Filter options",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Options"}}
            }
        },
        "/students/import": {
            "post": {
                "tags": ["Students"],
                "summary": "Import CSV (admin)",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data", "text/csv"],
                "parameters": [{"name": "file", "in": "formData", "type": "file"}],
                "responses": {
                    "201": {"description": "Imported and skipped counts"},
                    "400": {"description": "Empty file or no valid rows"},
                    "413": {"description": "Upload too large"}
                }
            }
        },
        "/students/export": {
            "get": {
                "tags": ["Students"],
                "summary": "Export visible students",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [{"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}],
                "responses": {"200": {"description": "Attachment"}, "400": {"description": "Unsupported format"}}
            }
        },
        "/students/{id}": {
            "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
            "get": {
                "tags": ["Students"],
                "summary": "Get student",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Student"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update student",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Student"}}],
                "responses": {"200": {"description": "Updated"}, "400": {"description": "Unknown or invalid field"}, "404": {"description": "Not found"}}
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Delete student",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Deleted"}, "404": {"description": "Not found"}}
            }
        },
        "/students/{id}/attendance": {
            "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
            "get": {
                "tags": ["Attendance"],
                "summary": "Attendance history with summary",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "History"}}
            },
            "post": {
                "tags": ["Attendance"],
                "summary": "Mark attendance for a day",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MarkAttendanceRequest"}}],
                "responses": {"200": {"description": "Updated"}, "201": {"description": "Recorded"}, "400": {"description": "Invalid date or status"}}
            },
            "delete": {
                "tags": ["Attendance"],
                "summary": "Delete attendance record",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"attendanceId": {"type": "string"}}}}],
                "responses": {"200": {"description": "Deleted"}, "404": {"description": "Not found"}}
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Roster summary",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Summary with meta.cache_hit"}}
            }
        },
        "/dashboard/classes": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Per-class overview",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Classes"}}
            }
        },
        "/dashboard/classes/{grade}": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Class detail",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "grade", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Class"}, "404": {"description": "Class not found"}}
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
        "CreateUserRequest": {
            "type": "object",
            "required": ["email", "name", "password", "role"],
            "properties": {
                "email": {"type": "string"},
                "name": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string", "enum": ["admin", "teacher"]},
                "teacherClasses": {"type": "array", "items": {"type": "string"}}
            }
        },
        "Student": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "grade": {"type": "string"},
                "rollNumber": {"type": "string"},
                "phone": {"type": "string"},
                "whatsappNumber": {"type": "string"},
                "email": {"type": "string"},
                "fatherName": {"type": "string"},
                "motherName": {"type": "string"},
                "residingCountry": {"type": "string"},
                "homeAddress": {"type": "string"},
                "gccAddress": {"type": "string"},
                "photo": {"type": "string", "description": "data URL"},
                "status": {"type": "string", "enum": ["Active", "Quit", "Application", "TC Issued"]}
            }
        },
        "MarkAttendanceRequest": {
            "type": "object",
            "required": ["date", "status"],
            "properties": {
                "date": {"type": "string", "description": "YYYY-MM-DD or RFC3339"},
                "status": {"type": "string", "enum": ["Present", "Absent", "Leave"]}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "detail": {"type": "string"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
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
