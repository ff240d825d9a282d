package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Blood Donation API",
        "description": "Donor, hospital and blood inventory management",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Login and token lifecycle"},
        {"name": "Donors", "description": "Donor registration and profiles"},
        {"name": "Hospitals", "description": "Hospital accounts and staff"},
        {"name": "Sessions", "description": "Donation appointments and health evaluations"},
        {"name": "Inventory", "description": "Blood stock and expiry tracking"},
        {"name": "Emergencies", "description": "Emergency blood requests"},
        {"name": "Reports", "description": "Asynchronous report exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log in with email, password and role",
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token pair", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/donor": {
            "get": {
                "tags": ["Donors"],
                "summary": "List donors",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "query", "name": "search", "type": "string"},
                    {"in": "query", "name": "bloodType", "type": "string"},
                    {"in": "query", "name": "active", "type": "boolean"},
                    {"in": "query", "name": "page", "type": "integer"},
                    {"in": "query", "name": "page_size", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Donors"],
                "summary": "Register a donor",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/blooddonationappointment": {
            "get": {
                "tags": ["Sessions"],
                "summary": "List donation appointments",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "query", "name": "donorId", "type": "string"},
                    {"in": "query", "name": "hospitalId", "type": "string"},
                    {"in": "query", "name": "progressStatus", "type": "string"},
                    {"in": "query", "name": "dateFrom", "type": "string", "format": "date"},
                    {"in": "query", "name": "dateTo", "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/healthEvaluation": {
            "get": {
                "tags": ["Sessions"],
                "summary": "List health evaluations",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/blood-inventory/summary": {
            "get": {
                "tags": ["Inventory"],
                "summary": "Units per blood type",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "query", "name": "hospitalId", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/InventorySummary"}}
                }
            }
        },
        "/emergencyBR": {
            "get": {
                "tags": ["Emergencies"],
                "summary": "List emergency blood requests",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/generate": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue a report export",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/ReportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password", "role"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string", "enum": ["Donor", "Hospital", "HospitalAdmin", "Manager"]}
            }
        },
        "ReportRequest": {
            "type": "object",
            "required": ["type", "format"],
            "properties": {
                "type": {"type": "string", "enum": ["inventory", "appointments", "evaluations", "emergency"]},
                "format": {"type": "string", "enum": ["csv", "pdf", "xlsx"]},
                "hospitalId": {"type": "string"}
            }
        },
        "InventorySummary": {
            "type": "object",
            "properties": {
                "hospitalId": {"type": "string"},
                "byBloodType": {"type": "object", "additionalProperties": {"type": "integer"}},
                "missingTypes": {"type": "array", "items": {"type": "string"}},
                "totalUnits": {"type": "integer"},
                "generatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
