package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Workforce Availability API",
        "description": "Recurring availability, shift and booking blocks with conflict detection.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Recurrence", "description": "Pattern validation, expansion and roster export"},
        {"name": "Availability", "description": "Availability, shift and booking blocks"}
    ],
    "paths": {
        "/recurrence/validate": {
            "post": {
                "tags": ["Recurrence"],
                "summary": "Validate a recurrence pattern",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecurrencePattern"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/recurrence/expand": {
            "post": {
                "tags": ["Recurrence"],
                "summary": "Expand a recurrence pattern into dated occurrences",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecurrencePattern"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid pattern", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/recurrence/exceptions": {
            "post": {
                "tags": ["Recurrence"],
                "summary": "Add or remove an exception date",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ToggleExceptionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/recurrence/export": {
            "post": {
                "tags": ["Recurrence"],
                "summary": "Export a roster sheet",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRecurrenceRequest"}}
                ],
                "responses": {
                    "200": {"description": "Attachment", "schema": {"type": "file"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/recurrence/cache": {
            "delete": {
                "tags": ["Recurrence"],
                "summary": "Clear the occurrence cache (OWNER)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/availability": {
            "get": {
                "tags": ["Availability"],
                "summary": "List availability blocks",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "subject_id", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "array", "items": {"type": "string"}, "collectionFormat": "multi"},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Availability"],
                "summary": "Create a single or recurring block",
                "description": "When conflicts exist the request must carry confirm=true and the recommended strategy; otherwise 409 is returned with the conflict report in error.details.",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAvailabilityRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Unconfirmed conflicts", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/subjects/{subjectId}/availability": {
            "get": {
                "tags": ["Availability"],
                "summary": "List one subject's availability blocks",
                "description": "Owners and managers may read any subject; other callers only their own calendar.",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "subjectId", "in": "path", "required": true, "type": "string"},
                    {"name": "status", "in": "query", "type": "array", "items": {"type": "string"}, "collectionFormat": "multi"},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/availability/conflicts": {
            "post": {
                "tags": ["Availability"],
                "summary": "Preview conflicts for a proposed block",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AvailabilityRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/availability/{id}": {
            "get": {
                "tags": ["Availability"],
                "summary": "Get an availability block",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Availability"],
                "summary": "Delete an availability block",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "RecurrencePattern": {
            "type": "object",
            "required": ["frequency", "startDate", "occurrences"],
            "properties": {
                "frequency": {"type": "string", "enum": ["DAILY", "WEEKLY", "MONTHLY"]},
                "startDate": {"type": "string", "example": "2024-01-01"},
                "occurrences": {"type": "integer", "minimum": 1},
                "endDate": {"type": "string", "example": "2024-03-31"},
                "exceptions": {"type": "array", "items": {"type": "string"}}
            }
        },
        "ToggleExceptionRequest": {
            "type": "object",
            "required": ["pattern", "date", "action"],
            "properties": {
                "pattern": {"$ref": "#/definitions/RecurrencePattern"},
                "date": {"type": "string"},
                "action": {"type": "string", "enum": ["add", "remove"]}
            }
        },
        "ExportRecurrenceRequest": {
            "type": "object",
            "required": ["pattern"],
            "properties": {
                "pattern": {"$ref": "#/definitions/RecurrencePattern"},
                "title": {"type": "string"}
            }
        },
        "AvailabilityRequest": {
            "type": "object",
            "required": ["subjectId", "subjectType", "kind", "status", "startTime", "endTime", "pattern"],
            "properties": {
                "subjectId": {"type": "string"},
                "subjectType": {"type": "string", "enum": ["STAFF", "RESOURCE", "LOCATION"]},
                "kind": {"type": "string", "enum": ["AVAILABILITY", "SHIFT", "BOOKING"]},
                "status": {"type": "string"},
                "startTime": {"type": "string", "example": "09:00"},
                "endTime": {"type": "string", "example": "17:00"},
                "label": {"type": "string"},
                "pattern": {"$ref": "#/definitions/RecurrencePattern"}
            }
        },
        "CreateAvailabilityRequest": {
            "allOf": [
                {"$ref": "#/definitions/AvailabilityRequest"},
                {
                    "type": "object",
                    "properties": {
                        "confirm": {"type": "boolean"},
                        "strategy": {"type": "string", "enum": ["none", "merge", "override"]}
                    }
                }
            ]
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
                "status": {"type": "integer"},
                "details": {"type": "object"}
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
