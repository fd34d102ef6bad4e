package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Coverage API",
        "description": "Assigns covering staff to the periods of absent teachers and paraprofessionals.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Coverage", "description": "Daily substitute coverage"},
        {"name": "Ops", "description": "Health, readiness and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Ops"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Ops"],
                "summary": "Readiness check",
                "description": "Pings the database and, when configured, Redis.",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Degraded"}
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": ["Ops"],
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {
                    "200": {"description": "Exposition format"}
                }
            }
        },
        "/coverage/runs": {
            "post": {
                "tags": ["Coverage"],
                "summary": "Run the coverage engine for a date",
                "description": "Assigns covering staff to every absent period. Set dry_run to preview without saving.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RunCoverageRequest"}}
                ],
                "responses": {
                    "200": {"description": "Dry run", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "201": {"description": "Run stored", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Snapshot invalid", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Coverage"],
                "summary": "List coverage runs",
                "parameters": [
                    {"name": "from", "in": "query", "type": "string", "format": "date"},
                    {"name": "to", "in": "query", "type": "string", "format": "date"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/coverage/overrides": {
            "put": {
                "tags": ["Coverage"],
                "summary": "Pin or clear a manual override",
                "description": "An empty candidate_id clears the override for the period.",
                "consumes": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/OverrideRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/coverage/{date}": {
            "get": {
                "tags": ["Coverage"],
                "summary": "Get the stored coverage sheet",
                "parameters": [
                    {"name": "date", "in": "path", "required": true, "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No run for the date", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/coverage/{date}/export": {
            "get": {
                "tags": ["Coverage"],
                "summary": "Export the stored coverage sheet",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "date", "in": "path", "required": true, "type": "string", "format": "date"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No run for the date", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Exports disabled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "RunCoverageRequest": {
            "type": "object",
            "required": ["date"],
            "properties": {
                "date": {"type": "string", "format": "date"},
                "dry_run": {"type": "boolean"}
            }
        },
        "OverrideRequest": {
            "type": "object",
            "required": ["absence_id", "period"],
            "properties": {
                "absence_id": {"type": "string"},
                "period": {"type": "integer", "minimum": 1, "maximum": 20},
                "candidate_id": {"type": "string"}
            }
        },
        "CoverageResult": {
            "type": "object",
            "properties": {
                "absence_id": {"type": "string"},
                "absent_staff_id": {"type": "string"},
                "absent_staff_name": {"type": "string"},
                "period": {"type": "integer"},
                "period_label": {"type": "string"},
                "candidate_id": {"type": "string"},
                "candidate_name": {"type": "string"},
                "role": {"type": "string"},
                "type": {"type": "string", "enum": ["Full Day Sub", "External Sub", "Paraprofessional", "Internal Coverage", "Emergency Coverage", "Manual Override", "No Coverage"]},
                "status": {"type": "string"},
                "reason": {"type": "string"},
                "candidates_evaluated": {"type": "integer"}
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
