package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Timetable",
        "description": "Collects teacher/subject pairs per browser session and generates a weekly timetable PDF",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Pages", "description": "HTML form and PDF download"},
        {"name": "Entries", "description": "Session teacher/subject list"},
        {"name": "Timetable", "description": "Timetable generation"}
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
                "summary": "Readiness check, pings Redis when it backs sessions",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Session store unreachable"}
                }
            }
        },
        "/": {
            "get": {
                "tags": ["Pages"],
                "summary": "Render the entry form and current list",
                "produces": ["text/html"],
                "parameters": [
                    {"name": "edit", "in": "query", "type": "integer", "description": "Pre-fill the form with this entry"}
                ],
                "responses": {"200": {"description": "HTML page"}}
            },
            "post": {
                "tags": ["Pages"],
                "summary": "Add an entry or replace the one at edit_index",
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["text/html"],
                "parameters": [
                    {"name": "teacher", "in": "formData", "type": "string"},
                    {"name": "subject", "in": "formData", "type": "string"},
                    {"name": "edit_index", "in": "formData", "type": "integer"}
                ],
                "responses": {"200": {"description": "HTML page"}}
            }
        },
        "/delete/{index}": {
            "get": {
                "tags": ["Pages"],
                "summary": "Delete the entry at index, ignoring invalid indexes",
                "parameters": [
                    {"name": "index", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {"302": {"description": "Redirect to /"}}
            }
        },
        "/generate": {
            "get": {
                "tags": ["Pages"],
                "summary": "Download timetable.pdf and clear the session list",
                "produces": ["application/pdf", "text/plain"],
                "responses": {
                    "200": {"description": "PDF attachment, or the text 'No teachers added!' when the list is empty"}
                }
            }
        },
        "/api/v1/entries": {
            "get": {
                "tags": ["Entries"],
                "summary": "List the session's entries",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Entries"],
                "summary": "Add an entry, or replace the one at editIndex",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EntryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Teacher or subject missing", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/entries/{index}": {
            "delete": {
                "tags": ["Entries"],
                "summary": "Delete the entry at index; out of range indexes are ignored",
                "parameters": [
                    {"name": "index", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/timetable/preview": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Generate a timetable as JSON without clearing the session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "No entries", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "EntryRequest": {
            "type": "object",
            "properties": {
                "teacher": {"type": "string"},
                "subject": {"type": "string"},
                "editIndex": {"type": "integer"}
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
