package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Athlete Records API",
        "description": "Student athletic and medical records: search, list, detail, printable sheets and registration forms backed by the data service procedures.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Students", "description": "Search, list, detail, print and stateless create/edit"},
        {"name": "Forms", "description": "Server-held registration and edit form pages"},
        {"name": "Catalogs", "description": "Sports, belts, faculties and majors"},
        {"name": "Observability", "description": "Metrics summary"}
    ],
    "paths": {
        "/students/search": {
            "get": {
                "tags": ["Students"],
                "summary": "Find a student by national ID",
                "parameters": [
                    {"name": "cedula", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Blank national ID", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not registered", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "sport", "in": "query", "type": "string"},
                    {"name": "belt", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Register a student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/WorkingCopy"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "National ID already registered", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/export": {
            "get": {
                "tags": ["Students"],
                "summary": "Export the filtered student list",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "sport", "in": "query", "type": "string"},
                    {"name": "belt", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}}
                }
            }
        },
        "/students/{id}": {
            "delete": {
                "tags": ["Students"],
                "summary": "Delete a student",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "confirm", "in": "query", "type": "boolean", "required": true}
                ],
                "responses": {
                    "200": {"description": "Refreshed list page", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "428": {"description": "Confirmation required", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Data service rejected the deletion", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{cedula}": {
            "get": {
                "tags": ["Students"],
                "summary": "Student detail",
                "parameters": [
                    {"name": "cedula", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Students"],
                "summary": "Edit a student",
                "parameters": [
                    {"name": "cedula", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/WorkingCopy"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{cedula}/print": {
            "get": {
                "tags": ["Students"],
                "summary": "Printable student sheet",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "cedula", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "PDF", "schema": {"type": "file"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/forms": {
            "post": {
                "tags": ["Forms"],
                "summary": "Open a form page",
                "parameters": [
                    {"name": "payload", "in": "body", "schema": {"type": "object", "properties": {"cedula": {"type": "string"}}}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Student not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/forms/{id}": {
            "get": {
                "tags": ["Forms"],
                "summary": "Current form state",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Forms"],
                "summary": "Discard a form page",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/forms/{id}/fields": {
            "patch": {
                "tags": ["Forms"],
                "summary": "Set one form field",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FieldUpdateRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/forms/{id}/physical-tests": {
            "post": {
                "tags": ["Forms"],
                "summary": "Append a physical test row",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/forms/{id}/physical-tests/{index}": {
            "put": {
                "tags": ["Forms"],
                "summary": "Replace a physical test row",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "index", "in": "path", "type": "integer", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RowFields"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Forms"],
                "summary": "Remove a physical test row",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "index", "in": "path", "type": "integer", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/forms/{id}/competition-records": {
            "post": {
                "tags": ["Forms"],
                "summary": "Append a competition record row",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/forms/{id}/competition-records/{index}": {
            "put": {
                "tags": ["Forms"],
                "summary": "Replace a competition record row",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "index", "in": "path", "type": "integer", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RowFields"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Forms"],
                "summary": "Remove a competition record row",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "index", "in": "path", "type": "integer", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/forms/{id}/submit": {
            "post": {
                "tags": ["Forms"],
                "summary": "Submit a form page",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "National ID already registered or submit in flight", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Data service failure", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/catalogs": {
            "get": {
                "tags": ["Catalogs"],
                "summary": "Load lookup catalogs",
                "parameters": [
                    {"name": "names", "in": "query", "type": "string", "description": "Comma separated subset: sports,belts,faculties,majors"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/catalogs/majors": {
            "get": {
                "tags": ["Catalogs"],
                "summary": "List majors of a faculty",
                "parameters": [
                    {"name": "facultyId", "in": "query", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid faculty", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Observability"],
                "summary": "Metrics summary",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "StudentFields": {
            "type": "object",
            "properties": {
                "national_id": {"type": "string"},
                "full_name": {"type": "string"},
                "address": {"type": "string"},
                "email": {"type": "string"},
                "birth_date": {"type": "string", "format": "date"},
                "faculty_id": {"type": "integer"},
                "major_id": {"type": "integer"}
            }
        },
        "MedicalFields": {
            "type": "object",
            "properties": {
                "blood_type": {"type": "string", "enum": ["A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"]},
                "pathologies": {"type": "string"},
                "last_checkup": {"type": "string", "format": "date"}
            }
        },
        "PhysicalTestRow": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "category": {"type": "string", "enum": ["velocidad", "fuerza", "resistencia"]},
                "name": {"type": "string"},
                "unit": {"type": "string"},
                "result": {"type": "string"}
            }
        },
        "CompetitionRecordRow": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "date": {"type": "string", "format": "date"},
                "result": {"type": "string", "enum": ["ORO", "PLATA", "BRONCE", "OTRO"]},
                "placement": {"type": "integer"}
            }
        },
        "WorkingCopy": {
            "type": "object",
            "properties": {
                "student": {"$ref": "#/definitions/StudentFields"},
                "medical": {"$ref": "#/definitions/MedicalFields"},
                "sport": {"type": "string"},
                "belt": {"type": "string"},
                "physical_tests": {"type": "array", "items": {"$ref": "#/definitions/PhysicalTestRow"}},
                "competition_records": {"type": "array", "items": {"$ref": "#/definitions/CompetitionRecordRow"}}
            }
        },
        "FieldUpdateRequest": {
            "type": "object",
            "required": ["section", "field"],
            "properties": {
                "section": {"type": "string", "enum": ["student", "medical", "selection"]},
                "field": {"type": "string"},
                "value": {"type": "string"}
            }
        },
        "RowFields": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "name": {"type": "string"},
                "unit": {"type": "string"},
                "result": {"type": "string"},
                "date": {"type": "string"},
                "placement": {"type": "integer"}
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
