package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Academic Registry API",
        "description": "Terms, subject offerings, registrations, assignments and the weekly timetable.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "AdminAuth": {"type": "basic"},
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Departments", "description": "Department reference data"},
        {"name": "Students", "description": "Student roster management"},
        {"name": "Subjects", "description": "Subject catalogue and curriculum batches"},
        {"name": "Terms", "description": "Academic terms"},
        {"name": "Registrations", "description": "Term registration batches"},
        {"name": "Offerings", "description": "Per-term subject catalogue"},
        {"name": "Assignments", "description": "Student subject enrolment and grades"},
        {"name": "Periods", "description": "Daily period slots"},
        {"name": "Timetable", "description": "Weekly schedule grid"},
        {"name": "Portal", "description": "Public student endpoints"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
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
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/public/student-dashboard": {
            "post": {
                "tags": ["Portal"],
                "summary": "Authenticate a student and return their dashboard",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PortalLoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Dashboard with session token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/public/schedule": {
            "get": {
                "tags": ["Portal"],
                "summary": "Public weekly schedule",
                "parameters": [
                    {"name": "termId", "in": "query", "type": "string", "description": "Defaults to the active term"}
                ],
                "responses": {
                    "200": {"description": "Schedule grouped by teaching day", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No active term"}
                }
            }
        },
        "/public/me": {
            "get": {
                "tags": ["Portal"],
                "summary": "Dashboard for the authenticated student",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Missing or invalid session token"}
                }
            }
        },
        "/api/v1/bootstrap": {
            "get": {
                "tags": ["Departments"],
                "summary": "Departments, subjects, terms and periods in one call",
                "security": [{"AdminAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/departments": {
            "get": {
                "tags": ["Departments"],
                "summary": "List departments",
                "security": [{"AdminAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "isActive", "in": "query", "type": "boolean"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Departments"],
                "summary": "Create department",
                "security": [{"AdminAuth": []}],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Department code already exists"}
                }
            }
        },
        "/api/v1/departments/{id}": {
            "get": {
                "tags": ["Departments"],
                "summary": "Get department",
                "security": [{"AdminAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Departments"],
                "summary": "Update department",
                "security": [{"AdminAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "delete": {
                "tags": ["Departments"],
                "summary": "Delete department",
                "security": [{"AdminAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "204": {"description": "Deleted"},
                    "409": {"description": "Department still referenced by students or subjects"}
                }
            }
        },
        "/api/v1/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "security": [{"AdminAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "departmentId", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Students"],
                "summary": "Create student",
                "security": [{"AdminAuth": []}],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Registration ID or email already in use"}
                }
            }
        },
        "/api/v1/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student",
                "security": [{"AdminAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update student",
                "security": [{"AdminAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Delete student",
                "security": [{"AdminAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"204": {"description": "Deleted"}, "404": {"description": "Not found"}}
            }
        },
        "/api/v1/subjects": {
            "get": {
                "tags": ["Subjects"],
                "summary": "List subjects",
                "security": [{"AdminAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "departmentId", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Subjects"],
                "summary": "Create subject",
                "security": [{"AdminAuth": []}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/api/v1/subjects/bulk": {
            "post": {
                "tags": ["Subjects"],
                "summary": "Bulk upsert subjects by code",
                "security": [{"AdminAuth": []}],
                "responses": {"200": {"description": "Applied count"}}
            }
        },
        "/api/v1/subjects/{id}": {
            "get": {
                "tags": ["Subjects"],
                "summary": "Get subject",
                "security": [{"AdminAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Subjects"],
                "summary": "Update subject",
                "security": [{"AdminAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "delete": {
                "tags": ["Subjects"],
                "summary": "Delete subject",
                "security": [{"AdminAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"204": {"description": "Deleted"}, "404": {"description": "Not found"}}
            }
        },
        "/api/v1/terms": {
            "get": {
                "tags": ["Terms"],
                "summary": "List terms",
                "security": [{"AdminAuth": []}],
                "parameters": [{"name": "includeArchived", "in": "query", "type": "boolean"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Terms"],
                "summary": "Create term",
                "security": [{"AdminAuth": []}],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Term dates overlap an existing term"}
                }
            }
        },
        "/api/v1/terms/{id}": {
            "get": {
                "tags": ["Terms"],
                "summary": "Get term",
                "security": [{"AdminAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Terms"],
                "summary": "Update term",
                "security": [{"AdminAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Term dates overlap an existing term"}
                }
            },
            "delete": {
                "tags": ["Terms"],
                "summary": "Delete term and its dependent records",
                "security": [{"AdminAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"204": {"description": "Deleted"}, "404": {"description": "Not found"}}
            }
        },
        "/api/v1/registrations": {
            "get": {
                "tags": ["Registrations"],
                "summary": "List registrations for a term",
                "security": [{"AdminAuth": []}],
                "parameters": [{"name": "termId", "in": "query", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/registrations/register": {
            "post": {
                "tags": ["Registrations"],
                "summary": "Register a batch of students into a term",
                "security": [{"AdminAuth": []}],
                "responses": {"200": {"description": "Registered and skipped student IDs"}}
            }
        },
        "/api/v1/registrations/unregister": {
            "post": {
                "tags": ["Registrations"],
                "summary": "Remove a batch of students from a term",
                "security": [{"AdminAuth": []}],
                "responses": {"204": {"description": "Removed"}}
            }
        },
        "/api/v1/registrations/export": {
            "get": {
                "tags": ["Registrations"],
                "summary": "Export a term's registrations as CSV",
                "security": [{"AdminAuth": []}],
                "produces": ["text/csv"],
                "parameters": [{"name": "termId", "in": "query", "type": "string", "required": true}],
                "responses": {"200": {"description": "CSV attachment"}}
            }
        },
        "/api/v1/terms/{id}/subjects": {
            "get": {
                "tags": ["Offerings"],
                "summary": "List subjects offered in a term",
                "security": [{"AdminAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/terms/{id}/subjects/assign": {
            "post": {
                "tags": ["Offerings"],
                "summary": "Offer a batch of subjects in a term",
                "security": [{"AdminAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "Assigned and skipped subject IDs"}}
            }
        },
        "/api/v1/terms/{id}/subjects/unassign": {
            "post": {
                "tags": ["Offerings"],
                "summary": "Withdraw a batch of subjects from a term's catalogue",
                "security": [{"AdminAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"204": {"description": "Withdrawn"}}
            }
        },
        "/api/v1/terms/{id}/students/{studentId}/subjects": {
            "get": {
                "tags": ["Assignments"],
                "summary": "List a student's assigned subjects in a term",
                "security": [{"AdminAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "studentId", "in": "path", "type": "string", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/terms/{id}/students/{studentId}/subjects/assign": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Assign a batch of subjects to a student",
                "security": [{"AdminAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "studentId", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Assigned and skipped subject IDs"},
                    "400": {"description": "Eligibility rule rejected the batch"}
                }
            }
        },
        "/api/v1/terms/{id}/students/{studentId}/subjects/unassign": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Remove a batch of subject assignments from a student",
                "security": [{"AdminAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "studentId", "in": "path", "type": "string", "required": true}
                ],
                "responses": {"204": {"description": "Removed"}}
            }
        },
        "/api/v1/terms/{id}/students/{studentId}/subjects/{subjectId}/grade": {
            "put": {
                "tags": ["Assignments"],
                "summary": "Record or clear a grade on an assignment",
                "security": [{"AdminAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "studentId", "in": "path", "type": "string", "required": true},
                    {"name": "subjectId", "in": "path", "type": "string", "required": true}
                ],
                "responses": {"204": {"description": "Recorded"}, "404": {"description": "Assignment not found"}}
            }
        },
        "/api/v1/periods": {
            "get": {
                "tags": ["Periods"],
                "summary": "List daily periods",
                "security": [{"AdminAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/periods/{id}": {
            "put": {
                "tags": ["Periods"],
                "summary": "Relabel or retime a period",
                "security": [{"AdminAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/api/v1/terms/{id}/timetable": {
            "get": {
                "tags": ["Timetable"],
                "summary": "List a term's timetable entries",
                "security": [{"AdminAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Timetable"],
                "summary": "Schedule a subject into a slot",
                "security": [{"AdminAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Subject already scheduled in this slot"}
                }
            }
        },
        "/api/v1/terms/{id}/timetable/export": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Export a term's timetable as PDF",
                "security": [{"AdminAuth": []}],
                "produces": ["application/pdf"],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "PDF attachment"}}
            }
        },
        "/api/v1/timetable/{entryId}": {
            "put": {
                "tags": ["Timetable"],
                "summary": "Move or relabel a timetable entry",
                "security": [{"AdminAuth": []}],
                "parameters": [{"name": "entryId", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Subject already scheduled in this slot"}
                }
            },
            "delete": {
                "tags": ["Timetable"],
                "summary": "Remove a timetable entry",
                "security": [{"AdminAuth": []}],
                "parameters": [{"name": "entryId", "in": "path", "type": "string", "required": true}],
                "responses": {"204": {"description": "Deleted"}, "404": {"description": "Not found"}}
            }
        }
    },
    "definitions": {
        "PortalLoginRequest": {
            "type": "object",
            "required": ["email", "registration_id", "password"],
            "properties": {
                "email": {"type": "string"},
                "registration_id": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"}
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
