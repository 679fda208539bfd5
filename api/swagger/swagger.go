package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Exam Logistics API",
        "description": "Exam scheduling and logistics with section-level conflict detection",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Exams", "description": "Exam scheduling and the overlap rule"},
        {"name": "Exports", "description": "Timetable downloads"}
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
        "/exams": {
            "get": {
                "tags": ["Exams"],
                "summary": "List exams",
                "parameters": [
                    {"name": "subject_id", "in": "query", "type": "string"},
                    {"name": "exam_type", "in": "query", "type": "string"},
                    {"name": "exam_date", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Exams"],
                "summary": "Schedule an exam",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExamRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error or scheduling conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exams/{id}": {
            "get": {
                "tags": ["Exams"],
                "summary": "Get exam",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Exams"],
                "summary": "Reschedule exam",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExamRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error or scheduling conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Exams"],
                "summary": "Delete exam",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/overlap-checks": {
            "post": {
                "tags": ["Exams"],
                "summary": "Probe a slot for scheduling conflicts",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/OverlapCheckRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/timetable.csv": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download timetable as CSV",
                "parameters": [
                    {"name": "subject_id", "in": "query", "type": "string"},
                    {"name": "exam_type", "in": "query", "type": "string"},
                    {"name": "exam_date", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "CSV document"}
                }
            }
        },
        "/exports/timetable.pdf": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download timetable as PDF",
                "parameters": [
                    {"name": "subject_id", "in": "query", "type": "string"},
                    {"name": "exam_type", "in": "query", "type": "string"},
                    {"name": "exam_date", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF document"}
                }
            }
        }
    },
    "definitions": {
        "ExamDetail": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "exam_date": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "exam_type": {"type": "string", "enum": ["MIDTERM", "SEMESTER"]},
                "set_type": {"type": "string", "enum": ["NO_SET", "SET1", "SET2"]},
                "subject_id": {"type": "string"},
                "subject_code": {"type": "string"},
                "subject_name": {"type": "string"},
                "program_id": {"type": "string"},
                "program_name": {"type": "string"},
                "year_id": {"type": "string"},
                "year_name": {"type": "string"},
                "branch_ids": {"type": "array", "items": {"type": "string"}},
                "branch_names": {"type": "array", "items": {"type": "string"}},
                "section_ids": {"type": "array", "items": {"type": "string"}},
                "section_names": {"type": "array", "items": {"type": "string"}}
            }
        },
        "ExamRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "exam_date": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "subject_id": {"type": "string"},
                "exam_type": {"type": "string", "enum": ["MIDTERM", "SEMESTER"]},
                "set_type": {"type": "string", "enum": ["NO_SET", "SET1", "SET2"]},
                "program_id": {"type": "string"},
                "year_id": {"type": "string"},
                "branch_ids": {"type": "array", "items": {"type": "string"}},
                "section_ids": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["exam_date", "start_time", "end_time", "subject_id", "exam_type", "set_type", "program_id", "year_id", "branch_ids"]
        },
        "OverlapCheckRequest": {
            "type": "object",
            "properties": {
                "exam_date": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "section_ids": {"type": "array", "items": {"type": "string"}},
                "exclude_exam_id": {"type": "string"}
            },
            "required": ["exam_date", "start_time", "end_time"]
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
