package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Class Schedule API",
        "description": "Timetable generation for university batches, semesters and sections",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "in": "header", "name": "Authorization"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Schedules", "description": "Generation, lifecycle and instructor timetables"},
        {"name": "Courses", "description": "Course writes with derived lecture and lab hours"},
        {"name": "Export", "description": "Schedule downloads"},
        {"name": "Ops", "description": "Metrics and probes"}
    ],
    "paths": {
        "/schedules/generate": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Generate the timetable of one section",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Batch or semester not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "No courses, instructors or rooms", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/generate-all": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Generate every section of every batch for a semester",
                "parameters": [
                    {"name": "async", "in": "query", "type": "boolean"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateAllSchedulesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "202": {"description": "Job queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Generation queue full", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/jobs/{id}": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Get an asynchronous generation job",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown or expired job", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules": {
            "get": {
                "tags": ["Schedules"],
                "summary": "List stored schedules",
                "parameters": [
                    {"name": "batchId", "in": "query", "type": "string"},
                    {"name": "semesterId", "in": "query", "type": "string"},
                    {"name": "section", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["draft", "published"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/{id}": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Get a stored schedule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Schedules"],
                "summary": "Delete a schedule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/schedules/{id}/publish": {
            "patch": {
                "tags": ["Schedules"],
                "summary": "Publish a draft schedule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/instructor/{instructorId}": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Published timetable of one instructor",
                "parameters": [
                    {"name": "instructorId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Another instructor's timetable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/export/schedule/{id}/{format}": {
            "get": {
                "tags": ["Export"],
                "summary": "Download a schedule",
                "produces": ["application/pdf", "text/csv", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "application/json"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "path", "required": true, "type": "string", "enum": ["pdf", "csv", "xlsx", "json"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses": {
            "post": {
                "tags": ["Courses"],
                "summary": "Create a course",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate course code", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{id}": {
            "put": {
                "tags": ["Courses"],
                "summary": "Replace a course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Ops"],
                "summary": "Aggregated request, cache and generation counters",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "ShiftWindow": {
            "type": "object",
            "properties": {
                "start": {"type": "string", "example": "08:00"},
                "end": {"type": "string", "example": "12:00"}
            }
        },
        "PrioritySettings": {
            "type": "object",
            "properties": {
                "majorCoursesShift": {"type": "string", "enum": ["morning", "afternoon"]},
                "commonCoursesShift": {"type": "string", "enum": ["morning", "afternoon"]}
            }
        },
        "GenerateScheduleRequest": {
            "type": "object",
            "properties": {
                "batchId": {"type": "string"},
                "semesterId": {"type": "string"},
                "section": {"type": "string"},
                "department": {"type": "string"},
                "days": {"type": "array", "items": {"type": "string"}},
                "morningShift": {"$ref": "#/definitions/ShiftWindow"},
                "afternoonShift": {"$ref": "#/definitions/ShiftWindow"},
                "periodsPerDay": {"type": "integer"},
                "selectedRoomIds": {"type": "array", "items": {"type": "string"}},
                "prioritySettings": {"$ref": "#/definitions/PrioritySettings"},
                "sessionType": {"type": "string"},
                "singleSessionOnly": {"type": "boolean"}
            },
            "required": ["batchId", "semesterId", "section"]
        },
        "GenerateAllSchedulesRequest": {
            "type": "object",
            "properties": {
                "semesterId": {"type": "string"},
                "department": {"type": "string"},
                "days": {"type": "array", "items": {"type": "string"}},
                "morningShift": {"$ref": "#/definitions/ShiftWindow"},
                "afternoonShift": {"$ref": "#/definitions/ShiftWindow"},
                "periodsPerDay": {"type": "integer"},
                "selectedRoomIds": {"type": "array", "items": {"type": "string"}},
                "prioritySettings": {"$ref": "#/definitions/PrioritySettings"}
            },
            "required": ["semesterId"]
        },
        "CourseRequest": {
            "type": "object",
            "properties": {
                "courseCode": {"type": "string"},
                "courseName": {"type": "string"},
                "creditHour": {"type": "integer"},
                "majorOrCommon": {"type": "string", "enum": ["major", "common"]},
                "semesterId": {"type": "string"},
                "batchId": {"type": "string"},
                "instructorId": {"type": "string"},
                "hasLab": {"type": "boolean"},
                "department": {"type": "string"}
            },
            "required": ["courseCode", "courseName", "creditHour", "majorOrCommon", "semesterId", "batchId", "instructorId"]
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
