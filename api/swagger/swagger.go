package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "IDS Attendance API",
        "description": "Attendance registration, validation and reporting",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Attendance", "description": "Bulk attendance registration"},
        {"name": "Reports", "description": "Consolidated attendance reports"}
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
        "/api/v1/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and issue an access token",
                "responses": {
                    "200": {"description": "Token issued"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/api/v1/attendance/bulk": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Register bulk attendance for one section and date",
                "responses": {
                    "201": {"description": "Attendance registered"},
                    "400": {"description": "Precondition failed"},
                    "403": {"description": "Scope or status denied"},
                    "404": {"description": "Referenced entity missing"}
                }
            }
        },
        "/api/v1/attendance/reports/{enrollmentId}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Consolidated report for one enrollment",
                "responses": {
                    "200": {"description": "Report"},
                    "404": {"description": "No report yet"}
                }
            }
        },
        "/api/v1/attendance/reports/recalculate": {
            "post": {
                "tags": ["Reports"],
                "summary": "Schedule a section-wide report recalculation",
                "responses": {
                    "202": {"description": "Recalculation scheduled"},
                    "400": {"description": "Invalid payload or queue disabled"}
                }
            }
        },
        "/api/v1/attendance/sections/{id}/export": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Export a section's attendance sheet as CSV or PDF",
                "responses": {
                    "200": {"description": "Rendered sheet"},
                    "400": {"description": "Invalid date or format"}
                }
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
