package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "EcoLearn API",
        "description": "Gamified sustainability education backend",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Registration and authentication"},
        {"name": "Users", "description": "Profiles and teacher selection"},
        {"name": "Courses", "description": "Courses, enrollment and materials"},
        {"name": "Quizzes", "description": "Quizzes and scoring"},
        {"name": "Assignments", "description": "Assignments and grading"},
        {"name": "Progress", "description": "Learning progress tracking"},
        {"name": "Gamification", "description": "EcoPoints, badges, leaderboard, winners"},
        {"name": "Moderation", "description": "Admin approvals"},
        {"name": "Notifications", "description": "In-app notifications and broadcast"},
        {"name": "Realtime", "description": "Server-sent events"},
        {"name": "Community", "description": "Shared community chat"},
        {"name": "Competitions", "description": "Sustainability competitions"},
        {"name": "Reports", "description": "CSV and PDF exports"},
        {"name": "Files", "description": "Signed file downloads"}
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
        }
    },
    "definitions": {
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
