package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {"title": "Hostel Management API", "description": "Rooms, assignments, registrations, requests and reports for hostel staff and students.", "version": "1.0.0"},
    "basePath": "/api/v1",
    "schemes": ["http"],
    "securityDefinitions": {"BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}},
    "paths": {
        "/auth/signup": {
            "post": {"tags": ["Auth"], "summary": "Create a student account", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SignupRequest"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "409": {"description": "Conflict or capacity exceeded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/auth/login": {
            "post": {"tags": ["Auth"], "summary": "Log in", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/auth/refresh": {
            "post": {"tags": ["Auth"], "summary": "Rotate refresh token", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/auth/logout": {
            "post": {"tags": ["Auth"], "summary": "Revoke refresh token", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshRequest"}}], "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/auth/change-password": {
            "post": {"tags": ["Auth"], "summary": "Change password", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangePasswordRequest"}}], "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/auth/me": {
            "get": {"tags": ["Auth"], "summary": "Current session and landing screen", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/users": {
            "get": {"tags": ["Profiles"], "summary": "List profiles", "parameters": [{"name": "role", "in": "query", "type": "string"}, {"name": "search", "in": "query", "type": "string"}, {"name": "page", "in": "query", "type": "integer"}, {"name": "page_size", "in": "query", "type": "integer"}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}},
            "post": {"tags": ["Profiles"], "summary": "Create profile", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateUserRequest"}}], "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict or capacity exceeded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/users/{id}": {
            "get": {"tags": ["Profiles"], "summary": "Get profile", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}},
            "put": {"tags": ["Profiles"], "summary": "Update profile", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateUserRequest"}}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}},
            "delete": {"tags": ["Profiles"], "summary": "Delete profile", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/rooms": {
            "get": {"tags": ["Rooms"], "summary": "List rooms", "parameters": [{"name": "floor", "in": "query", "type": "integer"}, {"name": "status", "in": "query", "type": "string"}, {"name": "room_type", "in": "query", "type": "string"}, {"name": "search", "in": "query", "type": "string"}, {"name": "sort", "in": "query", "type": "string"}, {"name": "page", "in": "query", "type": "integer"}, {"name": "page_size", "in": "query", "type": "integer"}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}},
            "post": {"tags": ["Rooms"], "summary": "Create room", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RoomRequest"}}], "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict or capacity exceeded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/rooms/{id}": {
            "get": {"tags": ["Rooms"], "summary": "Get room with occupants", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}},
            "put": {"tags": ["Rooms"], "summary": "Update room", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RoomRequest"}}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}, "412": {"description": "Precondition failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/rooms/{id}/occupancy": {
            "get": {"tags": ["Rooms"], "summary": "Room occupancy", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/rooms/{id}/assignments": {
            "post": {"tags": ["Assignments"], "summary": "Assign students to room", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignRoomRequest"}}], "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict or capacity exceeded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "get": {"tags": ["Assignments"], "summary": "Room assignment history", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "active", "in": "query", "type": "boolean"}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/rooms/{id}/vacate": {
            "post": {"tags": ["Assignments"], "summary": "Vacate room", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/assignments/conflicts": {
            "post": {"tags": ["Assignments"], "summary": "Check active assignment conflicts", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ConflictCheckRequest"}}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/assignments/{id}": {
            "delete": {"tags": ["Assignments"], "summary": "End assignment", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}, "412": {"description": "Precondition failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/students/{id}/assignment": {
            "get": {"tags": ["Assignments"], "summary": "Current room of a student", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/students/{id}/assignments": {
            "get": {"tags": ["Assignments"], "summary": "Assignment history of a student", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/rooms/{id}/furniture": {
            "get": {"tags": ["Furniture"], "summary": "List furniture", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}},
            "post": {"tags": ["Furniture"], "summary": "Add furniture", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FurnitureRequest"}}], "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/furniture/{id}": {
            "put": {"tags": ["Furniture"], "summary": "Update furniture", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FurnitureRequest"}}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}},
            "delete": {"tags": ["Furniture"], "summary": "Delete furniture", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/registrations": {
            "post": {"tags": ["Registrations"], "summary": "Submit registration", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegistrationRequest"}}], "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict or capacity exceeded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "get": {"tags": ["Registrations"], "summary": "List registrations", "parameters": [{"name": "status", "in": "query", "type": "string"}, {"name": "graduation_status", "in": "query", "type": "string"}, {"name": "academic_year", "in": "query", "type": "string"}, {"name": "search", "in": "query", "type": "string"}, {"name": "page", "in": "query", "type": "integer"}, {"name": "page_size", "in": "query", "type": "integer"}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/registrations/me": {
            "get": {"tags": ["Registrations"], "summary": "Own registration", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}},
            "put": {"tags": ["Registrations"], "summary": "Update own pending registration", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegistrationRequest"}}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}, "412": {"description": "Precondition failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/registrations/me/photo": {
            "post": {"tags": ["Registrations"], "summary": "Upload registration photo", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/registrations/{id}": {
            "get": {"tags": ["Registrations"], "summary": "Get registration", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/registrations/{id}/photo": {
            "get": {"tags": ["Registrations"], "summary": "Download registration photo", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "token", "in": "query", "type": "string"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/registrations/{id}/review": {
            "post": {"tags": ["Registrations"], "summary": "Approve or reject", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReviewRequest"}}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}, "412": {"description": "Precondition failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/registrations/{id}/graduate": {
            "post": {"tags": ["Registrations"], "summary": "Mark passed out and end assignment", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/requests": {
            "post": {"tags": ["Requests"], "summary": "Raise request", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRequestRequest"}}], "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}},
            "get": {"tags": ["Requests"], "summary": "List requests", "parameters": [{"name": "status", "in": "query", "type": "string"}, {"name": "type", "in": "query", "type": "string"}, {"name": "priority", "in": "query", "type": "string"}, {"name": "page", "in": "query", "type": "integer"}, {"name": "page_size", "in": "query", "type": "integer"}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/requests/{id}": {
            "get": {"tags": ["Requests"], "summary": "Get request", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/requests/{id}/status": {
            "patch": {"tags": ["Requests"], "summary": "Move request status", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RequestStatusRequest"}}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}, "412": {"description": "Precondition failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/announcements": {
            "get": {"tags": ["Announcements"], "summary": "List announcements", "parameters": [{"name": "includeInactive", "in": "query", "type": "boolean"}, {"name": "type", "in": "query", "type": "string"}, {"name": "page", "in": "query", "type": "integer"}, {"name": "page_size", "in": "query", "type": "integer"}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}},
            "post": {"tags": ["Announcements"], "summary": "Publish announcement", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AnnouncementRequest"}}], "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/announcements/{id}": {
            "put": {"tags": ["Announcements"], "summary": "Update announcement", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AnnouncementRequest"}}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}},
            "delete": {"tags": ["Announcements"], "summary": "Deactivate announcement", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/dashboard/summary": {
            "get": {"tags": ["Dashboard"], "summary": "Dashboard summary", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/reports": {
            "post": {"tags": ["Reports"], "summary": "Queue report", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReportRequest"}}], "security": [{"BearerAuth": []}], "responses": {"202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}},
            "get": {"tags": ["Reports"], "summary": "List own report jobs", "parameters": [{"name": "limit", "in": "query", "type": "integer"}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/reports/{id}": {
            "get": {"tags": ["Reports"], "summary": "Report job status", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/export/{token}": {
            "get": {"tags": ["Reports"], "summary": "Download finished report", "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/metrics/summary": {
            "get": {"tags": ["Metrics"], "summary": "Process metrics snapshot", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        }
    },
    "definitions": {
        "SignupRequest": {"type": "object", "properties": {"email": {"type": "string"}, "password": {"type": "string"}, "full_name": {"type": "string"}}},
        "LoginRequest": {"type": "object", "properties": {"email": {"type": "string"}, "password": {"type": "string"}}},
        "RefreshRequest": {"type": "object", "properties": {"refresh_token": {"type": "string"}}},
        "ChangePasswordRequest": {"type": "object", "properties": {"old_password": {"type": "string"}, "new_password": {"type": "string"}}},
        "CreateUserRequest": {"type": "object", "properties": {"email": {"type": "string"}, "password": {"type": "string"}, "full_name": {"type": "string"}, "role": {"type": "string"}}},
        "UpdateUserRequest": {"type": "object", "properties": {"full_name": {"type": "string"}, "role": {"type": "string"}, "active": {"type": "boolean"}}},
        "RoomRequest": {"type": "object", "properties": {"room_number": {"type": "string"}, "floor": {"type": "integer"}, "room_type": {"type": "string"}, "size": {"type": "string"}, "max_occupancy": {"type": "integer"}, "status": {"type": "string"}, "condition": {"type": "string"}}},
        "AssignRoomRequest": {"type": "object", "properties": {"student_ids": {"type": "array", "items": {"type": "string"}}, "force": {"type": "boolean"}}},
        "ConflictCheckRequest": {"type": "object", "properties": {"student_ids": {"type": "array", "items": {"type": "string"}}}},
        "FurnitureRequest": {"type": "object", "properties": {"name": {"type": "string"}, "quantity": {"type": "integer"}, "condition": {"type": "string"}}},
        "RegistrationRequest": {"type": "object", "properties": {"full_name": {"type": "string"}, "age": {"type": "integer"}, "phone": {"type": "string"}, "id_number": {"type": "string"}, "academic_year": {"type": "string"}}},
        "ReviewRequest": {"type": "object", "properties": {"decision": {"type": "string"}, "note": {"type": "string"}}},
        "CreateRequestRequest": {"type": "object", "properties": {"type": {"type": "string"}, "priority": {"type": "string"}, "room_number": {"type": "string"}, "description": {"type": "string"}}},
        "RequestStatusRequest": {"type": "object", "properties": {"status": {"type": "string"}, "note": {"type": "string"}}},
        "AnnouncementRequest": {"type": "object", "properties": {"title": {"type": "string"}, "message": {"type": "string"}, "type": {"type": "string"}, "is_active": {"type": "boolean"}}},
        "ReportRequest": {"type": "object", "properties": {"type": {"type": "string"}, "format": {"type": "string"}, "status": {"type": "string"}, "academic_year": {"type": "string"}, "floor": {"type": "integer"}}},
        "Pagination": {"type": "object", "properties": {"page": {"type": "integer"}, "page_size": {"type": "integer"}, "total_count": {"type": "integer"}, "total_pages": {"type": "integer"}}},
        "APIError": {"type": "object", "properties": {"code": {"type": "string"}, "message": {"type": "string"}, "status": {"type": "integer"}, "details": {"type": "object"}}},
        "ResponseEnvelope": {"type": "object", "properties": {"data": {"type": "object"}, "error": {"$ref": "#/definitions/APIError"}, "pagination": {"$ref": "#/definitions/Pagination"}, "meta": {"type": "object"}}}
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
