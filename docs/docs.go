// Package docs holds the OpenAPI description served on /swagger. It follows
// the layout `swag init` emits for the annotations in internal/handlers.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/voice/sessions": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Opens a request/response voice session. The id is generated unless given.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Voice"],
                "summary": "Create a voice session",
                "parameters": [
                    {"description": "Optional session id", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/handlers.CreateSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created session", "schema": {"$ref": "#/definitions/handlers.SessionResponse"}},
                    "409": {"description": "Session already exists", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/voice/sessions/{id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Voice"],
                "summary": "End a voice session",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "Session ended"},
                    "409": {"description": "Session belongs to a websocket connection", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/voice/sessions/{id}/chunks": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Appends a base64 audio chunk to the session buffer, creating the session on first contact.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Voice"],
                "summary": "Submit an audio chunk",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true},
                    {"description": "Audio chunk", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ChunkRequest"}}
                ],
                "responses": {
                    "200": {"description": "Chunk outcome", "schema": {"$ref": "#/definitions/handlers.ChunkResponse"}},
                    "400": {"description": "Invalid request data", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "422": {"description": "Undecodable audio", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/voice/sessions/{id}/process": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Ends the turn and waits for transcription, reply and synthesis to finish.",
                "produces": ["application/json"],
                "tags": ["Voice"],
                "summary": "Process buffered audio",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Turn outcome and events", "schema": {"$ref": "#/definitions/handlers.OutcomeResponse"}},
                    "202": {"description": "Turn still processing", "schema": {"$ref": "#/definitions/handlers.OutcomeResponse"}},
                    "404": {"description": "Session not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/voice/sessions/{id}/interrupt": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Voice"],
                "summary": "Interrupt the assistant",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Interrupt outcome", "schema": {"$ref": "#/definitions/handlers.OutcomeResponse"}},
                    "404": {"description": "Session not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/voice/sessions/{id}/bot-speech-complete": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Voice"],
                "summary": "Confirm reply playback finished",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Outcome", "schema": {"$ref": "#/definitions/handlers.OutcomeResponse"}},
                    "404": {"description": "Session not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/voice/sessions/{id}/status": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Voice"],
                "summary": "Get session status",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Status and pending events", "schema": {"$ref": "#/definitions/handlers.StatusResponse"}},
                    "404": {"description": "Session not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/voice/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Voice"],
                "summary": "Voice engine statistics",
                "responses": {
                    "200": {"description": "Registry statistics", "schema": {"$ref": "#/definitions/voicestreamsystem.Stats"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.ChunkRequest": {
            "type": "object",
            "required": ["audio_base64"],
            "properties": {
                "audio_base64": {"type": "string"},
                "format": {"type": "string", "example": "webm"}
            }
        },
        "handlers.ChunkResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "buffered"},
                "buffer_bytes": {"type": "integer"},
                "state": {"type": "string", "example": "LISTENING"},
                "events": {"type": "array", "items": {"type": "object"}}
            }
        },
        "handlers.CreateSessionRequest": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "details": {"type": "string"}
            }
        },
        "handlers.OutcomeResponse": {
            "type": "object",
            "properties": {
                "outcome": {"type": "string", "example": "responded"},
                "status": {"$ref": "#/definitions/voicestreamsystem.Status"},
                "events": {"type": "array", "items": {"type": "object"}}
            }
        },
        "handlers.SessionResponse": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "status": {"$ref": "#/definitions/voicestreamsystem.Status"}
            }
        },
        "handlers.StatusResponse": {
            "type": "object",
            "properties": {
                "status": {"$ref": "#/definitions/voicestreamsystem.Status"},
                "events": {"type": "array", "items": {"type": "object"}}
            }
        },
        "voicestreamsystem.Stats": {
            "type": "object",
            "properties": {
                "active_sessions": {"type": "integer"},
                "stream_sessions": {"type": "integer"},
                "request_sessions": {"type": "integer"},
                "total_opened": {"type": "integer"},
                "by_state": {"type": "object", "additionalProperties": {"type": "integer"}},
                "pipeline_in_use": {"type": "integer"},
                "pipeline_size": {"type": "integer"}
            }
        },
        "voicestreamsystem.Status": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "state": {"type": "string", "enum": ["IDLE", "LISTENING", "PROCESSING", "SPEAKING", "INTERRUPTED"]},
                "is_bot_speaking": {"type": "boolean"},
                "is_user_speaking": {"type": "boolean"},
                "interrupted": {"type": "boolean"},
                "buffer_bytes": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Xarvis Voice API",
	Description:      "Real-time voice conversation engine: streaming websocket sessions and a request/response fallback.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
