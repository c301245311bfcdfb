// Package docs registers the OpenAPI document served at /swagger/doc.json.
// Regenerate with: swag init -g cmd/server/main.go
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
        "/rooms/{room}/messages": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Newest first. Use next_before from the response as the before cursor for older pages.",
                "produces": ["application/json"],
                "tags": ["chat"],
                "summary": "Chat history of a room",
                "parameters": [
                    {"type": "string", "description": "Room name", "name": "room", "in": "path", "required": true},
                    {"type": "integer", "description": "Return messages with id below this value", "name": "before", "in": "query"},
                    {"type": "integer", "description": "Page size (default 50, max 200)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ChatHistory"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Stores the message and relays it to every socket in the room.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["chat"],
                "summary": "Post a chat message over HTTP",
                "parameters": [
                    {"type": "string", "description": "Room name", "name": "room", "in": "path", "required": true},
                    {"description": "Message", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.postMessageInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.ChatMessage"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/rooms/{room}/messages/{id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Sockets in the room receive a chat-deleted event.",
                "tags": ["chat"],
                "summary": "Delete a chat message (moderation)",
                "parameters": [
                    {"type": "string", "description": "Room name", "name": "room", "in": "path", "required": true},
                    {"type": "integer", "description": "Message id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/rooms/{room}/archive": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["chat"],
                "summary": "Archive a room transcript to object storage",
                "parameters": [
                    {"type": "string", "description": "Room name", "name": "room", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.ChatArchive"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/rooms/{room}/members": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["relay"],
                "summary": "Sockets currently in a room",
                "parameters": [
                    {"type": "string", "description": "Room name", "name": "room", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "room and members", "schema": {"type": "object", "properties": {"room": {"type": "string"}, "members": {"type": "array", "items": {"$ref": "#/definitions/models.RoomMember"}}}}}
                }
            }
        },
        "/streams": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["relay"],
                "summary": "Live streams across all rooms",
                "responses": {
                    "200": {"description": "streams", "schema": {"type": "object", "properties": {"streams": {"type": "array", "items": {"$ref": "#/definitions/models.LiveStream"}}}}}
                }
            }
        },
        "/webrtc/ice-servers": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "STUN entries plus time-limited TURN credentials when TURN is configured.",
                "produces": ["application/json"],
                "tags": ["webrtc"],
                "summary": "ICE servers for RTCPeerConnection",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ICEConfig"}}
                }
            }
        },
        "/stats/valorant/{region}/{name}/{tag}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Account, rank and last matches. Sections that failed upstream are reported in sources.",
                "produces": ["application/json"],
                "tags": ["stats"],
                "summary": "Valorant player stats",
                "parameters": [
                    {"type": "string", "description": "na, eu, ap, kr, latam or br", "name": "region", "in": "path", "required": true},
                    {"type": "string", "description": "Riot game name", "name": "name", "in": "path", "required": true},
                    {"type": "string", "description": "Riot tag line", "name": "tag", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.PlayerStats"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/admin/dashboard": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Admin dashboard",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.DashboardStats"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "errorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "handlers.postMessageInput": {
            "type": "object",
            "properties": {"text": {"type": "string"}}
        },
        "models.ChatMessage": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "room": {"type": "string"},
                "user_id": {"type": "integer"},
                "nickname": {"type": "string"},
                "text": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "models.ChatHistory": {
            "type": "object",
            "properties": {
                "room": {"type": "string"},
                "messages": {"type": "array", "items": {"$ref": "#/definitions/models.ChatMessage"}},
                "next_before": {"type": "integer"}
            }
        },
        "models.ChatArchive": {
            "type": "object",
            "properties": {
                "room": {"type": "string"},
                "key": {"type": "string"},
                "url": {"type": "string"},
                "messages": {"type": "integer"},
                "bytes": {"type": "integer"},
                "created_at": {"type": "string"}
            }
        },
        "models.RoomMember": {
            "type": "object",
            "properties": {
                "socket_id": {"type": "string"},
                "user_id": {"type": "integer"},
                "name": {"type": "string"},
                "in_voice": {"type": "boolean"}
            }
        },
        "models.LiveStream": {
            "type": "object",
            "properties": {
                "room": {"type": "string"},
                "host_socket_id": {"type": "string"},
                "host_user_id": {"type": "integer"},
                "host_name": {"type": "string"},
                "viewers": {"type": "integer"},
                "started_at": {"type": "string"}
            }
        },
        "models.ICEConfig": {
            "type": "object",
            "properties": {
                "ice_servers": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "urls": {"type": "array", "items": {"type": "string"}},
                            "username": {"type": "string"},
                            "credential": {"type": "string"}
                        }
                    }
                },
                "expires_at": {"type": "string"}
            }
        },
        "models.PlayerStats": {
            "type": "object",
            "properties": {
                "region": {"type": "string"},
                "account": {"type": "object"},
                "riot_puuid": {"type": "string"},
                "mmr": {"type": "object"},
                "recent_matches": {"type": "array", "items": {"type": "object"}},
                "sources": {"type": "object"},
                "fetched_at": {"type": "string"}
            }
        },
        "models.DashboardStats": {
            "type": "object",
            "properties": {
                "connections": {"type": "integer"},
                "rooms": {"type": "integer"},
                "live_streams": {"type": "integer"},
                "stream_viewers": {"type": "integer"},
                "voice_participants": {"type": "integer"},
                "messages_total": {"type": "integer"},
                "messages_last_24h": {"type": "integer"}
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
	Title:            "Esports Arena real-time API",
	Description:      "Chat, WebRTC signaling relay and game-stat lookups.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
