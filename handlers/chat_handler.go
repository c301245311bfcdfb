package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Dosada05/esports-arena/middleware"
	"github.com/Dosada05/esports-arena/services"
	"github.com/Dosada05/esports-arena/signaling"
	"github.com/go-chi/chi/v5"
)

// RoomBroadcaster рассылает серверные события участникам комнаты (signaling.Hub).
type RoomBroadcaster interface {
	Broadcast(ctx context.Context, room, typ string, payload any) error
}

type ChatHandler struct {
	chatService services.ChatService
	broadcaster RoomBroadcaster
}

func NewChatHandler(chatService services.ChatService, broadcaster RoomBroadcaster) *ChatHandler {
	return &ChatHandler{chatService: chatService, broadcaster: broadcaster}
}

type postMessageInput struct {
	Text string `json:"text"`
}

// History godoc
// @Summary      Chat history of a room
// @Description  Newest first. Use next_before from the response as the before cursor for older pages.
// @Tags         chat
// @Produce      json
// @Param        room    path   string  true   "Room name"
// @Param        before  query  int     false  "Return messages with id below this value"
// @Param        limit   query  int     false  "Page size (default 50, max 200)"
// @Success      200  {object}  models.ChatHistory
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Security     BearerAuth
// @Router       /rooms/{room}/messages [get]
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	room := chi.URLParam(r, "room")

	before, err := queryInt64(r, "before", 0)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	limit, err := queryInt64(r, "limit", 0)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	history, err := h.chatService.History(r.Context(), room, before, int(limit))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history, nil)
}

// PostMessage godoc
// @Summary      Post a chat message over HTTP
// @Description  Stores the message and relays it to every socket in the room.
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        room  path  string            true  "Room name"
// @Param        body  body  postMessageInput  true  "Message"
// @Success      201  {object}  models.ChatMessage
// @Failure      400  {object}  map[string]string
// @Security     BearerAuth
// @Router       /rooms/{room}/messages [post]
func (h *ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	room := chi.URLParam(r, "room")

	var input postMessageInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	role, _ := middleware.GetUserRoleFromContext(r.Context())
	author := signaling.Identity{UserID: userID, Name: middleware.GetUserNameFromContext(r.Context()), Role: role}

	msg, err := h.chatService.PostMessage(r.Context(), room, author, input.Text)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := h.broadcaster.Broadcast(r.Context(), room, signaling.TypeChat, msg); err != nil {
		slog.WarnContext(r.Context(), "stored chat message was not relayed", "room", room, "message_id", msg.ID, "error", err)
	}
	writeJSON(w, http.StatusCreated, msg, nil)
}

// DeleteMessage godoc
// @Summary      Delete a chat message (moderation)
// @Description  Sockets in the room receive a chat-deleted event.
// @Tags         chat
// @Param        room  path  string  true  "Room name"
// @Param        id    path  int     true  "Message id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /rooms/{room}/messages/{id} [delete]
func (h *ChatHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	room := chi.URLParam(r, "room")
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		badRequestResponse(w, r, errors.New("invalid message id"))
		return
	}

	if err := h.chatService.DeleteMessage(r.Context(), room, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := h.broadcaster.Broadcast(r.Context(), room, signaling.TypeChatDeleted, jsonResponse{"id": id}); err != nil {
		slog.WarnContext(r.Context(), "chat deletion was not relayed", "room", room, "message_id", id, "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Archive godoc
// @Summary      Archive a room transcript to object storage
// @Tags         chat
// @Produce      json
// @Param        room  path  string  true  "Room name"
// @Success      201  {object}  models.ChatArchive
// @Failure      409  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Security     BearerAuth
// @Router       /rooms/{room}/archive [post]
func (h *ChatHandler) Archive(w http.ResponseWriter, r *http.Request) {
	archive, err := h.chatService.ArchiveRoom(r.Context(), chi.URLParam(r, "room"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, archive, nil)
}
