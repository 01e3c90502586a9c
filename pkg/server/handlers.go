// Package server exposes the chat and nudge services over HTTP and maps the
// error taxonomy onto status codes.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/liv-ai/liv-backend/pkg/chat"
	"github.com/liv-ai/liv-backend/pkg/nudge"
	"github.com/liv-ai/liv-backend/pkg/profile"
)

type ChatService interface {
	SendMessage(ctx context.Context, userID string, input string) (*chat.StructuredReply, error)
}

type NudgeService interface {
	Generate(ctx context.Context, userID string) (*nudge.Nudge, error)
}

type Handlers struct {
	logger *log.Logger
	chat   ChatService
	nudge  NudgeService
}

func NewHandlers(logger *log.Logger, chatService ChatService, nudgeService NudgeService) *Handlers {
	return &Handlers{
		logger: logger,
		chat:   chatService,
		nudge:  nudgeService,
	}
}

type chatRequest struct {
	Input  string `json:"input"`
	UserID string `json:"userId"`
}

type nudgeRequest struct {
	UserID string `json:"userId"`
}

type errorResponse struct {
	Error string `json:"error"`
	Raw   string `json:"raw,omitempty"`
}

func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}
	if req.Input == "" || req.UserID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing input or userId"})
		return
	}

	reply, err := h.chat.SendMessage(r.Context(), req.UserID, req.Input)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

func (h *Handlers) Nudge(w http.ResponseWriter, r *http.Request) {
	var req nudgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}
	if req.UserID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing userId"})
		return
	}

	generated, err := h.nudge.Generate(r.Context(), req.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, generated)
}

// writeError maps the error taxonomy onto HTTP statuses: unknown user is 404,
// malformed model output is 500 with the raw text attached for diagnosis, and
// everything else is a generic 500.
func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	var notFound *profile.NotFoundError
	if errors.As(err, &notFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "User not found"})
		return
	}

	var malformed *chat.MalformedOutputError
	if errors.As(err, &malformed) {
		h.logger.Error("Model did not return valid JSON", "raw", malformed.Raw)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: "LLM did not return valid JSON",
			Raw:   malformed.Raw,
		})
		return
	}

	h.logger.Error("Request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Something went wrong"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
