package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"mentorlink/internal/app/mapping"
	"mentorlink/internal/pkg/req"
	"mentorlink/internal/pkg/resp"
)

// HandleListConversations proxies GET /api/conversations.
func HandleListConversations(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := deps.Backend.Get(r.Context(), authHeader(r), "/api/conversations", nil)
		if err != nil {
			respondUpstream(w, r, err, "Failed to fetch conversations")
			return
		}

		conversations, err := mapping.Conversation.List(payload)
		if err != nil {
			respondUpstream(w, r, err, "Failed to fetch conversations")
			return
		}

		resp.RespondSuccess(w, r, conversations)
	}
}

// HandleListMessages proxies GET /api/messages/{conversationId}.
func HandleListMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conversationID := chi.URLParam(r, "conversationId")

		payload, err := deps.Backend.Get(r.Context(), authHeader(r), "/api/messages/"+pathSegment(conversationID), nil)
		if err != nil {
			respondUpstream(w, r, err, "Failed to fetch messages")
			return
		}

		messages, err := mapping.Message.List(payload)
		if err != nil {
			respondUpstream(w, r, err, "Failed to fetch messages")
			return
		}

		resp.RespondSuccess(w, r, messages)
	}
}

// HandleCreateMessage persists a message through the backend.
func HandleCreateMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, customErr := req.BindFields(r, "conversationId", "text")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		message := map[string]any{
			"conversationId": req.String(body, "conversationId"),
			"text":           req.String(body, "text"),
		}

		payload, err := deps.Backend.Send(r.Context(), http.MethodPost, authHeader(r), "/api/messages", message)
		if err != nil {
			respondUpstream(w, r, err, "Failed to send message")
			return
		}

		created, err := mapping.Message.One(payload, "message")
		if err != nil {
			respondUpstream(w, r, err, "Failed to send message")
			return
		}

		resp.RespondCreated(w, r, created)
	}
}
