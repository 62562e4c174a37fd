package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/minqi/ai-chat/backend/internal/analysis/intent"
	chatModel "github.com/minqi/ai-chat/backend/internal/model/chat"
	"github.com/minqi/ai-chat/backend/internal/model/persona"
	"github.com/minqi/ai-chat/backend/internal/service/ai"
	"github.com/minqi/ai-chat/backend/internal/service/session"
	"github.com/minqi/ai-chat/backend/internal/service/upload"
	"github.com/minqi/ai-chat/backend/pkg/utils"
)

// SessionCookie carries the session token between browser and server.
const SessionCookie = "chat_session"

// Upstream generates a completion for an assembled conversation.
type Upstream interface {
	Configured() bool
	GenerateResponse(ctx context.Context, p persona.Persona, history []chatModel.Turn, userMessage string) (string, error)
}

// Handler serves the chat API.
type Handler struct {
	upstream Upstream
	sessions *session.Store
	personas persona.Store
	uploads  *upload.Processor
	maxBytes int64
}

// New creates the chat handler.
func New(upstream Upstream, sessions *session.Store, personas persona.Store, uploads *upload.Processor, maxBytes int64) *Handler {
	return &Handler{
		upstream: upstream,
		sessions: sessions,
		personas: personas,
		uploads:  uploads,
		maxBytes: maxBytes,
	}
}

// RegisterRoutes registers the chat API routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Post("/clear-history", h.handleClearHistory)
}

// handleChat relays one user message (plus any uploaded files) upstream
// and records the exchange in the session history.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := h.sessionToken(w, r)

	if !h.upstream.Configured() {
		utils.RespondError(w, http.StatusInternalServerError, "API key not configured. Please set TOGETHER_API_KEY in .env file")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	message := strings.TrimSpace(r.FormValue("message"))
	fullMessage := h.buildFullMessage(message, r)

	personaID := persona.GeneralAssistantID
	if intent.IsCodeRequest(fullMessage) {
		personaID = persona.CodeAssistantID
	}
	p, ok := h.personas.FindByID(personaID)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "Server Error: persona not available")
		return
	}

	history := h.sessions.Recent(ctx, token, session.DefaultRecentExchanges)

	reply, err := h.upstream.GenerateResponse(ctx, p, history, fullMessage)
	if err != nil {
		status, message := upstreamStatus(err)
		log.Printf("[chat] upstream failure for session=%s: %v", token, err)
		utils.RespondError(w, status, message)
		return
	}

	h.sessions.Append(ctx, token, chatModel.Turn{Role: chatModel.RoleUser, Content: fullMessage})
	h.sessions.Append(ctx, token, chatModel.Turn{Role: p.Name, Content: reply})

	utils.RespondJSON(w, http.StatusOK, map[string]string{"response": reply})
}

// handleClearHistory empties the caller's stored history. Clearing a
// session that never spoke is still a success.
func (h *Handler) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	token := h.sessionToken(w, r)
	h.sessions.Clear(r.Context(), token)

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Conversation history cleared",
	})
}

// sessionToken reads the session cookie, issuing one on first contact.
func (h *Handler) sessionToken(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	token := session.NewToken()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return token
}

// buildFullMessage appends extracted file contents to the user message.
// Files that fail validation or extraction are skipped, not fatal.
func (h *Handler) buildFullMessage(message string, r *http.Request) string {
	var fileContents []string
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["files[]"] {
			if !upload.Allowed(header.Filename) {
				log.Printf("[chat] skipping disallowed file %q", header.Filename)
				continue
			}

			content, err := h.extractFile(header.Filename, func() (io.ReadCloser, error) { return header.Open() })
			if err != nil {
				log.Printf("[chat] skipping file %q: %v", header.Filename, err)
				continue
			}
			fileContents = append(fileContents, fmt.Sprintf("\nFile: %s\nContent:\n%s\n", header.Filename, content))
		}
	}

	if len(fileContents) == 0 {
		return message
	}

	fileText := strings.Join(fileContents, "\n")
	return fmt.Sprintf("%s\n\nI have uploaded the following files for your reference:\n%s\nPlease analyze these files and help me with my request.", message, fileText)
}

func (h *Handler) extractFile(filename string, open func() (io.ReadCloser, error)) (string, error) {
	f, err := open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	return h.uploads.Process(filename, data)
}

// upstreamStatus maps the typed upstream failures onto user-facing
// responses. This is the only place errors become HTTP statuses.
func upstreamStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ai.ErrNotConfigured):
		return http.StatusInternalServerError, "API key not configured. Please set TOGETHER_API_KEY in .env file"
	case errors.Is(err, ai.ErrTimeout):
		return http.StatusGatewayTimeout, "Request timed out. Please try again."
	case errors.Is(err, ai.ErrQuotaExceeded):
		return http.StatusTooManyRequests, "API quota exceeded. Please try again later."
	case errors.Is(err, ai.ErrAuthFailed):
		return http.StatusUnauthorized, "API authentication failed. Please check your API key."
	case errors.Is(err, ai.ErrEmptyResponse):
		return http.StatusInternalServerError, "No response from AI model"
	default:
		return http.StatusInternalServerError, fmt.Sprintf("API Error: %v", err)
	}
}
