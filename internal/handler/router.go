package handler

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/minqi/ai-chat/backend/internal/handler/chat"
	middlewarePkg "github.com/minqi/ai-chat/backend/internal/middleware"
	"github.com/minqi/ai-chat/backend/internal/model/persona"
	"github.com/minqi/ai-chat/backend/internal/service/session"
	"github.com/minqi/ai-chat/backend/internal/service/upload"
	"github.com/minqi/ai-chat/backend/pkg/utils"
	"github.com/minqi/ai-chat/backend/web"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(upstream chat.Upstream, sessions *session.Store, personas persona.Store, uploads *upload.Processor, maxUploadBytes int64) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatHandler := chat.New(upstream, sessions, personas, uploads, maxUploadBytes)

	r.Get("/", web.Index)
	r.Get("/uploads/{filename}", serveUpload(uploads))

	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)
	})

	return r
}

// serveUpload returns a previously uploaded file by its sanitized name.
func serveUpload(uploads *upload.Processor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := upload.SanitizeFilename(chi.URLParam(r, "filename"))
		if name == "" {
			utils.RespondError(w, http.StatusNotFound, "file not found")
			return
		}
		http.ServeFile(w, r, filepath.Join(uploads.Dir(), name))
	}
}
