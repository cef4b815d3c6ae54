package api

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/models"
	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/panel"
	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/session"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	appTitle      = "Multi-Feature AI App"
	keyWarning    = "Enter your Gemini API Key to use the app."
	footerMessage = "Goodbye, Codingal! 🥲"
)

// ClientFactory builds the remote generator for an API key.
type ClientFactory func(ctx context.Context, apiKey string) (session.Generator, error)

type Handler struct {
	sessions  *session.Manager
	panels    *panel.Set
	newClient ClientFactory
	logger    *zap.Logger
	cookie    string
	tmpl      *template.Template
}

func NewHandler(sessions *session.Manager, panels *panel.Set, newClient ClientFactory, cookieName string, logger *zap.Logger) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	if cookieName == "" {
		cookieName = "aiapp_session"
	}
	return &Handler{
		sessions:  sessions,
		panels:    panels,
		newClient: newClient,
		logger:    logger,
		cookie:    cookieName,
		tmpl:      tmpl,
	}, nil
}

// Register mounts every route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/", h.Index)
	mux.HandleFunc("/key", h.SetKey)
	mux.HandleFunc("/feature", h.SelectFeature)
	mux.HandleFunc("/submit", h.Submit)
	mux.HandleFunc("/clear", h.Clear)
	mux.HandleFunc("/export", h.Export)
	mux.HandleFunc("/image", h.Image)
	mux.HandleFunc("/api/history", h.History)
	mux.HandleFunc("/healthz", h.Health)
}

// session returns the caller's session, starting a new one when the cookie
// is missing or refers to an expired session.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *session.Session {
	if c, err := r.Cookie(h.cookie); err == nil {
		if sess, err := h.sessions.Get(c.Value); err == nil {
			return sess
		}
	}
	sess := h.sessions.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

func (h *Handler) redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess := h.session(w, r)
	data, err := h.buildPage(r.Context(), sess)
	if err != nil {
		h.logger.Error("Failed to build page", zap.Error(err), zap.String("session_id", sess.ID))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "index.html", data); err != nil {
		h.logger.Error("Failed to render page", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("Failed to write page", zap.Error(err))
	}
}

func (h *Handler) SetKey(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	sess := h.session(w, r)
	if !sess.Acquire() {
		h.redirectHome(w, r)
		return
	}
	defer sess.Release()

	key := strings.TrimSpace(r.PostFormValue("api_key"))
	if key == "" {
		if err := sess.ForgetKey(); err != nil {
			h.logger.Warn("Failed to close client", zap.Error(err))
		}
		h.redirectHome(w, r)
		return
	}

	client, err := h.newClient(r.Context(), key)
	if err != nil {
		h.logger.Warn("Failed to create client", zap.Error(err), zap.String("session_id", sess.ID))
		sess.SetFlash(session.Flash{Warning: "Error: " + err.Error()})
		h.redirectHome(w, r)
		return
	}
	if err := sess.UseKey(key, client); err != nil {
		h.logger.Warn("Failed to close previous client", zap.Error(err))
	}
	h.logger.Info("API key set", zap.String("session_id", sess.ID))
	h.redirectHome(w, r)
}

func (h *Handler) SelectFeature(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	f, err := models.ParseFeature(r.PostFormValue("feature"))
	if err != nil {
		http.Error(w, "Invalid feature", http.StatusBadRequest)
		return
	}
	sess := h.session(w, r)
	sess.Select(f)
	h.redirectHome(w, r)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	sess := h.session(w, r)
	if !sess.Acquire() {
		h.redirectHome(w, r)
		return
	}
	defer sess.Release()

	if !sess.HasKey() {
		h.redirectHome(w, r)
		return
	}

	f := sess.Feature()
	input := r.PostFormValue("input")
	sess.SetInput(f, input)

	out, err := h.panels.For(f).Submit(r.Context(), sess.Client(), sess.ID, input)
	if err != nil {
		h.logger.Error("Failed to submit",
			zap.Error(err),
			zap.String("feature", f.Slug()),
			zap.String("session_id", sess.ID))
		http.Error(w, fmt.Sprintf("Failed to submit: %v", err), http.StatusInternalServerError)
		return
	}
	sess.SetFlash(session.Flash{Warning: out.Warning, Image: out.Image})
	h.redirectHome(w, r)
}

func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess := h.session(w, r)
	if !sess.Acquire() {
		h.redirectHome(w, r)
		return
	}
	defer sess.Release()

	if !sess.HasKey() {
		h.redirectHome(w, r)
		return
	}

	f := sess.Feature()
	if err := h.panels.For(f).Clear(r.Context(), sess.ID); err != nil {
		h.logger.Error("Failed to clear history", zap.Error(err), zap.String("feature", f.Slug()))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.redirectHome(w, r)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess := h.session(w, r)
	if !sess.HasKey() {
		http.Error(w, keyWarning, http.StatusForbidden)
		return
	}

	exporter, ok := h.panels.For(models.TeachingAssistant).(panel.Exporter)
	if !ok {
		http.Error(w, "Export not supported", http.StatusNotFound)
		return
	}
	file, err := exporter.Export(r.Context(), sess.ID)
	if err != nil {
		h.logger.Error("Failed to export history", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if len(file.Body) == 0 {
		http.Error(w, "Nothing to export", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	if _, err := w.Write(file.Body); err != nil {
		h.logger.Warn("Failed to write export", zap.Error(err))
	}
}

func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Query parameter 'id' is required", http.StatusBadRequest)
		return
	}

	sess := h.session(w, r)
	if !sess.HasKey() {
		http.Error(w, keyWarning, http.StatusForbidden)
		return
	}
	entries, err := h.panels.For(models.ImageGenerator).History(r.Context(), sess.ID)
	if err != nil {
		h.logger.Error("Failed to load images", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	for _, e := range entries {
		if e.Image != nil && e.Image.ID == id {
			w.Header().Set("Content-Type", e.Image.MIMEType)
			w.Header().Set("Cache-Control", "private, max-age=3600")
			if _, err := w.Write(e.Image.Data); err != nil {
				h.logger.Warn("Failed to write image", zap.Error(err))
			}
			return
		}
	}
	http.NotFound(w, r)
}

// History returns one panel history of the caller's session as JSON.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess := h.session(w, r)
	if !sess.HasKey() {
		http.Error(w, keyWarning, http.StatusForbidden)
		return
	}
	f := sess.Feature()
	if slug := r.URL.Query().Get("feature"); slug != "" {
		parsed, err := models.ParseFeature(slug)
		if err != nil {
			http.Error(w, "Invalid feature", http.StatusBadRequest)
			return
		}
		f = parsed
	}

	entries, err := h.panels.For(f).History(r.Context(), sess.ID)
	if err != nil {
		h.logger.Error("Failed to get history", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(HistoryResponse{Feature: f.Slug(), Entries: entries}); err != nil {
		h.logger.Error("Failed to encode history", zap.Error(err))
	}
}

type HistoryResponse struct {
	Feature string         `json:"feature"`
	Entries []models.Entry `json:"entries"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": h.sessions.Len(),
	})
	if err != nil {
		h.logger.Error("Failed to encode health", zap.Error(err))
	}
}
