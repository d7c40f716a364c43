package channels

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/psiconervio/minichat/pkg/config"
	"github.com/psiconervio/minichat/pkg/conversation"
	"github.com/psiconervio/minichat/pkg/logger"
	"github.com/psiconervio/minichat/pkg/prefs"
)

// WebChat serves the embedded chat widget and the JSON API driving the
// conversation controller.
type WebChat struct {
	config     config.WebChatConfig
	controller *conversation.Controller
	prefs      *prefs.Store
	server     *http.Server
	limiter    *rate.Limiter
	sessions   map[string]time.Time // token -> expiry
	mu         sync.RWMutex
}

func NewWebChat(cfg config.WebChatConfig, controller *conversation.Controller, store *prefs.Store) *WebChat {
	var limiter *rate.Limiter
	if cfg.SendRatePerMin > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.SendRatePerMin)), cfg.SendRatePerMin)
	}
	return &WebChat{
		config:     cfg,
		controller: controller,
		prefs:      store,
		limiter:    limiter,
		sessions:   make(map[string]time.Time),
	}
}

// authEnabled returns true when both username and password are configured.
func (c *WebChat) authEnabled() bool {
	return c.config.Username != "" && c.config.Password != ""
}

// createSession generates a random session token and stores it.
func (c *WebChat) createSession() string {
	b := make([]byte, 32)
	rand.Read(b)
	token := hex.EncodeToString(b)
	c.mu.Lock()
	c.sessions[token] = time.Now().Add(24 * time.Hour)
	c.mu.Unlock()
	return token
}

// validSession checks if the request carries a valid session cookie.
func (c *WebChat) validSession(r *http.Request) bool {
	cookie, err := r.Cookie("minichat_session")
	if err != nil {
		return false
	}
	c.mu.RLock()
	expiry, ok := c.sessions[cookie.Value]
	c.mu.RUnlock()
	return ok && time.Now().Before(expiry)
}

// requireAuth wraps a handler with authentication. If auth is not configured, it passes through.
func (c *WebChat) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !c.authEnabled() {
			next(w, r)
			return
		}
		if c.validSession(r) {
			next(w, r)
			return
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}

// requireAuthAPI is like requireAuth but returns 401 JSON for API endpoints.
func (c *WebChat) requireAuthAPI(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !c.authEnabled() {
			next(w, r)
			return
		}
		if c.validSession(r) {
			next(w, r)
			return
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
}

// Handler builds the route table. Exposed separately from Start so tests can
// drive it without a listener.
func (c *WebChat) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", c.requireAuth(c.handleUI))
	mux.HandleFunc("/chat/send", c.requireAuthAPI(c.handleSend))
	mux.HandleFunc("/chat/poll", c.requireAuthAPI(c.handlePoll))
	mux.HandleFunc("/chat/clear", c.requireAuthAPI(c.handleClear))
	mux.HandleFunc("/chat/export", c.requireAuthAPI(c.handleExport))
	mux.HandleFunc("/chat/share", c.requireAuthAPI(c.handleShare))
	mux.HandleFunc("/prefs/theme", c.requireAuthAPI(c.handleTheme))
	mux.HandleFunc("/login", c.handleLogin)
	mux.HandleFunc("/logout", c.handleLogout)
	return mux
}

func (c *WebChat) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", c.config.Host, c.config.Port)
	c.server = &http.Server{Addr: addr, Handler: c.Handler()}

	if c.authEnabled() {
		logger.InfoCF("channels", "WebChat started (auth enabled)", map[string]interface{}{"addr": addr})
	} else {
		logger.InfoCF("channels", "WebChat started (no auth)", map[string]interface{}{"addr": addr})
	}

	go func() {
		if err := c.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.ErrorCF("channels", "WebChat server error", map[string]interface{}{"error": err.Error()})
		}
	}()

	return nil
}

func (c *WebChat) Stop(ctx context.Context) error {
	if c.server != nil {
		return c.server.Shutdown(ctx)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

type sendRequest struct {
	Message string `json:"message"`
}

type messagePayload struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Error     bool      `json:"error"`
}

func toPayload(msg conversation.Message) messagePayload {
	return messagePayload{
		ID:        msg.ID,
		Role:      string(msg.Author),
		Content:   msg.Content,
		Timestamp: msg.Timestamp,
		Error:     msg.Error,
	}
}

func (c *WebChat) handleSend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request"})
		return
	}

	if c.limiter != nil && !c.limiter.Allow() {
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
		return
	}

	reply, err := c.controller.Submit(r.Context(), req.Message)
	switch {
	case errors.Is(err, conversation.ErrEmpty):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "empty message"})
		return
	case errors.Is(err, conversation.ErrBusy):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "request already pending"})
		return
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, toPayload(reply))
}

func (c *WebChat) handlePoll(w http.ResponseWriter, r *http.Request) {
	messages := c.controller.Snapshot()
	payload := make([]messagePayload, 0, len(messages))
	for _, msg := range messages {
		payload = append(payload, toPayload(msg))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (c *WebChat) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	c.controller.Clear()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (c *WebChat) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := c.controller.ExportJSON()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "export failed"})
		return
	}
	name := conversation.ExportFileName(time.Now())
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Write(data)
}

func (c *WebChat) handleShare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	notice := c.controller.ShareOrCopy()
	writeJSON(w, http.StatusOK, toPayload(notice))
}

type themePayload struct {
	DarkMode bool `json:"dark_mode"`
}

func (c *WebChat) handleTheme(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		dark := false
		if c.prefs != nil {
			var err error
			if dark, err = c.prefs.DarkMode(); err != nil {
				logger.WarnCF("channels", "Reading theme preference failed", map[string]interface{}{"error": err.Error()})
				dark = false
			}
		}
		writeJSON(w, http.StatusOK, themePayload{DarkMode: dark})
	case http.MethodPut, http.MethodPost:
		var req themePayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request"})
			return
		}
		if c.prefs != nil {
			if err := c.prefs.SetDarkMode(req.DarkMode); err != nil {
				logger.WarnCF("channels", "Writing theme preference failed", map[string]interface{}{"error": err.Error()})
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "saving preference failed"})
				return
			}
		}
		writeJSON(w, http.StatusOK, req)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (c *WebChat) handleLogin(w http.ResponseWriter, r *http.Request) {
	// If auth not configured, redirect to chat
	if !c.authEnabled() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	// Already logged in
	if c.validSession(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if r.Method == http.MethodGet {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, webChatLoginHTML)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request"})
			return
		}
	} else {
		r.ParseForm()
		body.Username = r.FormValue("username")
		body.Password = r.FormValue("password")
	}

	usernameMatch := subtle.ConstantTimeCompare([]byte(body.Username), []byte(c.config.Username)) == 1
	passwordMatch := subtle.ConstantTimeCompare([]byte(body.Password), []byte(c.config.Password)) == 1

	if !usernameMatch || !passwordMatch {
		logger.WarnCF("channels", "WebChat login failed", map[string]interface{}{
			"remote": r.RemoteAddr,
		})
		if contentType == "application/json" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, webChatLoginErrorHTML)
		return
	}

	token := c.createSession()
	http.SetCookie(w, &http.Cookie{
		Name:     "minichat_session",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   86400,
	})

	if contentType == "application/json" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (c *WebChat) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie("minichat_session"); err == nil {
		c.mu.Lock()
		delete(c.sessions, cookie.Value)
		c.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "minichat_session",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (c *WebChat) handleUI(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, webChatHTML)
}
