package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"stasher/internal/dto"
	apperrors "stasher/internal/errors"
)

// Store is the part of Manager the HTTP layer needs.
type Store interface {
	Get(id string) (*Session, bool)
	Create() (*Session, error)
	Remove(id string) bool
}

type sessionKey struct{}

type Controller struct {
	sessions   Store
	cookieName string
	loc        *time.Location
	upgrader   websocket.Upgrader
	logger     *zap.Logger
}

func NewController(sessions Store, cookieName string, loc *time.Location, allowedOrigins []string, logger *zap.Logger) *Controller {
	return &Controller{
		sessions:   sessions,
		cookieName: cookieName,
		loc:        loc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

// WithSession resolves the session cookie, starting a new session when the
// cookie is missing or no longer known.
func (c *Controller) WithSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sess *Session
		if cookie, err := r.Cookie(c.cookieName); err == nil {
			sess, _ = c.sessions.Get(cookie.Value)
		}

		if sess == nil {
			created, err := c.sessions.Create()
			if err != nil {
				c.logger.Warn("creating session failed", zap.Error(err))
				if errors.Is(err, ErrTooManySessions) {
					c.writeError(w, http.StatusServiceUnavailable, "SESSION_LIMIT", "too many active sessions, try again later")
					return
				}
				c.writeError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "session server is unavailable")
				return
			}
			sess = created
			http.SetCookie(w, &http.Cookie{
				Name:     c.cookieName,
				Value:    sess.ID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
	})
}

func sessionFrom(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}

func (c *Controller) HandleGetState(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	c.writeJSON(w, http.StatusOK, newStateResponse(sess.ID, sess.Controller.State()))
}

func (c *Controller) HandleListStashpoints(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	q := r.URL.Query()
	f := sess.ListFilter(q.Get("property"), q.Get("order"))

	rows := sess.Controller.State().View(f)
	c.writeJSON(w, http.StatusOK, newStashpointListResponse(f, rows))
}

// HandleUpdateCart applies one field change. Values the cart rejects are not
// an error: the response reports accepted=false and the unchanged state.
func (c *Controller) HandleUpdateCart(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	var req dto.CartUpdateRequest
	if !c.decodeBody(w, r, &req) {
		return
	}

	update, err := req.ToDomain(c.loc)
	if err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	accepted := sess.Controller.UpdateCart(update)
	c.writeJSON(w, http.StatusOK, dto.CartUpdateResponse{
		Accepted: accepted,
		State:    newStateResponse(sess.ID, sess.Controller.State()),
	})
}

func (c *Controller) HandleSelectStashpoint(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	var req dto.SelectionRequest
	if !c.decodeBody(w, r, &req) {
		return
	}
	if req.StashpointID == "" {
		c.writeValidationError(w, "stashpointId is required", apperrors.ValidationDetail{
			Field:   "stashpointId",
			Message: "stashpointId must not be empty",
		})
		return
	}

	sess.Controller.SelectStashpoint(req.StashpointID)
	c.writeJSON(w, http.StatusOK, newStateResponse(sess.ID, sess.Controller.State()))
}

func (c *Controller) HandleClearSelection(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	sess.Controller.ClearSelection()
	c.writeJSON(w, http.StatusOK, newStateResponse(sess.ID, sess.Controller.State()))
}

// HandlePurchase starts the booking and payment flow and returns at once; the
// outcome shows up in the booking slot.
func (c *Controller) HandlePurchase(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if !sess.AllowPurchase() {
		c.logger.Warn("purchase rate limited", zap.String("sessionId", sess.ID))
		c.writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many purchase attempts, try again shortly")
		return
	}

	sess.Controller.Purchase()
	c.writeJSON(w, http.StatusAccepted, newStateResponse(sess.ID, sess.Controller.State()))
}

// HandleEndSession drops the caller's session. It is not behind WithSession so
// that ending an unknown session does not create one first.
func (c *Controller) HandleEndSession(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(c.cookieName); err == nil {
		c.sessions.Remove(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (c *Controller) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		c.logger.Debug("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return false
	}
	return true
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type validationErrorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *Controller) writeError(w http.ResponseWriter, status int, code, message string) {
	c.writeJSON(w, status, errorResponse{Error: code, Message: message})
}

func (c *Controller) writeValidationError(w http.ResponseWriter, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *Controller) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
