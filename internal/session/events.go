package session

import (
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const eventWriteWait = 10 * time.Second

// HandleEvents upgrades to a websocket and pushes a state snapshot after every
// change until the client goes away or the session ends.
func (c *Controller) HandleEvents(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	logger := c.logger.With(zap.String("sessionId", sess.ID))

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	release := sess.OpenStream()
	defer release()

	updates, unsubscribe := sess.Controller.Subscribe()
	defer unsubscribe()

	// Reads only detect the client closing; anything it sends is ignored.
	go func() {
		defer unsubscribe()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	logger.Debug("event stream opened")
	for state := range updates {
		_ = conn.SetWriteDeadline(time.Now().Add(eventWriteWait))
		if err := conn.WriteJSON(newStateResponse(sess.ID, state)); err != nil {
			logger.Debug("event stream write failed", zap.Error(err))
			return
		}
	}

	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "stream ended"),
		time.Now().Add(eventWriteWait),
	)
	logger.Debug("event stream closed")
}

// originChecker accepts same-host requests, requests without an Origin header
// and the configured origins ("*" allows any).
func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if u, err := url.Parse(origin); err == nil && u.Host == r.Host {
			return true
		}
		return slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
	}
}
