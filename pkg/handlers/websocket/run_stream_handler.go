package websocket

import (
	"errors"
	"time"

	"github.com/NeuralTrust/TrustRedTeam/pkg/infra/hub"
	"github.com/gofiber/contrib/websocket"
	"github.com/sirupsen/logrus"
)

const (
	DefaultPingPeriod = 30 * time.Second
	DefaultPongWait   = 45 * time.Second
	writeWait         = 10 * time.Second
)

type runStreamHandler struct {
	logger     *logrus.Logger
	hub        *hub.Hub
	pingPeriod time.Duration
	pongWait   time.Duration
}

// NewRunStreamHandler streams every published snapshot to the client,
// starting with the latest one.
func NewRunStreamHandler(logger *logrus.Logger, h *hub.Hub, pingPeriod, pongWait time.Duration) Handler {
	if pingPeriod <= 0 {
		pingPeriod = DefaultPingPeriod
	}
	if pongWait <= 0 {
		pongWait = DefaultPongWait
	}
	return &runStreamHandler{
		logger:     logger,
		hub:        h,
		pingPeriod: pingPeriod,
		pongWait:   pongWait,
	}
}

func (h *runStreamHandler) Handle(c *websocket.Conn) {
	sub, err := h.hub.Subscribe()
	if err != nil {
		if errors.Is(err, hub.ErrTooManySubscribers) {
			h.logger.Warn("maximum websocket connections reached, rejecting connection")
		}
		msg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error())
		_ = c.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		return
	}
	defer h.hub.Unsubscribe(sub)

	if err := c.SetReadDeadline(time.Now().Add(h.pongWait)); err != nil {
		h.logger.WithError(err).Error("failed to set read deadline")
		return
	}
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(h.pongWait))
	})

	// client messages are ignored; reading keeps pongs and close frames flowing
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.logger.WithError(err).Debug("websocket client read failed")
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(h.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case snapshot, ok := <-sub.C:
			if !ok {
				return
			}
			if err := c.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.WriteJSON(hub.NewSnapshotMessage(snapshot)); err != nil {
				h.logger.WithError(err).Debug("failed to write snapshot to websocket client")
				return
			}
		case <-ticker.C:
			if err := c.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				h.logger.WithError(err).Debug("failed to send ping")
				return
			}
		case <-closed:
			return
		}
	}
}
