package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/epiverse/bcrat/internal/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The API is already CORS-open; the websocket endpoint follows suit.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	streamWriteTimeout = 10 * time.Second
	streamIdleTimeout  = 5 * time.Minute
)

// streamMessage is one inbound frame on /api/v1/risk/stream.
type streamMessage struct {
	Profile domain.RiskFactorProfile   `json:"profile"`
	Options *domain.CalculationOptions `json:"options,omitempty"`
}

// handleRiskStream upgrades to a websocket and evaluates one profile per
// inbound frame, writing one result frame back. The connection closes on the
// first malformed frame or after five idle minutes.
func (s *Server) handleRiskStream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	s.logger.WithField("client_ip", c.ClientIP()).Info("Risk stream opened")

	for {
		conn.SetReadDeadline(time.Now().Add(streamIdleTimeout))

		var msg streamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.WithError(err).Debug("Risk stream closed")
			}
			return
		}

		opts := domain.DefaultCalculationOptions()
		if msg.Options != nil {
			opts = *msg.Options
		}

		result := s.calculator.CalculateRisk(c.Request.Context(), &msg.Profile, opts)

		conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		if err := conn.WriteJSON(result); err != nil {
			s.logger.WithError(err).Debug("Risk stream write failed")
			return
		}
	}
}
