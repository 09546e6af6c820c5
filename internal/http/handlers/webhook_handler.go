// Webhook HTTP handlers.
//
// This file exposes the Meta webhook surface:
//   - GET  /webhook  (subscription verification handshake)
//   - POST /webhook  (inbound message delivery)
//
// Handlers are transport-thin: they parse the envelope, hand events to the
// conversation engine, and acknowledge. The POST handler always returns 200
// for well-formed envelopes so the platform does not retry events the engine
// already accepted; per-event processing failures are logged, not surfaced.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/instagov/birthbot/internal/http/middleware"
	"github.com/instagov/birthbot/internal/wa"
)

// EventEngine is the conversation engine contract consumed by the webhook
// handler. Implementations must be safe for concurrent use and must honor
// the provided context for cancellation and timeouts.
type EventEngine interface {
	// HandleEvent processes one inbound conversant event end to end.
	HandleEvent(ctx context.Context, ev wa.InboundEvent) error
}

// VerifyWebhook godoc
// @ID          verifyWebhook
// @Summary     Webhook subscription handshake
// @Description Echoes hub.challenge when hub.mode is "subscribe" and hub.verify_token matches the configured token.
// @Tags        Webhook
// @Produce     plain
//
// @Param       hub.mode          query  string  true  "Must be subscribe"
// @Param       hub.verify_token  query  string  true  "Shared verify token"
// @Param       hub.challenge     query  string  true  "Opaque challenge to echo"
//
// @Success     200  {string}  string  "Challenge echoed"
// @Failure     403  {object}  handlers.ErrorResponse  "Token mismatch"
// @Router      /webhook [get]
func (h *Handlers) VerifyWebhook(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode != "subscribe" || token == "" || token != h.verifyToken {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "verification failed")
		return
	}
	c.String(http.StatusOK, challenge)
}

// ReceiveWebhook godoc
// @ID          receiveWebhook
// @Summary     Inbound message delivery
// @Description Accepts a Meta webhook envelope and dispatches each message event to the conversation engine.
// @Tags        Webhook
// @Accept      json
//
// @Success     200  {string}  string  "Accepted"
// @Failure     400  {object}  handlers.ErrorResponse  "Malformed envelope"
// @Failure     404  {object}  handlers.ErrorResponse  "Not a messaging subscription"
// @Router      /webhook [post]
func (h *Handlers) ReceiveWebhook(c *gin.Context) {
	var env wa.Envelope
	if err := c.ShouldBindJSON(&env); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if !env.IsMessaging() {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "unsupported subscription object")
		return
	}

	ctx := c.Request.Context()
	lg := middleware.LoggerFrom(c)
	for _, ev := range env.Events() {
		if err := h.engine.HandleEvent(ctx, ev); err != nil {
			// Acknowledge anyway: a platform retry would replay the whole
			// envelope, including events that already succeeded.
			lg.Error().Err(err).
				Str("message_id", ev.MessageID).
				Msg("event processing failed")
		}
	}
	c.Status(http.StatusOK)
}
