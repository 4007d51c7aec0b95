package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// WhatsAppSimulator stands in for a real WhatsApp gateway: it logs the
// outbound message and reports success. Useful for development and for
// deployments without a provisioned gateway.
type WhatsAppSimulator struct {
	logger zerolog.Logger
}

func NewWhatsAppSimulator(logger zerolog.Logger) *WhatsAppSimulator {
	return &WhatsAppSimulator{logger: logger}
}

func (w *WhatsAppSimulator) Send(ctx context.Context, recipient, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.logger.Info().
		Str("channel", "whatsapp").
		Str("recipient", recipient).
		Str("message", message).
		Msg("simulated outbound message")
	return nil
}
