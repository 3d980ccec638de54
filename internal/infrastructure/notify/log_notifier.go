package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/talentoplus/hr-system/internal/core/ports"
)

// LogNotifier writes notifications to the application log. It stands in
// for a mail gateway in environments where none is configured.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(_ context.Context, msg ports.Notification) error {
	n.log.Info().
		Str("recipient", msg.Recipient).
		Str("subject", msg.Subject).
		Msg("notification delivered")
	return nil
}
