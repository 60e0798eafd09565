package bootstrap

import (
	"log/slog"

	"github.com/GregMSThompson/expenseflow/internal/config"
	"github.com/GregMSThompson/expenseflow/internal/events"
)

// InitPublisher connects the family event publisher. Events are optional:
// without AMQP_URL, or when the broker is unreachable at startup, a no-op
// publisher is used.
func InitPublisher(cfg *config.Config, log *slog.Logger) events.Publisher {
	if cfg.AMQPURL == "" {
		log.Info("AMQP_URL not set, family events disabled")
		return events.Noop{}
	}
	pub, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		log.Warn("failed to connect to broker, family events disabled", "error", err)
		return events.Noop{}
	}
	return pub
}
