package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/contractor-ledger/internal/api/domain"
)

const contentTypeJSON = "application/json"

// Sender is the publishing half of the RabbitMQ client.
type Sender interface {
	PublishWithRetry(ctx context.Context, routingKey string, body []byte, contentType string) error
}

// RabbitPublisher sends ledger events to the ledger exchange, routed by event type.
type RabbitPublisher struct {
	sender Sender
	logger *slog.Logger
}

func NewRabbitPublisher(sender Sender, logger *slog.Logger) *RabbitPublisher {
	return &RabbitPublisher{sender: sender, logger: logger}
}

func (p *RabbitPublisher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode ledger event: %w", err)
	}

	if err := p.sender.PublishWithRetry(ctx, string(event.Type), body, contentTypeJSON); err != nil {
		return fmt.Errorf("failed to publish ledger event %s: %w", event.ID, err)
	}

	p.logger.Debug("Ledger event published",
		slog.String("event_id", event.ID.String()),
		slog.String("type", string(event.Type)),
	)
	return nil
}
