package events

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/urbanease/service-booking/internal/kafka"
)

// SkillsReplacer applies provider skill-set updates to the read model. It is
// satisfied by *application.ProfileService; depending on the interface here
// avoids an import cycle with the application package.
type SkillsReplacer interface {
	ReplaceSkills(ctx context.Context, providerID uuid.UUID, categoryIDs []uuid.UUID) error
}

// IdentityEventConsumer listens to identity-service events and keeps the
// provider-skills read model current.
type IdentityEventConsumer struct {
	consumer *kafka.Consumer
	profiles SkillsReplacer
	logger   *zap.Logger
}

// NewIdentityEventConsumer creates a new IdentityEventConsumer.
func NewIdentityEventConsumer(
	brokers []string,
	groupID string,
	profiles SkillsReplacer,
	logger *zap.Logger,
) *IdentityEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicIdentityEvents, logger)
	return &IdentityEventConsumer{
		consumer: consumer,
		profiles: profiles,
		logger:   logger,
	}
}

// Start begins consuming identity events. This blocks until the context is cancelled.
func (c *IdentityEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *IdentityEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *IdentityEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from identity topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case ProviderSkillsUpdated:
		return c.handleSkillsUpdated(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled identity event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *IdentityEventConsumer) handleSkillsUpdated(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt ProviderSkillsUpdatedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse ProviderSkillsUpdatedEvent data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	if err := c.profiles.ReplaceSkills(ctx, evt.ProviderID, evt.CategoryIDs); err != nil {
		c.logger.Error("failed to apply provider skills update",
			zap.String("provider_id", evt.ProviderID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}
