package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/identity-service/internal/domain"
	pkgkafka "github.com/utafrali/identity-service/pkg/kafka"
)

// TopicUserRegistered carries user.registered events.
const TopicUserRegistered = "identity.user.registered"

// AggregateTypeUser tags events whose aggregate is a user account.
const AggregateTypeUser = "user"

// SourceIdentityService identifies events originating from this service.
const SourceIdentityService = "identity-service"

// UserRegisteredData is the payload for a user.registered event. It mirrors
// the public user projection; credentials never leave the service.
type UserRegisteredData struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Producer publishes identity domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		ID:       user.ID,
		FullName: user.FullName,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}

	event, err := pkgkafka.NewEvent(TopicUserRegistered, user.ID, AggregateTypeUser, SourceIdentityService, data)
	if err != nil {
		return fmt.Errorf("create user.registered event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserRegistered, event); err != nil {
		return fmt.Errorf("publish user.registered event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.registered event",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return nil
}
