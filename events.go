package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

const optimizationUpdatesExchange = "optimization_updates"

const (
	optimizationStatusCompleted = "completed"
	optimizationStatusFailed    = "failed"
)

type OptimizationUpdate struct {
	OptimizationID *uuid.UUID `json:"optimization_id,omitempty"`
	UserID         uuid.UUID  `json:"user_id"`
	Status         string     `json:"status"`
	Mode           string     `json:"mode"`
	Message        string     `json:"message"`
	Timestamp      time.Time  `json:"timestamp"`
}

type EventPublisher interface {
	PublishOptimizationUpdate(ctx context.Context, update OptimizationUpdate) error
}

type AMQPPublisher struct {
	conn *amqp.Connection
}

func NewAMQPPublisher(conn *amqp.Connection) *AMQPPublisher {
	return &AMQPPublisher{conn: conn}
}

func (p *AMQPPublisher) PublishOptimizationUpdate(ctx context.Context, update OptimizationUpdate) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	err = ch.ExchangeDeclare(
		optimizationUpdatesExchange, // name
		"topic",                     // kind
		true,                        // durable
		false,                       // auto-delete
		false,                       // internal
		false,                       // no-wait
		nil,                         // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	body, err := json.Marshal(update)
	if err != nil {
		return err
	}
	routingKey := fmt.Sprintf("optimization.%s", update.UserID)

	return ch.Publish(
		optimizationUpdatesExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

type NoopPublisher struct{}

func (NoopPublisher) PublishOptimizationUpdate(context.Context, OptimizationUpdate) error {
	return nil
}
