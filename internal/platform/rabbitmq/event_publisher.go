package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"answerbridge/internal/model"
)

type EventPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewEventPublisher(conn *amqp.Connection, queueName string) *EventPublisher {
	return &EventPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *EventPublisher) ObserveAsk(ctx context.Context, event model.AskEvent) error {
	return p.Publish(ctx, event)
}

func (p *EventPublisher) Publish(ctx context.Context, event model.AskEvent) error {
	payload, err := EncodeEvent(event)
	if err != nil {
		return err
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    event.ID,
			Type:         "ask.completed",
			Timestamp:    event.CreatedAt,
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish ask event failed: %w", err)
	}
	return nil
}

func EncodeEvent(event model.AskEvent) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal ask event failed: %w", err)
	}
	return payload, nil
}

func DecodeEvent(body []byte) (model.AskEvent, error) {
	var event model.AskEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return model.AskEvent{}, fmt.Errorf("unmarshal ask event failed: %w", err)
	}
	if event.ID == "" {
		return model.AskEvent{}, fmt.Errorf("ask event has no id")
	}
	return event, nil
}
