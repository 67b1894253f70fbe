// Package service holds outbound integrations used by the HTTP handlers.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/iliyamo/movie-catalog/internal/queue"
)

// MoviePublisher publishes MovieEvents to RabbitMQ, dialing per message.
// Errors are logged and returned so callers can ignore them without
// interrupting the request.
type MoviePublisher struct {
	URL string
}

func NewMoviePublisher(url string) *MoviePublisher {
	return &MoviePublisher{URL: url}
}

// Publish sends event to the movie.events queue as a persistent JSON
// message.
func (p *MoviePublisher) Publish(ctx context.Context, event q.MovieEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(q.MovieEventsQueue, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         event.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", q.MovieEventsQueue, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
