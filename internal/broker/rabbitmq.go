package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/justsurfingit/job-board/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const publishTimeout = 5 * time.Second

// RabbitMQ publishes notifications on a topic exchange, routed by recipient
// user id, and lets a connected client subscribe to its own routing key.
type RabbitMQ struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewRabbitMQ(url, exchange string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // args
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %q: %w", exchange, err)
	}

	logrus.WithField("exchange", exchange).Info("connected to RabbitMQ")
	return &RabbitMQ{conn: conn, channel: ch, exchange: exchange}, nil
}

func (r *RabbitMQ) Name() string { return "rabbitmq" }

// Send publishes n with the recipient id as routing key.
func (r *RabbitMQ) Send(ctx context.Context, n *models.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return r.channel.PublishWithContext(
		ctx,
		r.exchange,
		RoutingKey(n.UserID.String()),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Transient,
			Timestamp:    n.CreatedAt,
			MessageId:    n.ID.String(),
			Body:         body,
		},
	)
}

// Subscription is a live feed of one user's notifications. Close releases
// whatever backs the feed.
type Subscription struct {
	Messages <-chan models.Notification
	closer   func() error
}

func NewSubscription(messages <-chan models.Notification, closer func() error) *Subscription {
	return &Subscription{Messages: messages, closer: closer}
}

func (s *Subscription) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// Subscribe binds an exclusive auto-delete queue to userID's routing key.
// Messages stop when ctx is done or Close is called.
func (r *RabbitMQ) Subscribe(ctx context.Context, userID string) (*Subscription, error) {
	ch, err := r.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	q, err := ch.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, RoutingKey(userID), r.exchange, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	deliveries, err := ch.ConsumeWithContext(ctx,
		q.Name,
		"",
		true,  // auto-ack
		true,  // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("register consumer: %w", err)
	}

	out := make(chan models.Notification)
	go forward(ctx, deliveries, out)

	return NewSubscription(out, ch.Close), nil
}

// forward decodes deliveries onto out until deliveries closes or ctx is done,
// then closes out. Undecodable payloads are dropped.
func forward(ctx context.Context, deliveries <-chan amqp.Delivery, out chan<- models.Notification) {
	defer close(out)
	for d := range deliveries {
		var n models.Notification
		if err := json.Unmarshal(d.Body, &n); err != nil {
			logrus.WithError(err).Warn("invalid notification payload")
			continue
		}
		select {
		case out <- n:
		case <-ctx.Done():
			return
		}
	}
}

func (r *RabbitMQ) Close() error {
	if err := r.channel.Close(); err != nil {
		logrus.WithError(err).Warn("closing RabbitMQ channel")
	}
	return r.conn.Close()
}

// RoutingKey maps a user id to its topic routing key. Topic keys treat "."
// as a word separator, which uuids never contain.
func RoutingKey(userID string) string {
	return "user." + userID
}
