package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"oruswallet/internal/logger"
	"oruswallet/internal/models"

	"github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	RoutingTransactionUpdated = "wallet.transaction.updated"
	RoutingActionRequired     = "wallet.action.required"
	RoutingOTPIssued          = "wallet.otp.issued"
)

// Publisher sends a JSON body to an exchange.
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
	Close()
}

type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

type amqpConnection interface {
	Channel() (amqpChannel, error)
	IsClosed() bool
	Close() error
}

type liveConnection struct {
	*amqp091.Connection
}

func (c liveConnection) Channel() (amqpChannel, error) {
	ch, err := c.Connection.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func dialAMQP(amqpURL string) (amqpConnection, error) {
	conn, err := amqp091.DialConfig(amqpURL, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, err
	}
	return liveConnection{conn}, nil
}

// EventProducer publishes to a durable topic exchange. A failed publish is
// retried once on a fresh channel, redialing first if the connection dropped.
type EventProducer struct {
	mu      sync.Mutex
	url     string
	dial    func(amqpURL string) (amqpConnection, error)
	conn    amqpConnection
	channel amqpChannel
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

func NewEventProducer(amqpURL string) (*EventProducer, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}
	return newEventProducer(cleanURL, dialAMQP)
}

func newEventProducer(amqpURL string, dial func(string) (amqpConnection, error)) (*EventProducer, error) {
	p := &EventProducer{url: amqpURL, dial: dial}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

// connect dials the broker when there is no live connection and opens a channel.
func (p *EventProducer) connect() error {
	if p.conn == nil || p.conn.IsClosed() {
		conn, err := p.dial(p.url)
		if err != nil {
			return err
		}
		p.conn = conn
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	p.channel = ch
	return nil
}

func (p *EventProducer) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		err = p.publish(ctx, exchange, routingKey, jsonBody)
		if err == nil {
			return nil
		}
		logger.WithFields(logrus.Fields{"exchange": exchange, "routing_key": routingKey}).
			Warnf("publish failed, reopening channel: %v", err)
		_ = p.channel.Close()
		p.channel = nil
	}

	if err := p.connect(); err != nil {
		return err
	}
	return p.publish(ctx, exchange, routingKey, jsonBody)
}

func (p *EventProducer) publish(ctx context.Context, exchange, routingKey string, body []byte) error {
	if err := p.channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return err
	}
	return p.channel.PublishWithContext(ctx, exchange, routingKey, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
}

func (p *EventProducer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// RabbitNotifier publishes notification events and falls back to the log
// when publishing fails.
type RabbitNotifier struct {
	publisher Publisher
	exchange  string
	fallback  Notifier
}

func NewRabbitNotifier(publisher Publisher, exchange string) *RabbitNotifier {
	return &RabbitNotifier{
		publisher: publisher,
		exchange:  exchange,
		fallback:  NewLogNotifier(),
	}
}

// Connect returns a RabbitNotifier when amqpURL is reachable and a
// LogNotifier otherwise. The returned close func is never nil.
func Connect(amqpURL, exchange string) (Notifier, func()) {
	if amqpURL == "" {
		logger.Info("RABBITMQ_URL not set, notifications go to the log")
		return NewLogNotifier(), func() {}
	}
	producer, err := NewEventProducer(amqpURL)
	if err != nil {
		logger.Warnf("RabbitMQ unavailable, notifications go to the log: %v", err)
		return NewLogNotifier(), func() {}
	}
	logger.WithField("exchange", exchange).Info("publishing notifications to RabbitMQ")
	return NewRabbitNotifier(producer, exchange), producer.Close
}

func (n *RabbitNotifier) TransactionUpdated(ctx context.Context, tx *models.Transaction) error {
	if err := n.publisher.Publish(ctx, n.exchange, RoutingTransactionUpdated, newTransactionEvent(tx)); err != nil {
		logger.WithField("reference", tx.Reference).Warnf("transaction event not published: %v", err)
		return n.fallback.TransactionUpdated(ctx, tx)
	}
	return nil
}

func (n *RabbitNotifier) ActionRequired(ctx context.Context, event ActionRequiredEvent) error {
	if err := n.publisher.Publish(ctx, n.exchange, RoutingActionRequired, event); err != nil {
		logger.WithField("user_id", event.UserID).Warnf("action-required event not published: %v", err)
		return n.fallback.ActionRequired(ctx, event)
	}
	return nil
}

func (n *RabbitNotifier) OTPIssued(ctx context.Context, identifier string, purpose models.OTPPurpose, code string) error {
	event := OTPEvent{Identifier: identifier, Purpose: purpose, Code: code, IssuedAt: time.Now()}
	if err := n.publisher.Publish(ctx, n.exchange, RoutingOTPIssued, event); err != nil {
		logger.WithField("purpose", purpose).Warnf("otp event not published: %v", err)
		return n.fallback.OTPIssued(ctx, identifier, purpose, code)
	}
	return nil
}
