package events

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/citizenwallet/custody/internal/logging"
	"github.com/citizenwallet/custody/pkg/custody"
	"github.com/rabbitmq/amqp091-go"
)

const (
	Exchange            = "custody_events"
	RoutingKeyConfirmed = "custody.transfer.confirmed"

	dialTimeout = 10 * time.Second
)

// TransferEvent is published once per confirmed transfer.
type TransferEvent struct {
	TransactionHash string    `json:"transaction_hash"`
	TokenID         string    `json:"token_id"`
	From            string    `json:"from"`
	To              string    `json:"to"`
	BlockNumber     uint64    `json:"block_number"`
	Timestamp       time.Time `json:"timestamp"`
}

func NewTransferEvent(r *custody.Receipt) TransferEvent {
	return TransferEvent{
		TransactionHash: r.TransactionHash,
		TokenID:         r.TokenID.String(),
		From:            r.From,
		To:              r.To,
		BlockNumber:     r.BlockNumber,
		Timestamp:       time.Now().UTC(),
	}
}

// channel is the part of an amqp091.Channel the producer uses.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

type Producer struct {
	mu      sync.Mutex
	conn    *amqp091.Connection
	channel channel
	reopen  func() (channel, error)
	log     logging.Logger
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.Trim(clean, "\"'")

	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}

	return clean, nil
}

func NewProducer(amqpURL string, log logging.Logger) (*Producer, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}

	conn, err := amqp091.DialConfig(cleanURL, amqp091.Config{Dial: amqp091.DefaultDial(dialTimeout)})
	if err != nil {
		return nil, err
	}

	reopen := func() (channel, error) {
		return conn.Channel()
	}

	ch, err := reopen()
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &Producer{conn: conn, channel: ch, reopen: reopen, log: log.WithField("component", "amqp_producer")}, nil
}

func (p *Producer) PublishTransfer(ctx context.Context, r *custody.Receipt) error {
	return p.Publish(ctx, Exchange, RoutingKeyConfirmed, NewTransferEvent(r))
}

// Publish declares the exchange and sends body as json. A failed attempt reopens the
// channel once and tries again.
func (p *Producer) Publish(ctx context.Context, exchange, routingKey string, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.publish(ctx, exchange, routingKey, b)
	if err == nil {
		return nil
	}

	p.log.WithFields(logging.Fields{"exchange": exchange, "routing_key": routingKey, "err": err}).Warn("publish failed, reopening channel")

	ch, chErr := p.reopen()
	if chErr != nil {
		return chErr
	}
	p.channel.Close()
	p.channel = ch

	return p.publish(ctx, exchange, routingKey, b)
}

func (p *Producer) publish(ctx context.Context, exchange, routingKey string, body []byte) error {
	err := p.channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil)
	if err != nil {
		return err
	}

	return p.channel.PublishWithContext(ctx, exchange, routingKey, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
}

func (p *Producer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// Fallback is used when no broker is configured.
type Fallback struct {
	log logging.Logger
}

func NewFallback(log logging.Logger) *Fallback {
	return &Fallback{log: log.WithField("component", "amqp_producer")}
}

func (p *Fallback) PublishTransfer(ctx context.Context, r *custody.Receipt) error {
	p.log.WithFields(logging.Fields{"mode": "fallback", "tx_hash": r.TransactionHash}).Debug("transfer event publish skipped")
	return nil
}

func (p *Fallback) Close() {}
