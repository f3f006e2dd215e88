package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrNotConnected is returned when the client has no open channel
var ErrNotConnected = errors.New("not connected to RabbitMQ")

// Exchange describes the exchange view events are routed through
type Exchange struct {
	Name       string
	Kind       string
	Durable    bool
	AutoDelete bool
}

// Queue describes the queue the view worker consumes. When DeadLetterExchange
// is set, rejected deliveries are routed to it and kept in "<Name>.dead".
type Queue struct {
	Name               string
	Durable            bool
	AutoDelete         bool
	Exclusive          bool
	DeadLetterExchange string
}

// RetryPolicy controls publish retries. Zero values fall back to 3 retries
// starting at 100ms and doubling.
type RetryPolicy struct {
	Retries    int
	Delay      time.Duration
	Multiplier float64
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.Retries <= 0 {
		p.Retries = 3
	}
	if p.Delay <= 0 {
		p.Delay = 100 * time.Millisecond
	}
	if p.Multiplier <= 1 {
		p.Multiplier = 2.0
	}
	return p
}

// backoff returns the wait after the given zero-based failed attempt
func (p RetryPolicy) backoff(attempt int) time.Duration {
	return time.Duration(float64(p.Delay) * math.Pow(p.Multiplier, float64(attempt)))
}

// Config holds RabbitMQ connection and topology configuration
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	VHost    string

	Exchange   Exchange
	Queue      Queue
	RoutingKey string

	DialAttempts int
	DialInterval time.Duration
	DialTimeout  time.Duration
	Heartbeat    time.Duration

	Publish  RetryPolicy
	Prefetch int
}

// URL renders the broker address. A vhost of "" or "/" is the default vhost.
func (c *Config) URL() string {
	vhost := strings.TrimPrefix(c.VHost, "/")
	if vhost == "" {
		vhost = "/"
	}
	return amqp.URI{
		Scheme:   "amqp",
		Host:     c.Host,
		Port:     c.Port,
		Username: c.User,
		Password: c.Password,
		Vhost:    vhost,
	}.String()
}

// Client publishes and consumes view events over a single channel. Publishes
// are serialized since an amqp channel is not safe for concurrent use.
type Client struct {
	config    *Config
	conn      *amqp.Connection
	channel   *amqp.Channel
	logger    *slog.Logger
	closeChan chan *amqp.Error
	connected atomic.Bool

	publishMu sync.Mutex
}

// NewClient dials the broker and declares the view topology
func NewClient(config *Config, logger *slog.Logger) (*Client, error) {
	client := &Client{
		config: config,
		logger: logger.With(slog.String("component", "rabbitmq")),
	}

	if err := client.connect(); err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ client: %w", err)
	}

	return client, nil
}

func (c *Client) dial() (*amqp.Connection, error) {
	amqpConfig := amqp.Config{
		Heartbeat: c.config.Heartbeat,
		Locale:    "en_US",
	}
	if c.config.DialTimeout > 0 {
		amqpConfig.Dial = amqp.DefaultDial(c.config.DialTimeout)
	}

	attempts := max(c.config.DialAttempts, 1)

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		var conn *amqp.Connection
		conn, err = amqp.DialConfig(c.config.URL(), amqpConfig)
		if err == nil {
			return conn, nil
		}

		c.logger.Warn("RabbitMQ dial failed",
			slog.String("host", c.config.Host),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
			slog.Any("error", err),
		)

		if attempt < attempts {
			time.Sleep(c.config.DialInterval)
		}
	}

	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", attempts, err)
}

func (c *Client) connect() error {
	conn, err := c.dial()
	if err != nil {
		return err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create channel: %w", err)
	}

	if err := declareTopology(channel, c.config); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("failed to declare topology: %w", err)
	}

	if c.config.Prefetch > 0 {
		if err := channel.Qos(c.config.Prefetch, 0, false); err != nil {
			channel.Close()
			conn.Close()
			return fmt.Errorf("failed to set qos: %w", err)
		}
	}

	c.conn = conn
	c.channel = channel
	c.closeChan = channel.NotifyClose(make(chan *amqp.Error, 1))
	c.connected.Store(true)

	c.logger.Info("Connected to RabbitMQ",
		slog.String("host", c.config.Host),
		slog.String("exchange", c.config.Exchange.Name),
		slog.String("queue", c.config.Queue.Name),
		slog.String("routing_key", c.config.RoutingKey),
	)

	return nil
}

// declareTopology declares the exchange, the view queue and its binding, plus
// the dead letter exchange and queue when configured
func declareTopology(ch *amqp.Channel, config *Config) error {
	ex := config.Exchange
	if err := ch.ExchangeDeclare(ex.Name, ex.Kind, ex.Durable, ex.AutoDelete, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", ex.Name, err)
	}

	q := config.Queue
	var args amqp.Table
	if dlx := q.DeadLetterExchange; dlx != "" {
		if err := ch.ExchangeDeclare(dlx, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare dead letter exchange %s: %w", dlx, err)
		}
		dead := q.Name + ".dead"
		if _, err := ch.QueueDeclare(dead, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", dead, err)
		}
		if err := ch.QueueBind(dead, "", dlx, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue %s: %w", dead, err)
		}
		args = amqp.Table{"x-dead-letter-exchange": dlx}
	}

	if _, err := ch.QueueDeclare(q.Name, q.Durable, q.AutoDelete, q.Exclusive, false, args); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", q.Name, err)
	}
	if err := ch.QueueBind(q.Name, config.RoutingKey, ex.Name, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", q.Name, err)
	}

	return nil
}

func (c *Client) publish(ctx context.Context, body []byte, contentType string) error {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()

	return c.channel.PublishWithContext(ctx, c.config.Exchange.Name, c.config.RoutingKey, false, false,
		amqp.Publishing{
			ContentType:  contentType,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
}

// PublishWithRetry publishes body on the configured routing key, backing off
// exponentially between failed attempts. It gives up early when ctx is done.
func (c *Client) PublishWithRetry(ctx context.Context, body []byte, contentType string) error {
	if !c.connected.Load() {
		return ErrNotConnected
	}

	policy := c.config.Publish.withDefaults()

	var err error
	for attempt := 0; ; attempt++ {
		if err = c.publish(ctx, body, contentType); err == nil {
			c.logger.Debug("Event published",
				slog.Int("attempt", attempt+1),
				slog.Int("body_size", len(body)),
			)
			return nil
		}
		if attempt == policy.Retries {
			break
		}

		wait := policy.backoff(attempt)
		c.logger.Warn("Publish failed, retrying",
			slog.Int("attempt", attempt+1),
			slog.Duration("retry_after", wait),
			slog.Any("error", err),
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("failed to publish message: %w", ctx.Err())
		case <-time.After(wait):
		}
	}

	return fmt.Errorf("failed to publish message after %d attempts: %w", policy.Retries+1, err)
}

// Consume starts delivering messages from the view queue with manual acks
func (c *Client) Consume(consumerTag string) (<-chan amqp.Delivery, error) {
	if !c.connected.Load() {
		return nil, ErrNotConnected
	}

	deliveries, err := c.channel.Consume(c.config.Queue.Name, consumerTag, false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to consume messages: %w", err)
	}

	c.logger.Info("Consuming view events",
		slog.String("queue", c.config.Queue.Name),
		slog.String("consumer_tag", consumerTag),
		slog.Int("prefetch", c.config.Prefetch),
	)

	return deliveries, nil
}

// NotifyClose returns the channel that receives the broker close error
func (c *Client) NotifyClose() <-chan *amqp.Error {
	return c.closeChan
}

// Close closes the channel and the connection
func (c *Client) Close() error {
	if !c.connected.Swap(false) {
		return nil
	}

	if err := c.channel.Close(); err != nil {
		c.logger.Warn("Failed to close RabbitMQ channel", slog.Any("error", err))
	}
	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("failed to close RabbitMQ connection: %w", err)
	}

	c.logger.Info("RabbitMQ connection closed")
	return nil
}
