package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/hirehub/jobboard/internal/core/domain"
)

const (
	defaultExchange     = "jobboard.notifications"
	defaultRetries      = 3
	defaultRetryDelay   = 100 * time.Millisecond
	defaultDialAttempts = 3
)

// Config describes the broker topology. Notifications are published to a
// topic exchange with the notification type as routing key.
type Config struct {
	URL          string
	Exchange     string
	Heartbeat    time.Duration
	DialAttempts int
	DialInterval time.Duration
	Retries      int
	RetryDelay   time.Duration
}

type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher implements ports.Notifier on RabbitMQ.
type Publisher struct {
	cfg  Config
	conn *amqp.Connection
	mu   sync.Mutex
	ch   publishChannel
	log  zerolog.Logger

	sleep func(time.Duration)
}

// Dial connects to the broker and declares the exchange.
func Dial(cfg Config, log zerolog.Logger) (*Publisher, error) {
	cfg = withDefaults(cfg)
	log = log.With().Str("component", "notify").Logger()

	var (
		conn *amqp.Connection
		err  error
	)
	for attempt := 1; attempt <= cfg.DialAttempts; attempt++ {
		conn, err = amqp.DialConfig(cfg.URL, amqp.Config{Heartbeat: cfg.Heartbeat, Locale: "en_US"})
		if err == nil {
			break
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("broker dial failed")
		if attempt < cfg.DialAttempts {
			time.Sleep(cfg.DialInterval)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("dial broker after %d attempts: %w", cfg.DialAttempts, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}

	log.Info().Str("exchange", cfg.Exchange).Msg("notification publisher ready")
	p := newPublisher(cfg, ch, log)
	p.conn = conn
	return p, nil
}

func newPublisher(cfg Config, ch publishChannel, log zerolog.Logger) *Publisher {
	return &Publisher{cfg: withDefaults(cfg), ch: ch, log: log, sleep: time.Sleep}
}

func withDefaults(cfg Config) Config {
	if cfg.Exchange == "" {
		cfg.Exchange = defaultExchange
	}
	if cfg.Retries <= 0 {
		cfg.Retries = defaultRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.DialAttempts <= 0 {
		cfg.DialAttempts = defaultDialAttempts
	}
	if cfg.DialInterval <= 0 {
		cfg.DialInterval = time.Second
	}
	return cfg
}

// Notify publishes n, retrying with exponential backoff.
func (p *Publisher) Notify(ctx context.Context, n domain.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    n.CreatedAt,
		Type:         n.Type,
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < p.cfg.Retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = p.ch.PublishWithContext(ctx, p.cfg.Exchange, n.Type, false, false, msg)
		if lastErr == nil {
			p.log.Debug().Str("type", n.Type).Str("recipient", n.RecipientID).Msg("notification published")
			return nil
		}
		if attempt < p.cfg.Retries-1 {
			delay := p.cfg.RetryDelay << attempt
			p.log.Warn().Err(lastErr).Int("attempt", attempt+1).Dur("retry_after", delay).Msg("publish failed, retrying")
			p.sleep(delay)
		}
	}
	return fmt.Errorf("publish %s after %d attempts: %w", n.Type, p.cfg.Retries, lastErr)
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		if err := p.ch.Close(); err != nil {
			p.log.Warn().Err(err).Msg("failed to close channel")
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
