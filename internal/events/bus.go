// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/tomtom215/quizcore/internal/logging"
	"github.com/tomtom215/quizcore/internal/metrics"
)

// ErrBusClosed is returned when publishing after Close.
var ErrBusClosed = errors.New("event bus is closed")

// Bus publishes quiz events and routes them to registered handlers.
type Bus struct {
	config   Config
	logger   zerolog.Logger
	wmLogger watermill.LoggerAdapter

	publisher    message.Publisher
	subscriber   message.Subscriber
	sharedPubSub bool
	router       *message.Router
	now          func() time.Time

	mu     sync.RWMutex
	closed bool
}

// New creates a bus on the configured transport. Handlers must be added
// before Run.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg Config, logger zerolog.Logger) (*Bus, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid events config: %w", err)
	}

	b := &Bus{
		config: cfg,
		logger: logger.With().Str("component", "events").Logger(),
		now:    time.Now,
	}
	b.wmLogger = NewLoggerAdapter(b.logger)

	var err error
	if cfg.UsesNATS() {
		b.publisher, b.subscriber, err = newNATSPubSub(&cfg, b.wmLogger)
		if err != nil {
			return nil, err
		}
	} else {
		ch := gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: cfg.BufferSize,
		}, b.wmLogger)
		b.publisher, b.subscriber = ch, ch
		b.sharedPubSub = true
	}

	b.router, err = b.newRouter()
	if err != nil {
		_ = b.closeTransport()
		return nil, err
	}

	b.logger.Info().
		Bool("nats", cfg.UsesNATS()).
		Msg("event bus created")

	return b, nil
}

func newNATSPubSub(cfg *Config, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error) {
	natsOpts := []natsgo.Option{
		natsgo.Name("quizcore"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}

	marshaler := &wmNats.NATSMarshaler{}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.NATSURL,
		NatsOptions: natsOpts,
		Marshaler:   marshaler,
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("create NATS publisher: %w", err)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              cfg.NATSURL,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: 1,
		CloseTimeout:     cfg.CloseTimeout,
		NatsOptions:      natsOpts,
		Unmarshaler:      marshaler,
		JetStream:        wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		_ = pub.Close()
		return nil, nil, fmt.Errorf("create NATS subscriber: %w", err)
	}

	return pub, sub, nil
}

// newRouter builds the watermill router with middleware, outer to inner:
// Recoverer turns handler panics into errors, Retry backs off transient
// failures.
func (b *Bus) newRouter() (*message.Router, error) {
	r, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: b.config.CloseTimeout,
	}, b.wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	r.AddMiddleware(middleware.Recoverer)

	if b.config.RetryMaxRetries > 0 {
		retry := middleware.Retry{
			MaxRetries:      b.config.RetryMaxRetries,
			InitialInterval: b.config.RetryInitialInterval,
			MaxInterval:     b.config.RetryMaxInterval,
			Multiplier:      b.config.RetryMultiplier,
			Logger:          b.wmLogger,
		}
		r.AddMiddleware(retry.Middleware)
	}

	return r, nil
}

// AddConsumer registers a handler for topic. Errors returned by fn are
// retried by the router; a message still failing after the retries is
// dropped and logged.
func (b *Bus) AddConsumer(name, topic string, fn message.NoPublishHandlerFunc) {
	b.router.AddConsumerHandler(name, topic, b.subscriber, func(msg *message.Message) error {
		err := fn(msg)
		metrics.RecordEventHandled(topic, err)
		return err
	})
}

// PublishCompleted publishes a quiz.completed event. A missing EventID or
// CompletedAt is filled in.
func (b *Bus) PublishCompleted(ctx context.Context, e *CompletionEvent) error {
	if err := e.Validate(); err != nil {
		return err
	}
	ensureID(&e.EventID)
	if e.CompletedAt.IsZero() {
		e.CompletedAt = b.now().UTC()
	}
	return b.publish(ctx, TopicQuizCompleted, e.EventID, e)
}

// PublishDemographicChanged publishes a demographic.changed event.
func (b *Bus) PublishDemographicChanged(ctx context.Context, e *DemographicChangedEvent) error {
	if err := e.Validate(); err != nil {
		return err
	}
	ensureID(&e.EventID)
	if e.ChangedAt.IsZero() {
		e.ChangedAt = b.now().UTC()
	}
	return b.publish(ctx, TopicDemographicChanged, e.EventID, e)
}

func (b *Bus) publish(ctx context.Context, topic, eventID string, payload interface{}) (err error) {
	defer func() { metrics.RecordEventPublished(topic, err) }()

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}

	msg, err := newMessage(eventID, topic, payload)
	if err != nil {
		return err
	}
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set(MetadataCorrelationID, id)
	}
	msg.SetContext(ctx)

	if err := b.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}

	b.logger.Debug().
		Str("topic", topic).
		Str("event_id", eventID).
		Msg("event published")
	return nil
}

// Run starts the router and blocks until ctx is done or Close is called.
func (b *Bus) Run(ctx context.Context) error {
	return b.router.Run(ctx)
}

// Running returns a channel closed once the router's handlers are running.
func (b *Bus) Running() <-chan struct{} {
	return b.router.Running()
}

// Close stops the router and the transport. It is safe to call more than
// once.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	var errs []error
	if err := b.router.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close router: %w", err))
	}
	if err := b.closeTransport(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (b *Bus) closeTransport() error {
	var errs []error
	if err := b.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publisher: %w", err))
	}
	if !b.sharedPubSub {
		if err := b.subscriber.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close subscriber: %w", err))
		}
	}
	return errors.Join(errs...)
}
