package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/IANDYI/maternal-dashboard-service/internal/core/domain"
	"github.com/IANDYI/maternal-dashboard-service/internal/core/timeline"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

var (
	alertsConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_consumed_total",
			Help: "Total number of alerts consumed from RabbitMQ",
		},
		[]string{"status"},
	)

	consumeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rabbitmq_consume_duration_seconds",
			Help:    "Duration of RabbitMQ message consumption",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"status"},
	)
)

var errInvalidAlert = errors.New("invalid risk alert")

// Broadcaster fans a serialized feed message out to connected staff
type Broadcaster interface {
	Broadcast(message []byte)
}

// FeedMessage is what connected staff receive for each risk alert
type FeedMessage struct {
	Type       string               `json:"type"`
	Alert      domain.RiskAlert     `json:"alert"`
	Event      domain.TimelineEvent `json:"event"`
	ReceivedAt time.Time            `json:"received_at"`
}

// ParseAlertMessage decodes a risk alert published by another service and
// renders it as a timeline event. now stamps alerts that carry no creation time.
func ParseAlertMessage(body []byte, now time.Time) (FeedMessage, error) {
	var alert domain.RiskAlert
	if err := json.Unmarshal(body, &alert); err != nil {
		return FeedMessage{}, fmt.Errorf("%w: %v", errInvalidAlert, err)
	}
	if alert.PatientID == uuid.Nil {
		return FeedMessage{}, fmt.Errorf("%w: patient_id is required", errInvalidAlert)
	}
	if alert.AlertType == "" {
		return FeedMessage{}, fmt.Errorf("%w: alert_type is required", errInvalidAlert)
	}
	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = now
	}

	event, err := timeline.Normalize(alert, now)
	if err != nil {
		return FeedMessage{}, err
	}

	return FeedMessage{
		Type:       "risk_alert",
		Alert:      alert,
		Event:      event,
		ReceivedAt: now,
	}, nil
}

// AlertConsumer consumes risk alerts from RabbitMQ and pushes them to the live feed
type AlertConsumer struct {
	conn           *amqp091.Connection
	channel        *amqp091.Channel
	queueName      string
	broadcaster    Broadcaster
	connMutex      sync.RWMutex
	reconnectCh    chan bool
	stopReconnect  chan bool
	maxRetries     int
	retryDelay     time.Duration
	consumingCtx   context.Context
	consumingMutex sync.Mutex
	isConsuming    bool
}

// NewAlertConsumer creates a new RabbitMQ consumer for the risk alert queue
func NewAlertConsumer(rabbitMQURL string, queueName string, broadcaster Broadcaster) (*AlertConsumer, error) {
	if queueName == "" {
		queueName = "risk_alerts"
	}

	consumer := &AlertConsumer{
		queueName:     queueName,
		broadcaster:   broadcaster,
		maxRetries:    3,
		retryDelay:    1 * time.Second,
		reconnectCh:   make(chan bool, 1),
		stopReconnect: make(chan bool),
	}

	if err := consumer.connect(rabbitMQURL); err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	go consumer.handleReconnection(rabbitMQURL)

	return consumer, nil
}

func (c *AlertConsumer) connect(rabbitMQURL string) error {
	conn, ch, err := dialQueue(rabbitMQURL, c.queueName, c.maxRetries, c.retryDelay)
	if err != nil {
		return err
	}

	c.connMutex.Lock()
	c.conn, c.channel = conn, ch
	c.connMutex.Unlock()

	log.Info().Str("queue", c.queueName).Msg("alert consumer connected to RabbitMQ")
	return nil
}

// handleReconnection handles automatic reconnection to RabbitMQ
func (c *AlertConsumer) handleReconnection(rabbitMQURL string) {
	for {
		select {
		case <-c.reconnectCh:
			log.Info().Msg("attempting to reconnect alert consumer to RabbitMQ")
			c.connMutex.Lock()
			if c.conn != nil && !c.conn.IsClosed() {
				c.conn.Close()
			}
			if c.channel != nil && !c.channel.IsClosed() {
				c.channel.Close()
			}
			c.connMutex.Unlock()

			if err := c.connect(rabbitMQURL); err != nil {
				log.Error().Err(err).Msg("alert consumer reconnection failed")
				go func() {
					select {
					case <-time.After(5 * time.Second):
						c.triggerReconnect()
					case <-c.stopReconnect:
					}
				}()
				continue
			}

			// Restart consuming with the original context
			c.consumingMutex.Lock()
			ctx := c.consumingCtx
			running := c.isConsuming
			c.consumingMutex.Unlock()
			if ctx != nil && ctx.Err() == nil && !running {
				if err := c.StartConsuming(ctx); err != nil {
					log.Error().Err(err).Msg("failed to restart alert consumer")
				}
			}
		case <-c.stopReconnect:
			return
		}
	}
}

func (c *AlertConsumer) triggerReconnect() {
	select {
	case c.reconnectCh <- true:
	default:
	}
}

// StartConsuming registers the consumer and processes deliveries in a background goroutine
// Only one consumer runs per instance; RabbitMQ distributes messages across replicas
func (c *AlertConsumer) StartConsuming(ctx context.Context) error {
	c.consumingMutex.Lock()
	if c.isConsuming {
		c.consumingMutex.Unlock()
		log.Info().Msg("alert consumer already running, skipping duplicate start")
		return nil
	}
	c.isConsuming = true
	c.consumingCtx = ctx
	c.consumingMutex.Unlock()

	stopped := func() {
		c.consumingMutex.Lock()
		c.isConsuming = false
		c.consumingMutex.Unlock()
	}

	c.connMutex.RLock()
	channel := c.channel
	conn := c.conn
	c.connMutex.RUnlock()

	if channel == nil || channel.IsClosed() || conn == nil || conn.IsClosed() {
		stopped()
		return fmt.Errorf("RabbitMQ connection is closed")
	}

	if err := channel.Qos(10, 0, false); err != nil {
		stopped()
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	consumerTag := fmt.Sprintf("dashboard-alerts-%d", time.Now().UnixNano())
	msgs, err := channel.Consume(
		c.queueName, // queue
		consumerTag, // consumer tag
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		stopped()
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log.Info().Str("tag", consumerTag).Str("queue", c.queueName).Msg("alert consumer started")

	go func() {
		defer stopped()
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("alert consumer context cancelled")
				return
			case msg, ok := <-msgs:
				if !ok {
					log.Warn().Msg("alert consumer channel closed, attempting reconnection")
					c.triggerReconnect()
					return
				}
				c.processMessage(msg)
			}
		}
	}()

	return nil
}

// processMessage broadcasts one delivery and acknowledges it
// Malformed alerts are rejected without requeue
func (c *AlertConsumer) processMessage(msg amqp091.Delivery) {
	start := time.Now()

	feed, err := ParseAlertMessage(msg.Body, start)
	if err != nil {
		log.Warn().Err(err).Str("message_id", msg.MessageId).Msg("dropping malformed risk alert")
		if nackErr := msg.Nack(false, false); nackErr != nil {
			log.Error().Err(nackErr).Msg("failed to nack risk alert")
		}
		alertsConsumedTotal.WithLabelValues("invalid").Inc()
		consumeDuration.WithLabelValues("invalid").Observe(time.Since(start).Seconds())
		return
	}

	body, err := json.Marshal(feed)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal feed message")
		msg.Nack(false, false)
		alertsConsumedTotal.WithLabelValues("error").Inc()
		return
	}

	c.broadcaster.Broadcast(body)

	if err := msg.Ack(false); err != nil {
		log.Error().Err(err).Msg("failed to acknowledge risk alert")
	}

	log.Info().
		Str("patient_id", feed.Alert.PatientID.String()).
		Str("alert_type", string(feed.Alert.AlertType)).
		Str("severity", string(feed.Alert.Severity)).
		Msg("risk alert pushed to live feed")
	alertsConsumedTotal.WithLabelValues("success").Inc()
	consumeDuration.WithLabelValues("success").Observe(time.Since(start).Seconds())
}

// Close closes the RabbitMQ connection and stops consuming
// The consuming context is cancelled by the caller during graceful shutdown
func (c *AlertConsumer) Close() error {
	close(c.stopReconnect)

	c.connMutex.Lock()
	defer c.connMutex.Unlock()

	if c.channel != nil && !c.channel.IsClosed() {
		if err := c.channel.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing RabbitMQ channel")
		}
	}
	if c.conn != nil && !c.conn.IsClosed() {
		if err := c.conn.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing RabbitMQ connection")
		}
	}

	log.Info().Msg("alert consumer closed")
	return nil
}
