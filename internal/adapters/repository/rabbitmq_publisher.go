package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/IANDYI/maternal-dashboard-service/internal/core/domain"
	"github.com/IANDYI/maternal-dashboard-service/internal/core/ports"
	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// RabbitMQPublisher implements AlertPublisher for publishing alerts to RabbitMQ
// Includes retry logic and circuit breaker for resilience
type RabbitMQPublisher struct {
	conn          *amqp091.Connection
	channel       *amqp091.Channel
	queueName     string
	cb            *gobreaker.CircuitBreaker
	maxRetries    int
	retryDelay    time.Duration
	connMutex     sync.RWMutex
	reconnectCh   chan bool
	stopReconnect chan bool
}

// AlertEvent is the message published for an overdue follow-up
// Its shape matches the risk alerts other services publish so the same consumers can read it
type AlertEvent struct {
	ID            uuid.UUID        `json:"id"`
	PatientID     uuid.UUID        `json:"patient_id"`
	FollowUpID    uuid.UUID        `json:"follow_up_id"`
	AlertType     domain.AlertType `json:"alert_type"`
	Severity      domain.RiskLevel `json:"severity"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	ScheduledDate time.Time        `json:"scheduled_date"`
	DaysOverdue   int              `json:"days_overdue"`
	CreatedAt     time.Time        `json:"created_at"`
}

// NewAlertEvent builds the OVERDUE_FOLLOWUP alert for a follow-up missed as of ref
func NewAlertEvent(followUp domain.FollowUp, ref time.Time) AlertEvent {
	scheduled := followUp.ScheduledDate.In(ref.Location())
	y1, m1, d1 := scheduled.Date()
	y2, m2, d2 := ref.Date()
	days := int(time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC).Sub(time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)).Hours() / 24)

	description := fmt.Sprintf("Follow-up scheduled for %s is %d day(s) overdue", scheduled.Format("2 Jan 2006"), days)
	if followUp.AssigneeName != "" {
		description += fmt.Sprintf(" (assigned to %s)", followUp.AssigneeName)
	}

	return AlertEvent{
		// deterministic per follow-up so consumers can drop redeliveries
		ID:            uuid.NewSHA1(followUp.ID, []byte(domain.AlertOverdueFollowUp)),
		PatientID:     followUp.PatientID,
		FollowUpID:    followUp.ID,
		AlertType:     domain.AlertOverdueFollowUp,
		Severity:      domain.RiskLevelYellow,
		Title:         "Overdue follow-up",
		Description:   description,
		ScheduledDate: followUp.ScheduledDate,
		DaysOverdue:   days,
		CreatedAt:     ref,
	}
}

// NewRabbitMQPublisher creates a new RabbitMQ publisher with circuit breaker
func NewRabbitMQPublisher(rabbitMQURL string, queueName string, breaker BreakerSettings) (*RabbitMQPublisher, error) {
	if queueName == "" {
		queueName = "maternal_alerts"
	}

	publisher := &RabbitMQPublisher{
		queueName:     queueName,
		maxRetries:    3,
		retryDelay:    1 * time.Second,
		reconnectCh:   make(chan bool, 1),
		stopReconnect: make(chan bool),
	}

	settings := gobreaker.Settings{
		Name:        "rabbitmq",
		MaxRequests: breaker.MaxRequests,
		Interval:    breaker.Interval,
		Timeout:     breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	}
	publisher.cb = gobreaker.NewCircuitBreaker(settings)

	if err := publisher.connect(rabbitMQURL); err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	go publisher.handleReconnection(rabbitMQURL)

	return publisher, nil
}

// connect establishes connection to RabbitMQ
func (p *RabbitMQPublisher) connect(rabbitMQURL string) error {
	conn, ch, err := dialQueue(rabbitMQURL, p.queueName, p.maxRetries, p.retryDelay)
	if err != nil {
		return err
	}

	p.connMutex.Lock()
	p.conn, p.channel = conn, ch
	p.connMutex.Unlock()

	log.Info().Str("queue", p.queueName).Msg("alert publisher connected to RabbitMQ")
	return nil
}

// dialQueue dials RabbitMQ with retries, opens a channel and declares a durable queue
func dialQueue(rabbitMQURL, queueName string, maxRetries int, retryDelay time.Duration) (*amqp091.Connection, *amqp091.Channel, error) {
	var (
		conn *amqp091.Connection
		err  error
	)
	for i := 0; i < maxRetries; i++ {
		conn, err = amqp091.Dial(rabbitMQURL)
		if err == nil {
			break
		}
		log.Warn().Err(err).Int("attempt", i+1).Int("max_attempts", maxRetries).Msg("failed to connect to RabbitMQ")
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	if err != nil {
		return nil, nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	// Declare queue (idempotent)
	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}

// handleReconnection handles automatic reconnection to RabbitMQ
func (p *RabbitMQPublisher) handleReconnection(rabbitMQURL string) {
	for {
		select {
		case <-p.reconnectCh:
			log.Info().Msg("attempting to reconnect alert publisher to RabbitMQ")
			p.connMutex.Lock()
			if p.channel != nil {
				p.channel.Close()
			}
			if p.conn != nil {
				p.conn.Close()
			}
			p.connMutex.Unlock()

			if err := p.connect(rabbitMQURL); err != nil {
				log.Error().Err(err).Msg("alert publisher reconnection failed")
			}
		case <-p.stopReconnect:
			return
		}
	}
}

// PublishOverdueFollowUp publishes an OVERDUE_FOLLOWUP alert to RabbitMQ
func (p *RabbitMQPublisher) PublishOverdueFollowUp(ctx context.Context, followUp domain.FollowUp, ref time.Time) error {
	event := NewAlertEvent(followUp, ref)
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal alert event: %w", err)
	}

	log.Info().
		Str("event", "alert_publish_attempt").
		Str("patient_id", followUp.PatientID.String()).
		Str("follow_up_id", followUp.ID.String()).
		Int("days_overdue", event.DaysOverdue).
		Msg("publishing overdue follow-up alert")

	_, err = p.cb.Execute(func() (interface{}, error) {
		return nil, p.publishWithRetry(ctx, event.ID.String(), body)
	})
	return err
}

// publishWithRetry publishes with retry logic
func (p *RabbitMQPublisher) publishWithRetry(ctx context.Context, messageID string, body []byte) error {
	var lastErr error
	for i := 0; i < p.maxRetries; i++ {
		p.connMutex.RLock()
		ch := p.channel
		conn := p.conn
		p.connMutex.RUnlock()

		if ch == nil || conn == nil || conn.IsClosed() {
			p.triggerReconnect()
			lastErr = fmt.Errorf("RabbitMQ connection is closed")
			time.Sleep(p.retryDelay)
			continue
		}

		err := ch.PublishWithContext(
			ctx,
			"",          // exchange
			p.queueName, // routing key
			false,       // mandatory
			false,       // immediate
			amqp091.Publishing{
				ContentType:  "application/json",
				MessageId:    messageID,
				Body:         body,
				DeliveryMode: amqp091.Persistent,
				Timestamp:    time.Now(),
			},
		)
		if err == nil {
			return nil
		}

		lastErr = err
		log.Warn().Err(err).Int("attempt", i+1).Int("max_attempts", p.maxRetries).Msg("failed to publish alert")

		if i < p.maxRetries-1 {
			p.triggerReconnect()
			time.Sleep(p.retryDelay)
		}
	}

	return fmt.Errorf("failed to publish alert after %d retries: %w", p.maxRetries, lastErr)
}

func (p *RabbitMQPublisher) triggerReconnect() {
	select {
	case p.reconnectCh <- true:
	default:
	}
}

// Close closes the RabbitMQ connection
func (p *RabbitMQPublisher) Close() error {
	close(p.stopReconnect)
	p.connMutex.Lock()
	defer p.connMutex.Unlock()

	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Ensure RabbitMQPublisher implements the interface
var _ ports.AlertPublisher = (*RabbitMQPublisher)(nil)
