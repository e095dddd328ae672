package bm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"ride-dispatch/internal/config"
	"ride-dispatch/internal/dispatch-service/core/domain/dto"
	"ride-dispatch/internal/dispatch-service/core/ports"
	"ride-dispatch/internal/mylogger"
)

const (
	Exchange       = "dbs_topic"
	NotifyQueue    = "dbs_notify"
	routingPattern = "notify.#"
	reconnInterval = 10
)

// RabbitMQ publishes lifecycle events onto the external bus. One durable
// topic exchange; the routing key carries the event topic.
type RabbitMQ struct {
	ctx          context.Context
	cfg          config.RabbitMqconfig
	mylog        mylogger.Logger
	conn         *amqp.Connection
	ch           *amqp.Channel
	reconnecting bool
	mu           *sync.Mutex
}

func New(ctx context.Context, rabbitmqCfg config.RabbitMqconfig, mylog mylogger.Logger) (*RabbitMQ, error) {
	r := &RabbitMQ{
		ctx:          ctx,
		cfg:          rabbitmqCfg,
		mylog:        mylog,
		mu:           &sync.Mutex{},
		reconnecting: false,
	}
	if err := r.connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %v", err)
	}
	return r, nil
}

var _ ports.INotifier = (*RabbitMQ)(nil)

// Publish wraps the payload in the notice envelope and pushes it to the
// exchange. Fire and forget: the caller decides what a failure means.
func (r *RabbitMQ) Publish(ctx context.Context, topic string, recipients []uuid.UUID, payload any) error {
	mylog := r.mylog.Action("publish")

	r.mu.Lock()
	conn, ch := r.conn, r.ch
	r.mu.Unlock()

	if conn == nil || conn.IsClosed() {
		mylog.Error("connection to rabbitmq is closed", fmt.Errorf("closed conn"))
		go r.reconnect(r.ctx)
		return errors.New("connection is closed")
	}

	body, err := json.Marshal(dto.Notice{
		UserReceiveNotice: recipients,
		Payload:           payload,
	})
	if err != nil {
		return err
	}

	routingKey := "notify." + topic
	return ch.PublishWithContext(ctx, Exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         topic,
		Body:         body,
	})
}

// Consume yields deliveries from the notify queue for the websocket bridge.
func (r *RabbitMQ) Consume(ctx context.Context, consumerName string) (<-chan amqp.Delivery, error) {
	r.mu.Lock()
	ch := r.ch
	r.mu.Unlock()
	return ch.ConsumeWithContext(ctx, NotifyQueue, consumerName, false, false, false, false, nil)
}

func (r *RabbitMQ) IsAlive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil || r.conn.IsClosed() {
		return false
	}
	if r.ch == nil || r.ch.IsClosed() {
		return false
	}
	return true
}

func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	conn, ch := r.conn, r.ch
	r.mu.Unlock()

	if ch != nil && !ch.IsClosed() {
		if err := ch.Close(); err != nil {
			return fmt.Errorf("close rabbitmq channel: %v", err)
		}
	}
	if conn != nil && !conn.IsClosed() {
		if err := conn.Close(); err != nil {
			return fmt.Errorf("close rabbitmq connection: %v", err)
		}
	}
	return nil
}

func (r *RabbitMQ) connect() error {
	conn, err := amqp.Dial(fmt.Sprintf("amqp://%v:%v@%v:%v/%v",
		r.cfg.User,
		r.cfg.Password,
		r.cfg.Host,
		r.cfg.Port,
		r.cfg.VHost,
	))
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		return err
	}

	if err := declareTopology(ch); err != nil {
		return err
	}

	r.mu.Lock()
	r.conn = conn
	r.ch = ch
	r.mu.Unlock()
	return nil
}

// declareTopology sets up the exchange, the notify queue and its binding.
func declareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(
		Exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("declare exchange %s: %w", Exchange, err)
	}

	if _, err := ch.QueueDeclare(NotifyQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", NotifyQueue, err)
	}
	if err := ch.QueueBind(NotifyQueue, routingPattern, Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", NotifyQueue, err)
	}
	return nil
}

func (r *RabbitMQ) reconnect(ctx context.Context) {
	r.mu.Lock()
	if r.reconnecting {
		r.mu.Unlock()
		return
	}
	r.reconnecting = true
	r.mu.Unlock()

	t := time.NewTicker(time.Second * reconnInterval)
	mylog := r.mylog.Action("mb_reconnecting")

	for {
		select {
		case <-t.C:
			if err := r.connect(); err == nil {
				t.Stop()
				mylog.Action("mb_reconnection_completed").Info("Successfully reconnected!")
				r.mu.Lock()
				r.reconnecting = false
				r.mu.Unlock()
				return
			}
			mylog.Info("rabbitmq failed to reconnect")

		case <-ctx.Done():
			t.Stop()
			r.mu.Lock()
			r.reconnecting = false
			r.mu.Unlock()
			return
		}
	}
}
