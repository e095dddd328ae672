package notification

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"ride-dispatch/internal/dispatch-service/core/domain/dto"
	"ride-dispatch/internal/dispatch-service/core/ports"
	"ride-dispatch/internal/mylogger"
)

const consumerName = "dispatch-notify"

// IConsumer is the slice of the broker the bridge needs.
type IConsumer interface {
	Consume(ctx context.Context, consumerName string) (<-chan amqp091.Delivery, error)
}

// notice mirrors the published envelope but keeps the payload raw so it can
// be forwarded to websocket clients without a decode round trip.
type notice struct {
	UserReceiveNotice []uuid.UUID     `json:"user_receive_notice"`
	Payload           json.RawMessage `json:"payload"`
}

// Notification drains the bus and pushes each event to the websocket
// connections of every recipient listed in the envelope.
type Notification struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	log        mylogger.Logger
	dispatcher ports.INotifyWebsocket
	consumer   IConsumer
}

func New(
	ctx context.Context,
	wg *sync.WaitGroup,
	log mylogger.Logger,
	dispatcher ports.INotifyWebsocket,
	consumer IConsumer,
) *Notification {
	return &Notification{
		ctx:        ctx,
		wg:         wg,
		log:        log,
		dispatcher: dispatcher,
		consumer:   consumer,
	}
}

func (n *Notification) Run() error {
	ch, err := n.consumer.Consume(n.ctx, consumerName)
	if err != nil {
		return err
	}

	n.wg.Add(1)
	go n.work(n.ctx, ch)

	return nil
}

func (n *Notification) work(ctx context.Context, ch <-chan amqp091.Delivery) {
	log := n.log.Action("work")
	defer func() {
		log.Info("notification worker is done")
		n.wg.Done()
	}()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}

			if err := n.fanOut(msg); err != nil {
				continue
			}
		case <-ctx.Done():
			return
		}
	}
}

// fanOut delivers one bus message to every recipient's websocket. The topic
// travels in the AMQP message type field and becomes the event type.
func (n *Notification) fanOut(msg amqp091.Delivery) error {
	log := n.log.Action("fanOut")

	var m notice
	if err := json.Unmarshal(msg.Body, &m); err != nil {
		log.Error("cannot unmarshal notice", err)
		msg.Nack(false, false)
		return err
	}

	event := dto.Event{
		Type: msg.Type,
		Data: m.Payload,
	}

	for _, userID := range m.UserReceiveNotice {
		n.dispatcher.WriteToUser(userID.String(), event)
	}
	log.Debug("event delivered", "type", msg.Type, "recipients", len(m.UserReceiveNotice))

	return msg.Ack(false)
}
