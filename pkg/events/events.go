package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/diagnosis/luxstay-hotel/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
	ID        string
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
			ID:        fmt.Sprintf("%d", time.Now().UnixNano()),
		})
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
			ID:        fmt.Sprintf("%d", time.Now().UnixNano()),
		})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// Event subjects
const (
	GuestCheckedIn  = "stay.checked_in"
	GuestCheckedOut = "stay.checked_out"

	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"

	HousekeepingRequested = "housekeeping.requested"

	SyncCycleCompleted = "sync.cycle.completed"
)

// Event payloads
type StayEvent struct {
	StayID     int64     `json:"stay_id"`
	GuestName  string    `json:"guest_name"`
	RoomNumber string    `json:"room_number"`
	At         time.Time `json:"at"`
}

type OrderCreatedEvent struct {
	OrderID     int64     `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	RoomNumber  string    `json:"room_number"`
	GuestName   string    `json:"guest_name"`
	TotalCents  int64     `json:"total_cents"`
	CreatedAt   time.Time `json:"created_at"`
}

type OrderStatusChangedEvent struct {
	OrderID     int64     `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Status      string    `json:"status"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type HousekeepingRequestedEvent struct {
	RequestID  int64     `json:"request_id"`
	RoomNumber string    `json:"room_number"`
	Category   string    `json:"category"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
}

type SyncCycleCompletedEvent struct {
	Cycle            uint64    `json:"cycle"`
	Success          bool      `json:"success"`
	RoomsUpserted    int       `json:"rooms_upserted"`
	RoomsDeleted     int       `json:"rooms_deleted"`
	SessionsUpserted int       `json:"sessions_upserted"`
	SessionsDeleted  int       `json:"sessions_deleted"`
	CredentialsSaved int       `json:"credentials_saved"`
	FinishedAt       time.Time `json:"finished_at"`
}
