package notify_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/diagnosis/luxstay-hotel/internal/notify"
	"github.com/diagnosis/luxstay-hotel/pkg/events"
)

// ---------- Mocks ----------

// mockBus dispatches published messages synchronously to queue subscribers.
type mockBus struct {
	handlers map[string]func(msg *events.Message)
}

func newMockBus() *mockBus {
	return &mockBus{handlers: make(map[string]func(msg *events.Message))}
}

func (m *mockBus) Publish(_ context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if h, ok := m.handlers[subject]; ok {
		h(&events.Message{Subject: subject, Data: payload, Timestamp: time.Now()})
	}
	return nil
}

func (m *mockBus) Subscribe(subject string, handler func(msg *events.Message)) error {
	m.handlers[subject] = handler
	return nil
}

func (m *mockBus) QueueSubscribe(subject, _ string, handler func(msg *events.Message)) error {
	m.handlers[subject] = handler
	return nil
}

func (m *mockBus) Close() error { return nil }

type mockMailer struct {
	alerts int
	lastTo string
	room   string
	cat    string
	notes  string
}

func (m *mockMailer) Send(toEmail, _, _, _, _ string) (string, error) {
	m.lastTo = toEmail
	return "mock-id", nil
}

func (m *mockMailer) SendHousekeepingAlert(toEmail, roomNumber, category, notes string) error {
	m.alerts++
	m.lastTo = toEmail
	m.room = roomNumber
	m.cat = category
	m.notes = notes
	return nil
}

// ---------- Tests ----------

func TestHousekeepingEventMailsStaffInbox(t *testing.T) {
	bus := newMockBus()
	mail := &mockMailer{}
	n := notify.New(bus, mail, "frontdesk@luxstay.local")
	if err := n.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	err := bus.Publish(context.Background(), events.HousekeepingRequested, events.HousekeepingRequestedEvent{
		RequestID:  7,
		RoomNumber: "101",
		Category:   "towels",
		Notes:      "extra towels please",
		CreatedAt:  time.Now(),
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	if mail.alerts != 1 {
		t.Fatalf("alerts sent = %d, want 1", mail.alerts)
	}
	if mail.lastTo != "frontdesk@luxstay.local" || mail.room != "101" || mail.cat != "towels" || mail.notes != "extra towels please" {
		t.Errorf("alert = to %q room %q category %q notes %q", mail.lastTo, mail.room, mail.cat, mail.notes)
	}
}

func TestMalformedEventIsDroppedNotFatal(t *testing.T) {
	bus := newMockBus()
	mail := &mockMailer{}
	n := notify.New(bus, mail, "frontdesk@luxstay.local")
	if err := n.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	bus.handlers[events.HousekeepingRequested](&events.Message{
		Subject: events.HousekeepingRequested,
		Data:    []byte("not json"),
	})

	if mail.alerts != 0 {
		t.Errorf("alerts sent = %d, want 0", mail.alerts)
	}
}

func TestNoInboxConfiguredSendsNothing(t *testing.T) {
	bus := newMockBus()
	mail := &mockMailer{}
	n := notify.New(bus, mail, "")
	if err := n.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	err := bus.Publish(context.Background(), events.HousekeepingRequested, events.HousekeepingRequestedEvent{
		RequestID: 1, RoomNumber: "101", Category: "cleaning",
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	if mail.alerts != 0 {
		t.Errorf("alerts sent = %d, want 0", mail.alerts)
	}
}
