// Package notify consumes domain events off the bus and relays the ones staff
// care about to the staff inbox. Delivery is decoupled from the request that
// raised the event: the HTTP handler publishes and returns, this consumer
// mails.
package notify

import (
	"encoding/json"
	"fmt"

	"github.com/diagnosis/luxstay-hotel/internal/platform/mailer"
	"github.com/diagnosis/luxstay-hotel/pkg/events"
	"github.com/diagnosis/luxstay-hotel/pkg/logger"
)

type Notifier struct {
	bus    events.Subscriber
	mailer mailer.Service
	inbox  string
}

func New(bus events.Subscriber, m mailer.Service, staffInbox string) *Notifier {
	return &Notifier{bus: bus, mailer: m, inbox: staffInbox}
}

// Start registers the subscriptions. The queue group makes delivery
// at-most-once-per-event across replicas.
func (n *Notifier) Start() error {
	if err := n.bus.QueueSubscribe(events.HousekeepingRequested, "notify", n.onHousekeepingRequested); err != nil {
		return fmt.Errorf("subscribe %s: %w", events.HousekeepingRequested, err)
	}
	return nil
}

func (n *Notifier) onHousekeepingRequested(msg *events.Message) {
	var ev events.HousekeepingRequestedEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		logger.Error("Failed to decode housekeeping event", "error", err, "subject", msg.Subject)
		return
	}
	if n.inbox == "" {
		return
	}
	if err := n.mailer.SendHousekeepingAlert(n.inbox, ev.RoomNumber, ev.Category, ev.Notes); err != nil {
		logger.Error("Failed to send housekeeping alert", "error", err, "request_id", ev.RequestID)
	}
}
