package channel

import (
	"github.com/parley-dev/parley/pkg/interview/bus"
	"github.com/parley-dev/parley/pkg/interview/events"
)

// Notifier lets any component request a plain-text status message be
// delivered outward: the text is packaged as a content frame and published,
// and the transport subscriber takes it from there.
type Notifier struct {
	broker *bus.Broker
}

// NewNotifier creates a notifier publishing through broker
func NewNotifier(broker *bus.Broker) *Notifier {
	return &Notifier{broker: broker}
}

// Notify packages text as a notice frame and publishes it
func (n *Notifier) Notify(correlationID, text string) {
	frame := events.NewFrame(events.AddressNotices, events.RoleSystem, text)
	n.broker.Publish(events.NotificationEvent{
		Base:  events.NewBase(correlationID),
		Frame: frame,
	})
}
