package notifications

import (
	"strings"
	"sync"
)

// Dispatcher holds one ordered mailbox per recipient. Enqueue and Drain are
// mutually exclusive, so a message is either returned by exactly one drain or
// still pending. Safe for concurrent use.
type Dispatcher struct {
	mu        sync.Mutex
	mailboxes map[string][]string
}

// NewDispatcher returns a dispatcher with no mailboxes.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{mailboxes: make(map[string][]string)}
}

// Enqueue appends message to recipient's mailbox, creating it if absent.
// Blank recipients are ignored.
func (d *Dispatcher) Enqueue(recipient, message string) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mailboxes[recipient] = append(d.mailboxes[recipient], message)
}

// Broadcast enqueues an identical copy of message for every recipient and
// returns how many mailboxes received it.
func (d *Dispatcher) Broadcast(recipients []string, message string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	delivered := 0
	for _, recipient := range recipients {
		recipient = strings.TrimSpace(recipient)
		if recipient == "" {
			continue
		}
		d.mailboxes[recipient] = append(d.mailboxes[recipient], message)
		delivered++
	}
	return delivered
}

// Drain returns recipient's pending messages in enqueue order and empties
// the mailbox. Unknown or empty mailboxes yield an empty slice.
func (d *Dispatcher) Drain(recipient string) []string {
	recipient = strings.TrimSpace(recipient)

	d.mu.Lock()
	defer d.mu.Unlock()
	pending := d.mailboxes[recipient]
	delete(d.mailboxes, recipient)
	if pending == nil {
		return []string{}
	}
	return pending
}
