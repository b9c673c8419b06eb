// Implements the shared slotted-Aloha channel.
// Devices register transmission attempts per slot; the channel resolves each
// slot exactly once, one slot after registration closes, and notifies the
// involved devices of the outcome.

package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Channel collects per-slot transmission requests and resolves them with a
// one-slot lag: slot t is resolved no earlier than the start of slot t+1,
// after every device has had its chance to register for t. That lag is a
// timing contract, not an implementation artifact.
type Channel struct {
	pending     map[int64][]*Device
	nextResolve int64

	SlotsProcessed int64 // slots resolved so far
	Successes      int64
	Collisions     int64 // counted once per slot, not per device
	EmptySlots     int64
}

// NewChannel creates a Channel with no pending requests.
func NewChannel() *Channel {
	return &Channel{
		pending: make(map[int64][]*Device),
	}
}

// RegisterAttempt adds a candidate transmission for the given slot. The same
// device registering twice for one slot, or registering for an already
// resolved slot, is a broken state-machine invariant and panics.
func (c *Channel) RegisterAttempt(d *Device, slot int64) {
	if slot < c.nextResolve {
		panic(fmt.Sprintf("channel: registration for slot %d after it closed (next resolve %d)",
			slot, c.nextResolve))
	}
	for _, r := range c.pending[slot] {
		if r == d {
			panic(fmt.Sprintf("channel: device %d registered twice for slot %d", d.ID, slot))
		}
	}
	c.pending[slot] = append(c.pending[slot], d)
}

// Resolve decides the outcome of a slot and notifies the registrants.
// It must be called exactly once per slot, in slot order; anything else
// panics. Registrants that died, or whose queue was drained by the previous
// slot's acknowledgment, are treated as withdrawn.
//
// Outcomes: zero live registrants count the slot as empty; exactly one is a
// success (the device dequeues its earliest packet and records the delay);
// two or more are a collision, leaving every registrant's queue untouched.
func (c *Channel) Resolve(slot int64) {
	if slot != c.nextResolve {
		panic(fmt.Sprintf("channel: resolve slot %d out of order, expected %d", slot, c.nextResolve))
	}
	c.nextResolve++

	registrants := c.pending[slot]
	delete(c.pending, slot)

	live := registrants[:0]
	for _, d := range registrants {
		if d.State != StateDead && d.Queue.Len() > 0 {
			live = append(live, d)
		}
	}

	c.SlotsProcessed++
	switch len(live) {
	case 0:
		c.EmptySlots++
	case 1:
		c.Successes++
		live[0].CompleteTransmission(slot)
		logrus.Debugf("channel: slot %d success for device %d", slot, live[0].ID)
	default:
		c.Collisions++
		for _, d := range live {
			d.RecordCollision()
		}
		logrus.Debugf("channel: slot %d collision among %d devices", slot, len(live))
	}
}
