// Defines the Packet value and the per-device PacketQueue.
// Packets carry only their arrival slot; FIFO order is significant
// because delay is accounted against the earliest-queued packet.

package sim

import (
	"fmt"
	"strings"
)

// Packet is an ephemeral value created on arrival and destroyed on
// successful transmission. A collision leaves it in place; there is no
// retransmission bookkeeping beyond the queue itself.
type Packet struct {
	ArrivalSlot int64 // slot-resolution arrival timestamp
}

// PacketQueue is a FIFO queue of pending packets.
type PacketQueue struct {
	queue []Packet
}

// Enqueue adds a packet to the back of the queue.
func (pq *PacketQueue) Enqueue(p Packet) {
	pq.queue = append(pq.queue, p)
}

// Dequeue removes and returns the packet at the front of the queue.
// The second return value is false if the queue is empty.
func (pq *PacketQueue) Dequeue() (Packet, bool) {
	if len(pq.queue) == 0 {
		return Packet{}, false
	}
	front := pq.queue[0]
	pq.queue = pq.queue[1:]
	return front, true
}

// Peek returns the front packet without removing it.
// The second return value is false if the queue is empty.
func (pq *PacketQueue) Peek() (Packet, bool) {
	if len(pq.queue) == 0 {
		return Packet{}, false
	}
	return pq.queue[0], true
}

// Len returns the number of pending packets.
func (pq *PacketQueue) Len() int {
	return len(pq.queue)
}

func (pq *PacketQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, p := range pq.queue {
		sb.WriteString(fmt.Sprintf("@%d", p.ArrivalSlot))
		if i < len(pq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
