// Package history keeps a bounded FIFO of recent battery samples.
package history

import "codeberg.org/waldrek/battwatch/internal/battery"

// Buffer holds up to capacity samples in insertion order, oldest first.
// Recording never fails; once full the oldest sample is evicted. Timestamps
// are stored as given, callers are trusted to record in order.
type Buffer struct {
	capacity int
	samples  []battery.Sample
}

func New(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{
		capacity: capacity,
		samples:  make([]battery.Sample, 0, capacity),
	}
}

// Record appends a sample, evicting the oldest when over capacity.
func (b *Buffer) Record(s battery.Sample) {
	b.samples = append(b.samples, s)
	if len(b.samples) > b.capacity {
		b.samples = b.samples[1:]
	}
}

// Snapshot returns a copy of the buffer contents in insertion order.
func (b *Buffer) Snapshot() []battery.Sample {
	out := make([]battery.Sample, len(b.samples))
	copy(out, b.samples)
	return out
}

// Last returns a copy of the most recent n samples, or all of them when
// fewer are held.
func (b *Buffer) Last(n int) []battery.Sample {
	if n > len(b.samples) {
		n = len(b.samples)
	}
	if n <= 0 {
		return nil
	}
	out := make([]battery.Sample, n)
	copy(out, b.samples[len(b.samples)-n:])
	return out
}

func (b *Buffer) Len() int {
	return len(b.samples)
}

func (b *Buffer) Capacity() int {
	return b.capacity
}
