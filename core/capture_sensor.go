package core

import "tinygo.org/x/drivers"

// CaptureSensor exposes the timer's counter and capture registers as a
// drivers.Sensor, so it can be synchronised with other sensors. Update
// latches a snapshot; the accessors read the snapshot, not the hardware.
type CaptureSensor struct {
	timer    *Timer
	count    uint32
	div      Prescaler
	captures [Selectors]uint32
}

var _ drivers.Sensor = (*CaptureSensor)(nil)

// NewCaptureSensor wraps t.
func NewCaptureSensor(t *Timer) *CaptureSensor {
	return &CaptureSensor{timer: t}
}

// Update snapshots the counter and every capture register when which asks
// for drivers.Time. Other measurements are ignored.
func (s *CaptureSensor) Update(which drivers.Measurement) error {
	if which&drivers.Time == 0 {
		return nil
	}

	// One critical section so the counter and captures are coherent.
	state := disableInterrupts()
	s.count = s.timer.regs.Count.Get()
	s.div = s.timer.Prescaler()
	for ch := range s.captures {
		s.captures[ch] = s.timer.regs.Compare[ch].Get()
	}
	restoreInterrupts(state)
	return nil
}

// Count returns the counter value at the last Update.
func (s *CaptureSensor) Count() uint32 {
	return s.count
}

// Capture returns ch's capture value at the last Update.
func (s *CaptureSensor) Capture(ch Channel) uint32 {
	return s.captures[ch.Index()]
}

// Interval returns the ticks from ch a's capture to ch b's capture, modulo
// counter wrap-around.
func (s *CaptureSensor) Interval(a, b Channel) uint32 {
	return s.captures[b.Index()] - s.captures[a.Index()]
}

// Ticks converts the interval into timer input clock ticks using the
// prescaler in force at the last Update.
func (s *CaptureSensor) Ticks(a, b Channel) uint32 {
	return s.Interval(a, b) * s.div.Divisor()
}
