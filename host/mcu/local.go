package mcu

import (
	"context"
	"errors"

	"apbio/core"
	"apbio/mmio"
)

// Local is a Backend that runs commands in-process against register
// windows, normally mapped from /dev/mem.
type Local struct {
	registry *core.CommandRegistry
	maps     []*mmio.Mapping
}

// OpenLocal maps both blocks at the given physical bases and takes
// ownership of them.
func OpenLocal(gpioBase, timerBase uintptr) (*Local, error) {
	gregs, gmap, err := mmio.MapBlock[mmio.GPIOBlock](gpioBase)
	if err != nil {
		return nil, err
	}
	tregs, tmap, err := mmio.MapBlock[mmio.TimerBlock](timerBase)
	if err != nil {
		gmap.Close()
		return nil, err
	}
	r, err := core.NewDeviceRegistry(gregs, tregs)
	if err != nil {
		gmap.Close()
		tmap.Close()
		return nil, err
	}
	return &Local{registry: r, maps: []*mmio.Mapping{gmap, tmap}}, nil
}

// NewLocal serves commands from an existing registry.
func NewLocal(r *core.CommandRegistry) *Local {
	return &Local{registry: r}
}

func (l *Local) Call(ctx context.Context, id uint16, args []uint32) (uint32, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return l.registry.Call(id, args)
}

// Registry returns the registry commands run against.
func (l *Local) Registry() *core.CommandRegistry { return l.registry }

// Trace returns the recorded register writes, oldest first.
func (l *Local) Trace() []core.TraceEvent {
	return core.Trace()
}

// Close unmaps the register windows. The peripherals stay claimed.
func (l *Local) Close() error {
	var errs []error
	for _, m := range l.maps {
		errs = append(errs, m.Close())
	}
	l.maps = nil
	return errors.Join(errs...)
}
