package core

import (
	"tinygo.org/x/drivers"

	"apbio/errcode"
	"apbio/mmio"
	"apbio/protocol"
)

// NewDeviceRegistry takes ownership of both register windows and returns a
// registry serving every command against them. A handle claimed before a
// failure stays claimed.
func NewDeviceRegistry(gpioRegs *mmio.GPIOBlock, timerRegs *mmio.TimerBlock) (*CommandRegistry, error) {
	g, err := NewGPIO(gpioRegs)
	if err != nil {
		return nil, err
	}
	t, err := NewTimer(timerRegs)
	if err != nil {
		return nil, err
	}
	r := NewCommandRegistry()
	InitGPIOCommands(r, g)
	InitTimerCommands(r, t)
	InitTraceCommands(r)
	return r, nil
}

// InitGPIOCommands registers every GPIO message against g.
func InitGPIOCommands(r *CommandRegistry, g *GPIO) {
	r.registerAll(
		pinCmd(protocol.MsgGPIOEnableInput, g.EnableInput),
		pinCmd(protocol.MsgGPIOEnableOutput, g.EnableOutput),
		maskCmd(protocol.MsgGPIOEnableInputs, g.EnableInputs),
		maskCmd(protocol.MsgGPIOEnableOutputs, g.EnableOutputs),
		pinQuery(protocol.MsgGPIOReadInput, g.ReadInput),
		maskQuery(protocol.MsgGPIOReadInputs, g.ReadInputs),
		binding{protocol.MsgGPIOSetOutput, func(args []uint32) (uint32, error) {
			const op = "gpio_set_output"
			pin, err := argPin(op, args[0])
			if err != nil {
				return 0, err
			}
			level, err := argLevel(op, args[1])
			if err != nil {
				return 0, err
			}
			g.SetOutput(pin, level)
			return 0, nil
		}},
		binding{protocol.MsgGPIOSetOutputs, func(args []uint32) (uint32, error) {
			return 0, g.SetOutputs(args[0], args[1])
		}},
		pinCmd(protocol.MsgGPIOEnableInterruptPosedge, g.EnableInterruptPosedge),
		maskCmd(protocol.MsgGPIOEnableInterruptsPosedge, g.EnableInterruptsPosedge),
		pinCmd(protocol.MsgGPIODisableInterruptPosedge, g.DisableInterruptPosedge),
		maskCmd(protocol.MsgGPIODisableInterruptsPosedge, g.DisableInterruptsPosedge),
		pinCmd(protocol.MsgGPIOClearInterrupt, g.ClearInterrupt),
		maskCmd(protocol.MsgGPIOClearInterrupts, g.ClearInterrupts),
		pinQuery(protocol.MsgGPIOInterruptStatus, g.InterruptStatus),
		maskQuery(protocol.MsgGPIOInterruptsStatus, g.InterruptsStatus),
	)
}

// InitTimerCommands registers every Timer message against t.
func InitTimerCommands(r *CommandRegistry, t *Timer) {
	sensor := NewCaptureSensor(t)
	r.registerAll(
		nullary(protocol.MsgTimerEnable, t.Enable),
		nullary(protocol.MsgTimerDisable, t.Disable),
		binding{protocol.MsgTimerSetOutputAction, func(args []uint32) (uint32, error) {
			const op = "timer_set_output_action"
			ch, err := argChannel(op, args[0])
			if err != nil {
				return 0, err
			}
			action, err := argAction(op, args[1])
			if err != nil {
				return 0, err
			}
			t.SetOutputAction(ch, action)
			return 0, nil
		}},
		binding{protocol.MsgTimerSetInputCaptureEdge, func(args []uint32) (uint32, error) {
			const op = "timer_set_input_capture_edge"
			ch, err := argChannel(op, args[0])
			if err != nil {
				return 0, err
			}
			edge, err := argEdge(op, args[1])
			if err != nil {
				return 0, err
			}
			t.SetInputCaptureEdge(ch, edge)
			return 0, nil
		}},
		binding{protocol.MsgTimerSetPrescaler, func(args []uint32) (uint32, error) {
			if args[0] > uint32(Div128) {
				return 0, invalidArg("timer_set_prescaler", "prescaler", args[0])
			}
			t.SetPrescaler(Prescaler(args[0]))
			return 0, nil
		}},
		binding{protocol.MsgTimerSetOutputCompare, func(args []uint32) (uint32, error) {
			const op = "timer_set_output_compare"
			ch, err := argChannel(op, args[0])
			if err != nil {
				return 0, err
			}
			action, err := argAction(op, args[1])
			if err != nil {
				return 0, err
			}
			irq, err := argBool(op, "interrupt", args[2])
			if err != nil {
				return 0, err
			}
			t.SetOutputCompare(ch, action, irq, args[3])
			return 0, nil
		}},
		binding{protocol.MsgTimerSetInputCapture, func(args []uint32) (uint32, error) {
			const op = "timer_set_input_capture"
			ch, err := argChannel(op, args[0])
			if err != nil {
				return 0, err
			}
			edge, err := argEdge(op, args[1])
			if err != nil {
				return 0, err
			}
			irq, err := argBool(op, "interrupt", args[2])
			if err != nil {
				return 0, err
			}
			t.SetInputCapture(ch, edge, irq)
			return 0, nil
		}},
		channelQuery(protocol.MsgTimerReadInputCapture, t.ReadInputCapture),
		channelCmd(protocol.MsgTimerClearInterrupt, t.ClearInterrupt),
		maskCmd(protocol.MsgTimerClearInterrupts, t.ClearInterrupts),
		channelCmd(protocol.MsgTimerEnableCF, t.EnableCF),
		maskCmd(protocol.MsgTimerEnableCFs, t.EnableCFs),
		channelCmd(protocol.MsgTimerDisableCF, t.DisableCF),
		maskCmd(protocol.MsgTimerDisableCFs, t.DisableCFs),
		channelCmd(protocol.MsgTimerEnableTOV, t.EnableTOV),
		maskCmd(protocol.MsgTimerEnableTOVs, t.EnableTOVs),
		channelCmd(protocol.MsgTimerDisableTOV, t.DisableTOV),
		maskCmd(protocol.MsgTimerDisableTOVs, t.DisableTOVs),
		binding{protocol.MsgTimerReadCount, func([]uint32) (uint32, error) {
			return t.ReadCount(), nil
		}},
		binding{protocol.MsgTimerSetReload, func(args []uint32) (uint32, error) {
			t.SetReload(args[0])
			return 0, nil
		}},
		boolCmd(protocol.MsgTimerOverflowInterrupt, "enable", func(on bool) {
			if on {
				t.EnableOverflowInterrupt()
			} else {
				t.DisableOverflowInterrupt()
			}
		}),
		boolCmd(protocol.MsgTimerResetOnCompare, "enable", t.SetResetOnCompare),
		nullary(protocol.MsgTimerClearOverflow, t.ClearOverflow),
		binding{protocol.MsgTimerCompareMode, func(args []uint32) (uint32, error) {
			const op = "timer_compare_mode"
			ch, err := argChannel(op, args[0])
			if err != nil {
				return 0, err
			}
			compare, err := argBool(op, "compare", args[1])
			if err != nil {
				return 0, err
			}
			if compare {
				t.SetCompareMode(ch)
			} else {
				t.SetCaptureMode(ch)
			}
			return 0, nil
		}},
		binding{protocol.MsgTimerCaptureInterval, func(args []uint32) (uint32, error) {
			const op = "timer_capture_interval"
			a, err := argChannel(op, args[0])
			if err != nil {
				return 0, err
			}
			b, err := argChannel(op, args[1])
			if err != nil {
				return 0, err
			}
			if err := sensor.Update(drivers.Time); err != nil {
				return 0, err
			}
			return sensor.Ticks(a, b), nil
		}},
	)
}

// InitTraceCommands registers the register-write trace controls.
func InitTraceCommands(r *CommandRegistry) {
	r.registerAll(
		boolCmd(protocol.MsgTraceEnable, "enable", SetTraceEnabled),
		binding{protocol.MsgTraceCount, func([]uint32) (uint32, error) {
			return TraceCount(), nil
		}},
	)
}

// Handler adapters. Single-selector operations take the selector as their
// only argument; mask operations validate the mask themselves.

func nullary(id uint16, fn func()) binding {
	return binding{id, func([]uint32) (uint32, error) {
		fn()
		return 0, nil
	}}
}

func pinCmd(id uint16, fn func(Pin)) binding {
	op := protocol.Messages[id].Name
	return binding{id, func(args []uint32) (uint32, error) {
		pin, err := argPin(op, args[0])
		if err != nil {
			return 0, err
		}
		fn(pin)
		return 0, nil
	}}
}

func pinQuery(id uint16, fn func(Pin) uint32) binding {
	op := protocol.Messages[id].Name
	return binding{id, func(args []uint32) (uint32, error) {
		pin, err := argPin(op, args[0])
		if err != nil {
			return 0, err
		}
		return fn(pin), nil
	}}
}

func channelCmd(id uint16, fn func(Channel)) binding {
	op := protocol.Messages[id].Name
	return binding{id, func(args []uint32) (uint32, error) {
		ch, err := argChannel(op, args[0])
		if err != nil {
			return 0, err
		}
		fn(ch)
		return 0, nil
	}}
}

func channelQuery(id uint16, fn func(Channel) uint32) binding {
	op := protocol.Messages[id].Name
	return binding{id, func(args []uint32) (uint32, error) {
		ch, err := argChannel(op, args[0])
		if err != nil {
			return 0, err
		}
		return fn(ch), nil
	}}
}

func maskCmd(id uint16, fn func(uint32) error) binding {
	return binding{id, func(args []uint32) (uint32, error) {
		return 0, fn(args[0])
	}}
}

func maskQuery(id uint16, fn func(uint32) (uint32, error)) binding {
	return binding{id, func(args []uint32) (uint32, error) {
		return fn(args[0])
	}}
}

func boolCmd(id uint16, name string, fn func(bool)) binding {
	op := protocol.Messages[id].Name
	return binding{id, func(args []uint32) (uint32, error) {
		on, err := argBool(op, name, args[0])
		if err != nil {
			return 0, err
		}
		fn(on)
		return 0, nil
	}}
}

// ParsePin converts a wire selector to a Pin.
func ParsePin(v uint32) (Pin, error) { return argPin("parse_pin", v) }

// ParseChannel converts a wire selector to a Channel.
func ParseChannel(v uint32) (Channel, error) { return argChannel("parse_channel", v) }

func argPin(op string, v uint32) (Pin, error) {
	if !selectorInRange(v) {
		return 0, &errcode.E{C: errcode.SelectorOutOfRange, Op: op, Msg: "pin " + utoa(v)}
	}
	return Pin(v), nil
}

func argChannel(op string, v uint32) (Channel, error) {
	if !selectorInRange(v) {
		return 0, &errcode.E{C: errcode.SelectorOutOfRange, Op: op, Msg: "channel " + utoa(v)}
	}
	return Channel(v), nil
}

func argLevel(op string, v uint32) (Level, error) {
	if v > uint32(High) {
		return 0, invalidArg(op, "level", v)
	}
	return Level(v), nil
}

func argEdge(op string, v uint32) (Edge, error) {
	if v > uint32(EdgeEither) {
		return 0, invalidArg(op, "edge", v)
	}
	return Edge(v), nil
}

func argAction(op string, v uint32) (OutputAction, error) {
	if v > uint32(OutputSet) {
		return 0, invalidArg(op, "action", v)
	}
	return OutputAction(v), nil
}

func argBool(op, name string, v uint32) (bool, error) {
	if v > 1 {
		return false, invalidArg(op, name, v)
	}
	return v == 1, nil
}

func invalidArg(op, name string, v uint32) error {
	return &errcode.E{C: errcode.InvalidParams, Op: op, Msg: name + "=" + utoa(v)}
}
