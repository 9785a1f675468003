package protocol

import "strings"

// Message describes one wire message: a fixed ID, its name and the
// printf-style format of its arguments in wire order.
type Message struct {
	ID     uint16
	Name   string
	Format string
}

// Params returns the argument names in wire order.
func (m Message) Params() []string {
	if m.Format == "" {
		return nil
	}
	fields := strings.Fields(m.Format)
	names := make([]string, len(fields))
	for i, f := range fields {
		name, _, _ := strings.Cut(f, "=")
		names[i] = name
	}
	return names
}

// NumParams is len(m.Params()) without allocating.
func (m Message) NumParams() int {
	if m.Format == "" {
		return 0
	}
	return strings.Count(m.Format, "=")
}

// Message IDs. The firmware and host share this table, so IDs only grow.
const (
	MsgResult uint16 = iota

	MsgGPIOEnableInput
	MsgGPIOEnableOutput
	MsgGPIOEnableInputs
	MsgGPIOEnableOutputs
	MsgGPIOReadInput
	MsgGPIOReadInputs
	MsgGPIOSetOutput
	MsgGPIOSetOutputs
	MsgGPIOEnableInterruptPosedge
	MsgGPIOEnableInterruptsPosedge
	MsgGPIODisableInterruptPosedge
	MsgGPIODisableInterruptsPosedge
	MsgGPIOClearInterrupt
	MsgGPIOClearInterrupts
	MsgGPIOInterruptStatus
	MsgGPIOInterruptsStatus

	MsgTimerEnable
	MsgTimerDisable
	MsgTimerSetOutputAction
	MsgTimerSetInputCaptureEdge
	MsgTimerSetPrescaler
	MsgTimerSetOutputCompare
	MsgTimerSetInputCapture
	MsgTimerReadInputCapture
	MsgTimerClearInterrupt
	MsgTimerClearInterrupts
	MsgTimerEnableCF
	MsgTimerEnableCFs
	MsgTimerDisableCF
	MsgTimerDisableCFs
	MsgTimerEnableTOV
	MsgTimerEnableTOVs
	MsgTimerDisableTOV
	MsgTimerDisableTOVs
	MsgTimerReadCount
	MsgTimerSetReload
	MsgTimerOverflowInterrupt
	MsgTimerResetOnCompare
	MsgTimerClearOverflow
	MsgTimerCompareMode

	MsgTraceEnable
	MsgTraceCount

	MsgTimerCaptureInterval

	numMessages
)

// Messages is indexed by ID.
var Messages = [numMessages]Message{
	{MsgResult, "result", "code=%c value=%u"},

	{MsgGPIOEnableInput, "gpio_enable_input", "pin=%c"},
	{MsgGPIOEnableOutput, "gpio_enable_output", "pin=%c"},
	{MsgGPIOEnableInputs, "gpio_enable_inputs", "pins=%u"},
	{MsgGPIOEnableOutputs, "gpio_enable_outputs", "pins=%u"},
	{MsgGPIOReadInput, "gpio_read_input", "pin=%c"},
	{MsgGPIOReadInputs, "gpio_read_inputs", "pins=%u"},
	{MsgGPIOSetOutput, "gpio_set_output", "pin=%c level=%c"},
	{MsgGPIOSetOutputs, "gpio_set_outputs", "pins=%u levels=%u"},
	{MsgGPIOEnableInterruptPosedge, "gpio_enable_interrupt_posedge", "pin=%c"},
	{MsgGPIOEnableInterruptsPosedge, "gpio_enable_interrupts_posedge", "pins=%u"},
	{MsgGPIODisableInterruptPosedge, "gpio_disable_interrupt_posedge", "pin=%c"},
	{MsgGPIODisableInterruptsPosedge, "gpio_disable_interrupts_posedge", "pins=%u"},
	{MsgGPIOClearInterrupt, "gpio_clear_interrupt", "pin=%c"},
	{MsgGPIOClearInterrupts, "gpio_clear_interrupts", "pins=%u"},
	{MsgGPIOInterruptStatus, "gpio_interrupt_status", "pin=%c"},
	{MsgGPIOInterruptsStatus, "gpio_interrupts_status", "pins=%u"},

	{MsgTimerEnable, "timer_enable", ""},
	{MsgTimerDisable, "timer_disable", ""},
	{MsgTimerSetOutputAction, "timer_set_output_action", "channel=%c action=%c"},
	{MsgTimerSetInputCaptureEdge, "timer_set_input_capture_edge", "channel=%c edge=%c"},
	{MsgTimerSetPrescaler, "timer_set_prescaler", "prescaler=%c"},
	{MsgTimerSetOutputCompare, "timer_set_output_compare", "channel=%c action=%c interrupt=%c value=%u"},
	{MsgTimerSetInputCapture, "timer_set_input_capture", "channel=%c edge=%c interrupt=%c"},
	{MsgTimerReadInputCapture, "timer_read_input_capture", "channel=%c"},
	{MsgTimerClearInterrupt, "timer_clear_interrupt", "channel=%c"},
	{MsgTimerClearInterrupts, "timer_clear_interrupts", "channels=%u"},
	{MsgTimerEnableCF, "timer_enable_cf", "channel=%c"},
	{MsgTimerEnableCFs, "timer_enable_cfs", "channels=%u"},
	{MsgTimerDisableCF, "timer_disable_cf", "channel=%c"},
	{MsgTimerDisableCFs, "timer_disable_cfs", "channels=%u"},
	{MsgTimerEnableTOV, "timer_enable_tov", "channel=%c"},
	{MsgTimerEnableTOVs, "timer_enable_tovs", "channels=%u"},
	{MsgTimerDisableTOV, "timer_disable_tov", "channel=%c"},
	{MsgTimerDisableTOVs, "timer_disable_tovs", "channels=%u"},
	{MsgTimerReadCount, "timer_read_count", ""},
	{MsgTimerSetReload, "timer_set_reload", "value=%u"},
	{MsgTimerOverflowInterrupt, "timer_overflow_interrupt", "enable=%c"},
	{MsgTimerResetOnCompare, "timer_reset_on_compare", "enable=%c"},
	{MsgTimerClearOverflow, "timer_clear_overflow", ""},
	{MsgTimerCompareMode, "timer_compare_mode", "channel=%c compare=%c"},

	{MsgTraceEnable, "trace_enable", "enable=%c"},
	{MsgTraceCount, "trace_count", ""},

	{MsgTimerCaptureInterval, "timer_capture_interval", "channel_a=%c channel_b=%c"},
}

// LookupMessage finds a message by name.
func LookupMessage(name string) (Message, bool) {
	for _, m := range Messages {
		if m.Name == name {
			return m, true
		}
	}
	return Message{}, false
}

// MessageByID returns the table entry for id.
func MessageByID(id uint16) (Message, bool) {
	if int(id) >= len(Messages) {
		return Message{}, false
	}
	return Messages[id], true
}
