package main

import (
	"bytes"
	"slices"
	"strings"
	"testing"
	"time"

	"apbio/core"
	"apbio/host/mcu"
	"apbio/mmio"
	"apbio/protocol"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		line string
		id   uint16
		args []uint32
	}{
		{"timer_enable", protocol.MsgTimerEnable, []uint32{}},
		{"gpio_set_output 3 1", protocol.MsgGPIOSetOutput, []uint32{3, 1}},
		{"gpio_set_output level=1 pin=3", protocol.MsgGPIOSetOutput, []uint32{3, 1}},
		{"gpio_enable_outputs 0xF0", protocol.MsgGPIOEnableOutputs, []uint32{0xF0}},
		{"timer_set_output_compare channel=3 action=1 interrupt=1 value=0x1234", protocol.MsgTimerSetOutputCompare, []uint32{3, 1, 1, 0x1234}},
		{"  'timer_set_reload'   65_535 ", protocol.MsgTimerSetReload, []uint32{65535}},
	}
	for _, tt := range tests {
		msg, args, err := parseLine(tt.line)
		if err != nil {
			t.Errorf("%q: %v", tt.line, err)
			continue
		}
		if msg.ID != tt.id || !slices.Equal(args, tt.args) {
			t.Errorf("%q = %s %v, want id %d %v", tt.line, msg.Name, args, tt.id, tt.args)
		}
	}
}

func TestParseLineErrors(t *testing.T) {
	for _, line := range []string{
		"",
		"frobnicate",
		"result 0 0",
		"gpio_set_output 3",
		"gpio_set_output pin=3 1",
		"gpio_set_output pin=3 pin=1",
		"gpio_set_output pin=3 volts=1",
		"gpio_enable_outputs 0x1_0000_0000",
		"gpio_enable_outputs -1",
		`gpio_enable_outputs "1`,
	} {
		if _, _, err := parseLine(line); err == nil {
			t.Errorf("%q accepted", line)
		}
	}
}

func TestHandleLine(t *testing.T) {
	gregs, tregs := new(mmio.GPIOBlock), new(mmio.TimerBlock)
	r, err := core.NewDeviceRegistry(gregs, tregs)
	if err != nil {
		t.Fatal(err)
	}
	m := mcu.New(mcu.NewLocal(r), time.Second)

	var out bytes.Buffer
	for _, line := range []string{"gpio_enable_output pin=5", "gpio_set_output 5 1", "list", "help", ""} {
		if !handleLine(m, line, &out) {
			t.Fatalf("%q ended the session", line)
		}
	}
	if got := gregs.Data.Get(); got != 1<<5 {
		t.Errorf("data = %#x, want %#x", got, 1<<5)
	}
	if !strings.Contains(out.String(), "timer_set_output_compare channel=%c") {
		t.Errorf("list output missing timer_set_output_compare:\n%s", out.String())
	}

	out.Reset()
	handleLine(m, "gpio_enable_outputs 0x100", &out)
	if !strings.Contains(out.String(), "Error") {
		t.Errorf("out-of-range mask: %q", out.String())
	}

	if handleLine(m, "quit", &out) {
		t.Error("quit kept the session open")
	}
}
