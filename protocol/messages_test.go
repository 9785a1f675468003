package protocol

import (
	"slices"
	"testing"
)

func TestMessagesIndexedByID(t *testing.T) {
	seen := map[string]bool{}
	for i, m := range Messages {
		if int(m.ID) != i {
			t.Errorf("Messages[%d].ID = %d", i, m.ID)
		}
		if m.Name == "" || seen[m.Name] {
			t.Errorf("Messages[%d] has empty or duplicate name %q", i, m.Name)
		}
		seen[m.Name] = true
		if m.NumParams() != len(m.Params()) {
			t.Errorf("%s: NumParams %d != len(Params) %d", m.Name, m.NumParams(), len(m.Params()))
		}
	}
}

func TestMessageParams(t *testing.T) {
	m, ok := LookupMessage("timer_set_output_compare")
	if !ok || m.ID != MsgTimerSetOutputCompare {
		t.Fatalf("LookupMessage = %+v, %v", m, ok)
	}
	want := []string{"channel", "action", "interrupt", "value"}
	if got := m.Params(); !slices.Equal(got, want) {
		t.Errorf("Params() = %v, want %v", got, want)
	}

	m, _ = MessageByID(MsgTimerEnable)
	if m.Params() != nil || m.NumParams() != 0 {
		t.Errorf("timer_enable params = %v", m.Params())
	}
}

func TestMessageLookupMisses(t *testing.T) {
	if _, ok := LookupMessage("gpio_frobnicate"); ok {
		t.Error("unknown name found")
	}
	if _, ok := MessageByID(numMessages); ok {
		t.Error("out of range id found")
	}
}
