package core

import (
	"strings"
	"testing"
)

func TestBusEventRing(t *testing.T) {
	ClearBusEvents()
	defer ClearBusEvents()

	for i := 0; i < EventRingSize+5; i++ {
		RecordBusEvent(EvtData, uint8(i), 0)
	}
	events := BusEvents()
	if len(events) != EventRingSize {
		t.Fatalf("Expected %d events, got %d", EventRingSize, len(events))
	}
	if events[0].Value1 != 5 || events[0].Seq != 5 {
		t.Errorf("Oldest event %v, want seq 5", events[0])
	}
	if last := events[len(events)-1]; last.Value1 != EventRingSize+4 {
		t.Errorf("Newest event %v", last)
	}
}

func TestBusEventsDisabled(t *testing.T) {
	ClearBusEvents()
	SetEventsEnabled(false)
	RecordBusEvent(EvtStart, 0, 0)
	SetEventsEnabled(true)
	if n := len(BusEvents()); n != 0 {
		t.Errorf("Disabled ring captured %d events", n)
	}
}

func TestBusEventString(t *testing.T) {
	tests := []struct {
		evt  BusEvent
		want string
	}{
		{BusEvent{EventType: EvtStart, Seq: 1}, "#1 START"},
		{BusEvent{EventType: EvtAddress, Value1: 0x78, Seq: 2}, "#2 ADDRESS 0x78"},
		{BusEvent{EventType: EvtReceive, Value1: 0xAB, Value2: 3}, "#0 RECEIVE 0xab [3]"},
		{BusEvent{EventType: EvtFault, Value1: uint8(FaultDataNACK), Value2: uint8(StateSending)}, "#0 FAULT! data nack entering sending"},
		{BusEvent{EventType: EvtSessionFault, Value1: uint8(FaultMissingStop), Value2: 9}, "#0 SESSION_FAULT! missing stop at step 9"},
	}
	for _, tt := range tests {
		if got := tt.evt.String(); got != tt.want {
			t.Errorf("Expected %q, got %q", tt.want, got)
		}
	}
}

func TestDumpBusEvents(t *testing.T) {
	ClearBusEvents()
	defer SetDebugWriter(func(string) {})

	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	RecordBusEvent(EvtStop, 0, 0)
	DumpBusEvents()

	if len(lines) != 3 || !strings.Contains(lines[1], "STOP") {
		t.Errorf("Dump produced %q", lines)
	}

	SetDebugEnabled(false)
	DebugPrintln("hidden")
	SetDebugEnabled(true)
	DebugPrintln("shown")
	SetDebugEnabled(false)
	if lines[len(lines)-1] != "shown" || len(lines) != 4 {
		t.Errorf("DebugPrintln gating broken: %q", lines)
	}
}
