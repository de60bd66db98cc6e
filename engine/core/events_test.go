package core

import "testing"

func TestEventRegisterAndFire(t *testing.T) {
	const code = SystemEventCode(0x100)
	defer EventShutdown()

	var first, second int
	a, b := &first, &second
	onFirst := func(_ SystemEventCode, _ interface{}, _ interface{}, ctx EventContext) bool {
		first += int(ctx.Data.U32[0])
		return false
	}
	onSecond := func(_ SystemEventCode, _ interface{}, _ interface{}, ctx EventContext) bool {
		second += int(ctx.Data.U32[0])
		return true
	}

	if !EventRegister(code, a, onFirst) || !EventRegister(code, b, onSecond) {
		t.Fatalf("EventRegister failed")
	}
	if EventRegister(code, a, onFirst) {
		t.Errorf("duplicate listener registered")
	}
	if EventRegister(maxMessageCodes, a, onFirst) || EventRegister(code, a, nil) {
		t.Errorf("invalid registration accepted")
	}

	ctx := EventContext{}
	ctx.Data.U32[0] = 3
	if !EventFire(code, nil, ctx) {
		t.Errorf("EventFire = false, want handled")
	}
	if first != 3 || second != 3 {
		t.Errorf("first/second = %d/%d, want 3/3", first, second)
	}

	if !EventUnregister(code, a) {
		t.Errorf("EventUnregister failed")
	}
	if EventUnregister(code, a) {
		t.Errorf("second EventUnregister succeeded")
	}
	EventFire(code, nil, ctx)
	if first != 3 || second != 6 {
		t.Errorf("after unregister first/second = %d/%d, want 3/6", first, second)
	}
}

func TestHandledEventStopsPropagation(t *testing.T) {
	const code = SystemEventCode(0x101)
	defer EventShutdown()

	var calls []string
	first, second := new(int), new(int)
	EventRegister(code, first, func(SystemEventCode, interface{}, interface{}, EventContext) bool {
		calls = append(calls, "first")
		return true
	})
	EventRegister(code, second, func(SystemEventCode, interface{}, interface{}, EventContext) bool {
		calls = append(calls, "second")
		return false
	})
	EventFire(code, nil, EventContext{})
	if len(calls) != 1 || calls[0] != "first" {
		t.Errorf("calls = %v, want [first]", calls)
	}
}
