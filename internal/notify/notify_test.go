package notify

import (
	"testing"
	"time"
)

func TestSlot_PostAndCurrent(t *testing.T) {
	slot := NewSlot(time.Second)

	if slot.Current() != nil {
		t.Fatal("expected empty slot initially")
	}

	slot.Success("Slot reserved. Code: SMC-1234")
	msg := slot.Current()
	if msg == nil {
		t.Fatal("expected message after post")
	}
	if msg.Kind != KindSuccess {
		t.Errorf("expected kind %q, got %q", KindSuccess, msg.Kind)
	}
	if msg.Text != "Slot reserved. Code: SMC-1234" {
		t.Errorf("unexpected text %q", msg.Text)
	}
}

func TestSlot_ExpiresAfterTTL(t *testing.T) {
	slot := NewSlot(40 * time.Millisecond)
	slot.Error("Failed to reserve parking")

	if slot.Current() == nil {
		t.Fatal("expected message before expiry")
	}

	time.Sleep(100 * time.Millisecond)
	if slot.Current() != nil {
		t.Error("expected message cleared after TTL")
	}
}

func TestSlot_NewMessageSupersedes(t *testing.T) {
	slot := NewSlot(time.Second)
	slot.Success("first")
	slot.Error("second")

	msg := slot.Current()
	if msg == nil {
		t.Fatal("expected a message")
	}
	if msg.Text != "second" || msg.Kind != KindError {
		t.Errorf("expected newest message, got %+v", msg)
	}
}

func TestSlot_SupersededTimerDoesNotClearNewMessage(t *testing.T) {
	// 旧消息的到期定时器不得误清新消息
	slot := NewSlot(60 * time.Millisecond)
	slot.Success("first")

	time.Sleep(40 * time.Millisecond)
	slot.Success("second")

	// 此刻第一条消息的原到期点已过
	time.Sleep(40 * time.Millisecond)
	msg := slot.Current()
	if msg == nil {
		t.Fatal("expected second message to survive first message's deadline")
	}
	if msg.Text != "second" {
		t.Errorf("expected second message, got %q", msg.Text)
	}

	// 第二条消息照常到期
	time.Sleep(80 * time.Millisecond)
	if slot.Current() != nil {
		t.Error("expected second message to expire on its own schedule")
	}
}

func TestSlot_Clear(t *testing.T) {
	slot := NewSlot(time.Second)
	slot.Success("hello")
	slot.Clear()

	if slot.Current() != nil {
		t.Error("expected slot empty after clear")
	}
}

func TestSlot_ClearThenPost(t *testing.T) {
	slot := NewSlot(60 * time.Millisecond)
	slot.Success("first")

	time.Sleep(30 * time.Millisecond)
	slot.Clear()
	slot.Success("second")

	// 越过第一条消息的原到期点，第二条必须仍然存活
	time.Sleep(45 * time.Millisecond)
	msg := slot.Current()
	if msg == nil || msg.Text != "second" {
		t.Errorf("expected second message alive past first message's deadline, got %+v", msg)
	}
}
