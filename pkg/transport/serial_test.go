package transport

import (
	"testing"
	"time"
)

func TestSerialNotConnected(t *testing.T) {
	s := NewSerial()

	if _, err := s.SendCommand([]byte(`{"T":105}`), time.Second); err == nil {
		t.Error("SendCommand without Connect should fail")
	}
	if err := s.SendRaw([]byte(`{"T":100}`)); err == nil {
		t.Error("SendRaw without Connect should fail")
	}
	if err := s.Disconnect(); err != nil {
		t.Errorf("Disconnect when not connected: %v", err)
	}
}
