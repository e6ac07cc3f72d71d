package log

import "testing"

func TestInit(t *testing.T) {
	for _, debug := range []bool{false, true} {
		if err := Init(debug); err != nil {
			t.Fatalf("Init(%v): %v", debug, err)
		}
		l := Logger()
		if l == nil {
			t.Fatal("Logger() = nil")
		}
		if got := l.Core().Enabled(-1); got != debug {
			t.Errorf("Init(%v): debug enabled = %v", debug, got)
		}
		Debugw("test message", "debug", debug)
		Sync()
	}
}
