package ngff

import "testing"

func TestDebugEnabled(t *testing.T) {
	defer SetLogMode(DebugMode)
	tests := []struct {
		mode     ModeFlag
		expected bool
	}{
		{DebugMode, true},
		{InfoMode, false},
		{WarningMode, false},
		{SilentMode, false},
	}
	for _, tc := range tests {
		SetLogMode(tc.mode)
		if got := DebugEnabled(); got != tc.expected {
			t.Errorf("mode %d: expected DebugEnabled %t, got %t", tc.mode, tc.expected, got)
		}
	}
}
