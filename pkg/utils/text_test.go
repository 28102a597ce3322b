package utils

import "testing"

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Errorf("Truncate short = %q", got)
	}
	if got := Truncate("hello world", 5); got != "hello..." {
		t.Errorf("Truncate long = %q", got)
	}
	if got := Truncate("hello", 0); got != "hello" {
		t.Errorf("Truncate maxLen 0 = %q", got)
	}
}
