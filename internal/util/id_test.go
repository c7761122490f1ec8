package util

import "testing"

func TestRequestIDKeepsSafeValues(t *testing.T) {
	if got := RequestID("abc-123_x.y"); got != "abc-123_x.y" {
		t.Fatalf("RequestID() = %q", got)
	}
}

func TestRequestIDReplacesUnsafeValues(t *testing.T) {
	for _, in := range []string{"", `a"b`, "line\nbreak", string(make([]byte, 65))} {
		got := RequestID(in)
		if got == in || len(got) != 16 {
			t.Errorf("RequestID(%q) = %q, want fresh 16-char id", in, got)
		}
	}
}

func TestNewIDLength(t *testing.T) {
	if got := NewID(4); len(got) != 8 {
		t.Fatalf("NewID(4) = %q", got)
	}
	if NewID(8) == NewID(8) {
		t.Fatal("ids should differ")
	}
}
