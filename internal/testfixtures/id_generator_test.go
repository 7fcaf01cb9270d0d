package testfixtures

import "testing"

func TestIDGeneratorProducesSequentialIDs(t *testing.T) {
	gen := NewIDGenerator("req")
	if first, second := gen.Next(), gen.Next(); first != "req-1" || second != "req-2" {
		t.Fatalf("unexpected identifiers: %q, %q", first, second)
	}
	gen.Reset()
	if next := gen.NextFunc()(); next != "req-1" {
		t.Fatalf("expected req-1 after reset, got %q", next)
	}
}
