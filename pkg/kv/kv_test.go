package kv

import "testing"

func TestKindString(t *testing.T) {
	if Add.String() != "ADD" {
		t.Fatalf("expected Add.String() == ADD, got %q", Add.String())
	}
	if Delete.String() != "DELETE" {
		t.Fatalf("expected Delete.String() == DELETE, got %q", Delete.String())
	}
}
