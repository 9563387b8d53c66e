package mathx

import (
	"testing"
	"time"
)

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 3); got != 3 {
		t.Fatalf("Clamp high = %d", got)
	}
	if got := Clamp(-1, 3, 0); got != 0 {
		t.Fatalf("Clamp swapped bounds = %d", got)
	}
	if got := Clamp(50*time.Millisecond, 10*time.Millisecond, time.Second); got != 50*time.Millisecond {
		t.Fatalf("Clamp duration = %v", got)
	}
}

func TestBetween(t *testing.T) {
	if !Between(2024, 2000, 2099) || Between(2100, 2099, 2000) {
		t.Fatal("Between year range wrong")
	}
}

func TestOrDefault(t *testing.T) {
	if OrDefault(0, 10) != 10 || OrDefault(-3, 10) != 10 || OrDefault(4, 10) != 4 {
		t.Fatal("OrDefault")
	}
	if OrDefault(time.Duration(0), time.Second) != time.Second {
		t.Fatal("OrDefault duration")
	}
}
