package idgen

import "testing"

func TestNew_Monotonic(t *testing.T) {
	if err := Init(3); err != nil {
		t.Fatalf("Init: %v", err)
	}
	prev := New()
	for i := 0; i < 1000; i++ {
		id := New()
		if id <= prev {
			t.Fatalf("id %d not greater than %d", id, prev)
		}
		prev = id
	}
}

func TestInit_OnlyFirstCallCounts(t *testing.T) {
	_ = Init(3)
	if err := Init(99999); err != nil {
		t.Fatalf("second Init should be a no op, got %v", err)
	}
}
