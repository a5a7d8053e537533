package pricehistory

import "testing"

func TestMonotoneTimestampRewrite(t *testing.T) {
	r := NewRing(10)
	r.Add(1, 10)
	r.Add(2, 10)
	r.Add(3, 5)

	all := r.All()
	want := []int64{10, 11, 12}
	if len(all) != 3 {
		t.Fatalf("expected 3 ticks, got %d", len(all))
	}
	for i, tick := range all {
		if tick.Timestamp != want[i] {
			t.Errorf("tick %d: expected ts %d, got %d", i, want[i], tick.Timestamp)
		}
	}
}

func TestRingDropsOldestWhenFull(t *testing.T) {
	r := NewRing(3)
	r.Add(1, 1)
	r.Add(2, 2)
	r.Add(3, 3)
	r.Add(4, 4)

	all := r.All()
	if len(all) != 3 {
		t.Fatalf("expected capacity-bounded length 3, got %d", len(all))
	}
	if all[0].Price != 2 {
		t.Errorf("expected oldest tick dropped, got price %v first", all[0].Price)
	}
	if all[2].Price != 4 {
		t.Errorf("expected newest tick last, got price %v", all[2].Price)
	}
}

func TestLastAndLastN(t *testing.T) {
	r := NewRing(5)
	if _, ok := r.Last(); ok {
		t.Fatal("expected no last tick on empty ring")
	}
	for i := int64(1); i <= 5; i++ {
		r.Add(float64(i), i)
	}
	last, ok := r.Last()
	if !ok || last.Price != 5 {
		t.Fatalf("expected last tick price 5, got %+v", last)
	}
	n2 := r.LastN(2)
	if len(n2) != 2 || n2[0].Price != 4 || n2[1].Price != 5 {
		t.Fatalf("unexpected LastN(2): %+v", n2)
	}
	if got := r.LastN(100); len(got) != 5 {
		t.Fatalf("LastN clamp failed, got %d entries", len(got))
	}
}

func TestStrictlyIncreasingAfterFirstTick(t *testing.T) {
	r := NewRing(100)
	prev := int64(-1 << 62)
	for i := 0; i < 50; i++ {
		ts := int64(i % 5) // frequently non-increasing input
		r.Add(float64(i), ts)
		tick, _ := r.Last()
		if tick.Timestamp <= prev {
			t.Fatalf("timestamp not strictly increasing: prev=%d cur=%d", prev, tick.Timestamp)
		}
		prev = tick.Timestamp
	}
}
