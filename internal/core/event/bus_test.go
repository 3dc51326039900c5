package event

import "testing"

type started struct{ cycle uint64 }
type finished struct{ cycle uint64 }

func TestBusDeliversAfterSwap(t *testing.T) {
	b := NewBus()
	var got []uint64
	Subscribe(b, func(e started) { got = append(got, e.cycle) })
	Subscribe(b, func(e finished) { got = append(got, 100+e.cycle) })

	Emit(b, started{cycle: 1})
	Emit(b, finished{cycle: 1})
	if b.Pending() != 2 {
		t.Fatalf("pending = %d, want 2", b.Pending())
	}

	b.DispatchAll()
	if len(got) != 0 {
		t.Fatalf("events delivered before swap: %v", got)
	}

	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 2 || got[0] != 1 || got[1] != 101 {
		t.Fatalf("got %v, want [1 101]", got)
	}

	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 2 {
		t.Fatalf("events redelivered: %v", got)
	}
}
