package samples

import (
	"sync"
	"testing"
)

func TestStore_Append(t *testing.T) {
	s := New()
	for _, v := range []float64{3, 1, 2} {
		if !s.Append(v) {
			t.Fatalf("Append(%v) rejected on an open store", v)
		}
	}
	got := s.Snapshot()
	want := []float64{3, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("Snapshot() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Snapshot()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s := New()
	s.Append(1)
	snap := s.Snapshot()
	snap[0] = 100
	s.Append(2)
	if got := s.Snapshot(); got[0] != 1 || len(got) != 2 {
		t.Errorf("store was modified through a snapshot: %v", got)
	}
	if len(snap) != 1 {
		t.Errorf("snapshot grew after Append: %v", snap)
	}
}

func TestStore_Seal(t *testing.T) {
	s := New()
	s.Append(1)
	s.Seal()
	s.Seal()
	if !s.Sealed() {
		t.Fatalf("Sealed() = false after Seal()")
	}
	if s.Append(2) {
		t.Errorf("Append() accepted a sample after Seal()")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestStore_concurrentReaders(t *testing.T) {
	s := New()
	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			s.Append(float64(i))
		}
	}()
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prev := 0
			for i := 0; i < 200; i++ {
				n := len(s.Snapshot())
				if n < prev {
					t.Errorf("snapshot shrank from %d to %d", prev, n)
					return
				}
				prev = n
			}
		}()
	}
	wg.Wait()
	if s.Len() != 1000 {
		t.Errorf("Len() = %d, want 1000", s.Len())
	}
}
