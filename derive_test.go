package cell

import (
	"errors"
	"testing"
)

func TestDerive_SeedsFromSource(t *testing.T) {
	src := New(3)
	d := Derive(src, func(v int) int { return v * 2 })

	v, err := d.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	if v != 6 {
		t.Errorf("expected seed 6, got %d", v)
	}
}

func TestDerive_TracksSourceMutationsInOrder(t *testing.T) {
	src := New(1)
	d := Derive(src, func(v int) string {
		if v%2 == 0 {
			return "even"
		}
		return "odd"
	})

	src.Set(2) //nolint:errcheck
	src.Set(3) //nolint:errcheck
	src.Set(4) //nolint:errcheck

	v, _ := d.Value()
	if v != "even" {
		t.Errorf("expected derived value even, got %s", v)
	}

	got := d.History()
	want := []string{"odd", "even", "odd", "even"}
	if len(got) != len(want) {
		t.Fatalf("expected derived history %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("derived history[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestDerive_TracksRevertsToo(t *testing.T) {
	src := New(0)
	d := Derive(src, func(v int) int { return v + 10 })

	src.Set(5)    //nolint:errcheck
	src.Revert(0) //nolint:errcheck

	v, _ := d.Value()
	if v != 10 {
		t.Errorf("expected derived value 10 after source revert, got %d", v)
	}
}

func TestDerive_DisposedDerivedIgnoresSourceEmissions(t *testing.T) {
	src := New(1)
	d := Derive(src, func(v int) int { return v })
	d.Dispose()

	// Must not panic or error into the source's broadcast.
	if err := src.Set(2); err != nil {
		t.Fatalf("source Set failed after derived disposal: %v", err)
	}

	if _, err := d.Value(); !errors.Is(err, ErrDisposed) {
		t.Errorf("expected ErrDisposed from derived Value, got %v", err)
	}
}

func TestDerive_SourceDisposalStopsUpdatesButDerivedStaysLive(t *testing.T) {
	src := New(1)
	d := Derive(src, func(v int) int { return v * 10 })

	src.Dispose()

	v, err := d.Value()
	if err != nil {
		t.Fatalf("derived cell should stay live, got %v", err)
	}
	if v != 10 {
		t.Errorf("expected derived value 10, got %d", v)
	}

	if err := d.Set(42); err != nil {
		t.Errorf("derived cell should accept mutations after source disposal: %v", err)
	}
}

func TestDerive_NeverMissesEmissionsDuringConstruction(t *testing.T) {
	src := New(0)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 1; i <= 200; i++ {
			src.Set(i) //nolint:errcheck
		}
	}()

	// Construct while the source is being hammered. The seed covers every
	// emission before registration and the observer covers every one after,
	// so the derived cell always ends up at f of the source's final value.
	d := Derive(src, func(v int) int { return v * 2 })
	<-done

	sv, err := src.Value()
	if err != nil {
		t.Fatalf("source Value failed: %v", err)
	}
	dv, err := d.Value()
	if err != nil {
		t.Fatalf("derived Value failed: %v", err)
	}
	if dv != sv*2 {
		t.Errorf("derived cell missed an emission, got %d want %d", dv, sv*2)
	}
}

func TestDerive_FromDisposedSourceNeverUpdates(t *testing.T) {
	src := New(7)
	src.Dispose()

	d := Derive(src, func(v int) int { return v + 1 })
	v, err := d.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	if v != 8 {
		t.Errorf("expected seed 8 from last source value, got %d", v)
	}
}
