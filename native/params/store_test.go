package params

import (
	"testing"

	"predmarket/engine/config"
)

type memState struct {
	values map[string][]byte
}

func newMemState() *memState { return &memState{values: map[string][]byte{}} }

func (m *memState) ParamStoreSet(name string, value []byte) error {
	m.values[name] = append([]byte(nil), value...)
	return nil
}

func (m *memState) ParamStoreGet(name string) ([]byte, bool, error) {
	v, ok := m.values[name]
	return v, ok, nil
}

func TestPausesRoundTrip(t *testing.T) {
	store := NewStore(newMemState())
	want := config.Pauses{Global: true, Verses: []string{"a", "b"}}
	if err := store.SetPauses(want); err != nil {
		t.Fatalf("SetPauses: %v", err)
	}
	got, err := store.Pauses()
	if err != nil {
		t.Fatalf("Pauses: %v", err)
	}
	if got.Global != want.Global || len(got.Verses) != len(want.Verses) {
		t.Fatalf("Pauses mismatch: got %+v want %+v", got, want)
	}
}

func TestPausesDefaultsToZeroValueWhenUnset(t *testing.T) {
	store := NewStore(newMemState())
	got, err := store.Pauses()
	if err != nil {
		t.Fatalf("Pauses: %v", err)
	}
	if got.Global || len(got.Verses) != 0 {
		t.Fatalf("expected zero-value Pauses, got %+v", got)
	}
}

func TestQuotaRoundTrip(t *testing.T) {
	store := NewStore(newMemState())
	want := config.Quota{MaxRequestsPerEpoch: 10, MaxNotionalPerEpoch: 1000, EpochSlots: 60}
	if err := store.SetQuota(want); err != nil {
		t.Fatalf("SetQuota: %v", err)
	}
	got, err := store.Quota()
	if err != nil {
		t.Fatalf("Quota: %v", err)
	}
	if got != want {
		t.Fatalf("Quota mismatch: got %+v want %+v", got, want)
	}
}

func TestStoreWithNilStateErrors(t *testing.T) {
	var store *Store
	if _, err := store.Pauses(); err == nil {
		t.Fatalf("expected an error from a nil Store")
	}
}
