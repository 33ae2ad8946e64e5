package params

import (
	"bytes"
	"encoding/json"
	"fmt"

	"predmarket/engine/config"
)

// StoreState captures the subset of state manager capabilities required by the
// parameter helpers.
type StoreState interface {
	ParamStoreSet(name string, value []byte) error
	ParamStoreGet(name string) ([]byte, bool, error)
}

// Store provides typed accessors for governance-controlled parameters.
type Store struct {
	state StoreState
}

// NewStore constructs a parameter store wrapper using the supplied state
// backend.
func NewStore(state StoreState) *Store {
	return &Store{state: state}
}

func (s *Store) withState() (StoreState, error) {
	if s == nil || s.state == nil {
		return nil, fmt.Errorf("params: state not configured")
	}
	return s.state, nil
}

// SetPauses persists the supplied pause configuration under the canonical
// parameter store key. Values are marshalled as JSON to align with governance
// proposal payloads.
func (s *Store) SetPauses(pauses config.Pauses) error {
	state, err := s.withState()
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(pauses)
	if err != nil {
		return fmt.Errorf("params: encode pauses: %w", err)
	}
	return state.ParamStoreSet(ParamsKeyPauses, encoded)
}

// Pauses loads the persisted pause configuration. When unset, a zero-value
// configuration is returned.
func (s *Store) Pauses() (config.Pauses, error) {
	state, err := s.withState()
	if err != nil {
		return config.Pauses{}, err
	}
	raw, ok, err := state.ParamStoreGet(ParamsKeyPauses)
	if err != nil {
		return config.Pauses{}, err
	}
	if !ok || len(bytes.TrimSpace(raw)) == 0 {
		return config.Pauses{}, nil
	}
	var pauses config.Pauses
	if err := json.Unmarshal(raw, &pauses); err != nil {
		return config.Pauses{}, fmt.Errorf("params: decode pauses: %w", err)
	}
	return pauses, nil
}

// SetQuota persists a governance-adjusted quota policy under the canonical
// parameter store key, letting an admin tune native/common's per-owner
// request/notional limits without a redeploy.
func (s *Store) SetQuota(quota config.Quota) error {
	state, err := s.withState()
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(quota)
	if err != nil {
		return fmt.Errorf("params: encode quota: %w", err)
	}
	return state.ParamStoreSet(ParamsKeyQuota, encoded)
}

// Quota loads the persisted quota policy if present.
func (s *Store) Quota() (config.Quota, error) {
	state, err := s.withState()
	if err != nil {
		return config.Quota{}, err
	}
	raw, ok, err := state.ParamStoreGet(ParamsKeyQuota)
	if err != nil {
		return config.Quota{}, err
	}
	if !ok || len(bytes.TrimSpace(raw)) == 0 {
		return config.Quota{}, nil
	}
	var quota config.Quota
	if err := json.Unmarshal(raw, &quota); err != nil {
		return config.Quota{}, fmt.Errorf("params: decode quota: %w", err)
	}
	return quota, nil
}
