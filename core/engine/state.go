package engine

import (
	"encoding/hex"
	"fmt"

	"predmarket/engine/config"
	"predmarket/engine/core/breaker"
	"predmarket/engine/core/coverage"
	"predmarket/engine/core/eventlog"
	"predmarket/engine/core/fees"
	"predmarket/engine/core/fixedpoint"
	"predmarket/engine/core/liquidation"
	"predmarket/engine/core/market"
	"predmarket/engine/core/position"
	"predmarket/engine/core/types"
	"predmarket/engine/native/common"
	"predmarket/engine/native/params"
)

// State holds every globally visible mutable the engine reasons about
// (spec §5: "vault, coverage, and the per-market queue are the only
// globally visible mutables"). A single Engine owns exactly one State;
// sharding by market id means running independent Engine/State pairs with
// no shared pointers between them (spec §5).
//
// Oracle feeds, liquidation queues, and the breaker registry are NOT
// duplicated here: they live on the Engine's *scheduler.Scheduler (which
// owns per-slot housekeeping over them), and State.Markets is the very map
// handed to the scheduler, so both see the same lifecycle transitions.
type State struct {
	Markets   map[types.MarketID]*market.Market
	Verses    *market.VerseTree
	Positions map[types.PositionID]*position.Position
	Arena     *position.Arena
	Chains    map[types.ChainID]*position.Chain
	SlotCaps  map[types.MarketID]*liquidation.SlotCap
	Coverage  *coverage.Accountant
	Fees      *fees.Schedule
	Log       *eventlog.Log
	Balances    map[[20]byte]fixedpoint.F64
	Admins      map[[20]byte]bool
	QuotaPolicy common.Quota

	globalHalt      bool
	pausedVerses    map[string]bool
	cascadeMonitors map[types.VerseID]*breaker.CascadeMonitor
	quotas          map[string]common.QuotaNow

	// params is the raw backing store for native/params.Store: every
	// governance-controlled parameter (pause toggles, quota overrides)
	// round-trips through ParamStoreSet/ParamStoreGet as JSON, the same
	// contract the teacher's ParamStore wrapper expects from a state
	// manager.
	params     map[string][]byte
	ParamStore *params.Store
}

// NewState constructs an empty engine state with the given admin set and
// maker-rebate fee schedule.
func NewState(admins [][20]byte, makerRebateBp uint32, quotaPolicy common.Quota) (*State, error) {
	schedule, err := fees.NewSchedule(makerRebateBp)
	if err != nil {
		return nil, err
	}
	adminSet := make(map[[20]byte]bool, len(admins))
	for _, a := range admins {
		adminSet[a] = true
	}
	s := &State{
		Markets:         make(map[types.MarketID]*market.Market),
		Verses:          market.NewVerseTree(),
		Positions:       make(map[types.PositionID]*position.Position),
		Arena:           position.NewArena(),
		Chains:          make(map[types.ChainID]*position.Chain),
		SlotCaps:        make(map[types.MarketID]*liquidation.SlotCap),
		Coverage:        coverage.New(),
		Fees:            schedule,
		Log:             eventlog.New(),
		Balances:        make(map[[20]byte]fixedpoint.F64),
		Admins:          adminSet,
		QuotaPolicy:     quotaPolicy,
		pausedVerses:    make(map[string]bool),
		cascadeMonitors: make(map[types.VerseID]*breaker.CascadeMonitor),
		quotas:          make(map[string]common.QuotaNow),
		params:          make(map[string][]byte),
	}
	s.ParamStore = params.NewStore(s)
	return s, nil
}

// cascadeMonitorFor lazily creates the per-verse liquidation-cascade
// monitor used to detect spec §4.I's "10 liquidations in 10 slots" cascade
// condition.
func (s *State) cascadeMonitorFor(v types.VerseID) *breaker.CascadeMonitor {
	m, ok := s.cascadeMonitors[v]
	if !ok {
		m = &breaker.CascadeMonitor{}
		s.cascadeMonitors[v] = m
	}
	return m
}

// IsPaused implements native/common's PauseView capability (spec's
// SUPPLEMENTAL FEATURES: generalizing the single halt_flag into a
// per-module pause check), where "module" is either the literal string
// "global" or a verse id's hex encoding.
func (s *State) IsPaused(module string) bool {
	if s.globalHalt {
		return true
	}
	return s.pausedVerses[module]
}

// SetGlobalHalt sets or clears the engine-wide halt flag (spec §7: "a
// coverage-invariant violation sets the global halt_flag, restricting all
// markets to withdrawals/closes until admin resume"), persisting the toggle
// through ParamStore so a restart recovers it rather than silently
// reopening every market.
func (s *State) SetGlobalHalt(on bool) {
	s.globalHalt = on
	_ = s.persistPauses()
}

// GlobalHalted reports the current global halt flag.
func (s *State) GlobalHalted() bool { return s.globalHalt }

func verseModuleKey(v types.VerseID) string { return hex.EncodeToString(v[:]) }

// PauseVerse marks an entire verse paused, independent of the global flag.
func (s *State) PauseVerse(v types.VerseID) {
	s.pausedVerses[verseModuleKey(v)] = true
	_ = s.persistPauses()
}

// ResumeVerse clears a verse-scoped pause.
func (s *State) ResumeVerse(v types.VerseID) {
	delete(s.pausedVerses, verseModuleKey(v))
	_ = s.persistPauses()
}

func (s *State) isAuthority(caller [20]byte) bool { return s.Admins[caller] }

// persistPauses mirrors the in-memory halt flags into ParamStore (spec's
// SUPPLEMENTAL FEATURES wiring: native/params persists exactly the pause
// surface native/common.PauseView reads).
func (s *State) persistPauses() error {
	if s.ParamStore == nil {
		return nil
	}
	verses := make([]string, 0, len(s.pausedVerses))
	for v := range s.pausedVerses {
		verses = append(verses, v)
	}
	return s.ParamStore.SetPauses(config.Pauses{Global: s.globalHalt, Verses: verses})
}

// RestorePauses hydrates the in-memory halt flags from a previously
// persisted parameter blob (e.g. loaded from a snapshot at process start),
// the inverse of persistPauses.
func (s *State) RestorePauses() error {
	if s.ParamStore == nil {
		return nil
	}
	pauses, err := s.ParamStore.Pauses()
	if err != nil {
		return err
	}
	s.globalHalt = pauses.Global
	s.pausedVerses = make(map[string]bool, len(pauses.Verses))
	for _, v := range pauses.Verses {
		s.pausedVerses[v] = true
	}
	return nil
}

// ParamStoreSet implements native/params.StoreState.
func (s *State) ParamStoreSet(name string, value []byte) error {
	if s.params == nil {
		s.params = make(map[string][]byte)
	}
	s.params[name] = append([]byte(nil), value...)
	return nil
}

// ParamStoreGet implements native/params.StoreState.
func (s *State) ParamStoreGet(name string) ([]byte, bool, error) {
	raw, ok := s.params[name]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), raw...), true, nil
}

// quotaKey composes the (module, epoch, address) tuple native/common.Store
// keys its counters by into one map key.
func quotaKey(module string, epoch uint64, addr []byte) string {
	return fmt.Sprintf("%s/%d/%x", module, epoch, addr)
}

// Load implements native/common.Store.
func (s *State) Load(module string, epoch uint64, addr []byte) (common.QuotaNow, bool, error) {
	v, ok := s.quotas[quotaKey(module, epoch, addr)]
	return v, ok, nil
}

// Save implements native/common.Store.
func (s *State) Save(module string, epoch uint64, addr []byte, counters common.QuotaNow) error {
	if s.quotas == nil {
		s.quotas = make(map[string]common.QuotaNow)
	}
	s.quotas[quotaKey(module, epoch, addr)] = counters
	return nil
}
