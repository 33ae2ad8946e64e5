package position

import "predmarket/engine/core/errors"

// StepType identifies the role a chain leg plays; unwind order is always
// Stake -> Liquidate -> Borrow regardless of creation order (spec §3, §4.F).
type StepType int

const (
	StepStake StepType = iota
	StepLiquidate
	StepBorrow
)

// unwindRank orders StepType for sorting legs into unwind order.
func (s StepType) unwindRank() int {
	switch s {
	case StepStake:
		return 0
	case StepLiquidate:
		return 1
	case StepBorrow:
		return 2
	default:
		return 3
	}
}

const (
	minChainLegs = 2
	maxChainLegs = 8
)

// Leg is one entry in the leg arena. Legs never hold a back-pointer to their
// owning chain (spec §9 design notes: "no back-pointers from leg to
// chain"); a leg is reached only by index, via the owning Chain's LegIndices.
type Leg struct {
	Step     StepType
	Position *Position
}

// Chain is an ordered sequence of 2-8 legs across markets (spec §3). It
// holds indices into a caller-supplied leg arena rather than leg pointers
// directly, matching the "arena of leg records plus an owning chain record
// holding a fixed-size vector of leg indices" design note.
type Chain struct {
	LegIndices []int
	Closed     bool
}

// Arena owns the flat slice of legs referenced by one or more Chains.
type Arena struct {
	legs []Leg
}

// NewArena constructs an empty leg arena.
func NewArena() *Arena {
	return &Arena{}
}

// AddLeg appends a leg to the arena and returns its index.
func (a *Arena) AddLeg(step StepType, p *Position) int {
	a.legs = append(a.legs, Leg{Step: step, Position: p})
	return len(a.legs) - 1
}

// Leg returns the leg at the given arena index.
func (a *Arena) Leg(index int) (*Leg, error) {
	if index < 0 || index >= len(a.legs) {
		return nil, errors.ErrChainLegBounds
	}
	return &a.legs[index], nil
}

// NewChain validates the leg count (2-8, spec §3) and constructs a Chain
// over the given arena indices, in creation order. Creation order is
// preserved for bookkeeping; UnwindOrder computes the liquidation traversal
// order separately.
func NewChain(legIndices []int) (*Chain, error) {
	if len(legIndices) < minChainLegs || len(legIndices) > maxChainLegs {
		return nil, errors.ErrChainLegBounds
	}
	indices := make([]int, len(legIndices))
	copy(indices, legIndices)
	return &Chain{LegIndices: indices}, nil
}

// UnwindOrder returns the chain's leg indices sorted into the fixed
// Stake -> Liquidate -> Borrow unwind order, irrespective of creation order
// (spec §4.F, §9). Ties within the same step type preserve creation order
// (a stable sort).
func (c *Chain) UnwindOrder(a *Arena) ([]int, error) {
	ordered := make([]int, len(c.LegIndices))
	copy(ordered, c.LegIndices)

	// Simple stable insertion sort keyed by unwind rank: chain lengths are
	// bounded at 8, so an O(n^2) sort is both sufficient and deterministic
	// without depending on sort.Slice's documented-but-unenforced stability.
	for i := 1; i < len(ordered); i++ {
		j := i
		for j > 0 {
			legA, err := a.Leg(ordered[j-1])
			if err != nil {
				return nil, err
			}
			legB, err := a.Leg(ordered[j])
			if err != nil {
				return nil, err
			}
			if legA.Step.unwindRank() <= legB.Step.unwindRank() {
				break
			}
			ordered[j-1], ordered[j] = ordered[j], ordered[j-1]
			j--
		}
	}
	return ordered, nil
}

// AllClosed reports whether every leg's underlying position has closed,
// which is when the chain itself transitions to Closed (spec §3).
func (c *Chain) AllClosed(a *Arena) (bool, error) {
	for _, idx := range c.LegIndices {
		leg, err := a.Leg(idx)
		if err != nil {
			return false, err
		}
		if leg.Position == nil || !leg.Position.Closed {
			return false, nil
		}
	}
	return true, nil
}
