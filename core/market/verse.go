package market

import (
	"predmarket/engine/core/errors"
	"predmarket/engine/core/types"
)

// maxVerseDepth bounds the verse grouping tree (spec §3: "hierarchical
// grouping, max depth 32").
const maxVerseDepth = 32

// VerseTree is the hierarchical verse grouping (spec §3). It holds only
// parent links; a verse's markets live in the engine's own market table,
// keyed by Market.Verse. Liquidation queues are kept per market, not per
// verse.
type VerseTree struct {
	parent map[types.VerseID]types.VerseID
	isRoot map[types.VerseID]bool
}

// NewVerseTree constructs an empty verse tree.
func NewVerseTree() *VerseTree {
	return &VerseTree{
		parent: make(map[types.VerseID]types.VerseID),
		isRoot: make(map[types.VerseID]bool),
	}
}

// AddRoot registers id as a top-level verse with no parent.
func (t *VerseTree) AddRoot(id types.VerseID) error {
	if t.known(id) {
		return errors.ErrVerseCycle
	}
	t.isRoot[id] = true
	return nil
}

func (t *VerseTree) known(id types.VerseID) bool {
	if t.isRoot[id] {
		return true
	}
	_, ok := t.parent[id]
	return ok
}

// AddChild attaches id under parent, rejecting the attachment if it would
// exceed the 32-level depth cap or introduce a cycle.
func (t *VerseTree) AddChild(id, parentID types.VerseID) error {
	if t.known(id) {
		return errors.ErrVerseCycle
	}
	if !t.known(parentID) {
		return errors.ErrUnknownVerse
	}
	depth, err := t.Depth(parentID)
	if err != nil {
		return err
	}
	if depth+1 >= maxVerseDepth {
		return errors.ErrVerseDepthExceeded
	}
	// A newly created id cannot already appear as one of parentID's
	// ancestors (it has no children yet), so no further cycle check is
	// needed beyond `known` above.
	t.parent[id] = parentID
	return nil
}

// Depth returns id's distance from its root (root itself is depth 0).
func (t *VerseTree) Depth(id types.VerseID) (int, error) {
	if !t.known(id) {
		return 0, errors.ErrUnknownVerse
	}
	depth := 0
	current := id
	for !t.isRoot[current] {
		next, ok := t.parent[current]
		if !ok {
			return 0, errors.ErrInternal
		}
		current = next
		depth++
		if depth > maxVerseDepth {
			return 0, errors.ErrVerseDepthExceeded
		}
	}
	return depth, nil
}

// Ancestors returns id's chain of ancestors from immediate parent to root,
// used to propagate a verse-scoped halt upward if an adapter ever needs to
// check whether an ancestor verse is itself halted.
func (t *VerseTree) Ancestors(id types.VerseID) ([]types.VerseID, error) {
	if !t.known(id) {
		return nil, errors.ErrUnknownVerse
	}
	var out []types.VerseID
	current := id
	for !t.isRoot[current] {
		next, ok := t.parent[current]
		if !ok {
			return nil, errors.ErrInternal
		}
		out = append(out, next)
		current = next
		if len(out) > maxVerseDepth {
			return nil, errors.ErrVerseDepthExceeded
		}
	}
	return out, nil
}
