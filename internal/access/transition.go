package access

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/apperror"
)

type Transition struct {
	From []string
	To   string
}

// TransitionTable lists the legal one-way transitions of an entity together
// with its lifecycle order, which is used to word rejections.
type TransitionTable struct {
	Order []string
	Moves map[Operation]Transition
}

// Assert returns the transition for op if current is one of its required
// states, otherwise InvalidState.
func (t TransitionTable) Assert(op Operation, current string) (Transition, error) {
	tr, ok := t.Moves[op]
	if !ok {
		return Transition{}, fmt.Errorf("access: no transition registered for %q", op)
	}
	if lo.Contains(tr.From, current) {
		return tr, nil
	}
	return Transition{}, apperror.InvalidState(tr.From, current, t.rejection(tr, current))
}

func (t TransitionTable) rejection(tr Transition, current string) string {
	at := lo.IndexOf(t.Order, current)
	target := lo.IndexOf(t.Order, tr.To)
	if at >= 0 && target >= 0 && at >= target {
		return "already " + humanize(current)
	}
	return fmt.Sprintf("must be %s", strings.Join(lo.Map(tr.From, func(s string, _ int) string {
		return humanize(s)
	}), " or "))
}

func humanize(status string) string {
	return strings.ToLower(strings.ReplaceAll(status, "_", " "))
}
