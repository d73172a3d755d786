package wizard

import (
	"fmt"
	"slices"
	"sort"
	"unicode/utf8"
)

// State is the wizard position plus the user's accumulated choices. It is a
// value: transitions return a new State and never modify their input.
type State struct {
	Stage    Stage
	PlanID   string
	Script   string
	channels map[string]struct{}
}

// Rules holds the fixed constraints the transitions check against.
type Rules struct {
	Plans        []string
	DefaultPlan  string
	ScriptBudget int
}

// Initial returns the starting state: first stage, default plan, no channels.
func (r Rules) Initial(script string) (State, error) {
	if !slices.Contains(r.Plans, r.DefaultPlan) {
		return State{}, fmt.Errorf("%w: default plan %q", ErrInvalidPlanSelection, r.DefaultPlan)
	}
	if err := r.checkScript(script); err != nil {
		return State{}, err
	}
	return State{Stage: First, PlanID: r.DefaultPlan, Script: script}, nil
}

// HasChannel reports whether id is selected.
func (s State) HasChannel(id string) bool {
	_, ok := s.channels[id]
	return ok
}

// Channels returns the selected channel ids sorted.
func (s State) Channels() []string {
	out := make([]string, 0, len(s.channels))
	for id := range s.channels {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Advance moves to the next stage. It reports false at the last stage.
func Advance(s State) (State, bool) {
	if s.Stage >= Last {
		return s, false
	}
	s.Stage++
	return s, true
}

// Retreat moves to the previous stage. It reports false at the first stage.
func Retreat(s State) (State, bool) {
	if s.Stage <= First {
		return s, false
	}
	s.Stage--
	return s, true
}

// JumpTo moves directly to stage.
func JumpTo(s State, stage Stage) (State, error) {
	if !stage.Valid() {
		return s, fmt.Errorf("%w: %s", ErrInvalidStageTarget, stage)
	}
	s.Stage = stage
	return s, nil
}

// ToggleChannel flips membership of id in the selected channels.
func ToggleChannel(s State, id string) (State, error) {
	if id == "" {
		return s, ErrEmptyChannel
	}
	next := make(map[string]struct{}, len(s.channels)+1)
	for k := range s.channels {
		next[k] = struct{}{}
	}
	if _, ok := next[id]; ok {
		delete(next, id)
	} else {
		next[id] = struct{}{}
	}
	s.channels = next
	return s, nil
}

// ChoosePlan replaces the chosen plan with id if it is a known plan.
func (r Rules) ChoosePlan(s State, id string) (State, error) {
	if !slices.Contains(r.Plans, id) {
		return s, fmt.Errorf("%w: %q", ErrInvalidPlanSelection, id)
	}
	s.PlanID = id
	return s, nil
}

// SetScript replaces the script if it fits the budget.
func (r Rules) SetScript(s State, text string) (State, error) {
	if err := r.checkScript(text); err != nil {
		return s, err
	}
	s.Script = text
	return s, nil
}

// Remaining returns how many characters the budget still allows for text.
// Negative values mean text is over budget.
func (r Rules) Remaining(text string) int {
	return r.ScriptBudget - utf8.RuneCountInString(text)
}

func (r Rules) checkScript(text string) error {
	if n := utf8.RuneCountInString(text); n > r.ScriptBudget {
		return fmt.Errorf("%w: %d characters, budget is %d (%d over)", ErrScriptTooLong, n, r.ScriptBudget, n-r.ScriptBudget)
	}
	return nil
}
