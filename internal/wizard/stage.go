package wizard

import (
	"fmt"
	"strconv"
	"strings"
)

// Stage is one step of the purchase flow.
type Stage int

const (
	StageCreate Stage = iota
	StagePreview
	StageSchedule
	StageConfirm
)

var stageNames = [...]string{"Create", "Preview", "Schedule", "Confirm"}

// Stages returns the flow in order.
func Stages() []Stage {
	return []Stage{StageCreate, StagePreview, StageSchedule, StageConfirm}
}

// First and Last bound the flow.
const (
	First = StageCreate
	Last  = StageConfirm
)

// Valid reports whether s belongs to the flow.
func (s Stage) Valid() bool {
	return s >= First && s <= Last
}

// String returns the display name of the stage.
func (s Stage) String() string {
	if !s.Valid() {
		return "Stage(" + strconv.Itoa(int(s)) + ")"
	}
	return stageNames[s]
}

// Index is the zero-based position of the stage in the flow.
func (s Stage) Index() int {
	return int(s)
}

// ParseStage accepts a stage name ("preview") or a one-based position ("2").
func ParseStage(v string) (Stage, error) {
	v = strings.TrimSpace(v)
	if n, err := strconv.Atoi(v); err == nil {
		s := Stage(n - 1)
		if !s.Valid() {
			return 0, fmt.Errorf("%w: %q", ErrInvalidStageTarget, v)
		}
		return s, nil
	}
	for i, name := range stageNames {
		if strings.EqualFold(name, v) {
			return Stage(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidStageTarget, v)
}
