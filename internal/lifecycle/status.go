// Package lifecycle holds the repair status workflow and the timestamp effects of each transition.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/MikeMC777/taller-ecom/internal/patch"
)

type Status string

const (
	Pending    Status = "pending"
	InProgress Status = "in_progress"
	Completed  Status = "completed"
)

var All = []Status{Pending, InProgress, Completed}

func (s Status) Valid() bool {
	switch s {
	case Pending, InProgress, Completed:
		return true
	}
	return false
}

func Parse(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid repair status %q", s)
	}
	return st, nil
}

// Effects lists which repair timestamps a transition sets or clears.
// SetStart/ClearStart and SetFinish/ClearFinish are never both true.
type Effects struct {
	SetStart    bool
	ClearStart  bool
	SetFinish   bool
	ClearFinish bool
}

func (e Effects) None() bool {
	return !e.SetStart && !e.ClearStart && !e.SetFinish && !e.ClearFinish
}

// Derive never rejects a transition; every (prev, next) pair is legal.
// The start rule and the finish rule are evaluated independently.
func Derive(prev, next Status) Effects {
	var e Effects
	switch {
	case prev == Pending && next == InProgress:
		e.SetStart = true
	case prev != Pending && next == Pending:
		e.ClearStart = true
	}
	switch {
	case prev != Completed && next == Completed:
		e.SetFinish = true
	case prev == Completed && next != Completed:
		e.ClearFinish = true
	}
	return e
}

// OnCreate treats a new repair as coming from pending, whatever its initial status.
func OnCreate(initial Status) Effects {
	return Derive(Pending, initial)
}

const (
	StartColumn  = "start_date"
	FinishColumn = "finished_date"
)

// Apply folds the effects into fields so the status change and its timestamps land in one statement.
func (e Effects) Apply(fields *patch.Fields, now time.Time) {
	switch {
	case e.SetStart:
		fields.Set(StartColumn, now)
	case e.ClearStart:
		fields.Set(StartColumn, nil)
	}
	switch {
	case e.SetFinish:
		fields.Set(FinishColumn, now)
	case e.ClearFinish:
		fields.Set(FinishColumn, nil)
	}
}
