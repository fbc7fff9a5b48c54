package workflow

import (
	"fmt"
	"slices"
)

// Direction moves a step one position within its list.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// CommitStep validates draft and writes it into existing. With an empty
// editTargetID the step is appended; otherwise the step with that id is
// replaced in place. The returned slice is a new list; existing is not
// modified. A step id that is already used by another step is rejected.
func CommitStep(draft StepDraft, existing []Step, editTargetID string) ([]Step, Step, error) {
	if err := validateStruct(draft); err != nil {
		return nil, Step{}, err
	}

	id := draft.ID
	if id == "" {
		id = Slugify(draft.Name)
	}
	if id == "" {
		return nil, Step{}, &ValidationError{Fields: []FieldError{{Field: "name", Reason: "must contain letters or digits"}}}
	}

	target := -1
	if editTargetID != "" {
		target = indexOf(existing, editTargetID)
		if target < 0 {
			return nil, Step{}, fmt.Errorf("%w: %s", ErrStepNotFound, editTargetID)
		}
	}
	if i := indexOf(existing, id); i >= 0 && i != target {
		return nil, Step{}, fmt.Errorf("%w: %s", ErrDuplicateStepID, id)
	}

	step := draft.build(id)
	out := cloneSteps(existing)
	if target >= 0 {
		out[target] = step
	} else {
		out = append(out, step)
	}
	return out, step.Clone(), nil
}

// DeleteStep removes the step with id. References to it from other steps'
// nextSteps or conditions are left as they are; see DanglingReferences.
func DeleteStep(id string, existing []Step) ([]Step, error) {
	i := indexOf(existing, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrStepNotFound, id)
	}
	out := cloneSteps(existing)
	return slices.Delete(out, i, i+1), nil
}

// MoveStep shifts a step one position up or down. Moving the first step up,
// the last step down, or an unknown id returns the list unchanged.
func MoveStep(id string, dir Direction, existing []Step) []Step {
	out := cloneSteps(existing)
	i := indexOf(out, id)
	if i < 0 {
		return out
	}

	next := i
	switch dir {
	case DirectionUp:
		next = i - 1
	case DirectionDown:
		next = i + 1
	}
	if next < 0 || next >= len(out) || next == i {
		return out
	}

	step := out[i]
	out = slices.Delete(out, i, i+1)
	return slices.Insert(out, next, step)
}

// Reference is a pointer from one step to a step id that does not exist.
type Reference struct {
	StepID string `json:"stepId"`
	Field  string `json:"field"`
	Target string `json:"target"`
}

// DanglingReferences lists nextSteps and condition targets that name no
// step in steps. Terminal tokens and empty conditions are ignored.
func DanglingReferences(steps []Step) []Reference {
	ids := make(map[string]struct{}, len(steps))
	for _, s := range steps {
		ids[s.ID] = struct{}{}
	}

	var refs []Reference
	check := func(stepID, field, target string) {
		if target == "" || isTerminalOutcome(target) {
			return
		}
		if _, ok := ids[target]; !ok {
			refs = append(refs, Reference{StepID: stepID, Field: field, Target: target})
		}
	}
	for _, s := range steps {
		for _, next := range s.NextSteps {
			check(s.ID, "nextSteps", next)
		}
		check(s.ID, "conditions.onComplete", s.Conditions.OnComplete)
		check(s.ID, "conditions.onReject", s.Conditions.OnReject)
		check(s.ID, "conditions.onTimeout", s.Conditions.OnTimeout)
	}
	return refs
}

func isTerminalOutcome(token string) bool {
	switch token {
	case OutcomeComplete, OutcomeReject, OutcomeCancel:
		return true
	}
	return false
}

func indexOf(steps []Step, id string) int {
	return slices.IndexFunc(steps, func(s Step) bool { return s.ID == id })
}

// Editor holds the step list of one template draft together with the step
// currently being authored.
type Editor struct {
	steps       []Step
	departments []string

	draft   StepDraft
	target  string
	editing bool
}

// NewEditor starts an editor over a copy of steps.
func NewEditor(steps []Step, departments []string) *Editor {
	return &Editor{steps: cloneSteps(steps), departments: slices.Clone(departments)}
}

// Steps returns a copy of the current step list.
func (e *Editor) Steps() []Step {
	return cloneSteps(e.steps)
}

// Editing reports whether a step draft is open and, for updates, its target.
func (e *Editor) Editing() (open bool, targetID string) {
	return e.editing, e.target
}

// Draft returns the open draft.
func (e *Editor) Draft() StepDraft {
	return e.draft
}

// BeginCreate opens a fresh draft with default values.
func (e *Editor) BeginCreate() {
	e.draft = NewStepDraft(e.departments)
	e.target = ""
	e.editing = true
}

// BeginEdit opens a draft copied from the step with id.
func (e *Editor) BeginEdit(id string) error {
	i := indexOf(e.steps, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrStepNotFound, id)
	}
	e.draft = DraftFromStep(e.steps[i])
	e.target = id
	e.editing = true
	return nil
}

// Set updates a field of the open draft.
func (e *Editor) Set(field StepField, value any) error {
	if !e.editing {
		return fmt.Errorf("%w: no step draft open", ErrInvalidTransition)
	}
	return e.draft.Set(field, value)
}

// Commit writes the open draft into the list. On failure the draft stays
// open for correction.
func (e *Editor) Commit() (Step, error) {
	if !e.editing {
		return Step{}, fmt.Errorf("%w: no step draft open", ErrInvalidTransition)
	}
	steps, step, err := CommitStep(e.draft, e.steps, e.target)
	if err != nil {
		return Step{}, err
	}
	e.steps = steps
	e.Cancel()
	return step, nil
}

// Cancel discards the open draft.
func (e *Editor) Cancel() {
	e.draft = StepDraft{}
	e.target = ""
	e.editing = false
}

// Delete removes a step once the caller has confirmed it.
func (e *Editor) Delete(id string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	steps, err := DeleteStep(id, e.steps)
	if err != nil {
		return err
	}
	e.steps = steps
	if e.editing && e.target == id {
		e.Cancel()
	}
	return nil
}

// Move shifts a step up or down.
func (e *Editor) Move(id string, dir Direction) {
	e.steps = MoveStep(id, dir, e.steps)
}
