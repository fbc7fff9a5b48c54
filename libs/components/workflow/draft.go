package workflow

import (
	"fmt"
	"slices"
)

// StepField addresses one editable field of a StepDraft. Nested fields use a
// dotted path.
type StepField string

const (
	FieldID                  StepField = "id"
	FieldName                StepField = "name"
	FieldDescription         StepField = "description"
	FieldType                StepField = "type"
	FieldAssignedDepartment  StepField = "assignedDepartment"
	FieldAssignmentMethod    StepField = "assignmentMethod"
	FieldTimeout             StepField = "timeout"
	FieldNextSteps           StepField = "nextSteps"
	FieldOnComplete          StepField = "conditions.onComplete"
	FieldOnReject            StepField = "conditions.onReject"
	FieldOnTimeout           StepField = "conditions.onTimeout"
	FieldRequiredDocuments   StepField = "requiredDocuments"
	FieldInspectionChecklist StepField = "inspectionChecklist"
	FieldPaymentAmount       StepField = "paymentDetails.amount"
	FieldPaymentCurrency     StepField = "paymentDetails.currency"
	FieldPaymentMethods      StepField = "paymentDetails.paymentMethods"
)

var listFields = map[StepField]bool{
	FieldNextSteps:           true,
	FieldRequiredDocuments:   true,
	FieldInspectionChecklist: true,
	FieldPaymentMethods:      true,
}

var stringFields = map[StepField]bool{
	FieldID:                 true,
	FieldName:               true,
	FieldDescription:        true,
	FieldType:               true,
	FieldAssignedDepartment: true,
	FieldAssignmentMethod:   true,
	FieldTimeout:            true,
	FieldOnComplete:         true,
	FieldOnReject:           true,
	FieldOnTimeout:          true,
	FieldPaymentAmount:      true,
	FieldPaymentCurrency:    true,
}

// ParseStepField validates a raw path against the known field set.
func ParseStepField(path string) (StepField, error) {
	f := StepField(path)
	if !listFields[f] && !stringFields[f] {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, path)
	}
	return f, nil
}

// StepDraft is the working copy of a step while it is being authored.
type StepDraft struct {
	ID                  string           `json:"id"`
	Name                string           `json:"name" validate:"required"`
	Description         string           `json:"description"`
	Type                StepType         `json:"type" validate:"required,step_type"`
	AssignedDepartment  string           `json:"assignedDepartment" validate:"required"`
	AssignmentMethod    AssignmentMethod `json:"assignmentMethod" validate:"omitempty,assignment_method"`
	Timeout             string           `json:"timeout"`
	NextSteps           []string         `json:"nextSteps"`
	Conditions          Conditions       `json:"conditions"`
	RequiredDocuments   []string         `json:"requiredDocuments"`
	InspectionChecklist []string         `json:"inspectionChecklist"`
	PaymentDetails      PaymentDetails   `json:"paymentDetails"`
}

// NewStepDraft returns the defaults used when starting a new step. The
// department defaults to the first available one.
func NewStepDraft(departments []string) StepDraft {
	dept := ""
	if len(departments) > 0 {
		dept = departments[0]
	}
	return StepDraft{
		Type:               StepReview,
		AssignedDepartment: dept,
		AssignmentMethod:   AssignHead,
		Timeout:            "1 day",
		NextSteps:          []string{},
		Conditions: Conditions{
			OnComplete: "",
			OnReject:   OutcomeReject,
			OnTimeout:  OutcomeCancel,
		},
		RequiredDocuments:   []string{},
		InspectionChecklist: []string{},
		PaymentDetails:      PaymentDetails{PaymentMethods: []string{}},
	}
}

// DraftFromStep copies an existing step into a draft for editing.
func DraftFromStep(s Step) StepDraft {
	s = s.Clone()
	d := StepDraft{
		ID:                  s.ID,
		Name:                s.Name,
		Description:         s.Description,
		Type:                s.Type,
		AssignedDepartment:  s.AssignedDepartment,
		AssignmentMethod:    s.AssignmentMethod,
		Timeout:             s.Timeout,
		NextSteps:           s.NextSteps,
		Conditions:          s.Conditions,
		RequiredDocuments:   s.RequiredDocuments,
		InspectionChecklist: s.InspectionChecklist,
	}
	if s.PaymentDetails != nil {
		d.PaymentDetails = *s.PaymentDetails
	}
	return d
}

// Set assigns value to the field at path. Only the shape of the value is
// checked; required fields are enforced at commit time.
func (d *StepDraft) Set(field StepField, value any) error {
	if listFields[field] {
		list, ok := asStrings(value)
		if !ok {
			return fmt.Errorf("draft field %s: expected a list of strings, got %T", field, value)
		}
		switch field {
		case FieldNextSteps:
			d.NextSteps = list
		case FieldRequiredDocuments:
			d.RequiredDocuments = list
		case FieldInspectionChecklist:
			d.InspectionChecklist = list
		case FieldPaymentMethods:
			d.PaymentDetails.PaymentMethods = list
		}
		return nil
	}

	if !stringFields[field] {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	s, ok := asString(value)
	if !ok {
		return fmt.Errorf("draft field %s: expected a string, got %T", field, value)
	}

	switch field {
	case FieldID:
		d.ID = s
	case FieldName:
		d.Name = s
	case FieldDescription:
		d.Description = s
	case FieldType:
		d.Type = StepType(s)
	case FieldAssignedDepartment:
		d.AssignedDepartment = s
	case FieldAssignmentMethod:
		d.AssignmentMethod = AssignmentMethod(s)
	case FieldTimeout:
		d.Timeout = s
	case FieldOnComplete:
		d.Conditions.OnComplete = s
	case FieldOnReject:
		d.Conditions.OnReject = s
	case FieldOnTimeout:
		d.Conditions.OnTimeout = s
	case FieldPaymentAmount:
		d.PaymentDetails.Amount = s
	case FieldPaymentCurrency:
		d.PaymentDetails.Currency = s
	}
	return nil
}

// build assembles the final step. Document and checklist lists are kept only
// when non-empty; payment details only for PAYMENT steps.
func (d StepDraft) build(id string) Step {
	s := Step{
		ID:                 id,
		Name:               d.Name,
		Description:        d.Description,
		Type:               d.Type,
		AssignedDepartment: d.AssignedDepartment,
		AssignmentMethod:   d.AssignmentMethod,
		Timeout:            d.Timeout,
		NextSteps:          slices.Clone(d.NextSteps),
		Conditions:         d.Conditions,
	}
	if s.NextSteps == nil {
		s.NextSteps = []string{}
	}
	if len(d.RequiredDocuments) > 0 {
		s.RequiredDocuments = slices.Clone(d.RequiredDocuments)
	}
	if len(d.InspectionChecklist) > 0 {
		s.InspectionChecklist = slices.Clone(d.InspectionChecklist)
	}
	if d.Type == StepPayment {
		pd := d.PaymentDetails
		pd.PaymentMethods = slices.Clone(d.PaymentDetails.PaymentMethods)
		s.PaymentDetails = &pd
	}
	return s
}

func asString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case StepType:
		return string(t), true
	case AssignmentMethod:
		return string(t), true
	default:
		return "", false
	}
}

func asStrings(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return slices.Clone(t), true
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	case nil:
		return []string{}, true
	default:
		return nil, false
	}
}
