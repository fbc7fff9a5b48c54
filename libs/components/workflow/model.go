package workflow

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LicenseType identifies the kind of license a template processes.
type LicenseType string

const (
	LicenseMillers    LicenseType = "MILLERS"
	LicenseBrownSugar LicenseType = "BROWN_SUGAR"
	LicenseWhiteSugar LicenseType = "WHITE_SUGAR"
	LicenseImporters  LicenseType = "IMPORTERS"
	LicenseExporters  LicenseType = "EXPORTERS"
	LicenseDealers    LicenseType = "DEALERS"
)

// LicenseCategory groups license types.
type LicenseCategory string

const (
	CategoryPermitAndLicense LicenseCategory = "PERMIT_AND_LICENSE"
	CategoryLetterOfComfort  LicenseCategory = "LETTER_OF_COMFORT"
)

// StepType classifies what happens in a step.
type StepType string

const (
	StepReview               StepType = "REVIEW"
	StepApproval             StepType = "APPROVAL"
	StepInspection           StepType = "INSPECTION"
	StepPayment              StepType = "PAYMENT"
	StepNotification         StepType = "NOTIFICATION"
	StepDecision             StepType = "DECISION"
	StepDocumentVerification StepType = "DOCUMENT_VERIFICATION"
	StepFieldVisit           StepType = "FIELD_VISIT"
	StepComplianceCheck      StepType = "COMPLIANCE_CHECK"
)

// AssignmentMethod controls how work in a step reaches an officer.
type AssignmentMethod string

const (
	AssignHead          AssignmentMethod = "HEAD_ASSIGNMENT"
	AssignOfficerPickup AssignmentMethod = "OFFICER_PICKUP"
	AssignAuto          AssignmentMethod = "AUTO_ASSIGN"
)

// Terminal outcome tokens usable in step conditions.
const (
	OutcomeComplete = "complete"
	OutcomeReject   = "reject"
	OutcomeCancel   = "cancel"
)

// Conditions routes a step's outcomes. Each value is either a step id or a
// terminal token such as "reject" or "cancel".
type Conditions struct {
	OnComplete string `json:"onComplete" yaml:"onComplete"`
	OnReject   string `json:"onReject" yaml:"onReject"`
	OnTimeout  string `json:"onTimeout" yaml:"onTimeout"`
}

// PaymentDetails is carried only by PAYMENT steps.
type PaymentDetails struct {
	Amount         string   `json:"amount" yaml:"amount"`
	Currency       string   `json:"currency" yaml:"currency"`
	PaymentMethods []string `json:"paymentMethods" yaml:"paymentMethods"`
}

// Step is one stage of a template. Steps only exist inside their template's
// ordered step list.
type Step struct {
	ID                  string           `json:"id" yaml:"id" validate:"required"`
	Name                string           `json:"name" yaml:"name" validate:"required"`
	Description         string           `json:"description" yaml:"description"`
	Type                StepType         `json:"type" yaml:"type" validate:"required,step_type"`
	AssignedDepartment  string           `json:"assignedDepartment" yaml:"assignedDepartment" validate:"required"`
	AssignmentMethod    AssignmentMethod `json:"assignmentMethod" yaml:"assignmentMethod" validate:"omitempty,assignment_method"`
	Timeout             string           `json:"timeout" yaml:"timeout"`
	NextSteps           []string         `json:"nextSteps" yaml:"nextSteps"`
	Conditions          Conditions       `json:"conditions" yaml:"conditions"`
	RequiredDocuments   []string         `json:"requiredDocuments,omitempty" yaml:"requiredDocuments,omitempty"`
	InspectionChecklist []string         `json:"inspectionChecklist,omitempty" yaml:"inspectionChecklist,omitempty"`
	PaymentDetails      *PaymentDetails  `json:"paymentDetails,omitempty" yaml:"paymentDetails,omitempty"`
}

// Clone returns a deep copy of the step.
func (s Step) Clone() Step {
	out := s
	out.NextSteps = slices.Clone(s.NextSteps)
	out.RequiredDocuments = slices.Clone(s.RequiredDocuments)
	out.InspectionChecklist = slices.Clone(s.InspectionChecklist)
	if s.PaymentDetails != nil {
		pd := *s.PaymentDetails
		pd.PaymentMethods = slices.Clone(s.PaymentDetails.PaymentMethods)
		out.PaymentDetails = &pd
	}
	return out
}

// Template is an authored, reusable definition of the ordered steps used to
// process one license type.
type Template struct {
	ID              string                    `json:"id" gorm:"type:uuid;primaryKey"`
	Name            string                    `json:"name" gorm:"not null" validate:"required"`
	Description     string                    `json:"description" validate:"required"`
	LicenseType     LicenseType               `json:"licenseType" gorm:"type:varchar(64);not null;index" validate:"required,license_type"`
	LicenseCategory LicenseCategory           `json:"licenseCategory" gorm:"type:varchar(64);not null" validate:"required,license_category"`
	LicenseID       *string                   `json:"licenseId" gorm:"type:uuid;index" validate:"omitempty,uuid"`
	Steps           datatypes.JSONSlice[Step] `json:"steps" gorm:"type:jsonb" validate:"min=1,dive"`
	IsActive        bool                      `json:"isActive" gorm:"index"`
	CreatedAt       time.Time                 `json:"createdAt"`
	UpdatedAt       time.Time                 `json:"updatedAt"`
}

// TableName pins the table name.
func (Template) TableName() string {
	return "workflow_templates"
}

// BeforeCreate assigns a UUID when missing.
func (t *Template) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Clone returns a deep copy of the template.
func (t Template) Clone() Template {
	out := t
	if t.LicenseID != nil {
		id := *t.LicenseID
		out.LicenseID = &id
	}
	out.Steps = cloneSteps(t.Steps)
	return out
}

// ToDTO converts a template into a response payload.
func (t Template) ToDTO() map[string]any {
	steps := []Step(t.Steps)
	if steps == nil {
		steps = []Step{}
	}
	payload := map[string]any{
		"id":              t.ID,
		"name":            t.Name,
		"description":     t.Description,
		"licenseType":     t.LicenseType,
		"licenseCategory": t.LicenseCategory,
		"steps":           steps,
		"isActive":        t.IsActive,
		"createdAt":       t.CreatedAt,
		"updatedAt":       t.UpdatedAt,
	}
	if t.LicenseID != nil {
		payload["licenseId"] = *t.LicenseID
	}
	return payload
}

func cloneSteps(steps []Step) []Step {
	if steps == nil {
		return nil
	}
	out := make([]Step, len(steps))
	for i, s := range steps {
		out[i] = s.Clone()
	}
	return out
}
