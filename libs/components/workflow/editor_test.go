package workflow

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stepsABC() []Step {
	return []Step{
		{ID: "a", Name: "A", Type: StepReview, AssignedDepartment: "Licensing"},
		{ID: "b", Name: "B", Type: StepApproval, AssignedDepartment: "Legal", NextSteps: []string{"c"}},
		{ID: "c", Name: "C", Type: StepNotification, AssignedDepartment: "Registry"},
	}
}

func ids(steps []Step) []string {
	out := make([]string, 0, len(steps))
	for _, s := range steps {
		out = append(out, s.ID)
	}
	return out
}

func TestNewStepDraftDefaults(t *testing.T) {
	d := NewStepDraft([]string{"Licensing", "Finance"})

	assert.Equal(t, StepReview, d.Type)
	assert.Equal(t, "Licensing", d.AssignedDepartment)
	assert.Equal(t, AssignHead, d.AssignmentMethod)
	assert.Equal(t, "1 day", d.Timeout)
	assert.Equal(t, Conditions{OnComplete: "", OnReject: "reject", OnTimeout: "cancel"}, d.Conditions)
	assert.Empty(t, d.NextSteps)
	assert.Empty(t, d.Name)

	assert.Empty(t, NewStepDraft(nil).AssignedDepartment)
}

func TestCommitStepDerivesIDFromName(t *testing.T) {
	d := NewStepDraft([]string{"Inspection"})
	d.Name = "Field Inspection"

	steps, step, err := CommitStep(d, nil, "")

	require.NoError(t, err)
	assert.Equal(t, "field_inspection", step.ID)
	assert.Equal(t, []string{"field_inspection"}, ids(steps))
}

func TestCommitStepDocumentVerificationScenario(t *testing.T) {
	d := StepDraft{Name: "Document Verification", Type: StepDocumentVerification, AssignedDepartment: "Legal"}

	_, step, err := CommitStep(d, nil, "")
	require.NoError(t, err)

	assert.Equal(t, "document_verification", step.ID)
	assert.Nil(t, step.PaymentDetails)

	raw, err := json.Marshal(step)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "paymentDetails")
	assert.NotContains(t, string(raw), "requiredDocuments")
}

func TestCommitStepKeepsPaymentDetailsForPaymentSteps(t *testing.T) {
	d := StepDraft{
		Name:               "Pay Fee",
		Type:               StepPayment,
		AssignedDepartment: "Finance",
		PaymentDetails:     PaymentDetails{Amount: "5000", Currency: "KES", PaymentMethods: []string{"Mpesa"}},
	}

	_, step, err := CommitStep(d, nil, "")
	require.NoError(t, err)

	require.NotNil(t, step.PaymentDetails)
	assert.Equal(t, PaymentDetails{Amount: "5000", Currency: "KES", PaymentMethods: []string{"Mpesa"}}, *step.PaymentDetails)
}

func TestCommitStepDropsPaymentDetailsForOtherTypes(t *testing.T) {
	d := StepDraft{
		Name:               "Review",
		Type:               StepReview,
		AssignedDepartment: "Finance",
		PaymentDetails:     PaymentDetails{Amount: "10"},
	}

	_, step, err := CommitStep(d, nil, "")
	require.NoError(t, err)
	assert.Nil(t, step.PaymentDetails)
}

func TestCommitStepIncludesNonEmptyLists(t *testing.T) {
	d := StepDraft{
		Name:                "Site Visit",
		Type:                StepFieldVisit,
		AssignedDepartment:  "Inspection",
		RequiredDocuments:   []string{"Title deed"},
		InspectionChecklist: []string{},
	}

	_, step, err := CommitStep(d, nil, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"Title deed"}, step.RequiredDocuments)
	assert.Nil(t, step.InspectionChecklist)
}

func TestCommitStepRequiresName(t *testing.T) {
	d := StepDraft{Type: StepReview, AssignedDepartment: "Licensing"}

	_, _, err := CommitStep(d, stepsABC(), "")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("name"))
	assert.False(t, verr.Has("type"))
}

func TestCommitStepRequiresTypeAndDepartment(t *testing.T) {
	_, _, err := CommitStep(StepDraft{Name: "X"}, nil, "")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("type"))
	assert.True(t, verr.Has("assignedDepartment"))
}

func TestCommitStepRejectsNameWithoutSlugCharacters(t *testing.T) {
	_, _, err := CommitStep(StepDraft{Name: "???", Type: StepReview, AssignedDepartment: "L"}, nil, "")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("name"))
}

func TestCommitStepReplacesInPlaceWhenEditing(t *testing.T) {
	existing := stepsABC()
	d := DraftFromStep(existing[1])
	d.Name = "B renamed"

	steps, step, err := CommitStep(d, existing, "b")

	require.NoError(t, err)
	assert.Equal(t, "b", step.ID)
	assert.Equal(t, []string{"a", "b", "c"}, ids(steps))
	assert.Equal(t, "B renamed", steps[1].Name)
	assert.Equal(t, "B", existing[1].Name, "input list must not change")
}

func TestCommitStepRejectsDuplicateDerivedID(t *testing.T) {
	existing := []Step{{ID: "site_visit", Name: "Site Visit", Type: StepFieldVisit, AssignedDepartment: "Inspection"}}
	d := StepDraft{Name: "Site-Visit!", Type: StepFieldVisit, AssignedDepartment: "Inspection"}

	steps, _, err := CommitStep(d, existing, "")

	assert.ErrorIs(t, err, ErrDuplicateStepID)
	assert.Nil(t, steps)
}

func TestCommitStepRejectsUnknownEditTarget(t *testing.T) {
	d := StepDraft{ID: "z", Name: "Z", Type: StepReview, AssignedDepartment: "L"}

	_, _, err := CommitStep(d, stepsABC(), "z")

	assert.ErrorIs(t, err, ErrStepNotFound)
}

func TestDeleteStepRemovesOnlyTarget(t *testing.T) {
	steps, err := DeleteStep("b", stepsABC())

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids(steps))
	assert.Equal(t, "A", steps[0].Name)
	assert.Equal(t, "C", steps[1].Name)

	_, err = DeleteStep("missing", stepsABC())
	assert.ErrorIs(t, err, ErrStepNotFound)
}

func TestMoveStepUpSwapsWithPrevious(t *testing.T) {
	steps := stepsABC()
	for i := 1; i < len(steps); i++ {
		moved := MoveStep(steps[i].ID, DirectionUp, steps)

		want := ids(steps)
		want[i-1], want[i] = want[i], want[i-1]
		assert.Equal(t, want, ids(moved))
	}
}

func TestMoveStepBoundariesAreNoops(t *testing.T) {
	steps := stepsABC()

	assert.Equal(t, steps, MoveStep("a", DirectionUp, steps))
	assert.Equal(t, steps, MoveStep("c", DirectionDown, steps))
	assert.Equal(t, steps, MoveStep("missing", DirectionDown, steps))
	assert.Equal(t, steps, MoveStep("b", Direction("sideways"), steps))
}

func TestMoveStepDown(t *testing.T) {
	moved := MoveStep("a", DirectionDown, stepsABC())
	assert.Equal(t, []string{"b", "a", "c"}, ids(moved))
}

func TestDanglingReferencesAfterDelete(t *testing.T) {
	steps, err := DeleteStep("c", stepsABC())
	require.NoError(t, err)

	steps[0].Conditions = Conditions{OnComplete: "b", OnReject: "reject", OnTimeout: "cancel"}
	refs := DanglingReferences(steps)

	assert.Equal(t, []Reference{{StepID: "b", Field: "nextSteps", Target: "c"}}, refs)
}

func TestStepDraftSet(t *testing.T) {
	d := NewStepDraft(nil)

	require.NoError(t, d.Set(FieldName, "Pay Fee"))
	require.NoError(t, d.Set(FieldType, StepPayment))
	require.NoError(t, d.Set(FieldOnReject, "cancel"))
	require.NoError(t, d.Set(FieldPaymentAmount, "5000"))
	require.NoError(t, d.Set(FieldPaymentMethods, []any{"Mpesa", "Bank"}))
	require.NoError(t, d.Set(FieldNextSteps, nil))

	assert.Equal(t, "Pay Fee", d.Name)
	assert.Equal(t, StepPayment, d.Type)
	assert.Equal(t, "cancel", d.Conditions.OnReject)
	assert.Equal(t, "5000", d.PaymentDetails.Amount)
	assert.Equal(t, []string{"Mpesa", "Bank"}, d.PaymentDetails.PaymentMethods)
	assert.Equal(t, []string{}, d.NextSteps)
}

func TestStepDraftSetRejectsUnknownFieldsAndBadValues(t *testing.T) {
	d := NewStepDraft(nil)

	assert.ErrorIs(t, d.Set(StepField("conditions.onReejct"), "x"), ErrUnknownField)
	assert.Error(t, d.Set(FieldName, 42))
	assert.Error(t, d.Set(FieldNextSteps, "a"))
	assert.Error(t, d.Set(FieldRequiredDocuments, []any{"ok", 1}))
}

func TestParseStepField(t *testing.T) {
	f, err := ParseStepField("conditions.onTimeout")
	require.NoError(t, err)
	assert.Equal(t, FieldOnTimeout, f)

	_, err = ParseStepField("conditions")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestEditorLifecycle(t *testing.T) {
	e := NewEditor(nil, []string{"Licensing"})

	_, err := e.Commit()
	assert.ErrorIs(t, err, ErrInvalidTransition)

	e.BeginCreate()
	require.NoError(t, e.Set(FieldName, "Initial Review"))
	step, err := e.Commit()
	require.NoError(t, err)
	assert.Equal(t, "initial_review", step.ID)
	assert.Equal(t, "Licensing", step.AssignedDepartment)

	open, _ := e.Editing()
	assert.False(t, open)

	e.BeginCreate()
	require.NoError(t, e.Set(FieldName, "Approval"))
	require.NoError(t, e.Set(FieldType, "APPROVAL"))
	_, err = e.Commit()
	require.NoError(t, err)

	require.NoError(t, e.BeginEdit("approval"))
	open, target := e.Editing()
	assert.True(t, open)
	assert.Equal(t, "approval", target)
	require.NoError(t, e.Set(FieldTimeout, "3 days"))
	_, err = e.Commit()
	require.NoError(t, err)

	e.Move("approval", DirectionUp)
	assert.Equal(t, []string{"approval", "initial_review"}, ids(e.Steps()))
	assert.Equal(t, "3 days", e.Steps()[0].Timeout)

	assert.ErrorIs(t, e.Delete("approval", false), ErrConfirmationRequired)
	require.NoError(t, e.Delete("approval", true))
	assert.Equal(t, []string{"initial_review"}, ids(e.Steps()))
}

func TestEditorCommitFailureKeepsDraftOpen(t *testing.T) {
	e := NewEditor(nil, nil)
	e.BeginCreate()
	require.NoError(t, e.Set(FieldName, "Orphan"))

	_, err := e.Commit()
	require.Error(t, err)

	open, _ := e.Editing()
	assert.True(t, open)
	assert.Equal(t, "Orphan", e.Draft().Name)
}
