package workflow

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

var (
	licenseTypes = map[LicenseType]struct{}{
		LicenseMillers: {}, LicenseBrownSugar: {}, LicenseWhiteSugar: {},
		LicenseImporters: {}, LicenseExporters: {}, LicenseDealers: {},
	}
	licenseCategories = map[LicenseCategory]struct{}{
		CategoryPermitAndLicense: {}, CategoryLetterOfComfort: {},
	}
	stepTypes = map[StepType]struct{}{
		StepReview: {}, StepApproval: {}, StepInspection: {}, StepPayment: {},
		StepNotification: {}, StepDecision: {}, StepDocumentVerification: {},
		StepFieldVisit: {}, StepComplianceCheck: {},
	}
	assignmentMethods = map[AssignmentMethod]struct{}{
		AssignHead: {}, AssignOfficerPickup: {}, AssignAuto: {},
	}
)

// Valid reports whether t is a known license type.
func (t LicenseType) Valid() bool {
	_, ok := licenseTypes[t]
	return ok
}

// Valid reports whether c is a known license category.
func (c LicenseCategory) Valid() bool {
	_, ok := licenseCategories[c]
	return ok
}

// Valid reports whether t is a known step type.
func (t StepType) Valid() bool {
	_, ok := stepTypes[t]
	return ok
}

// Valid reports whether m is a known assignment method.
func (m AssignmentMethod) Valid() bool {
	_, ok := assignmentMethods[m]
	return ok
}

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		mustRegister(v, "license_type", func(fl validator.FieldLevel) bool {
			return LicenseType(fl.Field().String()).Valid()
		})
		mustRegister(v, "license_category", func(fl validator.FieldLevel) bool {
			return LicenseCategory(fl.Field().String()).Valid()
		})
		mustRegister(v, "step_type", func(fl validator.FieldLevel) bool {
			return StepType(fl.Field().String()).Valid()
		})
		mustRegister(v, "assignment_method", func(fl validator.FieldLevel) bool {
			return AssignmentMethod(fl.Field().String()).Valid()
		})
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// validateStruct runs struct tags and converts failures to a ValidationError.
func validateStruct(s any) error {
	err := validatorInstance().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fieldPath(fe), Reason: reasonFor(fe)})
	}
	return out
}

// fieldPath drops the root struct name from the namespace, so nested step
// fields read as "steps[1].name".
func fieldPath(fe validator.FieldError) string {
	_, path, ok := strings.Cut(fe.Namespace(), ".")
	if !ok || path == "" {
		return fe.Field()
	}
	return path
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must have at least " + fe.Param() + " item(s)"
	case "uuid":
		return "must be a UUID"
	default:
		return "is not a valid value"
	}
}

// ValidateForSubmission checks a complete template before it is sent to the
// repository: name, description, licenseType and licenseCategory are
// required and the step list must not be empty. An empty step list is fine
// while a draft is being edited; it is only rejected here. Every step must
// carry the fields CommitStep requires, step ids must be unique, and only
// PAYMENT steps may carry payment details.
func ValidateForSubmission(t Template) error {
	var fields []FieldError
	if err := validateStruct(t); err != nil {
		var verr *ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		fields = append(fields, verr.Fields...)
	}
	fields = append(fields, checkSteps(t.Steps)...)

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

func checkSteps(steps []Step) []FieldError {
	var out []FieldError
	seen := make(map[string]int, len(steps))
	for i, s := range steps {
		if s.ID != "" {
			if first, ok := seen[s.ID]; ok {
				out = append(out, FieldError{
					Field:  fmt.Sprintf("steps[%d].id", i),
					Reason: fmt.Sprintf("duplicates steps[%d].id", first),
				})
			} else {
				seen[s.ID] = i
			}
		}
		if s.PaymentDetails != nil && s.Type != StepPayment {
			out = append(out, FieldError{
				Field:  fmt.Sprintf("steps[%d].paymentDetails", i),
				Reason: "is only allowed on PAYMENT steps",
			})
		}
	}
	return out
}
