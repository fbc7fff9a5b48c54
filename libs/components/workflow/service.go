package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ksb/portal/libs/shared/observability"
)

// Directory is the read-only department and license lookup the service
// depends on.
type Directory interface {
	DepartmentNames(ctx context.Context) ([]string, error)
	LicenseSummary(ctx context.Context, id string) (map[string]any, error)
}

// Service validates templates and hands them to the repository.
type Service struct {
	repo      Repository
	directory Directory
	publisher EventPublisher
	logger    *slog.Logger
	now       func() time.Time

	publishTimeout time.Duration
}

const defaultPublishTimeout = 2 * time.Second

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithDirectory attaches the department and license directory.
func WithDirectory(d Directory) ServiceOption {
	return func(s *Service) { s.directory = d }
}

// WithPublisher attaches a lifecycle event publisher.
func WithPublisher(p EventPublisher) ServiceOption {
	return func(s *Service) { s.publisher = p }
}

// WithPublishTimeout bounds each event publish. Non-positive values keep the default.
func WithPublishTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.publishTimeout = d
		}
	}
}

// WithLogger overrides the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides time.Now for event timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService builds a Service over repo.
func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{
		repo:   repo,
		logger: slog.With("module", "workflow"),
		now:    time.Now,

		publishTimeout: defaultPublishTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// List returns one page of templates.
func (s *Service) List(ctx context.Context, page, pageSize int) (Page, error) {
	out, err := s.repo.List(ctx, page, pageSize)
	observability.ObserveOperation("list", err)
	if err != nil {
		return Page{}, &RepositoryError{Op: "list", Err: err}
	}
	return out, nil
}

// Get returns one template.
func (s *Service) Get(ctx context.Context, id string) (*Template, error) {
	t, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, &RepositoryError{Op: "find", Err: err}
	}
	return t, nil
}

// License resolves the optional license reference of t. A missing license
// or directory yields nil without an error.
func (s *Service) License(ctx context.Context, t Template) map[string]any {
	if s.directory == nil || t.LicenseID == nil || *t.LicenseID == "" {
		return nil
	}
	summary, err := s.directory.LicenseSummary(ctx, *t.LicenseID)
	if err != nil {
		if !IsNotFound(err) {
			s.logger.Warn("license lookup failed", "licenseId", *t.LicenseID, "error", err)
		}
		return nil
	}
	return summary
}

// SubmitCreate validates t and creates it. The caller's value is not
// modified; on failure nothing is persisted.
func (s *Service) SubmitCreate(ctx context.Context, t Template) (*Template, error) {
	if err := ValidateForSubmission(t); err != nil {
		return nil, err
	}

	entity := t.Clone()
	entity.ID = ""
	err := s.repo.Create(ctx, &entity)
	observability.ObserveOperation("create", err)
	if err != nil {
		s.logger.Error("template create failed", "name", t.Name, "error", err)
		return nil, &RepositoryError{Op: "create", Err: err}
	}

	s.logger.Info("template created", "id", entity.ID, "name", entity.Name, "steps", len(entity.Steps))
	s.publish(ctx, EventTemplateCreated, entity)
	return &entity, nil
}

// SubmitUpdate validates t and replaces the stored template with id,
// including its entire step list.
func (s *Service) SubmitUpdate(ctx context.Context, id string, t Template) (*Template, error) {
	if err := ValidateForSubmission(t); err != nil {
		return nil, err
	}

	entity := t.Clone()
	updated, err := s.repo.Update(ctx, id, &entity)
	observability.ObserveOperation("update", err)
	if err != nil {
		if !IsNotFound(err) {
			s.logger.Error("template update failed", "id", id, "error", err)
		}
		return nil, &RepositoryError{Op: "update", Err: err}
	}

	s.logger.Info("template updated", "id", updated.ID, "steps", len(updated.Steps))
	s.publish(ctx, EventTemplateUpdated, *updated)
	return updated, nil
}

// Delete removes the template with id.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	observability.ObserveOperation("delete", err)
	if err != nil {
		return &RepositoryError{Op: "delete", Err: err}
	}

	s.logger.Info("template deleted", "id", id)
	s.publish(ctx, EventTemplateDeleted, Template{ID: id})
	return nil
}

// Duplicate returns an unsaved copy of t without identity, named
// "<name> (Copy)" and active.
func Duplicate(t Template) Template {
	out := t.Clone()
	out.ID = ""
	out.Name = t.Name + " (Copy)"
	out.IsActive = true
	out.CreatedAt = time.Time{}
	out.UpdatedAt = time.Time{}
	return out
}

// DuplicateByID loads a template and returns an unsaved duplicate of it.
func (s *Service) DuplicateByID(ctx context.Context, id string) (Template, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return Template{}, err
	}
	return Duplicate(*t), nil
}

// InstantiateFromPredefined builds an unsaved draft from a built-in
// skeleton, remapping departments against the directory.
func (s *Service) InstantiateFromPredefined(ctx context.Context, key string) (Template, error) {
	var departments []string
	if s.directory != nil {
		names, err := s.directory.DepartmentNames(ctx)
		if err != nil {
			s.logger.Warn("department lookup failed, keeping placeholders", "error", err)
		} else {
			departments = names
		}
	}
	return InstantiatePredefined(key, departments)
}

// AddStep commits a new step to a stored template and saves it.
func (s *Service) AddStep(ctx context.Context, id string, draft StepDraft) (*Template, Step, error) {
	var committed Step
	t, err := s.editSteps(ctx, id, func(steps []Step) ([]Step, error) {
		out, step, err := CommitStep(draft, steps, "")
		committed = step
		return out, err
	})
	return t, committed, err
}

// UpdateStep replaces the step stepID of a stored template. The step keeps
// its id unless draft carries a different one.
func (s *Service) UpdateStep(ctx context.Context, id, stepID string, draft StepDraft) (*Template, Step, error) {
	if draft.ID == "" {
		draft.ID = stepID
	}
	var committed Step
	t, err := s.editSteps(ctx, id, func(steps []Step) ([]Step, error) {
		out, step, err := CommitStep(draft, steps, stepID)
		committed = step
		return out, err
	})
	return t, committed, err
}

// RemoveStep deletes a step after confirmation and returns any references
// the deletion left dangling.
func (s *Service) RemoveStep(ctx context.Context, id, stepID string, confirmed bool) (*Template, []Reference, error) {
	if !confirmed {
		return nil, nil, ErrConfirmationRequired
	}
	t, err := s.editSteps(ctx, id, func(steps []Step) ([]Step, error) {
		return DeleteStep(stepID, steps)
	})
	if err != nil {
		return nil, nil, err
	}
	return t, DanglingReferences(t.Steps), nil
}

// ReorderStep moves a step one position and saves the template. Boundary
// moves save nothing and return the template as stored.
func (s *Service) ReorderStep(ctx context.Context, id, stepID string, dir Direction) (*Template, error) {
	if dir != DirectionUp && dir != DirectionDown {
		return nil, &ValidationError{Fields: []FieldError{{Field: "direction", Reason: "must be up or down"}}}
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if indexOf(current.Steps, stepID) < 0 {
		return nil, fmt.Errorf("%w: %s", ErrStepNotFound, stepID)
	}

	moved := MoveStep(stepID, dir, current.Steps)
	if sameOrder(moved, current.Steps) {
		return current, nil
	}
	next := current.Clone()
	next.Steps = moved
	return s.SubmitUpdate(ctx, id, next)
}

// Stats loads every template and summarizes it.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var all []Template
	for page := 1; ; page++ {
		p, err := s.List(ctx, page, maxPageSize)
		if err != nil {
			return Stats{}, err
		}
		all = append(all, p.Items...)
		if len(p.Items) == 0 || int64(len(all)) >= p.Total {
			break
		}
	}
	return Summarize(all), nil
}

func (s *Service) editSteps(ctx context.Context, id string, edit func([]Step) ([]Step, error)) (*Template, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	steps, err := edit(current.Steps)
	if err != nil {
		return nil, err
	}
	next := current.Clone()
	next.Steps = steps
	return s.SubmitUpdate(ctx, id, next)
}

func (s *Service) publish(ctx context.Context, event string, t Template) {
	if s.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()

	headers := map[string]string{"event": event}
	if err := s.publisher.PublishJSON(ctx, t.ID, newTemplateEvent(event, t, s.now()), headers); err != nil {
		s.logger.Warn("publish template event failed", "event", event, "id", t.ID, "error", err)
	}
}

func sameOrder(a, b []Step) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}
