package workflow

import (
	"context"
	"fmt"
)

// ViewMode is the state of the template dialog.
type ViewMode int

const (
	ViewClosed ViewMode = iota
	ViewListing
	ViewCreating
	ViewEditing
	ViewViewing
)

func (m ViewMode) String() string {
	switch m {
	case ViewClosed:
		return "closed"
	case ViewListing:
		return "listing"
	case ViewCreating:
		return "creating"
	case ViewEditing:
		return "editing"
	case ViewViewing:
		return "viewing"
	default:
		return fmt.Sprintf("ViewMode(%d)", int(m))
	}
}

// View is a tagged state: TemplateID is set only in editing and viewing.
type View struct {
	Mode       ViewMode
	TemplateID string
}

// Submitter persists a submitted template.
type Submitter interface {
	SubmitCreate(ctx context.Context, t Template) (*Template, error)
	SubmitUpdate(ctx context.Context, id string, t Template) (*Template, error)
}

// Session is the authoring state for one user: the current view, the
// template draft and its step editor. It is not safe for concurrent use.
type Session struct {
	view        View
	draft       *Template
	steps       *Editor
	departments []string
}

// NewSession starts a closed session.
func NewSession(departments []string) *Session {
	return &Session{departments: departments}
}

// View returns the current view state.
func (s *Session) View() View {
	return s.view
}

// Draft returns the template draft with the editor's current steps, or
// false when no draft is open.
func (s *Session) Draft() (Template, bool) {
	if s.draft == nil {
		return Template{}, false
	}
	t := s.draft.Clone()
	t.Steps = s.steps.Steps()
	return t, true
}

// Steps returns the step editor of the open draft, or nil.
func (s *Session) Steps() *Editor {
	return s.steps
}

// OpenListing shows the template list. Any open draft is discarded.
func (s *Session) OpenListing() {
	s.clearDraft()
	s.view = View{Mode: ViewListing}
}

// Close hides the dialog and discards any draft.
func (s *Session) Close() {
	s.clearDraft()
	s.view = View{Mode: ViewClosed}
}

// StartCreate opens a new draft, optionally seeded (from a duplicate or a
// predefined template). Identity on the seed is dropped.
func (s *Session) StartCreate(seed *Template) error {
	if s.view.Mode != ViewListing && s.view.Mode != ViewViewing {
		return s.invalid(ViewCreating)
	}
	draft := Template{IsActive: true}
	if seed != nil {
		draft = seed.Clone()
		draft.ID = ""
	}
	s.open(draft)
	s.view = View{Mode: ViewCreating}
	return nil
}

// StartEdit opens an existing template for editing.
func (s *Session) StartEdit(t Template) error {
	if t.ID == "" {
		return fmt.Errorf("%w: template has no id", ErrInvalidTransition)
	}
	if s.view.Mode != ViewListing && s.view.Mode != ViewViewing {
		return s.invalid(ViewEditing)
	}
	s.open(t.Clone())
	s.view = View{Mode: ViewEditing, TemplateID: t.ID}
	return nil
}

// StartView shows a template read-only.
func (s *Session) StartView(id string) error {
	if s.view.Mode != ViewListing {
		return s.invalid(ViewViewing)
	}
	s.clearDraft()
	s.view = View{Mode: ViewViewing, TemplateID: id}
	return nil
}

// UpdateDraft applies fn to the template-level fields of the open draft.
// Steps are edited through Steps().
func (s *Session) UpdateDraft(fn func(*Template)) error {
	if s.draft == nil {
		return ErrNoDraft
	}
	fn(s.draft)
	return nil
}

// Submit validates the draft and sends it to the repository: create when
// creating, full update when editing. On success the draft is cleared and
// the session returns to listing. On failure the draft and view are kept so
// the user can retry.
func (s *Session) Submit(ctx context.Context, sub Submitter) (*Template, error) {
	draft, ok := s.Draft()
	if !ok {
		return nil, ErrNoDraft
	}
	if err := ValidateForSubmission(draft); err != nil {
		return nil, err
	}

	var (
		saved *Template
		err   error
	)
	switch s.view.Mode {
	case ViewCreating:
		saved, err = sub.SubmitCreate(ctx, draft)
	case ViewEditing:
		saved, err = sub.SubmitUpdate(ctx, s.view.TemplateID, draft)
	default:
		return nil, s.invalid(ViewListing)
	}
	if err != nil {
		return nil, err
	}

	s.OpenListing()
	return saved, nil
}

func (s *Session) open(t Template) {
	s.steps = NewEditor(t.Steps, s.departments)
	t.Steps = nil
	s.draft = &t
}

func (s *Session) clearDraft() {
	s.draft = nil
	s.steps = nil
}

func (s *Session) invalid(to ViewMode) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.view.Mode, to)
}
