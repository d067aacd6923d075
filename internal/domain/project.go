package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const MaxProjectNameLength = 100

// Project groups tasks. Tasks without a project belong to the implicit inbox.
type Project struct {
	ID          uuid.UUID
	UserID      string
	Name        string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProjectView is a Project with task counts computed at read time.
type ProjectView struct {
	Project
	TaskCount          int
	CompletedTaskCount int
}

// ProjectInput carries the fields accepted when creating a project.
type ProjectInput struct {
	Name        string
	Description *string
}

// ProjectPatch is a partial update; only set fields are applied.
type ProjectPatch struct {
	Name        Optional[string] `json:"name"`
	Description Optional[string] `json:"description"`
}

// NewProject creates a validated Project owned by userID.
func NewProject(userID string, in ProjectInput, now time.Time) (*Project, error) {
	p := &Project{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks if the Project has valid data.
func (p *Project) Validate() error {
	if p.ID == uuid.Nil {
		return NewValidationError("id", "must not be empty", nil)
	}
	if p.UserID == "" {
		return NewValidationError("user_id", "must not be empty", nil)
	}
	return validateProjectName(p.Name)
}

// Apply applies the set fields of patch and refreshes UpdatedAt.
// It reports whether the name changed (case-insensitively), which is when
// uniqueness must be re-checked.
func (p *Project) Apply(patch ProjectPatch, now time.Time) (nameChanged bool, err error) {
	next := *p
	if patch.Name.Set {
		if patch.Name.Null {
			return false, NewValidationError("name", "must not be null", nil)
		}
		next.Name = strings.TrimSpace(patch.Name.Value)
		if err := validateProjectName(next.Name); err != nil {
			return false, err
		}
		nameChanged = !strings.EqualFold(next.Name, p.Name)
	}
	if patch.Description.Set {
		next.Description = patch.Description.Ptr()
	}
	next.UpdatedAt = now.UTC()
	*p = next
	return nameChanged, nil
}

func validateProjectName(name string) error {
	if name == "" {
		return NewValidationError("name", "must not be empty", nil)
	}
	if utf8.RuneCountInString(name) > MaxProjectNameLength {
		return NewValidationError("name", "must be at most 100 characters", nil)
	}
	return nil
}
