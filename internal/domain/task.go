package domain

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const MaxTaskTitleLength = 500

// Task is a unit of work owned by a user, optionally filed under a project.
type Task struct {
	ID           uuid.UUID
	UserID       string
	ProjectID    *uuid.UUID
	Title        string
	Description  *string
	Priority     Priority
	Deadline     *time.Time
	TimeEstimate *int // minutes
	IsCompleted  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TaskView is what callers see: a Task with its tag ids and the fields derived
// from the clock at the moment it was read.
type TaskView struct {
	Task
	TagIDs            []uuid.UUID
	IsOverdue         bool
	DaysUntilDeadline *int
}

// TaskCompletion is the result of toggling a task's completion flag.
type TaskCompletion struct {
	ID          uuid.UUID
	IsCompleted bool
	UpdatedAt   time.Time
}

// TaskInput carries the fields accepted when creating a task.
type TaskInput struct {
	Title        string
	Description  *string
	Priority     *Priority
	Deadline     *time.Time
	TimeEstimate *int
	ProjectID    *uuid.UUID
	TagIDs       []uuid.UUID
}

// TaskPatch is a partial update. Title, Priority and IsCompleted cannot be cleared;
// the remaining fields accept an explicit null.
type TaskPatch struct {
	Title        Optional[string]    `json:"title"`
	Description  Optional[string]    `json:"description"`
	Priority     Optional[Priority]  `json:"priority"`
	Deadline     Optional[time.Time] `json:"deadline"`
	TimeEstimate Optional[int]       `json:"time_estimate"`
	IsCompleted  Optional[bool]      `json:"is_completed"`
	ProjectID    Optional[uuid.UUID] `json:"project_id"`
}

// NewTask creates a validated Task owned by userID. Priority defaults to MEDIUM.
func NewTask(userID string, in TaskInput, now time.Time) (*Task, error) {
	t := &Task{
		ID:           uuid.New(),
		UserID:       userID,
		ProjectID:    in.ProjectID,
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		Priority:     DefaultPriority,
		Deadline:     utcPtr(in.Deadline),
		TimeEstimate: in.TimeEstimate,
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
	}
	if in.Priority != nil {
		t.Priority = *in.Priority
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("id", "must not be empty", nil)
	}
	if t.UserID == "" {
		return NewValidationError("user_id", "must not be empty", nil)
	}
	if t.Title == "" {
		return NewValidationError("title", "must not be empty", nil)
	}
	if utf8.RuneCountInString(t.Title) > MaxTaskTitleLength {
		return NewValidationError("title", "must be at most 500 characters", nil)
	}
	if err := validatePriority(t.Priority); err != nil {
		return err
	}
	if t.TimeEstimate != nil && *t.TimeEstimate < 0 {
		return NewValidationError("time_estimate", "must not be negative", nil)
	}
	return nil
}

// Apply applies the set fields of patch and always refreshes UpdatedAt,
// even when the patch is empty. On error the task is left unchanged.
func (t *Task) Apply(patch TaskPatch, now time.Time) error {
	next := *t

	if patch.Title.Set {
		if patch.Title.Null {
			return NewValidationError("title", "must not be null", nil)
		}
		next.Title = strings.TrimSpace(patch.Title.Value)
	}
	if patch.Priority.Set {
		if patch.Priority.Null {
			return NewValidationError("priority", "must not be null", nil)
		}
		next.Priority = patch.Priority.Value
	}
	if patch.IsCompleted.Set {
		if patch.IsCompleted.Null {
			return NewValidationError("is_completed", "must not be null", nil)
		}
		next.IsCompleted = patch.IsCompleted.Value
	}
	if patch.Description.Set {
		next.Description = patch.Description.Ptr()
	}
	if patch.Deadline.Set {
		next.Deadline = utcPtr(patch.Deadline.Ptr())
	}
	if patch.TimeEstimate.Set {
		next.TimeEstimate = patch.TimeEstimate.Ptr()
	}
	if patch.ProjectID.Set {
		next.ProjectID = patch.ProjectID.Ptr()
	}

	if err := next.Validate(); err != nil {
		return err
	}
	next.UpdatedAt = now.UTC()
	*t = next
	return nil
}

// ToggleCompletion flips IsCompleted and refreshes UpdatedAt.
func (t *Task) ToggleCompletion(now time.Time) TaskCompletion {
	t.IsCompleted = !t.IsCompleted
	t.UpdatedAt = now.UTC()
	return TaskCompletion{ID: t.ID, IsCompleted: t.IsCompleted, UpdatedAt: t.UpdatedAt}
}

// IsOverdue reports whether the task has a deadline before now and is not completed.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.Deadline != nil && !t.IsCompleted && t.Deadline.Before(now)
}

// DaysUntilDeadline returns floor((deadline-now)/24h), or nil without a deadline.
// A deadline 1 hour in the past yields -1.
func (t *Task) DaysUntilDeadline(now time.Time) *int {
	if t.Deadline == nil {
		return nil
	}
	days := int(math.Floor(t.Deadline.Sub(now).Hours() / 24))
	return &days
}

// View evaluates the derived fields against now.
func (t *Task) View(tagIDs []uuid.UUID, now time.Time) TaskView {
	if tagIDs == nil {
		tagIDs = []uuid.UUID{}
	}
	return TaskView{
		Task:              *t,
		TagIDs:            tagIDs,
		IsOverdue:         t.IsOverdue(now),
		DaysUntilDeadline: t.DaysUntilDeadline(now),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
