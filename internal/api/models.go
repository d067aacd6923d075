package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
)

// CreateTaskRequest defines the payload for POST /tasks.
type CreateTaskRequest struct {
	Title        string      `json:"title"         validate:"required,max=500"`
	Description  *string     `json:"description"`
	Priority     *int        `json:"priority"      validate:"omitempty,min=0,max=3"`
	Deadline     *time.Time  `json:"deadline"`
	TimeEstimate *int        `json:"time_estimate" validate:"omitempty,gte=0"`
	ProjectID    *uuid.UUID  `json:"project_id"`
	TagIDs       []uuid.UUID `json:"tag_ids"`
}

func (r CreateTaskRequest) toInput() domain.TaskInput {
	in := domain.TaskInput{
		Title:        r.Title,
		Description:  r.Description,
		Deadline:     r.Deadline,
		TimeEstimate: r.TimeEstimate,
		ProjectID:    r.ProjectID,
		TagIDs:       r.TagIDs,
	}
	if r.Priority != nil {
		p := domain.Priority(*r.Priority)
		in.Priority = &p
	}
	return in
}

// CreateProjectRequest defines the payload for POST /projects.
type CreateProjectRequest struct {
	Name        string  `json:"name"        validate:"required,max=100"`
	Description *string `json:"description"`
}

// CreateTagRequest defines the payload for POST /tags.
type CreateTagRequest struct {
	Label string  `json:"label" validate:"required,max=50"`
	Color *string `json:"color" validate:"omitempty,hexcolor,len=7"`
}

// TaskResponse is a task with its tag ids and derived fields.
type TaskResponse struct {
	ID                uuid.UUID   `json:"id"`
	Title             string      `json:"title"`
	Description       *string     `json:"description"`
	Priority          int         `json:"priority"`
	Deadline          *time.Time  `json:"deadline"`
	TimeEstimate      *int        `json:"time_estimate"`
	IsCompleted       bool        `json:"is_completed"`
	UserID            string      `json:"user_id"`
	ProjectID         *uuid.UUID  `json:"project_id"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
	IsOverdue         bool        `json:"is_overdue"`
	DaysUntilDeadline *int        `json:"days_until_deadline"`
	TagIDs            []uuid.UUID `json:"tag_ids"`
}

// TaskToggleResponse is returned by PATCH /tasks/{id}/complete.
type TaskToggleResponse struct {
	ID          uuid.UUID `json:"id"`
	IsCompleted bool      `json:"is_completed"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectResponse is a project with its task counts.
type ProjectResponse struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Description        *string   `json:"description"`
	UserID             string    `json:"user_id"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	TaskCount          int       `json:"task_count"`
	CompletedTaskCount int       `json:"completed_task_count"`
}

// TagResponse is a tag with its task count.
type TagResponse struct {
	ID        uuid.UUID `json:"id"`
	Label     string    `json:"label"`
	Color     *string   `json:"color"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	TaskCount int       `json:"task_count"`
}

// UserResponse is returned by GET /users/me.
type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListResponse is the shape of every list endpoint.
type ListResponse[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Pages    int `json:"pages"`
}

func toListResponse[S, T any](page *domain.Page[S], convert func(S) T) ListResponse[T] {
	items := make([]T, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, convert(item))
	}
	return ListResponse[T]{
		Items:    items,
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
		Pages:    page.Pages,
	}
}

func taskToResponse(t domain.TaskView) TaskResponse {
	tagIDs := t.TagIDs
	if tagIDs == nil {
		tagIDs = []uuid.UUID{}
	}
	return TaskResponse{
		ID:                t.ID,
		Title:             t.Title,
		Description:       t.Description,
		Priority:          int(t.Priority),
		Deadline:          t.Deadline,
		TimeEstimate:      t.TimeEstimate,
		IsCompleted:       t.IsCompleted,
		UserID:            t.UserID,
		ProjectID:         t.ProjectID,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
		IsOverdue:         t.IsOverdue,
		DaysUntilDeadline: t.DaysUntilDeadline,
		TagIDs:            tagIDs,
	}
}

func projectToResponse(p domain.ProjectView) ProjectResponse {
	return ProjectResponse{
		ID:                 p.ID,
		Name:               p.Name,
		Description:        p.Description,
		UserID:             p.UserID,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
		TaskCount:          p.TaskCount,
		CompletedTaskCount: p.CompletedTaskCount,
	}
}

func tagToResponse(t domain.TagView) TagResponse {
	return TagResponse{
		ID:        t.ID,
		Label:     t.Label,
		Color:     t.Color,
		UserID:    t.UserID,
		CreatedAt: t.CreatedAt,
		TaskCount: t.TaskCount,
	}
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}
