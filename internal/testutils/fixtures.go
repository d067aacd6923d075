package testutils

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/sqlstore"
	"github.com/phrazzld/tasks-api/internal/store"
	"github.com/stretchr/testify/require"
)

// FixedTime is a stable instant for tests that need deterministic timestamps.
var FixedTime = time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

// MustInsertUser inserts a user whose email is derived from id.
func MustInsertUser(t *testing.T, db store.DBTX, id string) *domain.User {
	t.Helper()

	email := fmt.Sprintf("%s@example.com", id)
	user, err := domain.NewUser(id, email, domain.DeriveDisplayName("", email), FixedTime)
	require.NoError(t, err, "Failed to build test user")
	require.NoError(t, sqlstore.NewUserStore(db, DiscardLogger()).Create(context.Background(), user),
		"Failed to insert test user")
	return user
}

// MustInsertProject inserts a project named name for userID.
func MustInsertProject(t *testing.T, db store.DBTX, userID, name string) *domain.Project {
	t.Helper()

	project, err := domain.NewProject(userID, domain.ProjectInput{Name: name}, FixedTime)
	require.NoError(t, err, "Failed to build test project")
	require.NoError(t, sqlstore.NewProjectStore(db, DiscardLogger()).Create(context.Background(), project),
		"Failed to insert test project")
	return project
}

// MustInsertTag inserts a tag labelled label for userID.
func MustInsertTag(t *testing.T, db store.DBTX, userID, label string) *domain.Tag {
	t.Helper()

	tag, err := domain.NewTag(userID, domain.TagInput{Label: label}, FixedTime)
	require.NoError(t, err, "Failed to build test tag")
	require.NoError(t, sqlstore.NewTagStore(db, DiscardLogger()).Create(context.Background(), tag),
		"Failed to insert test tag")
	return tag
}

// MustInsertTask inserts a task for userID created at FixedTime, then attaches in.TagIDs.
func MustInsertTask(t *testing.T, db store.DBTX, userID string, in domain.TaskInput) *domain.Task {
	t.Helper()
	return MustInsertTaskAt(t, db, userID, in, FixedTime)
}

// MustInsertTaskAt is MustInsertTask with an explicit creation time.
func MustInsertTaskAt(t *testing.T, db store.DBTX, userID string, in domain.TaskInput, at time.Time) *domain.Task {
	t.Helper()

	ctx := context.Background()
	task, err := domain.NewTask(userID, in, at)
	require.NoError(t, err, "Failed to build test task")

	tasks := sqlstore.NewTaskStore(db, DiscardLogger())
	require.NoError(t, tasks.Create(ctx, task), "Failed to insert test task")
	for _, tagID := range in.TagIDs {
		require.NoError(t, tasks.AddTag(ctx, task.ID, tagID, at), "Failed to tag test task")
	}
	return task
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
