package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/service"
	"github.com/phrazzld/tasks-api/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectService_CreateAndGet(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()
	user := testutils.MustInsertUser(t, f.db, "owner")

	created, err := f.projects.Create(ctx, user.ID, domain.ProjectInput{Name: "  Garden  "})
	require.NoError(t, err)
	assert.Equal(t, "Garden", created.Name)
	assert.Zero(t, created.TaskCount)

	_, err = f.tasks.Create(ctx, user.ID, domain.TaskInput{Title: "dig", ProjectID: &created.ID})
	require.NoError(t, err)

	got, err := f.projects.Get(ctx, user.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TaskCount)
	assert.Equal(t, 0, got.CompletedTaskCount)
}

func TestProjectService_NameUniquePerUserIgnoringCase(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()
	alice := testutils.MustInsertUser(t, f.db, "alice")
	bob := testutils.MustInsertUser(t, f.db, "bob")

	_, err := f.projects.Create(ctx, alice.ID, domain.ProjectInput{Name: "Work"})
	require.NoError(t, err)

	_, err = f.projects.Create(ctx, alice.ID, domain.ProjectInput{Name: "work"})
	require.ErrorIs(t, err, domain.ErrDuplicate)
	var dup *domain.DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, domain.ResourceProject, dup.Resource)
	assert.Equal(t, "name", dup.Field)

	_, err = f.projects.Create(ctx, bob.ID, domain.ProjectInput{Name: "work"})
	assert.NoError(t, err, "another user may reuse the name")
}

func TestProjectService_Update(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()
	user := testutils.MustInsertUser(t, f.db, "owner")
	work, err := f.projects.Create(ctx, user.ID, domain.ProjectInput{Name: "Work", Description: testutils.Ptr("job")})
	require.NoError(t, err)
	_, err = f.projects.Create(ctx, user.ID, domain.ProjectInput{Name: "Home"})
	require.NoError(t, err)

	t.Run("recasing its own name is allowed", func(t *testing.T) {
		f.clock.Advance(time.Minute)
		updated, err := f.projects.Update(ctx, user.ID, work.ID, domain.ProjectPatch{Name: domain.Some("WORK")})
		require.NoError(t, err)
		assert.Equal(t, "WORK", updated.Name)
		assert.True(t, updated.UpdatedAt.After(work.UpdatedAt))
	})

	t.Run("taking another project's name is a duplicate", func(t *testing.T) {
		_, err := f.projects.Update(ctx, user.ID, work.ID, domain.ProjectPatch{Name: domain.Some("home")})
		assert.ErrorIs(t, err, domain.ErrDuplicate)
	})

	t.Run("null description clears it", func(t *testing.T) {
		updated, err := f.projects.Update(ctx, user.ID, work.ID, domain.ProjectPatch{Description: domain.Null[string]()})
		require.NoError(t, err)
		assert.Nil(t, updated.Description)
	})

	t.Run("null name is rejected", func(t *testing.T) {
		_, err := f.projects.Update(ctx, user.ID, work.ID, domain.ProjectPatch{Name: domain.Null[string]()})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("other users cannot see it", func(t *testing.T) {
		stranger := testutils.MustInsertUser(t, f.db, "stranger")
		_, err := f.projects.Update(ctx, stranger.ID, work.ID, domain.ProjectPatch{Name: domain.Some("Mine")})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestProjectService_DeleteMovesTasksToInbox(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()
	user := testutils.MustInsertUser(t, f.db, "owner")
	project, err := f.projects.Create(ctx, user.ID, domain.ProjectInput{Name: "Temporary"})
	require.NoError(t, err)

	var taskIDs []uuid.UUID
	for _, title := range []string{"one", "two"} {
		task, err := f.tasks.Create(ctx, user.ID, domain.TaskInput{Title: title, ProjectID: &project.ID})
		require.NoError(t, err)
		taskIDs = append(taskIDs, task.ID)
	}

	require.NoError(t, f.projects.Delete(ctx, user.ID, project.ID))

	_, err = f.projects.Get(ctx, user.ID, project.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	for _, id := range taskIDs {
		task, err := f.tasks.Get(ctx, user.ID, id)
		require.NoError(t, err, "tasks survive their project")
		assert.Nil(t, task.ProjectID)
	}

	inbox, err := f.tasks.List(ctx, user.ID, domain.TaskQuery{
		Filter: domain.TaskFilter{Project: domain.Null[uuid.UUID]()},
		Page:   domain.PageRequest{Limit: 20},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, inbox.Total)

	assert.ErrorIs(t, f.projects.Delete(ctx, user.ID, project.ID), domain.ErrNotFound)
}

func TestProjectService_List(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()
	user := testutils.MustInsertUser(t, f.db, "owner")
	for _, name := range []string{"c", "A", "b"} {
		_, err := f.projects.Create(ctx, user.ID, domain.ProjectInput{Name: name})
		require.NoError(t, err)
	}

	page, err := f.projects.List(ctx, user.ID, domain.PageFromNumber(2, 2))
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.Pages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "c", page.Items[0].Name)

	_, err = f.projects.List(ctx, user.ID, domain.PageRequest{Limit: 101})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestNewProjectService_RequiresDependencies(t *testing.T) {
	db := testutils.NewTestDB(t)
	stores := testutils.NewTestStores(db)

	_, err := service.NewProjectService(nil, stores.Projects, stores.Tasks, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = service.NewProjectService(db, nil, stores.Tasks, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = service.NewProjectService(db, stores.Projects, nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
