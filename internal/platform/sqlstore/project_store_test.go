package sqlstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/store"
	"github.com/phrazzld/tasks-api/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectStore_CRUD(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	projects := testutils.NewTestStores(db).Projects
	ctx := context.Background()
	user := testutils.MustInsertUser(t, db, "owner")

	project, err := domain.NewProject(user.ID, domain.ProjectInput{
		Name:        "Garden",
		Description: testutils.Ptr("Vegetables"),
	}, testutils.FixedTime)
	require.NoError(t, err)
	require.NoError(t, projects.Create(ctx, project))

	got, err := projects.GetByID(ctx, user.ID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Garden", got.Name)
	require.NotNil(t, got.Description)
	assert.Equal(t, "Vegetables", *got.Description)

	got.Name = "Allotment"
	got.Description = nil
	got.UpdatedAt = testutils.FixedTime.Add(time.Hour)
	require.NoError(t, projects.Update(ctx, got))

	updated, err := projects.GetByID(ctx, user.ID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Allotment", updated.Name)
	assert.Nil(t, updated.Description)
	assert.True(t, updated.UpdatedAt.Equal(testutils.FixedTime.Add(time.Hour)))

	require.NoError(t, projects.Delete(ctx, user.ID, project.ID))
	_, err = projects.GetByID(ctx, user.ID, project.ID)
	assert.ErrorIs(t, err, store.ErrProjectNotFound)
	assert.ErrorIs(t, projects.Delete(ctx, user.ID, project.ID), store.ErrProjectNotFound)
}

func TestProjectStore_OwnerScoping(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	projects := testutils.NewTestStores(db).Projects
	ctx := context.Background()
	alice := testutils.MustInsertUser(t, db, "alice")
	bob := testutils.MustInsertUser(t, db, "bob")
	project := testutils.MustInsertProject(t, db, alice.ID, "Secret")

	_, err := projects.GetByID(ctx, bob.ID, project.ID)
	assert.ErrorIs(t, err, store.ErrProjectNotFound)
	assert.ErrorIs(t, projects.Delete(ctx, bob.ID, project.ID), store.ErrProjectNotFound)

	stolen := *project
	stolen.UserID = bob.ID
	stolen.Name = "Mine now"
	assert.ErrorIs(t, projects.Update(ctx, &stolen), store.ErrProjectNotFound)

	// Same name for another user is allowed.
	testutils.MustInsertProject(t, db, bob.ID, "Secret")
}

func TestProjectStore_NameUniqueIgnoresCase(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	projects := testutils.NewTestStores(db).Projects
	ctx := context.Background()
	user := testutils.MustInsertUser(t, db, "owner")
	testutils.MustInsertProject(t, db, user.ID, "Work")

	dup, err := domain.NewProject(user.ID, domain.ProjectInput{Name: "WORK"}, testutils.FixedTime)
	require.NoError(t, err)
	assert.ErrorIs(t, projects.Create(ctx, dup), store.ErrProjectNameExists)

	found, err := projects.FindByName(ctx, user.ID, "wOrK")
	require.NoError(t, err)
	assert.Equal(t, "Work", found.Name)

	_, err = projects.FindByName(ctx, user.ID, "Home")
	assert.ErrorIs(t, err, store.ErrProjectNotFound)

	testutils.MustInsertProject(t, db, user.ID, "Ärger")
	accented, err := domain.NewProject(user.ID, domain.ProjectInput{Name: "ärger"}, testutils.FixedTime)
	require.NoError(t, err)
	assert.ErrorIs(t, projects.Create(ctx, accented), store.ErrProjectNameExists,
		"case folding covers non-ASCII letters")

	found, err = projects.FindByName(ctx, user.ID, "ÄRGER")
	require.NoError(t, err)
	assert.Equal(t, "Ärger", found.Name)
}

func TestProjectStore_ListAndCountTasks(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	projects := testutils.NewTestStores(db).Projects
	ctx := context.Background()
	user := testutils.MustInsertUser(t, db, "owner")
	other := testutils.MustInsertUser(t, db, "other")

	beta := testutils.MustInsertProject(t, db, user.ID, "beta")
	alpha := testutils.MustInsertProject(t, db, user.ID, "Alpha")
	gamma := testutils.MustInsertProject(t, db, user.ID, "Gamma")
	testutils.MustInsertProject(t, db, other.ID, "Other's")

	testutils.MustInsertTask(t, db, user.ID, domain.TaskInput{Title: "a1", ProjectID: &alpha.ID})
	done := testutils.MustInsertTask(t, db, user.ID, domain.TaskInput{Title: "a2", ProjectID: &alpha.ID})
	done.IsCompleted = true
	require.NoError(t, testutils.NewTestStores(db).Tasks.Update(ctx, done))
	testutils.MustInsertTask(t, db, user.ID, domain.TaskInput{Title: "b1", ProjectID: &beta.ID})

	page, total, err := projects.List(ctx, user.ID, domain.PageRequest{Offset: 0, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "Alpha", page[0].Name)
	assert.Equal(t, "beta", page[1].Name)

	rest, _, err := projects.List(ctx, user.ID, domain.PageRequest{Offset: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "Gamma", rest[0].Name)

	counts, err := projects.CountTasks(ctx, []uuid.UUID{alpha.ID, beta.ID, gamma.ID})
	require.NoError(t, err)
	assert.Equal(t, store.ProjectTaskCounts{Total: 2, Completed: 1}, counts[alpha.ID])
	assert.Equal(t, store.ProjectTaskCounts{Total: 1, Completed: 0}, counts[beta.ID])
	assert.Equal(t, store.ProjectTaskCounts{}, counts[gamma.ID])

	empty, err := projects.CountTasks(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestProjectStore_DeleteLeavesTasksInInbox(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	stores := testutils.NewTestStores(db)
	ctx := context.Background()
	user := testutils.MustInsertUser(t, db, "owner")
	project := testutils.MustInsertProject(t, db, user.ID, "Doomed")
	task := testutils.MustInsertTask(t, db, user.ID, domain.TaskInput{Title: "survivor", ProjectID: &project.ID})

	require.NoError(t, stores.Projects.Delete(ctx, user.ID, project.ID))

	got, err := stores.Tasks.GetByID(ctx, user.ID, task.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ProjectID)
}
