package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/service"
	"github.com/phrazzld/tasks-api/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagService_CreateNormalizesColor(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()
	user := testutils.MustInsertUser(t, f.db, "owner")

	tag, err := f.tags.Create(ctx, user.ID, domain.TagInput{Label: "urgent", Color: testutils.Ptr("#ff5733")})
	require.NoError(t, err)
	require.NotNil(t, tag.Color)
	assert.Equal(t, "#FF5733", *tag.Color)

	_, err = f.tags.Create(ctx, user.ID, domain.TagInput{Label: "bad", Color: testutils.Ptr("red")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.tags.Create(ctx, user.ID, domain.TagInput{Label: "URGENT"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestTagService_Update(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()
	user := testutils.MustInsertUser(t, f.db, "owner")
	tag, err := f.tags.Create(ctx, user.ID, domain.TagInput{Label: "home", Color: testutils.Ptr("#00ff00")})
	require.NoError(t, err)
	_, err = f.tags.Create(ctx, user.ID, domain.TagInput{Label: "work"})
	require.NoError(t, err)

	updated, err := f.tags.Update(ctx, user.ID, tag.ID, domain.TagPatch{Color: domain.Some("#abcdef")})
	require.NoError(t, err)
	assert.Equal(t, "#ABCDEF", *updated.Color)
	assert.Equal(t, "home", updated.Label)

	cleared, err := f.tags.Update(ctx, user.ID, tag.ID, domain.TagPatch{Color: domain.Null[string]()})
	require.NoError(t, err)
	assert.Nil(t, cleared.Color)

	_, err = f.tags.Update(ctx, user.ID, tag.ID, domain.TagPatch{Label: domain.Some("Work")})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	renamed, err := f.tags.Update(ctx, user.ID, tag.ID, domain.TagPatch{Label: domain.Some("HOME")})
	require.NoError(t, err)
	assert.Equal(t, "HOME", renamed.Label)

	_, err = f.tags.Update(ctx, user.ID, uuid.New(), domain.TagPatch{Label: domain.Some("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTagService_DeleteDetachesFromEveryTask(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()
	user := testutils.MustInsertUser(t, f.db, "owner")
	doomed, err := f.tags.Create(ctx, user.ID, domain.TagInput{Label: "doomed"})
	require.NoError(t, err)
	kept, err := f.tags.Create(ctx, user.ID, domain.TagInput{Label: "kept"})
	require.NoError(t, err)

	var ids []uuid.UUID
	for _, title := range []string{"a", "b", "c"} {
		task, err := f.tasks.Create(ctx, user.ID, domain.TaskInput{Title: title, TagIDs: []uuid.UUID{doomed.ID, kept.ID}})
		require.NoError(t, err)
		ids = append(ids, task.ID)
	}

	withTag, err := f.tags.Get(ctx, user.ID, doomed.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, withTag.TaskCount)

	require.NoError(t, f.tags.Delete(ctx, user.ID, doomed.ID))

	for _, id := range ids {
		task, err := f.tasks.Get(ctx, user.ID, id)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{kept.ID}, task.TagIDs)
	}
	assert.ErrorIs(t, f.tags.Delete(ctx, user.ID, doomed.ID), domain.ErrNotFound)
}

func TestTagService_ListWithCounts(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()
	user := testutils.MustInsertUser(t, f.db, "owner")
	b, err := f.tags.Create(ctx, user.ID, domain.TagInput{Label: "b"})
	require.NoError(t, err)
	_, err = f.tags.Create(ctx, user.ID, domain.TagInput{Label: "a"})
	require.NoError(t, err)
	_, err = f.tasks.Create(ctx, user.ID, domain.TaskInput{Title: "t", TagIDs: []uuid.UUID{b.ID}})
	require.NoError(t, err)

	page, err := f.tags.List(ctx, user.ID, domain.PageRequest{Limit: domain.DefaultTagPageSize})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "a", page.Items[0].Label)
	assert.Zero(t, page.Items[0].TaskCount)
	assert.Equal(t, 1, page.Items[1].TaskCount)
}

func TestNewTagService_RequiresDependencies(t *testing.T) {
	db := testutils.NewTestDB(t)

	_, err := service.NewTagService(nil, testutils.NewTestStores(db).Tags, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = service.NewTagService(db, nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
