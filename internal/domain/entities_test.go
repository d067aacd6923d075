package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProject(t *testing.T) {
	t.Parallel()

	p, err := NewProject("user-1", ProjectInput{Name: " Home ", Description: ptr("chores")}, testNow)
	require.NoError(t, err)
	assert.Equal(t, "Home", p.Name)
	assert.Equal(t, "chores", *p.Description)

	_, err = NewProject("user-1", ProjectInput{Name: ""}, testNow)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewProject("user-1", ProjectInput{Name: strings.Repeat("n", MaxProjectNameLength+1)}, testNow)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestProjectApply(t *testing.T) {
	t.Parallel()

	p, err := NewProject("user-1", ProjectInput{Name: "Work", Description: ptr("d")}, testNow)
	require.NoError(t, err)
	later := testNow.Add(1)

	changed, err := p.Apply(ProjectPatch{Name: Some("WORK")}, later)
	require.NoError(t, err)
	assert.False(t, changed, "a case-only rename does not need a uniqueness check")
	assert.Equal(t, "WORK", p.Name)
	assert.Equal(t, later, p.UpdatedAt)

	changed, err = p.Apply(ProjectPatch{Name: Some("Office"), Description: Null[string]()}, later)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Nil(t, p.Description)

	_, err = p.Apply(ProjectPatch{Name: Null[string]()}, later)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Office", p.Name)
}

func TestNewTagNormalizesColor(t *testing.T) {
	t.Parallel()

	tag, err := NewTag("user-1", TagInput{Label: "urgent", Color: ptr("#ff5733")}, testNow)
	require.NoError(t, err)
	require.NotNil(t, tag.Color)
	assert.Equal(t, "#FF5733", *tag.Color)

	for _, bad := range []string{"ff5733", "#ff573", "#GG5733", "#ff57333", ""} {
		_, err := NewTag("user-1", TagInput{Label: "x", Color: ptr(bad)}, testNow)
		assert.ErrorIs(t, err, ErrValidation, bad)
	}

	_, err = NewTag("user-1", TagInput{Label: strings.Repeat("l", MaxTagLabelLength+1)}, testNow)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTagApply(t *testing.T) {
	t.Parallel()

	tag, err := NewTag("user-1", TagInput{Label: "review", Color: ptr("#000000")}, testNow)
	require.NoError(t, err)

	changed, err := tag.Apply(TagPatch{Color: Some("#abcdef")})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "#ABCDEF", *tag.Color)

	changed, err = tag.Apply(TagPatch{Label: Some("reviewed"), Color: Null[string]()})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Nil(t, tag.Color)

	_, err = tag.Apply(TagPatch{Color: Some("red")})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Nil(t, tag.Color)
}

func TestDeriveDisplayName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Ada Lovelace", DeriveDisplayName("Ada Lovelace", "ada@example.com"))
	assert.Equal(t, "ada", DeriveDisplayName("", "ada@example.com"))
	assert.Equal(t, "ada", DeriveDisplayName("   ", "ada@example.com"))
	assert.Equal(t, FallbackDisplayName, DeriveDisplayName("", ""))
	assert.Equal(t, FallbackDisplayName, DeriveDisplayName("", "@example.com"))
	assert.Equal(t, "alice", DeriveDisplayName("", "alice"))
	assert.Equal(t, "alice", DeriveDisplayName("", "  alice  "))
	assert.Equal(t, FallbackDisplayName, DeriveDisplayName("", "   "))
}

func TestNewUser(t *testing.T) {
	t.Parallel()

	u, err := NewUser("sub-123", "ada@example.com", strings.Repeat("a", 150), testNow)
	require.NoError(t, err)
	assert.Len(t, u.DisplayName, MaxDisplayNameLength)

	_, err = NewUser("", "", "User", testNow)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewUser(strings.Repeat("s", MaxUserIDLength+1), "", "User", testNow)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestErrorKinds(t *testing.T) {
	t.Parallel()

	nf := NewNotFoundError(ResourceTask, "abc")
	assert.True(t, errors.Is(nf, ErrNotFound))
	assert.Equal(t, "task with id 'abc' not found", nf.Error())

	dup := NewDuplicateError(ResourceProject, "name", "Work")
	assert.True(t, errors.Is(dup, ErrDuplicate))
	assert.False(t, errors.Is(dup, ErrNotFound))

	cause := errors.New("boom")
	ve := NewValidationError("title", "bad", cause)
	assert.True(t, errors.Is(ve, ErrValidation))
	assert.True(t, errors.Is(ve, cause))
	assert.Equal(t, "title: bad", ve.Error())
}
