package domain

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const MaxTagLabelLength = 50

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Tag is a user-defined label that can be attached to many tasks.
type Tag struct {
	ID        uuid.UUID
	UserID    string
	Label     string
	Color     *string
	CreatedAt time.Time
}

// TagView is a Tag with its task count computed at read time.
type TagView struct {
	Tag
	TaskCount int
}

// TagInput carries the fields accepted when creating a tag.
type TagInput struct {
	Label string
	Color *string
}

// TagPatch is a partial update; only set fields are applied.
type TagPatch struct {
	Label Optional[string] `json:"label"`
	Color Optional[string] `json:"color"`
}

// NormalizeColor validates a #RRGGBB colour and returns it uppercased.
func NormalizeColor(color string) (string, error) {
	if !colorPattern.MatchString(color) {
		return "", NewValidationError("color", "must be a hex colour like #FF5733", nil)
	}
	return strings.ToUpper(color), nil
}

// NewTag creates a validated Tag owned by userID. The colour, if any, is normalized.
func NewTag(userID string, in TagInput, now time.Time) (*Tag, error) {
	t := &Tag{
		ID:        uuid.New(),
		UserID:    userID,
		Label:     strings.TrimSpace(in.Label),
		CreatedAt: now.UTC(),
	}
	if in.Color != nil {
		c, err := NormalizeColor(*in.Color)
		if err != nil {
			return nil, err
		}
		t.Color = &c
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks if the Tag has valid data.
func (t *Tag) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("id", "must not be empty", nil)
	}
	if t.UserID == "" {
		return NewValidationError("user_id", "must not be empty", nil)
	}
	if t.Color != nil && !colorPattern.MatchString(*t.Color) {
		return NewValidationError("color", "must be a hex colour like #FF5733", nil)
	}
	return validateTagLabel(t.Label)
}

// Apply applies the set fields of patch. It reports whether the label changed
// (case-insensitively), which is when uniqueness must be re-checked.
func (t *Tag) Apply(patch TagPatch) (labelChanged bool, err error) {
	next := *t
	if patch.Label.Set {
		if patch.Label.Null {
			return false, NewValidationError("label", "must not be null", nil)
		}
		next.Label = strings.TrimSpace(patch.Label.Value)
		if err := validateTagLabel(next.Label); err != nil {
			return false, err
		}
		labelChanged = !strings.EqualFold(next.Label, t.Label)
	}
	if patch.Color.Set {
		if patch.Color.Null {
			next.Color = nil
		} else {
			c, err := NormalizeColor(patch.Color.Value)
			if err != nil {
				return false, err
			}
			next.Color = &c
		}
	}
	*t = next
	return labelChanged, nil
}

func validateTagLabel(label string) error {
	if label == "" {
		return NewValidationError("label", "must not be empty", nil)
	}
	if utf8.RuneCountInString(label) > MaxTagLabelLength {
		return NewValidationError("label", "must be at most 50 characters", nil)
	}
	return nil
}
