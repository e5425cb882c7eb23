package domain

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	apperrors "github.com/passkeep/passkeep/internal/errors"
)

// Limits bounds user-supplied field sizes. Values come from configuration and
// are immutable for the process lifetime.
type Limits struct {
	MaxTitleLength  int
	MaxFieldLength  int
	MaxNotesLength  int
	MaxCustomFields int
	MaxTags         int
}

// wrapValidation converts a validation error into a domain ErrInvalidInput.
func wrapValidation(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// GroupInput carries the caller-supplied fields for creating or renaming a group.
type GroupInput struct {
	Name        string
	Description string
}

// Validate checks the group input against the configured limits.
func (in *GroupInput) Validate(limits Limits) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)

	return wrapValidation(validation.ValidateStruct(in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, limits.MaxTitleLength)),
		validation.Field(&in.Description, validation.Length(0, limits.MaxNotesLength)),
	))
}

// DirectoryInput carries the caller-supplied fields for creating or moving a directory.
type DirectoryInput struct {
	Name        string
	Description string
	ParentID    *uuid.UUID
}

// Validate checks the directory input against the configured limits.
func (in *DirectoryInput) Validate(limits Limits) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)

	return wrapValidation(validation.ValidateStruct(in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, limits.MaxTitleLength)),
		validation.Field(&in.Description, validation.Length(0, limits.MaxNotesLength)),
	))
}

// RecordInput carries the caller-supplied fields for creating a record.
// Secret is the plaintext payload; it is encrypted before anything is persisted.
type RecordInput struct {
	Title        string
	Username     string
	Secret       []byte
	URL          string
	Notes        string
	CustomFields map[string]string
	Tags         []string
	Priority     Priority
	DirectoryID  *uuid.UUID
	IsFavorite   bool
	ExpiresAt    *time.Time
}

// Validate checks the record input against the configured limits and
// normalizes tags (trimmed, lowercased, deduplicated).
func (in *RecordInput) Validate(limits Limits) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Username = strings.TrimSpace(in.Username)
	in.URL = strings.TrimSpace(in.URL)

	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	in.Tags = NormalizeTags(in.Tags)

	if err := validation.ValidateStruct(in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, limits.MaxTitleLength)),
		validation.Field(&in.Username, validation.Length(0, limits.MaxFieldLength)),
		validation.Field(&in.Secret, validation.Required, validation.Length(1, 0)),
		validation.Field(&in.URL, validation.Length(0, limits.MaxFieldLength)),
		validation.Field(&in.Notes, validation.Length(0, limits.MaxNotesLength)),
	); err != nil {
		return wrapValidation(err)
	}

	if !in.Priority.Valid() {
		return apperrors.Wrap(apperrors.ErrInvalidInput, fmt.Sprintf("invalid priority %q", in.Priority))
	}

	return validateRecordCollections(in.CustomFields, in.Tags, limits)
}

// RecordUpdateInput carries a partial update: nil pointer fields are left
// untouched. A non-nil Secret marks the change as SECRET_CHANGED.
type RecordUpdateInput struct {
	Title        *string
	Username     *string
	Secret       []byte
	URL          *string
	Notes        *string
	CustomFields map[string]string
	Tags         []string
	Priority     *Priority
	DirectoryID  *uuid.UUID
	IsFavorite   *bool
	ExpiresAt    *time.Time
}

// Validate checks the provided fields of a partial update against the limits.
func (in *RecordUpdateInput) Validate(limits Limits) error {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		in.Title = &title
		if title == "" || len(title) > limits.MaxTitleLength {
			return apperrors.Wrap(apperrors.ErrInvalidInput, "title must be non-empty and within limits")
		}
	}
	if in.Username != nil && len(*in.Username) > limits.MaxFieldLength {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "username exceeds maximum length")
	}
	if in.URL != nil && len(*in.URL) > limits.MaxFieldLength {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "url exceeds maximum length")
	}
	if in.Notes != nil && len(*in.Notes) > limits.MaxNotesLength {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "notes exceed maximum length")
	}
	if in.Priority != nil && !in.Priority.Valid() {
		return apperrors.Wrap(apperrors.ErrInvalidInput, fmt.Sprintf("invalid priority %q", *in.Priority))
	}
	if in.Tags != nil {
		in.Tags = NormalizeTags(in.Tags)
	}

	return validateRecordCollections(in.CustomFields, in.Tags, limits)
}

// validateRecordCollections bounds custom fields and tags.
func validateRecordCollections(customFields map[string]string, tags []string, limits Limits) error {
	if len(customFields) > limits.MaxCustomFields {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "too many custom fields")
	}
	for name, value := range customFields {
		if strings.TrimSpace(name) == "" {
			return apperrors.Wrap(apperrors.ErrInvalidInput, "custom field name must not be blank")
		}
		if len(name) > limits.MaxFieldLength || len(value) > limits.MaxFieldLength {
			return apperrors.Wrap(apperrors.ErrInvalidInput, "custom field exceeds maximum length")
		}
	}

	if len(tags) > limits.MaxTags {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "too many tags")
	}
	for _, tag := range tags {
		if len(tag) > limits.MaxFieldLength {
			return apperrors.Wrap(apperrors.ErrInvalidInput, "tag exceeds maximum length")
		}
	}

	return nil
}

// NormalizeTags trims, lowercases and deduplicates tags, preserving first-seen order.
func NormalizeTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// SearchFilter narrows a principal-scoped record search. The zero value lists
// everything the principal can view.
type SearchFilter struct {
	// Query matches case-insensitively against title, username, URL and notes.
	Query string
	// GroupID restricts results to one group.
	GroupID *uuid.UUID
	// Priority restricts results to one priority level.
	Priority *Priority
	// IsFavorite restricts results by favorite flag.
	IsFavorite *bool
	// Tags restricts results to records carrying all listed tags.
	Tags []string
	// ExpiresSoon restricts results to records expiring within 30 days.
	ExpiresSoon bool
}
