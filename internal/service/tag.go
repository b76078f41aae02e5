package service

import (
	"context"
	"strings"

	"github.com/lumenapp/lumen-server/internal/color"
	"github.com/lumenapp/lumen-server/internal/domain"
	apperrors "github.com/lumenapp/lumen-server/internal/errors"
	"github.com/lumenapp/lumen-server/internal/id"
	"github.com/lumenapp/lumen-server/internal/store"
)

// AddTagsToPhoto applies tag names to a photo. Duplicate names in the input
// are deduplicated first; names already on the photo leave their tag's count
// untouched. Missing tags are created with the name as given. Input that
// dedupes to nothing returns the photo unchanged.
// No-op if the photo does not exist. Returns the updated photo.
func (l *Library) AddTagsToPhoto(ctx context.Context, photoID string, names []string) (*domain.Photo, error) {
	names = dedupeNames(names)

	existing, err := l.store.GetPhoto(ctx, photoID)
	if err != nil {
		if apperrors.Is(err, store.ErrPhotoNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if len(names) == 0 {
		return existing, nil
	}

	for _, name := range names {
		tag, err := l.findOrCreateTag(ctx, name)
		if err != nil {
			return nil, err
		}

		updated, err := l.store.ApplyTagToPhotos(ctx, tag.ID, []string{photoID})
		if err != nil {
			return nil, err
		}
		l.replaceTag(updated)
	}

	p, err := l.store.GetPhoto(ctx, photoID)
	if err != nil {
		return nil, err
	}
	l.replacePhoto(p)

	l.activity.Record(ctx, "photo.tagged", photoID, strings.Join(names, ","))
	return p, nil
}

// RemoveTagFromPhoto drops a tag name from a photo and decrements the tag's
// count, never below zero. Removing a name the photo does not carry is a
// no-op, as is referencing an absent photo.
func (l *Library) RemoveTagFromPhoto(ctx context.Context, photoID, name string) (*domain.Photo, error) {
	tag, err := l.store.FindTagByName(ctx, name)
	if apperrors.Is(err, store.ErrTagNotFound) {
		// No tag record; still scrub the bare name off the photo.
		updated, err := l.store.UpdatePhoto(ctx, photoID, func(p *domain.Photo) {
			p.RemoveTag(name)
		})
		if apperrors.Is(err, store.ErrPhotoNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		l.replacePhoto(updated)
		return updated, nil
	}
	if err != nil {
		return nil, err
	}

	updatedTag, err := l.store.RemoveTagFromPhoto(ctx, tag.ID, photoID)
	if err != nil {
		return nil, err
	}
	l.replaceTag(updatedTag)

	p, err := l.store.GetPhoto(ctx, photoID)
	if apperrors.Is(err, store.ErrPhotoNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	l.replacePhoto(p)
	return p, nil
}

// CreateTag explicitly creates a tag with zero count. An empty color gets
// a deterministic default derived from the name.
// Returns the existing tag unchanged if the name is already taken.
func (l *Library) CreateTag(ctx context.Context, name, tagColor string) (*domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("tag name is required")
	}

	if existing, err := l.store.FindTagByName(ctx, name); err == nil {
		return existing, nil
	} else if !apperrors.Is(err, store.ErrTagNotFound) {
		return nil, err
	}

	tagID, err := id.Generate("tag")
	if err != nil {
		return nil, err
	}

	if tagColor == "" {
		tagColor = color.ForTag(name)
	}

	tag := &domain.Tag{ID: tagID, Name: name, Color: tagColor}
	if err := l.store.SaveTag(ctx, tag); err != nil {
		return nil, apperrors.Storage("failed to save tag", err)
	}

	l.replaceTag(tag)
	l.activity.Record(ctx, "tag.created", tagID, name)
	return tag, nil
}

// UpdateTag renames a tag or changes its color. A rename rewrites the old
// name to the new one on every photo carrying it.
// No-op if the tag does not exist.
func (l *Library) UpdateTag(ctx context.Context, tagID string, name, tagColor *string) (*domain.Tag, error) {
	updated, err := l.store.UpdateTag(ctx, tagID, func(t *domain.Tag) {
		if name != nil && strings.TrimSpace(*name) != "" {
			t.Name = strings.TrimSpace(*name)
		}
		if tagColor != nil {
			t.Color = *tagColor
		}
	})
	if apperrors.Is(err, store.ErrTagNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	l.replaceTag(updated)
	if name != nil {
		// Renames touch photo records too; refresh the photo cache.
		photos, err := l.store.ListPhotos(ctx)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.photos = photos
		l.mu.Unlock()
	}
	return updated, nil
}

// DeleteTag removes a tag globally: the name is stripped from every photo,
// then the tag record is deleted.
// No-op if the tag does not exist.
func (l *Library) DeleteTag(ctx context.Context, tagID string) error {
	err := l.store.DeleteTag(ctx, tagID)
	if apperrors.Is(err, store.ErrTagNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	l.mu.Lock()
	kept := l.tags[:0]
	for _, t := range l.tags {
		if t.ID != tagID {
			kept = append(kept, t)
		}
	}
	l.tags = kept
	l.mu.Unlock()

	// The delete rewrote photo records; refresh them.
	photos, err := l.store.ListPhotos(ctx)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.photos = photos
	l.mu.Unlock()

	l.activity.Record(ctx, "tag.deleted", tagID, "")
	return nil
}

// findOrCreateTag resolves a tag by exact name, creating it with zero count
// if absent. ApplyTagToPhotos raises the count as photos actually gain it.
func (l *Library) findOrCreateTag(ctx context.Context, name string) (*domain.Tag, error) {
	tag, err := l.store.FindTagByName(ctx, name)
	if err == nil {
		return tag, nil
	}
	if !apperrors.Is(err, store.ErrTagNotFound) {
		return nil, err
	}

	tagID, err := id.Generate("tag")
	if err != nil {
		return nil, err
	}
	tag = &domain.Tag{ID: tagID, Name: name, Color: color.ForTag(name)}
	if err := l.store.SaveTag(ctx, tag); err != nil {
		return nil, apperrors.Storage("failed to save tag", err)
	}
	return tag, nil
}

// dedupeNames trims whitespace and removes duplicates, preserving first-seen order.
func dedupeNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
