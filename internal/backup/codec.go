// Package backup serializes the full library to a versioned JSON envelope
// and restores it, replacing all current data.
package backup

import (
	"context"
	"encoding/json/v2"
	"log/slog"
	"time"

	"github.com/lumenapp/lumen-server/internal/domain"
	apperrors "github.com/lumenapp/lumen-server/internal/errors"
	"github.com/lumenapp/lumen-server/internal/store"
)

// EnvelopeVersion is the current backup format version.
const EnvelopeVersion = "1.0"

// Envelope is the backup wire format. All four collection keys plus version
// are required on import; empty lists are valid values.
type Envelope struct {
	Version    string          `json:"version"`
	ExportDate time.Time       `json:"exportDate"`
	Photos     []*domain.Photo `json:"photos"`
	Albums     []*domain.Album `json:"albums"`
	Tags       []*domain.Tag   `json:"tags"`
}

// envelopeWire mirrors Envelope with pointer fields so a missing key is
// distinguishable from an empty list after unmarshaling.
type envelopeWire struct {
	Version *string          `json:"version"`
	Photos  *[]*domain.Photo `json:"photos"`
	Albums  *[]*domain.Album `json:"albums"`
	Tags    *[]*domain.Tag   `json:"tags"`

	ExportDate time.Time `json:"exportDate"`
}

// Codec reads and writes backup envelopes against the store.
type Codec struct {
	store  *store.Store
	logger *slog.Logger
}

// NewCodec creates a backup codec.
func NewCodec(st *store.Store, logger *slog.Logger) *Codec {
	return &Codec{store: st, logger: logger}
}

// Build assembles an envelope from the given collections.
func Build(photos []*domain.Photo, albums []*domain.Album, tags []*domain.Tag) *Envelope {
	if photos == nil {
		photos = []*domain.Photo{}
	}
	if albums == nil {
		albums = []*domain.Album{}
	}
	if tags == nil {
		tags = []*domain.Tag{}
	}
	return &Envelope{
		Version:    EnvelopeVersion,
		ExportDate: time.Now(),
		Photos:     photos,
		Albums:     albums,
		Tags:       tags,
	}
}

// Encode serializes an envelope to JSON.
func Encode(env *Envelope) ([]byte, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to encode backup")
	}
	return data, nil
}

// Decode parses and validates a backup envelope.
// Fails with a bad format error if the JSON is malformed or any of the
// required keys (version, photos, albums, tags) is absent.
func Decode(data []byte) (*Envelope, error) {
	var wire envelopeWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, apperrors.BadFormat("backup file is not valid JSON").WithCause(err)
	}

	missing := []string{}
	if wire.Version == nil || *wire.Version == "" {
		missing = append(missing, "version")
	}
	if wire.Photos == nil {
		missing = append(missing, "photos")
	}
	if wire.Albums == nil {
		missing = append(missing, "albums")
	}
	if wire.Tags == nil {
		missing = append(missing, "tags")
	}
	if len(missing) > 0 {
		return nil, apperrors.BadFormat("backup envelope is missing required fields").WithDetails(missing)
	}

	return &Envelope{
		Version:    *wire.Version,
		ExportDate: wire.ExportDate,
		Photos:     *wire.Photos,
		Albums:     *wire.Albums,
		Tags:       *wire.Tags,
	}, nil
}

// Export builds and serializes an envelope from the store's current state.
func (c *Codec) Export(ctx context.Context) ([]byte, error) {
	photos, err := c.store.ListPhotos(ctx)
	if err != nil {
		return nil, apperrors.Storage("failed to read photos for export", err)
	}
	albums, err := c.store.ListAlbums(ctx)
	if err != nil {
		return nil, apperrors.Storage("failed to read albums for export", err)
	}
	tags, err := c.store.ListTags(ctx)
	if err != nil {
		return nil, apperrors.Storage("failed to read tags for export", err)
	}

	data, err := Encode(Build(photos, albums, tags))
	if err != nil {
		return nil, err
	}

	if c.logger != nil {
		c.logger.Info("backup exported",
			"photos", len(photos),
			"albums", len(albums),
			"tags", len(tags),
			"bytes", len(data),
		)
	}
	return data, nil
}

// Import replaces the entire library with the envelope's contents.
//
// Validation happens before anything destructive: a malformed envelope
// leaves the store untouched. On success all three collections are cleared
// and the envelope's records are written back, trusting the envelope's
// internal consistency. The caller reloads in-memory state afterwards.
func (c *Codec) Import(ctx context.Context, data []byte) (*Envelope, error) {
	env, err := Decode(data)
	if err != nil {
		return nil, err
	}

	if err := c.store.ClearAll(); err != nil {
		return nil, apperrors.Storage("failed to clear store before import", err)
	}

	if err := c.store.SavePhotos(ctx, env.Photos); err != nil {
		return nil, apperrors.Storage("failed to import photos", err)
	}
	for _, a := range env.Albums {
		if err := c.store.SaveAlbum(ctx, a); err != nil {
			return nil, apperrors.Storage("failed to import albums", err)
		}
	}
	for _, t := range env.Tags {
		if err := c.store.SaveTag(ctx, t); err != nil {
			return nil, apperrors.Storage("failed to import tags", err)
		}
	}

	if c.logger != nil {
		c.logger.Info("backup imported",
			"version", env.Version,
			"photos", len(env.Photos),
			"albums", len(env.Albums),
			"tags", len(env.Tags),
		)
	}
	return env, nil
}
