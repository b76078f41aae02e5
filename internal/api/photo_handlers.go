package api

import (
	"encoding/json/v2"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lumenapp/lumen-server/internal/http/response"
	"github.com/lumenapp/lumen-server/internal/service"
)

// maxImportBytes bounds a single import request body.
const maxImportBytes = 1 << 30 // 1 GiB

// UpdatePhotoRequest represents the request body for renaming a photo.
type UpdatePhotoRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

// AddTagsRequest represents the request body for tagging a photo.
type AddTagsRequest struct {
	Tags []string `json:"tags" validate:"required,min=1"`
}

// BulkDeleteRequest represents the request body for bulk photo deletion.
type BulkDeleteRequest struct {
	PhotoIDs []string `json:"photo_ids" validate:"required,min=1"`
}

// TransferPhotosRequest represents the request body for moving or copying
// photos between albums. FromAlbumID is ignored for copies.
type TransferPhotosRequest struct {
	PhotoIDs    []string `json:"photo_ids" validate:"required,min=1"`
	FromAlbumID string   `json:"from_album_id"`
	ToAlbumID   string   `json:"to_album_id" validate:"required"`
}

// handleListPhotos returns photos, newest first, optionally filtered.
// Filter criteria come from query parameters: q, tag (repeatable),
// album (repeatable), favorite (true/false).
func (s *Server) handleListPhotos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := service.Filter{
		Query:  q.Get("q"),
		Tags:   q["tag"],
		Albums: q["album"],
	}
	if v := q.Get("favorite"); v != "" {
		fav, err := strconv.ParseBool(v)
		if err != nil {
			response.BadRequest(w, "Invalid favorite value", s.logger)
			return
		}
		filter.Favorite = &fav
	}

	response.Success(w, s.library.FilterPhotos(filter), s.logger)
}

// handleImportPhotos imports photos from a multipart upload.
// Each part named "files" becomes one photo.
func (s *Server) handleImportPhotos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	reader, err := r.MultipartReader()
	if err != nil {
		response.BadRequest(w, "Expected multipart upload", s.logger)
		return
	}

	var files []service.ImportFile
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			response.BadRequest(w, "Malformed multipart body", s.logger)
			return
		}
		if part.FormName() != "files" || part.FileName() == "" {
			part.Close()
			continue
		}

		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			response.BadRequest(w, "Failed to read uploaded file", s.logger)
			return
		}

		files = append(files, service.ImportFile{
			Name:     part.FileName(),
			MimeType: part.Header.Get("Content-Type"),
			Data:     data,
		})
	}

	if len(files) == 0 {
		response.BadRequest(w, "No files provided", s.logger)
		return
	}

	photos, err := s.library.ImportPhotos(ctx, files)
	if err != nil {
		s.logger.Error("Failed to import photos", "error", err, "count", len(files))
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, photos, s.logger)
}

// handleGetPhoto returns a single photo by ID.
func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	photo, err := s.library.GetPhoto(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, photo, s.logger)
}

// handleGetPhotoFile streams the photo's original file.
func (s *Server) handleGetPhotoFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	photo, err := s.library.GetPhoto(ctx, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	if photo.FilePath == "" {
		response.NotFound(w, "Photo has no stored file", s.logger)
		return
	}

	data, err := s.blobs.Read(ctx, photo.FilePath)
	if err != nil {
		s.logger.Error("Failed to read original file", "error", err, "photo_id", photo.ID)
		response.NotFound(w, "Original file not found", s.logger)
		return
	}

	if photo.MimeType != "" {
		w.Header().Set("Content-Type", photo.MimeType)
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.Write(data)
}

// handleUpdatePhoto renames a photo.
func (s *Server) handleUpdatePhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var req UpdatePhotoRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	photo, err := s.library.RenamePhoto(ctx, id, req.Name)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	if photo == nil {
		response.NotFound(w, "Photo not found", s.logger)
		return
	}

	response.Success(w, photo, s.logger)
}

// handleDeletePhoto deletes a single photo.
func (s *Server) handleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	if err := s.library.DeletePhoto(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleBulkDeletePhotos deletes a set of photos and reports how many
// records actually existed.
func (s *Server) handleBulkDeletePhotos(w http.ResponseWriter, r *http.Request) {
	var req BulkDeleteRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	deleted, err := s.library.DeletePhotos(r.Context(), req.PhotoIDs)
	if err != nil {
		s.logger.Error("Failed to bulk delete photos", "error", err, "requested", len(req.PhotoIDs))
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]int{"deleted": deleted}, s.logger)
}

// handleMovePhotos moves photos from one album to another.
func (s *Server) handleMovePhotos(w http.ResponseWriter, r *http.Request) {
	var req TransferPhotosRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	if req.FromAlbumID == "" {
		response.BadRequest(w, "Source album ID is required", s.logger)
		return
	}

	if err := s.library.MovePhotos(r.Context(), req.PhotoIDs, req.FromAlbumID, req.ToAlbumID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]bool{"moved": true}, s.logger)
}

// handleCopyPhotos adds photos to a second album without leaving the first.
func (s *Server) handleCopyPhotos(w http.ResponseWriter, r *http.Request) {
	var req TransferPhotosRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if err := s.library.CopyPhotos(r.Context(), req.PhotoIDs, req.ToAlbumID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]bool{"copied": true}, s.logger)
}

// handleToggleFavorite flips a photo's favorite flag.
func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	photo, err := s.library.ToggleFavorite(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	if photo == nil {
		response.NotFound(w, "Photo not found", s.logger)
		return
	}

	response.Success(w, photo, s.logger)
}

// handleAddTags applies tags to a photo, creating tag records as needed.
func (s *Server) handleAddTags(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req AddTagsRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	photo, err := s.library.AddTagsToPhoto(r.Context(), id, req.Tags)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	if photo == nil {
		response.NotFound(w, "Photo not found", s.logger)
		return
	}

	response.Success(w, photo, s.logger)
}

// handleRemoveTag removes a single tag, by name, from a photo.
func (s *Server) handleRemoveTag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	name := chi.URLParam(r, "name")

	photo, err := s.library.RemoveTagFromPhoto(r.Context(), id, name)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	if photo == nil {
		response.NotFound(w, "Photo not found", s.logger)
		return
	}

	response.Success(w, photo, s.logger)
}

// handleAutotag runs the configured labeler over a photo.
func (s *Server) handleAutotag(w http.ResponseWriter, r *http.Request) {
	photo, err := s.library.Autotag(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, photo, s.logger)
}
