package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumenapp/lumen-server/internal/http/response"
	"github.com/lumenapp/lumen-server/internal/service"
)

// CreateAlbumRequest represents the request body for creating an album.
type CreateAlbumRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=2000"`
}

// UpdateAlbumRequest represents the request body for updating album
// metadata. Absent fields are left unchanged.
type UpdateAlbumRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	CoverID     *string `json:"cover_photo_id"`
}

// AlbumPhotosRequest represents the request body for adding photos to an album.
type AlbumPhotosRequest struct {
	PhotoIDs []string `json:"photo_ids" validate:"required,min=1"`
}

// handleListAlbums returns all albums, recently updated first.
func (s *Server) handleListAlbums(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, s.library.Albums(), s.logger)
}

// handleCreateAlbum creates a new album.
func (s *Server) handleCreateAlbum(w http.ResponseWriter, r *http.Request) {
	var req CreateAlbumRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	album, err := s.library.CreateAlbum(r.Context(), req.Name, req.Description)
	if err != nil {
		s.logger.Error("Failed to create album", "error", err, "name", req.Name)
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, album, s.logger)
}

// handleGetAlbum returns a single album by ID.
func (s *Server) handleGetAlbum(w http.ResponseWriter, r *http.Request) {
	album, err := s.library.GetAlbum(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, album, s.logger)
}

// handleUpdateAlbum updates album metadata.
func (s *Server) handleUpdateAlbum(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateAlbumRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	album, err := s.library.UpdateAlbum(r.Context(), id, service.AlbumUpdate{
		Name:         req.Name,
		Description:  req.Description,
		CoverPhotoID: req.CoverID,
	})
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	if album == nil {
		response.NotFound(w, "Album not found", s.logger)
		return
	}

	response.Success(w, album, s.logger)
}

// handleDeleteAlbum deletes an album. Photos stay in the library; only
// their membership in this album is removed.
func (s *Server) handleDeleteAlbum(w http.ResponseWriter, r *http.Request) {
	if err := s.library.DeleteAlbum(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleAddPhotosToAlbum adds photos to an album.
func (s *Server) handleAddPhotosToAlbum(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req AlbumPhotosRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	album, err := s.library.AddPhotosToAlbum(r.Context(), id, req.PhotoIDs)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	if album == nil {
		response.NotFound(w, "Album not found", s.logger)
		return
	}

	response.Success(w, album, s.logger)
}

// handleRemovePhotoFromAlbum removes a single photo from an album.
func (s *Server) handleRemovePhotoFromAlbum(w http.ResponseWriter, r *http.Request) {
	album, err := s.library.RemovePhotoFromAlbum(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "photoID"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	if album == nil {
		response.NotFound(w, "Album not found", s.logger)
		return
	}

	response.Success(w, album, s.logger)
}
