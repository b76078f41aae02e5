package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumenapp/lumen-server/internal/http/response"
)

// CreateTagRequest represents the request body for creating a tag.
type CreateTagRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

// UpdateTagRequest represents the request body for renaming or recoloring
// a tag. Absent fields are left unchanged.
type UpdateTagRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=100"`
	Color *string `json:"color" validate:"omitempty,hexcolor"`
}

// handleListTags returns all tags, most used first.
func (s *Server) handleListTags(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, s.library.Tags(), s.logger)
}

// handleCreateTag creates a tag with zero count. Creating a name that
// already exists returns the existing tag.
func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var req CreateTagRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	tag, err := s.library.CreateTag(r.Context(), req.Name, req.Color)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, tag, s.logger)
}

// handleUpdateTag renames or recolors a tag.
func (s *Server) handleUpdateTag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateTagRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	tag, err := s.library.UpdateTag(r.Context(), id, req.Name, req.Color)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	if tag == nil {
		response.NotFound(w, "Tag not found", s.logger)
		return
	}

	response.Success(w, tag, s.logger)
}

// handleDeleteTag deletes a tag and strips it from every photo.
func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := s.library.DeleteTag(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}
