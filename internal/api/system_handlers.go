package api

import (
	"encoding/json/v2"
	"net/http"
	"strconv"

	"github.com/lumenapp/lumen-server/internal/activity"
	"github.com/lumenapp/lumen-server/internal/http/response"
)

// ClearRequest selects which collections to wipe. At least one flag must
// be set.
type ClearRequest struct {
	Photos bool `json:"photos"`
	Albums bool `json:"albums"`
	Tags   bool `json:"tags"`
}

// handleActivity returns recent library events, newest first.
// The optional limit query parameter caps the result size.
func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	if s.feed == nil {
		response.Success(w, []activity.Event{}, s.logger)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(w, "Invalid limit value", s.logger)
			return
		}
		limit = n
	}

	events, err := s.feed.ListRecent(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to list activity", "error", err)
		response.InternalError(w, "Failed to retrieve activity", s.logger)
		return
	}

	response.Success(w, events, s.logger)
}

// handleStats returns library counts and total original-file size.
func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, s.library.Stats(), s.logger)
}

// handleClear wipes the selected collections.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	var req ClearRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if !req.Photos && !req.Albums && !req.Tags {
		response.BadRequest(w, "Select at least one collection to clear", s.logger)
		return
	}

	if err := s.library.Clear(r.Context(), req.Photos, req.Albums, req.Tags); err != nil {
		s.logger.Error("Failed to clear library", "error", err)
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}
