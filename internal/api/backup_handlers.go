package api

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lumenapp/lumen-server/internal/http/response"
)

// maxBackupBytes bounds an uploaded backup file.
const maxBackupBytes = 256 << 20 // 256 MiB

// handleExport streams the full library as a backup file download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.codec.Export(r.Context())
	if err != nil {
		s.logger.Error("Failed to export backup", "error", err)
		response.HandleError(w, err, s.logger)
		return
	}

	filename := fmt.Sprintf("lumen-backup-%s.json", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(data)
}

// handleImport replaces the entire library with an uploaded backup file.
// The envelope is validated before any current data is touched.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, maxBackupBytes)

	data, err := io.ReadAll(r.Body)
	if err != nil {
		response.BadRequest(w, "Failed to read backup file", s.logger)
		return
	}
	if len(data) == 0 {
		response.BadRequest(w, "Backup file is empty", s.logger)
		return
	}

	env, err := s.codec.Import(ctx, data)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	// The store changed underneath the cache; reload everything.
	if err := s.library.Reload(ctx); err != nil {
		s.logger.Error("Failed to reload library after import", "error", err)
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]int{
		"photos": len(env.Photos),
		"albums": len(env.Albums),
		"tags":   len(env.Tags),
	}, s.logger)
}
