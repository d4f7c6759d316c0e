package v1

import (
	"errors"
	"net/http"

	"github.com/vmunix/themarr/internal/themes"
)

func (s *Server) startRun(w http.ResponseWriter, _ *http.Request) {
	settings, err := s.deps.Settings()
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_SETTINGS", err.Error())
		return
	}

	// The run belongs to the server, not to this request.
	ticket, err := s.deps.Engine.Start(s.baseCtx, settings)
	switch {
	case errors.Is(err, themes.ErrInvalidSettings):
		writeError(w, http.StatusBadRequest, "INVALID_SETTINGS", err.Error())
		return
	case errors.Is(err, themes.ErrAlreadyRunning):
		writeJSON(w, http.StatusConflict, alreadyRunningResponse{
			Error:  "A theme run is already in progress",
			Code:   "ALREADY_RUNNING",
			Status: newStatusResponse(s.deps.Engine.Status()),
		})
		return
	case err != nil:
		s.log.Error("start theme run", "error", err)
		writeError(w, http.StatusInternalServerError, "START_FAILED", err.Error())
		return
	}

	s.log.Info("theme run accepted", "run_id", ticket.ID)
	writeJSON(w, http.StatusAccepted, startRunResponse{RunID: ticket.ID, Status: "accepted"})
}

func (s *Server) getStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newStatusResponse(s.deps.Engine.Status()))
}

func (s *Server) cancelRun(w http.ResponseWriter, _ *http.Request) {
	cancelled := s.deps.Engine.Cancel()
	if cancelled {
		s.log.Info("theme run cancel requested")
	}
	writeJSON(w, http.StatusOK, cancelResponse{Cancelled: cancelled})
}
