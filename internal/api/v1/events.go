package v1

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/vmunix/themarr/internal/events"
)

const maxEventLimit = 1000

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50)
	if err != nil || limit < 0 {
		writeError(w, http.StatusBadRequest, "INVALID_PAGINATION", "limit must be a non-negative integer")
		return
	}
	if limit == 0 || limit > maxEventLimit {
		limit = maxEventLimit
	}

	q := events.Query{
		EventType: r.URL.Query().Get("type"),
		Limit:     limit,
	}
	if since := r.URL.Query().Get("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_SINCE", "since must be an RFC3339 timestamp")
			return
		}
		q.Since = t
	}

	evs, err := s.deps.EventLog.List(r.Context(), q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "EVENT_ERROR", err.Error())
		return
	}

	resp := listEventsResponse{
		Items: make([]EventResponse, len(evs)),
		Total: len(evs),
	}
	for i, e := range evs {
		resp.Items[i] = EventResponse{
			ID:         e.ID,
			EventType:  e.EventType,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			OccurredAt: e.OccurredAt,
			Payload:    json.RawMessage(e.Payload),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
