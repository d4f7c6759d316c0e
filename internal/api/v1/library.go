package v1

import (
	"net/http"
	"path/filepath"

	"github.com/vmunix/themarr/internal/fsx"
	"github.com/vmunix/themarr/internal/library"
	"github.com/vmunix/themarr/internal/themes"
)

func (s *Server) listSeries(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 100)
	if err != nil || limit < 0 {
		writeError(w, http.StatusBadRequest, "INVALID_PAGINATION", "limit must be a non-negative integer")
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		writeError(w, http.StatusBadRequest, "INVALID_PAGINATION", "offset must be a non-negative integer")
		return
	}

	filter := library.SeriesFilter{Limit: limit, Offset: offset}
	if title := r.URL.Query().Get("title"); title != "" {
		filter.Title = &title
	}

	series, total, err := s.deps.Library.ListSeries(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", err.Error())
		return
	}

	fileName := themes.DefaultFileName
	if st, err := s.deps.Settings(); err == nil && st.FileName != "" {
		fileName = st.FileName
	}

	resp := listSeriesResponse{
		Items:  make([]seriesResponse, len(series)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for i, sr := range series {
		resp.Items[i] = seriesResponse{
			ID:        sr.ID,
			Title:     sr.Title,
			Year:      sr.Year,
			TVDBID:    sr.TVDBID,
			RootPath:  sr.RootPath,
			HasTheme:  fsx.FileExists(filepath.Join(sr.RootPath, fileName)),
			AddedAt:   sr.AddedAt,
			UpdatedAt: sr.UpdatedAt,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) scanLibrary(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.Scanner.Scan(r.Context())
	if err != nil {
		if r.Context().Err() != nil {
			return // client went away
		}
		writeError(w, http.StatusInternalServerError, "SCAN_FAILED", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, scanResponse{
		Added:      res.Added,
		Updated:    res.Updated,
		Unchanged:  res.Unchanged,
		Resolved:   res.Resolved,
		Unresolved: res.Unresolved,
	})
}
