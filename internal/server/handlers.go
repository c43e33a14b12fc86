package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wcatz/dashboard-layout/internal/board"
	"github.com/wcatz/dashboard-layout/internal/layout"
)

const maxBodyBytes = 1 << 20

type boardView struct {
	Scope   string                `json:"scope"`
	Visible []string              `json:"visible"`
	Layouts []layout.WidgetLayout `json:"layouts"`
	Rows    []layout.Row          `json:"rows"`
	Frame   layout.Frame          `json:"frame"`
}

func viewOf(scope string, st layout.State) boardView {
	rows := layout.GroupByRow(st.Layouts, st.VisibleSet())
	return boardView{
		Scope:   scope,
		Visible: st.Visible,
		Layouts: st.Layouts,
		Rows:    rows,
		Frame:   layout.Place(rows),
	}
}

type gestureRequest struct {
	Gesture string `json:"gesture"`
	ID      string `json:"id"`
	OverID  string `json:"overId"`
}

type resizeRequest struct {
	ID           string   `json:"id"`
	WidthPercent *float64 `json:"widthPercent"`
	HeightPx     *int     `json:"heightPx"`
}

type visibilityRequest struct {
	Visible bool `json:"visible"`
}

type resetRequest struct {
	Preset string `json:"preset"`
}

func (s *Server) handleWidgets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"widgets": s.boards.Catalog(),
	})
}

func (s *Server) handleConfigReload(w http.ResponseWriter, r *http.Request) {
	if err := s.ReloadConfig(); err != nil {
		s.logger.Error("config reload failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("config reloaded", "path", s.ConfigPath())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"widgets": len(s.boards.Catalog()),
	})
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	b, ok := s.board(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, viewOf(b.Scope(), b.Snapshot()))
}

func (s *Server) handleDragStart(w http.ResponseWriter, r *http.Request) {
	b, ok := s.board(w, r)
	if !ok {
		return
	}
	var req gestureRequest
	if !decodeBody(w, r, &req) {
		return
	}
	g, err := b.StartDrag(req.ID)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleDragEnd(w http.ResponseWriter, r *http.Request) {
	b, ok := s.board(w, r)
	if !ok {
		return
	}
	var req gestureRequest
	if !decodeBody(w, r, &req) {
		return
	}
	st, err := b.EndDrag(r.Context(), req.Gesture, req.OverID)
	if err != nil && !errors.Is(err, board.ErrNoGesture) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, viewOf(b.Scope(), st))
}

func (s *Server) handleDragCancel(w http.ResponseWriter, r *http.Request) {
	b, ok := s.board(w, r)
	if !ok {
		return
	}
	var req gestureRequest
	if !decodeBody(w, r, &req) {
		return
	}
	b.CancelDrag(req.Gesture)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResizePreview(w http.ResponseWriter, r *http.Request) {
	b, ok := s.board(w, r)
	if !ok {
		return
	}
	var req resizeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rows, err := b.PreviewResize(req.ID, req.WidthPercent, req.HeightPx)
	if errors.Is(err, board.ErrNotVisible) {
		rows = b.Rows()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rows":  rows,
		"frame": layout.Place(rows),
	})
}

func (s *Server) handleResizeCommit(w http.ResponseWriter, r *http.Request) {
	b, ok := s.board(w, r)
	if !ok {
		return
	}
	var req resizeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	st, err := b.CommitResize(r.Context(), req.ID, req.WidthPercent, req.HeightPx)
	if err != nil && !errors.Is(err, board.ErrNotVisible) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, viewOf(b.Scope(), st))
}

func (s *Server) handleResizeCancel(w http.ResponseWriter, r *http.Request) {
	b, ok := s.board(w, r)
	if !ok {
		return
	}
	b.CancelResize()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleVisibility(w http.ResponseWriter, r *http.Request) {
	b, ok := s.board(w, r)
	if !ok {
		return
	}
	var req visibilityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	st := b.Toggle(r.Context(), chi.URLParam(r, "id"), req.Visible)
	writeJSON(w, http.StatusOK, viewOf(b.Scope(), st))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	b, ok := s.board(w, r)
	if !ok {
		return
	}
	var req resetRequest
	if !decodeOptionalBody(w, r, &req) {
		return
	}
	var catalog layout.Catalog
	if req.Preset != "" {
		c, err := s.Config().Catalog(req.Preset)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		catalog = c
	}
	st := b.Reset(r.Context(), catalog)
	writeJSON(w, http.StatusOK, viewOf(b.Scope(), st))
}

// board resolves the {scope} URL parameter, writing an error response on failure.
func (s *Server) board(w http.ResponseWriter, r *http.Request) (*board.Board, bool) {
	scope := chi.URLParam(r, "scope")
	b, err := s.boards.Board(r.Context(), scope)
	if err != nil {
		s.logger.Error("loading board", "scope", scope, "err", err)
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return nil, false
	}
	return b, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// decodeOptionalBody is decodeBody that accepts an empty body.
func decodeOptionalBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
