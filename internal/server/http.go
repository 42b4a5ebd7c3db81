package server

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/marchallab/netview/internal/events"
	"github.com/marchallab/netview/pkg/errors"
	"github.com/marchallab/netview/pkg/highlight"
	"github.com/marchallab/netview/pkg/network"
	"github.com/marchallab/netview/pkg/observability"
	"github.com/marchallab/netview/pkg/view"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/network", s.handleNetwork)
		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Delete("/", s.handleDeleteSession)
			r.Get("/frame", s.handleFrame)
			r.Get("/stream", s.handleStream)
			r.Post("/focus", s.focusHandler("focus", (*view.Viewer).Focus))
			r.Post("/click", s.focusHandler("click", (*view.Viewer).Click))
			r.Post("/select", s.focusHandler("select", (*view.Viewer).Select))
			r.Post("/clear", s.handleClear)
			r.Post("/mode", s.handleMode)
			r.Post("/unfreeze", s.handleUnfreeze)
			r.Post("/drag", s.handleDrag)
			r.Post("/highlight", s.handleHighlight)
		})
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// =============================================================================
// Request and Response Bodies
// =============================================================================

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type createSessionRequest struct {
	Seed     *uint64 `json:"seed,omitempty"`
	Mode     string  `json:"mode,omitempty"`
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	NoLabels bool    `json:"noLabels,omitempty"`
}

type sessionResponse struct {
	ID    string     `json:"id"`
	Frame view.Frame `json:"frame"`
}

type focusRequest struct {
	// Target is a node id or an edge key "source;target".
	Target string `json:"target"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type dragRequest struct {
	Node  string  `json:"node"`
	Phase string  `json:"phase"` // start, move or end
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

type highlightRequest struct {
	GeneSet string `json:"geneSet,omitempty"`
	Sample  string `json:"sample,omitempty"`
}

type actionResponse struct {
	Changed bool       `json:"changed"`
	Frame   view.Frame `json:"frame"`
}

type networkResponse struct {
	DocumentHash    string        `json:"documentHash"`
	Nodes           []networkNode `json:"nodes"`
	Links           []networkLink `json:"links"`
	Conditions      []string      `json:"conditions"`
	GenesOfInterest []string      `json:"genesOfInterest,omitempty"`
	GeneSets        []string      `json:"geneSets,omitempty"`
	PathTypes       []string      `json:"pathTypes,omitempty"`
	PathCount       int           `json:"pathCount"`
	Groups          int           `json:"groups"`
	Width           float64       `json:"width"`
	Height          float64       `json:"height"`
}

type networkNode struct {
	ID           string   `json:"id"`
	Product      string   `json:"product,omitempty"`
	Group        int      `json:"group"`
	Radius       float64  `json:"radius"`
	Count        int      `json:"count"`
	CountPerGene []int    `json:"countPerGene,omitempty"`
	GeneSets     []string `json:"geneSets,omitempty"`
}

type networkLink struct {
	Key      string  `json:"key"`
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Type     string  `json:"type"`
	Directed bool    `json:"directed"`
	Weight   float64 `json:"weight"`
	Paths    int     `json:"paths"`
}

func summarize(m *network.Model, docHash string) networkResponse {
	w, h := m.CanvasSize()
	resp := networkResponse{
		DocumentHash:    docHash,
		Nodes:           make([]networkNode, len(m.Nodes)),
		Links:           make([]networkLink, len(m.Links)),
		Conditions:      m.Conditions,
		GenesOfInterest: m.GenesOfInterest,
		GeneSets:        m.GeneSets(),
		PathTypes:       m.Paths().Types(),
		PathCount:       m.Paths().Len(),
		Groups:          m.GroupCount(),
		Width:           w,
		Height:          h,
	}
	for i, n := range m.Nodes {
		resp.Nodes[i] = networkNode{
			ID:           n.ID,
			Product:      n.Product,
			Group:        n.Group,
			Radius:       n.Radius,
			Count:        n.Count,
			CountPerGene: n.CountPerGene,
			GeneSets:     n.GeneSetIDs(),
		}
	}
	for i, l := range m.Links {
		resp.Links[i] = networkLink{
			Key:      l.Key(),
			Source:   l.Source.ID,
			Target:   l.Target.ID,
			Type:     l.Type,
			Directed: l.Directed,
			Weight:   l.Weight,
			Paths:    len(l.Paths),
		}
	}
	if resp.Conditions == nil {
		resp.Conditions = []string{}
	}
	return resp
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.SessionCount()})
}

func (s *Server) handleNetwork(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.summary)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(w, err)
		return
	}

	p := sessionParams{
		Seed:     s.opts.Seed,
		Mode:     s.opts.Mode,
		Width:    req.Width,
		Height:   req.Height,
		NoLabels: s.opts.NoLabels || req.NoLabels,
	}
	if req.Seed != nil {
		p.Seed = *req.Seed
	}
	if req.Mode != "" {
		mode, err := highlight.ParseMode(req.Mode)
		if err != nil {
			writeError(w, err)
			return
		}
		p.Mode = mode
	}

	sess, err := s.open(p)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/api/sessions/"+sess.id)
	writeJSON(w, http.StatusCreated, sessionResponse{ID: sess.id, Frame: sess.current()})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, ok := s.remove(id)
	if !ok {
		writeError(w, errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id))
		return
	}
	s.stop(sess, "closed")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	sess.touch()
	writeJSON(w, http.StatusOK, sess.current())
}

// focusHandler serves the pointer and menu focus endpoints.
func (s *Server) focusHandler(kind string, apply func(*view.Viewer, highlight.Target) (bool, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req focusRequest
		if err := decodeJSON(r, &req, false); err != nil {
			writeError(w, err)
			return
		}
		if err := errors.ValidateTarget(req.Target); err != nil {
			writeError(w, err)
			return
		}
		t := highlight.ParseTarget(req.Target)
		s.action(w, r, kind, func(v *view.Viewer) (bool, error) {
			return apply(v, t)
		})
	}
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.action(w, r, "clear", func(v *view.Viewer) (bool, error) {
		v.ClearHighlight()
		return true, nil
	})
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, err)
		return
	}
	mode, err := highlight.ParseMode(req.Mode)
	if err != nil {
		writeError(w, err)
		return
	}
	s.action(w, r, "mode", func(v *view.Viewer) (bool, error) {
		changed := v.Highlight().State().Mode != mode
		v.SetMode(mode)
		return changed, nil
	})
}

func (s *Server) handleUnfreeze(w http.ResponseWriter, r *http.Request) {
	s.action(w, r, "unfreeze", func(v *view.Viewer) (bool, error) {
		v.Unfreeze()
		return false, nil
	})
}

func (s *Server) handleDrag(w http.ResponseWriter, r *http.Request) {
	var req dragRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, err)
		return
	}
	s.action(w, r, "drag", func(v *view.Viewer) (bool, error) {
		switch req.Phase {
		case "start":
			return false, v.DragStart(req.Node)
		case "move":
			return false, v.DragMove(req.Node, req.X, req.Y)
		case "end":
			return false, v.DragEnd(req.Node)
		}
		return false, errors.New(errors.ErrCodeInvalidInput, "unknown drag phase %q (want start, move or end)", req.Phase)
	})
}

func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	var req highlightRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, err)
		return
	}
	if (req.GeneSet == "") == (req.Sample == "") {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "exactly one of geneSet and sample is required"))
		return
	}
	s.action(w, r, "highlight", func(v *view.Viewer) (bool, error) {
		if req.GeneSet != "" {
			return true, v.HighlightGeneSet(req.GeneSet)
		}
		return true, v.HighlightSample(req.Sample)
	})
}

// action runs fn on a session, reports the interaction and answers with the
// resulting frame. A changed highlight is published as an event.
func (s *Server) action(w http.ResponseWriter, r *http.Request, kind string, fn func(*view.Viewer) (bool, error)) {
	sess, err := s.session(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var changed bool
	err = sess.do(r.Context(), func(v *view.Viewer) error {
		var err error
		changed, err = fn(v)
		return err
	})
	observability.Session().OnInteraction(r.Context(), sess.id, kind, err)
	if err != nil {
		writeError(w, err)
		return
	}

	frame := sess.current()
	if changed {
		s.publishFocus(r, sess.id, frame)
	}
	writeJSON(w, http.StatusOK, actionResponse{Changed: changed, Frame: frame})
}

func (s *Server) publishFocus(r *http.Request, id string, f view.Frame) {
	ev := events.FocusChanged{SessionID: id, Mode: f.Mode, Focus: f.Focus}
	if f.Info != nil {
		ev.Title = f.Info.Title
		ev.Lines = f.Info.Lines
	}
	s.publish(r.Context(), events.TopicFocusChanged, ev)
}

// =============================================================================
// Encoding
// =============================================================================

// decodeJSON decodes the request body into v. An empty body is accepted only
// when optional is set.
func decodeJSON(r *http.Request, v any, optional bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if optional && stderrors.Is(err, io.EOF) {
			return nil
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decoding request body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

var kindStatus = map[errors.Kind]int{
	errors.KindInvalid:     http.StatusBadRequest,
	errors.KindNotFound:    http.StatusNotFound,
	errors.KindUnavailable: http.StatusServiceUnavailable,
	errors.KindInternal:    http.StatusInternalServerError,
}

// writeError writes err with the status of its kind. Uncoded errors are
// reported as INTERNAL_ERROR.
func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, kindStatus[code.Kind()], errorResponse{
		Error: errors.UserMessage(err),
		Code:  string(code),
	})
}
