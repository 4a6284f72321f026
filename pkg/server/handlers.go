package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/stargraph/pkg/buildinfo"
	"github.com/matzehuels/stargraph/pkg/engine"
	errs "github.com/matzehuels/stargraph/pkg/errors"
	"github.com/matzehuels/stargraph/pkg/graph"
	"github.com/matzehuels/stargraph/pkg/scene/sink"
	"github.com/matzehuels/stargraph/pkg/social"
	"github.com/matzehuels/stargraph/pkg/viewport"
)

// =============================================================================
// Request and response bodies
// =============================================================================

type createSessionRequest struct {
	Width  float64 `json:"width" validate:"gte=0,lte=10000"`
	Height float64 `json:"height" validate:"gte=0,lte=10000"`
}

type sessionResponse struct {
	ID       string          `json:"id"`
	Created  time.Time       `json:"created"`
	Snapshot engine.Snapshot `json:"snapshot"`
}

type clickRequest struct {
	X      *float64 `json:"x" validate:"required_without=NodeID"`
	Y      *float64 `json:"y" validate:"required_without=NodeID"`
	NodeID string   `json:"nodeId"`
}

type clickResponse struct {
	Emitted bool `json:"emitted"`
}

type viewportRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	K float64 `json:"k" validate:"gt=0"`
}

type viewportResponse struct {
	Transform viewport.Transform `json:"transform"`
	State     string             `json:"state"`
	Toggled   bool               `json:"toggled"`
}

type resizeRequest struct {
	W float64 `json:"w" validate:"gt=0,lte=10000"`
	H float64 `json:"h" validate:"gt=0,lte=10000"`
}

// userResponse carries the profile card of a fetched user.
type userResponse struct {
	User     social.User     `json:"user"`
	Repos    int             `json:"repos"`
	Snapshot engine.Snapshot `json:"snapshot"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  buildinfo.Version,
		"sessions": s.sessions.Len(),
	})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := s.decode(w, r, &req, true); err != nil {
		s.respondError(w, r, err)
		return
	}
	sess, err := s.sessions.Create(req.Width, req.Height)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	snap, err := sess.loop.Snapshot(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/sessions/"+sess.ID)
	respondJSON(w, http.StatusCreated, sessionResponse{ID: sess.ID, Created: sess.Created, Snapshot: snap})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	snap, err := sess.loop.Snapshot(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse{ID: sess.ID, Created: sess.Created, Snapshot: snap})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ingest accepts a payload in the GraphQL result shape. Bodies that do not
// decode are rejected; payloads without an id decode fine and are ignored
// by the engine.
func (s *Server) ingest(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	u, err := social.DecodeUserWithRepos(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.respondError(w, r, errs.Wrap(errs.ErrCodeInvalidPayload, err, "invalid payload"))
		return
	}
	s.ingestAndRespond(w, r, sess, u, http.StatusOK)
}

func (s *Server) fetchUser(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if s.fetcher == nil {
		s.respondError(w, r, errs.New(errs.ErrCodeUnsupported, "fetching is not configured"))
		return
	}
	login := chi.URLParam(r, "login")
	if err := errs.ValidateLogin(login); err != nil {
		s.respondError(w, r, err)
		return
	}
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))

	u, err := s.fetcher.FetchUser(r.Context(), login, s.cfg.First, refresh)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.ingestAndRespond(w, r, sess, u, http.StatusOK)
}

func (s *Server) ingestAndRespond(w http.ResponseWriter, r *http.Request, sess *Session, u *social.UserWithRepos, status int) {
	if err := sess.loop.Ingest(r.Context(), u); err != nil {
		s.respondError(w, r, err)
		return
	}
	snap, err := sess.loop.Snapshot(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if u == nil {
		respondJSON(w, status, userResponse{Snapshot: snap})
		return
	}
	respondJSON(w, status, userResponse{User: u.User, Repos: len(u.Repos()), Snapshot: snap})
}

func (s *Server) click(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req clickRequest
	if err := s.decode(w, r, &req, false); err != nil {
		s.respondError(w, r, err)
		return
	}
	var (
		emitted bool
		err     error
	)
	if req.NodeID != "" {
		emitted, err = sess.loop.ClickNode(r.Context(), req.NodeID)
	} else {
		emitted, err = sess.loop.Click(r.Context(), *req.X, *req.Y)
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, clickResponse{Emitted: emitted})
}

func (s *Server) viewport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req viewportRequest
	if err := s.decode(w, r, &req, false); err != nil {
		s.respondError(w, r, err)
		return
	}
	c, err := sess.loop.Apply(r.Context(), viewport.Transform{X: req.X, Y: req.Y, K: req.K})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, viewportResponse{Transform: c.Transform, State: c.State.String(), Toggled: c.Toggled})
}

// resize goes through the mount, whose observer feeds the loop, exactly as
// a container resize would.
func (s *Server) resize(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req resizeRequest
	if err := s.decode(w, r, &req, false); err != nil {
		s.respondError(w, r, err)
		return
	}
	sess.mount.Resize(req.W, req.H)
	w.WriteHeader(http.StatusAccepted)
}

// render runs fn on the session's loop, where the surface may be read.
func (s *Server) render(w http.ResponseWriter, r *http.Request, contentType string, fn func(*engine.Engine) ([]byte, error)) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var data []byte
	err := sess.loop.Do(r.Context(), func(e *engine.Engine) error {
		var err error
		data, err = fn(e)
		return err
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(data)
}

func (s *Server) sceneJSON(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "application/json", func(e *engine.Engine) ([]byte, error) {
		return sink.RenderJSON(e.Surface())
	})
}

func (s *Server) sceneSVG(w http.ResponseWriter, r *http.Request) {
	fit, _ := strconv.ParseBool(r.URL.Query().Get("fit"))
	s.render(w, r, "image/svg+xml", func(e *engine.Engine) ([]byte, error) {
		var opts []sink.SVGOption
		if fit {
			opts = append(opts, sink.WithFitContent(20))
		}
		return sink.RenderSVG(e.Surface(), opts...), nil
	})
}

func (s *Server) graph(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "application/json", func(e *engine.Engine) ([]byte, error) {
		return graph.MarshalGraph(e.Store())
	})
}

// events streams click notifications as server-sent events until the
// client disconnects or the session closes.
func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.respondError(w, r, errs.New(errs.ErrCodeUnsupported, "streaming not supported"))
		return
	}

	events, cancel := sess.Subscribe(64)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, ev.Data); err != nil {
				return
			}
			flusher.Flush()
			sess.touch()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()
			sess.touch()
		case <-r.Context().Done():
			return
		}
	}
}
