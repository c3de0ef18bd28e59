package api

import (
	"net/http"

	"github.com/shubh-37/prosora/internal/intelligence"
)

// engine loads the session named by the {id} path value, writing a 404 when it is absent.
func (s *Server) engine(w http.ResponseWriter, r *http.Request) (*intelligence.Engine, bool) {
	engine, ok, err := s.store.Engine(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return nil, false
	}
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return engine, true
}

// mutate runs fn against the session under its lock and saves the result.
// Nothing is saved when fn fails.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, status int, fn func(*intelligence.Engine) (any, error)) {
	id := r.PathValue("id")

	unlock := s.store.Lock(id)
	defer unlock()

	current, ok := s.engine(w, r)
	if !ok {
		return
	}
	engine := current.Fork()

	out, err := fn(engine)
	if err != nil {
		s.fail(w, err)
		return
	}

	if err := s.store.Save(r.Context(), id, engine); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, status, out)
}
