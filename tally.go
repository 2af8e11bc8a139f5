package tally

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"github.com/ryhazerus/tally/store"
)

// counterBody is the wire form of a counter value in both directions.
// A pointer distinguishes a missing "count" field from an explicit zero.
type counterBody struct {
	Count *int64 `json:"count"`
}

// errorBody is the wire form of any failure response.
type errorBody struct {
	Error string `json:"error"`
}

// Server is the HTTP façade over a counter store. It holds no state across
// requests; every request results in exactly one store call, with no
// caching and no retries.
type Server struct {
	store  store.Store
	log    *zap.Logger
	router *httprouter.Router
}

// New creates a new Server with the given options.
// If no store is provided, an in-memory store is used.
func New(opts ...Option) *Server {
	s := &Server{log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	if s.store == nil {
		s.store = store.NewMemoryStore()
	}

	r := httprouter.New()
	r.POST("/api/:namespace/:counter", s.setCounter)
	r.GET("/api/:namespace/:counter", s.getCounter)
	s.router = r

	return s
}

// ServeHTTP implements http.Handler. Paths and methods outside the two
// counter routes get httprouter's default responses.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases resources held by the server's store.
func (s *Server) Close() error {
	return s.store.Close()
}

func (s *Server) setCounter(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	namespace, name := ps.ByName("namespace"), ps.ByName("counter")
	if namespace == "" || name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "namespace and counter must be non-empty"})
		return
	}

	var body counterBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: `body must be JSON with an integer "count" field`})
		return
	}
	if body.Count == nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: `missing "count" field`})
		return
	}

	rec, err := s.store.Set(r.Context(), namespace, name, *body.Count)
	if err != nil {
		s.storeError(w, "set", namespace, name, err)
		return
	}

	writeJSON(w, http.StatusOK, counterBody{Count: &rec.Count})
}

func (s *Server) getCounter(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	namespace, name := ps.ByName("namespace"), ps.ByName("counter")
	if namespace == "" || name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "namespace and counter must be non-empty"})
		return
	}

	rec, err := s.store.Get(r.Context(), namespace, name)
	if err != nil {
		s.storeError(w, "get", namespace, name, err)
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Counter not found"})
		return
	}

	writeJSON(w, http.StatusOK, counterBody{Count: &rec.Count})
}

// storeError is the single place store failures become responses. Absence
// is handled before this point, so every remaining kind (unavailable,
// constraint, io) is a server-side failure.
func (s *Server) storeError(w http.ResponseWriter, op, namespace, name string, err error) {
	s.log.Error("store "+op+" failed",
		zap.String("namespace", namespace),
		zap.String("counter", name),
		zap.Stringer("kind", store.KindOf(err)),
		zap.Error(err),
	)
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
