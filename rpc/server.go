package rpc

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server exposes the JSON-RPC/WS surface over HTTP: validate config,
// construct components, serve, via an HTTP router rather than a raw TCP
// listener.
type Server struct {
	registry *Registry
	hub      *Hub
	log      *logrus.Logger

	router *mux.Router

	requestsTotal *prometheus.CounterVec
}

// NewServer builds a Server wired to backend, registering every method
// family and the /ws subscription hub.
func NewServer(backend Backend, log *logrus.Logger) *Server {
	reg := NewRegistry()
	RegisterTxMethods(reg, backend)
	RegisterChainMethods(reg, backend)
	RegisterStateMethods(reg, backend)
	RegisterDAMethods(reg, backend)
	RegisterRandMethods(reg, backend)
	RegisterAICFMethods(reg, backend)

	s := &Server{
		registry: reg,
		hub:      NewHub(log),
		log:      log,
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "animica_rpc_requests_total",
				Help: "Total JSON-RPC requests served, labeled by method and outcome.",
			},
			[]string{"method", "outcome"},
		),
	}
	prometheus.MustRegister(s.requestsTotal)

	r := mux.NewRouter()
	r.HandleFunc("/rpc", s.handleRPC).Methods(http.MethodPost)
	r.HandleFunc("/ws", s.hub.ServeWS).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	s.router = r

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Hub exposes the WS subscription hub so the node can push notifications
// (newHeads, da.committed, ...) as chain events occur.
func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	var req Request
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		s.writeResponse(w, Response{JSONRPC: "2.0", Error: newError(CodeParseError, "invalid JSON")})
		return
	}
	resp := s.registry.Dispatch(req)
	outcome := "ok"
	if resp.Error != nil {
		outcome = "error"
	}
	s.requestsTotal.WithLabelValues(req.Method, outcome).Inc()
	s.writeResponse(w, resp)
}

func (s *Server) writeResponse(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.WithError(err).Warn("rpc: failed to write response")
	}
}
