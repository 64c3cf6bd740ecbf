package broker

import (
	"net/http"
	"time"
)

// Router wraps the HTTP mux and binds every route to its broker handler.
type Router struct {
	mux    *http.ServeMux
	broker *Broker
}

// NewRouter creates a router with every route configured for b.
func NewRouter(b *Broker) *Router {
	r := &Router{
		mux:    http.NewServeMux(),
		broker: b,
	}
	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	r.mux.HandleFunc("/produce", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		r.broker.handleProduce(w, req)
	})

	r.mux.HandleFunc("/consume", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		r.broker.handleConsume(w, req)
	})

	r.mux.HandleFunc("/topics", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		r.broker.handleTopics(w, req)
	})

	r.mux.HandleFunc("/metadata/leader", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		r.broker.handleLeader(w, req)
	})

	r.mux.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		r.broker.handleHealth(w, req)
	})

	r.mux.HandleFunc("/metrics", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		r.broker.handleMetrics(w, req)
	})

	r.mux.HandleFunc("/internal/replicate", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		r.broker.handleReplicate(w, req)
	})
}

// Handler returns the configured http.Handler.
func (r *Router) Handler() http.Handler {
	return r.mux
}

// NewServer builds an *http.Server bound to port, routing every request to
// b's handlers.
func NewServer(port string, b *Broker) *http.Server {
	router := NewRouter(b)
	return &http.Server{
		Addr:         ":" + port,
		Handler:      router.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
