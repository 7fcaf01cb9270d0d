package http

import (
	"log/slog"
	"net/http"
	"strings"
)

type RouterConfig struct {
	Directory *DirectoryHandler
	Requests  *RequestHandler
	Sessions  *SessionHandler
	Chats     *ChatHandler
	// Validator guards the faculty dashboard routes. Without one those routes
	// see no principal and reject every request.
	Validator SessionValidator
	// Metrics serves GET /metrics when set.
	Metrics    http.Handler
	Observer   HTTPObserver
	Logger     *slog.Logger
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	logger := defaultLogger(cfg.Logger)

	gated := func(h http.Handler) http.Handler {
		if cfg.Validator == nil {
			return h
		}
		return RequireSession(cfg.Validator, logger)(h)
	}
	route := func(pattern string, h http.Handler) {
		mux.Handle(pattern, instrument(cfg.Observer, pattern, h))
	}

	route("/healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			methodNotAllowed(w, http.MethodGet, http.MethodHead)
			return
		}
		newResponder(logger).writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
	}))

	if cfg.Metrics != nil {
		route("/metrics", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Metrics.ServeHTTP(w, r)
		}))
	}

	if cfg.Directory != nil {
		route("/departments", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Directory.Departments(w, r)
		}))
		route("/faculty", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Directory.ListFaculty(w, r)
		}))
	}

	if cfg.Sessions != nil {
		route("/sessions", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Sessions.CreateSession(w, r)
		}))
		route("/sessions/current", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.Sessions.DeleteCurrentSession(w, r)
		}))
	}

	if cfg.Requests != nil {
		route("/requests", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Requests.List(w, r)
			case http.MethodPost:
				cfg.Requests.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))

		changeStatus := gated(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cfg.Requests.ChangeStatus(w, r, r.PathValue("id"))
		}))
		route("/requests/{id}/status", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut {
				methodNotAllowed(w, http.MethodPut)
				return
			}
			changeStatus.ServeHTTP(w, r)
		}))

		dashboard := gated(http.HandlerFunc(cfg.Requests.Dashboard))
		route("/dashboard", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			dashboard.ServeHTTP(w, r)
		}))
	}

	if cfg.Chats != nil {
		route("/chats/{id}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Chats.Get(w, r, r.PathValue("id"))
		}))
		route("/chats/{id}/messages", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Chats.PostMessage(w, r, r.PathValue("id"))
		}))
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
