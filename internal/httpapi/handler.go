package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/idilsaglam/todolist/internal/model"
	"github.com/idilsaglam/todolist/internal/todolist"
)

// Handler serves the list over HTTP. The view-model is single-threaded, so
// every request holds mu for its whole duration.
type Handler struct {
	mu     sync.Mutex
	vm     *todolist.ViewModel
	token  string
	logger *log.Logger
}

type Option func(*Handler)

// WithToken requires "Authorization: Bearer <token>" on every request.
func WithToken(token string) Option {
	return func(h *Handler) { h.token = token }
}

func WithLogger(l *log.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

func NewHandler(vm *todolist.ViewModel, opts ...Option) *Handler {
	h := &Handler{vm: vm}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router registers the routes on a fresh mux router.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.logRequests, h.requireToken)
	r.HandleFunc("/todos", h.listTodos).Methods(http.MethodGet)
	r.HandleFunc("/todos", h.createTodo).Methods(http.MethodPost)
	r.HandleFunc("/todos/{id}/toggle", h.toggleTodo).Methods(http.MethodPost)
	r.HandleFunc("/todos/{id}", h.deleteTodo).Methods(http.MethodDelete)
	return r
}

type createRequest struct {
	Title    string `json:"title"`
	Priority string `json:"priority"`
	Category string `json:"category"`
}

type listResponse struct {
	Filter  string       `json:"filter"`
	Done    int          `json:"done"`
	Pending int          `json:"pending"`
	Items   []model.Item `json:"items"`
}

// listTodos handles GET /todos?filter=all|done|pending.
func (h *Handler) listTodos(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if raw, ok := r.URL.Query()["filter"]; ok {
		f, err := todolist.ParseFilter(strings.Join(raw, ""))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.vm.ApplyFilter(int(f))
	}
	done, pending := h.vm.Stats()
	writeJSON(w, http.StatusOK, listResponse{
		Filter:  todolist.Filter(h.vm.FilterIndex()).String(),
		Done:    done,
		Pending: pending,
		Items:   h.vm.Filtered(),
	})
}

// createTodo handles POST /todos.
func (h *Handler) createTodo(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	priority, err := model.ParsePriority(req.Priority)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	it, err := model.NewItem(req.Title, priority, req.Category)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.vm.Add(r.Context(), it); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

// toggleTodo handles POST /todos/{id}/toggle.
func (h *Handler) toggleTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	it, found := h.vm.Lookup(id)
	if !found {
		writeError(w, http.StatusNotFound, "todo not found")
		return
	}
	if err := h.vm.ToggleCompletion(r.Context(), it); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	it, _ = h.vm.Lookup(id)
	writeJSON(w, http.StatusOK, it)
}

// deleteTodo handles DELETE /todos/{id}.
func (h *Handler) deleteTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	it, found := h.vm.Lookup(id)
	if !found {
		writeError(w, http.StatusNotFound, "todo not found")
		return
	}
	if err := h.vm.Remove(r.Context(), it); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.token == "" {
			next.ServeHTTP(w, r)
			return
		}
		got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(got)), []byte(h.token)) != 1 {
			writeError(w, http.StatusUnauthorized, "missing or invalid bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if h.logger != nil {
			h.logger.Info("request", "method", r.Method, "path", r.URL.Path, "status", rec.status)
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid todo id")
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
