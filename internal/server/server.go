// Package server exposes the schedulers over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"rtsched/internal/analysis"
	"rtsched/internal/logging"
	"rtsched/internal/model"
	"rtsched/internal/render"
	"rtsched/internal/report"
	"rtsched/internal/scheduler"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
)

const maxBodySize = 1048576

// DefaultMaxHyperperiod bounds the simulations a single request may start.
var DefaultMaxHyperperiod = model.Units(1_000_000)

// ScheduleRequest is the body of POST /schedule and POST /render.
type ScheduleRequest struct {
	Name  string        `json:"name"`
	Tasks []TaskRequest `json:"tasks"`
}

// TaskRequest is one task of a request. A task without deadline gets its
// period as deadline; an explicit zero is rejected.
type TaskRequest struct {
	Name      string      `json:"name"`
	Period    model.Time  `json:"period"`
	Deadline  *model.Time `json:"deadline"`
	Execution model.Time  `json:"execution"`
}

func (tr TaskRequest) task() (model.Task, error) {
	deadline := tr.Period
	if tr.Deadline != nil {
		deadline = *tr.Deadline
	}
	return model.NewTask(tr.Name, tr.Period, deadline, tr.Execution)
}

// ModelTasks validates the request tasks and collapses identical duplicates.
func (req *ScheduleRequest) ModelTasks() ([]model.Task, error) {
	tasks := make([]model.Task, 0, len(req.Tasks))
	for _, tr := range req.Tasks {
		t, err := tr.task()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return model.ValidateTaskSet(tasks)
}

type errorResponse struct {
	Error string `json:"error"`
}

type Server struct {
	router         *httprouter.Router
	logger         *logrus.Logger
	maxHyperperiod model.Time
}

func New() *Server {
	s := &Server{
		router:         httprouter.New(),
		logger:         logging.GetLogger(),
		maxHyperperiod: DefaultMaxHyperperiod,
	}

	s.router.GET("/ping", s.ping)
	s.router.GET("/schedulers", s.schedulers)
	s.router.POST("/schedule", s.schedule)
	s.router.POST("/render", s.render)
	return s
}

// SetMaxHyperperiod changes the largest hyperperiod a request may simulate.
// Zero disables the limit.
func (s *Server) SetMaxHyperperiod(limit model.Time) {
	s.maxHyperperiod = limit
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) ping(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	fmt.Fprintf(w, "Pong %v", time.Now().UnixNano())
}

func (s *Server) schedulers(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	var names []string
	for _, p := range scheduler.SupportedPolicies() {
		names = append(names, p.Name())
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) schedule(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	policy, tasks, sched, ok := s.run(w, r, req)
	if !ok {
		return
	}

	compress := false
	if v := r.URL.Query().Get("compress"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid compress value %q", v))
			return
		}
		compress = b
	}

	a := analysis.Analyze(tasks, sched)
	if compress {
		sched = sched.Compress()
	}
	writeJSON(w, http.StatusOK, report.Build(req.Name, policy.String(), sched, a))
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	policy, _, sched, ok := s.run(w, r, req)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	opts := render.DefaultOptions()
	opts.Title = req.Name
	opts.Algorithm = policy.Name()
	if p := r.URL.Query().Get("palette"); p != "" {
		opts.Palette = p
	}

	var buf strings.Builder
	if err := render.Render(&buf, format, sched, opts); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	contentType := "application/xml; charset=UTF-8"
	if strings.EqualFold(format, render.FormatTikZ) {
		contentType = "text/x-tex; charset=UTF-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, buf.String())
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (*ScheduleRequest, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	if err := r.Body.Close(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}

	var req ScheduleRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return nil, false
	}
	return &req, true
}

// run schedules the request with the policy named in the query string, rate
// monotonic by default. It returns the deduplicated task set it scheduled.
func (s *Server) run(w http.ResponseWriter, r *http.Request, req *ScheduleRequest) (scheduler.Policy, []model.Task, *model.Schedule, bool) {
	q := r.URL.Query()

	policy := scheduler.RateMonotonic
	if v := q.Get("algorithm"); v != "" {
		p, err := scheduler.ParsePolicy(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return 0, nil, nil, false
		}
		policy = p
	}

	slice := scheduler.DefaultSliceLength
	if v := q.Get("slice"); v != "" {
		t, err := model.ParseTime(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return 0, nil, nil, false
		}
		slice = t
	}

	tasks, err := req.ModelTasks()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return 0, nil, nil, false
	}

	alg, err := scheduler.NewWithSlice(policy, slice)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return 0, nil, nil, false
	}
	alg.SetMaxHyperperiod(s.maxHyperperiod)
	sched, err := alg.CreateSchedule(tasks)
	if err != nil {
		s.logger.WithField("taskset", req.Name).WithError(err).Debug("Request rejected")
		writeError(w, http.StatusBadRequest, err)
		return 0, nil, nil, false
	}

	s.logger.WithFields(logrus.Fields{
		"taskset":   req.Name,
		"algorithm": policy.Name(),
		"tasks":     len(tasks),
		"feasible":  sched.Feasible(),
	}).Debug("Scheduled request")
	return policy, tasks, sched, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.GetLogger().WithError(err).Error("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
