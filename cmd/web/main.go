package main

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/TomoyaKanno/Uniprot-Fetcher-for-ProtGPS/internal/config"
	"github.com/TomoyaKanno/Uniprot-Fetcher-for-ProtGPS/internal/entry"
	"github.com/TomoyaKanno/Uniprot-Fetcher-for-ProtGPS/internal/logging"
	"github.com/TomoyaKanno/Uniprot-Fetcher-for-ProtGPS/internal/preview"
	"github.com/TomoyaKanno/Uniprot-Fetcher-for-ProtGPS/internal/session"
	"github.com/TomoyaKanno/Uniprot-Fetcher-for-ProtGPS/internal/uniprot"
)

const sessionCookie = "protgps_session"

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Flash is a one-shot message shown above the results.
type Flash struct {
	Kind    string // error, warning or success
	Message string
}

// Page is the data behind base.html.
type Page struct {
	Accession        string
	Code             string
	View             session.View
	Flash            *Flash
	Entries          []entry.Entry
	SequencesListing string
	LabelsListing    string
	ExportFile       string
	StopMarker       string
}

// server bundles what the handlers share.
type server struct {
	store   *session.Store
	fetcher session.Fetcher
	cfg     *config.Config
	logger  *log.Logger
}

// statusResponseWriter captures status and bytes written for logging
type statusResponseWriter struct {
	http.ResponseWriter
	status  int
	written int64
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

// loggingMiddleware logs each request with method, path, status, size and duration
func loggingMiddleware(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusResponseWriter{ResponseWriter: w}
		next.ServeHTTP(srw, r)
		if srw.status == 0 {
			srw.status = http.StatusOK
		}
		logger.Info("request",
			"remote", r.RemoteAddr, "method", r.Method, "uri", r.URL.RequestURI(),
			"status", srw.status, "bytes", srw.written, "duration", time.Since(start), "ua", r.UserAgent())
	})
}

// sessionFor returns the caller's session, creating one and setting the
// cookie when the request has none or an unknown id.
func (s *server) sessionFor(w http.ResponseWriter, r *http.Request) *session.Session {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if sess, ok := s.store.Get(c.Value); ok {
			return sess
		}
	}
	id, sess := s.store.New()
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: id, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	s.logger.Debug("new session", "id", id, "sessions", s.store.Len())
	return sess
}

func (s *server) page(sess *session.Session, accession string, flash *Flash) Page {
	v := sess.Current()
	if accession == "" && v.Record != nil {
		accession = v.Record.Accession
	}
	if accession == "" {
		accession = s.cfg.DefaultAccession
	}
	entries := sess.Entries()
	return Page{
		Accession:        accession,
		Code:             v.Code,
		View:             v,
		Flash:            flash,
		Entries:          entries,
		SequencesListing: entry.SequencesListing(entries),
		LabelsListing:    entry.LabelsListing(entries),
		ExportFile:       s.cfg.ExportFile,
		StopMarker:       preview.StopMarker,
	}
}

func (s *server) render(w http.ResponseWriter, status int, p Page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ExecuteTemplate(w, "base.html", p); err != nil {
		s.logger.Error("render failed", "err", err)
	}
}

// fetchStatus maps a fetch error onto the status of the rendered page.
func fetchStatus(err error) int {
	switch {
	case errors.Is(err, uniprot.ErrEmptyAccession):
		return http.StatusBadRequest
	case errors.Is(err, uniprot.ErrNotFound), errors.Is(err, uniprot.ErrInactive):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func (s *server) indexHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	s.render(w, http.StatusOK, s.page(sess, r.URL.Query().Get("accession"), nil))
}

func (s *server) fetchHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	accession := strings.TrimSpace(r.FormValue("accession"))
	code := strings.TrimSpace(r.FormValue("mutation"))

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.HTTPTimeout())
	defer cancel()
	v, err := sess.Fetch(ctx, s.fetcher, accession, code)
	if err != nil {
		s.logger.Warn("fetch failed", "accession", accession, "err", err)
		p := s.page(sess, accession, &Flash{Kind: "error", Message: err.Error()})
		p.Code = code
		s.render(w, fetchStatus(err), p)
		return
	}
	s.logger.Info("fetched record", "accession", v.Record.Accession, "mutation", code, "length", len(v.Record.Sequence))
	s.render(w, http.StatusOK, s.mutationPage(sess, accession, v, code))
}

func (s *server) mutateHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	code := strings.TrimSpace(r.FormValue("mutation"))
	v, err := sess.Mutate(code)
	if err != nil {
		s.render(w, http.StatusConflict, s.page(sess, "", &Flash{Kind: "warning", Message: "Please fetch a sequence first!"}))
		return
	}
	s.render(w, http.StatusOK, s.mutationPage(sess, "", v, code))
}

// mutationPage reports a mutation that did not apply; the code stays in
// the form so it can be corrected.
func (s *server) mutationPage(sess *session.Session, accession string, v session.View, code string) Page {
	if v.MutationErr == nil {
		return s.page(sess, accession, nil)
	}
	p := s.page(sess, accession, &Flash{Kind: "error", Message: fmt.Sprintf("%s: %v", code, v.MutationErr)})
	p.Code = code
	return p
}

func (s *server) addHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	_, err := sess.Add()
	switch {
	case errors.Is(err, session.ErrNoRecord):
		s.render(w, http.StatusConflict, s.page(sess, "", &Flash{Kind: "warning", Message: "Please fetch a sequence first!"}))
	case errors.Is(err, session.ErrDuplicate):
		s.render(w, http.StatusOK, s.page(sess, "", &Flash{Kind: "warning", Message: "This sequence is already in the list!"}))
	default:
		s.render(w, http.StatusOK, s.page(sess, "", &Flash{Kind: "success", Message: "Sequence added to list!"}))
	}
}

func (s *server) clearHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	sess.Clear()
	s.render(w, http.StatusOK, s.page(sess, "", &Flash{Kind: "success", Message: "Lists cleared!"}))
}

func (s *server) exportHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	if sess.Len() == 0 {
		http.Error(w, session.ErrEmpty.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.cfg.ExportFile))
	if err := sess.Export(w); err != nil {
		s.logger.Error("export failed", "err", err)
	}
}

// sessionJSON is the shape returned by /api/session.
type sessionJSON struct {
	Record        *uniprot.Record `json:"record"`
	Mutation      string          `json:"mutation,omitempty"`
	Sequence      string          `json:"sequence,omitempty"`
	MutationError string          `json:"mutation_error,omitempty"`
	Entries       []entry.Entry   `json:"entries"`
}

func (s *server) apiSessionHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	v := sess.Current()
	out := sessionJSON{Record: v.Record, Mutation: v.Code, Sequence: v.Sequence, Entries: sess.Entries()}
	if v.MutationErr != nil {
		out.MutationError = v.MutationErr.Error()
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(out)
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.indexHandler)
	mux.HandleFunc("POST /fetch", s.fetchHandler)
	mux.HandleFunc("POST /mutate", s.mutateHandler)
	mux.HandleFunc("POST /add", s.addHandler)
	mux.HandleFunc("POST /clear", s.clearHandler)
	mux.HandleFunc("GET /export", s.exportHandler)
	mux.HandleFunc("GET /api/session", s.apiSessionHandler)
	return loggingMiddleware(s.logger, mux)
}

func main() {
	configPath := flag.String("config", "", "path to config.json (optional)")
	addr := flag.String("addr", "", "HTTP listen address (overrides web_addr)")
	verbose := flag.Bool("verbose", false, "enable verbose (debug) logging")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.WebAddr = *addr
	}
	logger, closeLog := logging.New(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel, Verbose: *verbose, Prefix: "web"})
	defer closeLog()

	s := &server{store: session.NewStore(), fetcher: cfg.Client(), cfg: cfg, logger: logger}
	srv := &http.Server{Addr: cfg.WebAddr, Handler: s.routes(), ReadTimeout: 5 * time.Second, WriteTimeout: cfg.HTTPTimeout() + 10*time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving UI", "addr", cfg.WebAddr, "uniprot", cfg.UniprotBaseURL)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}
