package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/AaryanMohanta/ScamScan/internal/display"
	"github.com/AaryanMohanta/ScamScan/internal/gateway"
	"github.com/AaryanMohanta/ScamScan/internal/session"
	"github.com/AaryanMohanta/ScamScan/internal/workflow"
)

const defaultUploadMaxBytes = 50 * 1024 * 1024 // matches the backend limit

type server struct {
	controller *workflow.Controller
	logger     zerolog.Logger
	maxUpload  int64
}

type sessionResponse struct {
	Session session.Session `json:"session"`
	View    *display.View   `json:"view,omitempty"`
	Error   *session.Error  `json:"error,omitempty"`
}

func (s *server) respond(w http.ResponseWriter, snap session.Session, err error) {
	resp := sessionResponse{Session: snap}
	if view, ok := display.Render(snap); ok {
		resp.View = &view
	}
	status := http.StatusOK
	if err != nil {
		var typed *session.Error
		switch {
		case errors.As(err, &typed):
			resp.Error = typed
			if typed.Kind == session.ErrValidation {
				status = http.StatusBadRequest
			} else {
				status = http.StatusBadGateway
			}
		case errors.Is(err, workflow.ErrSuperseded):
			resp.Error = session.NewError(session.ErrValidation, "a newer submission took over")
			status = http.StatusConflict
		default:
			resp.Error = session.NewError(session.ErrValidation, "%v", err)
			status = http.StatusBadRequest
		}
	}
	writeJSON(w, status, resp)
}

func (s *server) scanUpload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > s.maxUpload && s.maxUpload > 0 {
		writeJSON(w, http.StatusRequestEntityTooLarge, sessionResponse{
			Session: s.controller.Session(),
			Error:   session.NewError(session.ErrValidation, "file too large"),
		})
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.respond(w, s.controller.Session(), session.NewError(session.ErrValidation, "invalid multipart form: %v", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respond(w, s.controller.Session(), session.NewError(session.ErrValidation, "no audio file selected"))
		return
	}
	defer file.Close()
	var reader io.Reader = file
	if s.maxUpload > 0 {
		reader = io.LimitReader(file, s.maxUpload+1)
	}
	audio, err := io.ReadAll(reader)
	if err != nil {
		s.respond(w, s.controller.Session(), session.NewError(session.ErrValidation, "read upload: %v", err))
		return
	}
	if s.maxUpload > 0 && int64(len(audio)) > s.maxUpload {
		writeJSON(w, http.StatusRequestEntityTooLarge, sessionResponse{
			Session: s.controller.Session(),
			Error:   session.NewError(session.ErrValidation, "file too large"),
		})
		return
	}
	in := session.Input{
		Kind:     session.InputAudioFile,
		FileName: header.Filename,
		MIMEType: header.Header.Get("Content-Type"),
		Audio:    audio,
	}
	snap, scanErr := s.controller.Scan(r.Context(), in, strings.TrimSpace(r.FormValue("phone_number")))
	s.respond(w, snap, scanErr)
}

func (s *server) scanNumber(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber string `json:"phone_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respond(w, s.controller.Session(), session.NewError(session.ErrValidation, "invalid payload: %v", err))
		return
	}
	in := session.Input{
		Kind:        session.InputPhoneNumber,
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
	}
	snap, err := s.controller.Scan(r.Context(), in, "")
	s.respond(w, snap, err)
}

func (s *server) analyse(w http.ResponseWriter, r *http.Request) {
	snap, err := s.controller.Analyze(r.Context())
	s.respond(w, snap, err)
}

func (s *server) report(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CallerIdentifier string `json:"caller_identifier"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respond(w, s.controller.Session(), session.NewError(session.ErrValidation, "invalid payload: %v", err))
		return
	}
	snap, err := s.controller.Report(r.Context(), strings.TrimSpace(req.CallerIdentifier))
	s.respond(w, snap, err)
}

func (s *server) getSession(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, s.controller.Session(), nil)
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func int64Env(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return parsed
		}
	}
	return def
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("callcheck exited")
	}
}

func run() error {
	addr := env("CALLCHECK_HTTP_ADDR", ":8070")

	gw, err := gateway.FromEnv(log.Logger)
	if err != nil {
		return fmt.Errorf("configure gateway: %w", err)
	}
	srv := &server{
		controller: workflow.New(gw, log.Logger),
		logger:     log.With().Str("component", "callcheck").Logger(),
		maxUpload:  int64Env("CALLCHECK_UPLOAD_MAX_BYTES", defaultUploadMaxBytes),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/healthz", healthz)
	r.Post("/api/scan/upload", srv.scanUpload)
	r.Post("/api/scan/number", srv.scanNumber)
	r.Post("/api/scan/analyse", srv.analyse)
	r.Post("/api/report", srv.report)
	r.Get("/api/session", srv.getSession)

	srv.logger.Info().Str("addr", addr).Msg("callcheck listening")
	return http.ListenAndServe(addr, r)
}
