// Package server exposes the upload, translation, and narration pipeline over
// HTTP with JSON responses.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/book-expert/logger"
	"github.com/readlingo/readlingo/internal/core"
	"github.com/readlingo/readlingo/internal/narrate"
	"github.com/readlingo/readlingo/internal/translate"
)

// TranslatorFactory builds a translation provider by service name.
type TranslatorFactory func(service string) (core.Translator, error)

// SynthesizerFactory builds a speech provider by service name.
type SynthesizerFactory func(service string) (core.Synthesizer, error)

// Config carries the request-handling settings of the HTTP surface.
type Config struct {
	// MaxUploadBytes caps the multipart upload body.
	MaxUploadBytes int64
	// UploadsDir receives the stored PDF files.
	UploadsDir string
	// TranslationService is the provider used when a request names none.
	TranslationService string
	// TTSService is the speech provider used when a request names none.
	TTSService string
	// DeepLAPIKey is forwarded to the default translator factory.
	DeepLAPIKey string
	// ProviderTimeout bounds outbound provider calls.
	ProviderTimeout time.Duration
	// Translate tunes the translation orchestrator.
	Translate translate.ServiceConfig
	// Narrate tunes the narration orchestrator and holds the audio
	// directory the serving endpoint streams from.
	Narrate narrate.ServiceConfig
	// Slow selects the slow speaking rate for synthesis.
	Slow bool
}

// Server routes pipeline operations to the orchestrators. Providers are
// constructed per request because the service is a request parameter.
type Server struct {
	cfg           Config
	store         core.ArtifactStore
	extractor     core.Extractor
	newTranslator TranslatorFactory
	newSynth      SynthesizerFactory
	log           *logger.Logger
	mux           *http.ServeMux
}

// New creates a server wired to the real provider factories.
func New(cfg Config, store core.ArtifactStore, extractor core.Extractor, log *logger.Logger) *Server {
	translatorFactory := func(service string) (core.Translator, error) {
		return translate.NewProvider(service, cfg.DeepLAPIKey, cfg.ProviderTimeout)
	}
	synthFactory := func(service string) (core.Synthesizer, error) {
		return narrate.NewSynthesizer(service, cfg.ProviderTimeout)
	}

	return NewWithFactories(cfg, store, extractor, translatorFactory, synthFactory, log)
}

// NewWithFactories creates a server with caller-supplied provider factories.
// Tests inject fakes here.
func NewWithFactories(cfg Config, store core.ArtifactStore, extractor core.Extractor, translatorFactory TranslatorFactory, synthFactory SynthesizerFactory, log *logger.Logger) *Server {
	srv := &Server{
		cfg:           cfg,
		store:         store,
		extractor:     extractor,
		newTranslator: translatorFactory,
		newSynth:      synthFactory,
		log:           log,
		mux:           http.NewServeMux(),
	}
	srv.routes()

	return srv
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/upload", s.handleUpload)
	s.mux.HandleFunc("GET /api/document/{documentID}", s.handleGetDocument)
	s.mux.HandleFunc("POST /api/translate", s.handleTranslate)
	s.mux.HandleFunc("POST /api/translate/document", s.handleTranslateDocument)
	s.mux.HandleFunc("POST /api/detect-language", s.handleDetectLanguage)
	s.mux.HandleFunc("GET /api/supported-languages", s.handleSupportedLanguages)
	s.mux.HandleFunc("POST /api/tts/generate", s.handleTTSGenerate)
	s.mux.HandleFunc("POST /api/tts/generate-document", s.handleTTSGenerateDocument)
	s.mux.HandleFunc("POST /api/tts/generate-custom", s.handleTTSGenerateCustom)
	s.mux.HandleFunc("GET /api/tts/audio/{filename...}", s.handleTTSAudio)
	s.mux.HandleFunc("GET /api/tts/segments/{documentID}", s.handleTTSSegments)
	s.mux.HandleFunc("GET /api/tts/supported-languages", s.handleTTSSupportedLanguages)
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
}

// Handler returns the full middleware-wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return corsMiddleware(s.mux)
}

// corsMiddleware allows the single-page front end to call the API from any
// origin and answers preflight requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)

			return
		}

		next.ServeHTTP(w, r)
	})
}

// translationService builds a translation orchestrator for one request.
func (s *Server) translationService(service string) (*translate.Service, error) {
	if service == "" {
		service = s.cfg.TranslationService
	}

	provider, err := s.newTranslator(service)
	if err != nil {
		return nil, err
	}

	return translate.NewService(provider, s.store, s.log, s.cfg.Translate), nil
}

// narrationService builds a narration orchestrator for one request.
func (s *Server) narrationService(service string) (*narrate.Service, error) {
	if service == "" {
		service = s.cfg.TTSService
	}

	synth, err := s.newSynth(service)
	if err != nil {
		return nil, err
	}

	return narrate.NewService(synth, s.store, s.log, s.cfg.Narrate), nil
}

// decodeJSON reads a request body into dst, treating malformed JSON as a
// validation failure.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil {
		return fmt.Errorf("%w: malformed JSON body: %w", core.ErrValidation, err)
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// writeError maps an error kind to its HTTP status and emits the error body.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	label := "Internal server error"

	switch {
	case errors.Is(err, core.ErrValidation):
		status = http.StatusBadRequest
		label = "Invalid request"
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
		label = "Not found"
	case errors.Is(err, core.ErrNotImplemented):
		label = "Service not implemented"
	case errors.Is(err, core.ErrConfiguration):
		label = "Service misconfigured"
	case errors.Is(err, core.ErrProvider):
		label = "Provider request failed"
	}

	if status >= http.StatusInternalServerError {
		s.log.Error("Request failed: %v", err)
	}

	writeJSON(w, status, errorResponse{Error: label, Details: err.Error()})
}

// writeNamedError emits a fixed top-level error message, used where the API
// contract pins the exact string.
func writeNamedError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
