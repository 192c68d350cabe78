package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/readlingo/readlingo/internal/core"
	"github.com/readlingo/readlingo/internal/naming"
	"github.com/readlingo/readlingo/internal/text"
)

const (
	defaultSourceLang  = "auto"
	defaultTTSLanguage = "en"

	segmentTypeSentence = "sentence"
	segmentTypeWord     = "word"
	segmentTypeFull     = "full"
)

// segmentsFor picks the segmentation for a narration request: word-level for
// word-by-word highlighting, sentence-level otherwise.
func segmentsFor(segmentType, value string) []core.Segment {
	if segmentType == segmentTypeWord {
		return text.WordSegments(value)
	}

	return text.SentenceSegments(value)
}

// isSegmentedType reports whether a segment_type produces per-segment audio
// with a manifest, as opposed to one full-document file.
func isSegmentedType(segmentType string) bool {
	return segmentType == segmentTypeSentence || segmentType == segmentTypeWord
}

type segmentsResponse struct {
	Success        bool                `json:"success"`
	DocumentID     string              `json:"document_id"`
	Language       string              `json:"language"`
	SegmentType    string              `json:"segment_type"`
	TotalSegments  int                 `json:"total_segments"`
	Segments       []core.AudioSegment `json:"segments"`
	AudioDirectory string              `json:"audio_directory"`
}

// newSegmentsResponse wraps a manifest with the counts and the audio
// directory (relative to the audio root) the front end reads.
func newSegmentsResponse(manifest *core.SegmentManifest) segmentsResponse {
	return segmentsResponse{
		Success:        true,
		DocumentID:     manifest.DocumentID,
		Language:       manifest.Language,
		SegmentType:    manifest.SegmentType,
		TotalSegments:  len(manifest.Segments),
		Segments:       manifest.Segments,
		AudioDirectory: manifest.DocumentID,
	}
}

type fullAudioResponse struct {
	Success       bool            `json:"success"`
	DocumentID    string          `json:"document_id"`
	Language      string          `json:"language"`
	SegmentType   string          `json:"segment_type"`
	Audio         *core.AudioInfo `json:"audio"`
	AudioFilename string          `json:"audio_filename"`
}

type uploadResponse struct {
	DocumentID string            `json:"document_id"`
	Filename   string            `json:"filename"`
	TotalPages int               `json:"total_pages"`
	TotalChars int               `json:"total_chars"`
	FullText   string            `json:"full_text"`
	Pages      []core.Page       `json:"pages"`
	Metadata   map[string]string `json:"metadata"`
}

// handleUpload stores a PDF, extracts its text, and persists the extraction
// artifact under a fresh document id.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: missing file field: %w", core.ErrValidation, err))

		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		writeNamedError(w, http.StatusBadRequest, "Invalid file type. Only PDF files are supported.")

		return
	}

	err = naming.EnsureDir(s.cfg.UploadsDir)
	if err != nil {
		s.writeError(w, err)

		return
	}

	storedName := naming.UniqueName(header.Filename)
	storedPath := filepath.Join(s.cfg.UploadsDir, storedName)

	err = saveUpload(file, storedPath)
	if err != nil {
		s.writeError(w, err)

		return
	}

	extraction, err := s.extractor.Extract(storedPath)
	if err != nil {
		s.writeError(w, err)

		return
	}

	documentID := naming.DocumentID(storedName)

	encoded, err := json.MarshalIndent(extraction, "", "  ")
	if err != nil {
		s.writeError(w, fmt.Errorf("failed to encode extraction artifact: %w", err))

		return
	}

	err = s.store.Upload(r.Context(), naming.ExtractedKey(documentID), encoded)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.log.Info("Uploaded %s as %s: %d pages, %d chars",
		header.Filename, documentID, extraction.TotalPages, extraction.TotalChars)

	writeJSON(w, http.StatusOK, uploadResponse{
		DocumentID: documentID,
		Filename:   storedName,
		TotalPages: extraction.TotalPages,
		TotalChars: extraction.TotalChars,
		FullText:   extraction.FullText,
		Pages:      extraction.Pages,
		Metadata:   extraction.Metadata,
	})
}

func saveUpload(src io.Reader, path string) error {
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	if err != nil {
		return fmt.Errorf("failed to write upload file: %w", err)
	}

	return nil
}

// handleGetDocument returns the stored extraction artifact verbatim.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("documentID")

	data, err := s.store.Download(r.Context(), naming.ExtractedKey(documentID))
	if err != nil {
		if isNotFound(err) {
			writeNamedError(w, http.StatusNotFound, "Document not found")

			return
		}

		s.writeError(w, err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type translateRequest struct {
	Text       string `json:"text"`
	TargetLang string `json:"target_lang"`
	SourceLang string `json:"source_lang"`
	Service    string `json:"service"`
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest

	err := decodeJSON(r, &req)
	if err != nil {
		s.writeError(w, err)

		return
	}

	if strings.TrimSpace(req.Text) == "" {
		s.writeError(w, fmt.Errorf("%w: no text provided", core.ErrValidation))

		return
	}

	if req.TargetLang == "" {
		s.writeError(w, fmt.Errorf("%w: target_lang is required", core.ErrValidation))

		return
	}

	if req.SourceLang == "" {
		req.SourceLang = defaultSourceLang
	}

	service, err := s.translationService(req.Service)
	if err != nil {
		s.writeError(w, err)

		return
	}

	result, err := service.TranslateText(r.Context(), req.Text, req.TargetLang, req.SourceLang)
	if err != nil {
		s.writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"translation": result})
}

type translateDocumentRequest struct {
	DocumentID string `json:"document_id"`
	TargetLang string `json:"target_lang"`
	SourceLang string `json:"source_lang"`
	Service    string `json:"service"`
}

func (s *Server) handleTranslateDocument(w http.ResponseWriter, r *http.Request) {
	var req translateDocumentRequest

	err := decodeJSON(r, &req)
	if err != nil {
		s.writeError(w, err)

		return
	}

	if req.DocumentID == "" || req.TargetLang == "" {
		s.writeError(w, fmt.Errorf("%w: document_id and target_lang are required", core.ErrValidation))

		return
	}

	if req.SourceLang == "" {
		req.SourceLang = defaultSourceLang
	}

	service, err := s.translationService(req.Service)
	if err != nil {
		s.writeError(w, err)

		return
	}

	artifact, err := service.TranslateDocument(r.Context(), req.DocumentID, req.TargetLang, req.SourceLang)
	if err != nil {
		if isNotFound(err) {
			writeNamedError(w, http.StatusNotFound, "Document not found")

			return
		}

		s.writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, artifact)
}

type detectLanguageRequest struct {
	Text    string `json:"text"`
	Service string `json:"service"`
}

func (s *Server) handleDetectLanguage(w http.ResponseWriter, r *http.Request) {
	var req detectLanguageRequest

	err := decodeJSON(r, &req)
	if err != nil {
		s.writeError(w, err)

		return
	}

	if strings.TrimSpace(req.Text) == "" {
		s.writeError(w, fmt.Errorf("%w: text is required", core.ErrValidation))

		return
	}

	service, err := s.translationService(req.Service)
	if err != nil {
		s.writeError(w, err)

		return
	}

	detection, err := service.DetectLanguage(r.Context(), req.Text)
	if err != nil {
		s.writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, detection)
}

func (s *Server) handleSupportedLanguages(w http.ResponseWriter, r *http.Request) {
	serviceName := r.URL.Query().Get("service")

	service, err := s.translationService(serviceName)
	if err != nil {
		s.writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"languages": service.SupportedLanguages(),
	})
}

type ttsGenerateRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Service  string `json:"service"`
	Slow     *bool  `json:"slow"`
}

func (s *Server) handleTTSGenerate(w http.ResponseWriter, r *http.Request) {
	var req ttsGenerateRequest

	err := decodeJSON(r, &req)
	if err != nil {
		s.writeError(w, err)

		return
	}

	if req.Language == "" {
		req.Language = defaultTTSLanguage
	}

	service, err := s.narrationService(req.Service)
	if err != nil {
		s.writeError(w, err)

		return
	}

	info, err := service.TextToSpeech(r.Context(), req.Text, req.Language, s.slowFor(req.Slow))
	if err != nil {
		s.writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"audio":              info,
		"estimated_duration": service.EstimateDuration(req.Text),
	})
}

type ttsGenerateDocumentRequest struct {
	DocumentID  string `json:"document_id"`
	Language    string `json:"language"`
	Service     string `json:"service"`
	SegmentType string `json:"segment_type"`
	Slow        *bool  `json:"slow"`
}

// handleTTSGenerateDocument narrates a previously translated document, either
// as per-sentence segments with a manifest or as one full-document file.
func (s *Server) handleTTSGenerateDocument(w http.ResponseWriter, r *http.Request) {
	var req ttsGenerateDocumentRequest

	err := decodeJSON(r, &req)
	if err != nil {
		s.writeError(w, err)

		return
	}

	if req.DocumentID == "" || req.Language == "" {
		s.writeError(w, fmt.Errorf("%w: document_id and language are required", core.ErrValidation))

		return
	}

	if req.SegmentType == "" {
		req.SegmentType = segmentTypeSentence
	}

	artifact, err := s.loadTranslation(r, req.DocumentID, req.Language)
	if err != nil {
		if isNotFound(err) {
			writeNamedError(w, http.StatusNotFound, "Translation not found")

			return
		}

		s.writeError(w, err)

		return
	}

	service, err := s.narrationService(req.Service)
	if err != nil {
		s.writeError(w, err)

		return
	}

	slow := s.slowFor(req.Slow)

	// Any segment_type other than the segmented ones means one
	// full-document file.
	if !isSegmentedType(req.SegmentType) {
		info, fullErr := service.GenerateFullAudio(r.Context(),
			req.DocumentID, artifact.TranslatedText, req.Language, slow)
		if fullErr != nil {
			s.writeError(w, fullErr)

			return
		}

		writeJSON(w, http.StatusOK, fullAudioResponse{
			Success:       true,
			DocumentID:    req.DocumentID,
			Language:      req.Language,
			SegmentType:   segmentTypeFull,
			Audio:         info,
			AudioFilename: naming.FullAudioName(req.DocumentID, req.Language),
		})

		return
	}

	manifest, err := service.GenerateSegments(r.Context(),
		req.DocumentID, req.Language, req.SegmentType,
		segmentsFor(req.SegmentType, artifact.TranslatedText),
		segmentsFor(req.SegmentType, artifact.OriginalText),
		slow)
	if err != nil {
		s.writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, newSegmentsResponse(manifest))
}

type ttsGenerateCustomRequest struct {
	DocumentID     string `json:"document_id"`
	Language       string `json:"language"`
	TranslatedText string `json:"translated_text"`
	OriginalText   string `json:"original_text"`
	Service        string `json:"service"`
	SegmentType    string `json:"segment_type"`
	Slow           *bool  `json:"slow"`
}

// handleTTSGenerateCustom narrates caller-supplied text, bypassing the stored
// translation. Used after the front end edits a translation by hand.
func (s *Server) handleTTSGenerateCustom(w http.ResponseWriter, r *http.Request) {
	var req ttsGenerateCustomRequest

	err := decodeJSON(r, &req)
	if err != nil {
		s.writeError(w, err)

		return
	}

	if req.DocumentID == "" || req.Language == "" {
		s.writeError(w, fmt.Errorf("%w: document_id and language are required", core.ErrValidation))

		return
	}

	if strings.TrimSpace(req.TranslatedText) == "" {
		s.writeError(w, fmt.Errorf("%w: translated_text is required", core.ErrValidation))

		return
	}

	if req.SegmentType == "" {
		req.SegmentType = segmentTypeSentence
	}

	// Custom narration has no stored translation to fall back on, so
	// full-document mode is not offered here.
	if !isSegmentedType(req.SegmentType) {
		s.writeError(w, fmt.Errorf("%w: only sentence and word segment types are supported",
			core.ErrValidation))

		return
	}

	service, err := s.narrationService(req.Service)
	if err != nil {
		s.writeError(w, err)

		return
	}

	manifest, err := service.GenerateSegments(r.Context(),
		req.DocumentID, req.Language, req.SegmentType,
		segmentsFor(req.SegmentType, req.TranslatedText),
		segmentsFor(req.SegmentType, req.OriginalText),
		s.slowFor(req.Slow))
	if err != nil {
		s.writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, newSegmentsResponse(manifest))
}

// handleTTSAudio streams a generated audio file. The filename may include the
// per-document subdirectory.
func (s *Server) handleTTSAudio(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")

	if strings.Contains(filename, "..") || !naming.IsAudioFileName(filename) {
		writeNamedError(w, http.StatusBadRequest, "Invalid audio filename")

		return
	}

	path := filepath.Join(s.cfg.Narrate.AudioDir, filepath.FromSlash(filename))

	_, err := os.Stat(path)
	if err != nil {
		writeNamedError(w, http.StatusNotFound, "Audio file not found")

		return
	}

	http.ServeFile(w, r, path)
}

func (s *Server) handleTTSSegments(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("documentID")

	data, err := s.store.Download(r.Context(), naming.ManifestKey(documentID))
	if err != nil {
		if isNotFound(err) {
			writeNamedError(w, http.StatusNotFound, "Segments not found")

			return
		}

		s.writeError(w, err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleTTSSupportedLanguages lists the speech provider's languages. A
// recognized but unimplemented provider yields an empty list rather than an
// error.
func (s *Server) handleTTSSupportedLanguages(w http.ResponseWriter, r *http.Request) {
	serviceName := r.URL.Query().Get("service")

	service, err := s.narrationService(serviceName)
	if err != nil {
		s.writeError(w, err)

		return
	}

	languages := service.SupportedLanguages()
	if languages == nil {
		languages = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"service":   service.ProviderName(),
		"languages": languages,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// loadTranslation fetches and decodes a stored translation artifact.
func (s *Server) loadTranslation(r *http.Request, documentID, language string) (*core.TranslationArtifact, error) {
	data, err := s.store.Download(r.Context(), naming.TranslationKey(documentID, language))
	if err != nil {
		return nil, err
	}

	var artifact core.TranslationArtifact

	err = json.Unmarshal(data, &artifact)
	if err != nil {
		return nil, fmt.Errorf("failed to decode translation artifact for %s: %w", documentID, err)
	}

	return &artifact, nil
}

// slowFor resolves a request's optional slow flag against the configured
// default.
func (s *Server) slowFor(requested *bool) bool {
	if requested != nil {
		return *requested
	}

	return s.cfg.Slow
}

func isNotFound(err error) bool {
	return errors.Is(err, core.ErrNotFound)
}
