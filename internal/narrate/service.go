package narrate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/book-expert/logger"
	"github.com/readlingo/readlingo/internal/core"
	"github.com/readlingo/readlingo/internal/naming"
)

const (
	// DefaultWordsPerMinute is the speaking rate used for duration
	// estimates when the provider reports none.
	DefaultWordsPerMinute = 150

	audioFilePermissions = 0o600
)

// ServiceConfig tunes the narration orchestrator.
type ServiceConfig struct {
	// AudioDir is the directory audio files are written under. Segment
	// audio goes into a per-document subdirectory.
	AudioDir string
	// WordsPerMinute sets the speaking rate for duration estimates.
	WordsPerMinute int
}

// Service orchestrates speech synthesis and manifest bookkeeping over one
// provider. Audio bytes always live on the filesystem because the serving
// endpoint streams them by path; only the manifests go through the artifact
// store.
type Service struct {
	synth core.Synthesizer
	store core.ArtifactStore
	log   *logger.Logger
	cfg   ServiceConfig
}

// NewService creates a narration orchestrator.
func NewService(synth core.Synthesizer, store core.ArtifactStore, log *logger.Logger, cfg ServiceConfig) *Service {
	if cfg.WordsPerMinute <= 0 {
		cfg.WordsPerMinute = DefaultWordsPerMinute
	}

	return &Service{
		synth: synth,
		store: store,
		log:   log,
		cfg:   cfg,
	}
}

// TextToSpeech narrates one piece of text into a uniquely named audio file.
// Blank text is a validation error, not an empty file.
func (s *Service) TextToSpeech(ctx context.Context, text, language string, slow bool) (*core.AudioInfo, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: no text provided for synthesis", core.ErrValidation)
	}

	fileName := naming.TTSFileName(language)

	return s.synthesizeToFile(ctx, text, language, slow, s.cfg.AudioDir, fileName)
}

// GenerateFullAudio narrates a document's whole text into a single file named
// by (document, language), directly in the audio root rather than the
// per-document segment directory. Re-running overwrites the previous
// narration.
func (s *Service) GenerateFullAudio(ctx context.Context, documentID, text, language string, slow bool) (*core.AudioInfo, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: document has no text to narrate", core.ErrValidation)
	}

	return s.synthesizeToFile(ctx, text, language, slow, s.cfg.AudioDir, naming.FullAudioName(documentID, language))
}

// GenerateSegments narrates each segment into the document's audio directory
// and persists the resulting manifest, overwriting any previous manifest for
// the document. Segments with empty text are skipped entirely; a synthesis
// failure is captured on its segment and does not stop the rest.
//
// originals provides the source-language counterpart texts, aligned to the
// translated segments by ordinal position. It may be shorter or nil; segments
// past its end get an empty original.
func (s *Service) GenerateSegments(ctx context.Context, documentID, language, segmentType string, segments, originals []core.Segment, slow bool) (*core.SegmentManifest, error) {
	docDir := filepath.Join(s.cfg.AudioDir, documentID)

	err := naming.EnsureDir(docDir)
	if err != nil {
		return nil, err
	}

	audioSegments := make([]core.AudioSegment, 0, len(segments))

	for position, segment := range segments {
		if strings.TrimSpace(segment.Text) == "" {
			continue
		}

		audioSegment := core.AudioSegment{
			SegmentID:    segment.ID,
			StartChar:    segment.StartChar,
			EndChar:      segment.EndChar,
			Text:         segment.Text,
			OriginalText: originalAt(originals, position),
		}

		info, synthErr := s.synthesizeToFile(ctx, segment.Text, language, slow,
			docDir, naming.SegmentFileName(segment.ID))
		if synthErr != nil {
			s.log.Warn("Segment %d narration failed for %s: %v", segment.ID, documentID, synthErr)

			audioSegment.Error = synthErr.Error()
			audioSegments = append(audioSegments, audioSegment)

			continue
		}

		audioSegment.AudioPath = info.AudioPath
		audioSegment.Language = info.Language
		audioSegment.Service = info.Service
		audioSegment.FileSize = info.FileSize
		audioSegment.Duration = info.Duration
		audioSegments = append(audioSegments, audioSegment)
	}

	manifest := &core.SegmentManifest{
		DocumentID:  documentID,
		Language:    language,
		SegmentType: segmentType,
		Segments:    audioSegments,
	}

	err = s.saveManifest(ctx, manifest)
	if err != nil {
		return nil, err
	}

	s.log.Info("Narrated %d/%d segments of %s in %s",
		countSucceeded(audioSegments), len(segments), documentID, language)

	return manifest, nil
}

// LoadManifest retrieves the stored segment manifest of a document.
func (s *Service) LoadManifest(ctx context.Context, documentID string) (*core.SegmentManifest, error) {
	data, err := s.store.Download(ctx, naming.ManifestKey(documentID))
	if err != nil {
		return nil, err
	}

	var manifest core.SegmentManifest

	err = json.Unmarshal(data, &manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to decode segment manifest for %s: %w", documentID, err)
	}

	return &manifest, nil
}

// EstimateDuration predicts narration length in seconds from a naive
// whitespace word count at the configured speaking rate.
func (s *Service) EstimateDuration(text string) float64 {
	words := len(strings.Fields(text))

	return float64(words) / float64(s.cfg.WordsPerMinute) * 60
}

// SupportedLanguages lists the provider's language codes.
func (s *Service) SupportedLanguages() []string {
	return s.synth.SupportedLanguages()
}

// ProviderName reports the configured provider's name.
func (s *Service) ProviderName() string {
	return s.synth.Name()
}

func (s *Service) synthesizeToFile(ctx context.Context, text, language string, slow bool, dir, fileName string) (*core.AudioInfo, error) {
	audio, err := s.synth.Synthesize(ctx, text, language, slow)
	if err != nil {
		return nil, err
	}

	err = naming.EnsureDir(dir)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, fileName)

	err = os.WriteFile(path, audio, audioFilePermissions)
	if err != nil {
		return nil, fmt.Errorf("failed to write audio file %s: %w", path, err)
	}

	return &core.AudioInfo{
		Success:   true,
		AudioPath: path,
		Language:  language,
		Service:   s.synth.Name(),
		FileSize:  int64(len(audio)),
		Duration:  nil,
	}, nil
}

func (s *Service) saveManifest(ctx context.Context, manifest *core.SegmentManifest) error {
	encoded, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode segment manifest: %w", err)
	}

	return s.store.Upload(ctx, naming.ManifestKey(manifest.DocumentID), encoded)
}

// originalAt aligns originals to translated segments by position. The counts
// drift when the two languages split into different sentence counts; segments
// past the end of the originals get an empty counterpart.
func originalAt(originals []core.Segment, position int) string {
	if position < len(originals) {
		return originals[position].Text
	}

	return ""
}

func countSucceeded(segments []core.AudioSegment) int {
	succeeded := 0

	for _, segment := range segments {
		if segment.Error == "" {
			succeeded++
		}
	}

	return succeeded
}
