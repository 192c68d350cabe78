package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/book-expert/logger"
	"github.com/readlingo/readlingo/internal/core"
	"github.com/readlingo/readlingo/internal/naming"
	"github.com/readlingo/readlingo/internal/text"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultChunkMaxChars bounds one provider call during whole-document
	// translation.
	DefaultChunkMaxChars = 5000
	defaultPageWorkers   = 4
)

// ServiceConfig tunes the translation orchestrator.
type ServiceConfig struct {
	// ChunkMaxChars is the advisory chunk bound for full-text translation.
	ChunkMaxChars int
	// PageWorkers bounds concurrent per-page provider calls.
	PageWorkers int
	// Strict fails a document translation on the first chunk error instead
	// of silently dropping the failed chunk from the reassembled text.
	Strict bool
}

// Service orchestrates text and document translation over one provider.
type Service struct {
	provider core.Translator
	store    core.ArtifactStore
	log      *logger.Logger
	cfg      ServiceConfig
}

// NewService creates a translation orchestrator. Zero config fields fall back
// to defaults.
func NewService(provider core.Translator, store core.ArtifactStore, log *logger.Logger, cfg ServiceConfig) *Service {
	if cfg.ChunkMaxChars <= 0 {
		cfg.ChunkMaxChars = DefaultChunkMaxChars
	}

	if cfg.PageWorkers <= 0 {
		cfg.PageWorkers = defaultPageWorkers
	}

	return &Service{
		provider: provider,
		store:    store,
		log:      log,
		cfg:      cfg,
	}
}

// TranslateText translates one piece of text. Empty or whitespace-only input
// short-circuits to a zero-content result without calling the provider.
func (s *Service) TranslateText(ctx context.Context, input, targetLang, sourceLang string) (*core.TranslationResult, error) {
	if strings.TrimSpace(input) == "" {
		return &core.TranslationResult{
			TranslatedText: "",
			SourceLang:     sourceLang,
			TargetLang:     targetLang,
			Service:        s.provider.Name(),
		}, nil
	}

	result, err := s.provider.Translate(ctx, input, targetLang, sourceLang)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// TranslateChunks translates each chunk independently. Per-chunk failures are
// captured in the result, index-tagged with the original text, so one bad
// chunk does not abort its siblings.
func (s *Service) TranslateChunks(ctx context.Context, chunks []string, targetLang, sourceLang string) []core.ChunkResult {
	results := make([]core.ChunkResult, 0, len(chunks))

	for index, chunk := range chunks {
		translation, err := s.TranslateText(ctx, chunk, targetLang, sourceLang)
		if err != nil {
			s.log.Warn("Chunk %d translation failed: %v", index, err)
			results = append(results, core.ChunkResult{
				ChunkIndex:   index,
				Error:        err.Error(),
				OriginalText: chunk,
			})

			continue
		}

		results = append(results, core.ChunkResult{
			ChunkIndex:  index,
			Translation: translation,
		})
	}

	return results
}

// TranslateDocument translates a stored document's full text (chunked) and
// each of its pages (independent provider calls), then persists the artifact
// keyed by (document_id, target_lang), overwriting any prior artifact for
// that key.
//
// The page translations are not sliced from the chunk translations, so the
// two cover the same source text without being character-for-character
// identical. That redundancy is deliberate.
func (s *Service) TranslateDocument(ctx context.Context, documentID, targetLang, sourceLang string) (*core.TranslationArtifact, error) {
	data, err := s.store.Download(ctx, naming.ExtractedKey(documentID))
	if err != nil {
		return nil, err
	}

	var extraction core.Extraction

	err = json.Unmarshal(data, &extraction)
	if err != nil {
		return nil, fmt.Errorf("failed to decode extracted artifact for %s: %w", documentID, err)
	}

	chunks := text.SplitChunks(extraction.FullText, s.cfg.ChunkMaxChars)
	s.log.Info("Translating document %s to %s: %d chunks, %d pages",
		documentID, targetLang, len(chunks), len(extraction.Pages))

	chunkResults := s.TranslateChunks(ctx, chunks, targetLang, sourceLang)

	if s.cfg.Strict {
		for _, result := range chunkResults {
			if result.Error != "" {
				return nil, fmt.Errorf("%w: chunk %d failed: %s",
					core.ErrProvider, result.ChunkIndex, result.Error)
			}
		}
	}

	translatedText := joinSuccessfulChunks(chunkResults)

	pages, err := s.translatePages(ctx, extraction.Pages, targetLang, sourceLang)
	if err != nil {
		return nil, err
	}

	artifact := &core.TranslationArtifact{
		DocumentID:     documentID,
		SourceLang:     resolveSourceLang(chunkResults, sourceLang),
		TargetLang:     targetLang,
		Service:        s.provider.Name(),
		OriginalText:   extraction.FullText,
		TranslatedText: translatedText,
		FullText:       translatedText,
		Pages:          pages,
		TotalPages:     len(pages),
		TotalChars:     len(translatedText),
		OriginalPages:  extraction.Pages,
	}

	encoded, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode translation artifact: %w", err)
	}

	err = s.store.Upload(ctx, naming.TranslationKey(documentID, targetLang), encoded)
	if err != nil {
		return nil, err
	}

	return artifact, nil
}

// DetectLanguage resolves the language of text through the provider.
func (s *Service) DetectLanguage(ctx context.Context, input string) (*core.Detection, error) {
	return s.provider.DetectLanguage(ctx, input)
}

// SupportedLanguages lists the provider's language codes.
func (s *Service) SupportedLanguages() []string {
	return s.provider.SupportedLanguages()
}

// translatePages translates each page individually, preserving page numbers
// and recomputing char counts from the translated text. Page translations are
// independent provider calls; the first failure aborts the whole document.
func (s *Service) translatePages(ctx context.Context, pages []core.Page, targetLang, sourceLang string) ([]core.TranslatedPage, error) {
	translated := make([]core.TranslatedPage, len(pages))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.cfg.PageWorkers)

	for index, page := range pages {
		group.Go(func() error {
			result, err := s.TranslateText(groupCtx, page.Text, targetLang, sourceLang)
			if err != nil {
				return fmt.Errorf("page %d translation failed: %w", page.PageNumber, err)
			}

			translated[index] = core.TranslatedPage{
				PageNumber:     page.PageNumber,
				OriginalText:   page.Text,
				TranslatedText: result.TranslatedText,
				CharCount:      len(result.TranslatedText),
			}

			return nil
		})
	}

	err := group.Wait()
	if err != nil {
		return nil, err
	}

	return translated, nil
}

// joinSuccessfulChunks reassembles the full translated text from the chunk
// results that succeeded, in original order, joined by a single space. Failed
// chunks disappear from the reconstruction; strict mode exists for callers
// that cannot accept that.
func joinSuccessfulChunks(results []core.ChunkResult) string {
	parts := make([]string, 0, len(results))

	for _, result := range results {
		if result.Translation != nil {
			parts = append(parts, result.Translation.TranslatedText)
		}
	}

	return strings.Join(parts, " ")
}

// resolveSourceLang takes the resolved source from the first successful chunk,
// falling back to the requested source.
func resolveSourceLang(results []core.ChunkResult, requested string) string {
	for _, result := range results {
		if result.Translation != nil {
			return result.Translation.SourceLang
		}
	}

	return requested
}
