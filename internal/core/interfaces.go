// Package core defines the shared types, interfaces, and error kinds of the
// document translation and narration pipeline.
package core

import "context"

// ArtifactStore is a key-value store for persisted pipeline artifacts
// (extraction, translation, segment manifests). Keys are flat artifact names.
// Implementations map their native not-found condition to ErrNotFound. The
// store is the sole writer for a key; concurrent writers race with
// last-writer-wins semantics.
type ArtifactStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Extractor extracts per-page text and metadata from an uploaded document.
type Extractor interface {
	Extract(path string) (*Extraction, error)
}

// Translator converts text between languages. sourceLang may be "auto" for
// provider-side detection; the resolved source comes back lower-cased in the
// result.
type Translator interface {
	Translate(ctx context.Context, text, targetLang, sourceLang string) (*TranslationResult, error)
	DetectLanguage(ctx context.Context, text string) (*Detection, error)
	SupportedLanguages() []string
	Name() string
}

// Synthesizer converts text to speech audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string, slow bool) ([]byte, error)
	SupportedLanguages() []string
	Name() string
}
