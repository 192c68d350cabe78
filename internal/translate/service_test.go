package translate_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/book-expert/logger"
	"github.com/readlingo/readlingo/internal/core"
	"github.com/readlingo/readlingo/internal/naming"
	"github.com/readlingo/readlingo/internal/translate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.New(t.TempDir(), "test.log")
	require.NoError(t, err)

	return log
}

// fakeProvider echoes its input upper-cased and can be told to fail on
// specific inputs.
type fakeProvider struct {
	mu       sync.Mutex
	calls    int
	failWhen func(text string) bool
	detected string
}

func (f *fakeProvider) Translate(_ context.Context, text, targetLang, sourceLang string) (*core.TranslationResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.failWhen != nil && f.failWhen(text) {
		return nil, errors.New("provider rejected the text")
	}

	resolved := sourceLang
	if f.detected != "" {
		resolved = f.detected
	}

	return &core.TranslationResult{
		TranslatedText: strings.ToUpper(text),
		SourceLang:     resolved,
		TargetLang:     targetLang,
		Service:        "fake",
	}, nil
}

func (f *fakeProvider) DetectLanguage(_ context.Context, _ string) (*core.Detection, error) {
	return &core.Detection{Language: "en"}, nil
}

func (f *fakeProvider) SupportedLanguages() []string {
	return []string{"en", "es"}
}

func (f *fakeProvider) Name() string {
	return "fake"
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

// memoryStore is an in-memory core.ArtifactStore for orchestrator tests.
type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: make(map[string][]byte)}
}

func (m *memoryStore) Download(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.objects[key]
	if !ok {
		return nil, core.ErrNotFound
	}

	return data, nil
}

func (m *memoryStore) Upload(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[key] = data

	return nil
}

func (m *memoryStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.objects[key]

	return ok, nil
}

func storeExtraction(t *testing.T, store *memoryStore, documentID string, extraction core.Extraction) {
	t.Helper()

	data, err := json.Marshal(extraction)
	require.NoError(t, err)
	require.NoError(t, store.Upload(context.Background(), naming.ExtractedKey(documentID), data))
}

func TestTranslateText_EmptyInputSkipsProvider(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{}
	service := translate.NewService(provider, newMemoryStore(), newTestLogger(t), translate.ServiceConfig{})

	result, err := service.TranslateText(context.Background(), "   \n\t ", "es", "en")
	require.NoError(t, err)

	assert.Empty(t, result.TranslatedText)
	assert.Equal(t, "en", result.SourceLang)
	assert.Equal(t, "es", result.TargetLang)
	assert.Equal(t, "fake", result.Service)
	assert.Zero(t, provider.callCount())
}

func TestTranslateChunks_CapturesPerChunkFailures(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{
		failWhen: func(text string) bool { return strings.Contains(text, "bad") },
	}
	service := translate.NewService(provider, newMemoryStore(), newTestLogger(t), translate.ServiceConfig{})

	results := service.TranslateChunks(context.Background(),
		[]string{"first chunk", "bad chunk", "third chunk"}, "es", "auto")
	require.Len(t, results, 3)

	assert.Equal(t, 0, results[0].ChunkIndex)
	require.NotNil(t, results[0].Translation)
	assert.Equal(t, "FIRST CHUNK", results[0].Translation.TranslatedText)

	assert.Equal(t, 1, results[1].ChunkIndex)
	assert.Nil(t, results[1].Translation)
	assert.NotEmpty(t, results[1].Error)
	assert.Equal(t, "bad chunk", results[1].OriginalText)

	require.NotNil(t, results[2].Translation)
	assert.Equal(t, "THIRD CHUNK", results[2].Translation.TranslatedText)
}

func TestTranslateDocument_MissingExtraction(t *testing.T) {
	t.Parallel()

	service := translate.NewService(&fakeProvider{}, newMemoryStore(), newTestLogger(t), translate.ServiceConfig{})

	_, err := service.TranslateDocument(context.Background(), "ghost", "es", "auto")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestTranslateDocument_BuildsAndPersistsArtifact(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{detected: "en"}
	store := newMemoryStore()
	service := translate.NewService(provider, store, newTestLogger(t), translate.ServiceConfig{})

	storeExtraction(t, store, "doc1", core.Extraction{
		FullText: "Hello world.\n\nSecond page text.",
		Pages: []core.Page{
			{PageNumber: 1, Text: "Hello world.", CharCount: 12},
			{PageNumber: 2, Text: "Second page text.", CharCount: 17},
		},
		TotalPages: 2,
	})

	artifact, err := service.TranslateDocument(context.Background(), "doc1", "es", "auto")
	require.NoError(t, err)

	assert.Equal(t, "doc1", artifact.DocumentID)
	assert.Equal(t, "en", artifact.SourceLang)
	assert.Equal(t, "es", artifact.TargetLang)
	assert.Equal(t, "fake", artifact.Service)
	assert.Equal(t, "HELLO WORLD.\n\nSECOND PAGE TEXT.", artifact.TranslatedText)
	assert.Equal(t, artifact.TranslatedText, artifact.FullText)
	assert.Len(t, artifact.Pages, 2)
	assert.Equal(t, 2, artifact.TotalPages)
	assert.Equal(t, len(artifact.TranslatedText), artifact.TotalChars)

	// Pages keep their numbers and pair original with translated text.
	assert.Equal(t, 1, artifact.Pages[0].PageNumber)
	assert.Equal(t, "Hello world.", artifact.Pages[0].OriginalText)
	assert.Equal(t, "HELLO WORLD.", artifact.Pages[0].TranslatedText)

	stored, err := store.Download(context.Background(), naming.TranslationKey("doc1", "es"))
	require.NoError(t, err)

	var persisted core.TranslationArtifact

	require.NoError(t, json.Unmarshal(stored, &persisted))
	assert.Equal(t, artifact.TranslatedText, persisted.TranslatedText)
}

func TestTranslateDocument_DropsFailedChunksByDefault(t *testing.T) {
	t.Parallel()

	longSentence := strings.Repeat("aaaa ", 20) + "bad."
	filler := strings.Repeat("good text. ", 600)
	fullText := strings.TrimSpace(filler) + " " + longSentence

	provider := &fakeProvider{
		failWhen: func(text string) bool { return strings.Contains(text, "bad") },
	}
	store := newMemoryStore()
	service := translate.NewService(provider, store, newTestLogger(t), translate.ServiceConfig{})

	storeExtraction(t, store, "doc2", core.Extraction{
		FullText: fullText,
		Pages: []core.Page{
			{PageNumber: 1, Text: "clean page", CharCount: 10},
		},
		TotalPages: 1,
	})

	artifact, err := service.TranslateDocument(context.Background(), "doc2", "es", "auto")
	require.NoError(t, err)

	// The chunk containing the failing sentence vanishes from the output.
	assert.NotContains(t, artifact.TranslatedText, "BAD")
	assert.Contains(t, artifact.TranslatedText, "GOOD TEXT.")
}

func TestTranslateDocument_StrictModeFailsOnChunkError(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{
		failWhen: func(text string) bool { return strings.Contains(text, "bad") },
	}
	store := newMemoryStore()
	service := translate.NewService(provider, store, newTestLogger(t),
		translate.ServiceConfig{Strict: true})

	storeExtraction(t, store, "doc3", core.Extraction{
		FullText:   "bad text",
		Pages:      []core.Page{{PageNumber: 1, Text: "bad text", CharCount: 8}},
		TotalPages: 1,
	})

	_, err := service.TranslateDocument(context.Background(), "doc3", "es", "auto")
	require.ErrorIs(t, err, core.ErrProvider)
}

func TestTranslateDocument_PageFailureAborts(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{
		failWhen: func(text string) bool { return strings.Contains(text, "poison") },
	}
	store := newMemoryStore()
	service := translate.NewService(provider, store, newTestLogger(t), translate.ServiceConfig{})

	storeExtraction(t, store, "doc4", core.Extraction{
		FullText: "fine text",
		Pages: []core.Page{
			{PageNumber: 1, Text: "fine text", CharCount: 9},
			{PageNumber: 2, Text: "poison page", CharCount: 11},
		},
		TotalPages: 2,
	})

	_, err := service.TranslateDocument(context.Background(), "doc4", "es", "auto")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 2")
}

func TestSupportedLanguagesPassthrough(t *testing.T) {
	t.Parallel()

	service := translate.NewService(&fakeProvider{}, newMemoryStore(), newTestLogger(t), translate.ServiceConfig{})

	assert.Equal(t, []string{"en", "es"}, service.SupportedLanguages())

	detection, err := service.DetectLanguage(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "en", detection.Language)
}
