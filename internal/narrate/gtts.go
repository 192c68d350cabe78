// Package narrate turns translated text into speech audio and manages the
// per-document segment manifests that pair audio files with their text.
package narrate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/readlingo/readlingo/internal/core"
)

const (
	defaultGTTSBaseURL = "https://translate.google.com"
	gttsPath           = "/translate_tts"

	// The endpoint reads ttsspeed as a rate multiplier; 0.3 is the slow
	// rate the web player uses.
	gttsSlowSpeed   = "0.3"
	gttsNormalSpeed = "1"
)

// GTTS synthesizes speech through the free Google Translate TTS endpoint. No
// credentials are required.
type GTTS struct {
	httpClient *http.Client
	baseURL    string
}

// NewGTTS creates a gTTS synthesizer with the given request timeout.
func NewGTTS(timeout time.Duration) *GTTS {
	return NewGTTSWithBaseURL(defaultGTTSBaseURL, timeout)
}

// NewGTTSWithBaseURL creates a gTTS synthesizer against a custom endpoint.
// This constructor is primarily for testing.
func NewGTTSWithBaseURL(baseURL string, timeout time.Duration) *GTTS {
	return &GTTS{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the provider name used in artifacts and responses.
func (g *GTTS) Name() string {
	return ServiceGTTS
}

// Synthesize requests MP3 audio for the text. The endpoint handles
// sentence-sized inputs; callers narrating whole documents should segment
// first.
func (g *GTTS) Synthesize(ctx context.Context, text, language string, slow bool) ([]byte, error) {
	speed := gttsNormalSpeed
	if slow {
		speed = gttsSlowSpeed
	}

	query := url.Values{}
	query.Set("ie", "UTF-8")
	query.Set("client", "tw-ob")
	query.Set("tl", language)
	query.Set("q", text)
	query.Set("ttsspeed", speed)

	endpoint := g.baseURL + gttsPath + "?" + query.Encode()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build request: %w", core.ErrProvider, err)
	}

	response, err := g.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("%w: gtts request failed: %w", core.ErrProvider, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: gtts returned %s", core.ErrProvider, response.Status)
	}

	audio, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read audio: %w", core.ErrProvider, err)
	}

	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: gtts returned empty audio", core.ErrProvider)
	}

	return audio, nil
}

// SupportedLanguages lists the language codes this provider accepts.
func (g *GTTS) SupportedLanguages() []string {
	return []string{
		"en", "es", "fr", "de", "it", "pt", "ru", "ja", "ko",
		"zh-cn", "zh-tw", "ar", "hi", "nl", "pl", "tr", "vi",
		"th", "id", "sv", "no", "da", "fi", "cs", "el", "he",
		"hu", "ro", "sk", "uk", "bn", "ta", "te", "mr", "gu",
	}
}
