package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/readlingo/readlingo/internal/core"
)

const (
	defaultGoogleBaseURL = "https://translate.googleapis.com"
	googleTranslatePath  = "/translate_a/single"

	autoSource = "auto"
)

// GoogleTranslate translates text through the free Google Translate web
// endpoint. No credentials are required.
type GoogleTranslate struct {
	httpClient *http.Client
	baseURL    string
}

// NewGoogleTranslate creates a Google translator with the given request
// timeout.
func NewGoogleTranslate(timeout time.Duration) *GoogleTranslate {
	return NewGoogleTranslateWithBaseURL(defaultGoogleBaseURL, timeout)
}

// NewGoogleTranslateWithBaseURL creates a Google translator against a custom
// endpoint. This constructor is primarily for testing.
func NewGoogleTranslateWithBaseURL(baseURL string, timeout time.Duration) *GoogleTranslate {
	return &GoogleTranslate{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the provider name used in artifacts and responses.
func (g *GoogleTranslate) Name() string {
	return ServiceGoogle
}

// Translate requests a translation and returns the translated text together
// with the resolved source language.
func (g *GoogleTranslate) Translate(ctx context.Context, text, targetLang, sourceLang string) (*core.TranslationResult, error) {
	query := url.Values{}
	query.Set("client", "gtx")
	query.Set("dt", "t")
	query.Set("ie", "UTF-8")
	query.Set("oe", "UTF-8")
	query.Set("sl", sourceLang)
	query.Set("tl", targetLang)
	query.Set("q", text)

	endpoint := g.baseURL + googleTranslatePath + "?" + query.Encode()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build request: %w", core.ErrProvider, err)
	}

	response, err := g.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("%w: google translate request failed: %w", core.ErrProvider, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", core.ErrProvider, err)
	}

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: google translate returned %s", core.ErrProvider, response.Status)
	}

	translated, detected, err := parseGoogleResponse(body)
	if err != nil {
		return nil, err
	}

	if detected == "" || detected == autoSource {
		detected = sourceLang
	}

	return &core.TranslationResult{
		TranslatedText: translated,
		SourceLang:     strings.ToLower(detected),
		TargetLang:     targetLang,
		Service:        ServiceGoogle,
	}, nil
}

// DetectLanguage resolves the language of text via a throwaway translation to
// English, reading the detected source from the response.
func (g *GoogleTranslate) DetectLanguage(ctx context.Context, text string) (*core.Detection, error) {
	result, err := g.Translate(ctx, text, "en", autoSource)
	if err != nil {
		return nil, err
	}

	return &core.Detection{Language: result.SourceLang, Confidence: nil}, nil
}

// SupportedLanguages lists the language codes this provider accepts.
func (g *GoogleTranslate) SupportedLanguages() []string {
	return []string{
		"en", "es", "fr", "de", "it", "pt", "ru", "ja", "ko",
		"zh-cn", "zh-tw", "ar", "hi", "nl", "pl", "tr", "vi",
		"th", "id", "ms", "sv", "no", "da", "fi",
	}
}

// parseGoogleResponse unpacks the endpoint's nested-array payload:
// [[["translated","original",...],...], null, "detected-source", ...].
func parseGoogleResponse(body []byte) (translated, detected string, err error) {
	var payload []any

	err = json.Unmarshal(body, &payload)
	if err != nil {
		return "", "", fmt.Errorf("%w: malformed google translate response: %w", core.ErrProvider, err)
	}

	if len(payload) == 0 {
		return "", "", fmt.Errorf("%w: empty google translate response", core.ErrProvider)
	}

	sentences, ok := payload[0].([]any)
	if !ok {
		return "", "", fmt.Errorf("%w: unexpected google translate payload shape", core.ErrProvider)
	}

	var builder strings.Builder

	for _, sentence := range sentences {
		parts, ok := sentence.([]any)
		if !ok || len(parts) == 0 {
			continue
		}

		if text, ok := parts[0].(string); ok {
			builder.WriteString(text)
		}
	}

	if len(payload) > 2 {
		if lang, ok := payload[2].(string); ok {
			detected = lang
		}
	}

	return builder.String(), detected, nil
}
