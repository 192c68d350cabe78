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
	defaultDeepLBaseURL = "https://api-free.deepl.com"
	deepLTranslatePath  = "/v2/translate"
)

// DeepL translates text through the DeepL REST API. Requires an API key.
type DeepL struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewDeepL creates a DeepL translator with the given key and request timeout.
func NewDeepL(apiKey string, timeout time.Duration) *DeepL {
	return NewDeepLWithBaseURL(defaultDeepLBaseURL, apiKey, timeout)
}

// NewDeepLWithBaseURL creates a DeepL translator against a custom endpoint.
// This constructor is primarily for testing.
func NewDeepLWithBaseURL(baseURL, apiKey string, timeout time.Duration) *DeepL {
	return &DeepL{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the provider name used in artifacts and responses.
func (d *DeepL) Name() string {
	return ServiceDeepL
}

type deepLResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}

// Translate requests a translation. DeepL takes upper-case language codes and
// omits the source parameter for auto-detection.
func (d *DeepL) Translate(ctx context.Context, text, targetLang, sourceLang string) (*core.TranslationResult, error) {
	form := url.Values{}
	form.Set("text", text)
	form.Set("target_lang", strings.ToUpper(targetLang))

	if sourceLang != autoSource && sourceLang != "" {
		form.Set("source_lang", strings.ToUpper(sourceLang))
	}

	endpoint := d.baseURL + deepLTranslatePath

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build request: %w", core.ErrProvider, err)
	}

	request.Header.Set("Authorization", "DeepL-Auth-Key "+d.apiKey)
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := d.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("%w: deepl request failed: %w", core.ErrProvider, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", core.ErrProvider, err)
	}

	switch response.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w: deepl rejected the API key (%s)", core.ErrConfiguration, response.Status)
	default:
		return nil, fmt.Errorf("%w: deepl returned %s: %s", core.ErrProvider, response.Status, string(body))
	}

	var payload deepLResponse

	err = json.Unmarshal(body, &payload)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed deepl response: %w", core.ErrProvider, err)
	}

	if len(payload.Translations) == 0 {
		return nil, fmt.Errorf("%w: deepl returned no translations", core.ErrProvider)
	}

	resolvedSource := sourceLang
	if payload.Translations[0].DetectedSourceLanguage != "" {
		resolvedSource = payload.Translations[0].DetectedSourceLanguage
	}

	return &core.TranslationResult{
		TranslatedText: payload.Translations[0].Text,
		SourceLang:     strings.ToLower(resolvedSource),
		TargetLang:     targetLang,
		Service:        ServiceDeepL,
	}, nil
}

// DetectLanguage resolves the language of text via a throwaway translation to
// English with auto-detection.
func (d *DeepL) DetectLanguage(ctx context.Context, text string) (*core.Detection, error) {
	result, err := d.Translate(ctx, text, "en", autoSource)
	if err != nil {
		return nil, err
	}

	return &core.Detection{Language: result.SourceLang, Confidence: nil}, nil
}

// SupportedLanguages lists the language codes this provider accepts.
func (d *DeepL) SupportedLanguages() []string {
	return []string{
		"en", "de", "fr", "es", "pt", "it", "nl", "pl", "ru",
		"ja", "zh", "bg", "cs", "da", "el", "et", "fi", "hu",
		"id", "ko", "lt", "lv", "nb", "ro", "sk", "sl", "sv",
		"tr", "uk",
	}
}
