// Package translate drives chunked document translation through pluggable
// providers and persists the resulting artifacts.
package translate

import (
	"fmt"
	"time"

	"github.com/readlingo/readlingo/internal/core"
)

// Known provider names.
const (
	ServiceGoogle      = "google"
	ServiceDeepL       = "deepl"
	ServiceGoogleCloud = "google_cloud"
)

// NewProvider selects a translation provider by service name. Providers that
// need credentials fail here with ErrConfiguration when the credentials are
// absent; providers that are known but not built fail with ErrNotImplemented.
func NewProvider(service, deeplAPIKey string, timeout time.Duration) (core.Translator, error) {
	switch service {
	case ServiceGoogle:
		return NewGoogleTranslate(timeout), nil
	case ServiceDeepL:
		if deeplAPIKey == "" {
			return nil, fmt.Errorf("%w: DeepL API key not found", core.ErrConfiguration)
		}

		return NewDeepL(deeplAPIKey, timeout), nil
	case ServiceGoogleCloud:
		return nil, fmt.Errorf("%w: google cloud translation", core.ErrNotImplemented)
	default:
		return nil, fmt.Errorf("%w: unsupported translation service %q", core.ErrValidation, service)
	}
}
