package narrate

import (
	"context"
	"fmt"
	"time"

	"github.com/readlingo/readlingo/internal/core"
)

// Known synthesizer names.
const (
	ServiceGTTS        = "gtts"
	ServiceGoogleCloud = "google_cloud"
	ServiceAzure       = "azure"
	ServiceElevenLabs  = "elevenlabs"
)

// NewSynthesizer selects a speech provider by service name. Recognized
// services that are not built yet still construct; their Synthesize fails
// with ErrNotImplemented, so a server configured with one starts but cannot
// narrate. Unknown names fail here.
func NewSynthesizer(service string, timeout time.Duration) (core.Synthesizer, error) {
	switch service {
	case ServiceGTTS:
		return NewGTTS(timeout), nil
	case ServiceGoogleCloud, ServiceAzure, ServiceElevenLabs:
		return &unimplementedSynthesizer{name: service}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported TTS service %q", core.ErrValidation, service)
	}
}

// unimplementedSynthesizer is a placeholder for recognized providers that
// have no implementation.
type unimplementedSynthesizer struct {
	name string
}

func (u *unimplementedSynthesizer) Synthesize(_ context.Context, _, _ string, _ bool) ([]byte, error) {
	return nil, fmt.Errorf("%w: %s synthesis", core.ErrNotImplemented, u.name)
}

func (u *unimplementedSynthesizer) SupportedLanguages() []string {
	return nil
}

func (u *unimplementedSynthesizer) Name() string {
	return u.name
}
