package narrate_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/readlingo/readlingo/internal/core"
	"github.com/readlingo/readlingo/internal/narrate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGTTS_Synthesize(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/translate_tts", r.URL.Path)
		assert.Equal(t, "tw-ob", r.URL.Query().Get("client"))
		assert.Equal(t, "es", r.URL.Query().Get("tl"))
		assert.Equal(t, "hola", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("ttsspeed"))

		_, _ = w.Write([]byte("fake-mp3-bytes"))
	}))
	defer server.Close()

	synth := narrate.NewGTTSWithBaseURL(server.URL, 5*time.Second)

	audio, err := synth.Synthesize(context.Background(), "hola", "es", false)
	require.NoError(t, err)
	assert.Equal(t, []byte("fake-mp3-bytes"), audio)
}

func TestGTTS_SlowSpeed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "0.3", r.URL.Query().Get("ttsspeed"))

		_, _ = w.Write([]byte("slow-mp3"))
	}))
	defer server.Close()

	synth := narrate.NewGTTSWithBaseURL(server.URL, 5*time.Second)

	_, err := synth.Synthesize(context.Background(), "despacio", "es", true)
	require.NoError(t, err)
}

func TestGTTS_SupportedLanguages(t *testing.T) {
	t.Parallel()

	languages := narrate.NewGTTS(time.Second).SupportedLanguages()

	assert.Len(t, languages, 35)

	for _, code := range []string{"he", "sk", "bn", "ta", "te", "mr", "gu"} {
		assert.Contains(t, languages, code)
	}
}

func TestGTTS_ServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	synth := narrate.NewGTTSWithBaseURL(server.URL, 5*time.Second)

	_, err := synth.Synthesize(context.Background(), "hola", "es", false)
	require.ErrorIs(t, err, core.ErrProvider)
}

func TestGTTS_EmptyAudio(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	synth := narrate.NewGTTSWithBaseURL(server.URL, 5*time.Second)

	_, err := synth.Synthesize(context.Background(), "hola", "es", false)
	require.ErrorIs(t, err, core.ErrProvider)
}
