// Package config provides the configuration structure for the readlingo
// server.
package config

import (
	"fmt"
	"os"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
)

// Defaults applied by Load when the corresponding keys are absent.
const (
	DefaultListenAddress    = ":8080"
	DefaultMaxUploadMB      = 16
	DefaultTimeoutSeconds   = 30
	DefaultChunkMaxChars    = 5000
	DefaultPageWorkers      = 4
	DefaultWordsPerMinute   = 150
	DefaultTranslationSvc   = "google"
	DefaultTTSService       = "gtts"
	DefaultStorageBackend   = "fs"
	DefaultUploadsDir       = "uploads"
	DefaultArtifactsDir     = "artifacts"
	DefaultAudioDir         = "audio"
	DefaultLogsDir          = "logs"
	DefaultSQLitePath       = "artifacts.db"
	DefaultNATSObjectBucket = "readlingo-artifacts"

	deeplKeyEnvVar = "DEEPL_API_KEY"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	ListenAddress string `toml:"listen_address"`
	MaxUploadMB   int64  `toml:"max_upload_mb"`
}

// PathsConfig holds the directories the service writes into.
type PathsConfig struct {
	UploadsDir   string `toml:"uploads_dir"`
	ArtifactsDir string `toml:"artifacts_dir"`
	AudioDir     string `toml:"audio_dir"`
	BaseLogsDir  string `toml:"base_logs_dir"`
}

// TranslationConfig selects and tunes the translation provider.
type TranslationConfig struct {
	Service        string `toml:"service"`
	DeepLAPIKey    string `toml:"deepl_api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	ChunkMaxChars  int    `toml:"chunk_max_chars"`
	PageWorkers    int    `toml:"page_workers"`
	Strict         bool   `toml:"strict"`
}

// TTSConfig selects and tunes the speech provider.
type TTSConfig struct {
	Service        string `toml:"service"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	WordsPerMinute int    `toml:"words_per_minute"`
	Slow           bool   `toml:"slow"`
}

// StorageConfig selects the artifact store backend: fs, sqlite, or nats.
type StorageConfig struct {
	Backend    string `toml:"backend"`
	SQLitePath string `toml:"sqlite_path"`
}

// NATSConfig holds the connection settings for the NATS artifact backend.
// Only read when storage.backend is "nats".
type NATSConfig struct {
	URL               string `toml:"url"`
	ObjectStoreBucket string `toml:"object_store_bucket"`
}

// Config is the root configuration structure.
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Paths       PathsConfig       `toml:"paths"`
	Translation TranslationConfig `toml:"translation"`
	TTS         TTSConfig         `toml:"tts"`
	Storage     StorageConfig     `toml:"storage"`
	NATS        NATSConfig        `toml:"nats"`
}

// Load loads the configuration for the readlingo server and fills in
// defaults. The DeepL API key falls back to the DEEPL_API_KEY environment
// variable so the secret can stay out of the config file.
func Load(log *logger.Logger) (*Config, error) {
	var cfg Config

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	cfg.ApplyDefaults()

	return &cfg, nil
}

// ApplyDefaults fills unset fields with their defaults. Exported so tests and
// ad hoc construction get the same behavior as Load.
func (c *Config) ApplyDefaults() {
	if c.Server.ListenAddress == "" {
		c.Server.ListenAddress = DefaultListenAddress
	}

	if c.Server.MaxUploadMB <= 0 {
		c.Server.MaxUploadMB = DefaultMaxUploadMB
	}

	if c.Paths.UploadsDir == "" {
		c.Paths.UploadsDir = DefaultUploadsDir
	}

	if c.Paths.ArtifactsDir == "" {
		c.Paths.ArtifactsDir = DefaultArtifactsDir
	}

	if c.Paths.AudioDir == "" {
		c.Paths.AudioDir = DefaultAudioDir
	}

	if c.Paths.BaseLogsDir == "" {
		c.Paths.BaseLogsDir = DefaultLogsDir
	}

	if c.Translation.Service == "" {
		c.Translation.Service = DefaultTranslationSvc
	}

	if c.Translation.DeepLAPIKey == "" {
		c.Translation.DeepLAPIKey = os.Getenv(deeplKeyEnvVar)
	}

	if c.Translation.TimeoutSeconds <= 0 {
		c.Translation.TimeoutSeconds = DefaultTimeoutSeconds
	}

	if c.Translation.ChunkMaxChars <= 0 {
		c.Translation.ChunkMaxChars = DefaultChunkMaxChars
	}

	if c.Translation.PageWorkers <= 0 {
		c.Translation.PageWorkers = DefaultPageWorkers
	}

	if c.TTS.Service == "" {
		c.TTS.Service = DefaultTTSService
	}

	if c.TTS.TimeoutSeconds <= 0 {
		c.TTS.TimeoutSeconds = DefaultTimeoutSeconds
	}

	if c.TTS.WordsPerMinute <= 0 {
		c.TTS.WordsPerMinute = DefaultWordsPerMinute
	}

	if c.Storage.Backend == "" {
		c.Storage.Backend = DefaultStorageBackend
	}

	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = DefaultSQLitePath
	}

	if c.NATS.ObjectStoreBucket == "" {
		c.NATS.ObjectStoreBucket = DefaultNATSObjectBucket
	}
}
