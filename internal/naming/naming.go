// Package naming derives document identifiers and artifact file names.
//
// Every artifact path in the system is a deterministic string composition of
// the document id, the target language, and a fixed suffix, so downstream
// stages can locate artifacts without a registry.
package naming

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	timestampLayout = "20060102_150405"
	randomSuffixLen = 8

	extractedSuffix   = "_extracted.json"
	translationSuffix = "_translation.json"
	fullAudioSuffix   = "_full.mp3"

	// ManifestFileName is the segment manifest stored inside a document's
	// audio directory.
	ManifestFileName = "segments.json"

	dirPermissions = 0o750
)

var invalidChars = regexp.MustCompile(`[^\w\s\-.]`)

// Sanitize strips characters that are unsafe in file names and replaces
// spaces with underscores.
func Sanitize(filename string) string {
	cleaned := invalidChars.ReplaceAllString(filename, "")

	return strings.ReplaceAll(cleaned, " ", "_")
}

// UniqueName builds a collision-resistant stored filename:
// base_YYYYMMDD_HHMMSS_rand8.ext. Collisions are not enforced against beyond
// the timestamp plus random suffix.
func UniqueName(filename string) string {
	sanitized := Sanitize(filename)
	ext := filepath.Ext(sanitized)
	base := strings.TrimSuffix(sanitized, ext)
	timestamp := time.Now().Format(timestampLayout)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:randomSuffixLen]

	return fmt.Sprintf("%s_%s_%s%s", base, timestamp, suffix, ext)
}

// DocumentID derives the document identifier from a stored filename by
// stripping the extension.
func DocumentID(storedName string) string {
	return strings.TrimSuffix(storedName, filepath.Ext(storedName))
}

// ExtractedKey is the artifact key of a document's extracted text.
func ExtractedKey(documentID string) string {
	return documentID + extractedSuffix
}

// TranslationKey is the artifact key of a document's translation for one
// target language.
func TranslationKey(documentID, targetLang string) string {
	return documentID + "_" + targetLang + translationSuffix
}

// ManifestKey is the artifact key of a document's segment manifest.
func ManifestKey(documentID string) string {
	return documentID + "_" + ManifestFileName
}

// SegmentFileName names one narrated segment inside the document's audio
// directory.
func SegmentFileName(segmentID int) string {
	return fmt.Sprintf("segment_%d.mp3", segmentID)
}

// FullAudioName names the single-file narration of a whole document.
func FullAudioName(documentID, language string) string {
	return documentID + "_" + language + fullAudioSuffix
}

// TTSFileName builds a unique name for a one-off synthesis request.
func TTSFileName(language string) string {
	return UniqueName("tts_" + language + ".mp3")
}

// EnsureDir creates the directory (and parents) when it does not exist.
func EnsureDir(path string) error {
	_, statErr := os.Stat(path)
	if os.IsNotExist(statErr) {
		mkdirErr := os.MkdirAll(path, dirPermissions)
		if mkdirErr != nil {
			return fmt.Errorf("failed to create directory %s: %w", path, mkdirErr)
		}
	}

	return nil
}

// IsAudioFileName reports whether a filename has an audio extension the
// serving endpoint is willing to stream.
func IsAudioFileName(filename string) bool {
	switch filepath.Ext(filename) {
	case ".mp3", ".wav", ".ogg", ".flac", ".m4a", ".aac":
		return true
	default:
		return false
	}
}
