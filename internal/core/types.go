package core

// Page is one page of an uploaded document. Page numbers are 1-based and
// sequential with no gaps, in source document order.
type Page struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
	CharCount  int    `json:"char_count"`
}

// Extraction is the extracted-text artifact of a document. It is written once
// at upload time and never mutated; a re-upload produces a new document id and
// an independent artifact.
type Extraction struct {
	FullText   string            `json:"full_text"`
	Pages      []Page            `json:"pages"`
	Metadata   map[string]string `json:"metadata"`
	TotalPages int               `json:"total_pages"`
	TotalChars int               `json:"total_chars"`
}

// TranslationResult is the outcome of translating one piece of text.
type TranslationResult struct {
	TranslatedText string `json:"translated_text"`
	SourceLang     string `json:"source_lang"`
	TargetLang     string `json:"target_lang"`
	Service        string `json:"service"`
}

// ChunkResult is the outcome of translating one chunk of a document. Either
// Translation is set, or Error and OriginalText are. Per-chunk failures are
// captured here rather than aborting the batch.
type ChunkResult struct {
	ChunkIndex   int                `json:"chunk_index"`
	Translation  *TranslationResult `json:"translation,omitempty"`
	Error        string             `json:"error,omitempty"`
	OriginalText string             `json:"original_text,omitempty"`
}

// TranslatedPage pairs a source page with its translation. CharCount is
// recomputed from the translated text.
type TranslatedPage struct {
	PageNumber     int    `json:"page_number"`
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text"`
	CharCount      int    `json:"char_count"`
}

// TranslationArtifact is the persisted result of translating a whole document,
// keyed by (document_id, target_lang). Retranslation overwrites it.
type TranslationArtifact struct {
	DocumentID     string           `json:"document_id"`
	SourceLang     string           `json:"source_lang"`
	TargetLang     string           `json:"target_lang"`
	Service        string           `json:"service"`
	OriginalText   string           `json:"original_text"`
	TranslatedText string           `json:"translated_text"`
	FullText       string           `json:"full_text"`
	Pages          []TranslatedPage `json:"pages"`
	TotalPages     int              `json:"total_pages"`
	TotalChars     int              `json:"total_chars"`
	OriginalPages  []Page           `json:"original_pages"`
}

// Segment is a sentence-level unit of text with character offsets against the
// segment-local reconstruction of the source string.
type Segment struct {
	ID        int    `json:"id"`
	Text      string `json:"text"`
	StartChar int    `json:"start_char"`
	EndChar   int    `json:"end_char"`
}

// AudioInfo describes one generated audio file. Duration is nil when the
// provider does not report it, which is true of the primary provider.
type AudioInfo struct {
	Success   bool     `json:"success"`
	AudioPath string   `json:"audio_path"`
	Language  string   `json:"language"`
	Service   string   `json:"service"`
	FileSize  int64    `json:"file_size"`
	Duration  *float64 `json:"duration"`
}

// AudioSegment is the result of narrating one segment. Either the audio fields
// are populated, or Error is. OriginalText is aligned by ordinal position and
// empty when the original has fewer segments than the translation.
type AudioSegment struct {
	SegmentID    int      `json:"segment_id"`
	AudioPath    string   `json:"audio_path,omitempty"`
	Language     string   `json:"language,omitempty"`
	Service      string   `json:"service,omitempty"`
	FileSize     int64    `json:"file_size,omitempty"`
	Duration     *float64 `json:"duration,omitempty"`
	StartChar    int      `json:"start_char"`
	EndChar      int      `json:"end_char"`
	Text         string   `json:"text"`
	OriginalText string   `json:"original_text"`
	Error        string   `json:"error,omitempty"`
}

// SegmentManifest is persisted once per (document, language) narration call;
// a later call for the same key overwrites it.
type SegmentManifest struct {
	DocumentID  string         `json:"document_id"`
	Language    string         `json:"language"`
	SegmentType string         `json:"segment_type"`
	Segments    []AudioSegment `json:"segments"`
}

// Detection is the result of language detection. Confidence is nil for
// providers that do not report one.
type Detection struct {
	Language   string   `json:"language"`
	Confidence *float64 `json:"confidence"`
}
