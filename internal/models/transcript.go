package models

// TranscriptFormat enumerates the rendered transcript formats.
type TranscriptFormat string

const (
	TranscriptFormatCSV TranscriptFormat = "csv"
	TranscriptFormatPDF TranscriptFormat = "pdf"
)

// Transcript is a rendered academic record ready for download.
type Transcript struct {
	Filename    string
	ContentType string
	Payload     []byte
}
