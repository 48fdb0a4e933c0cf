package entity

import "time"

type ResultFormat string

const (
	FormatMarkdown ResultFormat = "markdown"
	FormatDOCX     ResultFormat = "docx"
	FormatPDF      ResultFormat = "pdf"
)

func (f ResultFormat) IsValid() bool {
	switch f {
	case FormatMarkdown, FormatDOCX, FormatPDF:
		return true
	default:
		return false
	}
}

// ParseResultFormat maps user input such as "md" or "PDF" to a format
func ParseResultFormat(s string) (ResultFormat, bool) {
	switch s {
	case "md", "markdown", "MD":
		return FormatMarkdown, true
	case "pdf", "PDF":
		return FormatPDF, true
	case "docx", "DOCX", "word":
		return FormatDOCX, true
	default:
		return ResultFormat(s), false
	}
}

// ReportEntry is one transcript line in an exported report
type ReportEntry struct {
	Speaker string
	Text    string
	At      time.Time
}

// Report is the renderable form of an interview transcript
type Report struct {
	Title    string
	Subtitle string
	Summary  []string
	Entries  []ReportEntry
}
