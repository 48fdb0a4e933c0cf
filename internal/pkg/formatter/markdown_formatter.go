package formatter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/futig/interview-mentor/internal/entity"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(report *entity.Report) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", report.Title)
	if report.Subtitle != "" {
		fmt.Fprintf(&buf, "_%s_\n\n", report.Subtitle)
	}
	for _, line := range report.Summary {
		fmt.Fprintf(&buf, "- %s\n", line)
	}
	if len(report.Summary) > 0 {
		buf.WriteString("\n")
	}

	buf.WriteString("## Transcript\n")
	for _, e := range report.Entries {
		fmt.Fprintf(&buf, "\n**%s** (%s):\n\n", e.Speaker, e.At.Format(timeLayout))
		for _, line := range strings.Split(e.Text, "\n") {
			fmt.Fprintf(&buf, "> %s\n", line)
		}
	}

	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
