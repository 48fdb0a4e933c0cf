package formatter

import (
	"fmt"
	"strings"

	"github.com/futig/interview-mentor/internal/entity"
)

type Formatter interface {
	Format(report *entity.Report) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format entity.ResultFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("%w: %s", entity.ErrUnsupportedFormat, format)
	}
}

// plain drops markdown emphasis for formats that render text literally
func plain(s string) string {
	return strings.ReplaceAll(s, "**", "")
}

const timeLayout = "15:04:05"
