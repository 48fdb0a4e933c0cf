package formatter

import (
	"bytes"
	"os"
	"strings"
	"unicode"

	"github.com/futig/interview-mentor/internal/entity"
	"github.com/jung-kurt/gofpdf"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	// pdfFontName is the internal name used by gofpdf
	// for the UTF-8 capable font.
	pdfFontName = "DejaVuSans"

	// Font next to the binary, then in the source tree.
	pdfFontRuntimePath = "ttf/DejaVuSans.ttf"
	pdfFontSourcePath  = "internal/pkg/formatter/ttf/DejaVuSans.ttf"
)

type PDFFormatter struct{}

func NewPDFFormatter() *PDFFormatter {
	return &PDFFormatter{}
}

func resolveFontPath() string {
	if _, err := os.Stat(pdfFontRuntimePath); err == nil {
		return pdfFontRuntimePath
	}

	if _, err := os.Stat(pdfFontSourcePath); err == nil {
		return pdfFontSourcePath
	}

	return ""
}

// stripSymbols removes pictographs no bundled font can draw
func stripSymbols(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r > unicode.MaxLatin1 && unicode.Is(unicode.So, r) {
			return -1
		}
		return r
	}, s))
}

func (mf *PDFFormatter) Format(report *entity.Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	fontName := "Arial"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if fontPath := resolveFontPath(); fontPath != "" {
		pdf.AddUTF8Font(pdfFontName, "", fontPath)
		pdf.AddUTF8Font(pdfFontName, "B", fontPath)
		fontName = pdfFontName
		tr = func(s string) string { return s }
	}
	text := func(s string) string { return tr(stripSymbols(plain(s))) }

	pdf.SetFont(fontName, "B", 20)
	pdf.Cell(0, 10, text(report.Title))
	pdf.Ln(12)

	pdf.SetFont(fontName, "", 11)
	if report.Subtitle != "" {
		pdf.Cell(0, 6, text(report.Subtitle))
		pdf.Ln(8)
	}
	for _, line := range report.Summary {
		pdf.Cell(0, 6, text(line))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	for _, e := range report.Entries {
		pdf.SetFont(fontName, "B", 12)
		pdf.Cell(0, 7, text(e.Speaker+" ("+e.At.Format(timeLayout)+")"))
		pdf.Ln(7)

		pdf.SetFont(fontName, "", 12)
		_, lineHeight := pdf.GetFontSize()
		pdf.MultiCell(0, lineHeight*1.5, text(e.Text), "", "", false)
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (mf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (mf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
