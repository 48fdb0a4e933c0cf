package formatter

import (
	"bytes"
	"strings"

	"github.com/futig/interview-mentor/internal/entity"
	"github.com/unidoc/unioffice/document"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (mf *DOCXFormatter) Format(report *entity.Report) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	titlePar := doc.AddParagraph()
	titlePar.SetStyle("Heading1")
	titlePar.AddRun().AddText(report.Title)

	if report.Subtitle != "" {
		sub := doc.AddParagraph().AddRun()
		sub.Properties().SetItalic(true)
		sub.AddText(report.Subtitle)
	}
	for _, line := range report.Summary {
		doc.AddParagraph().AddRun().AddText(line)
	}

	transcript := doc.AddParagraph()
	transcript.SetStyle("Heading2")
	transcript.AddRun().AddText("Transcript")

	for _, e := range report.Entries {
		par := doc.AddParagraph()

		speaker := par.AddRun()
		speaker.Properties().SetBold(true)
		speaker.AddText(e.Speaker + " (" + e.At.Format(timeLayout) + "): ")

		body := par.AddRun()
		for i, line := range strings.Split(plain(e.Text), "\n") {
			if i > 0 {
				body.AddBreak()
			}
			body.AddText(line)
		}
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (mf *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (mf *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
