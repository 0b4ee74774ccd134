package ats

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

var ErrEmptyResume = errors.New("resume has no extractable text")

// ExtractResumeText returns the plain text of every page of a PDF resume.
func ExtractResumeText(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", ErrEmptyResume
	}
	// The pdf reader panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to read pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read pdf page %d: %w", i, err)
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}

	text = strings.TrimSpace(b.String())
	if text == "" {
		return "", ErrEmptyResume
	}
	return text, nil
}
