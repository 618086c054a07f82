// Package ingest turns uploaded documents into plain text for the summarizer.
package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding/charmap"
)

var (
	ErrNoText          = errors.New("no extractable text")
	ErrUnsupportedType = errors.New("only PDF and TXT files are supported")
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatText Format = "txt"
)

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

// DetectFormat picks the format from the file extension, falling back to the
// content type. Images are rejected since no OCR is available.
func DetectFormat(filename, contentType string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case ext == ".pdf":
		return FormatPDF, nil
	case ext == ".txt":
		return FormatText, nil
	case imageExtensions[ext]:
		return "", fmt.Errorf("%w: image uploads need OCR", ErrUnsupportedType)
	}

	mediaType, _, _ := strings.Cut(strings.ToLower(contentType), ";")
	switch strings.TrimSpace(mediaType) {
	case "application/pdf":
		return FormatPDF, nil
	case "text/plain":
		return FormatText, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnsupportedType, filename)
}

// Extract returns the text of an uploaded file.
func Extract(filename, contentType string, data []byte) (string, error) {
	format, err := DetectFormat(filename, contentType)
	if err != nil {
		return "", err
	}

	var text string
	switch format {
	case FormatPDF:
		text, err = ExtractPDF(data)
		if err != nil {
			return "", err
		}
	default:
		text = DecodeText(data)
	}

	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}

// ReadFile reads a document from disk, or from r when path is "-".
func ReadFile(path string, r io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return Extract("stdin.txt", "text/plain", data)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return Extract(path, "", data)
}

// ExtractPDF concatenates the plain text of every page. Pages that fail to
// decode are skipped.
func ExtractPDF(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: malformed pdf: %v", ErrNoText, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoText, err)
	}

	var builder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(pageText)
		builder.WriteString("\n")
	}

	if strings.TrimSpace(builder.String()) == "" {
		return "", ErrNoText
	}
	return builder.String(), nil
}

// DecodeText reads bytes as UTF-8, or as Latin-1 when they are not valid
// UTF-8.
func DecodeText(data []byte) string {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return string(data)
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "�")
	}
	return string(decoded)
}
