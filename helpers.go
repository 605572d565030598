package main

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"
	"mime"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	mimeText = "text/plain"
	mimePDF  = "application/pdf"
	mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var ErrUnsupportedDocument = errors.New("unsupported document type")

// retry retries fn up to `attempts` times with a linear backoff.
func retry[T any](attempts int, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for i := 0; i < attempts; i++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if i < attempts-1 {
			time.Sleep(retryBackoff * time.Duration(i+1))
		}
	}
	return zero, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}

var retryBackoff = 500 * time.Millisecond

// cleanModelOutput strips a surrounding markdown code fence, with or without
// a language tag, from a model response.
func cleanModelOutput(input string) string {
	clean := strings.TrimSpace(input)

	if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
		// drop the language tag on the opening fence line, if any
		if nl := strings.IndexAny(clean, "\r\n"); nl >= 0 && !strings.ContainsAny(clean[:nl], " \t") {
			clean = clean[nl:]
		}
		clean = strings.TrimLeft(clean, "\r\n")
		clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")
	}

	return strings.TrimSpace(clean)
}

// DetectMime resolves the document type from the declared content type,
// falling back to the file extension for generic or missing headers.
func DetectMime(filename, contentType string) string {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mediaType {
		case mimeText, mimePDF, mimeDocx:
			return mediaType
		}
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return mimePDF
	case ".docx":
		return mimeDocx
	case ".txt", ".md":
		return mimeText
	}
	return ""
}

func ExtractResumeText(mime string, data []byte) (string, error) {
	switch mime {
	case mimeText:
		return string(data), nil

	case mimePDF:
		return extractPDFText(bytes.NewReader(data), int64(len(data)))

	case mimeDocx:
		return extractDocxText(bytes.NewReader(data), int64(len(data)))

	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDocument, mime)
	}
}

func extractPDFText(reader io.ReaderAt, size int64) (text string, err error) {
	// the pdf reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to read pdf: %v", r)
		}
	}()

	pdfReader, err := pdf.NewReader(reader, size)
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}
	var textBuilder strings.Builder
	numPages := pdfReader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n")
	}
	return textBuilder.String(), nil
}

func extractDocxText(reader io.ReaderAt, size int64) (string, error) {
	doc, err := docx.ReadDocxFromMemory(reader, size)
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return docxXMLToText(doc.Editable().GetContent()), nil
}

var (
	docxParagraphEnd = regexp.MustCompile(`</w:p>|<w:br\s*/>|<w:cr\s*/>`)
	docxTab          = regexp.MustCompile(`<w:tab\s*/>`)
	xmlTag           = regexp.MustCompile(`<[^>]+>`)
)

// docxXMLToText turns the raw document.xml body into plain text, one line
// per paragraph.
func docxXMLToText(content string) string {
	content = docxParagraphEnd.ReplaceAllString(content, "\n")
	content = docxTab.ReplaceAllString(content, "\t")
	content = xmlTag.ReplaceAllString(content, "")
	return strings.TrimSpace(html.UnescapeString(content))
}

func respondWithJSON(c *gin.Context, status int, payload gin.H) {
	c.JSON(status, payload)
}

func respondWithError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// respondWithValidationError flattens binding errors into readable details.
func respondWithValidationError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(400, gin.H{
		"error":   "invalid request",
		"details": validationDetails(err),
	})
}

func validationDetails(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"malformed request body"}
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := lowerFirst(fe.Field())
		switch fe.Tag() {
		case "required":
			details = append(details, field+" is required")
		case "email":
			details = append(details, field+" must be a valid email address")
		case "min":
			details = append(details, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		case "max":
			details = append(details, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "oneof":
			details = append(details, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		case "uuid":
			details = append(details, field+" must be a valid id")
		default:
			details = append(details, field+" is invalid")
		}
	}
	return details
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
