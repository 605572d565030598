package main

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanModelOutput(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  John Doe\n- Built APIs  ", "John Doe\n- Built APIs"},
		{"bare fence", "```\nJohn Doe\n```", "John Doe"},
		{"json fence", "```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"markdown fence", "```markdown\n- a\n- b\n```", "- a\n- b"},
		{"inline fence", "```abc```", "abc"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, cleanModelOutput(tc.in))
		})
	}
}

func TestDetectMime(t *testing.T) {
	assert.Equal(t, mimePDF, DetectMime("cv.bin", "application/pdf"))
	assert.Equal(t, mimeText, DetectMime("cv", "text/plain; charset=utf-8"))
	assert.Equal(t, mimePDF, DetectMime("CV.PDF", "application/octet-stream"))
	assert.Equal(t, mimeDocx, DetectMime("cv.docx", ""))
	assert.Equal(t, mimeText, DetectMime("cv.md", ""))
	assert.Equal(t, "", DetectMime("cv.doc", "application/msword"))
}

func TestExtractResumeText_Plain(t *testing.T) {
	text, err := ExtractResumeText(mimeText, []byte("Jane Doe\nEngineer"))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nEngineer", text)
}

func TestExtractResumeText_Unsupported(t *testing.T) {
	_, err := ExtractResumeText("image/png", []byte{0x89})
	assert.ErrorIs(t, err, ErrUnsupportedDocument)
}

func TestExtractResumeText_MalformedDocuments(t *testing.T) {
	_, err := ExtractResumeText(mimePDF, []byte("definitely not a pdf"))
	assert.Error(t, err)

	_, err = ExtractResumeText(mimeDocx, []byte("definitely not a zip"))
	assert.Error(t, err)
}

func TestDocxXMLToText(t *testing.T) {
	xml := `<w:body><w:p><w:r><w:t>Jane &amp; Co</w:t></w:r></w:p><w:p><w:r><w:t>Go</w:t><w:tab/><w:t>SQL</w:t></w:r></w:p></w:body>`
	assert.Equal(t, "Jane & Co\nGo\tSQL", docxXMLToText(xml))
}

func TestRetry(t *testing.T) {
	old := retryBackoff
	retryBackoff = 0
	t.Cleanup(func() { retryBackoff = old })

	calls := 0
	got, err := retry(3, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)

	boom := errors.New("boom")
	_, err = retry(2, func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestValidationDetails(t *testing.T) {
	req := registerRequest{Name: "", Email: "not-an-email", Password: "short"}
	err := binding.Validator.ValidateStruct(&req)
	require.Error(t, err)

	details := validationDetails(err)
	assert.Contains(t, details, "name is required")
	assert.Contains(t, details, "email must be a valid email address")
	assert.Contains(t, details, "password must be at least 8 characters")

	assert.Equal(t, []string{"malformed request body"}, validationDetails(errors.New("EOF")))
}
