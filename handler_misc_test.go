package main

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/muhammadolammi/resumeoptimizer/internal/auth"
	"github.com/muhammadolammi/resumeoptimizer/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/health", nil), "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "up", body["database"])

	env.store.pingErr = assert.AnError
	w = env.do(httptest.NewRequest(http.MethodGet, "/api/health", nil), "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "down", decodeBody(t, w)["database"])
}

func TestUnknownRouteAndMethod(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/nope", nil), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"not found"}`, w.Body.String())

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/contact", nil), "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t, `{"error":"method not allowed"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(httptest.NewRequest(http.MethodGet, "/api/health", nil), "")

	w := env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil), "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",route="/api/health",status="200"} 1`)
}

func TestContact(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(httptest.NewRequest(http.MethodPost, "/api/contact", jsonBody(t, map[string]string{
		"name":    "<b>Ada</b>",
		"email":   "Ada@Example.com",
		"subject": "Hello",
		"message": "<script>alert(1)</script>I love this tool &amp; want more",
	})), "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, decodeBody(t, w)["id"])
	require.Len(t, env.store.contacts, 1)
	saved := env.store.contacts[0]
	assert.Equal(t, "Ada", saved.Name)
	assert.Equal(t, "ada@example.com", saved.Email)
	assert.Equal(t, "I love this tool &amp; want more", saved.Message)
	assert.False(t, saved.UserID.Valid)

	require.Len(t, env.mailer.sent, 1)
	assert.Equal(t, []string{"inbox@example.com"}, env.mailer.sent[0].To)
	assert.Equal(t, "ada@example.com", env.mailer.sent[0].ReplyTo)
}

func TestContact_EscapedMarkupAndHeaderBreaks(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(httptest.NewRequest(http.MethodPost, "/api/contact", jsonBody(t, map[string]string{
		"name":    "Ada",
		"email":   "ada@example.com",
		"subject": "hi\r\nBcc: spam@evil.example",
		"message": "&lt;script&gt;alert(1)&lt;/script&gt;Please call me back",
	})), "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	saved := env.store.contacts[0]
	assert.Equal(t, "Please call me back", saved.Message)
	assert.Equal(t, "hi Bcc: spam@evil.example", saved.Subject)

	require.Len(t, env.mailer.sent, 1)
	raw := string(buildMIMEMessage("noreply@example.com", env.mailer.sent[0], time.Now()))
	assert.Contains(t, raw, "Subject: Contact form: hi Bcc: spam@evil.example\r\n")
	assert.NotContains(t, raw, "\nBcc:")
}

func TestContact_LinksSignedInUser(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.seedUser(t, "ada@example.com", "correct horse", false)

	w := env.do(httptest.NewRequest(http.MethodPost, "/api/contact", jsonBody(t, map[string]string{
		"name":    "Ada",
		"email":   "ada@example.com",
		"message": "A message long enough",
	})), token)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, env.store.contacts, 1)
	assert.Equal(t, user.ID, env.store.contacts[0].UserID.UUID)
}

func TestContact_Invalid(t *testing.T) {
	env := newTestEnv(t)

	cases := map[string]map[string]string{
		"bad email":     {"name": "Ada", "email": "ada", "message": "A message long enough"},
		"short message": {"name": "Ada", "email": "ada@example.com", "message": "hi"},
		"only markup":   {"name": "Ada", "email": "ada@example.com", "message": "<script>alert('x')</script>"},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := env.do(httptest.NewRequest(http.MethodPost, "/api/contact", jsonBody(t, body)), "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	assert.Empty(t, env.store.contacts)
}

func multipartUpload(t *testing.T, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpload(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.seedUser(t, "ada@example.com", "correct horse", true)

	w := env.do(multipartUpload(t, "cv.txt", "text/plain", []byte("Ada Lovelace\nAnalyst")), token)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resume := decodeBody(t, w)["resume"].(map[string]any)
	assert.Equal(t, "cv.txt", resume["filename"])
	assert.Equal(t, mimeText, resume["mime"])
	assert.Equal(t, "Ada Lovelace\nAnalyst", resume["text"])
	assert.Equal(t, true, resume["stored"])

	require.Len(t, env.storage.objects, 1)
	for key := range env.storage.objects {
		assert.True(t, strings.HasPrefix(key, "resumes/"+user.ID.String()+"/"))
		assert.True(t, strings.HasSuffix(key, ".txt"))
	}

	id := resume["id"].(string)
	w = env.do(httptest.NewRequest(http.MethodGet, "/api/resumes/"+id+"/file", nil), token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ada Lovelace\nAnalyst", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="cv.txt"`)
}

func TestUpload_Errors(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.seedUser(t, "ada@example.com", "correct horse", true)

	w := env.do(multipartUpload(t, "cv.exe", "application/octet-stream", []byte("MZ")), token)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	w = env.do(multipartUpload(t, "cv.txt", "text/plain", bytes.Repeat([]byte("a"), 2<<10)), token)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = env.do(multipartUpload(t, "cv.txt", "text/plain", []byte("   \n  ")), token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(multipartUpload(t, "cv.pdf", "application/pdf", []byte("not really a pdf")), token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env.storage.putErr = assert.AnError
	w = env.do(multipartUpload(t, "cv.txt", "text/plain", []byte("Ada Lovelace")), token)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	assert.Empty(t, env.store.resumes)
}

func TestUpload_WithoutObjectStorage(t *testing.T) {
	env := newTestEnv(t)
	env.api.Storage = nil
	_, token := env.seedUser(t, "ada@example.com", "correct horse", true)

	w := env.do(multipartUpload(t, "cv.md", "", []byte("# Ada")), token)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resume := decodeBody(t, w)["resume"].(map[string]any)
	assert.Equal(t, false, resume["stored"])

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/resumes/"+resume["id"].(string)+"/file", nil), token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVerificationStatusAndSend(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.seedUser(t, "ada@example.com", "correct horse", false)
	_, verifiedToken := env.seedUser(t, "bob@example.com", "correct horse", true)

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/verification/status", nil), token)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["verified"])
	assert.Equal(t, "ada@example.com", body["email"])

	w = env.do(httptest.NewRequest(http.MethodPost, "/api/verification/send", nil), token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, decodeBody(t, w)["expiresAt"])
	w = env.do(httptest.NewRequest(http.MethodPost, "/api/verification/send", nil), token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, env.store.tokens, 1, "resending replaces the pending token")
	assert.Len(t, env.mailer.sent, 2)

	w = env.do(httptest.NewRequest(http.MethodPost, "/api/verification/send", nil), verifiedToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env.mailer.err = assert.AnError
	w = env.do(httptest.NewRequest(http.MethodPost, "/api/verification/send", nil), token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func issueToken(t *testing.T, env *testEnv, user database.User, expiresAt time.Time) string {
	t.Helper()
	raw, hash, err := auth.NewVerificationToken()
	require.NoError(t, err)
	_, err = env.store.RotateVerificationToken(context.Background(), database.CreateVerificationTokenParams{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: expiresAt,
	})
	require.NoError(t, err)
	return raw
}

func TestVerifyEmail(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.seedUser(t, "ada@example.com", "correct horse", false)
	raw := issueToken(t, env, user, time.Now().Add(time.Hour))

	w := env.do(httptest.NewRequest(http.MethodPost, "/api/verification/verify", jsonBody(t, map[string]string{"token": raw})), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, env.store.users[user.ID].EmailVerifiedAt.Valid)

	w = env.do(httptest.NewRequest(http.MethodPost, "/api/verification/verify", jsonBody(t, map[string]string{"token": raw})), "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "a token is consumed once")
}

func TestVerifyEmail_QueryToken(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.seedUser(t, "ada@example.com", "correct horse", false)
	raw := issueToken(t, env, user, time.Now().Add(time.Hour))

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/verification/verify?token="+raw, nil), "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.store.users[user.ID].EmailVerifiedAt.Valid)
}

func TestVerifyEmail_Rejected(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.seedUser(t, "ada@example.com", "correct horse", false)
	expired := issueToken(t, env, user, time.Now().Add(-time.Minute))

	for name, token := range map[string]string{"expired": expired, "unknown": "deadbeef", "missing": ""} {
		t.Run(name, func(t *testing.T) {
			w := env.do(httptest.NewRequest(http.MethodPost, "/api/verification/verify", jsonBody(t, map[string]string{"token": token})), "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	assert.False(t, env.store.users[user.ID].EmailVerifiedAt.Valid)
}
