package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/microcosm-cc/bluemonday"
	"github.com/muhammadolammi/resumeoptimizer/internal/auth"
	"github.com/muhammadolammi/resumeoptimizer/internal/database"
	"github.com/muhammadolammi/resumeoptimizer/internal/metrics"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeStore struct {
	mu            sync.Mutex
	users         map[uuid.UUID]database.User
	resumes       map[uuid.UUID]database.Resume
	optimizations map[uuid.UUID]database.Optimization
	tokens        map[uuid.UUID]database.VerificationToken
	contacts      []database.CreateContactMessageParams
	pingErr       error
}

var _ Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:         map[uuid.UUID]database.User{},
		resumes:       map[uuid.UUID]database.Resume{},
		optimizations: map[uuid.UUID]database.Optimization{},
		tokens:        map[uuid.UUID]database.VerificationToken{},
	}
}

func (s *fakeStore) Ping(context.Context) error { return s.pingErr }

func (s *fakeStore) CreateUser(_ context.Context, arg database.CreateUserParams) (database.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == arg.Email {
			return database.User{}, &pq.Error{Code: "23505"}
		}
	}
	now := time.Now()
	u := database.User{
		ID:           uuid.New(),
		Name:         arg.Name,
		Email:        arg.Email,
		PasswordHash: arg.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *fakeStore) GetUserByEmail(_ context.Context, email string) (database.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return database.User{}, sql.ErrNoRows
}

func (s *fakeStore) GetUserByID(_ context.Context, id uuid.UUID) (database.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return database.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (s *fakeStore) UpdateUserProfile(_ context.Context, arg database.UpdateUserProfileParams) (database.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[arg.ID]
	if !ok {
		return database.User{}, sql.ErrNoRows
	}
	if u.Email != arg.Email {
		u.EmailVerifiedAt = sql.NullTime{}
		for id, tok := range s.tokens {
			if tok.UserID == u.ID && !tok.ConsumedAt.Valid {
				delete(s.tokens, id)
			}
		}
	}
	u.Name = arg.Name
	u.Email = arg.Email
	s.users[u.ID] = u
	return u, nil
}

func (s *fakeStore) UpdateUserPassword(_ context.Context, arg database.UpdateUserPasswordParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[arg.ID]
	if !ok {
		return sql.ErrNoRows
	}
	u.PasswordHash = arg.PasswordHash
	s.users[u.ID] = u
	return nil
}

func (s *fakeStore) CreateResume(_ context.Context, arg database.CreateResumeParams) (database.Resume, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := database.Resume{
		ID:               uuid.New(),
		UserID:           arg.UserID,
		OriginalFilename: arg.OriginalFilename,
		Mime:             arg.Mime,
		SizeBytes:        arg.SizeBytes,
		StorageProvider:  arg.StorageProvider,
		ObjectKey:        arg.ObjectKey,
		ExtractedText:    arg.ExtractedText,
		CreatedAt:        time.Now(),
	}
	s.resumes[r.ID] = r
	return r, nil
}

func (s *fakeStore) GetResumeForUser(_ context.Context, arg database.GetResumeForUserParams) (database.Resume, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.resumes[arg.ID]
	if !ok || r.UserID != arg.UserID {
		return database.Resume{}, sql.ErrNoRows
	}
	return r, nil
}

func (s *fakeStore) CountResumesByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, r := range s.resumes {
		if r.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) CreateOptimization(_ context.Context, arg database.CreateOptimizationParams) (database.Optimization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := database.Optimization{
		ID:             uuid.New(),
		UserID:         arg.UserID,
		ResumeID:       arg.ResumeID,
		JobTitle:       arg.JobTitle,
		JobDescription: arg.JobDescription,
		OriginalText:   arg.OriginalText,
		OptimizedText:  arg.OptimizedText,
		Mode:           arg.Mode,
		Model:          arg.Model,
		CreatedAt:      time.Now(),
	}
	s.optimizations[o.ID] = o
	return o, nil
}

func (s *fakeStore) GetOptimization(_ context.Context, id uuid.UUID) (database.Optimization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.optimizations[id]
	if !ok {
		return database.Optimization{}, sql.ErrNoRows
	}
	return o, nil
}

func (s *fakeStore) userOptimizations(userID uuid.UUID) []database.Optimization {
	var out []database.Optimization
	for _, o := range s.optimizations {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *fakeStore) ListOptimizationsByUser(_ context.Context, arg database.ListOptimizationsByUserParams) ([]database.Optimization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.userOptimizations(arg.UserID)
	start := min(int(arg.Offset), len(items))
	end := min(start+int(arg.Limit), len(items))
	return items[start:end], nil
}

func (s *fakeStore) DeleteOptimizationForUser(_ context.Context, arg database.DeleteOptimizationForUserParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.optimizations[arg.ID]
	if !ok || o.UserID != arg.UserID {
		return 0, nil
	}
	delete(s.optimizations, arg.ID)
	return 1, nil
}

func (s *fakeStore) GetOptimizationStats(_ context.Context, userID uuid.UUID) (database.GetOptimizationStatsRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := database.GetOptimizationStatsRow{}
	cutoff := time.Now().AddDate(0, 0, -30)
	for _, o := range s.userOptimizations(userID) {
		row.Total++
		if o.CreatedAt.After(cutoff) {
			row.Last30Days++
		}
		if !row.LastCreatedAt.Valid || o.CreatedAt.After(row.LastCreatedAt.Time) {
			row.LastCreatedAt = sql.NullTime{Time: o.CreatedAt, Valid: true}
		}
	}
	return row, nil
}

func (s *fakeStore) CountOptimizationsByMode(_ context.Context, userID uuid.UUID) ([]database.CountOptimizationsByModeRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := map[string]int64{}
	for _, o := range s.userOptimizations(userID) {
		counts[o.Mode]++
	}
	var rows []database.CountOptimizationsByModeRow
	for mode, n := range counts {
		rows = append(rows, database.CountOptimizationsByModeRow{Mode: mode, Count: n})
	}
	return rows, nil
}

func (s *fakeStore) RotateVerificationToken(_ context.Context, arg database.CreateVerificationTokenParams) (database.VerificationToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, tok := range s.tokens {
		if tok.UserID == arg.UserID && !tok.ConsumedAt.Valid {
			delete(s.tokens, id)
		}
	}
	tok := database.VerificationToken{
		ID:        uuid.New(),
		UserID:    arg.UserID,
		TokenHash: arg.TokenHash,
		ExpiresAt: arg.ExpiresAt,
		CreatedAt: time.Now(),
	}
	s.tokens[tok.ID] = tok
	return tok, nil
}

func (s *fakeStore) GetVerificationTokenByHash(_ context.Context, tokenHash string) (database.VerificationToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tok := range s.tokens {
		if tok.TokenHash == tokenHash {
			return tok, nil
		}
	}
	return database.VerificationToken{}, sql.ErrNoRows
}

func (s *fakeStore) ConsumeTokenAndVerify(_ context.Context, tokenID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok, ok := s.tokens[tokenID]
	if !ok || tok.ConsumedAt.Valid {
		return database.ErrTokenConsumed
	}
	tok.ConsumedAt = sql.NullTime{Time: time.Now(), Valid: true}
	s.tokens[tokenID] = tok
	u := s.users[userID]
	u.EmailVerifiedAt = sql.NullTime{Time: time.Now(), Valid: true}
	s.users[userID] = u
	return nil
}

func (s *fakeStore) CreateContactMessage(_ context.Context, arg database.CreateContactMessageParams) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts = append(s.contacts, arg)
	return uuid.New(), nil
}

type fakeOptimizer struct {
	result *OptimizeResult
	err    error
	inputs []OptimizeInput
}

func (o *fakeOptimizer) Optimize(_ context.Context, input OptimizeInput) (*OptimizeResult, error) {
	o.inputs = append(o.inputs, input)
	if o.err != nil {
		return nil, o.err
	}
	return o.result, nil
}

type fakeStorage struct {
	objects map[string][]byte
	putErr  error
	getErr  error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (s *fakeStorage) Put(_ context.Context, key, _ string, data []byte) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.objects[key] = data
	return nil
}

func (s *fakeStorage) Get(_ context.Context, key string) ([]byte, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	data, ok := s.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []MailMessage
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg MailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakePublisher struct {
	updates []OptimizationUpdate
	err     error
}

func (p *fakePublisher) PublishOptimizationUpdate(_ context.Context, update OptimizationUpdate) error {
	p.updates = append(p.updates, update)
	return p.err
}

type fakeLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (l *fakeLimiter) Allow(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	l.keys = append(l.keys, key)
	return l.allow, l.err
}

type testEnv struct {
	api       *ApiConfig
	store     *fakeStore
	optimizer *fakeOptimizer
	storage   *fakeStorage
	mailer    *fakeMailer
	events    *fakePublisher
	limiter   *fakeLimiter
	router    *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		store:     newFakeStore(),
		optimizer: &fakeOptimizer{result: &OptimizeResult{Text: "Optimized resume", Model: "test-model", Keywords: []string{"golang"}}},
		storage:   newFakeStorage(),
		mailer:    &fakeMailer{},
		events:    &fakePublisher{},
		limiter:   &fakeLimiter{allow: true},
	}
	env.api = &ApiConfig{
		DB:                   env.store,
		Optimizer:            env.optimizer,
		Storage:              env.storage,
		Mailer:               env.mailer,
		Events:               env.events,
		Limiter:              env.limiter,
		Metrics:              metrics.New(),
		Logger:               zap.NewNop(),
		Sanitizer:            bluemonday.StrictPolicy(),
		JWTSecret:            []byte("test-secret"),
		SessionTTL:           time.Hour,
		VerificationTokenTTL: time.Hour,
		MaxUploadBytes:       1 << 10,
		AppURL:               "https://app.example.com",
		ContactInbox:         "inbox@example.com",
		SecureCookies:        true,
	}
	env.router = env.api.Router([]string{"https://app.example.com"})
	return env
}

// seedUser inserts a user with the given password and returns it with a
// bearer token for it.
func (env *testEnv) seedUser(t *testing.T, email, password string, verified bool) (database.User, string) {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	user, err := env.store.CreateUser(context.Background(), database.CreateUserParams{
		Name:         "Test User",
		Email:        email,
		PasswordHash: hash,
	})
	require.NoError(t, err)
	if verified {
		user.EmailVerifiedAt = sql.NullTime{Time: time.Now(), Valid: true}
		env.store.users[user.ID] = user
	}
	token, _, err := auth.GenerateSessionToken(user.ID.String(), user.Email, env.api.JWTSecret, time.Hour)
	require.NoError(t, err)
	return user, token
}

func (env *testEnv) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}
