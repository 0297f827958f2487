package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/account-service/internal/config"
	"github.com/tazhibayda/account-service/internal/domain"
	api "github.com/tazhibayda/account-service/internal/http"
	"github.com/tazhibayda/account-service/internal/queue"
	"github.com/tazhibayda/account-service/internal/repo"
)

// memStore implements api.UserStore in memory; email/mobile uniqueness is
// enforced the way the mongo indexes do it.
type memStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*domain.User

	failCreate error // when set, next CreateUser returns it (insert-race simulation)
}

func newMemStore() *memStore {
	return &memStore{users: make(map[primitive.ObjectID]*domain.User)}
}

func (m *memStore) CreateUser(ctx context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		err := m.failCreate
		m.failCreate = nil
		return err
	}
	for _, e := range m.users {
		if e.Email == u.Email {
			return repo.ErrConflictEmail
		}
		if e.Mobile == u.Mobile {
			return repo.ErrConflictMobile
		}
	}
	u.ID = primitive.NewObjectID()
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memStore) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindUserByEmailOrMobile(ctx context.Context, email, mobile string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email || u.Mobile == mobile {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) MarkEmailVerified(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	u.VerifyEmail = true
	cp := *u
	return &cp, nil
}

func (m *memStore) RecordLogin(ctx context.Context, id primitive.ObjectID, refreshToken string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil
	}
	t := at.UTC()
	u.LastLoginDate = &t
	u.RefreshToken = refreshToken
	return nil
}

func (m *memStore) ClearRefreshToken(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.RefreshToken = ""
	}
	return nil
}

func (m *memStore) Ping(ctx context.Context) error { return nil }

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

func (m *memStore) setHash(email, hash string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			u.PasswordHash = hash
		}
	}
}

func (m *memStore) byEmail(email string) *domain.User {
	u, _ := m.FindUserByEmail(context.Background(), email)
	return u
}

type sentMail struct {
	To, Subject, Body string
}

type mailRecorder struct {
	mu       sync.Mutex
	sent     []sentMail
	failWith error // when set, Send returns it without recording
}

func (r *mailRecorder) Send(ctx context.Context, to, subject, htmlBody string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	r.sent = append(r.sent, sentMail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

func (r *mailRecorder) last() *sentMail {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		return nil
	}
	return &r.sent[len(r.sent)-1]
}

type testEnv struct {
	Store  *memStore
	Mail   *mailRecorder
	Cfg    config.Config
	Router *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvIn(t, "dev")
}

func newTestEnvIn(t *testing.T, appEnv string) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:          "8080",
		Env:           appEnv,
		ClientURL:     "http://localhost:3000",
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		AccessTTLMin:  300,
		RefreshTTLDay: 7,
	}
	store := newMemStore()
	rec := &mailRecorder{}
	h := api.NewHandler(store, rec, queue.NewNoop(), cfg)
	return &testEnv{Store: store, Mail: rec, Cfg: cfg, Router: api.NewRouter(h)}
}

type envelope struct {
	Message string `json:"message"`
	Error   bool   `json:"error"`
	Success bool   `json:"success"`
	Data    struct {
		User         map[string]any `json:"user"`
		AccessToken  string         `json:"accessToken"`
		RefreshToken string         `json:"refreshToken"`
	} `json:"data"`
}

func (e *testEnv) do(method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	e.Router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return env
}

func cookieByName(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}
