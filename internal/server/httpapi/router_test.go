package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	_ "modernc.org/sqlite"

	"github.com/mkarpenko/filekeeper/internal/common"
	"github.com/mkarpenko/filekeeper/internal/dbx"
	"github.com/mkarpenko/filekeeper/internal/logging"
	"github.com/mkarpenko/filekeeper/internal/server/auth"
	"github.com/mkarpenko/filekeeper/internal/server/config"
	"github.com/mkarpenko/filekeeper/internal/server/models"
	filesrepo "github.com/mkarpenko/filekeeper/internal/server/repositories/files"
	sessionsrepo "github.com/mkarpenko/filekeeper/internal/server/repositories/sessions"
	usersrepo "github.com/mkarpenko/filekeeper/internal/server/repositories/users"
	"github.com/mkarpenko/filekeeper/internal/server/services"
)

// In-memory repositories backing full request-level tests. The *sql.DB the
// services hold is a throwaway sqlite handle: it only ever sees
// Begin/Commit and the health ping.

type memUsers struct {
	seq   int
	users map[string]*models.User
}

func newMemUsers() *memUsers { return &memUsers{users: map[string]*models.User{}} }

func (m *memUsers) Create(ctx context.Context, user *models.User) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == user.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	m.seq++
	out := *user
	out.ID = fmt.Sprintf("user-%d", m.seq)
	out.CreatedAt = time.Now().UTC()
	out.UpdatedAt = out.CreatedAt
	m.users[out.ID] = &out
	return &out, nil
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

type memSessions struct {
	seq      int
	sessions map[string]*models.UserSession
}

func newMemSessions() *memSessions { return &memSessions{sessions: map[string]*models.UserSession{}} }

func (m *memSessions) Create(ctx context.Context, userID, jti string, createdAt time.Time) (*models.UserSession, error) {
	m.seq++
	s := &models.UserSession{ID: fmt.Sprintf("session-%d", m.seq), UserID: userID, JTI: jti, CreatedAt: createdAt}
	m.sessions[jti] = s
	return s, nil
}

func (m *memSessions) Find(ctx context.Context, userID, jti string) (*models.UserSession, error) {
	s, ok := m.sessions[jti]
	if !ok || s.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return s, nil
}

func (m *memSessions) FindActive(ctx context.Context, userID, jti string) (*models.UserSession, error) {
	s, err := m.Find(ctx, userID, jti)
	if err != nil {
		return nil, err
	}
	if s.Revoked() {
		return nil, common.ErrorNotFound
	}
	return s, nil
}

func (m *memSessions) Revoke(ctx context.Context, id string, at time.Time) error {
	for _, s := range m.sessions {
		if s.ID == id && s.DeletedAt == nil {
			s.DeletedAt = &at
		}
	}
	return nil
}

type memFiles struct {
	seq    int
	assets map[string]*models.FileAsset
}

func newMemFiles() *memFiles { return &memFiles{assets: map[string]*models.FileAsset{}} }

func (m *memFiles) Create(ctx context.Context, asset *models.FileAsset) (*models.FileAsset, error) {
	m.seq++
	out := *asset
	out.ID = fmt.Sprintf("file-%d", m.seq)
	out.CreatedAt = time.Now().UTC()
	out.UpdatedAt = out.CreatedAt
	m.assets[out.ID] = &out
	return &out, nil
}

func (m *memFiles) GetByID(ctx context.Context, ownerID, id string) (*models.FileAsset, error) {
	a, ok := m.assets[id]
	if !ok || a.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	return a, nil
}

func (m *memFiles) ListByOwner(ctx context.Context, ownerID string, limit, offset int, sortAsc bool) ([]*models.FileAsset, error) {
	var out []*models.FileAsset
	for _, a := range m.assets {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memFiles) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	for _, a := range m.assets {
		if a.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (m *memFiles) UpdateDisplayName(ctx context.Context, ownerID, id, displayName string, at time.Time) (*models.FileAsset, error) {
	a, err := m.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	a.DisplayName = displayName
	a.UpdatedAt = at
	return a, nil
}

func (m *memFiles) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := m.GetByID(ctx, ownerID, id); err != nil {
		return err
	}
	delete(m.assets, id)
	return nil
}

type memRepoManager struct {
	users    *memUsers
	sessions *memSessions
	files    *memFiles
}

func (m *memRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }
func (m *memRepoManager) Users(db dbx.DBTX) usersrepo.Repository             { return m.users }
func (m *memRepoManager) Sessions(db dbx.DBTX) sessionsrepo.Repository       { return m.sessions }
func (m *memRepoManager) Files(db dbx.DBTX) filesrepo.Repository             { return m.files }

type memStore struct {
	objects map[string][]byte
}

func (m *memStore) Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[bucket+"/"+key] = data
	return nil
}

func (m *memStore) Delete(ctx context.Context, bucket, key string) error {
	delete(m.objects, bucket+"/"+key)
	return nil
}

func (m *memStore) SignedGetURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error) {
	return "https://store.example/" + bucket + "/" + key, nil
}

type testEnv struct {
	router *gin.Engine
	repos  *memRepoManager
}

func newTestEnv(t *testing.T, mutate func(cfg *config.Config)) *testEnv {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DatabaseDSN = "sqlite://memory"
	cfg.JWTSecretKey = "test-secret"
	cfg.AccessTokenTTL = time.Hour
	if mutate != nil {
		mutate(cfg)
	}

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	codec, err := auth.NewCodec([]byte(cfg.JWTSecretKey), cfg.JWTAlgorithm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	repos := &memRepoManager{users: newMemUsers(), sessions: newMemSessions(), files: newMemFiles()}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	gate := auth.NewGate(codec, repos.sessions, repos.users)
	authSvc := services.NewAuthService(db, repos, codec, cfg)
	fileSvc := services.NewFileService(db, repos, &memStore{}, cfg, logger)

	srv := NewServer(cfg, logger, gate, authSvc, fileSvc, db)
	return &testEnv{router: srv.Routes(), repos: repos}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func (e *testEnv) signup(t *testing.T, email, password string) {
	t.Helper()
	w := e.do(t, jsonRequest(t, http.MethodPost, "/auth/signup", gin.H{"email": email, "password": password}))
	if w.Code != http.StatusCreated {
		t.Fatalf("signup failed: %d %s", w.Code, w.Body.String())
	}
}

// login returns the issued token and the raw Set-Cookie header.
func (e *testEnv) login(t *testing.T, email, password string) (string, string) {
	t.Helper()
	form := url.Values{"username": {email}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := e.do(t, req)
	if w.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", w.Code, w.Body.String())
	}

	var body tokenResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return body.AccessToken, w.Header().Get("Set-Cookie")
}

func authenticated(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	req.AddCookie(&http.Cookie{Name: common.AccessTokenCookieName, Value: token})
	return req
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var e errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return e
}

func TestSignupEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)

	t.Run("creates user", func(t *testing.T) {
		w := env.do(t, jsonRequest(t, http.MethodPost, "/auth/signup", gin.H{
			"email": "alice@example.com", "password": "password1",
		}))
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d %s", w.Code, w.Body.String())
		}
		var u userResponse
		if err := json.Unmarshal(w.Body.Bytes(), &u); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if u.ID == "" || u.Email != "alice@example.com" {
			t.Errorf("unexpected body: %+v", u)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		w := env.do(t, jsonRequest(t, http.MethodPost, "/auth/signup", gin.H{
			"email": "alice@example.com", "password": "password1",
		}))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		if e := decodeError(t, w); e.Code != "email_already_registered" {
			t.Errorf("unexpected code: %q", e.Code)
		}
	})

	t.Run("malformed email", func(t *testing.T) {
		w := env.do(t, jsonRequest(t, http.MethodPost, "/auth/signup", gin.H{
			"email": "not-an-email", "password": "password1",
		}))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		if e := decodeError(t, w); !strings.Contains(e.Message, "email") {
			t.Errorf("message should name the field: %q", e.Message)
		}
	})

	t.Run("short password", func(t *testing.T) {
		w := env.do(t, jsonRequest(t, http.MethodPost, "/auth/signup", gin.H{
			"email": "bob@example.com", "password": "short",
		}))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		if e := decodeError(t, w); !strings.Contains(e.Message, "password") {
			t.Errorf("message should name the field: %q", e.Message)
		}
	})
}

func TestLoginEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.signup(t, "alice@example.com", "password1")

	t.Run("issues token and cookie", func(t *testing.T) {
		token, cookie := env.login(t, "alice@example.com", "password1")
		if token == "" {
			t.Fatal("empty token")
		}
		if !strings.Contains(cookie, common.AccessTokenCookieName+"=") {
			t.Errorf("cookie not set: %q", cookie)
		}
		if !strings.Contains(cookie, "HttpOnly") {
			t.Errorf("cookie not http-only: %q", cookie)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		form := url.Values{"username": {"alice@example.com"}, "password": {"password2"}}
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := env.do(t, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
		if e := decodeError(t, w); e.Code != "invalid_credentials" {
			t.Errorf("unexpected code: %q", e.Code)
		}
	})

	t.Run("unknown user is indistinguishable from wrong password", func(t *testing.T) {
		form := url.Values{"username": {"nobody@example.com"}, "password": {"password1"}}
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := env.do(t, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
		if e := decodeError(t, w); e.Code != "invalid_credentials" {
			t.Errorf("unexpected code: %q", e.Code)
		}
	})
}

func TestProtectedRoutes(t *testing.T) {
	env := newTestEnv(t, nil)
	env.signup(t, "alice@example.com", "password1")
	token, _ := env.login(t, "alice@example.com", "password1")

	t.Run("header and cookie accepted", func(t *testing.T) {
		w := env.do(t, authenticated(httptest.NewRequest(http.MethodGet, "/files", nil), token))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d %s", w.Code, w.Body.String())
		}
	})

	t.Run("header only", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/files", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := env.do(t, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
		if got := w.Header().Get("WWW-Authenticate"); got != "Bearer" {
			t.Errorf("missing WWW-Authenticate header, got %q", got)
		}
	})

	t.Run("cookie only", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/files", nil)
		req.AddCookie(&http.Cookie{Name: common.AccessTokenCookieName, Value: token})
		w := env.do(t, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("mismatched tokens", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/files", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		req.AddCookie(&http.Cookie{Name: common.AccessTokenCookieName, Value: "other"})
		w := env.do(t, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("client body does not leak the reject reason", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/files", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := env.do(t, req)
		if e := decodeError(t, w); e.Code != "not_authenticated" {
			t.Errorf("expected uniform code, got %q", e.Code)
		}
	})
}

func TestLogoutEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.signup(t, "alice@example.com", "password1")

	t.Run("revokes the session and clears the cookie", func(t *testing.T) {
		token, _ := env.login(t, "alice@example.com", "password1")

		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := env.do(t, req)
		if w.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d %s", w.Code, w.Body.String())
		}
		cookie := w.Header().Get("Set-Cookie")
		if !strings.Contains(cookie, common.AccessTokenCookieName+"=") || !strings.Contains(cookie, "Max-Age=0") {
			t.Errorf("cookie not cleared: %q", cookie)
		}

		// The original token/cookie pair is dead from now on.
		w = env.do(t, authenticated(httptest.NewRequest(http.MethodGet, "/files", nil), token))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 after logout, got %d", w.Code)
		}
	})

	t.Run("second logout is rejected, not a crash", func(t *testing.T) {
		token, _ := env.login(t, "alice@example.com", "password1")

		first := env.do(t, authenticated(httptest.NewRequest(http.MethodPost, "/auth/logout", nil), token))
		if first.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", first.Code)
		}
		second := env.do(t, authenticated(httptest.NewRequest(http.MethodPost, "/auth/logout", nil), token))
		if second.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", second.Code)
		}
	})

	t.Run("revoking one session leaves the other active", func(t *testing.T) {
		tokenA, _ := env.login(t, "alice@example.com", "password1")
		tokenB, _ := env.login(t, "alice@example.com", "password1")
		if tokenA == tokenB {
			t.Fatal("logins must issue distinct tokens")
		}

		w := env.do(t, authenticated(httptest.NewRequest(http.MethodPost, "/auth/logout", nil), tokenA))
		if w.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", w.Code)
		}

		w = env.do(t, authenticated(httptest.NewRequest(http.MethodGet, "/files", nil), tokenA))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for the revoked session, got %d", w.Code)
		}
		w = env.do(t, authenticated(httptest.NewRequest(http.MethodGet, "/files", nil), tokenB))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 for the untouched session, got %d", w.Code)
		}
	})

	t.Run("cookie alone is enough", func(t *testing.T) {
		token, _ := env.login(t, "alice@example.com", "password1")

		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: common.AccessTokenCookieName, Value: token})
		w := env.do(t, req)
		if w.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", w.Code)
		}
	})

	t.Run("no token at all", func(t *testing.T) {
		w := env.do(t, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})
}

func multipartUpload(t *testing.T, field, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/files/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestFileEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)
	env.signup(t, "alice@example.com", "password1")
	token, _ := env.login(t, "alice@example.com", "password1")

	var fileID string

	t.Run("upload", func(t *testing.T) {
		req := authenticated(multipartUpload(t, "file", "doc.txt", []byte("hello")), token)
		w := env.do(t, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d %s", w.Code, w.Body.String())
		}
		var f fileResponse
		if err := json.Unmarshal(w.Body.Bytes(), &f); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.DisplayName != "doc.txt" || f.Size != 5 {
			t.Errorf("unexpected body: %+v", f)
		}
		fileID = f.ID
	})

	t.Run("upload without file field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/files/upload", strings.NewReader(""))
		req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
		w := env.do(t, authenticated(req, token))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		req := authenticated(multipartUpload(t, "file", "empty.txt", nil), token)
		w := env.do(t, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d %s", w.Code, w.Body.String())
		}
		if e := decodeError(t, w); e.Code != "file_empty" {
			t.Errorf("unexpected code: %q", e.Code)
		}
	})

	t.Run("list", func(t *testing.T) {
		w := env.do(t, authenticated(httptest.NewRequest(http.MethodGet, "/files", nil), token))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var list fileListResponse
		if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if list.Total != 1 || len(list.Items) != 1 {
			t.Errorf("unexpected list: %+v", list)
		}
	})

	t.Run("invalid limit", func(t *testing.T) {
		w := env.do(t, authenticated(httptest.NewRequest(http.MethodGet, "/files?limit=abc", nil), token))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("get", func(t *testing.T) {
		w := env.do(t, authenticated(httptest.NewRequest(http.MethodGet, "/files/"+fileID, nil), token))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		w := env.do(t, authenticated(httptest.NewRequest(http.MethodGet, "/files/missing", nil), token))
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("another user's file is not found", func(t *testing.T) {
		env.signup(t, "bob@example.com", "password1")
		bobToken, _ := env.login(t, "bob@example.com", "password1")

		w := env.do(t, authenticated(httptest.NewRequest(http.MethodGet, "/files/"+fileID, nil), bobToken))
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("rename", func(t *testing.T) {
		req := authenticated(jsonRequest(t, http.MethodPut, "/files/"+fileID, gin.H{"display_name": "renamed.txt"}), token)
		w := env.do(t, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d %s", w.Code, w.Body.String())
		}
		var f fileResponse
		if err := json.Unmarshal(w.Body.Bytes(), &f); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.DisplayName != "renamed.txt" {
			t.Errorf("unexpected name: %q", f.DisplayName)
		}
	})

	t.Run("download url", func(t *testing.T) {
		w := env.do(t, authenticated(httptest.NewRequest(http.MethodGet, "/files/"+fileID+"/download", nil), token))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var u urlResponse
		if err := json.Unmarshal(w.Body.Bytes(), &u); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(u.URL, "https://store.example/uploads/") {
			t.Errorf("unexpected url: %q", u.URL)
		}
	})

	t.Run("thumbnail missing for non-image", func(t *testing.T) {
		w := env.do(t, authenticated(httptest.NewRequest(http.MethodGet, "/files/"+fileID+"/thumbnail", nil), token))
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("delete", func(t *testing.T) {
		w := env.do(t, authenticated(httptest.NewRequest(http.MethodDelete, "/files/"+fileID, nil), token))
		if w.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", w.Code)
		}
		w = env.do(t, authenticated(httptest.NewRequest(http.MethodGet, "/files/"+fileID, nil), token))
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404 after delete, got %d", w.Code)
		}
	})
}

func TestUploadSizeCeiling(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) { cfg.MaxUploadSizeBytes = 1024 })
	env.signup(t, "alice@example.com", "password1")
	token, _ := env.login(t, "alice@example.com", "password1")

	t.Run("body cut off at the transport", func(t *testing.T) {
		// Far past limit plus multipart overhead: MaxBytesReader trips
		// before the part is parsed.
		req := authenticated(multipartUpload(t, "file", "big.bin", make([]byte, 64<<10)), token)
		w := env.do(t, req)
		if w.Code != http.StatusRequestEntityTooLarge {
			t.Fatalf("expected 413, got %d %s", w.Code, w.Body.String())
		}
		if e := decodeError(t, w); e.Code != "file_too_large" {
			t.Errorf("unexpected code: %q", e.Code)
		}
	})

	t.Run("just over the limit", func(t *testing.T) {
		req := authenticated(multipartUpload(t, "file", "big.bin", make([]byte, 2048)), token)
		w := env.do(t, req)
		if w.Code != http.StatusRequestEntityTooLarge {
			t.Fatalf("expected 413, got %d %s", w.Code, w.Body.String())
		}
	})

	t.Run("at the limit", func(t *testing.T) {
		req := authenticated(multipartUpload(t, "file", "ok.bin", make([]byte, 1024)), token)
		w := env.do(t, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d %s", w.Code, w.Body.String())
		}
	})
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/live", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = env.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestDebugConfigGating(t *testing.T) {
	t.Run("absent without debug", func(t *testing.T) {
		env := newTestEnv(t, nil)
		w := env.do(t, httptest.NewRequest(http.MethodGet, "/debug/config", nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("redacted with debug", func(t *testing.T) {
		env := newTestEnv(t, func(cfg *config.Config) { cfg.Debug = true })
		w := env.do(t, httptest.NewRequest(http.MethodGet, "/debug/config", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if strings.Contains(w.Body.String(), "test-secret") {
			t.Error("secret leaked in debug config")
		}
	})
}

func TestCORSPreflightAllowsRequestID(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/files", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "x-request-id")
	w := env.do(t, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", w.Code)
	}
	allowed := strings.ToLower(w.Header().Get("Access-Control-Allow-Headers"))
	if !strings.Contains(allowed, "x-request-id") {
		t.Errorf("preflight does not allow the correlation header: %q", allowed)
	}
}

func TestRequestIDEcho(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	req.Header.Set(common.RequestIDHeaderName, "abc-123")
	w := env.do(t, req)
	if got := w.Header().Get(common.RequestIDHeaderName); got != "abc-123" {
		t.Errorf("request id not echoed, got %q", got)
	}

	w = env.do(t, httptest.NewRequest(http.MethodGet, "/live", nil))
	if w.Header().Get(common.RequestIDHeaderName) == "" {
		t.Error("request id not assigned")
	}
}
