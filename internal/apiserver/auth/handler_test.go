package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civic-portal/internal/shared/storage/driver/sqlite"
	"civic-portal/internal/shared/storage/repository"
)

// testHandler 基于内存 SQLite 搭起完整认证栈
func testHandler(t *testing.T) (*Handler, http.Handler) {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	dialect := sqlite.NewDialect()
	require.NoError(t, dialect.AutoMigrate(db))
	store := repository.NewStore(db, dialect)
	t.Cleanup(func() { store.Close() })

	h := NewHandler(store, testConfig())
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return h, SessionGate(testConfig())(mux)
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	return w
}

func TestSignupLoginFlow(t *testing.T) {
	_, handler := testHandler(t)

	// 注册
	w := doJSON(t, handler, "POST", "/api/v1/auth/signup",
		`{"name":"Alice","email":"alice@example.com","password":"secret123"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// 重复注册同一邮箱
	w = doJSON(t, handler, "POST", "/api/v1/auth/signup",
		`{"name":"Alice2","email":"alice@example.com","password":"secret456"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "user already exists")

	// 登录成功，拿到会话 Cookie
	w = doJSON(t, handler, "POST", "/api/v1/auth/login",
		`{"email":"alice@example.com","password":"secret123"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var loginResp struct {
		Success bool `json:"success"`
		User    struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loginResp))
	assert.True(t, loginResp.Success)
	assert.Equal(t, "Alice", loginResp.User.Name)
	assert.Equal(t, "citizen", loginResp.User.Role)

	// 响应绝不应包含密码哈希
	assert.NotContains(t, w.Body.String(), "password")

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			session = c
		}
	}
	require.NotNil(t, session, "login must set session cookie")
	assert.True(t, session.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, session.SameSite)
	assert.Equal(t, int(testConfig().SessionTTL.Seconds()), session.MaxAge)

	// 令牌内容可解析且与登录用户一致
	claims, err := ParseToken(testConfig(), session.Value)
	require.NoError(t, err)
	assert.Equal(t, loginResp.User.ID, claims.Subject)
	assert.Equal(t, "alice@example.com", claims.Email)

	// Me
	w = doJSON(t, handler, "GET", "/api/v1/auth/me", "", session)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice@example.com")

	// Logout 清除 Cookie
	w = doJSON(t, handler, "POST", "/api/v1/auth/logout", "", session)
	require.Equal(t, http.StatusOK, w.Code)
	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "logout must expire session cookie")
}

func TestLoginUniformError(t *testing.T) {
	_, handler := testHandler(t)

	w := doJSON(t, handler, "POST", "/api/v1/auth/signup",
		`{"name":"Bob","email":"bob@example.com","password":"secret123"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	// 邮箱不存在与密码错误返回同一条消息
	wrongEmail := doJSON(t, handler, "POST", "/api/v1/auth/login",
		`{"email":"nobody@example.com","password":"secret123"}`)
	wrongPass := doJSON(t, handler, "POST", "/api/v1/auth/login",
		`{"email":"bob@example.com","password":"wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, wrongEmail.Code)
	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	assert.Equal(t, wrongEmail.Body.String(), wrongPass.Body.String())
}

func TestSignupValidation(t *testing.T) {
	_, handler := testHandler(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing fields", `{"email":"a@b.com"}`, http.StatusBadRequest},
		{"bad email", `{"name":"X","email":"not-an-email","password":"secret123"}`, http.StatusBadRequest},
		{"short password", `{"name":"X","email":"x@example.com","password":"abc"}`, http.StatusBadRequest},
		{"bad role", `{"name":"X","email":"x@example.com","password":"secret123","role":"overlord"}`, http.StatusBadRequest},
		{"mp role ok", `{"name":"X","email":"x@example.com","password":"secret123","role":"mp"}`, http.StatusCreated},
		{"not json", `{{{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, handler, "POST", "/api/v1/auth/signup", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestMeUnauthenticated(t *testing.T) {
	_, handler := testHandler(t)
	w := doJSON(t, handler, "GET", "/api/v1/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
