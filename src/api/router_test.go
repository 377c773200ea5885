package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"finance-tracker/src/auth"
	"finance-tracker/src/db"
	"finance-tracker/src/db/testdb"
	"finance-tracker/src/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testOrigins = []string{"http://localhost:5173"}

func TestPublicRoutes(t *testing.T) {
	router := NewRouter(nil, auth.NewPasswordHasher(bcrypt.MinCost), auth.NewTokenService([]byte("secret")), nil, testOrigins)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Welcome")

	req := httptest.NewRequest(http.MethodOptions, "/api/transactions", http.NoBody)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	tokens := auth.NewTokenService([]byte("secret"))
	router := NewRouter(nil, auth.NewPasswordHasher(bcrypt.MinCost), tokens, nil, testOrigins)

	forged, err := auth.NewTokenService([]byte("other")).Issue("alice")
	require.NoError(t, err)

	routes := []struct {
		method, path string
	}{
		{http.MethodGet, "/auth/me"},
		{http.MethodGet, "/api/transactions"},
		{http.MethodPost, "/api/transactions"},
		{http.MethodGet, "/api/transactions/1"},
		{http.MethodPut, "/api/transactions/1"},
		{http.MethodDelete, "/api/transactions/1"},
		{http.MethodGet, "/api/categories"},
		{http.MethodPost, "/api/categories"},
		{http.MethodGet, "/api/categories/1"},
		{http.MethodPut, "/api/categories/1"},
		{http.MethodDelete, "/api/categories/1"},
	}

	for _, rt := range routes {
		for _, header := range []string{"", "Bearer garbage", "Bearer " + forged} {
			t.Run(rt.method+" "+rt.path+" "+header, func(t *testing.T) {
				req := httptest.NewRequest(rt.method, rt.path, http.NoBody)
				if header != "" {
					req.Header.Set("Authorization", header)
				}
				w := httptest.NewRecorder()
				router.ServeHTTP(w, req)
				assert.Equal(t, http.StatusUnauthorized, w.Code)
				assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
			})
		}
	}
}

type client struct {
	t      *testing.T
	router http.Handler
	token  string
}

func (c *client) do(method, path, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

func (c *client) signUp(username, email, password string) {
	c.t.Helper()
	body, err := json.Marshal(models.RegisterRequest{Username: username, Email: email, Password: password})
	require.NoError(c.t, err)
	w := c.do(http.MethodPost, "/auth/register", string(body))
	require.Equal(c.t, http.StatusCreated, w.Code, w.Body.String())

	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())

	var resp models.TokenResponse
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &resp))
	c.token = resp.AccessToken
}

func TestTransactionLifecycle(t *testing.T) {
	pool := testdb.Open(t, "test_api")
	testdb.Reset(t, pool)

	users, err := db.NewUserCache()
	require.NoError(t, err)
	t.Cleanup(users.Close)

	router := NewRouter(pool, auth.NewPasswordHasher(bcrypt.MinCost), auth.NewTokenService([]byte("e2e-secret")), users, testOrigins)

	alice := &client{t: t, router: router}
	alice.signUp("alice", "alice@example.com", "password123")

	w := alice.do(http.MethodGet, "/auth/me", "")
	require.Equal(t, http.StatusOK, w.Code)
	var me models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "alice", me.Username)

	w = alice.do(http.MethodPost, "/api/transactions", `{"amount":50.00,"type":"expense","description":"Groceries"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Transaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, me.ID, created.UserID)
	assert.WithinDuration(t, time.Now(), created.TransactionDate, time.Minute)

	w = alice.do(http.MethodGet, "/api/transactions", "")
	require.Equal(t, http.StatusOK, w.Code)
	var listed []models.Transaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	path := "/api/transactions/" + strconv.FormatInt(created.ID, 10)

	bob := &client{t: t, router: router}
	bob.signUp("bob", "bob@example.com", "password456")
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		w = bob.do(method, path, `{"amount":1}`)
		assert.Equal(t, http.StatusNotFound, w.Code, method)
	}

	w = alice.do(http.MethodPut, path, `{"amount":45.50}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.Transaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.True(t, decimal.RequireFromString("45.5").Equal(updated.Amount))
	assert.Equal(t, "Groceries", *updated.Description)

	w = alice.do(http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = alice.do(http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
