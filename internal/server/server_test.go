package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/config"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/models"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/service"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	app *fiber.App
	srv *Server
	mr  *miniredis.Miniredis
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Env:                    "test",
		Port:                   "0",
		AllowedOrigins:         "http://localhost:3000",
		FeatureFlags:           "register_admin_role=on",
		JWTSecret:              "test-secret-that-is-long-enough-for-hs256",
		JWTIssuer:              "resale-hub-api",
		JWTAudience:            "resale-hub-app",
		JWTTTLHours:            1,
		ImageRootDir:           t.TempDir(),
		ImageAdsDir:            "ads",
		ImageAvatarsDir:        "avatars",
		ImageMaxSizeMB:         1,
		ImageAllowedTypes:      "jpg,jpeg,png,webp",
		ImageBaseURL:           "/images/",
		ImageCacheSeconds:      60,
		RateLimitAuthPerMinute: 10,
	}
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()
	cfg := testConfig(t)
	for _, m := range mutate {
		m(cfg)
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	images, err := service.NewImageStore(cfg)
	require.NoError(t, err)

	srv, err := NewServerWithDeps(cfg, testutil.NewTestDB(t), rdb, images)
	require.NoError(t, err)
	return &testEnv{app: srv.NewApp(), srv: srv, mr: mr}
}

type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	token       string
	basic       [2]string
}

func (e *testEnv) do(t *testing.T, r request) *http.Response {
	t.Helper()
	req := httptest.NewRequest(r.method, r.path, r.body)
	if r.contentType != "" {
		req.Header.Set(fiber.HeaderContentType, r.contentType)
	}
	if r.token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+r.token)
	}
	if r.basic[0] != "" {
		raw := base64.StdEncoding.EncodeToString([]byte(r.basic[0] + ":" + r.basic[1]))
		req.Header.Set(fiber.HeaderAuthorization, "Basic "+raw)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (e *testEnv) doJSON(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	return e.do(t, request{method: method, path: path, body: reader, contentType: fiber.MIMEApplicationJSON, token: token})
}

func registration(username string, role models.Role) RegisterRequest {
	return RegisterRequest{
		Username:  username,
		Password:  "password123",
		FirstName: "Ivan",
		LastName:  "Petrov",
		Phone:     "+7 (999) 123-45-67",
		Role:      role,
	}
}

// signUp registers username and returns a bearer token for it.
func (e *testEnv) signUp(t *testing.T, username string, role models.Role) string {
	t.Helper()
	resp := e.doJSON(t, http.MethodPost, "/register", "", registration(username, role))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = e.doJSON(t, http.MethodPost, "/login", "", LoginRequest{Username: username, Password: "password123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[TokenResponse](t, resp).Token
}

func (e *testEnv) me(t *testing.T, token string) models.UserView {
	t.Helper()
	resp := e.doJSON(t, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[models.UserView](t, resp)
}

// postAd creates an ad through the multipart endpoint.
func (e *testEnv) postAd(t *testing.T, token, title string) models.AdView {
	t.Helper()
	body, contentType := adMultipart(t, AdRequest{Title: title, Price: 2500, Description: "barely used, no scratches"}, testutil.TinyPNG(t, 2, 2))
	resp := e.do(t, request{method: http.MethodPost, path: "/ads", body: body, contentType: contentType, token: token})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[models.AdView](t, resp)
}

func adMultipart(t *testing.T, props AdRequest, png []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	raw, err := json.Marshal(props)
	require.NoError(t, err)
	propsPart, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="properties"; filename="properties.json"`},
		"Content-Type":        {fiber.MIMEApplicationJSON},
	})
	require.NoError(t, err)
	_, err = propsPart.Write(raw)
	require.NoError(t, err)

	writeImagePart(t, w, "image/png", png)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func imageMultipart(t *testing.T, contentType string, content []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	writeImagePart(t, w, contentType, content)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func writeImagePart(t *testing.T, w *multipart.Writer, contentType string, content []byte) {
	t.Helper()
	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="image"; filename="upload.bin"`},
		"Content-Type":        {contentType},
	})
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func assertError(t *testing.T, resp *http.Response, status int, code, message string) {
	t.Helper()
	assert.Equal(t, status, resp.StatusCode)
	body := decode[models.ErrorResponse](t, resp)
	assert.Equal(t, code, body.Code)
	if message != "" {
		assert.Equal(t, message, body.Message)
	}
}

func TestHealthChecks(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	resp := env.doJSON(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.doJSON(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	env.mr.Close()
	resp = env.doJSON(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	checks, ok := body["checks"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "healthy", checks["database"])
	assert.Equal(t, "unhealthy", checks["redis"])
}

func TestUnknownRouteUsesErrorBody(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	resp := env.doJSON(t, http.MethodGet, "/no/such/route", "", nil)
	assertError(t, resp, http.StatusNotFound, models.CodeNotFound, "")
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.doJSON(t, http.MethodGet, "/ads", "", nil)

	resp := env.doJSON(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "http_requests_total")
}

func TestParseIDRejectsGarbage(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	token := env.signUp(t, "ids@x.com", models.RoleUser)

	for _, path := range []string{"/ads/abc", "/ads/0", "/ads/-3"} {
		resp := env.doJSON(t, http.MethodGet, path, token, nil)
		assertError(t, resp, http.StatusBadRequest, models.CodeBadRequest, "Invalid id")
	}
	resp := env.doJSON(t, http.MethodDelete, fmt.Sprintf("/ads/%d/comments/zero", 1), token, nil)
	assertError(t, resp, http.StatusBadRequest, models.CodeBadRequest, "Invalid commentId")
}
