package main

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showcase/service/internal/auth"
	"github.com/showcase/service/internal/config"
	"github.com/showcase/service/internal/file"
	"github.com/showcase/service/internal/filedex"
	"github.com/showcase/service/internal/kv"
	"github.com/showcase/service/internal/project"
	"github.com/showcase/service/internal/storage"
)

const operatorPassword = "let-me-in"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &config.Config{
		AppEnv:           "development",
		JWTSecret:        "router-test-secret",
		OperatorPassword: operatorPassword,
		CORSOrigins:      []string{"*"},
	}
	store := kv.NewMemoryStore()

	blobs, err := storage.NewLocalStorage(t.TempDir(), blobPath)
	require.NoError(t, err)

	projectSvc := project.NewService(project.NewRepository(store))
	fileSvc := file.NewService(filedex.New(), blobs, projectSvc, nil)
	authSvc, err := auth.NewService(auth.NewRepository(store), cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(newRouter(cfg, handlers{
		project: project.NewHandler(projectSvc, fileSvc, nil),
		file:    file.NewHandler(fileSvc, 1<<20),
		auth:    auth.NewHandler(authSvc),
		blobs:   http.StripPrefix(blobPath, blobs.Handler()),
	}))
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, req *http.Request) (*http.Response, envelope) {
	t.Helper()
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp, env
}

func jsonRequest(t *testing.T, method, url, body, token string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func login(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, env := call(t, jsonRequest(t, http.MethodPost, srv.URL+"/api/v1/auth/login", `{"password":"`+operatorPassword+`"}`, ""))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var s auth.Session
	require.NoError(t, json.Unmarshal(env.Data, &s))
	return s.Token
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWritesRequireOperator(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := call(t, jsonRequest(t, http.MethodPost, srv.URL+"/api/v1/projects", `{"title":"x"}`, ""))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = call(t, jsonRequest(t, http.MethodGet, srv.URL+"/api/v1/files", "", ""))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = call(t, jsonRequest(t, http.MethodPost, srv.URL+"/api/v1/auth/login", `{"password":"wrong"}`, ""))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProjectLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)
	api := srv.URL + "/api/v1"

	resp, env := call(t, jsonRequest(t, http.MethodPost, api+"/projects", `{"title":"Pixel Editor","tags":["graphics"]}`, token))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var p project.Project
	require.NoError(t, json.Unmarshal(env.Data, &p))

	// Upload a file attached to the project.
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("project", p.Slug))
	fw, err := mw.CreateFormFile("file", "Pixel Editor.zip")
	require.NoError(t, err)
	_, err = fw.Write([]byte("zip bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, api+"/files", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, env = call(t, req)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var up file.Result
	require.NoError(t, json.Unmarshal(env.Data, &up))
	assert.Equal(t, "pixel-editor.zip", up.File.Slug)
	assert.Equal(t, "/blobs/files/pixel-editor.zip", up.File.URL)

	// Download redirects to the blob, which the API serves itself.
	resp, _ = call(t, jsonRequest(t, http.MethodGet, api+"/files/pixel-editor.zip?project="+p.ID, "", ""))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	loc := resp.Header.Get("Location")
	assert.Equal(t, up.File.URL, loc)

	blob, err := http.Get(srv.URL + loc)
	require.NoError(t, err)
	defer blob.Body.Close()
	assert.Equal(t, http.StatusOK, blob.StatusCode)

	// Visitors favorite it.
	fav := jsonRequest(t, http.MethodPost, api+"/projects/"+p.ID+"/favorite", "", "")
	fav.Header.Set("X-Visitor-ID", "visitor-abcdef")
	resp, _ = call(t, fav)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = call(t, jsonRequest(t, http.MethodGet, api+"/projects/pixel-editor", "", ""))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, int64(1), p.Downloads)
	assert.Equal(t, 1, p.Favorites)
	assert.Len(t, p.Files, 1)

	// Delete releases the blob.
	resp, _ = call(t, jsonRequest(t, http.MethodDelete, api+"/projects/"+p.ID, "", token))
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = call(t, jsonRequest(t, http.MethodGet, api+"/files/pixel-editor.zip", "", ""))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExportImportRoundTrip(t *testing.T) {
	projects := []project.Project{{ID: "a", Slug: "a", Title: "A", Tags: []string{}}}
	var buf bytes.Buffer
	require.NoError(t, writeProjects(&buf, projects))

	got, err := readProjects(&buf)
	require.NoError(t, err)
	assert.Equal(t, projects[0].ID, got[0].ID)

	_, err = readProjects(strings.NewReader(`[{"id":"a","bogus":1}]`))
	assert.Error(t, err)
}
