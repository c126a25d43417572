package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"files/report.pdf", true},
		{"report.pdf", true},
		{"", false},
		{"/abs/path", false},
		{"files/../secret", false},
		{"files//double", false},
		{"./report.pdf", false},
		{`files\report.pdf`, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidKey(tt.key))
		})
	}
}

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewLocalStorage(root, "http://localhost:8080/blobs/")
	require.NoError(t, err)

	t.Run("upload writes the blob under root", func(t *testing.T) {
		require.NoError(t, s.Upload(ctx, "files/hello.txt", strings.NewReader("hello"), 5, "text/plain"))

		data, err := os.ReadFile(filepath.Join(root, "files", "hello.txt"))
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
	})

	t.Run("public url joins the base and key", func(t *testing.T) {
		assert.Equal(t, "http://localhost:8080/blobs/files/hello.txt", s.PublicURL("files/hello.txt"))
	})

	t.Run("size mismatch leaves nothing behind", func(t *testing.T) {
		err := s.Upload(ctx, "files/short.txt", strings.NewReader("abc"), 10, "text/plain")
		require.Error(t, err)
		_, statErr := os.Stat(filepath.Join(root, "files", "short.txt"))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("rejects keys escaping the root", func(t *testing.T) {
		err := s.Upload(ctx, "../evil.txt", strings.NewReader("x"), 1, "text/plain")
		assert.ErrorIs(t, err, ErrInvalidKey)
	})

	t.Run("handler serves blobs but not directories", func(t *testing.T) {
		h := http.StripPrefix("/blobs", s.Handler())

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/blobs/files/hello.txt", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "hello", w.Body.String())
		assert.Equal(t, "attachment", w.Header().Get("Content-Disposition"))

		w = httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/blobs/files/", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, "files/hello.txt"))
		require.NoError(t, s.Delete(ctx, "files/hello.txt"))
		_, err := os.Stat(filepath.Join(root, "files", "hello.txt"))
		assert.True(t, os.IsNotExist(err))
	})
}

// newFakeS3 starts an in-process S3 server and returns its host:port.
func newFakeS3(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	faker := gofakes3.New(s3mem.New())
	ts := httptest.NewServer(faker.Server())
	t.Cleanup(ts.Close)
	return ts, strings.TrimPrefix(ts.URL, "http://")
}

func TestMinioStorage(t *testing.T) {
	ctx := context.Background()
	ts, endpoint := newFakeS3(t)

	s, err := NewMinioStorage(ctx, MinioConfig{
		Endpoint:  endpoint,
		AccessKey: "test",
		SecretKey: "test",
		Bucket:    "showcase",
	})
	require.NoError(t, err)

	key := "files/report.pdf"
	assert.Equal(t, ts.URL+"/showcase/"+key, s.PublicURL(key))

	require.NoError(t, s.Upload(ctx, key, strings.NewReader("%PDF-1.7"), 8, "application/pdf"))

	resp, err := http.Get(s.PublicURL(key))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "%PDF-1.7", string(body))

	require.NoError(t, s.Delete(ctx, key))

	resp, err = http.Get(s.PublicURL(key))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMinioStorageReusesExistingBucket(t *testing.T) {
	ctx := context.Background()
	_, endpoint := newFakeS3(t)
	cfg := MinioConfig{
		Endpoint:   endpoint,
		AccessKey:  "test",
		SecretKey:  "test",
		Bucket:     "showcase",
		PublicBase: "https://cdn.example.com/",
	}

	_, err := NewMinioStorage(ctx, cfg)
	require.NoError(t, err)
	s, err := NewMinioStorage(ctx, cfg)
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/a.png", s.PublicURL("a.png"))
}

func TestMinioStorageRejectsInvalidKey(t *testing.T) {
	ctx := context.Background()
	_, endpoint := newFakeS3(t)
	s, err := NewMinioStorage(ctx, MinioConfig{Endpoint: endpoint, AccessKey: "a", SecretKey: "b", Bucket: "showcase"})
	require.NoError(t, err)

	err = s.Upload(ctx, "../x", strings.NewReader("x"), 1, "text/plain")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestPublicReadPolicy(t *testing.T) {
	p := publicReadPolicy("showcase")
	assert.Contains(t, p, `"arn:aws:s3:::showcase/*"`)
	assert.Contains(t, p, `"s3:GetObject"`)
}
