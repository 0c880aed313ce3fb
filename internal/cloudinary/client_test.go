package cloudinary

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign(t *testing.T) {
	c := New("demo", "key", "secret", "")
	got := c.sign(map[string]string{
		"timestamp": "1700000000",
		"folder":    "users",
		"api_key":   "key",
		"file":      "ignored",
	})
	assert.Len(t, got, 40)
	assert.Equal(t, got, c.sign(map[string]string{"folder": "users", "timestamp": "1700000000"}), "unsigned keys are skipped")
}

func TestUploadBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1_1/demo/image/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "key", r.FormValue("api_key"))
		assert.Equal(t, "attendance/users", r.FormValue("folder"))
		assert.Equal(t, "user-1", r.FormValue("public_id"))
		assert.Equal(t, "1700000000", r.FormValue("timestamp"))
		assert.NotEmpty(t, r.FormValue("signature"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "face.jpg", hdr.Filename)
		assert.Equal(t, []byte("jpeg-bytes"), data)

		_, _ = io.WriteString(w, `{"public_id":"attendance/users/user-1","secure_url":"https://res.example/u1.jpg","width":64,"height":64}`)
	}))
	defer srv.Close()

	c := New("demo", "key", "secret", "attendance/users")
	c.BaseURL = srv.URL + "/v1_1"
	c.now = func() time.Time { return time.Unix(1700000000, 0) }

	res, err := c.UploadBytes(context.Background(), "user-1", []byte("jpeg-bytes"), "face.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://res.example/u1.jpg", res.SecureURL)
	assert.Equal(t, 64, res.Width)
}

func TestUploadDataURL_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "data:image/png;base64,AAAA", r.FormValue("file"))
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"Invalid Signature"}}`)
	}))
	defer srv.Close()

	c := New("demo", "key", "wrong", "")
	c.BaseURL = srv.URL

	_, err := c.UploadDataURL(context.Background(), "", "data:image/png;base64,AAAA")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
