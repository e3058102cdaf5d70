package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onlymemes/internal/auth"
	"onlymemes/internal/config"
	"onlymemes/internal/db"
	"onlymemes/internal/db/dbtest"
	"onlymemes/internal/logging"
	"onlymemes/internal/media"
)

type fakeUploader struct{}

func (fakeUploader) Upload(ctx context.Context, r io.Reader, filename string) (media.Upload, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return media.Upload{}, err
	}
	id := "onlymemes/memes/" + uuid.NewString()
	return media.Upload{URL: "https://cdn.example.com/" + id, PublicID: id, Kind: media.KindImage}, nil
}

type testServer struct {
	t   *testing.T
	srv *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logging.Discard()

	sessions, err := auth.OpenSessionStore("", time.Hour, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sessions.Close() })

	cfg := config.Config{MaxUploadBytes: 1 << 20}
	h := NewRouter(cfg, Deps{
		DB:       dbtest.New(t, db.Models()...),
		JWT:      auth.NewJWT("test-secret", time.Hour),
		Sessions: sessions,
		Media:    fakeUploader{},
		Log:      log,
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv}
}

func (s *testServer) do(method, path, token string, body io.Reader, contentType string) (*http.Response, []byte) {
	s.t.Helper()
	req, err := http.NewRequest(method, s.srv.URL+path, body)
	require.NoError(s.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(s.t, err)
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	require.NoError(s.t, err)
	return res, b
}

func (s *testServer) json(method, path, token string, v any) (*http.Response, []byte) {
	s.t.Helper()
	var body io.Reader
	if v != nil {
		b, err := json.Marshal(v)
		require.NoError(s.t, err)
		body = bytes.NewReader(b)
	}
	return s.do(method, path, token, body, "application/json")
}

// login registers username and returns its token and user id.
func (s *testServer) login(username string) (string, string) {
	s.t.Helper()
	email := username + "@example.com"
	res, _ := s.json("POST", "/auth/register", "", map[string]string{
		"name": username, "username": username, "email": email, "password": "password",
	})
	require.Equal(s.t, http.StatusCreated, res.StatusCode)

	res, b := s.json("POST", "/auth/login", "", map[string]string{"email": email, "password": "password"})
	require.Equal(s.t, http.StatusOK, res.StatusCode)
	var out struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(s.t, json.Unmarshal(b, &out))
	return out.Token, out.User.ID
}

func (s *testServer) upload(token, title, category string, withImage bool) (*http.Response, []byte) {
	s.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(s.t, mw.WriteField("title", title))
	require.NoError(s.t, mw.WriteField("category", category))
	require.NoError(s.t, mw.WriteField("tags", "a, b"))
	if withImage {
		fw, err := mw.CreateFormFile("image", "meme.gif")
		require.NoError(s.t, err)
		_, err = fw.Write([]byte("gif89a"))
		require.NoError(s.t, err)
	}
	require.NoError(s.t, mw.Close())
	return s.do("POST", "/memes", token, &buf, mw.FormDataContentType())
}

type memeView struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Category  string   `json:"category"`
	Tags      []string `json:"tags"`
	MediaURL  string   `json:"media_url"`
	Views     int64    `json:"views"`
	IsLiked   bool     `json:"is_liked"`
	Reactions struct {
		Likes int64 `json:"likes"`
	} `json:"reactions"`
}

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(b, &v), string(b))
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	res, b := s.do("GET", "/health", "", nil, "")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "ok", string(b))
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	res, _ := s.json("GET", "/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	token, id := s.login("alice")

	res, b := s.json("GET", "/me", token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	me := decode[map[string]any](t, b)
	assert.Equal(t, id, me["id"])
	assert.NotContains(t, string(b), "password")

	res, _ = s.json("POST", "/auth/register", "", map[string]string{
		"name": "x", "username": "alice", "email": "new@example.com", "password": "p",
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode, "duplicate username")

	res, _ = s.json("POST", "/auth/register", "", map[string]string{"name": "x"})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode, "missing fields")

	res, b = s.json("POST", "/auth/login", "", map[string]string{"email": "alice@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Contains(t, string(b), `"error"`)

	res, _ = s.json("POST", "/auth/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)

	res, _ = s.json("GET", "/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode, "revoked session")
}

func TestMemeFlow(t *testing.T) {
	s := newTestServer(t)
	aToken, aID := s.login("alice")
	bToken, _ := s.login("bob")

	res, _ := s.upload("", "Drake Pointing", "Funny", true)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, b := s.upload(aToken, "Drake Pointing", "Funny", false)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode, string(b))

	res, b = s.upload(aToken, "Drake Pointing", "Funny", true)
	require.Equal(t, http.StatusCreated, res.StatusCode, string(b))
	created := decode[memeView](t, b)
	assert.Equal(t, []string{"a", "b"}, created.Tags)
	assert.NotEmpty(t, created.MediaURL)

	res, b = s.json("POST", "/memes/"+created.ID+"/react", bToken, map[string]string{"reactionType": "likes"})
	require.Equal(t, http.StatusOK, res.StatusCode, string(b))
	react := decode[struct {
		Success   bool `json:"success"`
		IsLiked   bool `json:"is_liked"`
		Reactions struct {
			Likes int64 `json:"likes"`
		} `json:"reactions"`
	}](t, b)
	assert.True(t, react.Success)
	assert.True(t, react.IsLiked)
	assert.Equal(t, int64(1), react.Reactions.Likes)

	res, b = s.json("GET", "/memes/"+created.ID, bToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, decode[memeView](t, b).IsLiked)

	res, b = s.json("GET", "/memes/"+created.ID, aToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.False(t, decode[memeView](t, b).IsLiked)

	res, _ = s.json("POST", "/memes/"+created.ID+"/react", bToken, map[string]string{"reactionType": "laughs"})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, _ = s.json("POST", "/memes/"+created.ID+"/react", "", map[string]string{"reactionType": "likes"})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, b = s.json("PATCH", "/memes/"+created.ID+"/view", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"success":true}`, string(b))
	res, _ = s.json("PATCH", "/memes/"+uuid.NewString()+"/share", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode, "unknown meme is ignored")

	res, b = s.json("GET", "/memes?ownerId="+aID, "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	list := decode[[]memeView](t, b)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].Views)

	res, b = s.json("GET", "/memes/category/Funny", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Len(t, decode[[]memeView](t, b), 1)

	res, b = s.json("GET", "/memes/trending", bToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	trending := decode[[]memeView](t, b)
	require.Len(t, trending, 1)
	assert.True(t, trending[0].IsLiked)

	res, b = s.json("GET", "/suggestions", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, []string{"Try making memes in Funny category, it's trending!"}, decode[[]string](t, b))

	res, _ = s.json("GET", "/memes/not-an-id", "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestTemplatesAndUsers(t *testing.T) {
	s := newTestServer(t)
	_, id := s.login("carol")

	res, b := s.json("GET", "/templates", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Len(t, decode[[]map[string]any](t, b), 8)

	res, b = s.json("GET", "/users/"+id, "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "carol", decode[map[string]any](t, b)["username"])

	res, b = s.json("GET", "/users/by-username/carol", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, id, decode[map[string]any](t, b)["id"])

	res, _ = s.json("GET", "/users/garbage", "", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, _ = s.json("GET", "/users/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
