package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipstream/internal/auth"
	"clipstream/internal/domain"
	apphttp "clipstream/internal/http"
	"clipstream/internal/media"
	"clipstream/internal/repository/sqlite"
	"clipstream/internal/service"
	"clipstream/internal/storage"
)

const testCookieName = "clipstream_session"

// fakeStorage stands in for the S3 service so the media routes can be
// exercised without a bucket.
type fakeStorage struct {
	objects         []storage.ObjectInfo
	deletedPrefixes []string
}

func (f *fakeStorage) UploadObject(_ context.Context, _ io.Reader, opts storage.UploadOptions) (string, error) {
	f.objects = append(f.objects, storage.ObjectInfo{Key: opts.Key})
	return f.ObjectURL(opts.Bucket, opts.Key), nil
}

func (f *fakeStorage) ListObjects(_ context.Context, _, _ string) ([]storage.ObjectInfo, error) {
	return f.objects, nil
}

func (f *fakeStorage) DeletePrefix(_ context.Context, _, prefix string) error {
	f.deletedPrefixes = append(f.deletedPrefixes, prefix)
	return nil
}

func (f *fakeStorage) ObjectURL(_, key string) string {
	return "https://cdn.example.com/" + key
}

var _ storage.Service = (*fakeStorage)(nil)

func newTestRouter(t *testing.T) *gin.Engine {
	return newTestRouterWithStorage(t, nil, "")
}

func newTestRouterWithStorage(t *testing.T, store storage.Service, bucket string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn := sqlite.NewConnector(filepath.Join(t.TempDir(), "app.db"))
	t.Cleanup(func() { conn.Close() })

	userRepo := sqlite.NewUserRepository(conn)
	videoRepo := sqlite.NewVideoRepository(conn)
	require.NoError(t, userRepo.Init(context.Background()))
	require.NoError(t, videoRepo.Init(context.Background()))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	handler := apphttp.NewHandler(
		service.NewUserService(userRepo),
		service.NewVideoService(videoRepo),
		auth.NewIssuer("test-secret", time.Hour),
		media.NewSigner("test-media-key", 10*time.Minute),
		store,
		bucket, "clips", testCookieName,
		logger,
	)

	router := gin.New()
	handler.RegisterRoutes(router)
	return router
}

func doJSON(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		encoded, _ := json.Marshal(body)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func registerAndLogin(t *testing.T, router *gin.Engine, email, username, password string) string {
	t.Helper()

	rec := doJSON(router, http.MethodPost, "/auth/register", "", gin.H{
		"email": email, "username": username, "password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(router, http.MethodPost, "/auth/login", "", gin.H{
		"identifier": username, "password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	decode(t, rec, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestRegisterLoginFlow(t *testing.T) {
	router := newTestRouter(t)

	// register
	rec := doJSON(router, http.MethodPost, "/auth/register", "", gin.H{
		"email": "a@x.com", "username": "alice", "password": "Passw0rd1",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	// duplicate email conflicts even with a fresh username
	rec = doJSON(router, http.MethodPost, "/auth/register", "", gin.H{
		"email": "a@x.com", "username": "alice2", "password": "Passw0rd2",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// missing fields fail before touching the store
	rec = doJSON(router, http.MethodPost, "/auth/register", "", gin.H{
		"email": "b@x.com",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// unauthenticated listing is rejected
	rec = doJSON(router, http.MethodGet, "/videos/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// login by username
	rec = doJSON(router, http.MethodPost, "/auth/login", "", gin.H{
		"identifier": "alice", "password": "Passw0rd1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var login struct {
		Token string `json:"token"`
		User  struct {
			ID       int64  `json:"id"`
			Email    string `json:"email"`
			Username string `json:"username"`
		} `json:"user"`
	}
	decode(t, rec, &login)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, "a@x.com", login.User.Email)
	assert.Equal(t, "alice", login.User.Username)
	assert.NotContains(t, rec.Body.String(), "password")

	// wrong password gets the same shape as unknown identifier
	recWrong := doJSON(router, http.MethodPost, "/auth/login", "", gin.H{
		"identifier": "alice", "password": "wrong",
	})
	recUnknown := doJSON(router, http.MethodPost, "/auth/login", "", gin.H{
		"identifier": "nobody", "password": "Passw0rd1",
	})
	assert.Equal(t, http.StatusUnauthorized, recWrong.Code)
	assert.Equal(t, http.StatusUnauthorized, recUnknown.Code)
	assert.JSONEq(t, recWrong.Body.String(), recUnknown.Body.String())

	// no videos yet: empty list, not an error
	rec = doJSON(router, http.MethodGet, "/videos/me", login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestLogin_MixedCaseEmail(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(router, http.MethodPost, "/auth/register", "", gin.H{
		"email": "Alice@X.com", "username": "alice", "password": "Passw0rd1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// the exact spelling used at registration must log in, as must lowercase
	for _, identifier := range []string{"Alice@X.com", "alice@x.com"} {
		rec = doJSON(router, http.MethodPost, "/auth/login", "", gin.H{
			"identifier": identifier, "password": "Passw0rd1",
		})
		assert.Equal(t, http.StatusOK, rec.Code, "identifier %q: %s", identifier, rec.Body.String())
	}
}

func TestRegister_WhitespaceOnlyFields(t *testing.T) {
	router := newTestRouter(t)

	// whitespace slips past the binding layer; the service must still
	// answer with a client error, not a 500
	rec := doJSON(router, http.MethodPost, "/auth/register", "", gin.H{
		"email": "a@x.com", "username": "   ", "password": "Passw0rd1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "username is required")
}

func TestUsernameAvailability(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(router, http.MethodPost, "/auth/register/username", "", gin.H{"username": "alice"})
	require.Equal(t, http.StatusOK, rec.Code)
	var avail struct {
		Available bool `json:"available"`
	}
	decode(t, rec, &avail)
	assert.True(t, avail.Available)

	// the check creates nothing, so registering still works
	registerAndLogin(t, router, "a@x.com", "alice", "Passw0rd1")

	rec = doJSON(router, http.MethodPost, "/auth/register/username", "", gin.H{"username": "alice"})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &avail)
	assert.False(t, avail.Available)

	rec = doJSON(router, http.MethodPost, "/auth/register/username", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateVideo_OwnerComesFromSession(t *testing.T) {
	router := newTestRouter(t)
	aliceToken := registerAndLogin(t, router, "a@x.com", "alice", "Passw0rd1")
	registerAndLogin(t, router, "b@x.com", "bob", "Passw0rd1")

	// client-supplied ownerId must be ignored
	rec := doJSON(router, http.MethodPost, "/videos", aliceToken, gin.H{
		"title":    "my clip",
		"videoUrl": "https://cdn.example.com/v/1.mp4",
		"ownerId":  9999,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID      int64 `json:"id"`
		OwnerID int64 `json:"ownerId"`
	}
	decode(t, rec, &created)
	assert.NotEqual(t, int64(9999), created.OwnerID)

	rec = doJSON(router, http.MethodGet, "/videos/me", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []struct {
		ID      int64 `json:"id"`
		OwnerID int64 `json:"ownerId"`
	}
	decode(t, rec, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, created.OwnerID, mine[0].OwnerID)
}

func TestCreateVideo_Validation(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "a@x.com", "alice", "Passw0rd1")

	tests := []struct {
		name string
		body gin.H
		want int
	}{
		{
			name: "missing title",
			body: gin.H{"videoUrl": "https://cdn.example.com/v/1.mp4"},
			want: http.StatusBadRequest,
		},
		{
			name: "missing video url",
			body: gin.H{"title": "clip"},
			want: http.StatusBadRequest,
		},
		{
			name: "whitespace-only title",
			body: gin.H{"title": "   ", "videoUrl": "https://cdn.example.com/v/1.mp4"},
			want: http.StatusBadRequest,
		},
		{
			name: "bad thumbnail url",
			body: gin.H{"title": "clip", "videoUrl": "https://x/v.mp4", "thumbnailUrl": "ftp://nope"},
			want: http.StatusBadRequest,
		},
		{
			name: "quality out of range",
			body: gin.H{
				"title": "clip", "videoUrl": "https://x/v.mp4",
				"transformation": gin.H{"quality": 150},
			},
			want: http.StatusBadRequest,
		},
		{
			name: "valid",
			body: gin.H{
				"title": "clip", "videoUrl": "https://x/v.mp4",
				"thumbnailUrl":   "https://cdn.example.com/t/1.jpg",
				"transformation": gin.H{"height": 720, "width": 1280, "quality": 80},
			},
			want: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(router, http.MethodPost, "/videos", token, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestVideoListings(t *testing.T) {
	router := newTestRouter(t)
	aliceToken := registerAndLogin(t, router, "a@x.com", "alice", "Passw0rd1")
	bobToken := registerAndLogin(t, router, "b@x.com", "bob", "Passw0rd1")

	for _, tc := range []struct {
		token string
		title string
	}{
		{aliceToken, "alice first"},
		{aliceToken, "alice second"},
		{bobToken, "bob first"},
	} {
		rec := doJSON(router, http.MethodPost, "/videos", tc.token, gin.H{
			"title": tc.title, "videoUrl": "https://cdn.example.com/v.mp4",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		time.Sleep(5 * time.Millisecond)
	}

	// owner-scoped listing excludes everyone else, newest first
	rec := doJSON(router, http.MethodGet, "/videos/me", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []struct {
		Title string `json:"title"`
	}
	decode(t, rec, &mine)
	require.Len(t, mine, 2)
	assert.Equal(t, "alice second", mine[0].Title)
	assert.Equal(t, "alice first", mine[1].Title)

	// public feed carries everything
	rec = doJSON(router, http.MethodGet, "/videos", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []struct {
		Title string `json:"title"`
	}
	decode(t, rec, &all)
	assert.Len(t, all, 3)
	assert.Equal(t, "bob first", all[0].Title)
}

func TestGetVideo(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "a@x.com", "alice", "Passw0rd1")

	rec := doJSON(router, http.MethodPost, "/videos", token, gin.H{
		"title": "watchable", "videoUrl": "https://cdn.example.com/v.mp4",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID int64 `json:"id"`
	}
	decode(t, rec, &created)

	rec = doJSON(router, http.MethodGet, fmt.Sprintf("/videos/%d", created.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched struct {
		Title      string `json:"title"`
		ViewsCount int64  `json:"viewsCount"`
	}
	decode(t, rec, &fetched)
	assert.Equal(t, "watchable", fetched.Title)
	assert.Equal(t, int64(1), fetched.ViewsCount)

	rec = doJSON(router, http.MethodGet, "/videos/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(router, http.MethodGet, "/videos/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionHandling(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "a@x.com", "alice", "Passw0rd1")

	// bearer token
	rec := doJSON(router, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile struct {
		Email    string `json:"email"`
		Username string `json:"username"`
	}
	decode(t, rec, &profile)
	assert.Equal(t, "a@x.com", profile.Email)
	assert.NotContains(t, rec.Body.String(), "password")

	// cookie carries the session too
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: token})
	cookieRec := httptest.NewRecorder()
	router.ServeHTTP(cookieRec, req)
	assert.Equal(t, http.StatusOK, cookieRec.Code)

	// garbage and expired tokens fail closed
	rec = doJSON(router, http.MethodGet, "/auth/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	expired, err := auth.NewIssuer("test-secret", -time.Minute).Issue(&domain.User{ID: 1, Email: "a@x.com", Username: "alice"})
	require.NoError(t, err)
	rec = doJSON(router, http.MethodGet, "/auth/me", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// logout clears the cookie
	rec = doJSON(router, http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	found := false
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == testCookieName {
			found = true
			assert.Empty(t, cookie.Value)
			assert.Negative(t, cookie.MaxAge)
		}
	}
	assert.True(t, found)
}

func TestMediaEndpoints(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "a@x.com", "alice", "Passw0rd1")

	// upload auth params are session gated
	rec := doJSON(router, http.MethodGet, "/media/auth", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(router, http.MethodGet, "/media/auth", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var params media.AuthParams
	decode(t, rec, &params)
	assert.NotEmpty(t, params.Token)
	assert.True(t, media.NewSigner("test-media-key", 10*time.Minute).Verify(params))

	// object storage is not configured in tests
	rec = doJSON(router, http.MethodGet, "/media/objects", token, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = doJSON(router, http.MethodDelete, "/media/objects?prefix=clips/x", token, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDeleteObjects(t *testing.T) {
	store := &fakeStorage{objects: []storage.ObjectInfo{{Key: "clips/x/a.mp4"}}}
	router := newTestRouterWithStorage(t, store, "test-bucket")
	token := registerAndLogin(t, router, "a@x.com", "alice", "Passw0rd1")

	// session gated like the other media routes
	rec := doJSON(router, http.MethodDelete, "/media/objects?prefix=clips/x", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// a blank prefix would address the whole bucket
	rec = doJSON(router, http.MethodDelete, "/media/objects", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.deletedPrefixes)

	rec = doJSON(router, http.MethodDelete, "/media/objects?prefix=clips/x", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"clips/x"}, store.deletedPrefixes)
}

func TestUpdateProfile(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "a@x.com", "alice", "Passw0rd1")

	rec := doJSON(router, http.MethodPut, "/auth/me", token, gin.H{
		"profilePicture": "https://cdn.example.com/alice.png",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated struct {
		ProfilePicture string `json:"profilePicture"`
	}
	decode(t, rec, &updated)
	assert.Equal(t, "https://cdn.example.com/alice.png", updated.ProfilePicture)

	// non-image URLs are rejected by validation
	rec = doJSON(router, http.MethodPut, "/auth/me", token, gin.H{
		"profilePicture": "https://cdn.example.com/alice.exe",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
