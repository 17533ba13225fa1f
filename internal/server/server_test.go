package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/divymav/portfolio/internal/analytics"
	"github.com/divymav/portfolio/internal/carousel"
	"github.com/divymav/portfolio/internal/config"
	"github.com/divymav/portfolio/internal/content"
)

type testServer struct {
	*Server
	store *analytics.Store
}

func newTestServer(t *testing.T, withStore bool) *testServer {
	t.Helper()

	cfg := config.Default()
	cfg.Mode = gin.TestMode

	c, err := content.Default()
	require.NoError(t, err)

	var store *analytics.Store
	if withStore {
		store, err = analytics.Open(context.Background(), filepath.Join(t.TempDir(), "analytics.db"))
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
	}

	srv, err := New(cfg, c, store, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(srv.Wait)
	return &testServer{Server: srv, store: store}
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)
	return w
}

func (ts *testServer) get(path string) *httptest.ResponseRecorder {
	return ts.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (ts *testServer) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return ts.do(req)
}

func TestIndexRendersSectionsInOrder(t *testing.T) {
	ts := newTestServer(t, false)

	w := ts.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	last := -1
	for _, id := range []string{"about", "skills", "projects", "contact"} {
		i := strings.Index(body, `<section id="`+id+`"`)
		require.NotEqual(t, -1, i, id)
		assert.Greater(t, i, last, "%s out of order", id)
		last = i
	}

	assert.Contains(t, body, `style="opacity:0;transform:translateY(50px);transition:opacity 1s ease 0.6s, transform 1s ease 0.6s"`)
	assert.Contains(t, body, `data-visible-style="opacity:1;transform:translateY(0px)"`)
	assert.Contains(t, body, `aria-valuenow="70"`)
	assert.Contains(t, body, `style="width:70%;transform-origin:left;transform:scaleX(0);transition:transform 1s ease 1.2s"`)
	assert.Contains(t, body, "EduManager an app to manage entire university")
	assert.Contains(t, body, `"autoplaySpeed":5000`)
	assert.Contains(t, body, `href="mailto:divy@example.com"`)
}

func TestIndexRevealAll(t *testing.T) {
	ts := newTestServer(t, false)

	body := ts.get("/?reveal=all").Body.String()
	assert.NotContains(t, body, `style="opacity:0`)
	assert.Contains(t, body, `style="opacity:1;transform:translateY(0px);transition:`)
	assert.Contains(t, body, `style="width:70%;transform-origin:left;transform:scaleX(1);`)
}

func TestIndexIssuesFreshViewIDs(t *testing.T) {
	ts := newTestServer(t, false)

	extract := func(body string) string {
		const marker = `window.portfolio = {view: "`
		i := strings.Index(body, marker)
		require.NotEqual(t, -1, i)
		rest := body[i+len(marker):]
		return rest[:strings.Index(rest, `"`)]
	}

	a := extract(ts.get("/").Body.String())
	b := extract(ts.get("/").Body.String())
	_, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestStaticAssets(t *testing.T) {
	ts := newTestServer(t, false)

	w := ts.get("/static/reveal.js")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "IntersectionObserver")

	assert.Equal(t, http.StatusOK, ts.get("/static/icons/gmail.svg").Code)
	assert.Equal(t, http.StatusOK, ts.get("/static/images/edumanager.svg").Code)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, false)
	w := ts.get("/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestContentAPI(t *testing.T) {
	ts := newTestServer(t, false)

	w := ts.get("/api/content")
	require.Equal(t, http.StatusOK, w.Code)

	var got content.Content
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, content.BarEntry{Label: "DBMS", Level: 70}, got.Skills[1])
	assert.Len(t, got.Projects, 4)
}

func TestCarouselAPI(t *testing.T) {
	ts := newTestServer(t, false)

	tests := []struct {
		query string
		code  int
		show  int
	}{
		{"", http.StatusOK, 3},
		{"?width=1280", http.StatusOK, 3},
		{"?width=1024", http.StatusOK, 3},
		{"?width=1023", http.StatusOK, 1},
		{"?width=375", http.StatusOK, 1},
		{"?width=wide", http.StatusBadRequest, 0},
		{"?width=-5", http.StatusBadRequest, 0},
		{"?width=0", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := ts.get("/api/carousel" + tt.query)
			require.Equal(t, tt.code, w.Code)
			if tt.code != http.StatusOK {
				assert.Contains(t, w.Body.String(), "error")
				return
			}
			var s carousel.Settings
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
			assert.Equal(t, tt.show, s.SlidesToShow)
			assert.Equal(t, 5000, s.AutoplaySpeed)
			if tt.query == "" {
				assert.Len(t, s.Responsive, 3)
			} else {
				assert.Empty(t, s.Responsive)
			}
		})
	}
}

func TestCarouselWindowAPI(t *testing.T) {
	ts := newTestServer(t, false)

	tests := []struct {
		query   string
		visible []int
	}{
		{"width=1280", []int{0, 1, 2}},
		{"width=1280&elapsed=4999", []int{0, 1, 2}},
		{"width=1280&elapsed=5000", []int{1, 2, 3}},
		{"width=1280&elapsed=20000", []int{0, 1, 2}},
		{"width=1280&elapsed=60000&hovered=true", []int{0, 1, 2}},
		{"width=800&elapsed=10000", []int{2}},
		{"width=500", []int{2}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := ts.get("/api/carousel/window?" + tt.query)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var got windowResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, tt.visible, got.Visible)
			assert.Equal(t, len(tt.visible), got.Shown)
			assert.Equal(t, 4, got.Dots)
		})
	}

	bad := []string{
		"", "width=x", "width=0",
		"width=1280&elapsed=soon", "width=1280&hovered=maybe",
		"width=1280&elapsed=9300000000000000",
	}
	for _, q := range bad {
		assert.Equal(t, http.StatusBadRequest, ts.get("/api/carousel/window?"+q).Code, q)
	}
}

func TestCarouselWindowHugeElapsed(t *testing.T) {
	ts := newTestServer(t, false)

	start := time.Now()
	w := ts.get("/api/carousel/window?width=1280&elapsed=9000000000000000")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Less(t, time.Since(start), time.Second)

	var got windowResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 1800000000000, got.Advanced)
	assert.Equal(t, []int{0, 1, 2}, got.Visible)
}

func TestRevealBeacon(t *testing.T) {
	ts := newTestServer(t, true)
	view := uuid.NewString()

	for i := 0; i < 3; i++ {
		w := ts.postJSON("/api/reveal", `{"view":"`+view+`","section":"skills"}`)
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
	assert.Equal(t, http.StatusNoContent, ts.postJSON("/api/reveal", `{"view":"`+view+`","section":"about"}`).Code)

	stats, err := ts.store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []analytics.SectionReveals{
		{Section: "about", Views: 1},
		{Section: "skills", Views: 1},
	}, stats.Reveals)

	bad := []string{
		`{"view":"` + view + `","section":"footer"}`,
		`{"view":"not-a-uuid","section":"about"}`,
		`{"section":"about"}`,
		`not json`,
	}
	for _, body := range bad {
		assert.Equal(t, http.StatusBadRequest, ts.postJSON("/api/reveal", body).Code, body)
	}
}

func TestRevealBeaconWithoutStore(t *testing.T) {
	ts := newTestServer(t, false)
	w := ts.postJSON("/api/reveal", `{"view":"`+uuid.NewString()+`","section":"contact"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestVisitorTracking(t *testing.T) {
	ts := newTestServer(t, true)

	ts.get("/")
	ts.get("/static/styles.css")
	ts.get("/api/content")

	dnt := httptest.NewRequest(http.MethodGet, "/", nil)
	dnt.Header.Set("DNT", "1")
	ts.do(dnt)

	ts.Wait()
	stats, err := ts.store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalVisitors)
	require.Len(t, stats.RecentVisitors, 1)
	assert.Equal(t, "/", stats.RecentVisitors[0].Path)
	assert.NotContains(t, stats.RecentVisitors[0].HashedIP, "192.0.2.1")
}

func TestAdminRequiresLogin(t *testing.T) {
	ts := newTestServer(t, true)

	for _, path := range []string{"/admin/dashboard", "/admin/api/stats", "/admin/export/stats"} {
		w := ts.get(path)
		assert.Equal(t, http.StatusFound, w.Code, path)
		assert.Equal(t, "/admin/login", w.Header().Get("Location"), path)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: adminCookie, Value: "forged"})
	assert.Equal(t, http.StatusFound, ts.do(req).Code)
}

func login(t *testing.T, ts *testServer, user, pass string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"username": {user}, "password": {pass}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return ts.do(req)
}

func TestAdminLoginFlow(t *testing.T) {
	ts := newTestServer(t, true)

	w := login(t, ts, "admin", "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")

	w = login(t, ts, "admin", "admin123")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/dashboard", w.Header().Get("Location"))

	var token *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == adminCookie {
			token = c
		}
	}
	require.NotNil(t, token)

	authed := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.AddCookie(&http.Cookie{Name: adminCookie, Value: token.Value})
		return ts.do(req)
	}

	dash := authed("/admin/dashboard")
	assert.Equal(t, http.StatusOK, dash.Code)
	assert.Contains(t, dash.Body.String(), "Sections seen")

	api := authed("/admin/api/stats")
	require.Equal(t, http.StatusOK, api.Code)
	var stats analytics.Stats
	require.NoError(t, json.Unmarshal(api.Body.Bytes(), &stats))

	export := authed("/admin/export/stats")
	assert.Equal(t, http.StatusOK, export.Code)
	assert.Contains(t, export.Header().Get("Content-Disposition"), "admin-stats.json")
}

func TestAdminDisabledWithoutStore(t *testing.T) {
	ts := newTestServer(t, false)
	assert.Equal(t, http.StatusNotFound, ts.get("/admin/login").Code)
	assert.Equal(t, http.StatusNotFound, ts.get("/privacy").Code)
}

func TestPrivacyPage(t *testing.T) {
	ts := newTestServer(t, true)
	w := ts.get("/privacy")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "8760h0m0s")
}

func TestRunWaitsForBackgroundWorkOnListenError(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	cfg := config.Default()
	cfg.Mode = gin.TestMode
	_, cfg.Port, err = net.SplitHostPort(busy.Addr().String())
	require.NoError(t, err)

	c, err := content.Default()
	require.NoError(t, err)
	store, err := analytics.Open(context.Background(), filepath.Join(t.TempDir(), "analytics.db"))
	require.NoError(t, err)

	srv, err := New(cfg, c, store, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.Error(t, srv.Run(context.Background()))
	// the startup cleanup has finished, so closing the store cannot race it
	require.NoError(t, store.Close())
}

func TestDefaultAdminWarningInRelease(t *testing.T) {
	cfg := config.Default()
	cfg.Mode = gin.ReleaseMode
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	c, err := content.Default()
	require.NoError(t, err)
	store, err := analytics.Open(context.Background(), filepath.Join(t.TempDir(), "analytics.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	core, logs := observer.New(zap.WarnLevel)
	_, err = New(cfg, c, store, zap.New(core))
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessageSnippet("default credentials").Len())

	cfg.AdminUsername, cfg.AdminPassword = "owner", "s3cret"
	core, logs = observer.New(zap.WarnLevel)
	_, err = New(cfg, c, store, zap.New(core))
	require.NoError(t, err)
	assert.Zero(t, logs.Len())
}
