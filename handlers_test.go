package inkpress

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(app *App, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	return rec
}

// postForm submits a form with a freshly issued CSRF token, the way a
// browser would after loading any page.
func postForm(t *testing.T, app *App, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	seed := get(app, "/login")
	var csrf *http.Cookie
	for _, ck := range seed.Result().Cookies() {
		if ck.Name == "_csrf" {
			csrf = ck
		}
	}
	require.NotNil(t, csrf, "login page should issue a csrf cookie")

	form.Set("_csrf", csrf.Value)
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.AddCookie(csrf)
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	return rec
}

func TestHomeListsPublishedPosts(t *testing.T) {
	app, _ := newTestApp(t)

	require.NoError(t, app.Store.CreateUser("a@x.com", "hash"))
	_, err := app.Store.CreatePost(Post{
		Title: "Visible", Content: "x", Author: "a@x.com",
		Status: StatusPublished, PublishDate: "2024-01-01",
	})
	require.NoError(t, err)
	_, err = app.Store.CreatePost(Post{
		Title: "Hidden draft", Content: "x", Author: "a@x.com",
		Status: StatusDraft, PublishDate: "2024-01-02",
	})
	require.NoError(t, err)

	rec := get(app, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Visible")
	assert.NotContains(t, rec.Body.String(), "Hidden draft")
}

func TestPostViewRendersMarkdown(t *testing.T) {
	app, _ := newTestApp(t)

	require.NoError(t, app.Store.CreateUser("a@x.com", "hash"))
	id, err := app.Store.CreatePost(Post{
		Title: "Hello", Content: "# Heading\n\nsome **bold** text",
		Author: "a@x.com", Status: StatusPublished, PublishDate: "2024-01-01",
	})
	require.NoError(t, err)

	rec := get(app, "/blog/"+strconv.FormatInt(id, 10))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>Heading</h1>")
	assert.Contains(t, rec.Body.String(), "<strong>bold</strong>")
}

func TestPostViewMissingRedirectsHome(t *testing.T) {
	app, _ := newTestApp(t)

	rec := get(app, "/blog/9999")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestProtectedRoutesRedirectToLogin(t *testing.T) {
	app, _ := newTestApp(t)

	for _, target := range []string{"/myposts", "/profile", "/blog/create", "/blog/edit/1"} {
		rec := get(app, target)
		assert.Equal(t, http.StatusSeeOther, rec.Code, target)
		loc := rec.Header().Get("Location")
		assert.Contains(t, loc, "/login?next=", target)
	}
}

func TestDeleteRequiresLogin(t *testing.T) {
	app, _ := newTestApp(t)

	require.NoError(t, app.Store.CreateUser("a@x.com", "hash"))
	id, err := app.Store.CreatePost(Post{
		Title: "Keep me", Content: "x", Author: "a@x.com",
		Status: StatusPublished, PublishDate: "2024-01-01",
	})
	require.NoError(t, err)

	target := "/blog/delete/" + strconv.FormatInt(id, 10)
	rec := postForm(t, app, target, url.Values{})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/login?next=")

	_, err = app.Store.GetPost(id)
	assert.NoError(t, err, "post must survive an anonymous delete attempt")
}

func TestMyPostsPreservesDestination(t *testing.T) {
	app, _ := newTestApp(t)

	rec := get(app, "/myposts")
	assert.Equal(t, "/login?next=%2Fmyposts", rec.Header().Get("Location"))
}

func TestImageUnknownIs404(t *testing.T) {
	app, _ := newTestApp(t)

	rec := get(app, "/image/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFeedAndSitemap(t *testing.T) {
	app, _ := newTestApp(t)

	require.NoError(t, app.Store.CreateUser("a@x.com", "hash"))
	_, err := app.Store.CreatePost(Post{
		Title: "Feed me", Content: "x", Author: "a@x.com",
		Status: StatusPublished, PublishDate: "2024-01-01",
	})
	require.NoError(t, err)

	rec := get(app, "/feed.xml")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<rss")
	assert.Contains(t, rec.Body.String(), "Feed me")

	rec = get(app, "/sitemap.xml")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "urlset")
}

func TestRobots(t *testing.T) {
	app, _ := newTestApp(t)

	rec := get(app, "/robots.txt")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sitemap:")
}

func TestLoginPageRenders(t *testing.T) {
	app, _ := newTestApp(t)

	rec := get(app, "/login?next=%2Fmyposts")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="next" value="/myposts"`)
}

func TestLoginSuccessesDoNotRateLimit(t *testing.T) {
	app, _ := newTestApp(t)

	require.NoError(t, app.RegisterUser("a@x.com", "pw1"))
	confirmTestUser(t, app, "a@x.com")

	// Well past the limiter's per-window maximum; only failures count.
	for i := 0; i < 8; i++ {
		rec := postForm(t, app, "/login", url.Values{
			"email":    {"a@x.com"},
			"password": {"pw1"},
		})
		require.Equal(t, http.StatusSeeOther, rec.Code, "attempt %d", i)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	}
}

func TestLoginFailuresRateLimit(t *testing.T) {
	app, _ := newTestApp(t)

	require.NoError(t, app.RegisterUser("a@x.com", "pw1"))
	confirmTestUser(t, app, "a@x.com")

	for i := 0; i < 5; i++ {
		rec := postForm(t, app, "/login", url.Values{
			"email":    {"a@x.com"},
			"password": {"wrong"},
		})
		require.Equal(t, http.StatusSeeOther, rec.Code, "attempt %d", i)
	}

	// Even the right password is refused once the window is exhausted.
	rec := postForm(t, app, "/login", url.Values{
		"email":    {"a@x.com"},
		"password": {"pw1"},
	})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestLoginPageDropsUnsafeNext(t *testing.T) {
	app, _ := newTestApp(t)

	rec := get(app, "/login?next=http%3A%2F%2Fevil.example")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "evil.example")
}
