package inkpress

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

// pageData carries the request-scoped values every page needs.
type pageData struct {
	Cfg       SiteConfig
	UserEmail string // empty when anonymous
	Flashes   []Flash
	Csrf      string
}

func (a *App) pageData(c echo.Context) pageData {
	email, _ := currentEmail(c)
	return pageData{
		Cfg:       a.Config,
		UserEmail: email,
		Flashes:   takeFlashes(c),
		Csrf:      CsrfToken(c),
	}
}

// handleHome serves the published listing with optional tag filtering and
// the greeting-name form.
func (a *App) handleHome(c echo.Context) error {
	tag := c.QueryParam("tag")
	posts, err := a.Store.ListPublished(tag)
	if err != nil {
		return err
	}
	tags, err := a.Store.ListTags()
	if err != nil {
		return err
	}
	name := sessionValue(c, "name")
	return Render(c, pageHome(a.pageData(c), name, posts, tag, tags))
}

// handleName stores the visitor's display name in the session.
func (a *App) handleName(c echo.Context) error {
	oldName := sessionValue(c, "name")
	newName := strings.TrimSpace(c.FormValue("name"))
	if oldName != "" && newName != "" && oldName != newName {
		addFlash(c, "success", "You changed your name!")
	}
	setSessionValue(c, "name", newName)
	return c.Redirect(http.StatusSeeOther, "/")
}

func (a *App) handlePostView(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	post, err := a.Store.GetPost(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			addFlash(c, "danger", "Post not found.")
			return c.Redirect(http.StatusSeeOther, "/")
		}
		return err
	}
	return Render(c, pagePost(a.pageData(c), post))
}

func (a *App) handlePostCreateForm(c echo.Context) error {
	return Render(c, pagePostForm(a.pageData(c), nil))
}

func (a *App) handlePostCreate(c echo.Context) error {
	email, _ := currentEmail(c)
	// Author must reference an existing user at creation time.
	if _, err := a.Store.GetUser(email); err != nil {
		return err
	}

	post, err := postFromForm(c)
	if err != nil {
		addFlash(c, "warning", err.Error())
		return c.Redirect(http.StatusSeeOther, "/blog/create")
	}
	post.Author = email

	// Store the image first so the post row is written with its reference
	// already attached; no post-without-image state is ever visible.
	imageID, err := a.storeUploadedImage(c)
	if err != nil {
		addFlash(c, "warning", "The uploaded image could not be processed.")
		return c.Redirect(http.StatusSeeOther, "/blog/create")
	}
	post.ImageID = imageID

	id, err := a.Store.CreatePost(post)
	if err != nil {
		return err
	}
	c.Logger().Infof("post %d created by %s", id, email)
	addFlash(c, "success", "The post has been saved.")
	return c.Redirect(http.StatusSeeOther, "/")
}

func (a *App) handlePostEditForm(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	post, err := a.Store.GetPost(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			addFlash(c, "danger", "Post not found.")
			return c.Redirect(http.StatusSeeOther, "/")
		}
		return err
	}
	return Render(c, pagePostForm(a.pageData(c), &post))
}

func (a *App) handlePostEdit(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	if err := c.Request().ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}

	update, err := postUpdateFromForm(c)
	if err != nil {
		addFlash(c, "warning", err.Error())
		return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/blog/edit/%d", id))
	}
	if err := a.Store.UpdatePost(id, update); err != nil {
		if errors.Is(err, ErrNotFound) {
			addFlash(c, "danger", "Post not found.")
			return c.Redirect(http.StatusSeeOther, "/")
		}
		return err
	}

	// A new image replaces the reference; the old blob is left in place.
	imageID, err := a.storeUploadedImage(c)
	if err != nil {
		addFlash(c, "warning", "The uploaded image could not be processed.")
		return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/blog/edit/%d", id))
	}
	if imageID != "" {
		if err := a.Store.SetPostImage(id, imageID); err != nil {
			return err
		}
	}
	addFlash(c, "success", "The post has been updated.")
	return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/blog/%d", id))
}

// handlePostDelete is idempotent; deleting an id that no longer exists
// still reports success.
func (a *App) handlePostDelete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	if err := a.Store.DeletePost(id); err != nil {
		return err
	}
	addFlash(c, "success", "The post has been deleted.")
	return c.Redirect(http.StatusSeeOther, "/")
}

func (a *App) handleMyPosts(c echo.Context) error {
	email, _ := currentEmail(c)
	posts, err := a.Store.ListByAuthor(email)
	if err != nil {
		return err
	}
	return Render(c, pageMyPosts(a.pageData(c), posts))
}

// handleImage serves a stored blob with its recorded content type.
func (a *App) handleImage(c echo.Context) error {
	blob, err := a.Blobs.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return err
	}
	return c.Blob(http.StatusOK, blob.ContentType, blob.Data)
}

// storeUploadedImage reads the optional "image" form file, normalizes it,
// and stores it in the blob store. Returns "" when no file was uploaded.
func (a *App) storeUploadedImage(c echo.Context) (string, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return "", nil // no image supplied
	}
	if file.Filename == "" {
		return "", nil
	}
	if file.Size > maxUploadSize {
		return "", fmt.Errorf("file too large")
	}
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	filename, data, err := processImage(src, file.Filename)
	if err != nil {
		return "", err
	}
	return a.Blobs.Put(c.Request().Context(), data, filename, imageContentType)
}

// postFromForm builds a new Post from the create form.
func postFromForm(c echo.Context) (Post, error) {
	title := strings.TrimSpace(c.FormValue("title"))
	if title == "" {
		return Post{}, fmt.Errorf("a title is required")
	}
	status := PostStatus(c.FormValue("status"))
	if !status.Valid() {
		status = StatusDraft
	}
	date := strings.TrimSpace(c.FormValue("date"))
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return Post{}, fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return Post{
		Title:       title,
		Content:     c.FormValue("content"),
		Status:      status,
		PublishDate: date,
		Tags:        FilterEmpty(strings.Split(c.FormValue("tags"), ",")),
	}, nil
}

// postUpdateFromForm collects only the fields present in the edit request.
func postUpdateFromForm(c echo.Context) (PostUpdate, error) {
	var u PostUpdate
	form, err := c.FormParams()
	if err != nil {
		return u, err
	}
	if form.Has("title") {
		title := strings.TrimSpace(form.Get("title"))
		if title == "" {
			return u, fmt.Errorf("a title is required")
		}
		u.Title = &title
	}
	if form.Has("content") {
		content := form.Get("content")
		u.Content = &content
	}
	if form.Has("status") {
		status := PostStatus(form.Get("status"))
		if !status.Valid() {
			return u, fmt.Errorf("unknown status %q", form.Get("status"))
		}
		u.Status = &status
	}
	if form.Has("date") {
		date := strings.TrimSpace(form.Get("date"))
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return u, fmt.Errorf("invalid date format, use YYYY-MM-DD")
		}
		u.PublishDate = &date
	}
	if form.Has("tags") {
		tags := FilterEmpty(strings.Split(form.Get("tags"), ","))
		u.Tags = &tags
	}
	return u, nil
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Store.ListPublished("")
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Store.ListPublished("")
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /profile\n\nSitemap: %s/sitemap.xml\n", a.Config.URL)
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, pageNotFound(a.Config))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, pageServerError(a.Config))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

func sessionValue(c echo.Context, key string) string {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return ""
	}
	v, _ := sess.Values[key].(string)
	return v
}

func setSessionValue(c echo.Context, key, value string) {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return
	}
	sess.Values[key] = value
	_ = sess.Save(c.Request(), c.Response())
}
