package inkpress

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/inkpress/inkpress/markdown"
)

// Pages are built as templ components writing plain HTML, the same way
// the markdown package produces its output.

func page(cfg SiteConfig, title, userEmail string, flashes []Flash, body func(b *strings.Builder)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
		b.WriteString("<meta charset=\"utf-8\">\n<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
		fmt.Fprintf(&b, "<title>%s — %s</title>\n", esc(title), esc(cfg.Name))
		b.WriteString("<link rel=\"stylesheet\" href=\"/public/style.css\">\n</head>\n<body>\n")

		b.WriteString("<nav class=\"nav\"><a class=\"brand\" href=\"/\">")
		b.WriteString(esc(cfg.Name))
		b.WriteString("</a><span class=\"links\">")
		if userEmail != "" {
			fmt.Fprintf(&b, "<a href=\"/blog/create\">New post</a> <a href=\"/myposts\">My posts</a> <a href=\"/profile\">%s</a> <a href=\"/logout\">Log out</a>", esc(userEmail))
		} else {
			b.WriteString("<a href=\"/login\">Log in</a> <a href=\"/register\">Register</a>")
		}
		b.WriteString("</span></nav>\n")

		for _, f := range flashes {
			fmt.Fprintf(&b, "<div class=\"flash flash-%s\">%s</div>\n", esc(f.Category), esc(f.Message))
		}

		b.WriteString("<main>\n")
		body(&b)
		b.WriteString("</main>\n</body>\n</html>\n")

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func esc(s string) string {
	return html.EscapeString(s)
}

func csrfField(b *strings.Builder, token string) {
	fmt.Fprintf(b, "<input type=\"hidden\" name=\"_csrf\" value=\"%s\">", esc(token))
}

func postCard(b *strings.Builder, p Post) {
	b.WriteString("<article class=\"post-card\">")
	fmt.Fprintf(b, "<h2><a href=\"/blog/%d\">%s</a></h2>", p.ID, esc(p.Title))
	fmt.Fprintf(b, "<p class=\"meta\">%s · %s", esc(p.PublishDate), esc(p.Author))
	if p.Status == StatusDraft {
		b.WriteString(" · <em>draft</em>")
	}
	b.WriteString("</p>")
	if len(p.Tags) > 0 {
		b.WriteString("<p class=\"tags\">")
		for _, t := range p.Tags {
			fmt.Fprintf(b, "<a class=\"tag\" href=\"/?tag=%s\">%s</a> ", esc(t), esc(t))
		}
		b.WriteString("</p>")
	}
	b.WriteString("</article>\n")
}

func pageHome(d pageData, name string, posts []Post, activeTag string, tags []string) templ.Component {
	return page(d.Cfg, "Home", d.UserEmail, d.Flashes, func(b *strings.Builder) {
		if name != "" {
			fmt.Fprintf(b, "<h1>Hello, %s!</h1>\n", esc(name))
		} else {
			b.WriteString("<h1>Hello, stranger!</h1>\n")
		}
		b.WriteString("<form method=\"post\" action=\"/\" class=\"name-form\">")
		csrfField(b, d.Csrf)
		fmt.Fprintf(b, "<label>What is your name? <input type=\"text\" name=\"name\" value=\"%s\"></label>", esc(name))
		b.WriteString("<button type=\"submit\">Submit</button></form>\n")

		if len(tags) > 0 {
			b.WriteString("<p class=\"tags\">")
			for _, t := range tags {
				class := "tag"
				if t == activeTag {
					class = "tag active"
				}
				fmt.Fprintf(b, "<a class=\"%s\" href=\"/?tag=%s\">%s</a> ", class, esc(t), esc(t))
			}
			b.WriteString("</p>\n")
		}

		if len(posts) == 0 {
			b.WriteString("<p>No posts yet.</p>\n")
			return
		}
		for _, p := range posts {
			postCard(b, p)
		}
	})
}

func pagePost(d pageData, p Post) templ.Component {
	return page(d.Cfg, p.Title, d.UserEmail, d.Flashes, func(b *strings.Builder) {
		fmt.Fprintf(b, "<article class=\"post\">\n<h1>%s</h1>\n", esc(p.Title))
		fmt.Fprintf(b, "<p class=\"meta\">%s · %s</p>\n", esc(p.PublishDate), esc(p.Author))
		if p.ImageID != "" {
			fmt.Fprintf(b, "<img class=\"post-image\" src=\"/image/%s\" alt=\"%s\">\n", esc(p.ImageID), esc(p.Title))
		}
		var md strings.Builder
		markdown.Render(&md, p.Content)
		b.WriteString(md.String())
		if len(p.Tags) > 0 {
			b.WriteString("<p class=\"tags\">")
			for _, t := range p.Tags {
				fmt.Fprintf(b, "<a class=\"tag\" href=\"/?tag=%s\">%s</a> ", esc(t), esc(t))
			}
			b.WriteString("</p>")
		}
		b.WriteString("</article>\n")
		if d.UserEmail != "" {
			fmt.Fprintf(b, "<p><a href=\"/blog/edit/%d\">Edit</a></p>\n", p.ID)
			fmt.Fprintf(b, "<form method=\"post\" action=\"/blog/delete/%d\" class=\"inline\">", p.ID)
			csrfField(b, d.Csrf)
			b.WriteString("<button type=\"submit\">Delete</button></form>\n")
		}
	})
}

func pagePostForm(d pageData, p *Post) templ.Component {
	title := "New post"
	action := "/blog/create"
	var post Post
	if p != nil {
		title = "Edit post"
		action = fmt.Sprintf("/blog/edit/%d", p.ID)
		post = *p
	}
	return page(d.Cfg, title, d.UserEmail, d.Flashes, func(b *strings.Builder) {
		fmt.Fprintf(b, "<h1>%s</h1>\n", esc(title))
		fmt.Fprintf(b, "<form method=\"post\" action=\"%s\" enctype=\"multipart/form-data\">\n", action)
		csrfField(b, d.Csrf)
		fmt.Fprintf(b, "<label>Title <input type=\"text\" name=\"title\" value=\"%s\" required></label>\n", esc(post.Title))
		fmt.Fprintf(b, "<label>Content <textarea name=\"content\" rows=\"14\">%s</textarea></label>\n", esc(post.Content))
		fmt.Fprintf(b, "<label>Date <input type=\"date\" name=\"date\" value=\"%s\"></label>\n", esc(post.PublishDate))
		fmt.Fprintf(b, "<label>Tags <input type=\"text\" name=\"tags\" value=\"%s\"></label>\n", esc(strings.Join(post.Tags, ", ")))
		b.WriteString("<label>Status <select name=\"status\">")
		for _, s := range []PostStatus{StatusDraft, StatusPublished} {
			selected := ""
			if s == post.Status {
				selected = " selected"
			}
			fmt.Fprintf(b, "<option value=\"%s\"%s>%s</option>", s, selected, s)
		}
		b.WriteString("</select></label>\n")
		b.WriteString("<label>Image <input type=\"file\" name=\"image\" accept=\"image/*\"></label>\n")
		if post.ImageID != "" {
			fmt.Fprintf(b, "<img class=\"preview\" src=\"/image/%s\" alt=\"current image\">\n", esc(post.ImageID))
		}
		b.WriteString("<button type=\"submit\">Save</button>\n</form>\n")
	})
}

func pageMyPosts(d pageData, posts []Post) templ.Component {
	return page(d.Cfg, "My posts", d.UserEmail, d.Flashes, func(b *strings.Builder) {
		b.WriteString("<h1>My posts</h1>\n")
		if len(posts) == 0 {
			b.WriteString("<p>You have not written anything yet. <a href=\"/blog/create\">Start now.</a></p>\n")
			return
		}
		for _, p := range posts {
			postCard(b, p)
		}
	})
}

func pageRegister(d pageData) templ.Component {
	return page(d.Cfg, "Register", d.UserEmail, d.Flashes, func(b *strings.Builder) {
		b.WriteString("<h1>Register</h1>\n<form method=\"post\" action=\"/register\">\n")
		csrfField(b, d.Csrf)
		b.WriteString("<label>Email <input type=\"email\" name=\"email\" required></label>\n")
		b.WriteString("<label>Password <input type=\"password\" name=\"password\" required></label>\n")
		b.WriteString("<button type=\"submit\">Register</button>\n</form>\n")
		b.WriteString("<p>Already have an account? <a href=\"/login\">Log in.</a></p>\n")
	})
}

func pageLogin(d pageData, next string) templ.Component {
	return page(d.Cfg, "Log in", d.UserEmail, d.Flashes, func(b *strings.Builder) {
		b.WriteString("<h1>Log in</h1>\n<form method=\"post\" action=\"/login\">\n")
		csrfField(b, d.Csrf)
		if next != "" {
			fmt.Fprintf(b, "<input type=\"hidden\" name=\"next\" value=\"%s\">\n", esc(next))
		}
		b.WriteString("<label>Email <input type=\"email\" name=\"email\" required></label>\n")
		b.WriteString("<label>Password <input type=\"password\" name=\"password\" required></label>\n")
		b.WriteString("<label><input type=\"checkbox\" name=\"remember\" value=\"1\"> Keep me logged in</label>\n")
		b.WriteString("<button type=\"submit\">Log in</button>\n</form>\n")
		b.WriteString("<p>New here? <a href=\"/register\">Register.</a></p>\n")
	})
}

func pageUnconfirmed(d pageData) templ.Component {
	return page(d.Cfg, "Confirm your email", d.UserEmail, d.Flashes, func(b *strings.Builder) {
		b.WriteString("<h1>Almost there</h1>\n")
		b.WriteString("<p>Your email address has not been confirmed yet. Follow the link in the confirmation email, or request a new one below.</p>\n")
		b.WriteString("<form method=\"post\" action=\"/unconfirmed/resend\">\n")
		csrfField(b, d.Csrf)
		b.WriteString("<label>Email <input type=\"email\" name=\"email\" required></label>\n")
		b.WriteString("<button type=\"submit\">Resend confirmation</button>\n</form>\n")
	})
}

func pageProfile(d pageData, u User) templ.Component {
	return page(d.Cfg, "Profile", d.UserEmail, d.Flashes, func(b *strings.Builder) {
		b.WriteString("<h1>Profile</h1>\n")
		if u.AvatarID != "" {
			fmt.Fprintf(b, "<img class=\"avatar\" src=\"/image/%s\" alt=\"avatar\">\n", esc(u.AvatarID))
		}
		b.WriteString("<form method=\"post\" action=\"/profile\" enctype=\"multipart/form-data\">\n")
		csrfField(b, d.Csrf)
		fmt.Fprintf(b, "<label>First name <input type=\"text\" name=\"first_name\" value=\"%s\"></label>\n", esc(u.FirstName))
		fmt.Fprintf(b, "<label>Last name <input type=\"text\" name=\"last_name\" value=\"%s\"></label>\n", esc(u.LastName))
		fmt.Fprintf(b, "<label>Bio <textarea name=\"bio\" rows=\"6\">%s</textarea></label>\n", esc(u.Bio))
		b.WriteString("<label>Avatar <input type=\"file\" name=\"image\" accept=\"image/*\"></label>\n")
		b.WriteString("<button type=\"submit\">Save</button>\n</form>\n")
	})
}

func pageNotFound(cfg SiteConfig) templ.Component {
	return page(cfg, "Not found", "", nil, func(b *strings.Builder) {
		b.WriteString("<h1>404</h1>\n<p>That page does not exist. <a href=\"/\">Back home.</a></p>\n")
	})
}

func pageServerError(cfg SiteConfig) templ.Component {
	return page(cfg, "Something went wrong", "", nil, func(b *strings.Builder) {
		b.WriteString("<h1>500</h1>\n<p>Something went wrong on our side. <a href=\"/\">Back home.</a></p>\n")
	})
}

// confirmationEmailHTML renders the confirmation email body.
func confirmationEmailHTML(cfg SiteConfig, email, confirmURL string, year int) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<body style=\"font-family: sans-serif;\">\n")
	fmt.Fprintf(&b, "<h1>Welcome to %s</h1>\n", esc(cfg.Name))
	fmt.Fprintf(&b, "<p>Hi %s,</p>\n", esc(email))
	b.WriteString("<p>Please confirm your email address to activate your account. The link is valid for one hour.</p>\n")
	fmt.Fprintf(&b, "<p><a href=\"%s\">Confirm my email address</a></p>\n", esc(confirmURL))
	fmt.Fprintf(&b, "<p>If the button does not work, copy this address into your browser:<br>%s</p>\n", esc(confirmURL))
	fmt.Fprintf(&b, "<p style=\"color:#888\">&copy; %d %s</p>\n", year, esc(cfg.Name))
	b.WriteString("</body>\n</html>\n")
	return b.String()
}
