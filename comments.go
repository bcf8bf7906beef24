package blog

import (
	"net/http"
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
)

// Field limits for public form input.
const (
	maxNameLen    = 80
	maxEmailLen   = 254
	maxMessageLen = 4000
)

// CommentForm is the decoded comment submission.
type CommentForm struct {
	Slug    string `form:"slug"`
	Name    string `form:"name"`
	Email   string `form:"email"`
	Message string `form:"message"`
}

// Normalize trims every field.
func (f *CommentForm) Normalize() {
	f.Slug = strings.TrimSpace(f.Slug)
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Message = strings.TrimSpace(f.Message)
}

// Valid reports whether the normalized form can be stored.
func (f CommentForm) Valid() bool {
	if f.Slug == "" || f.Name == "" || f.Message == "" {
		return false
	}
	if utf8.RuneCountInString(f.Name) > maxNameLen || utf8.RuneCountInString(f.Message) > maxMessageLen {
		return false
	}
	return ValidEmail(f.Email)
}

// ValidEmail accepts a bare address of reasonable length.
func ValidEmail(s string) bool {
	if s == "" || len(s) > maxEmailLen {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func (a *App) handleCommentSubmit(c echo.Context) error {
	var form CommentForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "bad form")
	}
	form.Normalize()

	if !a.commentLimiter.Allow(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many comments. Try again later.")
	}
	if !form.Valid() {
		return c.Redirect(http.StatusSeeOther, detailsNotice(form.Slug, "comment", "invalid"))
	}
	if _, err := a.Store.SaveComment(Comment{
		Slug:    form.Slug,
		Name:    form.Name,
		Email:   form.Email,
		Message: form.Message,
	}); err != nil {
		return err
	}
	c.Logger().Infof("comment on %q held for moderation", form.Slug)
	return c.Redirect(http.StatusSeeOther, detailsNotice(form.Slug, "comment", "pending"))
}

func (a *App) handleSubscribe(c echo.Context) error {
	email := strings.TrimSpace(c.FormValue("email"))
	slug := strings.TrimSpace(c.FormValue("slug"))

	if !a.commentLimiter.Allow(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many requests. Try again later.")
	}
	if !ValidEmail(email) {
		return c.Redirect(http.StatusSeeOther, detailsNotice(slug, "newsletter", "invalid"))
	}
	if _, err := a.Store.Subscribe(email); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, detailsNotice(slug, "newsletter", "subscribed"))
}

// detailsNotice is the details page URL for slug carrying a flash notice.
func detailsNotice(slug, key, value string) string {
	q := url.Values{}
	if slug != "" {
		q.Set("slug", slug)
	}
	q.Set(key, value)
	return "/blog-details/?" + q.Encode()
}
