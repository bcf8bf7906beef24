package blog

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	c.Logger().Warnf("failed admin login from %s", ip)
	return Render(c, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleAdminApprove(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := a.Store.ApproveComment(c.Param("id")); err != nil {
		if IsNotFound(err) {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	return a.renderAdminDashboard(c, "approved")
}

func (a *App) handleAdminDeleteComment(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := a.Store.DeleteComment(c.Param("id")); err != nil {
		if IsNotFound(err) {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	return a.renderAdminDashboard(c, "deleted")
}

func (a *App) handleAdminFlush(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.Cache.Invalidate()
	c.Logger().Infof("article cache flushed")
	return a.renderAdminDashboard(c, "cache flushed")
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	pending, err := a.Store.ListPendingComments()
	if err != nil {
		return err
	}
	subs, err := a.Store.CountSubscribers()
	if err != nil {
		return err
	}
	page := AdminPage{
		Pending:     pending,
		Subscribers: subs,
		Message:     msg,
		CSRF:        CsrfToken(c),
		CMSURL:      a.Config.CMS.BaseURL,
	}
	if a.analyticsStore != nil {
		top, err := a.analyticsStore.TopArticles(time.Now().AddDate(0, 0, -30), 10)
		if err != nil {
			c.Logger().Errorf("top articles: %v", err)
		}
		page.TopArticles = top
	}
	return Render(c, a.Views.AdminDashboard(page))
}
