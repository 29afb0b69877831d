package folio

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Theme returns the theme stored in the visitor's session, or "" when the
// visitor has not chosen one and the system preference applies.
func Theme(c echo.Context) string {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return ""
	}
	t, _ := sess.Values["theme"].(string)
	if t != ThemeLight && t != ThemeDark {
		return ""
	}
	return t
}

func setTheme(c echo.Context, theme string) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values["theme"] = theme
	return sess.Save(c.Request(), c.Response())
}

// handleTheme sets the theme from the "theme" form value, or toggles it when
// the value is empty. Scripted requests get JSON back; plain form posts are
// redirected to the page they came from.
func (a *App) handleTheme(c echo.Context) error {
	next := strings.ToLower(strings.TrimSpace(c.FormValue("theme")))
	switch next {
	case ThemeLight, ThemeDark:
	case "":
		next = ThemeDark
		if Theme(c) == ThemeDark {
			next = ThemeLight
		}
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "theme must be light or dark")
	}
	if err := setTheme(c, next); err != nil {
		return err
	}
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, map[string]string{"theme": next})
	}
	return c.Redirect(http.StatusSeeOther, localReferer(c))
}

func wantsJSON(c echo.Context) bool {
	r := c.Request()
	return r.Header.Get("X-Requested-With") == "XMLHttpRequest" ||
		strings.Contains(r.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

// localReferer returns the path of the Referer header when it points at this
// host, and "/" otherwise.
func localReferer(c echo.Context) string {
	ref, err := url.Parse(c.Request().Referer())
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != c.Request().Host) {
		return "/"
	}
	if !strings.HasPrefix(ref.Path, "/") || strings.HasPrefix(ref.Path, "//") {
		return "/"
	}
	return ref.RequestURI()
}
