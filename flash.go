package inkpress

import (
	"encoding/gob"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

// Flash is a one-shot, session-scoped notification shown on the next
// rendered page.
type Flash struct {
	Category string // "success", "warning", "danger"
	Message  string
}

func init() {
	// gorilla/sessions serializes flash values with gob.
	gob.Register(Flash{})
}

func addFlash(c echo.Context, category, message string) {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return
	}
	sess.AddFlash(Flash{Category: category, Message: message})
	_ = sess.Save(c.Request(), c.Response())
}

// takeFlashes drains pending flash messages. Must be called before the
// response body is written so the session cookie can still be updated.
func takeFlashes(c echo.Context) []Flash {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return nil
	}
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = sess.Save(c.Request(), c.Response())
	flashes := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			flashes = append(flashes, f)
		}
	}
	return flashes
}
