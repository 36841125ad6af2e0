package handler

import (
	"encoding/gob"
	"fmt"
	"net/http"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/rs/xid"

	"github.com/medirec/clinic-ui/model"
)

func init() {
	// flash messages travel inside the gob-encoded session cookie
	gob.Register(model.FlashMessage{})
}

// ValidSession middleware gates protected pages. Requests without an
// authenticated session are redirected to the login page.
func ValidSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !isValidSession(c) {
			setFlash(c, "warning", "Please login first!")
			return c.Redirect(http.StatusFound, "/login")
		}
		return next(c)
	}
}

func isValidSession(c echo.Context) bool {
	sess, _ := session.Get("session", c)
	cookie, err := c.Cookie("session_token")
	if err != nil || sess.Values["session_token"] != cookie.Value {
		return false
	}
	if _, ok := sess.Values["user_id"].(int64); !ok {
		return false
	}
	return true
}

// setSessionUser establishes a session for the given user. A fresh random
// token is stored both in the session and in a separate cookie so that a
// stale cookie from a previous login cannot be replayed.
func setSessionUser(c echo.Context, user model.User) error {
	sess, _ := session.Get("session", c)
	tokenUID := xid.New().String()
	sess.Values["user_id"] = user.ID
	sess.Values["username"] = user.Username
	sess.Values["session_token"] = tokenUID
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return err
	}

	cookie := new(http.Cookie)
	cookie.Name = "session_token"
	cookie.Value = tokenUID
	cookie.Path = "/"
	c.SetCookie(cookie)
	return nil
}

// currentUser to get username of logged in user
func currentUser(c echo.Context) string {
	sess, _ := session.Get("session", c)
	username, ok := sess.Values["username"].(string)
	if !ok {
		return ""
	}
	return username
}

// currentUserID to get id of logged in user
func currentUserID(c echo.Context) int64 {
	sess, _ := session.Get("session", c)
	id, ok := sess.Values["user_id"].(int64)
	if !ok {
		return 0
	}
	return id
}

// clearSession to remove current session. Safe to call without an active
// session.
func clearSession(c echo.Context) {
	sess, _ := session.Get("session", c)
	delete(sess.Values, "user_id")
	sess.Values["username"] = ""
	sess.Values["session_token"] = ""
	sess.Save(c.Request(), c.Response())

	cookie := new(http.Cookie)
	cookie.Name = "session_token"
	cookie.Value = ""
	cookie.Path = "/"
	cookie.MaxAge = -1
	c.SetCookie(cookie)
}

// setFlash queues a one-time notice for the next rendered page
func setFlash(c echo.Context, category string, message string) {
	sess, _ := session.Get("session", c)
	sess.AddFlash(model.FlashMessage{Category: category, Message: message})
	sess.Save(c.Request(), c.Response())
}

// getFlashes pops all queued notices. Reading flashes mutates the session,
// so it must be saved again before the response is written.
func getFlashes(c echo.Context) []model.FlashMessage {
	sess, _ := session.Get("session", c)
	flashes := sess.Flashes()
	if len(flashes) > 0 {
		sess.Save(c.Request(), c.Response())
	}

	messages := make([]model.FlashMessage, 0, len(flashes))
	for _, f := range flashes {
		switch msg := f.(type) {
		case model.FlashMessage:
			messages = append(messages, msg)
		default:
			messages = append(messages, model.FlashMessage{Category: "info", Message: fmt.Sprintf("%v", f)})
		}
	}
	return messages
}

// baseData assembles the template data shared by every page
func baseData(c echo.Context, active string) model.BaseData {
	return model.BaseData{
		Active:      active,
		CurrentUser: currentUser(c),
		Flashes:     getFlashes(c),
	}
}
