package inkpress

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

func (a *App) handleProfileForm(c echo.Context) error {
	email, _ := currentEmail(c)
	user, err := a.Store.GetUser(email)
	if err != nil {
		return err
	}
	return Render(c, pageProfile(a.pageData(c), user))
}

// handleProfileUpdate merges the submitted fields into the user record.
// A new avatar replaces the old reference and removes the replaced blob.
func (a *App) handleProfileUpdate(c echo.Context) error {
	email, _ := currentEmail(c)
	user, err := a.Store.GetUser(email)
	if err != nil {
		return err
	}

	if err := a.Store.UpdateProfile(email,
		c.FormValue("first_name"),
		c.FormValue("last_name"),
		c.FormValue("bio"),
	); err != nil {
		return err
	}

	avatarID, err := a.storeUploadedImage(c)
	if err != nil {
		addFlash(c, "warning", "The uploaded avatar could not be processed.")
		return c.Redirect(http.StatusSeeOther, "/profile")
	}
	if avatarID != "" {
		if err := a.Store.SetAvatar(email, avatarID); err != nil {
			return err
		}
		if user.AvatarID != "" {
			if err := a.Blobs.Delete(c.Request().Context(), user.AvatarID); err != nil && !errors.Is(err, ErrNotFound) {
				// The new avatar is already in place; losing the cleanup
				// only leaks one blob.
				c.Logger().Errorf("delete old avatar %s: %v", user.AvatarID, err)
			}
		}
	}

	addFlash(c, "success", "Profile updated.")
	return c.Redirect(http.StatusSeeOther, "/profile")
}
