package inkpress

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// RegisterUser creates an unconfirmed account and triggers the
// confirmation email. A failed send is surfaced as ErrMailDelivery but the
// user record is kept, so the confirmation can be retried by logging in.
func (a *App) RegisterUser(email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := a.Store.CreateUser(email, string(hash)); err != nil {
		return err
	}
	return a.SendConfirmation(email)
}

// SendConfirmation issues a fresh token and mails the confirmation link.
func (a *App) SendConfirmation(email string) error {
	token, err := a.Tokens.Issue(email)
	if err != nil {
		return err
	}
	confirmURL := BuildURL(a.Config.URL, "confirm", token)
	body := confirmationEmailHTML(a.Config, email, confirmURL, time.Now().Year())
	if err := a.Mailer.Send(email, "Please confirm your email address", body); err != nil {
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}
	return nil
}

// ConfirmEmail verifies the token and flips the account's confirmation
// flag. first is false when the account was already confirmed; that is an
// informational outcome, not an error.
func (a *App) ConfirmEmail(token string) (first bool, err error) {
	email, err := a.Tokens.Verify(token, a.Config.TokenMaxAge)
	if err != nil {
		return false, err
	}
	return a.Store.ConfirmUser(email)
}

// Authenticate checks the credentials and the confirmation state.
// An unconfirmed account with a correct password fails with ErrUnconfirmed,
// never ErrInvalidCredentials. bcrypt's comparison is constant-time.
func (a *App) Authenticate(email, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := a.Store.GetUser(email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	if !user.IsConfirmed {
		return User{}, ErrUnconfirmed
	}
	return user, nil
}

// --- Handlers ---

func (a *App) handleRegisterForm(c echo.Context) error {
	return Render(c, pageRegister(a.pageData(c)))
}

func (a *App) handleRegister(c echo.Context) error {
	email := c.FormValue("email")
	password := c.FormValue("password")

	err := a.RegisterUser(email, password)
	switch {
	case err == nil:
		addFlash(c, "success", "Registration successful. Check your inbox for a confirmation link.")
		return c.Redirect(http.StatusSeeOther, "/login")
	case errors.Is(err, ErrUserExists):
		addFlash(c, "danger", "A user with that email already exists.")
		return c.Redirect(http.StatusSeeOther, "/register")
	case errors.Is(err, ErrInvalidCredentials):
		addFlash(c, "warning", "Email and password are required.")
		return c.Redirect(http.StatusSeeOther, "/register")
	case errors.Is(err, ErrMailDelivery):
		// Account exists; only the email failed. Do not leak transport
		// detail to the user.
		c.Logger().Errorf("confirmation mail to %s: %v", email, err)
		addFlash(c, "warning", "Account created, but the confirmation email could not be sent. Try logging in later to resend it.")
		return c.Redirect(http.StatusSeeOther, "/login")
	default:
		return err
	}
}

func (a *App) handleConfirm(c echo.Context) error {
	first, err := a.ConfirmEmail(c.Param("token"))
	if err != nil {
		if errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrNotFound) {
			addFlash(c, "danger", "The confirmation link is invalid or has expired.")
			return c.Redirect(http.StatusSeeOther, "/unconfirmed")
		}
		return err
	}
	if first {
		addFlash(c, "success", "Your account is confirmed. Thank you! Please log in.")
	} else {
		addFlash(c, "success", "Your account was already confirmed. Please log in.")
	}
	return c.Redirect(http.StatusSeeOther, "/login")
}

func (a *App) handleLoginForm(c echo.Context) error {
	next := c.QueryParam("next")
	if !safeNext(next) {
		next = ""
	}
	return Render(c, pageLogin(a.pageData(c), next))
}

func (a *App) handleLogin(c echo.Context) error {
	if !a.loginLimiter.Check(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	email := c.FormValue("email")
	password := c.FormValue("password")
	remember := c.FormValue("remember") != ""

	user, err := a.Authenticate(email, password)
	switch {
	case err == nil:
		// ok
	case errors.Is(err, ErrUnconfirmed):
		addFlash(c, "warning", "Please confirm your email address before logging in.")
		return c.Redirect(http.StatusSeeOther, "/unconfirmed")
	case errors.Is(err, ErrInvalidCredentials):
		a.loginLimiter.Record(c.RealIP())
		addFlash(c, "warning", "Invalid email or password.")
		return c.Redirect(http.StatusSeeOther, "/login")
	default:
		return err
	}

	if err := setUserSession(c, user.Email, remember); err != nil {
		return err
	}
	addFlash(c, "success", "You are logged in.")
	next := c.FormValue("next")
	if !safeNext(next) {
		next = "/"
	}
	return c.Redirect(http.StatusSeeOther, next)
}

func (a *App) handleLogout(c echo.Context) error {
	if err := clearUserSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// handleUnconfirmed is the neutral landing page for token failures and
// unconfirmed logins. It offers to resend the confirmation email.
func (a *App) handleUnconfirmed(c echo.Context) error {
	return Render(c, pageUnconfirmed(a.pageData(c)))
}

// handleResendConfirmation re-issues the confirmation email for an
// existing unconfirmed account. The response is identical whether or not
// the account exists.
func (a *App) handleResendConfirmation(c echo.Context) error {
	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	if user, err := a.Store.GetUser(email); err == nil && !user.IsConfirmed {
		if err := a.SendConfirmation(email); err != nil {
			c.Logger().Errorf("resend confirmation to %s: %v", email, err)
		}
	}
	addFlash(c, "success", "If that address has an unconfirmed account, a new link is on its way.")
	return c.Redirect(http.StatusSeeOther, "/login")
}
