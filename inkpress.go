// Package inkpress is a small multi-user blog platform built with Go,
// Echo, and templ. Users register with email confirmation, log in, author
// markdown posts with optional images, edit a profile, and browse
// published posts.
package inkpress

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// App is the central inkpress application. It wires together the store,
// blob backend, token service, mailer, middleware, and routes.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Blobs  BlobStore
	Tokens *TokenService
	Mailer Mailer

	loginLimiter *LoginLimiter
	staticDir    string
}

// New creates a new inkpress App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start initializes the database, services, middleware, and routes, then
// starts the server.
func (a *App) Start() error {
	if err := a.bootstrap(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// bootstrap wires every dependency without binding the listen socket.
func (a *App) bootstrap() error {
	if a.Config.SecretKey == "" {
		return fmt.Errorf("inkpress: SecretKey is required")
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("inkpress: init store: %w", err)
	}
	a.Store = store

	if a.Blobs == nil {
		switch a.Config.Blob.Backend {
		case "s3":
			blobs, err := NewS3BlobStore(a.Config.Blob)
			if err != nil {
				return fmt.Errorf("inkpress: init blob store: %w", err)
			}
			a.Blobs = blobs
		default:
			a.Blobs = NewSQLiteBlobStore(store)
		}
	}

	a.Tokens = NewTokenService(a.Config.SecretKey)

	if a.Mailer == nil {
		a.Mailer = NewSMTPMailer(a.Config.Mail)
	}

	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	// Public routes
	e.GET("/", a.handleHome)
	e.POST("/", a.handleName)
	e.GET("/register", a.handleRegisterForm)
	e.POST("/register", a.handleRegister)
	e.GET("/confirm/:token", a.handleConfirm)
	e.GET("/login", a.handleLoginForm)
	e.POST("/login", a.handleLogin)
	e.GET("/unconfirmed", a.handleUnconfirmed)
	e.POST("/unconfirmed/resend", a.handleResendConfirmation)
	e.GET("/blog/:id", a.handlePostView)
	e.GET("/image/:id", a.handleImage)

	// Routes requiring an authenticated session
	e.GET("/logout", a.handleLogout, a.requireAuth)
	e.GET("/blog/create", a.handlePostCreateForm, a.requireAuth)
	e.POST("/blog/create", a.handlePostCreate, a.requireAuth)
	e.GET("/blog/edit/:id", a.handlePostEditForm, a.requireAuth)
	e.POST("/blog/edit/:id", a.handlePostEdit, a.requireAuth)
	e.POST("/blog/delete/:id", a.handlePostDelete, a.requireAuth)
	e.GET("/profile", a.handleProfileForm, a.requireAuth)
	e.POST("/profile", a.handleProfileUpdate, a.requireAuth)
	e.GET("/myposts", a.handleMyPosts, a.requireAuth)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
