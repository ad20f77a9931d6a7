package inkpress

import "time"

// SiteConfig holds all configuration for an inkpress site. Everything is
// supplied externally (environment or caller); nothing is hardcoded.
type SiteConfig struct {
	Name        string // Site name (default "Blog")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/blog.db")

	SecretKey    string // Required: signs confirmation tokens and sessions
	CookieSecure bool   // Set true for HTTPS

	TokenMaxAge time.Duration // Confirmation token validity (default 1h)

	Mail MailConfig
	Blob BlobConfig
}

// MailConfig configures the SMTP transport for confirmation emails.
type MailConfig struct {
	Host     string
	Port     int // default 587
	UseTLS   bool
	Username string
	Password string
	Sender   string // default From address
}

// BlobConfig selects and configures the image blob backend.
// Backend "sqlite" (default) stores blobs next to the posts; "s3" talks to
// any S3-compatible object store (minio included).
type BlobConfig struct {
	Backend string // "sqlite" or "s3"

	S3Region    string
	S3Bucket    string
	S3Endpoint  string // base endpoint, e.g. http://localhost:9000
	S3AccessKey string
	S3SecretKey string
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/blog.db"
	}
	if c.TokenMaxAge == 0 {
		c.TokenMaxAge = time.Hour
	}
	if c.Mail.Port == 0 {
		c.Mail.Port = 587
	}
	if c.Blob.Backend == "" {
		c.Blob.Backend = "sqlite"
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithMailer replaces the SMTP mailer, e.g. with a recorder in tests.
func WithMailer(m Mailer) Option {
	return func(a *App) {
		a.Mailer = m
	}
}

// WithBlobStore replaces the configured blob backend.
func WithBlobStore(b BlobStore) Option {
	return func(a *App) {
		a.Blobs = b
	}
}

// WithStaticDir sets the directory for static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}
