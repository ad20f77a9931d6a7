// Command inkpress runs the blog platform server. All configuration comes
// from environment variables; a local .env file is honored in development.
package main

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"github.com/inkpress/inkpress"
)

func main() {
	_ = godotenv.Load()

	cfg := inkpress.SiteConfig{
		Name:         envOr("SITE_NAME", "Blog"),
		URL:          strings.TrimSuffix(envOr("SITE_URL", "http://localhost:3000"), "/"),
		Description:  os.Getenv("SITE_DESCRIPTION"),
		Addr:         envOr("ADDR", ":3000"),
		DatabasePath: envOr("DATABASE_PATH", "data/blog.db"),
		SecretKey:    mustEnv("SECRET_KEY"),
		CookieSecure: envBool("COOKIE_SECURE"),
		Mail: inkpress.MailConfig{
			Host:     mustEnv("MAIL_SERVER"),
			Port:     envInt("MAIL_PORT", 587),
			UseTLS:   envBool("MAIL_USE_TLS"),
			Username: os.Getenv("MAIL_USERNAME"),
			Password: os.Getenv("MAIL_PASSWORD"),
			Sender:   mustEnv("MAIL_DEFAULT_SENDER"),
		},
		Blob: inkpress.BlobConfig{
			Backend:     envOr("BLOB_BACKEND", "sqlite"),
			S3Region:    os.Getenv("S3_REGION"),
			S3Bucket:    os.Getenv("S3_BUCKET"),
			S3Endpoint:  os.Getenv("S3_ENDPOINT"),
			S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
			S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		},
	}

	app := inkpress.New(cfg)
	defer app.Close()

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("required environment variable %s is not set", key)
	}
	return v
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string) bool {
	return strings.EqualFold(os.Getenv(key), "true")
}
