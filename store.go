package inkpress

import (
	"database/sql"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Store wraps a SQLite database and persists users and blog posts.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL mode for concurrent read/write access, busy timeout so writers
	// wait instead of returning SQLITE_BUSY immediately. synchronous=NORMAL
	// is safe with WAL and avoids an fsync per transaction.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS users (
    email TEXT PRIMARY KEY,
    password_hash TEXT NOT NULL,
    is_confirmed INTEGER NOT NULL DEFAULT 0,
    first_name TEXT NOT NULL DEFAULT '',
    last_name TEXT NOT NULL DEFAULT '',
    bio TEXT NOT NULL DEFAULT '',
    avatar_id TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS posts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    author TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'draft',
    publish_date TEXT NOT NULL,
    tags TEXT NOT NULL DEFAULT ',,',
    image_id TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_posts_status_date ON posts (status, publish_date DESC);
CREATE INDEX IF NOT EXISTS idx_posts_author ON posts (author);

CREATE TABLE IF NOT EXISTS blobs (
    id TEXT PRIMARY KEY,
    filename TEXT NOT NULL,
    content_type TEXT NOT NULL,
    data BLOB NOT NULL,
    created_at TEXT NOT NULL
);
`)
	return err
}

// --- Users ---

// CreateUser inserts a new unconfirmed user. Returns ErrUserExists when the
// email is already registered.
func (s *Store) CreateUser(email, passwordHash string) error {
	_, err := s.db.Exec(`INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, passwordHash)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint") {
		return ErrUserExists
	}
	return err
}

// GetUser returns the user with the given email or ErrNotFound.
func (s *Store) GetUser(email string) (User, error) {
	var u User
	var confirmed int
	err := s.db.QueryRow(`SELECT email, password_hash, is_confirmed, first_name, last_name, bio, avatar_id FROM users WHERE email = ?`, email).
		Scan(&u.Email, &u.PasswordHash, &confirmed, &u.FirstName, &u.LastName, &u.Bio, &u.AvatarID)
	if err == sql.ErrNoRows {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	u.IsConfirmed = confirmed == 1
	return u, nil
}

// ConfirmUser flips is_confirmed in a single conditional update so the
// first-confirmation case is detected atomically. It reports whether this
// call performed the flip; false means the account was already confirmed.
func (s *Store) ConfirmUser(email string) (bool, error) {
	res, err := s.db.Exec(`UPDATE users SET is_confirmed = 1 WHERE email = ? AND is_confirmed = 0`, email)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	// No row changed: either already confirmed or unknown email.
	if _, err := s.GetUser(email); err != nil {
		return false, err
	}
	return false, nil
}

// UpdateProfile merges the supplied profile fields into the user record.
func (s *Store) UpdateProfile(email, firstName, lastName, bio string) error {
	res, err := s.db.Exec(`UPDATE users SET first_name = ?, last_name = ?, bio = ? WHERE email = ?`,
		firstName, lastName, bio, email)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// SetAvatar points the user at a new avatar blob.
func (s *Store) SetAvatar(email, blobID string) error {
	res, err := s.db.Exec(`UPDATE users SET avatar_id = ? WHERE email = ?`, blobID, email)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// --- Posts ---

const postColumns = `id, title, content, author, status, publish_date, tags, image_id, created_at, updated_at`

// CreatePost inserts a post and returns the generated id. Tags are
// normalized to lowercase.
func (s *Store) CreatePost(p Post) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO posts (title, content, author, status, publish_date, tags, image_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Title, p.Content, p.Author, string(p.Status), p.PublishDate, joinTags(p.Tags), p.ImageID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetPost returns a single post by id or ErrNotFound.
func (s *Store) GetPost(id int64) (Post, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return Post{}, ErrNotFound
	}
	return p, err
}

// UpdatePost applies the non-nil fields of u to the post and stamps
// updated_at. Returns ErrNotFound when the id does not exist.
func (s *Store) UpdatePost(id int64, u PostUpdate) error {
	set := []string{"updated_at = ?"}
	args := []any{time.Now().UTC().Format(time.RFC3339)}
	if u.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *u.Title)
	}
	if u.Content != nil {
		set = append(set, "content = ?")
		args = append(args, *u.Content)
	}
	if u.Status != nil {
		set = append(set, "status = ?")
		args = append(args, string(*u.Status))
	}
	if u.PublishDate != nil {
		set = append(set, "publish_date = ?")
		args = append(args, *u.PublishDate)
	}
	if u.Tags != nil {
		set = append(set, "tags = ?")
		args = append(args, joinTags(*u.Tags))
	}
	args = append(args, id)
	res, err := s.db.Exec(`UPDATE posts SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// SetPostImage replaces the post's image reference.
func (s *Store) SetPostImage(id int64, blobID string) error {
	res, err := s.db.Exec(`UPDATE posts SET image_id = ? WHERE id = ?`, blobID, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// DeletePost removes a post by id. Deleting a nonexistent id is not an
// error.
func (s *Store) DeletePost(id int64) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE id = ?`, id)
	return err
}

// ListPublished returns published posts ordered by publish date descending.
// If tag is non-empty, results are filtered to posts containing that tag.
func (s *Store) ListPublished(tag string) ([]Post, error) {
	if tag == "" {
		return s.listPosts(`SELECT `+postColumns+` FROM posts WHERE status = ? ORDER BY publish_date DESC, id DESC`, string(StatusPublished))
	}
	normalized := strings.ToLower(strings.TrimSpace(tag))
	return s.listPosts(`SELECT `+postColumns+` FROM posts WHERE status = ? AND instr(lower(tags), ',' || ? || ',') > 0 ORDER BY publish_date DESC, id DESC`,
		string(StatusPublished), normalized)
}

// ListByAuthor returns every post by the author, drafts included, ordered
// by publish date descending.
func (s *Store) ListByAuthor(author string) ([]Post, error) {
	return s.listPosts(`SELECT `+postColumns+` FROM posts WHERE author = ? ORDER BY publish_date DESC, id DESC`, author)
}

// ListTags returns a sorted, deduplicated slice of all tags from published
// posts.
func (s *Store) ListTags() ([]string, error) {
	rows, err := s.db.Query(`SELECT tags FROM posts WHERE status = ?`, string(StatusPublished))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var tags string
		if err := rows.Scan(&tags); err != nil {
			return nil, err
		}
		for _, t := range ParseTags(tags) {
			set[strings.ToLower(t)] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	var result []string
	for t := range set {
		result = append(result, t)
	}
	sort.Strings(result)
	return result, nil
}

func (s *Store) listPosts(query string, args ...any) ([]Post, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (Post, error) {
	var p Post
	var status, tags string
	var updated sql.NullString
	if err := row.Scan(&p.ID, &p.Title, &p.Content, &p.Author, &status, &p.PublishDate, &tags, &p.ImageID, &p.CreatedAt, &updated); err != nil {
		return Post{}, err
	}
	p.Status = PostStatus(status)
	p.Tags = ParseTags(tags)
	p.UpdatedAt = updated.String
	return p, nil
}

func affectedOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// joinTags stores tags as ",a,b," so a single instr() matches whole tags.
func joinTags(tags []string) string {
	normalized := make([]string, len(tags))
	for i, t := range tags {
		normalized[i] = strings.ToLower(strings.TrimSpace(t))
	}
	return "," + strings.Join(normalized, ",") + ","
}

// ParseTags splits a comma-delimited tag string (e.g. ",go,web,") into a slice.
func ParseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return nil
	}
	parts := strings.Split(tagString, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
