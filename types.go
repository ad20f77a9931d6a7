package inkpress

// PostStatus gates visibility of a post on the public listing.
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
)

// Valid reports whether s is one of the known statuses.
func (s PostStatus) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// User is an account record. Email is the sole identity; there is no
// surrogate key.
type User struct {
	Email        string
	PasswordHash string
	IsConfirmed  bool
	FirstName    string
	LastName     string
	Bio          string
	AvatarID     string // blob reference, empty when no avatar is set
}

// DisplayName returns the user's name for greetings, falling back to the
// email address when the profile is empty.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Email
	}
}

// Post is the core content type stored in SQLite and rendered by views.
type Post struct {
	ID          int64
	Title       string
	Content     string // raw markdown, converted only at render time
	Author      string // user email
	Status      PostStatus
	PublishDate string // YYYY-MM-DD
	Tags        []string
	ImageID     string // blob reference, empty when no image is attached
	CreatedAt   string // RFC 3339
	UpdatedAt   string // RFC 3339, empty until the first edit
}

// Published reports whether the post is visible on the public listing.
func (p Post) Published() bool {
	return p.Status == StatusPublished
}

// PostUpdate describes a partial edit. Nil fields are left untouched.
type PostUpdate struct {
	Title       *string
	Content     *string
	Status      *PostStatus
	PublishDate *string
	Tags        *[]string
}
