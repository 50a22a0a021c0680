package events

import "github.com/google/uuid"

// LogoutEvent signals that the session was terminated.
type LogoutEvent struct{}

// WishlistEvent signals a local wishlist membership change.
type WishlistEvent struct {
	ProductID int64
	// Added is true when the product entered the set, false when it left.
	Added bool
}

// NoticeLevel classifies a transient user-facing notice.
type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeWarn  NoticeLevel = "warn"
	NoticeError NoticeLevel = "error"
)

// Notice is a transient user-facing message (the toast analogue).
type Notice struct {
	ID      string
	Level   NoticeLevel
	Message string
}

// NewNotice creates a Notice with a fresh correlation id.
func NewNotice(level NoticeLevel, message string) Notice {
	return Notice{
		ID:      uuid.NewString(),
		Level:   level,
		Message: message,
	}
}

// The application's topics.
var (
	// LoggedOut fires after a logout has cleared session state.
	LoggedOut = NewTopic[LogoutEvent]("auth.logged_out")

	// WishlistChanged fires after the local wishlist mirror mutates.
	WishlistChanged = NewTopic[WishlistEvent]("wishlist.changed")

	// NoticePosted fires for transient user-facing notices.
	NoticePosted = NewTopic[Notice]("ui.notice")
)
