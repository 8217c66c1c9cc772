package pick

import "errors"

// Validation rejections. Their messages are shown to the acting user as-is.
var (
	ErrDraftNotActive    = errors.New("draft not active")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrPlayerUnavailable = errors.New("player unavailable")
)

// IsRejection reports whether err is an expected validation rejection rather than a fault.
func IsRejection(err error) bool {
	return errors.Is(err, ErrDraftNotActive) ||
		errors.Is(err, ErrNotYourTurn) ||
		errors.Is(err, ErrPlayerUnavailable)
}
