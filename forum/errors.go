package forum

import (
	"errors"
	"fmt"

	"github.com/openagora/forum/store"
)

// Error taxonomy surfaced to callers. Controllers map these onto HTTP
// statuses with errors.Is / errors.As; nothing in this package touches HTTP.
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("authentication required")
	ErrPermission      = errors.New("permission denied")
	ErrNotFound        = errors.New("not found")
	ErrStore           = errors.New("store failure")
)

// ModerationError carries a non-clean AutoMod verdict back to the caller.
// It wraps ErrValidation so generic handling still works, while callers that
// care can pull the full result out with errors.As.
type ModerationError struct {
	Result ModerationResult
}

func (e *ModerationError) Error() string {
	return fmt.Sprintf("content rejected by automod (%s): %s", e.Result.Status, e.Result.Reason)
}

func (e *ModerationError) Unwrap() error { return ErrValidation }

func validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// wrapStore converts store-level failures into the service taxonomy.
func wrapStore(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrStore, err)
}
