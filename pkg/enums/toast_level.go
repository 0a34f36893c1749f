package enums

import "fmt"

// ToastLevel is the severity of a user-facing notification.
type ToastLevel string

const (
	ToastLevelSuccess ToastLevel = "success"
	ToastLevelInfo    ToastLevel = "info"
	ToastLevelWarning ToastLevel = "warning"
	ToastLevelError   ToastLevel = "error"
)

var validToastLevels = []ToastLevel{
	ToastLevelSuccess,
	ToastLevelInfo,
	ToastLevelWarning,
	ToastLevelError,
}

// String implements fmt.Stringer.
func (t ToastLevel) String() string {
	return string(t)
}

// IsValid reports whether the value is known.
func (t ToastLevel) IsValid() bool {
	for _, candidate := range validToastLevels {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseToastLevel converts raw input into a ToastLevel.
func ParseToastLevel(value string) (ToastLevel, error) {
	for _, candidate := range validToastLevels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid toast level %q", value)
}
