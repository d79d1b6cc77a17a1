package enums

import "fmt"

// WaitlistStatus tracks a waitlist entry for a full program.
type WaitlistStatus string

const (
	WaitlistStatusWaiting  WaitlistStatus = "waiting"
	WaitlistStatusSelected WaitlistStatus = "selected"
	WaitlistStatusExpired  WaitlistStatus = "expired"
	WaitlistStatusRemoved  WaitlistStatus = "removed"
)

var validWaitlistStatuses = []WaitlistStatus{
	WaitlistStatusWaiting,
	WaitlistStatusSelected,
	WaitlistStatusExpired,
	WaitlistStatusRemoved,
}

// String implements fmt.Stringer.
func (w WaitlistStatus) String() string {
	return string(w)
}

// IsValid reports whether the value is a known WaitlistStatus.
func (w WaitlistStatus) IsValid() bool {
	for _, candidate := range validWaitlistStatuses {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseWaitlistStatus converts raw input into a WaitlistStatus.
func ParseWaitlistStatus(value string) (WaitlistStatus, error) {
	for _, candidate := range validWaitlistStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid waitlist status %q", value)
}
