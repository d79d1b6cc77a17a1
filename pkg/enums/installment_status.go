package enums

import "fmt"

// InstallmentStatus tracks a single scheduled installment charge.
type InstallmentStatus string

const (
	InstallmentStatusScheduled InstallmentStatus = "scheduled"
	InstallmentStatusCharged   InstallmentStatus = "charged"
	InstallmentStatusFailed    InstallmentStatus = "failed"
	InstallmentStatusCanceled  InstallmentStatus = "canceled"
)

var validInstallmentStatuses = []InstallmentStatus{
	InstallmentStatusScheduled,
	InstallmentStatusCharged,
	InstallmentStatusFailed,
	InstallmentStatusCanceled,
}

// String implements fmt.Stringer.
func (i InstallmentStatus) String() string {
	return string(i)
}

// IsValid reports whether the value is a known InstallmentStatus.
func (i InstallmentStatus) IsValid() bool {
	for _, candidate := range validInstallmentStatuses {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseInstallmentStatus converts raw input into an InstallmentStatus.
func ParseInstallmentStatus(value string) (InstallmentStatus, error) {
	for _, candidate := range validInstallmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid installment status %q", value)
}
