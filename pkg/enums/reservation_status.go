package enums

import "fmt"

// ReservationStatus tracks the lifecycle of a stock reservation.
type ReservationStatus string

const (
	ReservationStatusOpen      ReservationStatus = "open"
	ReservationStatusFulfilled ReservationStatus = "fulfilled"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

var validReservationStatuses = []ReservationStatus{
	ReservationStatusOpen,
	ReservationStatusFulfilled,
	ReservationStatusCancelled,
}

// String implements fmt.Stringer.
func (r ReservationStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ReservationStatus.
func (r ReservationStatus) IsValid() bool {
	for _, candidate := range validReservationStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (r ReservationStatus) IsTerminal() bool {
	return r == ReservationStatusFulfilled || r == ReservationStatusCancelled
}

// ParseReservationStatus converts raw input into a ReservationStatus.
func ParseReservationStatus(value string) (ReservationStatus, error) {
	for _, candidate := range validReservationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reservation status %q", value)
}
