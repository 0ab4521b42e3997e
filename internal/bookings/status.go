package bookings

// Status is derived from the row: released bookings are deleted.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusPaid    Status = "PAID"
)

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Holds reports whether seats are still awaiting payment
func (s Status) Holds() bool {
	return s == StatusPending
}
