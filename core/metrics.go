package core

// Booking sources.
const (
	SourceManual = "manual"
	SourceAuto   = "auto"
)

// Metrics records the outcome of scheduling and allocation operations.
type Metrics interface {
	BookingCreated(source string)
	BookingRejected(code string)
	AllocationDone(op string, err error)
}
