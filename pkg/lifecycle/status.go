package lifecycle

// Status is the conversion lifecycle state. Exactly one value is active at a
// time and only the Controller changes it.
type Status int

const (
	Idle Status = iota
	Processing
	Success
	Error
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Processing:
		return "processing"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}
