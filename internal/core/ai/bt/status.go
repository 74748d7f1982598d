package bt

// Status is the result of ticking a node. The zero value is Failure, which
// is also the state of a node that has never run.
type Status int

const (
	Failure Status = iota
	Success
	Running
)

func (s Status) String() string {
	switch s {
	case Failure:
		return "failure"
	case Success:
		return "success"
	case Running:
		return "running"
	default:
		return "unknown"
	}
}
