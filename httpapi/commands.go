package httpapi

// CommandKind selects which operation an inbound HTTP request requested.
type CommandKind int

const (
	CmdArm CommandKind = iota
	CmdDisarm
)

// Command is one request the HTTP control surface wants applied to the
// world. httpapi never touches ecs.World directly — the scheduler's
// PreUpdate stage drains Commands() and performs the ecs.Insert itself, on
// the one goroutine that's allowed to (spec.md §5).
type Command struct {
	Kind CommandKind
}

// Commands returns the channel a PreUpdate stage should drain every tick.
func (s *Server) Commands() <-chan Command { return s.cmds }

// RequestArm queues an arm request, for any caller that isn't itself an
// HTTP handler (terminal/'s "arm" subcommand, in particular).
func (s *Server) RequestArm() error { return s.enqueue(Command{Kind: CmdArm}) }

// RequestDisarm queues a disarm request.
func (s *Server) RequestDisarm() error { return s.enqueue(Command{Kind: CmdDisarm}) }

func (s *Server) enqueue(cmd Command) error {
	select {
	case s.cmds <- cmd:
		return nil
	default:
		return ErrCommandQueueFull
	}
}
