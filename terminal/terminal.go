// Package terminal is the interactive debug console spec.md §1 keeps as a
// development-time interface: a line-oriented TCP server a developer can
// attach to with `nc`/`telnet` to inspect and poke the running process,
// with styled output in place of the teacher's plain fmt.Println lines.
//
// Grounded on the teacher's terminal package: one goroutine accepting
// connections, one goroutine per connection running a read-eval-print
// loop over a bufio.Scanner, shut down on ctx.Done. Command dispatch is
// rebuilt on spf13/cobra (SPEC_FULL.md F.1's CLI stack) instead of the
// teacher's hand-rolled CommandRegistry, and output goes through
// charmbracelet/lipgloss so armed/disarmed and peer state are visually
// distinct over a raw TCP pipe.
package terminal

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"

	"rovmesh/httpapi"
	"rovmesh/logging"
)

// Console owns the TCP listener and every connected debug session. It
// reads and commands through httpapi.Server (Snapshot/RequestArm/
// RequestDisarm) rather than touching ecs.World itself, so terminal never
// needs its own path into the single-writer world (spec.md §5).
type Console struct {
	addr string
	api  *httpapi.Server
}

// New builds a Console that will listen on addr, querying/commanding api.
func New(addr string, api *httpapi.Server) *Console {
	return &Console{addr: addr, api: api}
}

const prompt = "> "

// Start runs the console's accept loop until ctx is cancelled, mirroring
// the teacher's terminal.Start shutdown shape.
func (c *Console) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", c.addr)
	if err != nil {
		return fmt.Errorf("terminal: listen: %w", err)
	}

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	logging.DebugPrintWithPackage("terminal", "listening on %s", c.addr)

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				logging.DebugPrintWithPackage("terminal", "shut down")
				return nil
			default:
				logging.Warn("terminal: accept: %v", err)
				continue
			}
		}
		go c.handle(ctx, conn)
	}
}

func (c *Console) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	logging.DebugPrintWithPackage("terminal", "session from %s", conn.RemoteAddr())

	styles := newStyleSet(conn)

	fmt.Fprint(conn, styles.banner.Render("rovmesh debug console")+"\n")
	fmt.Fprint(conn, "type 'help' for available commands\n"+prompt)

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			fmt.Fprint(conn, "\nsession ended\n")
			return
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Fprint(conn, prompt)
			continue
		}
		if line == "exit" || line == "quit" {
			fmt.Fprint(conn, "bye\n")
			return
		}

		out, err := c.dispatch(styles, strings.Fields(line))
		if err != nil {
			fmt.Fprint(conn, styles.errorLine.Render("error: "+err.Error())+"\n")
		} else {
			fmt.Fprint(conn, out)
		}
		fmt.Fprint(conn, prompt)
	}

	if err := scanner.Err(); err != nil {
		logging.DebugPrintWithPackage("terminal", "read error: %v", err)
	}
}
