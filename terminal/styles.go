package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"rovmesh/httpapi"
)

// styleSet is every style a rendered console line uses, bound to one
// lipgloss.Renderer. A console session is a raw TCP socket, not a TTY
// lipgloss/termenv can autodetect color support on — so Console forces
// the renderer's profile to ANSI256 at construction (newStyleSet) instead
// of trusting the auto-detected profile, which would come back "no
// color" for any io.Writer that isn't os.Stdout.
type styleSet struct {
	banner      lipgloss.Style
	errorLine   lipgloss.Style
	armed       lipgloss.Style
	disarmed    lipgloss.Style
	ready       lipgloss.Style
	moving      lipgloss.Style
	noPeer      lipgloss.Style
	tableHeader lipgloss.Style
}

func newStyleSet(w io.Writer) styleSet {
	renderer := lipgloss.NewRenderer(w)
	renderer.SetColorProfile(termenv.ANSI256)

	return styleSet{
		banner:      renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		errorLine:   renderer.NewStyle().Foreground(lipgloss.Color("196")),
		armed:       renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		disarmed:    renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("245")),
		ready:       renderer.NewStyle().Foreground(lipgloss.Color("40")),
		moving:      renderer.NewStyle().Foreground(lipgloss.Color("214")),
		noPeer:      renderer.NewStyle().Foreground(lipgloss.Color("245")),
		tableHeader: renderer.NewStyle().Bold(true).Underline(true),
	}
}

// statusStyle picks the color for a status string the same way a
// terminal-attached process would color its own log lines: amber while
// moving, green at rest, grey when disarmed or with nobody connected.
func (s styleSet) statusStyle(status string) lipgloss.Style {
	switch status {
	case "disarmed":
		return s.disarmed
	case "moving":
		return s.moving
	case "ready":
		return s.ready
	default:
		return s.noPeer
	}
}

func (s styleSet) renderStatus(snap httpapi.Snapshot) string {
	var b strings.Builder

	armed := s.disarmed.Render("disarmed")
	if snap.Armed {
		armed = s.armed.Render("armed")
	}

	status := s.statusStyle(snap.Status).Render(snap.Status)
	if snap.Status == "moving" {
		status = fmt.Sprintf("%s (%.0f%%)", status, snap.StatusPct)
	}

	fmt.Fprintf(&b, "tick:         %d\n", snap.Tick)
	fmt.Fprintf(&b, "status:       %s\n", status)
	fmt.Fprintf(&b, "armed:        %s\n", armed)
	fmt.Fprintf(&b, "depth:        %.2f m\n", snap.DepthMeters)
	fmt.Fprintf(&b, "voltage:      %.2f V\n", snap.Voltage)
	fmt.Fprintf(&b, "orient:       x=%.3f y=%.3f z=%.3f w=%.3f\n",
		snap.Orientation.X, snap.Orientation.Y, snap.Orientation.Z, snap.Orientation.W)
	fmt.Fprintf(&b, "overrun(p99): %s\n", snap.OverrunP99)
	fmt.Fprintf(&b, "peers:        %d\n", len(snap.Peers))

	return b.String()
}

func (s styleSet) renderPeers(snap httpapi.Snapshot) string {
	if len(snap.Peers) == 0 {
		return s.noPeer.Render("no peers connected") + "\n"
	}

	var b strings.Builder
	fmt.Fprintln(&b, s.tableHeader.Render(fmt.Sprintf("%-22s %-10s %8s %14s", "addr", "role", "ping_ms", "last_ack")))
	for _, p := range snap.Peers {
		fmt.Fprintf(&b, "%-22s %-10s %8d %13.1fs\n", p.Addr, p.Role, p.PingMillis, p.LastAckAgo)
	}
	return b.String()
}
