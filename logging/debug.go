// Package logging adapts the teacher's shared/debug.go print helpers and
// layers OpenTelemetry tracing spans on top for the main tick and every
// side thread — the Go counterpart of the original Rust's
// tracing::span!(Level::INFO, "...") entries around the PWM, IMU, and depth
// threads.
package logging

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"rovmesh/config"
)

// DebugPrint writes a formatted line with file:line:func context, only when
// config.DebugMode is set. Mirrors the teacher's shared.DebugPrint.
func DebugPrint(format string, args ...any) {
	if !config.DebugMode {
		return
	}
	fmt.Printf("[DEBUG %s] %s\n", callerContext(), fmt.Sprintf(format, args...))
}

// DebugError logs err with caller context when config.DebugMode is set. A
// nil err is a no-op.
func DebugError(err error) {
	if err == nil || !config.DebugMode {
		return
	}
	fmt.Printf("[ERROR %s] %v\n", callerContext(), err)
}

// Warn always prints, independent of config.DebugMode — spec.md §7's
// "protocol violation... logged with context" and "safety... logs at warn
// level" classes must be visible without DEBUG=1 set.
func Warn(format string, args ...any) {
	fmt.Printf("[WARN %s] %s\n", callerContext(), fmt.Sprintf(format, args...))
}

// DebugPrintWithPackage is DebugPrint with an explicit package label, used
// by side threads that want to tag their origin (e.g. "pwmout", "transport").
func DebugPrintWithPackage(pkg, format string, args ...any) {
	if !config.DebugMode {
		return
	}
	fmt.Printf("[DEBUG %s %s] %s\n", pkg, callerContext(), fmt.Sprintf(format, args...))
}

// DebugPanic logs with caller context, then panics. Used only for invariant
// violations the caller should have made impossible (spec.md §7: "panics
// are reserved for invariant violations the implementer should have made
// impossible"), mirroring the teacher's shared.DebugPanic.
func DebugPanic(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Printf("[PANIC %s] %s\n", callerContext(), msg)
	panic(msg)
}

func callerContext() string {
	pc, file, line, ok := runtime.Caller(2)
	if !ok {
		return "unknown"
	}

	fn := runtime.FuncForPC(pc)
	name := "unknown"
	if fn != nil {
		parts := strings.Split(fn.Name(), ".")
		name = parts[len(parts)-1]
	}

	return fmt.Sprintf("%s:%d:%s", filepath.Base(file), line, name)
}
