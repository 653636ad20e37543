package main

import (
	"fmt"
	"runtime/debug"

	"github.com/reviewloop/rcr/internal/domain"
)

// version is set via -ldflags at release build time.
var version = ""

// buildVersionString returns the release version, falling back to module
// build info for go-install builds.
func buildVersionString() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// exitCodeError is a wrapper type for returning exit codes via error interface.
type exitCodeError struct {
	code domain.ExitCode
}

func (e exitCodeError) Error() string {
	switch e.code {
	case domain.ExitNeedsHuman:
		return "comments were deferred to a human"
	case domain.ExitError:
		return "resolution failed with error"
	case domain.ExitInterrupted:
		return "resolution was interrupted"
	default:
		return fmt.Sprintf("exit code %d", e.code)
	}
}

func exitCode(code domain.ExitCode) error {
	if code == domain.ExitResolved {
		return nil
	}
	return exitCodeError{code: code}
}
