package main

import (
	"fmt"
	"os"
	"strings"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readMode(flag, value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --%s value %q (expected auto|on|off)", flag, value)
	}
}

func readUIMode(value string) (uiMode, error) { return readMode("ui", value) }

func readColorMode(value string) (uiMode, error) { return readMode("color", value) }

// shouldUseTUI resolves auto against the stream the progress view draws on.
func shouldUseTUI(mode uiMode, f *os.File) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return isTerminal(f)
	}
}

func useColor(mode uiMode, f *os.File) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return os.Getenv("NO_COLOR") == "" && isTerminal(f)
	}
}
