package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"trackalign/internal/results"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	return colorizeStatus(base, kind, colorize)
}

func colorizeStatus(value string, kind statusKind, colorize bool) string {
	if !colorize {
		return value
	}
	return statusKindColor(kind).Sprint(value)
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) text.Colors {
	switch kind {
	case statusOK:
		return text.Colors{text.FgGreen}
	case statusWarn:
		return text.Colors{text.FgYellow}
	case statusError:
		return text.Colors{text.FgRed}
	default:
		return text.Colors{text.FgBlue}
	}
}

func resultStatusKind(status results.Status) statusKind {
	switch status {
	case results.StatusAligned:
		return statusOK
	case results.StatusReview:
		return statusWarn
	case results.StatusFailed:
		return statusError
	default:
		return statusInfo
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
