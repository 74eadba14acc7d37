package ui

import (
	"fmt"
	"os"
	"time"

	"github.com/mcpgate/mcpgate/internal/core/session"
)

// Print functions for consistent output

func Error(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorIcon, ErrorStyle.Render(fmt.Sprintf(format, args...)))
}

func Success(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", SuccessIcon, SuccessStyle.Render(fmt.Sprintf(format, args...)))
}

func Info(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", InfoIcon, InfoStyle.Render(fmt.Sprintf(format, args...)))
}

func Warning(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", WarningIcon, WarningStyle.Render(fmt.Sprintf(format, args...)))
}

// OutputLine prints a formatted line to stdout
func OutputLine(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

// FormatDuration formats a duration into a human-readable string
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return "< 1m"
	} else if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	} else if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	} else {
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

// PrintSessionList displays active sessions using a table
func PrintSessionList(infos []session.Info) {
	if len(infos) == 0 {
		Info("No active sessions")
		return
	}

	tbl := NewTable("SESSION", "STATE", "PID", "TOKEN", "AGE")

	for _, info := range infos {
		token := DimStyle.Render("-")
		if info.HasToken {
			token = "yes"
		}
		age := DimStyle.Render(FormatDuration(time.Since(info.CreatedAt)))
		tbl.AddRow(session.ID(info.ID).Short(), info.Status, info.PID, token, age)
	}

	PrintSectionHeader(SessionIcon, "Sessions", len(infos))
	tbl.Print()
	fmt.Println()
}
