// Package diag reports the health of the external tools the service leans
// on: the audio codec tool and the recognition engine.
package diag

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
)

// Item is one dependency check result.
type Item struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// Report combines all dependency checks.
type Report struct {
	GeneratedAt time.Time `json:"generatedAt"`
	HasFailures bool      `json:"hasFailures"`
	Items       []Item    `json:"items"`
}

// Checker probes for required external tools. Lookups are injectable for
// tests.
type Checker struct {
	lookPath   func(string) (string, error)
	runVersion func(name string) (string, error)

	// enginePath overrides PATH lookup when the engine was resolved
	// explicitly at startup.
	enginePath string
}

func NewChecker(enginePath string) *Checker {
	return &Checker{
		lookPath:   exec.LookPath,
		runVersion: probeVersion,
		enginePath: enginePath,
	}
}

// Run executes all dependency checks.
func (c *Checker) Run() Report {
	items := []Item{
		c.checkFFmpeg(),
		c.checkEngine(),
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == StatusFail {
			hasFailures = true
			break
		}
	}

	return Report{
		GeneratedAt: time.Now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

func (c *Checker) checkFFmpeg() Item {
	path, err := c.lookPath("ffmpeg")
	if err != nil {
		return Item{
			Name:    "ffmpeg",
			Status:  StatusFail,
			Message: "ffmpeg not found in PATH",
			Hint:    "Install ffmpeg and ensure the binary is on PATH; audio decoding cannot work without it.",
		}
	}

	message := fmt.Sprintf("found at %s", path)
	if version, err := c.runVersion("ffmpeg"); err == nil && version != "" {
		message = fmt.Sprintf("%s (%s)", message, version)
	}
	return Item{Name: "ffmpeg", Status: StatusPass, Message: message}
}

func (c *Checker) checkEngine() Item {
	path := c.enginePath
	if path == "" {
		resolved, err := c.lookPath("whisper-cli")
		if err != nil {
			return Item{
				Name:    "whisper-cli",
				Status:  StatusFail,
				Message: "whisper-cli not found in PATH",
				Hint:    "Install whisper.cpp or set SCRIBED_WHISPER_PATH to the engine binary.",
			}
		}
		path = resolved
	}

	return Item{Name: "whisper-cli", Status: StatusPass, Message: fmt.Sprintf("found at %s", path)}
}

// probeVersion runs `<name> -version` and returns the first output line.
func probeVersion(name string) (string, error) {
	cmd := exec.Command(name, "-version")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return "", err
	}

	line := strings.TrimSpace(strings.SplitN(stdout.String(), "\n", 2)[0])
	return line, nil
}
