package app

import (
	"fmt"

	cerror "github.com/specialistvlad/streamgrid/internal/errors"
)

// Report formats.
const (
	ReportJSON = "json"
	ReportText = "text"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GraphPath string // hcl files

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	// WorkerCount bounds how many graphs are scheduled concurrently.
	WorkerCount int
	// Split enables the post-codegen stream splitter.
	Split        bool
	ReportFormat string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.GraphPath == "" {
		return nil, cerror.ErrInvalidConfig.GenWithStackByArgs("GraphPath is a required configuration field and cannot be empty")
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	switch cfg.ReportFormat {
	case "":
		cfg.ReportFormat = ReportJSON
	case ReportJSON, ReportText:
	default:
		return nil, cerror.ErrInvalidOption.GenWithStackByArgs(cfg.ReportFormat, "report", fmt.Sprintf("%q, %q", ReportJSON, ReportText))
	}
	return &cfg, nil
}
