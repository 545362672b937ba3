package common

import (
	"time"

	"gitsummary/pkg/git"
)

type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

type Error struct {
	Stage   string `json:"stage,omitempty"`
	Message string `json:"message,omitempty"`
}

// Record is one analyzed repository as written to the output.
type Record struct {
	Time       time.Time   `json:"time"`
	RunID      string      `json:"run_id,omitempty"`
	Repository string      `json:"repository"`
	Report     *git.Report `json:"report,omitempty"`
	Error      []*Error    `json:"error,omitempty"`
}
