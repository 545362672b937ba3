package common

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gitsummary/pkg/git"
)

var output = &Output{w: os.Stdout, format: FormatTable, encoder: json.NewEncoder(os.Stdout)}

func NewRecord(result git.Result) *Record {
	record := &Record{
		Time:       time.Now(),
		RunID:      result.RunID,
		Repository: result.Input,
	}
	if result.Error != nil {
		record.SetError(result.Error)
		return record
	}
	report := result.Report
	record.Report = &report
	return record
}

func (r *Record) Write() error {
	return output.Write(r)
}

func (r *Record) Failed() bool {
	return len(r.Error) > 0
}

// SetError records err qualified by the stage it came from: resolution
// failures read as "preparing", everything else as "analyzing".
func (r *Record) SetError(err error) {
	if err == nil {
		return
	}
	r.Time = time.Now()
	stage := git.Stage(err)
	var message string
	switch stage {
	case "resolve":
		message = fmt.Sprintf("Error preparing repository: %s", err)
	case "":
		message = err.Error()
	default:
		message = fmt.Sprintf("Error analyzing repository (%s): %s", stage, err)
	}
	r.Error = append(r.Error, &Error{Stage: stage, Message: message})
}

// SetOutput directs records to path, or stdout when path is empty. A file
// opened by an earlier call is closed first.
func SetOutput(path string, format Format) error {
	var (
		w      io.Writer = os.Stdout
		closer io.Closer
	)
	colors := true
	if path != "" {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		w, closer = f, f
		colors = false
	}
	o, err := NewOutput(w, format, colors)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return err
	}
	o.closer = closer
	if err := output.Close(); err != nil {
		_ = o.Close()
		return err
	}
	output = o
	return nil
}

// CloseOutput closes the output file, if any, and points records back at
// stdout.
func CloseOutput() error {
	err := output.Close()
	output = &Output{w: os.Stdout, format: output.format, colors: true, encoder: json.NewEncoder(os.Stdout)}
	return err
}

func ReadFile(path string) ([]string, error) {
	var lines []string
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if scanner.Err() != nil {
		return nil, scanner.Err()
	}
	return lines, nil
}

func PrintJSON(w io.Writer, item interface{}) error {
	b, err := json.Marshal(item)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// Out is where records are currently written.
func Out() io.Writer {
	return output.w
}
