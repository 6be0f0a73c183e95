// Package output writes machine-readable command results.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/OftenOfuton/My-AZIK/cmd/version"
)

// Result is the JSON envelope printed by the export command.
type Result struct {
	OK      bool   `json:"ok"`
	Command string `json:"command"`
	Version string `json:"version"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// JSON encodes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintResult writes a success envelope.
func PrintResult(w io.Writer, cmd string, data any) error {
	return JSON(w, Result{
		OK:      true,
		Command: cmd,
		Version: version.String(),
		Data:    data,
	})
}

// PrintError writes a failure envelope carrying the process exit code.
func PrintError(w io.Writer, cmd string, err error, code int) error {
	result := Result{
		OK:      false,
		Command: cmd,
		Version: version.String(),
		Error:   err.Error(),
		Code:    code,
	}
	if encErr := JSON(w, result); encErr != nil {
		return fmt.Errorf("could not encode JSON error: %w", encErr)
	}
	return nil
}
