// Package tsv writes record sets as tab-separated text.
package tsv

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/OftenOfuton/My-AZIK/internal/record"
)

// Policy selects the text encoding and line terminator of the output.
type Policy struct {
	Name       string
	BOM        bool
	LineEnding string
}

var (
	// Unix is plain UTF-8 with LF line endings.
	Unix = Policy{Name: "unix", BOM: false, LineEnding: "\n"}
	// Windows is UTF-8 with a byte-order mark and CRLF line endings, the
	// form Excel and Windows IMEs read without guessing.
	Windows = Policy{Name: "windows", BOM: true, LineEnding: "\r\n"}
)

// PolicyNames lists the values accepted by ParsePolicy.
var PolicyNames = []string{"auto", "unix", "windows"}

// ParsePolicy resolves a policy name. "auto" (or "") picks Windows on
// Windows hosts and Unix elsewhere.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return DefaultPolicy(runtime.GOOS), nil
	case "unix", "lf", "utf-8":
		return Unix, nil
	case "windows", "crlf", "utf-8-sig":
		return Windows, nil
	default:
		return Policy{}, fmt.Errorf("unknown output policy %q (supported: %s)", name, strings.Join(PolicyNames, ", "))
	}
}

// DefaultPolicy returns the policy used for a target operating system.
func DefaultPolicy(goos string) Policy {
	if goos == "windows" {
		return Windows
	}
	return Unix
}

// Write renders set to w, one line per row, values separated by tabs.
// No header line is written.
func Write(w io.Writer, set *record.Set, policy Policy) error {
	lineEnding := policy.LineEnding
	if lineEnding == "" {
		lineEnding = "\n"
	}

	var out io.Writer = w
	var tw io.WriteCloser
	if policy.BOM {
		tw = transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
		out = tw
	}

	bw := bufio.NewWriter(out)
	for _, line := range set.Strings() {
		if _, err := bw.WriteString(strings.Join(line, "\t")); err != nil {
			return err
		}
		if _, err := bw.WriteString(lineEnding); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}

	if tw != nil {
		// Close flushes the encoder, which emits the BOM even for an empty set.
		return tw.Close()
	}
	return nil
}

// WriteFile truncates path and writes set to it, creating the parent
// directory if needed.
func WriteFile(path string, set *record.Set, policy Policy) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("could not create %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", path, err)
	}

	if err := Write(f, set, policy); err != nil {
		f.Close()
		return fmt.Errorf("could not write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("could not write %s: %w", path, err)
	}
	return nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadFile reads a TSV file written by WriteFile, dropping a leading BOM and
// accepting both LF and CRLF line endings.
func ReadFile(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}
	return Parse(data), nil
}

// Parse splits TSV content into rows of fields.
func Parse(data []byte) [][]string {
	data = bytes.TrimPrefix(data, utf8BOM)
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}

	lines := strings.Split(text, "\n")
	rows := make([][]string, len(lines))
	for i, line := range lines {
		rows[i] = strings.Split(line, "\t")
	}
	return rows
}
