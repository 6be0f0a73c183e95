// Package backup keeps timestamped copies of the source workbook.
//
// Artifacts are named "<YYYYMMDD_HHMMSS>_<original name>". When a run in the
// same second already claimed that name, a counter is added to the stamp
// ("<YYYYMMDD_HHMMSS>-1_<original name>"). Existing artifacts are never
// modified or removed.
package backup

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// StampLayout is the time format of an artifact name prefix.
const StampLayout = "20060102_150405"

// maxAttempts bounds the counter search for a free artifact name.
const maxAttempts = 1000

// Artifact is one backup file found in a backup directory.
type Artifact struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	Original  string    `json:"original"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

var artifactPattern = regexp.MustCompile(`^(\d{8}_\d{6})(?:-(\d+))?_(.+)$`)

var chtimes = os.Chtimes

// Creator copies workbooks into a backup directory.
type Creator struct {
	// Now returns the time used for the artifact stamp. Defaults to time.Now.
	Now func() time.Time
	// Logger receives debug details. The zero value discards them.
	Logger zerolog.Logger
}

// Create copies src into dir using the current time.
func Create(src, dir string) (string, error) {
	return Creator{}.Create(src, dir)
}

// ArtifactName returns the artifact file name for a stamp, a collision
// counter (0 for none) and the original base name.
func ArtifactName(t time.Time, n int, base string) string {
	stamp := t.Format(StampLayout)
	if n > 0 {
		stamp += "-" + strconv.Itoa(n)
	}
	return stamp + "_" + base
}

// Create copies src into dir, creating dir if needed, and returns the path
// of the new artifact.
func (c Creator) Create(src, dir string) (string, error) {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("could not open %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return "", fmt.Errorf("could not stat %s: %w", src, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", src)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("could not create backup directory %s: %w", dir, err)
	}

	stamp := now()
	base := filepath.Base(src)

	var (
		out  *os.File
		dest string
	)
	for n := 0; n < maxAttempts; n++ {
		dest = filepath.Join(dir, ArtifactName(stamp, n, base))
		out, err = os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("could not create %s: %w", dest, err)
		}
	}
	if out == nil {
		return "", fmt.Errorf("no free backup name for %s in %s", base, dir)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return "", fmt.Errorf("could not copy %s to %s: %w", src, dest, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("could not write %s: %w", dest, err)
	}

	// Keep the source modification time, like a metadata-preserving copy.
	if err := chtimes(dest, info.ModTime(), info.ModTime()); err != nil {
		c.Logger.Debug().Err(err).Str("path", dest).Msg("could not keep modification time")
	}

	return dest, nil
}

// List returns the artifacts in dir, oldest first. A missing directory has
// no artifacts.
func List(dir string) ([]Artifact, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not read %s: %w", dir, err)
	}

	type sortable struct {
		Artifact
		seq int
	}

	var found []sortable
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := artifactPattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		created, err := time.ParseInLocation(StampLayout, m[1], time.Local)
		if err != nil {
			continue
		}
		seq := 0
		if m[2] != "" {
			seq, _ = strconv.Atoi(m[2])
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		found = append(found, sortable{
			Artifact: Artifact{
				Path:      filepath.Join(dir, e.Name()),
				Name:      e.Name(),
				Original:  m[3],
				Size:      info.Size(),
				CreatedAt: created,
			},
			seq: seq,
		})
	}

	sort.SliceStable(found, func(i, j int) bool {
		if !found[i].CreatedAt.Equal(found[j].CreatedAt) {
			return found[i].CreatedAt.Before(found[j].CreatedAt)
		}
		return found[i].seq < found[j].seq
	})

	artifacts := make([]Artifact, len(found))
	for i, f := range found {
		artifacts[i] = f.Artifact
	}
	return artifacts, nil
}
