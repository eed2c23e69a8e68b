// Package scratch owns the per-request temporary files: the uploaded image
// and the upscaled result. Names embed a fresh UUID and files are created
// exclusively, so two requests never share a path.
package scratch

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"upscaled/internal/common/fsutil"
)

// OutputPrefix is prepended to every result file name.
const OutputPrefix = "upscaled-"

// Store manages the uploads and outputs directories.
type Store struct {
	UploadsDir string
	OutputsDir string
}

// Pair is the set of paths reserved for one request.
type Pair struct {
	ID         string
	InputPath  string
	OutputPath string
	// OutputName is the file name offered to the client.
	OutputName string
}

// New prepares both directories, creating them if needed.
func New(uploadsDir, outputsDir string) (*Store, error) {
	up, err := fsutil.ExpandHome(uploadsDir)
	if err != nil {
		return nil, err
	}
	out, err := fsutil.ExpandHome(outputsDir)
	if err != nil {
		return nil, err
	}
	if err := fsutil.EnsureDirs(up, out); err != nil {
		return nil, fmt.Errorf("scratch dirs: %w", err)
	}
	return &Store{UploadsDir: up, OutputsDir: out}, nil
}

// Allocate reserves fresh input and output paths for filename.
// Nothing is created on disk.
func (s *Store) Allocate(filename string) Pair {
	id := uuid.NewString()
	name := SanitizeFilename(filename)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if stem == "" {
		stem = "image"
	}
	in := id + "-" + name
	out := OutputPrefix + id + "-" + stem + ".png"
	return Pair{
		ID:         id,
		InputPath:  filepath.Join(s.UploadsDir, in),
		OutputPath: filepath.Join(s.OutputsDir, out),
		OutputName: out,
	}
}

// Save copies r into a new file at path. The file must not already exist.
// On any error the partially written file is removed.
func (s *Store) Save(path string, r io.Reader) (int64, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return n, err
	}
	return n, nil
}

// Remove deletes the given files. Missing files are ignored; the first
// other error is returned after attempting all paths.
func (s *Store) Remove(paths ...string) error {
	var first error
	for _, p := range paths {
		if err := fsutil.RemoveIfExists(p); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Sweep removes files older than maxAge from both directories and returns
// how many were deleted. Used to reclaim leftovers from crashed requests.
func (s *Store) Sweep(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	var errs []error
	for _, dir := range []string{s.UploadsDir, s.OutputsDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, e := range entries {
			if !e.Type().IsRegular() {
				continue
			}
			info, err := e.Info()
			if err != nil || !info.ModTime().Before(cutoff) {
				continue
			}
			if err := fsutil.RemoveIfExists(filepath.Join(dir, e.Name())); err != nil {
				errs = append(errs, err)
				continue
			}
			removed++
		}
	}
	return removed, errors.Join(errs...)
}

// Count returns the number of regular files currently held in both directories.
func (s *Store) Count() (int, error) {
	n := 0
	for _, dir := range []string{s.UploadsDir, s.OutputsDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return n, err
		}
		for _, e := range entries {
			if e.Type().IsRegular() {
				n++
			}
		}
	}
	return n, nil
}

// SanitizeFilename reduces a client supplied name to a safe base name.
// Directory components are dropped and characters outside [A-Za-z0-9._-]
// become '_'. An empty result yields "image".
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.TrimLeft(b.String(), ".")
	if len(out) > 128 {
		out = out[len(out)-128:]
	}
	if strings.Trim(out, "_") == "" {
		return "image"
	}
	return out
}
