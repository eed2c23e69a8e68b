package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"upscaled/internal/common/fsutil"
	"upscaled/pkg/types"
)

// weightExts are the file types treated as upscaler weights.
var weightExts = map[string]bool{
	".pth":         true,
	".pt":          true,
	".onnx":        true,
	".param":       true,
	".bin":         true,
	".safetensors": true,
}

var (
	scaleSuffix = regexp.MustCompile(`(?i)(?:^|[^a-z0-9])x(\d{1,2})(?:[^0-9]|$)`)
	scalePrefix = regexp.MustCompile(`(?i)(?:^|[^a-z0-9])(\d{1,2})x(?:[^a-z0-9]|$)`)
)

// LoadDir scans a directory for weight files and builds a registry from filenames.
// ID is the full filename (including extension); Path is the absolute file path.
// An ncnn .bin next to a .param of the same stem is folded into the .param entry.
func LoadDir(dir string) ([]types.Model, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	params := map[string]bool{}
	for _, e := range entries {
		if strings.EqualFold(filepath.Ext(e.Name()), ".param") {
			params[stem(e.Name())] = true
		}
	}
	var models []types.Model
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !weightExts[ext] {
			continue
		}
		if ext == ".bin" && params[stem(name)] {
			continue
		}
		models = append(models, types.Model{
			ID:    name,
			Name:  stem(name),
			Path:  filepath.Join(abs, name),
			Scale: ScaleFromName(name),
		})
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}

// ScaleFromName guesses the upscale factor from tokens like "x4" or "4x".
// Returns 0 when the name carries no factor.
func ScaleFromName(name string) int {
	s := stem(filepath.Base(name))
	for _, re := range []*regexp.Regexp{scaleSuffix, scalePrefix} {
		if m := re.FindStringSubmatch(s); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				return n
			}
		}
	}
	return 0
}

func stem(name string) string { return strings.TrimSuffix(name, filepath.Ext(name)) }
