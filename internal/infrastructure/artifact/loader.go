package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/fpl-collector/internal/domain/fpl"
)

// Loader reads dumps produced by Writer.
type Loader struct{}

func NewLoader() *Loader {
	return &Loader{}
}

func (l *Loader) LoadDataset(_ context.Context, path string) (fpl.Dataset, error) {
	return LoadDataset(path)
}

func (l *Loader) LatestDumps(_ context.Context, outputDir string, n int) ([]string, error) {
	return LatestDumps(outputDir, n)
}

func LoadDataset(path string) (fpl.Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fpl.Dataset{}, fmt.Errorf("read dump: %w", err)
	}
	var ds fpl.Dataset
	if err := sonic.Unmarshal(raw, &ds); err != nil {
		return fpl.Dataset{}, fmt.Errorf("decode dump: %w", err)
	}
	return ds, nil
}

// LatestDumps returns the newest dump of each of the n most recent date folders under
// outputDir, oldest first. Folders that are not yyyy-mm-dd or hold no dump are skipped.
func LatestDumps(outputDir string, n int) ([]string, error) {
	if n <= 0 {
		return []string{}, nil
	}
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list output dir: %w", err)
	}

	var dates []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := time.Parse(dateLayout, entry.Name()); err != nil {
			continue
		}
		dates = append(dates, entry.Name())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	out := make([]string, 0, n)
	for _, date := range dates {
		if len(out) == n {
			break
		}
		latest, err := latestDumpIn(filepath.Join(outputDir, date))
		if err != nil {
			return nil, err
		}
		if latest != "" {
			out = append(out, latest)
		}
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func latestDumpIn(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, dumpPrefix+"*.json"))
	if err != nil {
		return "", fmt.Errorf("glob dumps: %w", err)
	}
	var names []string
	for _, match := range matches {
		stamp := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(match), dumpPrefix), ".json")
		if _, err := time.Parse(stampLayout, stamp); err == nil {
			names = append(names, match)
		}
	}
	if len(names) == 0 {
		return "", nil
	}
	sort.Strings(names)
	return names[len(names)-1], nil
}
