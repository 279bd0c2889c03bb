package artifact

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/fpl-collector/internal/domain/fpl"
	"github.com/riskibarqy/fpl-collector/internal/domain/validation"
	"github.com/riskibarqy/fpl-collector/internal/platform/logging"
	"github.com/riskibarqy/fpl-collector/internal/usecase"
)

const (
	dateLayout  = "2006-01-02"
	stampLayout = "150405"

	dumpPrefix       = "fpl_data_"
	playersPrefix    = "fpl_players_"
	reportPrefix     = "fpl_report_"
	validationPrefix = "fpl_validation_"
)

type WriterConfig struct {
	// Location picks the calendar day and clock used in paths. Defaults to time.Local.
	Location *time.Location
	Logger   *logging.Logger
}

// Writer persists one dataset as four sibling files under outputDir/yyyy-mm-dd/.
type Writer struct {
	location *time.Location
	logger   *logging.Logger
}

func NewWriter(cfg WriterConfig) *Writer {
	location := cfg.Location
	if location == nil {
		location = time.Local
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Writer{location: location, logger: logger}
}

// Paths returns where each artifact of a run at `at` lands, without touching the disk.
func (w *Writer) Paths(outputDir string, at time.Time) usecase.ArtifactSet {
	local := at.In(w.location)
	date := local.Format(dateLayout)
	stamp := local.Format(stampLayout)
	dir := filepath.Join(outputDir, date)
	return usecase.ArtifactSet{
		Dir:   dir,
		Date:  date,
		Stamp: stamp,
		Paths: map[string]string{
			usecase.ArtifactDump:       filepath.Join(dir, dumpPrefix+stamp+".json"),
			usecase.ArtifactPlayersCSV: filepath.Join(dir, playersPrefix+stamp+".csv"),
			usecase.ArtifactReport:     filepath.Join(dir, reportPrefix+stamp+".txt"),
			usecase.ArtifactValidation: filepath.Join(dir, validationPrefix+stamp+".json"),
		},
	}
}

// Write creates every artifact independently. A failed file does not stop the others
// and files already written are kept; the returned set only lists written files and
// the error joins one *usecase.WriteError per failure.
func (w *Writer) Write(
	ctx context.Context,
	ds fpl.Dataset,
	report validation.Report,
	outputDir string,
	at time.Time,
) (usecase.ArtifactSet, error) {
	planned := w.Paths(outputDir, at)
	written := usecase.ArtifactSet{
		Dir:   planned.Dir,
		Date:  planned.Date,
		Stamp: planned.Stamp,
		Paths: make(map[string]string, len(planned.Paths)),
	}

	if err := os.MkdirAll(planned.Dir, 0o755); err != nil {
		var errs []error
		for _, kind := range usecase.ArtifactKinds {
			errs = append(errs, &usecase.WriteError{Artifact: kind, Path: planned.Paths[kind], Err: err})
		}
		return written, stderrors.Join(errs...)
	}

	renderers := map[string]func(io.Writer) error{
		usecase.ArtifactDump: func(out io.Writer) error {
			return encodeJSON(out, ds)
		},
		usecase.ArtifactPlayersCSV: func(out io.Writer) error {
			return WritePlayersCSV(out, ds.Players)
		},
		usecase.ArtifactReport: func(out io.Writer) error {
			return WriteReport(out, ds, report)
		},
		usecase.ArtifactValidation: func(out io.Writer) error {
			return encodeJSON(out, report)
		},
	}

	var errs []error
	for _, kind := range usecase.ArtifactKinds {
		path := planned.Paths[kind]
		if err := writeAtomic(path, renderers[kind]); err != nil {
			w.logger.ErrorContext(ctx, "artifact write failed", "artifact", kind, "path", path, "error", err)
			errs = append(errs, &usecase.WriteError{Artifact: kind, Path: path, Err: err})
			continue
		}
		written.Paths[kind] = path
		w.logger.DebugContext(ctx, "artifact written", "artifact", kind, "path", path)
	}

	return written, stderrors.Join(errs...)
}

// writeAtomic renders into a temp file next to path and renames it into place, so a
// reader never sees a half-written artifact.
func writeAtomic(path string, render func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if err := render(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("render: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// encodeJSON writes indented JSON with sorted object keys.
func encodeJSON(out io.Writer, value any) error {
	raw, err := sonic.ConfigStd.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	if _, err := out.Write(append(raw, '\n')); err != nil {
		return err
	}
	return nil
}
