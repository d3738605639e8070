// Package output persists the fused collection and its summary.
package output

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/sells-group/inforoute-cli/internal/model"
)

// Default artifact names.
const (
	DefaultFeaturesFile = "signalements_routes_fusionnes.geojson"
	DefaultSummaryFile  = "metadata.json"
)

// ErrNoArtifact is returned when an artifact has not been written yet.
var ErrNoArtifact = eris.New("output: artifact not written yet")

// Options locates the artifacts.
type Options struct {
	Dir          string
	FeaturesFile string
	SummaryFile  string
}

// Writer writes the run artifacts. Both files are written to temporary names
// in the target directory and renamed into place only once both are staged,
// so readers never observe a partial file or a mismatched pair.
type Writer struct {
	fs   afero.Fs
	opts Options
}

// NewWriter creates a writer on fs. Empty names fall back to the defaults.
func NewWriter(fs afero.Fs, opts Options) *Writer {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.FeaturesFile == "" {
		opts.FeaturesFile = DefaultFeaturesFile
	}
	if opts.SummaryFile == "" {
		opts.SummaryFile = DefaultSummaryFile
	}
	return &Writer{fs: fs, opts: opts}
}

// FeaturesPath returns the primary artifact path.
func (w *Writer) FeaturesPath() string { return filepath.Join(w.opts.Dir, w.opts.FeaturesFile) }

// SummaryPath returns the summary artifact path.
func (w *Writer) SummaryPath() string { return filepath.Join(w.opts.Dir, w.opts.SummaryFile) }

// Write serializes the collection and its summary as indented JSON.
func (w *Writer) Write(fc *model.FeatureCollection) error {
	if fc == nil {
		return eris.New("output: nil collection")
	}
	if err := w.fs.MkdirAll(w.opts.Dir, 0o755); err != nil {
		return eris.Wrapf(err, "output: create dir %s", w.opts.Dir)
	}

	features, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return eris.Wrap(err, "output: encode features")
	}
	summary, err := json.MarshalIndent(fc.Metadata.Summary(), "", "  ")
	if err != nil {
		return eris.Wrap(err, "output: encode summary")
	}

	featuresTmp, err := w.stage(w.FeaturesPath(), features)
	if err != nil {
		return err
	}
	summaryTmp, err := w.stage(w.SummaryPath(), summary)
	if err != nil {
		_ = w.fs.Remove(featuresTmp)
		return err
	}
	if err := w.commit(featuresTmp, summaryTmp); err != nil {
		_ = w.fs.Remove(featuresTmp)
		_ = w.fs.Remove(summaryTmp)
		return err
	}

	zap.L().Info("artifacts written",
		zap.String("component", "output"),
		zap.String("features", w.FeaturesPath()),
		zap.String("summary", w.SummaryPath()),
		zap.Int("total_features", fc.Metadata.TotalFeatures),
	)
	return nil
}

// ReadFeatures returns the last written primary artifact.
func (w *Writer) ReadFeatures() ([]byte, error) { return w.read(w.FeaturesPath()) }

// ReadSummary returns the last written summary artifact.
func (w *Writer) ReadSummary() ([]byte, error) { return w.read(w.SummaryPath()) }

func (w *Writer) read(path string) ([]byte, error) {
	data, err := afero.ReadFile(w.fs, path)
	if os.IsNotExist(err) {
		return nil, ErrNoArtifact
	}
	if err != nil {
		return nil, eris.Wrapf(err, "output: read %s", path)
	}
	return data, nil
}

// stage writes data to a temporary file next to path and returns its name.
func (w *Writer) stage(path string, data []byte) (string, error) {
	tmp, err := afero.TempFile(w.fs, filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return "", eris.Wrapf(err, "output: create temp for %s", path)
	}
	tmpName := tmp.Name()

	_, werr := tmp.Write(append(data, '\n'))
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		_ = w.fs.Remove(tmpName)
		if werr != nil {
			return "", eris.Wrapf(werr, "output: write %s", path)
		}
		return "", eris.Wrapf(cerr, "output: close %s", path)
	}
	return tmpName, nil
}

// commit renames both staged files into place. If the summary cannot be
// moved, the previous primary artifact is restored so the pair stays
// consistent.
func (w *Writer) commit(featuresTmp, summaryTmp string) error {
	primary := w.FeaturesPath()
	backup := filepath.Join(w.opts.Dir, "."+w.opts.FeaturesFile+".prev")

	hadPrevious, err := afero.Exists(w.fs, primary)
	if err != nil {
		return eris.Wrapf(err, "output: stat %s", primary)
	}
	if hadPrevious {
		if err := w.fs.Rename(primary, backup); err != nil {
			return eris.Wrapf(err, "output: back up %s", primary)
		}
	}
	restore := func() {
		if hadPrevious {
			_ = w.fs.Rename(backup, primary)
		}
	}

	if err := w.fs.Rename(featuresTmp, primary); err != nil {
		restore()
		return eris.Wrapf(err, "output: rename into %s", primary)
	}
	if err := w.fs.Rename(summaryTmp, w.SummaryPath()); err != nil {
		_ = w.fs.Remove(primary)
		restore()
		return eris.Wrapf(err, "output: rename into %s", w.SummaryPath())
	}
	if hadPrevious {
		_ = w.fs.Remove(backup)
	}
	return nil
}
