package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/golang/snappy"
	"golang.org/x/sync/errgroup"

	"github.com/dd0wney/cluso-netmap/pkg/config"
	"github.com/dd0wney/cluso-netmap/pkg/geom"
	"github.com/dd0wney/cluso-netmap/pkg/logging"
)

// Files names every object of a dataset. Positions may be empty.
type Files struct {
	Matrix           string
	LinkTypes        string
	Temporal         string
	Descriptions     string
	LongDescriptions string
	Positions        string
}

// FilesFromConfig maps the configured names.
func FilesFromConfig(f config.FileNames) Files {
	return Files{
		Matrix:           f.Matrix,
		LinkTypes:        f.LinkTypes,
		Temporal:         f.Temporal,
		Descriptions:     f.Descriptions,
		LongDescriptions: f.LongDescriptions,
		Positions:        f.Positions,
	}
}

// NewSource builds the source selected by the data section.
func NewSource(ctx context.Context, cfg config.DataConfig) (Source, error) {
	switch cfg.Source {
	case "", "dir":
		return NewDirSource(cfg.Dir), nil
	case "http":
		return NewHTTPSource(cfg.BaseURL, cfg.Timeout), nil
	case "s3":
		return NewS3Source(ctx, S3Options{
			Bucket:    cfg.S3.Bucket,
			Prefix:    cfg.S3.Prefix,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
		})
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Source)
	}
}

// Loader fetches and normalizes a dataset.
type Loader struct {
	source Source
	files  Files
	logger logging.Logger
}

// NewLoader creates a loader. A nil logger discards output.
func NewLoader(source Source, files Files, logger logging.Logger) *Loader {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Loader{
		source: source,
		files:  files,
		logger: logger.With(logging.Component("dataset")),
	}
}

// Load fetches every file concurrently and returns the normalized bundle.
// Nothing is returned unless every required file decoded and validated.
func (l *Loader) Load(ctx context.Context) (*Bundle, error) {
	timer := logging.StartTimer(l.logger, "dataset loaded", logging.String("source", l.source.String()))

	var (
		matrix    MatrixFile
		linkTypes LinkTypeFile
		temporal  TableFile
		short     TableFile
		long      TableFile
		positions map[string]geom.Point
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return l.fetch(gctx, l.files.Matrix, &matrix) })
	g.Go(func() error { return l.fetch(gctx, l.files.LinkTypes, &linkTypes) })
	g.Go(func() error { return l.fetch(gctx, l.files.Temporal, &temporal) })
	g.Go(func() error { return l.fetch(gctx, l.files.Descriptions, &short) })
	g.Go(func() error { return l.fetch(gctx, l.files.LongDescriptions, &long) })
	g.Go(func() error {
		if l.files.Positions == "" {
			return nil
		}
		err := l.fetch(gctx, l.files.Positions, &positions)
		switch {
		case err == nil:
		case errors.Is(err, fs.ErrNotExist):
			l.logger.Info("no saved layout, using physics placement", logging.File(l.files.Positions))
			positions = nil
		case gctx.Err() != nil:
			// a required file already failed
			return nil
		default:
			l.logger.Warn("ignoring unreadable saved layout", logging.File(l.files.Positions), logging.Error(err))
			positions = nil
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		timer.EndError(err)
		return nil, err
	}

	b, err := l.assemble(&matrix, &linkTypes, &temporal, &short, &long, positions)
	if err != nil {
		timer.EndError(err)
		return nil, err
	}

	timer.End(logging.Count(len(b.Labels)), logging.Bool("saved_layout", b.Positions != nil))
	return b, nil
}

func (l *Loader) fetch(ctx context.Context, name string, v any) error {
	rc, err := l.source.Open(ctx, name)
	if err != nil {
		return loadErr(name, "fetch", err)
	}
	defer rc.Close()

	if err := decode(name, rc, v); err != nil {
		return loadErr(name, "decode", err)
	}
	return nil
}

// decode reads JSON, unwrapping snappy framing for names ending in .sz.
func decode(name string, r io.Reader, v any) error {
	if strings.HasSuffix(name, ".sz") {
		r = snappy.NewReader(r)
	}
	return json.NewDecoder(r).Decode(v)
}

func (l *Loader) assemble(m *MatrixFile, lt *LinkTypeFile, temporal, short, long *TableFile, pos map[string]geom.Point) (*Bundle, error) {
	labels, weights, err := normalizeMatrix(m)
	if err != nil {
		return nil, loadErr(l.files.Matrix, "validate", err)
	}

	kinds, err := normalizeLinkTypes(lt, len(labels))
	if err != nil {
		return nil, loadErr(l.files.LinkTypes, "validate", err)
	}

	b := &Bundle{Labels: labels, Weights: weights, LinkTypes: kinds}

	if b.Temporal, err = l.normalizeTable("temporal", temporal, 3); err != nil {
		return nil, loadErr(l.files.Temporal, "validate", err)
	}
	if b.Descriptions, err = l.normalizeTable("descriptions", short, 1); err != nil {
		return nil, loadErr(l.files.Descriptions, "validate", err)
	}
	if b.LongDescriptions, err = l.normalizeTable("long_descriptions", long, 3); err != nil {
		return nil, loadErr(l.files.LongDescriptions, "validate", err)
	}

	if pos != nil {
		b.Positions = l.normalizePositions(pos, len(labels))
	}
	return b, nil
}
