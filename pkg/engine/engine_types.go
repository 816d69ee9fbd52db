package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/dd0wney/cluso-netmap/pkg/config"
	"github.com/dd0wney/cluso-netmap/pkg/dataset"
	"github.com/dd0wney/cluso-netmap/pkg/graph"
	"github.com/dd0wney/cluso-netmap/pkg/hittest"
	"github.com/dd0wney/cluso-netmap/pkg/interaction"
	"github.com/dd0wney/cluso-netmap/pkg/logging"
	"github.com/dd0wney/cluso-netmap/pkg/metrics"
	"github.com/dd0wney/cluso-netmap/pkg/pubsub"
	"github.com/dd0wney/cluso-netmap/pkg/schedule"
	"github.com/dd0wney/cluso-netmap/pkg/selection"
	"github.com/dd0wney/cluso-netmap/pkg/viewport"
)

var (
	ErrStopped        = errors.New("engine stopped")
	ErrAlreadyRunning = errors.New("engine already running")
	ErrNotReady       = errors.New("graph not ready")
)

// Status of the dataset behind the engine.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// BundleLoader produces the dataset. *dataset.Loader satisfies it.
type BundleLoader interface {
	Load(ctx context.Context) (*dataset.Bundle, error)
}

// LoaderFunc adapts a function to BundleLoader.
type LoaderFunc func(ctx context.Context) (*dataset.Bundle, error)

func (f LoaderFunc) Load(ctx context.Context) (*dataset.Bundle, error) { return f(ctx) }

// Options configure an Engine. Config and Loader are required.
type Options struct {
	Config *config.Config
	Loader BundleLoader
	// SourceName labels load metrics, e.g. "dir" or "s3".
	SourceName string

	Scheduler schedule.Scheduler // defaults to schedule.Real
	Gate      *interaction.Gate  // defaults to a private gate
	Metrics   *metrics.Registry  // defaults to a private registry
	Bus       *pubsub.PubSub[Snapshot]
	Logger    logging.Logger
	Rand      *rand.Rand
}

// Snapshot is an immutable copy of everything a renderer needs.
type Snapshot struct {
	Session string       `json:"session"`
	Version uint64       `json:"version"`
	Status  Status       `json:"status"`
	LoadErr error        `json:"-"`
	Blocked bool         `json:"blocked"`
	Physics bool         `json:"physics"`
	Stable  bool         `json:"stable"`
	Filter  string       `json:"filter"`
	Focus   graph.NodeID `json:"focus"`
	Options []string     `json:"filter_options"`

	Nodes []graph.Node `json:"nodes"`
	Edges []graph.Edge `json:"edges"`

	Viewport  viewport.State     `json:"viewport"`
	Selection selection.Snapshot `json:"selection"`
	Details   *graph.NodeDetails `json:"details,omitempty"`
	Tooltip   hittest.Tooltip    `json:"tooltip"`
	Hover     hittest.Hit        `json:"hover"`
}

// Visible reports whether id is a node shown under the current filter.
func (s Snapshot) Visible(id graph.NodeID) bool {
	return id >= 0 && int(id) < len(s.Nodes) && !s.Nodes[id].Hidden
}
