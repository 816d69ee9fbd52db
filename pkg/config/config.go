package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-netmap/pkg/validation"
)

// Config holds every tunable of the explorer. Zero sections in a YAML file
// keep the values from Default.
type Config struct {
	Data      DataConfig      `yaml:"data"`
	Encoding  EncodingConfig  `yaml:"encoding"`
	Viewport  ViewportConfig  `yaml:"viewport"`
	Selection SelectionConfig `yaml:"selection"`
	Tooltip   TooltipConfig   `yaml:"tooltip"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// DataConfig selects where the dataset files come from.
type DataConfig struct {
	Source  string        `yaml:"source"` // "dir", "http", "s3"
	Dir     string        `yaml:"dir"`
	BaseURL string        `yaml:"base_url"`
	S3      S3Config      `yaml:"s3"`
	Files   FileNames     `yaml:"files"`
	Timeout time.Duration `yaml:"timeout"`
}

// S3Config addresses a bucket holding the dataset.
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// FileNames are object names relative to the data source.
type FileNames struct {
	Matrix           string `yaml:"matrix"`
	LinkTypes        string `yaml:"link_types"`
	Temporal         string `yaml:"temporal"`
	Descriptions     string `yaml:"descriptions"`
	LongDescriptions string `yaml:"long_descriptions"`
	Positions        string `yaml:"positions"` // optional
}

// EncodingConfig drives node size and color.
type EncodingConfig struct {
	Mode         string  `yaml:"mode"` // "flat" or "gradient"
	BaseSize     float64 `yaml:"base_size"`
	SizeFactor   float64 `yaml:"size_factor"`
	DefaultColor string  `yaml:"default_color"`
	GradientFrom string  `yaml:"gradient_from"`
	GradientTo   string  `yaml:"gradient_to"`

	FocusColor       string `yaml:"focus_color"`
	FocusHoverColor  string `yaml:"focus_hover_color"`
	FocusSelectColor string `yaml:"focus_select_color"`
}

// ViewportConfig bounds the camera.
type ViewportConfig struct {
	MinScale           float64       `yaml:"min_scale"`
	MaxScale           float64       `yaml:"max_scale"`
	PanLimitFactor     float64       `yaml:"pan_limit_factor"`
	FitZoomOut         float64       `yaml:"fit_zoom_out"`
	FilterZoomOut      float64       `yaml:"filter_zoom_out"`
	FitMargin          float64       `yaml:"fit_margin"`
	ClampDuration      time.Duration `yaml:"clamp_duration"`
	PanelWidthFraction float64       `yaml:"panel_width_fraction"`
}

// SelectionConfig controls the hide-then-show panel swap.
type SelectionConfig struct {
	SettleDelay time.Duration `yaml:"settle_delay"`
}

// TooltipConfig controls the edge tooltip loop.
type TooltipConfig struct {
	FrameInterval time.Duration `yaml:"frame_interval"`
	FadeDuration  time.Duration `yaml:"fade_duration"`
	Margin        float64       `yaml:"margin"`
	EdgeTolerance float64       `yaml:"edge_tolerance"`
	// size of one character of tooltip text, for overflow checks
	CharWidth  float64 `yaml:"char_width"`
	LineHeight float64 `yaml:"line_height"`
}

// PhysicsConfig holds the repulsion solver parameters.
type PhysicsConfig struct {
	InitialLayout           string  `yaml:"initial_layout"` // "random", "circular" or "force"
	NodeDistance            float64 `yaml:"node_distance"`
	CentralGravity          float64 `yaml:"central_gravity"`
	SpringLength            float64 `yaml:"spring_length"`
	SpringConstant          float64 `yaml:"spring_constant"`
	Damping                 float64 `yaml:"damping"`
	TimeStep                float64 `yaml:"time_step"`
	MaxVelocity             float64 `yaml:"max_velocity"`
	MinVelocity             float64 `yaml:"min_velocity"`
	StabilizationIterations int     `yaml:"stabilization_iterations"`
	RandomizeIterations     int     `yaml:"randomize_iterations"`
	RandomExtent            float64 `yaml:"random_extent"`
}

// LoggingConfig selects level and destination.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// MetricsConfig enables the optional prometheus endpoint.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration matching the shipped visual design.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Source: "dir",
			Dir:    "./public/data",
			Files: FileNames{
				Matrix:           "df_temas_matrix.json",
				LinkTypes:        "df_tipo_vinculo.json",
				Temporal:         "df_temporalidad.json",
				Descriptions:     "df_descripcion.json",
				LongDescriptions: "df_descripcion_larga.json",
				Positions:        "node_positions.json",
			},
			Timeout: 30 * time.Second,
		},
		Encoding: EncodingConfig{
			Mode:             "flat",
			BaseSize:         5,
			SizeFactor:       3.5,
			DefaultColor:     "#186170",
			GradientFrom:     "#186170",
			GradientTo:       "#e63946",
			FocusColor:       "#e63946",
			FocusHoverColor:  "#ef6f7a",
			FocusSelectColor: "#b32632",
		},
		Viewport: ViewportConfig{
			MinScale:           0.5,
			MaxScale:           2.0,
			PanLimitFactor:     0.5,
			FitZoomOut:         0.7,
			FilterZoomOut:      0.8,
			FitMargin:          40,
			ClampDuration:      200 * time.Millisecond,
			PanelWidthFraction: 0.25,
		},
		Selection: SelectionConfig{
			SettleDelay: 50 * time.Millisecond,
		},
		Tooltip: TooltipConfig{
			FrameInterval: 16 * time.Millisecond,
			FadeDuration:  200 * time.Millisecond,
			Margin:        10,
			EdgeTolerance: 3,
			CharWidth:     8,
			LineHeight:    16,
		},
		Physics: PhysicsConfig{
			InitialLayout:           "random",
			NodeDistance:            130,
			CentralGravity:          0.2,
			SpringLength:            300,
			SpringConstant:          0.01,
			Damping:                 0.09,
			TimeStep:                0.5,
			MaxVelocity:             50,
			MinVelocity:             0.1,
			StabilizationIterations: 200,
			RandomizeIterations:     100,
			RandomExtent:            500,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults with environment overrides applied.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if dir := os.Getenv("NETMAP_DATA_DIR"); dir != "" {
		c.Data.Source = "dir"
		c.Data.Dir = dir
	}
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		c.Logging.Level = lvl
	}
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks every section and returns all problems joined.
func (c *Config) Validate() error {
	data := validation.NewConfigValidator("data").
		OneOf("source", c.Data.Source, []string{"dir", "http", "s3"}).
		When(c.Data.Source == "dir", func(cv *validation.ConfigValidator) {
			cv.Required("dir", c.Data.Dir)
		}).
		When(c.Data.Source == "http", func(cv *validation.ConfigValidator) {
			cv.Required("base_url", c.Data.BaseURL)
		}).
		When(c.Data.Source == "s3", func(cv *validation.ConfigValidator) {
			cv.Required("s3.bucket", c.Data.S3.Bucket)
		}).
		Required("files.matrix", c.Data.Files.Matrix).
		Required("files.link_types", c.Data.Files.LinkTypes).
		Required("files.temporal", c.Data.Files.Temporal).
		Required("files.descriptions", c.Data.Files.Descriptions).
		Required("files.long_descriptions", c.Data.Files.LongDescriptions)

	enc := validation.NewConfigValidator("encoding").
		OneOf("mode", c.Encoding.Mode, []string{"flat", "gradient"}).
		PositiveFloat("base_size", c.Encoding.BaseSize).
		NonNegativeFloat("size_factor", c.Encoding.SizeFactor).
		HexColor("default_color", c.Encoding.DefaultColor).
		HexColor("gradient_from", c.Encoding.GradientFrom).
		HexColor("gradient_to", c.Encoding.GradientTo).
		HexColor("focus_color", c.Encoding.FocusColor).
		HexColor("focus_hover_color", c.Encoding.FocusHoverColor).
		HexColor("focus_select_color", c.Encoding.FocusSelectColor)

	vp := validation.NewConfigValidator("viewport").
		PositiveFloat("min_scale", c.Viewport.MinScale).
		Less("scale", c.Viewport.MinScale, c.Viewport.MaxScale).
		PositiveFloat("pan_limit_factor", c.Viewport.PanLimitFactor).
		RangeFloat("fit_zoom_out", c.Viewport.FitZoomOut, 0.05, 1).
		RangeFloat("filter_zoom_out", c.Viewport.FilterZoomOut, 0.05, 1).
		NonNegativeFloat("fit_margin", c.Viewport.FitMargin).
		RangeDuration("clamp_duration", c.Viewport.ClampDuration, 0, 5*time.Second).
		RangeFloat("panel_width_fraction", c.Viewport.PanelWidthFraction, 0, 0.9)

	sel := validation.NewConfigValidator("selection").
		RangeDuration("settle_delay", c.Selection.SettleDelay, 0, 2*time.Second)

	tip := validation.NewConfigValidator("tooltip").
		RangeDuration("frame_interval", c.Tooltip.FrameInterval, time.Millisecond, time.Second).
		RangeDuration("fade_duration", c.Tooltip.FadeDuration, 0, 5*time.Second).
		NonNegativeFloat("margin", c.Tooltip.Margin).
		NonNegativeFloat("edge_tolerance", c.Tooltip.EdgeTolerance).
		PositiveFloat("char_width", c.Tooltip.CharWidth).
		PositiveFloat("line_height", c.Tooltip.LineHeight)

	phys := validation.NewConfigValidator("physics").
		OneOf("initial_layout", c.Physics.InitialLayout, []string{"random", "circular", "force"}).
		PositiveFloat("node_distance", c.Physics.NodeDistance).
		NonNegativeFloat("central_gravity", c.Physics.CentralGravity).
		NonNegativeFloat("spring_length", c.Physics.SpringLength).
		NonNegativeFloat("spring_constant", c.Physics.SpringConstant).
		RangeFloat("damping", c.Physics.Damping, 0, 1).
		PositiveFloat("time_step", c.Physics.TimeStep).
		PositiveFloat("max_velocity", c.Physics.MaxVelocity).
		NonNegativeFloat("min_velocity", c.Physics.MinVelocity).
		Positive("stabilization_iterations", c.Physics.StabilizationIterations).
		Positive("randomize_iterations", c.Physics.RandomizeIterations).
		PositiveFloat("random_extent", c.Physics.RandomExtent)

	logs := validation.NewConfigValidator("logging").
		OneOf("level", c.Logging.Level, []string{"debug", "info", "warn", "warning", "error",
			"DEBUG", "INFO", "WARN", "WARNING", "ERROR"})

	return errors.Join(
		data.Validate(), enc.Validate(), vp.Validate(), sel.Validate(),
		tip.Validate(), phys.Validate(), logs.Validate(),
	)
}
