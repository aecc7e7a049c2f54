// Package config holds the analysis parameters shared by the jetscope
// packages and commands.
//
// A Config starts from Default, can be overridden from a JSON file with Load
// (fields missing from the file keep their defaults) and adjusted in code with
// Options. Validate must pass before the values are used.
package config

import (
	"encoding/json"
	"io"
	"math"
	"os"

	"github.com/YuminosukeSato/jetscope/event"
	"github.com/YuminosukeSato/jetscope/kinematics"
	"github.com/YuminosukeSato/jetscope/pkg/errors"
	"github.com/YuminosukeSato/jetscope/pkg/log"
)

// Column presets accepted in Config.Columns.
const (
	ColumnsCharge = "charge"
	ColumnsPileup = "pileup"
)

// Image layout names accepted in ImageConfig.Layout.
const (
	LayoutEtaRows = "eta_rows"
	LayoutPhiRows = "phi_rows"
)

// ImageConfig describes the jet image grids.
type ImageConfig struct {
	// ChargedPixels is the side of the fine grid (45 for pileup images, 33 for
	// charge images).
	ChargedPixels int `json:"charged_pixels"`
	// NeutralPixels is the side of the coarse neutral grid.
	NeutralPixels int     `json:"neutral_pixels"`
	Width         float64 `json:"width"`
	Channels      int     `json:"channels"`
	Layout        string  `json:"layout"`
}

// Config is the full parameter set of an analysis run.
type Config struct {
	// Kappa is the jet-charge exponent for single evaluations.
	Kappa float64 `json:"kappa"`
	// Kappas is the grid of a rejection scan.
	Kappas []float64 `json:"kappas"`

	NumPoints int     `json:"num_points"`
	Reg       float64 `json:"reg"`
	Target    float64 `json:"target"`

	// PhiWrap is the azimuthal distance from the leading particle beyond
	// which φ is shifted by 2π.
	PhiWrap float64 `json:"phi_wrap"`

	Image ImageConfig `json:"image"`

	// Columns names the record column preset.
	Columns string `json:"columns"`

	// ParallelThreshold is the sample count above which work fans out.
	ParallelThreshold int `json:"parallel_threshold"`

	LogLevel string `json:"log_level"`

	columns *event.Columns
}

// Option adjusts a Config.
type Option func(*Config)

// WithKappa sets the jet-charge exponent.
func WithKappa(k float64) Option {
	return func(c *Config) {
		c.Kappa = k
	}
}

// WithKappas sets the scan grid.
func WithKappas(ks ...float64) Option {
	return func(c *Config) {
		c.Kappas = append([]float64(nil), ks...)
	}
}

// WithNumPoints sets the maximum number of efficiency-curve thresholds.
func WithNumPoints(n int) Option {
	return func(c *Config) {
		c.NumPoints = n
	}
}

// WithReg sets the regularization of the rejection curves.
func WithReg(reg float64) Option {
	return func(c *Config) {
		c.Reg = reg
	}
}

// WithTarget sets the signal efficiency of fixed-point lookups.
func WithTarget(t float64) Option {
	return func(c *Config) {
		c.Target = t
	}
}

// WithImage replaces the image settings.
func WithImage(img ImageConfig) Option {
	return func(c *Config) {
		c.Image = img
	}
}

// WithColumns sets a custom record layout, overriding the preset.
func WithColumns(cols event.Columns) Option {
	return func(c *Config) {
		c.columns = &cols
	}
}

// WithLogLevel sets the log level name.
func WithLogLevel(level string) Option {
	return func(c *Config) {
		c.LogLevel = level
	}
}

// Default returns the standard analysis parameters.
func Default() *Config {
	return &Config{
		Kappa:     0.2,
		Kappas:    []float64{0.1, 0.2, 0.3, 0.5, 0.7, 1.0},
		NumPoints: 1000,
		Reg:       1e-6,
		Target:    0.5,
		PhiWrap:   1.5,
		Image: ImageConfig{
			ChargedPixels: 45,
			NeutralPixels: 9,
			Width:         0.9,
			Channels:      3,
			Layout:        LayoutEtaRows,
		},
		Columns:           ColumnsPileup,
		ParallelThreshold: 256,
		LogLevel:          "info",
	}
}

// New returns Default with opts applied.
func New(opts ...Option) *Config {
	c := Default()
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load reads a JSON file over Default.
func Load(path string, opts ...Option) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open config %s", path)
	}
	defer f.Close()

	c, err := Read(f, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return c, nil
}

// Read decodes JSON over Default, applies opts and validates the result.
// Unknown keys are rejected.
func Read(r io.Reader, opts ...Option) (*Config, error) {
	c := Default()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func positiveFinite(name string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return errors.NewValidationError(name, "must be a finite positive number", v)
	}
	return nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	if err := positiveFinite("kappa", c.Kappa); err != nil {
		return err
	}
	for _, k := range c.Kappas {
		if err := positiveFinite("kappas", k); err != nil {
			return err
		}
	}
	if c.NumPoints <= 0 {
		return errors.NewValidationError("num_points", "must be positive", c.NumPoints)
	}
	if err := positiveFinite("reg", c.Reg); err != nil {
		return err
	}
	if c.Target < 0 || c.Target > 1 || math.IsNaN(c.Target) {
		return errors.NewValidationError("target", "must be in [0, 1]", c.Target)
	}
	if err := positiveFinite("phi_wrap", c.PhiWrap); err != nil {
		return err
	}
	if err := c.Image.validate(); err != nil {
		return err
	}
	if _, err := c.EventColumns(); err != nil {
		return err
	}
	if c.ParallelThreshold < 0 {
		return errors.NewValidationError("parallel_threshold", "must not be negative", c.ParallelThreshold)
	}
	if _, ok := log.ParseLevel(c.LogLevel); !ok {
		return errors.NewValidationError("log_level", "unknown level", c.LogLevel)
	}
	return nil
}

func (img ImageConfig) validate() error {
	if img.ChargedPixels <= 0 {
		return errors.NewValidationError("image.charged_pixels", "must be positive", img.ChargedPixels)
	}
	if img.NeutralPixels <= 0 || img.ChargedPixels%img.NeutralPixels != 0 {
		return errors.NewValidationError("image.neutral_pixels", "must be positive and divide charged_pixels", img.NeutralPixels)
	}
	if err := positiveFinite("image.width", img.Width); err != nil {
		return err
	}
	if img.Channels <= 0 {
		return errors.NewValidationError("image.channels", "must be positive", img.Channels)
	}
	if _, err := img.KinematicsLayout(); err != nil {
		return err
	}
	return nil
}

// KinematicsLayout maps the layout name.
func (img ImageConfig) KinematicsLayout() (kinematics.Layout, error) {
	switch img.Layout {
	case "", LayoutEtaRows:
		return kinematics.EtaRows, nil
	case LayoutPhiRows:
		return kinematics.PhiRows, nil
	}
	return 0, errors.NewValidationError("image.layout", "must be eta_rows or phi_rows", img.Layout)
}

// DownsampleFactor is the ratio of the fine to the coarse grid.
func (img ImageConfig) DownsampleFactor() int {
	return img.ChargedPixels / img.NeutralPixels
}

// EventColumns returns the custom layout if one was set, else the preset.
func (c *Config) EventColumns() (event.Columns, error) {
	if c.columns != nil {
		return *c.columns, nil
	}
	switch c.Columns {
	case ColumnsCharge:
		return event.ChargeColumns, nil
	case ColumnsPileup:
		return event.PileupColumns, nil
	}
	return event.Columns{}, errors.NewValidationError("columns", "must be charge or pileup", c.Columns)
}

// Level returns the parsed log level, falling back to info.
func (c *Config) Level() log.Level {
	if l, ok := log.ParseLevel(c.LogLevel); ok {
		return l
	}
	return log.LevelInfo
}
