// Package event holds the jet data model shared by the charge, kinematics and
// pileup packages: particles, jets, events and multi-channel jet images.
//
// All values are built once by a reader or collaborator and treated as
// read-only afterwards; nothing in jetscope mutates a Jet or Image it is given.
package event

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/jetscope/pkg/errors"
)

// HardScatterVertex is the vertex index of particles from the primary collision.
// Pileup particles carry the index (>= 0) of their secondary vertex.
const HardScatterVertex = -1

// Particle is a single massless constituent.
type Particle struct {
	Pt  float64
	Eta float64
	Phi float64

	// ID is the PDG particle-type identifier.
	ID int

	Charged bool

	// Vertex is HardScatterVertex for particles from the primary collision.
	Vertex int

	// PUPPI is the per-particle pileup weight in [0,1].
	PUPPI float64

	// SoftKiller reports whether the particle survived SoftKiller.
	SoftKiller bool
}

// HardScatter reports whether the particle is associated with the primary vertex.
func (p Particle) HardScatter() bool {
	return p.Vertex == HardScatterVertex
}

// JetInfo is the summary carried alongside a jet record.
type JetInfo struct {
	Index int
	NPU   int
	Rho   float64
	Area  float64
	Pt    float64
	Eta   float64
	Phi   float64
	Mass  float64
}

// Jet is an ordered collection of particles.
type Jet struct {
	Particles []Particle
	Info      JetInfo
}

// Pt returns the scalar sum of constituent transverse momenta.
func (j Jet) Pt() float64 {
	var sum float64
	for _, p := range j.Particles {
		sum += p.Pt
	}
	return sum
}

// Len returns the number of particles.
func (j Jet) Len() int { return len(j.Particles) }

// Event is one input record: its jets plus event-level summary numbers.
type Event struct {
	Jets []Jet

	// NPU is the pileup multiplicity.
	NPU int

	// Rho is the underlying event density.
	Rho float64

	// Summary keeps the raw numbers of the record header.
	Summary []float64
}

// Center is the jet direction an image is centered on.
type Center struct {
	Eta float64 `json:"eta"`
	Phi float64 `json:"phi"`
}

// Image is a multi-channel pT deposition map over a square eta-phi window.
// Width is the full window width shared by all channels; channels may have
// different pixel counts only where a caller builds them that way (the
// neutral channel in the pileup images is coarser than the charged ones).
type Image struct {
	Channels []*mat.Dense
	Center   Center
	Width    float64
}

// Pixels returns the side length of channel c.
func (img Image) Pixels(c int) int {
	r, _ := img.Channels[c].Dims()
	return r
}

// Validate checks that the image has at least one channel and that every
// channel is square.
func (img Image) Validate() error {
	if len(img.Channels) == 0 {
		return errors.NewValueError("Image.Validate", "image has no channels")
	}
	if img.Width <= 0 {
		return errors.NewValidationError("width", "must be positive", img.Width)
	}
	for c, ch := range img.Channels {
		if ch == nil {
			return errors.NewValueError("Image.Validate", "nil channel")
		}
		r, cols := ch.Dims()
		if r != cols {
			return errors.Wrapf(errors.ErrNonSquareImage, "channel %d: %dx%d", c, r, cols)
		}
	}
	return nil
}

// ValidateShape checks that the image has exactly channels channels of
// pixels x pixels each. Datasets fix both numbers.
func (img Image) ValidateShape(channels, pixels int) error {
	if err := img.Validate(); err != nil {
		return err
	}
	if len(img.Channels) != channels {
		return errors.NewDimensionError("Image.ValidateShape", channels, len(img.Channels), 1)
	}
	for c := range img.Channels {
		if got := img.Pixels(c); got != pixels {
			return errors.NewDimensionError("Image.ValidateShape", pixels, got, 0)
		}
	}
	return nil
}
