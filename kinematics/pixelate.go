package kinematics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/jetscope/event"
	"github.com/YuminosukeSato/jetscope/pkg/errors"
)

// Centroid returns the pT-weighted mean (η, φ) of the jet constituents.
// φ is averaged as given, so wrap the jet first when it straddles ±π.
func Centroid(jet event.Jet) (event.Center, error) {
	var sum, eta, phi float64
	for _, p := range jet.Particles {
		sum += p.Pt
		eta += p.Pt * p.Eta
		phi += p.Pt * p.Phi
	}
	if sum <= 0 {
		return event.Center{}, errors.NewZeroNormalizationError("Centroid", "jet pT")
	}
	return event.Center{Eta: eta / sum, Phi: phi / sum}, nil
}

// pixelIndex inverts PixelOffsets: it returns the pixel whose center is
// nearest to offset, or -1 outside the window.
func pixelIndex(offset float64, n int, width float64) int {
	k := int(math.Round(offset*float64(n)/width + math.Floor(float64(n)/2)))
	if k < 0 || k >= n {
		return -1
	}
	return k
}

// Pixelate deposits w(p) of every constituent into an npix x npix grid of
// the given width centered on center. A nil w deposits pT. Constituents
// outside the window are dropped.
func Pixelate(jet event.Jet, center event.Center, npix int, width float64, layout Layout, w func(event.Particle) float64) (*mat.Dense, error) {
	if npix <= 0 {
		return nil, errors.NewValidationError("pixels", "must be positive", npix)
	}
	if !(width > 0) {
		return nil, errors.NewValidationError("width", "must be positive", width)
	}
	if w == nil {
		w = func(p event.Particle) float64 { return p.Pt }
	}

	img := mat.NewDense(npix, npix, nil)
	for _, p := range jet.Particles {
		i := pixelIndex(p.Eta-center.Eta, npix, width)
		j := pixelIndex(p.Phi-center.Phi, npix, width)
		if i < 0 || j < 0 {
			continue
		}
		if layout == PhiRows {
			i, j = j, i
		}
		img.Set(i, j, img.At(i, j)+w(p))
	}
	return img, nil
}
