package kinematics

import (
	"math"
	"sort"

	"go-hep.org/x/hep/fmom"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/jetscope/event"
	"github.com/YuminosukeSato/jetscope/pkg/errors"
)

// Layout selects which image axis carries η.
type Layout int

const (
	// EtaRows maps the row index to η and the column index to φ.
	EtaRows Layout = iota
	// PhiRows maps the row index to φ and the column index to η.
	PhiRows
)

// PixelOffsets returns the offset of every pixel center from the jet axis
// along one image axis: (k − ⌊n/2⌋)/n · width for k in [0, n).
func PixelOffsets(n int, width float64) []float64 {
	half := math.Floor(float64(n) / 2)
	out := make([]float64, n)
	for k := range out {
		out[k] = (float64(k) - half) / float64(n) * width
	}
	return out
}

func squareSide(img mat.Matrix) (int, error) {
	if img == nil {
		return 0, errors.NewValueError("FromImage", "nil image")
	}
	r, c := img.Dims()
	if r != c {
		return 0, errors.Wrapf(errors.ErrNonSquareImage, "%dx%d", r, c)
	}
	return r, nil
}

// FromImage sums the four-momenta of all nonzero pixels of a single-channel
// image, treating each pixel value as the pT of a massless constituent at
// the pixel center (row → η, column → φ). Zero pixels contribute nothing and
// are skipped.
func FromImage(img mat.Matrix, center event.Center, width float64) (fmom.PxPyPzE, error) {
	return FromImageLayout(img, center, width, EtaRows)
}

// FromImageLayout is FromImage with an explicit axis layout.
func FromImageLayout(img mat.Matrix, center event.Center, width float64, layout Layout) (fmom.PxPyPzE, error) {
	n, err := squareSide(img)
	if err != nil {
		return fmom.PxPyPzE{}, err
	}
	offsets := PixelOffsets(n, width)

	var px, py, pz, e float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			pt := img.At(i, j)
			if pt == 0 {
				continue
			}
			eta, phi := center.Eta+offsets[i], center.Phi+offsets[j]
			if layout == PhiRows {
				eta, phi = center.Eta+offsets[j], center.Phi+offsets[i]
			}
			px += pt * math.Cos(phi)
			py += pt * math.Sin(phi)
			pz += pt * math.Sinh(eta)
			e += pt * math.Cosh(eta)
		}
	}
	return fmom.NewPxPyPzE(px, py, pz, e), nil
}

// ImageMass returns the invariant mass reconstructed from a single-channel image.
func ImageMass(img mat.Matrix, center event.Center, width float64) (float64, error) {
	p, err := FromImage(img, center, width)
	if err != nil {
		return 0, err
	}
	return InvariantMass(&p), nil
}

// PixelParticle is a nonzero pixel expressed as (η offset, φ offset, pT).
type PixelParticle struct {
	Eta float64
	Phi float64
	Pt  float64
}

// ImageParticles lists the positive pixels of img in row-major order with
// their offsets from the jet axis. An image with no positive pixel yields a
// single zero entry so every image maps to a non-empty list.
func ImageParticles(img mat.Matrix, width float64, layout Layout) ([]PixelParticle, error) {
	n, err := squareSide(img)
	if err != nil {
		return nil, err
	}
	offsets := PixelOffsets(n, width)

	var out []PixelParticle
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			pt := img.At(i, j)
			if pt <= 0 {
				continue
			}
			pp := PixelParticle{Eta: offsets[i], Phi: offsets[j], Pt: pt}
			if layout == PhiRows {
				pp.Eta, pp.Phi = offsets[j], offsets[i]
			}
			out = append(out, pp)
		}
	}
	if len(out) == 0 {
		out = []PixelParticle{{}}
	}
	return out, nil
}

// NF returns the zero-based rank, in descending pixel-pT order, of the pixel
// at which the cumulative pT fraction first exceeds f. With f = 0.95 this is
// the N95 observable. An empty image returns 0.
func NF(img mat.Matrix, f float64) (int, error) {
	if f <= 0 || f > 1 {
		return 0, errors.NewValidationError("f", "must be in (0, 1]", f)
	}
	r, c := img.Dims()
	vals := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			vals = append(vals, img.At(i, j))
		}
	}
	total := floats.Sum(vals)
	if total == 0 {
		return 0, nil
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(vals)))
	floats.Scale(1/total, vals)
	floats.CumSum(vals, vals)
	for k, v := range vals {
		if v > f {
			return k, nil
		}
	}
	for k, v := range vals {
		if v == f {
			return k, nil
		}
	}
	return 0, nil
}
