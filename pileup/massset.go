package pileup

import (
	"sort"

	"go-hep.org/x/hep/hbook"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/jetscope/pkg/errors"
)

// Policy names a particle or pixel selection used to rebuild a jet mass.
type Policy string

const (
	// Truth keeps only hard-scatter particles (or the charged-LV plus
	// neutral-LV channels of an image).
	Truth Policy = "truth"
	// NoMitigation keeps everything, pileup included.
	NoMitigation Policy = "none"
	// SoftKiller keeps particles that survived SoftKiller.
	SoftKiller Policy = "softkiller"
	// PUPPI scales every particle by its PUPPI weight.
	PUPPI Policy = "puppi"
	// Corrected replaces the neutral channel of an image with a model prediction.
	Corrected Policy = "corrected"
)

// MassSet holds one mass sequence per policy. All sequences are aligned by
// sample index (or pair index for dijet sets).
type MassSet struct {
	// Policies lists the sequences in the order they were computed.
	Policies []Policy
	masses   map[Policy][]float64
}

func newMassSet(policies []Policy, masses [][]float64) *MassSet {
	s := &MassSet{
		Policies: append([]Policy(nil), policies...),
		masses:   make(map[Policy][]float64, len(policies)),
	}
	for k, p := range policies {
		s.masses[p] = masses[k]
	}
	return s
}

// Masses returns the sequence for p.
func (s *MassSet) Masses(p Policy) ([]float64, bool) {
	m, ok := s.masses[p]
	return m, ok
}

// Has reports whether the set carries a sequence for p.
func (s *MassSet) Has(p Policy) bool {
	_, ok := s.masses[p]
	return ok
}

// Len returns the number of samples (or pairs) per sequence.
func (s *MassSet) Len() int {
	for _, m := range s.masses {
		return len(m)
	}
	return 0
}

// Histogram fills a fresh histogram with the masses of p.
func (s *MassSet) Histogram(p Policy, bins int, lo, hi float64) (*hbook.H1D, error) {
	m, ok := s.masses[p]
	if !ok {
		return nil, errors.NewValueError("MassSet.Histogram", "unknown policy "+string(p))
	}
	if bins <= 0 {
		return nil, errors.NewValidationError("bins", "must be positive", bins)
	}
	if !(hi > lo) {
		return nil, errors.NewValidationError("range", "upper edge must exceed lower edge", [2]float64{lo, hi})
	}
	h := hbook.NewH1D(bins, lo, hi)
	for _, v := range m {
		h.Fill(v, 1)
	}
	return h, nil
}

// Histograms fills one histogram per policy with a shared binning.
func (s *MassSet) Histograms(bins int, lo, hi float64) (map[Policy]*hbook.H1D, error) {
	out := make(map[Policy]*hbook.H1D, len(s.Policies))
	for _, p := range s.Policies {
		h, err := s.Histogram(p, bins, lo, hi)
		if err != nil {
			return nil, err
		}
		out[p] = h
	}
	return out, nil
}

// Summary describes one mass distribution.
type Summary struct {
	Policy Policy
	N      int
	Mean   float64
	StdDev float64
	Median float64
}

// Summarize returns per-policy summaries in Policies order. Empty sequences
// yield a zero Summary with N = 0.
func (s *MassSet) Summarize() []Summary {
	out := make([]Summary, 0, len(s.Policies))
	for _, p := range s.Policies {
		m := s.masses[p]
		sum := Summary{Policy: p, N: len(m)}
		if len(m) > 0 {
			sorted := append([]float64(nil), m...)
			sort.Float64s(sorted)
			sum.Mean = stat.Mean(sorted, nil)
			sum.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
			if len(m) > 1 {
				sum.StdDev = stat.StdDev(sorted, nil)
			}
		}
		out = append(out, sum)
	}
	return out
}
