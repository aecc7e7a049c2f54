// Package charge computes the pT-weighted jet charge observable.
//
// The observable for a jet with constituents i is
//
//	Q_κ = Σ_i q_i · pT_i^κ / (Σ_i pT_i)^κ
//
// where q_i comes from a particle-type → charge Map. Small κ weights soft
// particles almost like a charge count; κ = 1 is the plain pT-weighted charge.
package charge

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/jetscope/core/parallel"
	"github.com/YuminosukeSato/jetscope/event"
	"github.com/YuminosukeSato/jetscope/kinematics"
	"github.com/YuminosukeSato/jetscope/pkg/errors"
	"github.com/YuminosukeSato/jetscope/pkg/log"
)

// Map is an immutable particle-type identifier → charge table.
type Map struct {
	charges map[int]int
}

// NewMap copies table into a Map. Charges must be -1, 0 or 1.
func NewMap(table map[int]int) (Map, error) {
	m := make(map[int]int, len(table))
	for id, q := range table {
		if q < -1 || q > 1 {
			return Map{}, errors.NewValidationError("charge", "must be -1, 0 or 1", q)
		}
		m[id] = q
	}
	return Map{charges: m}, nil
}

// DefaultMap returns the table of the stable final-state species:
// e, μ, γ, π0, K0L, π±, K±, n, p and their antiparticles.
func DefaultMap() Map {
	return Map{charges: map[int]int{
		11: -1, -11: 1,
		13: -1, -13: 1,
		22: 0, -22: 0,
		111: 0, -111: 0,
		130: 0, -130: 0,
		211: 1, -211: -1,
		321: 1, -321: -1,
		2112: 0, -2112: 0,
		2212: 1, -2212: -1,
	}}
}

// Charge returns the charge of id, or an UnmappedParticleError.
func (m Map) Charge(id int) (int, error) {
	q, ok := m.charges[id]
	if !ok {
		return 0, errors.NewUnmappedParticleError(id)
	}
	return q, nil
}

// Len returns the number of entries.
func (m Map) Len() int { return len(m.charges) }

// Observable computes jet charges against a fixed Map.
type Observable struct {
	charges   Map
	threshold int
	logger    log.Logger
}

// Option configures an Observable.
type Option func(*Observable)

// WithParallelThreshold sets the jet count above which JetCharges fans out.
func WithParallelThreshold(n int) Option {
	return func(o *Observable) {
		o.threshold = n
	}
}

// WithLogger replaces the component logger.
func WithLogger(l log.Logger) Option {
	return func(o *Observable) {
		o.logger = l
	}
}

// NewObservable returns an Observable using m.
func NewObservable(m Map, opts ...Option) *Observable {
	o := &Observable{
		charges:   m,
		threshold: parallel.DefaultThreshold,
		logger:    log.GetLoggerWithName("charge"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func validateKappa(kappa float64) error {
	if !(kappa > 0) || math.IsInf(kappa, 0) {
		return errors.NewValidationError("kappa", "must be a finite positive number", kappa)
	}
	return nil
}

// JetCharge returns Q_κ for jet. Every particle ID must be in the Map and the
// jet pT must be positive.
func (o *Observable) JetCharge(jet event.Jet, kappa float64) (float64, error) {
	if err := validateKappa(kappa); err != nil {
		return 0, err
	}
	return o.jetCharge(jet, kappa)
}

func (o *Observable) jetCharge(jet event.Jet, kappa float64) (float64, error) {
	jetPt := jet.Pt()
	if jetPt <= 0 {
		return 0, errors.NewZeroNormalizationError("JetCharge", "jet pT")
	}
	norm := math.Pow(jetPt, kappa)

	var q float64
	for _, p := range jet.Particles {
		c, err := o.charges.Charge(p.ID)
		if err != nil {
			return 0, err
		}
		if c == 0 {
			continue
		}
		q += float64(c) * math.Pow(p.Pt, kappa) / norm
	}
	if err := errors.CheckScalar("JetCharge", q, -1); err != nil {
		return 0, err
	}
	return q, nil
}

// JetCharges computes Q_κ for every jet. Results are index-aligned with jets;
// the first failing jet aborts the call.
func (o *Observable) JetCharges(jets []event.Jet, kappa float64) ([]float64, error) {
	if err := validateKappa(kappa); err != nil {
		return nil, err
	}
	start := time.Now()

	out := make([]float64, len(jets))
	err := parallel.ForEach(len(jets), o.threshold, log.OperationJetCharge, func(i int) error {
		q, err := o.jetCharge(jets[i], kappa)
		if err != nil {
			return errors.Wrapf(err, "jet %d", i)
		}
		out[i] = q
		return nil
	})
	if err != nil {
		o.logger.Error("jet charge failed", err, log.KappaKey, kappa)
		return nil, err
	}

	o.logger.Debug("jet charges computed",
		log.OperationKey, log.OperationJetCharge,
		log.SamplesKey, len(jets),
		log.KappaKey, kappa,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return out, nil
}

// ChargeImage deposits every constituent's term of Q_κ, q_i·pT_i^κ/(Σ pT)^κ,
// into an npix x npix grid around center. When the whole jet falls inside the
// window the pixels sum to JetCharge.
func (o *Observable) ChargeImage(jet event.Jet, center event.Center, npix int, width float64, layout kinematics.Layout, kappa float64) (*mat.Dense, error) {
	if err := validateKappa(kappa); err != nil {
		return nil, err
	}
	jetPt := jet.Pt()
	if jetPt <= 0 {
		return nil, errors.NewZeroNormalizationError("ChargeImage", "jet pT")
	}
	for _, p := range jet.Particles {
		if _, err := o.charges.Charge(p.ID); err != nil {
			return nil, err
		}
	}
	norm := math.Pow(jetPt, kappa)
	return kinematics.Pixelate(jet, center, npix, width, layout, func(p event.Particle) float64 {
		q, _ := o.charges.Charge(p.ID)
		return float64(q) * math.Pow(p.Pt, kappa) / norm
	})
}
