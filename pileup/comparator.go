// Package pileup compares jet masses reconstructed under different pileup
// selection policies.
//
// Particle-level policies are weight functions: a particle contributes
// w·p4 to the jet four-momentum, with w ∈ {0, 1} for selections and a real
// weight for PUPPI. Image-level policies combine channels of a jet image and
// optionally a model's prediction of the hard-scatter neutral deposit.
//
// Every mass set is index-aligned with its input. Dijet sets pair samples
// (2k, 2k+1) and sum both four-momenta before taking the mass.
package pileup

import (
	"time"

	"go-hep.org/x/hep/fmom"

	"github.com/YuminosukeSato/jetscope/core/parallel"
	"github.com/YuminosukeSato/jetscope/event"
	"github.com/YuminosukeSato/jetscope/kinematics"
	"github.com/YuminosukeSato/jetscope/pkg/errors"
	"github.com/YuminosukeSato/jetscope/pkg/log"
)

// Weight returns the factor a particle's four-momentum is scaled by.
type Weight func(event.Particle) float64

// ParticlePolicy binds a policy name to its weight function.
type ParticlePolicy struct {
	Name   Policy
	Weight Weight
}

// DefaultParticlePolicies returns truth, no mitigation, SoftKiller and PUPPI.
func DefaultParticlePolicies() []ParticlePolicy {
	return []ParticlePolicy{
		{Truth, func(p event.Particle) float64 { return indicator(p.HardScatter()) }},
		{NoMitigation, func(event.Particle) float64 { return 1 }},
		{SoftKiller, func(p event.Particle) float64 { return indicator(p.SoftKiller) }},
		{PUPPI, func(p event.Particle) float64 { return p.PUPPI }},
	}
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Comparator rebuilds masses under each policy.
type Comparator struct {
	policies  []ParticlePolicy
	layout    kinematics.Layout
	threshold int
	logger    log.Logger
}

// Option configures a Comparator.
type Option func(*Comparator)

// WithParticlePolicy appends a particle policy, for example a second
// mitigation algorithm's survival flag.
func WithParticlePolicy(name Policy, w Weight) Option {
	return func(c *Comparator) {
		c.policies = append(c.policies, ParticlePolicy{Name: name, Weight: w})
	}
}

// WithLayout sets the image axis layout.
func WithLayout(l kinematics.Layout) Option {
	return func(c *Comparator) {
		c.layout = l
	}
}

// WithParallelThreshold sets the sample count above which work fans out.
func WithParallelThreshold(n int) Option {
	return func(c *Comparator) {
		c.threshold = n
	}
}

// WithLogger replaces the component logger.
func WithLogger(l log.Logger) Option {
	return func(c *Comparator) {
		c.logger = l
	}
}

// NewComparator returns a Comparator with the default particle policies.
func NewComparator(opts ...Option) *Comparator {
	c := &Comparator{
		policies:  DefaultParticlePolicies(),
		layout:    kinematics.EtaRows,
		threshold: parallel.DefaultThreshold,
		logger:    log.GetLoggerWithName("pileup"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Policies returns the particle policy names in evaluation order.
func (c *Comparator) Policies() []Policy {
	out := make([]Policy, len(c.policies))
	for k, p := range c.policies {
		out[k] = p.Name
	}
	return out
}

// jetP4s returns p4s[k][i], the four-momentum of jet i under policy k.
func (c *Comparator) jetP4s(op string, jets []event.Jet) ([][]fmom.PxPyPzE, error) {
	p4s := make([][]fmom.PxPyPzE, len(c.policies))
	for k := range p4s {
		p4s[k] = make([]fmom.PxPyPzE, len(jets))
	}
	err := parallel.ForEach(len(jets), c.threshold, op, func(i int) error {
		for k, pol := range c.policies {
			p4s[k][i] = kinematics.WeightedSum(jets[i], pol.Weight)
		}
		return nil
	})
	if err != nil {
		c.logger.Error("jet four-momenta failed", err, log.OperationKey, op)
		return nil, err
	}
	return p4s, nil
}

// JetMasses returns one mass per jet for every particle policy.
func (c *Comparator) JetMasses(jets []event.Jet) (*MassSet, error) {
	if len(jets) == 0 {
		return nil, errors.NewValueError("JetMasses", "no jets")
	}
	start := time.Now()
	p4s, err := c.jetP4s(log.OperationJetMass, jets)
	if err != nil {
		return nil, err
	}
	set := newMassSet(c.Policies(), singleMasses(p4s))
	c.logDone(log.OperationJetMass, set, start)
	return set, nil
}

// DijetMasses returns one mass per consecutive jet pair for every particle
// policy. An odd trailing jet is dropped with a DroppedSampleWarning.
func (c *Comparator) DijetMasses(jets []event.Jet) (*MassSet, error) {
	if len(jets) < 2 {
		return nil, errors.NewValueError("DijetMasses", "need at least two jets")
	}
	start := time.Now()
	c.warnOdd(log.OperationDijetMass, len(jets))
	p4s, err := c.jetP4s(log.OperationDijetMass, jets[:len(jets)&^1])
	if err != nil {
		return nil, err
	}
	set := newMassSet(c.Policies(), pairMasses(p4s))
	c.logDone(log.OperationDijetMass, set, start)
	return set, nil
}

func (c *Comparator) warnOdd(op string, n int) {
	if n%2 == 0 {
		return
	}
	w := errors.NewDroppedSampleWarning(op, n-1, n, "no partner for the last sample")
	c.logger.Warn("dropping unpaired sample",
		log.OperationKey, op,
		log.SampleIndexKey, n-1,
		log.SamplesKey, n,
	)
	errors.Warn(w)
}

func (c *Comparator) logDone(op string, set *MassSet, start time.Time) {
	policies := make([]string, len(set.Policies))
	for k, p := range set.Policies {
		policies[k] = string(p)
	}
	c.logger.Debug("masses computed",
		log.OperationKey, op,
		log.SamplesKey, set.Len(),
		log.PolicyKey, policies,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
}

func singleMasses(p4s [][]fmom.PxPyPzE) [][]float64 {
	out := make([][]float64, len(p4s))
	for k, seq := range p4s {
		out[k] = make([]float64, len(seq))
		for i := range seq {
			out[k][i] = kinematics.InvariantMass(&seq[i])
		}
	}
	return out
}

func pairMasses(p4s [][]fmom.PxPyPzE) [][]float64 {
	out := make([][]float64, len(p4s))
	for k, seq := range p4s {
		out[k] = make([]float64, len(seq)/2)
		for j := range out[k] {
			sum := kinematics.Add(&seq[2*j], &seq[2*j+1])
			out[k][j] = kinematics.InvariantMass(&sum)
		}
	}
	return out
}
