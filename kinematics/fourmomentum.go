// Package kinematics reconstructs four-momenta of massless constituents from
// particle lists or jet images and derives invariant masses from them.
//
// Four-momenta are go-hep fmom.PxPyPzE values. A constituent with transverse
// momentum pT at (η, φ) maps to
//
//	E = pT·cosh η,  px = pT·cos φ,  py = pT·sin φ,  pz = pT·sinh η
//
// and sums over constituents are plain component-wise sums.
package kinematics

import (
	"math"

	"go-hep.org/x/hep/fmom"

	"github.com/YuminosukeSato/jetscope/core/parallel"
	"github.com/YuminosukeSato/jetscope/event"
)

// particleThreshold is the particle count above which FromParticles splits
// the list across workers. Single jets stay well below it; flattened events
// with pileup do not.
const particleThreshold = 4096

// FromPtEtaPhi returns the four-momentum of a massless constituent.
func FromPtEtaPhi(pt, eta, phi float64) fmom.PxPyPzE {
	return fmom.NewPxPyPzE(
		pt*math.Cos(phi),
		pt*math.Sin(phi),
		pt*math.Sinh(eta),
		pt*math.Cosh(eta),
	)
}

// FromParticle returns the four-momentum of p.
func FromParticle(p event.Particle) fmom.PxPyPzE {
	return FromPtEtaPhi(p.Pt, p.Eta, p.Phi)
}

// FromParticles returns one four-momentum per particle, index-aligned.
func FromParticles(ps []event.Particle) []fmom.PxPyPzE {
	out := make([]fmom.PxPyPzE, len(ps))
	parallel.ParallelizeWithThreshold(len(ps), particleThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = FromParticle(ps[i])
		}
	})
	return out
}

// Add returns a+b.
func Add(a, b fmom.P4) fmom.PxPyPzE {
	return fmom.NewPxPyPzE(a.Px()+b.Px(), a.Py()+b.Py(), a.Pz()+b.Pz(), a.E()+b.E())
}

// Scale returns w·p.
func Scale(w float64, p fmom.P4) fmom.PxPyPzE {
	return fmom.NewPxPyPzE(w*p.Px(), w*p.Py(), w*p.Pz(), w*p.E())
}

// Sum returns the component-wise sum of ps. The sum of nothing is the zero vector.
func Sum(ps ...fmom.P4) fmom.PxPyPzE {
	var px, py, pz, e float64
	for _, p := range ps {
		px += p.Px()
		py += p.Py()
		pz += p.Pz()
		e += p.E()
	}
	return fmom.NewPxPyPzE(px, py, pz, e)
}

// WeightedSum returns Σ w(p)·p4(p) over the jet's particles. A weight of 0
// removes the particle, 1 keeps it unchanged.
func WeightedSum(jet event.Jet, w func(event.Particle) float64) fmom.PxPyPzE {
	var px, py, pz, e float64
	for _, p := range jet.Particles {
		wt := w(p)
		if wt == 0 {
			continue
		}
		p4 := FromParticle(p)
		px += wt * p4.Px()
		py += wt * p4.Py()
		pz += wt * p4.Pz()
		e += wt * p4.E()
	}
	return fmom.NewPxPyPzE(px, py, pz, e)
}

// Mass2 returns E² − |p|². It can be slightly negative from rounding.
func Mass2(p fmom.P4) float64 {
	e, px, py, pz := p.E(), p.Px(), p.Py(), p.Pz()
	return e*e - px*px - py*py - pz*pz
}

// InvariantMass returns √|E² − |p|²|. The absolute value absorbs the small
// negative mass-squared left by floating-point cancellation for (nearly)
// massless systems; it is not a claim that spacelike results are physical.
func InvariantMass(p fmom.P4) float64 {
	return math.Sqrt(math.Abs(Mass2(p)))
}

// JetMass returns the invariant mass of all particles of jet.
func JetMass(jet event.Jet) float64 {
	p := WeightedSum(jet, func(event.Particle) float64 { return 1 })
	return InvariantMass(&p)
}

// WrapPhis returns a copy of jet whose azimuths are shifted by ±2π wherever
// they differ from the leading particle's φ by more than thresh. It keeps a
// jet near φ = ±π contiguous.
func WrapPhis(jet event.Jet, thresh float64) event.Jet {
	out := event.Jet{Info: jet.Info, Particles: make([]event.Particle, len(jet.Particles))}
	copy(out.Particles, jet.Particles)
	if len(out.Particles) == 0 {
		return out
	}

	lead := 0
	for i, p := range out.Particles {
		if p.Pt > out.Particles[lead].Pt {
			lead = i
		}
	}
	ref := out.Particles[lead].Phi
	for i := range out.Particles {
		switch d := out.Particles[i].Phi - ref; {
		case d > thresh:
			out.Particles[i].Phi -= 2 * math.Pi
		case d < -thresh:
			out.Particles[i].Phi += 2 * math.Pi
		}
	}
	return out
}
