package pileup

import (
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/jetscope/event"
	"github.com/YuminosukeSato/jetscope/kinematics"
	"github.com/YuminosukeSato/jetscope/pkg/errors"
	"github.com/YuminosukeSato/jetscope/pkg/log"
)

func hardScatter(pt, eta, phi float64) event.Particle {
	return event.Particle{Pt: pt, Eta: eta, Phi: phi, Vertex: event.HardScatterVertex, PUPPI: 1, SoftKiller: true, Charged: true}
}

func pileupParticle(pt, eta, phi, puppi float64, sk bool) event.Particle {
	return event.Particle{Pt: pt, Eta: eta, Phi: phi, Vertex: 3, PUPPI: puppi, SoftKiller: sk}
}

func captureLogs(t *testing.T) *log.TestLogger {
	t.Helper()
	provider, logger := log.NewTestLoggerProvider(log.LevelDebug)
	log.SetProvider(provider)
	t.Cleanup(func() { log.SetProvider(log.NewZerologProvider(os.Stderr, log.LevelInfo)) })
	return logger
}

func TestJetMasses(t *testing.T) {
	jet := event.Jet{Particles: []event.Particle{
		hardScatter(50, 0, 0),
		pileupParticle(10, 0.5, 1, 0.2, false),
	}}
	c := NewComparator()

	set, err := c.JetMasses([]event.Jet{jet})
	require.NoError(t, err)
	assert.Equal(t, []Policy{Truth, NoMitigation, SoftKiller, PUPPI}, set.Policies)
	assert.Equal(t, 1, set.Len())

	truth, _ := set.Masses(Truth)
	assert.InDelta(t, 0, truth[0], 1e-6)

	sk, _ := set.Masses(SoftKiller)
	assert.InDelta(t, 0, sk[0], 1e-6)

	a := kinematics.FromParticle(jet.Particles[0])
	b := kinematics.FromParticle(jet.Particles[1])
	all := kinematics.Add(&a, &b)
	none, _ := set.Masses(NoMitigation)
	assert.InDelta(t, kinematics.InvariantMass(&all), none[0], 1e-9)

	scaled := kinematics.Scale(0.2, &b)
	weighted := kinematics.Add(&a, &scaled)
	puppi, _ := set.Masses(PUPPI)
	assert.InDelta(t, kinematics.InvariantMass(&weighted), puppi[0], 1e-9)
	assert.Less(t, puppi[0], none[0])
	assert.Greater(t, puppi[0], 0.0)
}

func TestJetMassesCustomPolicy(t *testing.T) {
	const chargedOnly Policy = "charged"
	c := NewComparator(WithParticlePolicy(chargedOnly, func(p event.Particle) float64 {
		if p.Charged {
			return 1
		}
		return 0
	}))

	jet := event.Jet{Particles: []event.Particle{hardScatter(20, 0, 0), pileupParticle(20, 0, math.Pi, 1, true)}}
	set, err := c.JetMasses([]event.Jet{jet})
	require.NoError(t, err)
	require.True(t, set.Has(chargedOnly))

	m, _ := set.Masses(chargedOnly)
	assert.InDelta(t, 0, m[0], 1e-6)
	none, _ := set.Masses(NoMitigation)
	assert.InDelta(t, 40, none[0], 1e-9)
}

func TestJetMassesParallelMatchesSequential(t *testing.T) {
	jets := make([]event.Jet, 600)
	for i := range jets {
		f := float64(i)
		jets[i] = event.Jet{Particles: []event.Particle{
			hardScatter(30+f/10, 0.01*f, 0.2),
			pileupParticle(5, -0.3, 0.5+0.001*f, 0.5, i%2 == 0),
		}}
	}

	seq, err := NewComparator(WithParallelThreshold(len(jets))).JetMasses(jets)
	require.NoError(t, err)
	par, err := NewComparator(WithParallelThreshold(8)).JetMasses(jets)
	require.NoError(t, err)

	for _, p := range seq.Policies {
		want, _ := seq.Masses(p)
		got, _ := par.Masses(p)
		assert.Equal(t, want, got, "policy %s", p)
	}
}

func TestDijetMasses(t *testing.T) {
	logger := captureLogs(t)

	jets := []event.Jet{
		{Particles: []event.Particle{hardScatter(50, 0, 0)}},
		{Particles: []event.Particle{hardScatter(50, 0, math.Pi)}},
		{Particles: []event.Particle{hardScatter(10, 1, 1)}},
	}

	set, err := NewComparator().DijetMasses(jets)
	require.NoError(t, err)
	assert.Equal(t, 1, set.Len())

	truth, _ := set.Masses(Truth)
	assert.InDelta(t, 100, truth[0], 1e-9)

	assert.True(t, logger.ContainsMessage("dropping unpaired sample"))
	assert.True(t, logger.ContainsMessage("dropped sample 2 of 3"))

	_, err = NewComparator().DijetMasses(jets[:1])
	assert.Error(t, err)
}

func TestDijetMassesEvenCountNoWarning(t *testing.T) {
	logger := captureLogs(t)

	jets := []event.Jet{
		{Particles: []event.Particle{hardScatter(50, 0, 0)}},
		{Particles: []event.Particle{hardScatter(50, 0, math.Pi)}},
	}
	_, err := NewComparator().DijetMasses(jets)
	require.NoError(t, err)
	assert.False(t, logger.ContainsMessage("dropping unpaired sample"))
}

const (
	fine   = 45
	coarse = 9
	width  = 0.9
)

// imageSample puts a charged hard-scatter deposit on the jet axis and a
// neutral hard-scatter deposit at the coarse pixel (4, 8).
func imageSample(center event.Center) ImageSample {
	chargedLV := mat.NewDense(fine, fine, nil)
	chargedLV.Set(fine/2, fine/2, 50)

	neutralTotal := mat.NewDense(fine, fine, nil)
	// fine column 42 falls in coarse column 8
	neutralTotal.Set(fine/2, 42, 20)

	neutralLV := mat.NewDense(coarse, coarse, nil)
	neutralLV.Set(coarse/2, 8, 20)

	return ImageSample{
		Input: event.Image{
			Channels: []*mat.Dense{chargedLV, mat.NewDense(fine, fine, nil), neutralTotal},
			Center:   center,
			Width:    width,
		},
		NeutralLV: neutralLV,
	}
}

func TestImageMasses(t *testing.T) {
	s := imageSample(event.Center{Eta: 0.3, Phi: -1})
	c := NewComparator()

	set, err := c.ImageMasses([]ImageSample{s}, nil)
	require.NoError(t, err)
	assert.Equal(t, []Policy{Truth, NoMitigation}, set.Policies)
	assert.False(t, set.Has(Corrected))

	// two massless deposits separated by Δφ = 0.4 at equal η
	want := math.Sqrt(2 * 50 * 20 * (1 - math.Cos(0.4)))
	truth, _ := set.Masses(Truth)
	assert.InDelta(t, want, truth[0], 1e-9)

	// no pileup in this sample, so the unmitigated mass matches truth
	none, _ := set.Masses(NoMitigation)
	assert.InDelta(t, want, none[0], 1e-9)

	s.Input.Channels[ChargedPU].Set(0, 0, 5)
	set, err = c.ImageMasses([]ImageSample{s}, nil)
	require.NoError(t, err)
	none, _ = set.Masses(NoMitigation)
	assert.Greater(t, none[0], want)
}

func TestImageMassesWithModel(t *testing.T) {
	s := imageSample(event.Center{})
	perfect := CorrectionModelFunc(func(img event.Image) (*mat.Dense, error) {
		return mat.DenseCopyOf(s.NeutralLV), nil
	})

	set, err := NewComparator().ImageMasses([]ImageSample{s, s}, perfect)
	require.NoError(t, err)
	require.True(t, set.Has(Corrected))

	truth, _ := set.Masses(Truth)
	corrected, _ := set.Masses(Corrected)
	assert.InDeltaSlice(t, truth, corrected, 1e-12)

	failing := CorrectionModelFunc(func(event.Image) (*mat.Dense, error) {
		return nil, errors.New("model offline")
	})
	_, err = NewComparator().ImageMasses([]ImageSample{s}, failing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image 0")
	assert.Contains(t, err.Error(), "model offline")
}

func TestImageMassesValidation(t *testing.T) {
	s := imageSample(event.Center{})

	twoChannels := s
	twoChannels.Input.Channels = s.Input.Channels[:2]
	_, err := NewComparator().ImageMasses([]ImageSample{twoChannels}, nil)
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr), "err = %v", err)

	badNeutral := s
	badNeutral.NeutralLV = mat.NewDense(8, 8, nil)
	_, err = NewComparator().ImageMasses([]ImageSample{badNeutral}, nil)
	assert.Error(t, err)

	noNeutral := s
	noNeutral.NeutralLV = nil
	_, err = NewComparator().ImageMasses([]ImageSample{noNeutral}, nil)
	assert.Error(t, err)

	_, err = NewComparator().ImageMasses(nil, nil)
	assert.Error(t, err)
}

func TestImageMassesPhiRowsLayout(t *testing.T) {
	s := imageSample(event.Center{})
	set, err := NewComparator(WithLayout(kinematics.PhiRows)).ImageMasses([]ImageSample{s}, nil)
	require.NoError(t, err)

	// the deposits are now separated in η instead of φ
	want := math.Sqrt(2 * 50 * 20 * (math.Cosh(0.4) - 1))
	truth, _ := set.Masses(Truth)
	assert.InDelta(t, want, truth[0], 1e-9)
}

func TestDijetImageMasses(t *testing.T) {
	logger := captureLogs(t)

	a := imageSample(event.Center{Eta: 0, Phi: 0})
	b := imageSample(event.Center{Eta: 0, Phi: math.Pi})
	set, err := NewComparator().DijetImageMasses([]ImageSample{a, b, a}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, set.Len())

	pa, err := kinematics.FromImage(a.Input.Channels[ChargedLV], a.Input.Center, width)
	require.NoError(t, err)
	na, err := kinematics.FromImage(a.NeutralLV, a.Input.Center, width)
	require.NoError(t, err)
	pb, err := kinematics.FromImage(b.Input.Channels[ChargedLV], b.Input.Center, width)
	require.NoError(t, err)
	nb, err := kinematics.FromImage(b.NeutralLV, b.Input.Center, width)
	require.NoError(t, err)
	sum := kinematics.Sum(&pa, &na, &pb, &nb)

	truth, _ := set.Masses(Truth)
	assert.InDelta(t, kinematics.InvariantMass(&sum), truth[0], 1e-9)
	assert.True(t, logger.ContainsMessage("dropped sample 2 of 3"))
}

func TestMassSetHistogramsAndSummary(t *testing.T) {
	set := newMassSet([]Policy{Truth, NoMitigation}, [][]float64{
		{10, 20, 30},
		{15, 25, 95},
	})

	h, err := set.Histogram(Truth, 10, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(3), h.Entries())
	assert.InDelta(t, 20, h.XMean(), 1e-9)

	hs, err := set.Histograms(20, 0, 200)
	require.NoError(t, err)
	assert.Len(t, hs, 2)

	_, err = set.Histogram(PUPPI, 10, 0, 100)
	assert.Error(t, err)
	_, err = set.Histogram(Truth, 0, 0, 100)
	assert.Error(t, err)
	_, err = set.Histogram(Truth, 10, 5, 5)
	assert.Error(t, err)

	sums := set.Summarize()
	require.Len(t, sums, 2)
	assert.Equal(t, Truth, sums[0].Policy)
	assert.Equal(t, 3, sums[0].N)
	assert.InDelta(t, 20, sums[0].Mean, 1e-12)
	assert.InDelta(t, 20, sums[0].Median, 1e-12)
	assert.InDelta(t, 10, sums[0].StdDev, 1e-12)
	assert.InDelta(t, 25, sums[1].Median, 1e-12)
}
