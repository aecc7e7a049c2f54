package pileup

import (
	"time"

	"go-hep.org/x/hep/fmom"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/jetscope/core/parallel"
	"github.com/YuminosukeSato/jetscope/event"
	"github.com/YuminosukeSato/jetscope/kinematics"
	"github.com/YuminosukeSato/jetscope/pkg/errors"
	"github.com/YuminosukeSato/jetscope/pkg/log"
	"github.com/YuminosukeSato/jetscope/preprocessing"
)

// Input channel order of a pileup jet image.
const (
	ChargedLV = iota
	ChargedPU
	NeutralTotal
	InputChannels
)

// ImageSample is one jet as seen by the image policies.
//
// Input holds the charged hard-scatter, charged pileup and total neutral
// deposits on the fine (charged) grid. NeutralLV is the hard-scatter neutral
// deposit on the coarse (neutral) grid; its side must divide the fine one.
type ImageSample struct {
	Input     event.Image
	NeutralLV *mat.Dense
}

func (s ImageSample) validate() error {
	if err := s.Input.Validate(); err != nil {
		return err
	}
	if len(s.Input.Channels) < InputChannels {
		return errors.NewDimensionError("ImageSample", InputChannels, len(s.Input.Channels), 1)
	}
	fine := s.Input.Pixels(ChargedLV)
	for c := ChargedPU; c < InputChannels; c++ {
		if got := s.Input.Pixels(c); got != fine {
			return errors.Wrapf(errors.NewDimensionError("ImageSample", fine, got, 0), "channel %d", c)
		}
	}
	if s.NeutralLV == nil {
		return errors.NewValueError("ImageSample", "nil neutral hard-scatter image")
	}
	r, c := s.NeutralLV.Dims()
	if r != c {
		return errors.Wrapf(errors.ErrNonSquareImage, "neutral image %dx%d", r, c)
	}
	if fine%r != 0 {
		return errors.NewValidationError("neutral pixels", "must divide the charged pixel count", r)
	}
	return nil
}

// CorrectionModel predicts the hard-scatter neutral deposit of a jet on the
// coarse grid from its full input image. Implementations must be safe for
// concurrent use.
type CorrectionModel interface {
	Predict(img event.Image) (*mat.Dense, error)
}

// CorrectionModelFunc adapts a function to CorrectionModel.
type CorrectionModelFunc func(img event.Image) (*mat.Dense, error)

// Predict calls f.
func (f CorrectionModelFunc) Predict(img event.Image) (*mat.Dense, error) { return f(img) }

func imagePolicies(model CorrectionModel) []Policy {
	if model == nil {
		return []Policy{Truth, NoMitigation}
	}
	return []Policy{Truth, NoMitigation, Corrected}
}

func (c *Comparator) p4(img mat.Matrix, center event.Center, width float64) (fmom.PxPyPzE, error) {
	return kinematics.FromImageLayout(img, center, width, c.layout)
}

// imageP4 returns the four-momenta of one sample under truth, no mitigation
// and, when model is set, the corrected policy.
func (c *Comparator) imageP4(s ImageSample, model CorrectionModel) ([]fmom.PxPyPzE, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	center, width := s.Input.Center, s.Input.Width
	ch := s.Input.Channels
	coarse, _ := s.NeutralLV.Dims()

	chargedLV, err := c.p4(ch[ChargedLV], center, width)
	if err != nil {
		return nil, err
	}
	neutralLV, err := c.p4(s.NeutralLV, center, width)
	if err != nil {
		return nil, err
	}

	charged, err := preprocessing.SumChannels(ch[ChargedLV], ch[ChargedPU])
	if err != nil {
		return nil, err
	}
	chargedAll, err := c.p4(charged, center, width)
	if err != nil {
		return nil, err
	}
	neutral, err := preprocessing.DownsampleTo(ch[NeutralTotal], coarse)
	if err != nil {
		return nil, err
	}
	neutralAll, err := c.p4(neutral, center, width)
	if err != nil {
		return nil, err
	}

	out := []fmom.PxPyPzE{
		kinematics.Add(&chargedLV, &neutralLV),
		kinematics.Add(&chargedAll, &neutralAll),
	}
	if model == nil {
		return out, nil
	}

	pred, err := model.Predict(s.Input)
	if err != nil {
		return nil, errors.Wrap(err, "correction model")
	}
	if pred == nil {
		return nil, errors.NewValueError("CorrectionModel.Predict", "nil prediction")
	}
	predicted, err := c.p4(pred, center, width)
	if err != nil {
		return nil, err
	}
	return append(out, kinematics.Add(&chargedLV, &predicted)), nil
}

func (c *Comparator) imageP4s(op string, samples []ImageSample, model CorrectionModel) ([][]fmom.PxPyPzE, error) {
	policies := imagePolicies(model)
	p4s := make([][]fmom.PxPyPzE, len(policies))
	for k := range p4s {
		p4s[k] = make([]fmom.PxPyPzE, len(samples))
	}
	err := parallel.ForEach(len(samples), c.threshold, op, func(i int) error {
		row, err := c.imageP4(samples[i], model)
		if err != nil {
			return errors.Wrapf(err, "image %d", i)
		}
		for k := range row {
			p4s[k][i] = row[k]
		}
		return nil
	})
	if err != nil {
		c.logger.Error("image four-momenta failed", err, log.OperationKey, op)
		return nil, err
	}
	return p4s, nil
}

// ImageMasses returns one mass per image for truth, no mitigation and, when
// model is non-nil, the corrected policy. A nil model omits that sequence.
func (c *Comparator) ImageMasses(samples []ImageSample, model CorrectionModel) (*MassSet, error) {
	if len(samples) == 0 {
		return nil, errors.NewValueError("ImageMasses", "no images")
	}
	start := time.Now()
	p4s, err := c.imageP4s(log.OperationImageMass, samples, model)
	if err != nil {
		return nil, err
	}
	set := newMassSet(imagePolicies(model), singleMasses(p4s))
	c.logDone(log.OperationImageMass, set, start)
	return set, nil
}

// DijetImageMasses pairs images (2k, 2k+1) and returns one mass per pair for
// each image policy. An odd trailing image is dropped with a warning.
func (c *Comparator) DijetImageMasses(samples []ImageSample, model CorrectionModel) (*MassSet, error) {
	if len(samples) < 2 {
		return nil, errors.NewValueError("DijetImageMasses", "need at least two images")
	}
	start := time.Now()
	c.warnOdd(log.OperationDijetImage, len(samples))
	p4s, err := c.imageP4s(log.OperationDijetImage, samples[:len(samples)&^1], model)
	if err != nil {
		return nil, err
	}
	set := newMassSet(imagePolicies(model), pairMasses(p4s))
	c.logDone(log.OperationDijetImage, set, start)
	return set, nil
}
