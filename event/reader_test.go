package event

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/jetscope/pkg/errors"
)

const chargeRecords = `# eta, phi, pt, id
Event 0, 0.12, 1.57, 100.0
0.1, 1.5, 60.0, 211
0.2, 1.6, 40.0, -211

Event 1, -0.4, 3.0, 98.0
-0.4, 3.0, 98.0, 22

`

func TestReadEvents(t *testing.T) {
	events, err := NewReader(ChargeColumns).ReadEvents(strings.NewReader(chargeRecords))
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, []float64{0, 0.12, 1.57, 100.0}, events[0].Summary)
	require.Len(t, events[0].Jets, 1)

	jet := events[0].Jets[0]
	require.Equal(t, 2, jet.Len())
	assert.Equal(t, 211, jet.Particles[0].ID)
	assert.Equal(t, -211, jet.Particles[1].ID)
	assert.InDelta(t, 100.0, jet.Pt(), 1e-12)
	assert.True(t, jet.Particles[0].HardScatter())
	assert.Equal(t, 1.0, jet.Particles[0].PUPPI)

	assert.Equal(t, 22, events[1].Jets[0].Particles[0].ID)
}

func TestReadJetsKeepsTrailingGroup(t *testing.T) {
	in := "0.1 0.2 5 211\n0.3 0.4 5 -211"
	jets, err := NewReader(ChargeColumns).ReadJets(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, jets, 1)
	assert.Equal(t, 2, jets[0].Len())
}

func TestReadEventsErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "non numeric", in: "0.1, abc, 5, 211\n"},
		{name: "short row", in: "0.1, 0.2\n"},
		{name: "negative pt", in: "0.1, 0.2, -5, 211\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(ChargeColumns).ReadEvents(strings.NewReader(tt.in))
			assert.Error(t, err)
		})
	}
}

func TestReadPackedJets(t *testing.T) {
	// info: ij NPU rho A JpT Jeta Jphi Jm, then pt eta phi charged vertex puppi sk
	in := "# packed\n" +
		"0 40 12.5 0.5 150 0.1 0.2 15  100 0.1 0.2 1 -1 1 1  50 0.2 0.3 0 3 0.4 0\n" +
		"1 40 12.5 0.5 120 -0.1 3.0 10  120 -0.1 3.0 1 -1 1 1\n"

	jets, err := ReadPackedJets(strings.NewReader(in), 0)
	require.NoError(t, err)
	require.Len(t, jets, 2)

	assert.Equal(t, 40, jets[0].Info.NPU)
	assert.Equal(t, 12.5, jets[0].Info.Rho)
	require.Len(t, jets[0].Particles, 2)

	pu := jets[0].Particles[1]
	assert.False(t, pu.HardScatter())
	assert.Equal(t, 3, pu.Vertex)
	assert.Equal(t, 0.4, pu.PUPPI)
	assert.False(t, pu.SoftKiller)
	assert.False(t, pu.Charged)

	limited, err := ReadPackedJets(strings.NewReader(in), 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestReadPackedJetsBadWidth(t *testing.T) {
	_, err := ReadPackedJets(strings.NewReader("0 40 12.5 0.5 150 0.1 0.2 15 100 0.1\n"), 0)
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}

func TestImageValidate(t *testing.T) {
	sq := mat.NewDense(3, 3, nil)

	tests := []struct {
		name    string
		img     Image
		wantErr bool
	}{
		{name: "ok", img: Image{Channels: []*mat.Dense{sq, sq}, Width: 0.8}},
		{name: "no channels", img: Image{Width: 0.8}, wantErr: true},
		{name: "non square", img: Image{Channels: []*mat.Dense{mat.NewDense(3, 2, nil)}, Width: 0.8}, wantErr: true},
		{name: "zero width", img: Image{Channels: []*mat.Dense{sq}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.img.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "err = %v", err)
		})
	}
}

func TestImageValidateShape(t *testing.T) {
	img := Image{Channels: []*mat.Dense{mat.NewDense(3, 3, nil)}, Width: 0.9}
	assert.NoError(t, img.ValidateShape(1, 3))
	assert.Error(t, img.ValidateShape(2, 3))
	assert.Error(t, img.ValidateShape(1, 5))
}

func TestDatasetName(t *testing.T) {
	d := DatasetName{Energy: "100GEV", Species: "upquark", Kappa: 0.2, Seed: 3, Pixels: 33, Channels: 2}
	assert.Equal(t, "100GEV-upquark-K=0.2-jetimage-seed3_33x33images_2chan", d.String())
	assert.Equal(t, "100GEV-upquark-event-seed3.txt", d.EventFileName())

	d.Kappa = 0
	assert.Contains(t, d.String(), "K=nocharge")
}
