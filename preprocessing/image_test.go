package preprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/jetscope/pkg/errors"
)

func TestDownsample(t *testing.T) {
	img := mat.NewDense(4, 4, []float64{
		1, 2, 0, 0,
		3, 4, 0, 1,
		0, 0, 5, 0,
		0, 7, 0, 6,
	})

	got, err := Downsample(img, 2)
	require.NoError(t, err)
	want := mat.NewDense(2, 2, []float64{
		10, 1,
		7, 11,
	})
	assert.True(t, mat.Equal(want, got), "got %v", mat.Formatted(got))
	assert.InDelta(t, mat.Sum(img), mat.Sum(got), 1e-12)

	same, err := Downsample(img, 1)
	require.NoError(t, err)
	assert.True(t, mat.Equal(img, same))

	to, err := DownsampleTo(img, 1)
	require.NoError(t, err)
	assert.Equal(t, 29.0, to.At(0, 0))
}

func TestDownsampleErrors(t *testing.T) {
	tests := []struct {
		name   string
		img    mat.Matrix
		factor int
	}{
		{"nil", nil, 2},
		{"non-square", mat.NewDense(2, 4, nil), 2},
		{"zero factor", mat.NewDense(4, 4, nil), 0},
		{"indivisible", mat.NewDense(45, 45, nil), 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Downsample(tt.img, tt.factor)
			assert.Error(t, err)
		})
	}

	_, err := Downsample(mat.NewDense(2, 3, nil), 1)
	assert.True(t, errors.Is(err, errors.ErrNonSquareImage))

	_, err = DownsampleTo(mat.NewDense(45, 45, nil), 8)
	assert.Error(t, err)
}

func TestSumChannels(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	b := mat.NewDense(2, 2, []float64{0, 2, 3, 0})

	got, err := SumChannels(a, b)
	require.NoError(t, err)
	assert.True(t, mat.Equal(mat.NewDense(2, 2, []float64{1, 2, 3, 1}), got))
	// inputs untouched
	assert.Equal(t, 0.0, a.At(0, 1))

	_, err = SumChannels(a, mat.NewDense(3, 3, nil))
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))

	_, err = SumChannels()
	assert.Error(t, err)
}

func TestNormalizeL1(t *testing.T) {
	img := mat.NewDense(2, 2, []float64{1, 3, 0, 4})

	got, err := NormalizeL1(img)
	require.NoError(t, err)
	assert.InDelta(t, 1, mat.Sum(got), 1e-12)
	assert.InDelta(t, 0.375, got.At(0, 1), 1e-12)
	assert.Equal(t, 3.0, img.At(0, 1))

	_, err = NormalizeL1(mat.NewDense(3, 3, nil))
	var zeroErr *errors.ZeroNormalizationError
	assert.True(t, errors.As(err, &zeroErr))
}
