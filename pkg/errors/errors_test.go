package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestNewUnmappedParticleError(t *testing.T) {
	err := NewUnmappedParticleError(999)

	want := "jetscope: particle id 999 has no entry in the charge map"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	// スタックトレースの存在確認
	formatted := fmt.Sprintf("%+v", err)
	if !strings.Contains(formatted, "errors_test.go") {
		t.Error("Expected stack trace to contain test file name")
	}

	var unmapped *UnmappedParticleError
	if !As(err, &unmapped) {
		t.Fatal("Error should be castable to *UnmappedParticleError")
	}
	if unmapped.ID != 999 {
		t.Errorf("ID = %d, want 999", unmapped.ID)
	}
}

func TestNewDegenerateLabelSetError(t *testing.T) {
	tests := []struct {
		name    string
		class0  int
		class1  int
		wantMsg string
	}{
		{
			name:    "no class1",
			class0:  4,
			class1:  0,
			wantMsg: "jetscope: efficiency curve undefined: class0 count 4, class1 count 0",
		},
		{
			name:    "no class0",
			class0:  0,
			class1:  3,
			wantMsg: "jetscope: efficiency curve undefined: class0 count 0, class1 count 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDegenerateLabelSetError(tt.class0, tt.class1)
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			var degenerate *DegenerateLabelSetError
			if !As(err, &degenerate) {
				t.Error("Error should be castable to *DegenerateLabelSetError")
			}
		})
	}
}

func TestNewZeroNormalizationError(t *testing.T) {
	err := NewZeroNormalizationError("JetCharge", "jet pT")

	want := "jetscope: JetCharge: cannot normalize by zero jet pT"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var zeroErr *ZeroNormalizationError
	if !As(err, &zeroErr) {
		t.Error("Error should be castable to *ZeroNormalizationError")
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("EfficiencyCurve", 10, 9, 0)

	want := "jetscope: EfficiencyCurve: dimension mismatch on axis 0 (rows). Expected 10, got 9"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Error("Error should be castable to *DimensionError")
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("kappa", "must be positive", -0.5)

	want := "jetscope: validation failed for parameter 'kappa': must be positive (got: -0.5)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestDroppedSampleWarning(t *testing.T) {
	w := NewDroppedSampleWarning("DijetMasses", 4, 5, "no partner jet")

	want := "DijetMasses: dropped sample 4 of 5: no partner jet"
	if w.Error() != want {
		t.Errorf("Error() = %v, want %v", w.Error(), want)
	}
}

func TestWarnUsesHandler(t *testing.T) {
	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(func(w error) {})

	Warn(NewUndefinedMetricWarning("FixedPointLookup", "empty curve", 0))

	if len(got) != 1 {
		t.Fatalf("handler called %d times, want 1", len(got))
	}
	if !strings.Contains(got[0].Error(), "FixedPointLookup") {
		t.Errorf("unexpected warning: %v", got[0])
	}
}

func TestWrapAndIs(t *testing.T) {
	wrapped := Wrap(ErrEmptyData, "in EfficiencyCurve")

	if !Is(wrapped, ErrEmptyData) {
		t.Error("Expected Is(wrapped, ErrEmptyData) to be true")
	}

	if !strings.Contains(wrapped.Error(), "in EfficiencyCurve") {
		t.Error("Expected wrapped error to contain wrapping message")
	}
}

func TestWrapf(t *testing.T) {
	wrapped := Wrapf(ErrNonSquareImage, "channel %d: %dx%d", 1, 9, 8)

	if !Is(wrapped, ErrNonSquareImage) {
		t.Error("Expected Is(wrapped, ErrNonSquareImage) to be true")
	}

	expectedMsg := "channel 1: 9x8"
	if !strings.Contains(wrapped.Error(), expectedMsg) {
		t.Errorf("Expected wrapped error to contain %q", expectedMsg)
	}
}

func TestCheckNumericalStability(t *testing.T) {
	if err := CheckNumericalStability("sum", []float64{1, 2, 3}, 0); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := CheckScalar("charge", 1.0/zero(), 7)
	var inst *NumericalInstabilityError
	if !As(err, &inst) {
		t.Fatalf("expected NumericalInstabilityError, got %v", err)
	}
	if inst.Index != 7 {
		t.Errorf("Index = %d, want 7", inst.Index)
	}
}

func zero() float64 { return 0 }
