package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/plot/plotter"

	"github.com/YuminosukeSato/jetscope/pkg/errors"
	"github.com/YuminosukeSato/jetscope/pkg/log"
)

// DefaultReg は 1/√(1 − class0_eff) のゼロ除算を避ける正則化項
const DefaultReg = 1e-6

// DefaultTarget は FixedPointLookup の既定の信号効率
const DefaultTarget = 0.5

func checkPair(op string, class1, class0 []float64) error {
	if len(class1) != len(class0) {
		return errors.NewDimensionError(op, len(class1), len(class0), 0)
	}
	if len(class1) == 0 {
		return errors.Wrap(errors.ErrEmptyData, op)
	}
	return nil
}

// AUC は class0_eff を横軸、class1_eff を縦軸として台形則で積分する
//
// 入力の並び順には依存しない。内部で class0_eff の昇順（同値は class1_eff の降順）に
// 安定ソートしてから gonum の integrate.Trapezoidal で積分する。
// 1点だけの曲線の面積は 0。
func AUC(class0, class1 []float64) (float64, error) {
	const op = "AUC"
	if err := checkPair(op, class1, class0); err != nil {
		return 0, err
	}
	if err := errors.CheckNumericalStability(op, class0, -1); err != nil {
		return 0, err
	}
	if err := errors.CheckNumericalStability(op, class1, -1); err != nil {
		return 0, err
	}
	if len(class0) == 1 {
		errors.Warn(errors.NewUndefinedMetricWarning(op, "a single curve point", 0))
		return 0, nil
	}

	order := make([]int, len(class0))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if class0[ia] != class0[ib] {
			return class0[ia] < class0[ib]
		}
		return class1[ia] > class1[ib]
	})

	x := make([]float64, len(order))
	y := make([]float64, len(order))
	for k, i := range order {
		x[k] = class0[i]
		y[k] = class1[i]
	}
	area := integrate.Trapezoidal(x, y)

	log.GetLoggerWithName("metrics").Debug("auc computed",
		log.OperationKey, log.OperationAUC,
		log.ThresholdsKey, len(x),
		log.AUCKey, area,
	)
	return area, nil
}

// AUC は曲線の面積を返す
func (c *Curve) AUC() (float64, error) {
	if err := c.validate("AUC"); err != nil {
		return 0, err
	}
	return AUC(c.Class0Eff, c.Class1Eff)
}

// InverseRejection は (class1_eff, 1/√(1 − class0_eff + reg)) を返す
//
// class0_eff = 1 で発散しないよう reg で正則化する。正則化された除算はエラーにならない。
func InverseRejection(class1, class0 []float64, reg float64) (x, y []float64, err error) {
	if err := checkPair("InverseRejection", class1, class0); err != nil {
		return nil, nil, err
	}
	x = make([]float64, len(class1))
	copy(x, class1)
	y = make([]float64, len(class0))
	for i, c0 := range class0 {
		y[i] = errors.RegularizedInvSqrt(1-c0, reg)
	}
	return x, y, nil
}

// SignificanceImprovement は (class1_eff, class1_eff/√(1 − class0_eff + reg)) を返す
func SignificanceImprovement(class1, class0 []float64, reg float64) (x, y []float64, err error) {
	x, y, err = InverseRejection(class1, class0, reg)
	if err != nil {
		return nil, nil, err
	}
	floats.Mul(y, class1)
	return x, y, nil
}

// FixedPointLookup は信号効率が target に最も近い点の背景除去 1 − class0_eff を返す
//
// 補間はしない。|class1_eff − target| が同値の場合は最初のインデックスを使う。
func FixedPointLookup(class1, class0 []float64, target float64) (float64, error) {
	if err := checkPair("FixedPointLookup", class1, class0); err != nil {
		return 0, err
	}
	if math.IsNaN(target) {
		return 0, errors.NewValidationError("target", "must not be NaN", target)
	}
	dist := make([]float64, len(class1))
	for i, c1 := range class1 {
		dist[i] = math.Abs(c1 - target)
	}
	return 1 - class0[floats.MinIdx(dist)], nil
}

// InverseRejectionXYs は逆除去率曲線を plotter.XYs として返す
func (c *Curve) InverseRejectionXYs(reg float64) (plotter.XYs, error) {
	if err := c.validate("InverseRejectionXYs"); err != nil {
		return nil, err
	}
	x, y, err := InverseRejection(c.Class1Eff, c.Class0Eff, reg)
	if err != nil {
		return nil, err
	}
	return pairs(x, y), nil
}

// SignificanceXYs は有意度改善曲線を plotter.XYs として返す
func (c *Curve) SignificanceXYs(reg float64) (plotter.XYs, error) {
	if err := c.validate("SignificanceXYs"); err != nil {
		return nil, err
	}
	x, y, err := SignificanceImprovement(c.Class1Eff, c.Class0Eff, reg)
	if err != nil {
		return nil, err
	}
	return pairs(x, y), nil
}

// RejectionAt は FixedPointLookup を曲線に適用する
func (c *Curve) RejectionAt(target float64) (float64, error) {
	if err := c.validate("RejectionAt"); err != nil {
		return 0, err
	}
	return FixedPointLookup(c.Class1Eff, c.Class0Eff, target)
}

func pairs(x, y []float64) plotter.XYs {
	pts := make(plotter.XYs, len(x))
	for i := range pts {
		pts[i].X = x[i]
		pts[i].Y = y[i]
	}
	return pts
}
