// Package metrics は二値分類スコアから効率曲線を構築し、
// そこから AUC、背景除去率、有意度改善などの派生量を計算する。
//
// 効率曲線の規約:
//   - class1_eff は閾値 t における真陽性率（信号効率）
//   - class0_eff は 1 − 偽陽性率（背景除去効率）
//   - 予測陽性は score > t（厳密不等号、閾値と等しいスコアは陰性）
package metrics

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/plot/plotter"

	"github.com/YuminosukeSato/jetscope/pkg/errors"
	"github.com/YuminosukeSato/jetscope/pkg/log"
)

// Curve は閾値掃引で得られた効率曲線
//
// 3つのスライスはインデックスで対応し、Thresholds の昇順に並ぶ。
// FromRates や LoadCurve で作られた曲線では Thresholds は nil になる。
type Curve struct {
	Thresholds []float64 `json:"thresholds,omitempty"`
	Class0Eff  []float64 `json:"class0_eff"`
	Class1Eff  []float64 `json:"class1_eff"`
}

// Len は曲線上の点の数を返す
func (c *Curve) Len() int { return len(c.Class1Eff) }

// XYs は (class0_eff, class1_eff) の点列を plotter.XYs として返す
func (c *Curve) XYs() plotter.XYs {
	pts := make(plotter.XYs, c.Len())
	for i := range pts {
		pts[i].X = c.Class0Eff[i]
		pts[i].Y = c.Class1Eff[i]
	}
	return pts
}

func (c *Curve) validate(op string) error {
	if len(c.Class0Eff) != len(c.Class1Eff) {
		return errors.NewDimensionError(op, len(c.Class1Eff), len(c.Class0Eff), 0)
	}
	if len(c.Thresholds) > 0 && len(c.Thresholds) != len(c.Class1Eff) {
		return errors.NewDimensionError(op, len(c.Class1Eff), len(c.Thresholds), 0)
	}
	return nil
}

// validateBinary はスコアとラベルを検証し、クラスごとの件数を返す
func validateBinary(op string, scores, labels []float64) (class0, class1 int, err error) {
	n := len(scores)
	if n == 0 {
		return 0, 0, errors.Wrap(errors.ErrEmptyData, op)
	}
	if len(labels) != n {
		return 0, 0, errors.NewDimensionError(op, n, len(labels), 0)
	}
	for i := 0; i < n; i++ {
		if math.IsNaN(scores[i]) {
			return 0, 0, errors.NewValidationError("scores", "must not contain NaN", i)
		}
		switch labels[i] {
		case 0:
			class0++
		case 1:
			class1++
		default:
			return 0, 0, errors.NewValidationError("labels", "must be 0 or 1", labels[i])
		}
	}
	return class0, class1, nil
}

// thresholdCount は stride dx で選ばれる閾値の数を返す
// sorted[0], sorted[dx], ... のうち先頭 numPoints 個までを使う。
func thresholdCount(n, dx, numPoints int) int {
	k := (n + dx - 1) / dx
	if k > numPoints {
		k = numPoints
	}
	return k
}

// EfficiencyCurve はスコアを閾値として掃引し効率曲線を計算する
//
// パラメータ:
//   - scores: 分類スコア（長さN、NaN不可）
//   - labels: 真のクラス（0 または 1、長さN）
//   - numPoints: 閾値の最大数（> 0）
//
// 閾値はスコアを昇順に並べたものから stride dx = max(⌊N/numPoints⌋, 1) ごとに選ぶ。
// numPoints ≥ N のときは全スコアが閾値になる。
// どちらかのクラスが空の場合は DegenerateLabelSetError を返す。
//
// 各閾値で全サンプルを走査する代わりに、ソート済み配列上のクラス1累積和と
// 単調に進む境界ポインタで O(N log N) で計算する。結果は素朴な走査と一致する。
func EfficiencyCurve(scores, labels []float64, numPoints int) (*Curve, error) {
	const op = "EfficiencyCurve"
	start := time.Now()

	if numPoints <= 0 {
		return nil, errors.NewValidationError("numPoints", "must be positive", numPoints)
	}
	class0, class1, err := validateBinary(op, scores, labels)
	if err != nil {
		return nil, err
	}
	if class0 == 0 || class1 == 0 {
		return nil, errors.NewDegenerateLabelSetError(class0, class1)
	}

	n := len(scores)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] < scores[order[b]] })

	sorted := make([]float64, n)
	// below1[j] はソート順で先頭 j 個に含まれるクラス1の数
	below1 := make([]int, n+1)
	for j, idx := range order {
		sorted[j] = scores[idx]
		below1[j+1] = below1[j]
		if labels[idx] == 1 {
			below1[j+1]++
		}
	}

	dx := n / numPoints
	if dx < 1 {
		dx = 1
	}
	k := thresholdCount(n, dx, numPoints)

	curve := &Curve{
		Thresholds: make([]float64, k),
		Class0Eff:  make([]float64, k),
		Class1Eff:  make([]float64, k),
	}

	// cut はスコアが閾値を超える最初の位置。閾値は昇順なので後退しない。
	cut := 0
	for t := 0; t < k; t++ {
		thr := sorted[t*dx]
		for cut < n && sorted[cut] <= thr {
			cut++
		}
		tp := class1 - below1[cut]
		fp := (n - cut) - tp

		curve.Thresholds[t] = thr
		curve.Class1Eff[t] = float64(tp) / float64(class1)
		curve.Class0Eff[t] = 1 - float64(fp)/float64(class0)
	}

	log.GetLoggerWithName("metrics").Debug("efficiency curve computed",
		log.OperationKey, log.OperationCurve,
		log.SamplesKey, n,
		log.Class0Key, class0,
		log.Class1Key, class1,
		log.ThresholdsKey, k,
		log.StrideKey, dx,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return curve, nil
}

// FromRates は外部の ROC（偽陽性率 fpr, 真陽性率 tpr）を Curve に変換する
// class0_eff = 1 − fpr, class1_eff = tpr。
func FromRates(fpr, tpr []float64) (*Curve, error) {
	if len(fpr) != len(tpr) {
		return nil, errors.NewDimensionError("FromRates", len(tpr), len(fpr), 0)
	}
	if len(fpr) == 0 {
		return nil, errors.NewValueError("FromRates", "empty rates")
	}
	c := &Curve{
		Class0Eff: make([]float64, len(fpr)),
		Class1Eff: make([]float64, len(tpr)),
	}
	for i := range fpr {
		c.Class0Eff[i] = 1 - fpr[i]
	}
	copy(c.Class1Eff, tpr)
	return c, nil
}
