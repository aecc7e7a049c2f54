package metrics

import (
	"time"

	"gonum.org/v1/plot/plotter"

	"github.com/YuminosukeSato/jetscope/core/parallel"
	"github.com/YuminosukeSato/jetscope/pkg/errors"
	"github.com/YuminosukeSato/jetscope/pkg/log"
)

// ScanPoint は κ スキャンの1点
type ScanPoint struct {
	Kappa     float64 `json:"kappa"`
	Rejection float64 `json:"rejection"`
	AUC       float64 `json:"auc"`
}

// ScoreFunc は κ ごとのスコアとラベルを返す
// RejectionScan から並行に呼ばれるため、並行呼び出しに安全でなければならない。
type ScoreFunc func(kappa float64) (scores, labels []float64, err error)

// RejectionScan は各 κ について効率曲線を作り、信号効率 target での背景除去と AUC を求める
//
// 結果は kappas と同じ順に並ぶ。いずれかの κ で失敗した場合は最初のエラーを返す。
func RejectionScan(kappas []float64, target float64, numPoints int, score ScoreFunc) ([]ScanPoint, error) {
	if len(kappas) == 0 {
		return nil, errors.NewValueError("RejectionScan", "no kappa values")
	}
	if score == nil {
		return nil, errors.NewValueError("RejectionScan", "nil score function")
	}
	start := time.Now()

	out := make([]ScanPoint, len(kappas))
	// 2点以上で並列化する
	err := parallel.ForEach(len(kappas), 1, log.OperationScan, func(i int) error {
		k := kappas[i]
		scores, labels, err := score(k)
		if err != nil {
			return errors.Wrapf(err, "kappa %g", k)
		}
		curve, err := EfficiencyCurve(scores, labels, numPoints)
		if err != nil {
			return errors.Wrapf(err, "kappa %g", k)
		}
		rej, err := curve.RejectionAt(target)
		if err != nil {
			return errors.Wrapf(err, "kappa %g", k)
		}
		area, err := curve.AUC()
		if err != nil {
			return errors.Wrapf(err, "kappa %g", k)
		}
		out[i] = ScanPoint{Kappa: k, Rejection: rej, AUC: area}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.GetLoggerWithName("metrics").Debug("rejection scan finished",
		log.OperationKey, log.OperationScan,
		log.SamplesKey, len(kappas),
		log.TargetKey, target,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return out, nil
}

// ScanXYs は (κ, 背景除去) を plotter.XYs として返す
func ScanXYs(points []ScanPoint) plotter.XYs {
	pts := make(plotter.XYs, len(points))
	for i, p := range points {
		pts[i].X = p.Kappa
		pts[i].Y = p.Rejection
	}
	return pts
}

// Best は FixedPointLookup の値が最小の点を返す。同値の場合は先に現れた点。
// 値は信号効率 target での 1 − class0_eff なので、小さいほど背景が落ちている。
func Best(points []ScanPoint) (ScanPoint, bool) {
	if len(points) == 0 {
		return ScanPoint{}, false
	}
	best := points[0]
	for _, p := range points[1:] {
		if p.Rejection < best.Rejection {
			best = p
		}
	}
	return best, true
}
