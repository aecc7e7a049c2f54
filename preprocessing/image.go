// Package preprocessing は jet image の画素グリッドを変換する
//
// 画素値は pT なので、解像度を落とす変換は和で集約し、
// 画像全体の pT を保存する。
package preprocessing

import (
	"github.com/YuminosukeSato/jetscope/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Downsample は factor×factor のブロックごとに画素を合計して解像度を下げる
//
// パラメータ:
//   - img: 正方画像 (N × N)
//   - factor: ブロックの一辺。N は factor で割り切れる必要がある
//
// 戻り値:
//   - *mat.Dense: (N/factor) × (N/factor) の画像
//   - error: 非正方画像、factor ≤ 0、割り切れない場合
//
// 使用例:
//
//	// 45×45 の中性チャンネルを 9×9 に集約
//	coarse, err := preprocessing.Downsample(img, 5)
func Downsample(img mat.Matrix, factor int) (*mat.Dense, error) {
	if img == nil {
		return nil, errors.NewValueError("Downsample", "nil image")
	}
	r, c := img.Dims()
	if r != c {
		return nil, errors.Wrapf(errors.ErrNonSquareImage, "Downsample: %dx%d", r, c)
	}
	if factor <= 0 {
		return nil, errors.NewValidationError("factor", "must be positive", factor)
	}
	if r%factor != 0 {
		return nil, errors.NewValidationError("factor", "must divide the image size", factor)
	}

	n := r / factor
	out := mat.NewDense(n, n, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := img.At(i, j)
			if v == 0 {
				continue
			}
			bi, bj := i/factor, j/factor
			out.Set(bi, bj, out.At(bi, bj)+v)
		}
	}
	return out, nil
}

// DownsampleTo は画像を pixels × pixels に集約する
func DownsampleTo(img mat.Matrix, pixels int) (*mat.Dense, error) {
	if img == nil {
		return nil, errors.NewValueError("DownsampleTo", "nil image")
	}
	if pixels <= 0 {
		return nil, errors.NewValidationError("pixels", "must be positive", pixels)
	}
	r, _ := img.Dims()
	if r%pixels != 0 {
		return nil, errors.NewValidationError("pixels", "must divide the image size", pixels)
	}
	return Downsample(img, r/pixels)
}

// SumChannels は同じ形のチャンネルを画素ごとに足し合わせる
func SumChannels(channels ...mat.Matrix) (*mat.Dense, error) {
	if len(channels) == 0 {
		return nil, errors.NewValueError("SumChannels", "no channels")
	}
	r, c := channels[0].Dims()
	out := mat.NewDense(r, c, nil)
	for k, ch := range channels {
		cr, cc := ch.Dims()
		if cr != r {
			return nil, errors.Wrapf(errors.NewDimensionError("SumChannels", r, cr, 0), "channel %d", k)
		}
		if cc != c {
			return nil, errors.Wrapf(errors.NewDimensionError("SumChannels", c, cc, 1), "channel %d", k)
		}
		out.Add(out, ch)
	}
	return out, nil
}

// NormalizeL1 は画素の総和が1になるようにスケールした画像を返す
//
// 総和が0の場合は ZeroNormalizationError を返す。入力は変更しない。
func NormalizeL1(img mat.Matrix) (*mat.Dense, error) {
	if img == nil {
		return nil, errors.NewValueError("NormalizeL1", "nil image")
	}
	total := mat.Sum(img)
	if total == 0 {
		return nil, errors.NewZeroNormalizationError("NormalizeL1", "total pT")
	}
	out := mat.DenseCopyOf(img)
	out.Scale(1/total, out)
	return out, nil
}
