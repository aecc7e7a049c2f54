package metrics

import (
	"encoding/json"
	"io"
	"os"

	"github.com/YuminosukeSato/jetscope/pkg/errors"
)

// SaveCurve は曲線を JSON ファイルに保存する
//
// ファイルは class0_eff と class1_eff の2つのキーを持つオブジェクトで、
// 閾値がある場合は thresholds も書き出す。
//
// 使用例:
//
//	curve, _ := metrics.EfficiencyCurve(scores, labels, 1000)
//	err := metrics.SaveCurve(curve, "roc_k0.2.json")
func SaveCurve(c *Curve, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to create curve file %s", filename)
	}
	defer file.Close()

	if err := WriteCurve(c, file); err != nil {
		return err
	}
	return file.Close()
}

// LoadCurve は JSON ファイルから曲線を読み込む
func LoadCurve(filename string) (*Curve, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open curve file %s", filename)
	}
	defer file.Close()

	return ReadCurve(file)
}

// WriteCurve は曲線を io.Writer に JSON として書き出す
func WriteCurve(c *Curve, w io.Writer) error {
	if c == nil {
		return errors.NewValueError("WriteCurve", "nil curve")
	}
	if err := c.validate("WriteCurve"); err != nil {
		return err
	}
	if err := json.NewEncoder(w).Encode(c); err != nil {
		return errors.Wrap(err, "failed to encode curve")
	}
	return nil
}

// ReadCurve は io.Reader から JSON の曲線を読み込む
//
// class0_eff と class1_eff の長さが異なる場合は DimensionError を返す。
func ReadCurve(r io.Reader) (*Curve, error) {
	var c Curve
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, errors.Wrap(err, "failed to decode curve")
	}
	if err := c.validate("ReadCurve"); err != nil {
		return nil, err
	}
	return &c, nil
}
