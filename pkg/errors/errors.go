// Package errors はjetscope全体のエラーハンドリングと警告システムを提供します。
// 解析パイプラインが返す構造化されたエラー情報と、処理を止めない警告の両方を扱います。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("jetscope-Warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが設定されている場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// DroppedSampleWarning はペアリングなどで一部のサンプルが処理対象から外れた場合の警告です。
// 例えば、ダイジェット質量の計算でサンプル数が奇数だった場合の末尾サンプルなど。
type DroppedSampleWarning struct {
	Op      string
	Index   int
	Reason  string
	Samples int
}

func (w *DroppedSampleWarning) Error() string {
	return fmt.Sprintf("%s: dropped sample %d of %d: %s", w.Op, w.Index, w.Samples, w.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *DroppedSampleWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("operation", w.Op).
		Int("index", w.Index).
		Int("samples", w.Samples).
		Str("reason", w.Reason).
		Str("type", "DroppedSampleWarning")
}

// NewDroppedSampleWarning は新しいDroppedSampleWarningを作成します。
func NewDroppedSampleWarning(op string, index, samples int, reason string) *DroppedSampleWarning {
	return &DroppedSampleWarning{Op: op, Index: index, Samples: samples, Reason: reason}
}

// UndefinedMetricWarning は評価指標が計算できない場合に発生する警告です。
type UndefinedMetricWarning struct {
	Metric    string
	Condition string
	Result    float64 // この条件で返される値
}

func (w *UndefinedMetricWarning) Error() string {
	return fmt.Sprintf("'%s' is ill-defined and being set to %f due to %s.", w.Metric, w.Result, w.Condition)
}

// NewUndefinedMetricWarning は新しいUndefinedMetricWarningを作成します。
func NewUndefinedMetricWarning(metric, condition string, result float64) *UndefinedMetricWarning {
	return &UndefinedMetricWarning{Metric: metric, Condition: condition, Result: result}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// UnmappedParticleError は粒子の種類IDが電荷テーブルに存在しない場合のエラーです。
// 電荷0として扱ってはいけません。
type UnmappedParticleError struct {
	ID int
}

func (e *UnmappedParticleError) Error() string {
	return fmt.Sprintf("jetscope: particle id %d has no entry in the charge map", e.ID)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *UnmappedParticleError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("particle_id", e.ID).
		Str("type", "UnmappedParticleError")
}

// NewUnmappedParticleError は新しいUnmappedParticleErrorを作成し、スタックトレースを付与します。
func NewUnmappedParticleError(id int) error {
	return errors.WithStack(&UnmappedParticleError{ID: id})
}

// DegenerateLabelSetError は効率曲線の構築時にどちらかのクラスのサンプルが0件の場合のエラーです。
type DegenerateLabelSetError struct {
	Class0 int
	Class1 int
}

func (e *DegenerateLabelSetError) Error() string {
	return fmt.Sprintf("jetscope: efficiency curve undefined: class0 count %d, class1 count %d", e.Class0, e.Class1)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DegenerateLabelSetError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("class0_count", e.Class0).
		Int("class1_count", e.Class1).
		Str("type", "DegenerateLabelSetError")
}

// NewDegenerateLabelSetError は新しいDegenerateLabelSetErrorを作成し、スタックトレースを付与します。
func NewDegenerateLabelSetError(class0, class1 int) error {
	return errors.WithStack(&DegenerateLabelSetError{Class0: class0, Class1: class1})
}

// ZeroNormalizationError は正規化に使う量（ジェットのpTなど）が0の場合のエラーです。
type ZeroNormalizationError struct {
	Op       string
	Quantity string
}

func (e *ZeroNormalizationError) Error() string {
	return fmt.Sprintf("jetscope: %s: cannot normalize by zero %s", e.Op, e.Quantity)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ZeroNormalizationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("quantity", e.Quantity).
		Str("type", "ZeroNormalizationError")
}

// NewZeroNormalizationError は新しいZeroNormalizationErrorを作成し、スタックトレースを付与します。
func NewZeroNormalizationError(op, quantity string) error {
	return errors.WithStack(&ZeroNormalizationError{Op: op, Quantity: quantity})
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0: 行（サンプル）, 1: 列（ピクセル・チャンネル）
}

func (e *DimensionError) Error() string {
	axisName := "columns"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("jetscope: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "columns"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

// ValidationError は入力パラメータの検証に失敗した場合のエラーです。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("jetscope: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	return errors.WithStack(&ValidationError{ParamName: param, Reason: reason, Value: value})
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("jetscope: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

// NumericalInstabilityError は数値計算でNaNやInfが発生した場合のエラーです。
type NumericalInstabilityError struct {
	Operation string
	Values    []float64
	Index     int // 問題が起きたサンプル番号
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("jetscope: numerical instability detected in %s at sample %d. Values: [%s]",
		e.Operation, e.Index, valStr)
}

// NewNumericalInstabilityError は新しいNumericalInstabilityErrorを作成します。
func NewNumericalInstabilityError(operation string, values []float64, index int) error {
	return errors.WithStack(&NumericalInstabilityError{
		Operation: operation,
		Values:    values,
		Index:     index,
	})
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")

	// ErrNonSquareImage はジェット画像が正方形でない場合のエラーです。
	ErrNonSquareImage = New("jet image is not square")
)
