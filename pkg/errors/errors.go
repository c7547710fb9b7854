// Package errors はモデルのデコードと推論で使うエラー型と警告システムを提供します。
// スタックトレースの付与には cockroachdb/errors を、警告の構造化出力には zerolog を使います。
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
		log.Printf("gbtree-Warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定し、それまでのハンドラを返します。
// nil を渡すと警告は破棄されます。
//
// 例:
//
//	prev := errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
//	defer errors.SetWarningHandler(prev)
func SetWarningHandler(handler func(w error)) func(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	prev := warningHandler
	warningHandler = handler
	return prev
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
// nil を渡すと従来のハンドラに戻ります。
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

// IgnoredSectionWarning はデコーダが読み飛ばしたデータが意味を持っていた可能性がある場合の警告です。
// 例えば、複数値リーフベクタや複数の出力グループを持つモデルなど。
type IgnoredSectionWarning struct {
	Section string
	Reason  string
	Bytes   int // 読み飛ばしたバイト数
}

func (w *IgnoredSectionWarning) Error() string {
	if w.Bytes > 0 {
		return fmt.Sprintf("%s ignored (%d bytes): %s", w.Section, w.Bytes, w.Reason)
	}
	return fmt.Sprintf("%s ignored: %s", w.Section, w.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *IgnoredSectionWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("section", w.Section).
		Str("reason", w.Reason).
		Int("bytes", w.Bytes).
		Str("type", "IgnoredSectionWarning")
}

// NewIgnoredSectionWarning は新しいIgnoredSectionWarningを作成します。
func NewIgnoredSectionWarning(section, reason string, bytes int) *IgnoredSectionWarning {
	return &IgnoredSectionWarning{Section: section, Reason: reason, Bytes: bytes}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// ErrMalformedModel はモデルバッファのデコードに失敗したことを示すセンチネルです。
// すべての MalformedModelError は errors.Is(err, ErrMalformedModel) を満たします。
var ErrMalformedModel = New("malformed model")

// MalformedModelError はバイナリモデルのデコードに失敗した場合のエラーです。
// 不正な木・特徴量数、タグ文字列の不正なUTF-8、バッファの切り詰めなどを表します。
type MalformedModelError struct {
	Section string // 失敗したセクション（例: "header", "tree[3].nodes"）
	Offset  int    // 失敗時のバッファ内オフセット
	Reason  string
}

func (e *MalformedModelError) Error() string {
	return fmt.Sprintf("gbtree: malformed model: %s at offset %d: %s", e.Section, e.Offset, e.Reason)
}

// Is は ErrMalformedModel との比較を可能にします。
func (e *MalformedModelError) Is(target error) bool {
	return target == ErrMalformedModel
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *MalformedModelError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("section", e.Section).
		Int("offset", e.Offset).
		Str("reason", e.Reason).
		Str("type", "MalformedModelError")
}

// NewMalformedModelError は新しいMalformedModelErrorを作成し、スタックトレースを付与します。
func NewMalformedModelError(section string, offset int, reason string) error {
	err := &MalformedModelError{Section: section, Offset: offset, Reason: reason}
	return errors.WithStack(err)
}

// ValidationError は入力パラメータの検証に失敗した場合のエラーです。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("gbtree: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
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
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
// 例えば、libsvm 行の `index:value` ペアが数値として解釈できない場合など。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("gbtree: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ModelError はモデルの読み込みに関する一般的なエラーです。
// 取得元（ファイル、S3 など）の失敗をデコード失敗と区別するために使います。
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gbtree: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("gbtree: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError は新しいModelErrorを作成し、スタックトレースを付与します。
func NewModelError(op, kind string, err error) error {
	modelErr := &ModelError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(modelErr)
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
)
