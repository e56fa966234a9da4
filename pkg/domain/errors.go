package domain

import "fmt"

// ConfigError は実行前の設定不備（APIキー欠落、参照画像不足など）を表します。
// ネットワーク呼び出しに到達する前に検出され、実行全体を中断します。
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("設定エラー: %s", e.Reason)
}

// EmptySummaryError はモデルが有効なスタイル記述を返さなかったことを表します。
// スタイル要約は全工程の前提となるため、このエラーは実行全体に対して致命的です。
type EmptySummaryError struct {
	Reason string
}

func (e *EmptySummaryError) Error() string {
	return fmt.Sprintf("スタイル記述を取得できませんでした: %s", e.Reason)
}

// UnsupportedMediaError は拡張子から Content-Type を特定できなかったことを表します。
// Strict ポリシーのローダーのみが返します。
type UnsupportedMediaError struct {
	Path string
}

func (e *UnsupportedMediaError) Error() string {
	return fmt.Sprintf("サポートされていないメディア形式です: %s", e.Path)
}

// DecodeError は1ターゲット分のストリーム読み取り中の失敗を表します。
// ターゲット単位で報告され、バッチ全体には伝播しません。
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("ストリームのデコードに失敗しました: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
