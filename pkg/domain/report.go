package domain

import (
	"fmt"
	"strings"
)

// TargetStatus は1ターゲットの処理結果の分類です。
type TargetStatus string

const (
	// StatusGenerated は画像が1枚以上生成されたことを示します。
	StatusGenerated TargetStatus = "generated"
	// StatusSkipped はターゲットファイルが存在せずスキップされたことを示します。
	StatusSkipped TargetStatus = "skipped"
	// StatusFailed はリクエスト送信またはデコードに失敗したことを示します。
	StatusFailed TargetStatus = "failed"
	// StatusNoOutput はストリームを飲み切っても成果物がゼロだったことを示します。
	// 失敗とは区別される情報レベルの結果です。
	StatusNoOutput TargetStatus = "no_output"
)

// TargetResult は1ターゲット分の処理結果です。
type TargetResult struct {
	Path       string       // 入力されたターゲット写真のパス
	Status     TargetStatus // 処理結果の分類
	OutputDir  string       // 生成画像が書き出されたディレクトリ（生成時のみ）
	ImageCount int          // 書き出された画像の枚数
	Message    string       // スキップ理由やエラー内容など
}

// RunReport は1回のパイプライン実行の集計結果です。
// ターゲット単位の失敗はここに記録され、バッチのループを越えて伝播しません。
type RunReport struct {
	Aborted bool // 承認が拒否されて中断した場合 true
	Results []TargetResult
}

// Add はターゲットの結果を到着順に追記します。
func (r *RunReport) Add(result TargetResult) {
	r.Results = append(r.Results, result)
}

// CountByStatus は指定ステータスの件数を返します。
func (r *RunReport) CountByStatus(status TargetStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Summary は人間が読むための1行サマリーを組み立てるのだ。
func (r *RunReport) Summary() string {
	if r.Aborted {
		return "承認が得られなかったため、画像を生成せずに中断しました"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("全%dターゲットを処理しました (生成:%d スキップ:%d 失敗:%d 出力なし:%d)",
		len(r.Results),
		r.CountByStatus(StatusGenerated),
		r.CountByStatus(StatusSkipped),
		r.CountByStatus(StatusFailed),
		r.CountByStatus(StatusNoOutput),
	))

	for _, res := range r.Results {
		if res.Status == StatusGenerated {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n  - %s: %s (%s)", res.Path, res.Status, res.Message))
	}
	return sb.String()
}
