package runner

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/shouni/go-restyle-kit/pkg/domain"
)

// ApprovalFunc は人間の承認チェックポイントを表す差し替え可能な境界なのだ。
// スタイル記述と最終プロンプトをそのまま提示し、明示的な可否を返すのだ。
// タイムアウトは持たず、応答があるまでブロックするのだ。
type ApprovalFunc func(style domain.StyleDescription, finalPrompt string) (bool, error)

// NewConsoleApproval は対話的な承認関数を構築するのだ。
// 入力は小文字化と前後空白除去で正規化され、"y" と "yes" のみを肯定とみなすのだ。
// それ以外の応答（未知の文字列を含む）はすべて否定なのだ。
func NewConsoleApproval(in io.Reader, out io.Writer) ApprovalFunc {
	reader := bufio.NewReader(in)
	return func(style domain.StyleDescription, finalPrompt string) (bool, error) {
		fmt.Fprintf(out, "Generated style description:\n\n%s\n", style)
		fmt.Fprintf(out, "\nProposed prompt:\n\n%s\n", finalPrompt)
		fmt.Fprint(out, "\nProceed with this prompt? [y/N]: ")

		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return false, fmt.Errorf("承認入力の読み取りに失敗しました: %w", err)
		}

		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes", nil
	}
}

// AutoApproval は --yes 指定時に使う、常に許可する承認関数なのだ。
func AutoApproval(domain.StyleDescription, string) (bool, error) {
	return true, nil
}
