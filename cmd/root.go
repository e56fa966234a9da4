package cmd

import (
	"fmt"
	"os"

	"github.com/shouni/go-restyle-kit/internal/config"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"
)

// opts はコマンドライン引数の値を集約する実行時オプションなのだ。
var opts config.RunOptions

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	// --- 生成結果の出力設定 ---
	rootCmd.PersistentFlags().StringVarP(&opts.OutputDir, "output-dir", "o", config.DefaultOutputDir, "生成された画像を保存するディレクトリなのだ。")

	// --- AIモデル・挙動設定 ---
	rootCmd.PersistentFlags().StringVar(&opts.AIModel, "model", config.DefaultModel, "スタイル要約に使用する Gemini モデル名なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.ImageModel, "image-model", config.DefaultImageModel, "画像生成に使用する Gemini モデル名なのだ。")
	rootCmd.PersistentFlags().DurationVar(&opts.HTTPTimeout, "http-timeout", config.DefaultHTTPTimeout, "リモートアセット取得のタイムアウトなのだ。")

	// --- スタイル転写パイプライン固有設定 ---
	styleCmd.Flags().StringArrayVarP(&opts.StyleImages, "style-image", "s", nil, "参照スタイル画像のパス（2枚以上必要なのだ）。")
	styleCmd.Flags().StringArrayVarP(&opts.TargetPhotos, "photo", "p", nil, "スタイルを適用するターゲット写真のパスなのだ。")
	styleCmd.Flags().StringVar(&opts.BasePrompt, "base-prompt", config.DefaultBasePrompt, "スタイル記述と合成する基本プロンプトなのだ。")
	styleCmd.Flags().BoolVarP(&opts.AutoApprove, "yes", "y", false, "承認プロンプトをスキップして常に続行するのだ。")

	// --- リミックス固有設定 ---
	remixCmd.Flags().StringArrayVarP(&opts.RemixImages, "image", "i", nil, "リミックスする入力画像のパス（1〜5枚なのだ）。")
	remixCmd.Flags().StringVar(&opts.RemixPrompt, "prompt", "", "リミックス用プロンプト（省略時は枚数に応じたデフォルトなのだ）。")
}

// preRunAppE は、コマンド実行前に環境変数などの必須チェックを行うのだ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	// Gemini APIを利用するため、APIキーの存在チェックは欠かせないのだ！
	if os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("エラー: 環境変数 GEMINI_API_KEY が設定されていません。Gemini APIの利用には必須なのだ")
	}

	return nil
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	clibase.Execute(
		"restyle-go",
		addAppFlags,
		preRunAppE,
		styleCmd,
		remixCmd,
	)
}
