package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-restyle-kit/internal/config"
	"github.com/shouni/go-restyle-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// styleCmd は、参照画像から画風を要約し、承認を経て各ターゲット写真へ
// スタイルを適用するパイプラインを実行するサブコマンドなのだ。
var styleCmd = &cobra.Command{
	Use:   "style",
	Short: "参照画像の画風を要約して、各ターゲット写真に適用するのだ。",
	Long: `参照スタイル画像（2枚以上）の共通の画風をAIに要約させ、基本プロンプトと
合成した最終プロンプトを提示するのだ。承認すると、各ターゲット写真に対して
順番に画像生成を実行し、ターゲットごとのサブディレクトリへ保存するのだよ。`,
	RunE: styleCommand,
}

// styleCommand は、style サブコマンドの実行ロジック本体なのだ。
// 入力のバリデーションを行い、pipeline.ExecuteStyleTransfer を呼び出して一連の処理をキックするのだ。
func styleCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// 必須となる入力のチェック。詳細な枚数検証はパイプライン側でも行われるのだ
	if len(opts.StyleImages) < config.MinStyleImages {
		return fmt.Errorf("参照スタイル画像（--style-image）を最低%d枚指定してほしいのだ", config.MinStyleImages)
	}
	if len(opts.TargetPhotos) == 0 {
		return fmt.Errorf("ターゲット写真（--photo）を1枚以上指定してほしいのだ")
	}

	// 1. 環境変数から基本設定をロード
	cfg := config.LoadConfig()

	// 2. コマンドライン引数の値を反映
	cfg.Options = opts
	cfg.GeminiModel = opts.AIModel
	cfg.GeminiImageModel = opts.ImageModel

	slog.Info("スタイル転写パイプラインを起動するのだ！",
		"style_images", len(opts.StyleImages),
		"targets", len(opts.TargetPhotos),
		"text_model", cfg.GeminiModel,
		"image_model", cfg.GeminiImageModel,
		"output_dir", opts.OutputDir)

	// 3. パイプライン実行
	return pipeline.ExecuteStyleTransfer(ctx, cfg)
}
