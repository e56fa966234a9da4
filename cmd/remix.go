package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-restyle-kit/internal/config"
	"github.com/shouni/go-restyle-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// remixCmd は、複数の入力画像を1回の生成リクエストで混ぜ合わせる
// 単発リミックスを実行するサブコマンドなのだ。承認ゲートは通らないのだ。
var remixCmd = &cobra.Command{
	Use:   "remix",
	Short: "1〜5枚の画像をプロンプトでリミックスするのだ。",
	Long: `入力画像（1〜5枚）と任意のプロンプトから、1回のストリーミング生成で
新しい画像を作る簡易モードなのだ。プロンプトを省略すると、枚数に応じた
デフォルト指示が使われるのだよ。`,
	RunE: remixCommand,
}

// remixCommand は、remix サブコマンドの実行ロジック本体なのだ。
func remixCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if len(opts.RemixImages) == 0 {
		return fmt.Errorf("リミックスする画像（--image）を1枚以上指定してほしいのだ")
	}
	if len(opts.RemixImages) > config.MaxRemixImages {
		return fmt.Errorf("リミックスできる画像は最大%d枚なのだ（指定: %d枚）", config.MaxRemixImages, len(opts.RemixImages))
	}

	cfg := config.LoadConfig()
	cfg.Options = opts
	cfg.GeminiImageModel = opts.ImageModel

	slog.Info("リミックスモードを起動するのだ！",
		"images", len(opts.RemixImages),
		"image_model", cfg.GeminiImageModel,
		"output_dir", opts.OutputDir)

	return pipeline.ExecuteRemix(ctx, cfg)
}
