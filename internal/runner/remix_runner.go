package runner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-restyle-kit/internal/config"
	intprompt "github.com/shouni/go-restyle-kit/internal/prompt"
	"github.com/shouni/go-restyle-kit/pkg/asset"
	"github.com/shouni/go-restyle-kit/pkg/domain"
	"github.com/shouni/go-restyle-kit/pkg/gemini"
	"github.com/shouni/go-restyle-kit/pkg/stream"

	"google.golang.org/genai"
)

// RemixRunner は、複数画像を1回のストリーミングリクエストで混ぜ合わせる
// 単発（シングルショット）版の実体なのだ。承認ゲートもバッチループもないのだ。
type RemixRunner struct {
	generator  gemini.Generator
	loader     *asset.Loader
	imageModel string
	outputDir  string
}

// NewRemixRunner は RemixRunner の新しいインスタンスを生成して返す。
func NewRemixRunner(generator gemini.Generator, loader *asset.Loader, imageModel, outputDir string) *RemixRunner {
	return &RemixRunner{
		generator:  generator,
		loader:     loader,
		imageModel: imageModel,
		outputDir:  outputDir,
	}
}

// Run は入力画像とプロンプトから1回だけ生成を実行し、結果を出力ディレクトリへ
// 書き出すのだ。プロンプトが空なら画像の枚数に応じたデフォルトを使うのだ。
func (r *RemixRunner) Run(ctx context.Context, imagePaths []string, userPrompt string) (*stream.Result, error) {
	if len(imagePaths) == 0 {
		return nil, &domain.ConfigError{Reason: "リミックスする画像を1枚以上指定してください"}
	}
	if len(imagePaths) > config.MaxRemixImages {
		return nil, &domain.ConfigError{
			Reason: fmt.Sprintf("リミックスできる画像は最大%d枚です（指定: %d枚）", config.MaxRemixImages, len(imagePaths)),
		}
	}

	finalPrompt := strings.TrimSpace(userPrompt)
	if finalPrompt == "" {
		finalPrompt = intprompt.DefaultRemixPrompt(len(imagePaths))
		slog.Info("プロンプト未指定のためデフォルトを使うのだ", "prompt", finalPrompt)
	}

	parts, err := r.loader.Load(ctx, imagePaths)
	if err != nil {
		return nil, err
	}
	parts = append(parts, genai.NewPartFromText(finalPrompt))

	sink, err := stream.NewDirSink(r.outputDir, asset.DefaultRemixFileName)
	if err != nil {
		return nil, err
	}

	src := r.generator.GenerateStream(ctx, r.imageModel, parts, []string{gemini.ModalityImage, gemini.ModalityText})
	result, err := stream.Decode(src, sink)
	if err != nil {
		return nil, err
	}

	for _, text := range result.Texts {
		slog.Info("モデルからのメッセージなのだ", "text", text)
	}

	if result.NoOutput() {
		slog.Warn("モデルから画像が返らなかったのだ。プロンプトや入力を変えて再試行してほしいのだ")
		return result, nil
	}

	slog.Info("リミックスが完了したのだ", "images", result.ImageCount, "output_dir", r.outputDir)
	return result, nil
}
