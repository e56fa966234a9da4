package builder

import (
	"context"
	"fmt"
	"os"

	"github.com/shouni/go-restyle-kit/internal/config"
	"github.com/shouni/go-restyle-kit/internal/runner"
	"github.com/shouni/go-restyle-kit/pkg/asset"
	"github.com/shouni/go-restyle-kit/pkg/gemini"

	"golang.org/x/time/rate"
)

const defaultRateBurst = 1

// BuildStyleRunner はスタイル転写パイプラインを駆動する Runner を構築します。
func BuildStyleRunner(appCtx *AppContext) (*runner.StyleRunner, error) {
	// 参照画像は全ターゲットの前提となるため、読めないものは即エラーにする
	loader := asset.NewLoader(appCtx.httpClient, asset.Strict)

	approve := runner.NewConsoleApproval(os.Stdin, os.Stdout)
	if appCtx.Options.AutoApprove {
		approve = runner.AutoApproval
	}

	// 生成リクエストは常に1件ずつ。リミッターは連続リクエストの間隔を空けるだけなのだ
	limiter := rate.NewLimiter(rate.Every(config.DefaultRateLimit), defaultRateBurst)

	return runner.NewStyleRunner(
		appCtx.generator,
		loader,
		limiter,
		approve,
		appCtx.Options.AIModel,
		appCtx.Options.ImageModel,
		appCtx.Options.BasePrompt,
		appCtx.Options.OutputDir,
	), nil
}

// BuildRemixRunner は単発リミックスを担当する Runner を構築します。
func BuildRemixRunner(appCtx *AppContext) (*runner.RemixRunner, error) {
	// リミックスは入力形式に寛容でよいので Lenient ポリシーを使うのだ
	loader := asset.NewLoader(appCtx.httpClient, asset.Lenient)

	return runner.NewRemixRunner(
		appCtx.generator,
		loader,
		appCtx.Options.ImageModel,
		appCtx.Options.OutputDir,
	), nil
}

// InitializeGenerator は gemini クライアントを初期化します。
func InitializeGenerator(ctx context.Context, apiKey string) (gemini.Generator, error) {
	generator, err := gemini.NewClient(ctx, apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create ai client: %w", err)
	}
	return generator, nil
}
