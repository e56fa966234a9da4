package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-restyle-kit/internal/builder"
	"github.com/shouni/go-restyle-kit/internal/config"

	"github.com/shouni/go-http-kit/httpkit"
)

// ExecuteStyleTransfer は、参照画像の要約から承認ゲートを経て、
// 全ターゲットへのスタイル適用までの一連の処理を実行するのだ。
func ExecuteStyleTransfer(ctx context.Context, cfg *config.Config) error {
	appCtx, err := setupAppContext(ctx, cfg)
	if err != nil {
		return err
	}

	styleRunner, err := builder.BuildStyleRunner(appCtx)
	if err != nil {
		return fmt.Errorf("StyleRunnerの構築に失敗したのだ: %w", err)
	}

	report, err := styleRunner.Run(ctx, cfg.Options.StyleImages, cfg.Options.TargetPhotos)
	if err != nil {
		return fmt.Errorf("スタイル転写パイプラインに失敗したのだ: %w", err)
	}

	// 中断でも完走でも、最後に必ず人間向けのサマリーを残すのだ
	slog.Info(report.Summary())
	return nil
}

// ExecuteRemix は、複数画像の単発リミックス（Phase 1 のみの簡易版）を実行するのだ。
func ExecuteRemix(ctx context.Context, cfg *config.Config) error {
	appCtx, err := setupAppContext(ctx, cfg)
	if err != nil {
		return err
	}

	remixRunner, err := builder.BuildRemixRunner(appCtx)
	if err != nil {
		return fmt.Errorf("RemixRunnerの構築に失敗したのだ: %w", err)
	}

	if _, err := remixRunner.Run(ctx, cfg.Options.RemixImages, cfg.Options.RemixPrompt); err != nil {
		return fmt.Errorf("リミックスに失敗したのだ: %w", err)
	}
	return nil
}

// setupAppContext は、提供された設定と共有コンポーネントを使用して、アプリケーションコンテキストを初期化して返すのだ。
// APIキーの検証はクライアント初期化の中で、ネットワークに触れる前に行われるのだ。
func setupAppContext(ctx context.Context, cfg *config.Config) (*builder.AppContext, error) {
	httpClient := httpkit.New(cfg.Options.HTTPTimeout)

	generator, err := builder.InitializeGenerator(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, err
	}

	appCtx := builder.NewAppContext(cfg, httpClient, generator)
	return &appCtx, nil
}
