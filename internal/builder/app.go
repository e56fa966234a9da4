package builder

import (
	"github.com/shouni/go-restyle-kit/internal/config"
	"github.com/shouni/go-restyle-kit/pkg/gemini"

	"github.com/shouni/go-http-kit/httpkit"
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持する
// これを各Build関数に渡すことで、依存関係の注入を簡素化します。
type AppContext struct {
	Config     *config.Config          // Configは、環境変数から読み込まれたグローバルな設定です（APIキー、モデル名など）。
	Options    config.RunOptions       // Optionsは、コマンドラインから渡された実行時の設定です（入力パス、出力先など）。
	generator  gemini.Generator        // generator はGeminiの通信に使う共通クライアント
	httpClient httpkit.Doer // httpClient はリモートアセットの取得に使う共通クライアント
}

// NewAppContext は AppContext の新しいインスタンスを生成する
func NewAppContext(
	cfg *config.Config,
	httpClient httpkit.Doer,
	generator gemini.Generator,
) AppContext {
	return AppContext{
		Config:     cfg,
		Options:    cfg.Options,
		generator:  generator,
		httpClient: httpClient,
	}
}
