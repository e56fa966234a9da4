package config

import (
	"time"

	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義なのだ
const (
	DefaultModel       = "gemini-3-flash-preview"
	DefaultImageModel  = "gemini-3-pro-image-preview"
	DefaultHTTPTimeout = 30 * time.Second
	DefaultRateLimit   = 30 * time.Second
	DefaultOutputDir   = "styled_output" // スタイル適用済み画像のデフォルト保存先なのだ
	DefaultBasePrompt  = "Recreate this photo as a postcard illustration while preserving the main subject and proportions."

	// MinStyleImages はスタイル要約に必要な参照画像の最小枚数です。
	MinStyleImages = 2
	// MaxRemixImages はリミックスに渡せる入力画像の最大枚数です。
	MaxRemixImages = 5
)

// Config はアプリケーション全体の環境設定（APIキーやモデル名）を保持する構造体なのだ。
type Config struct {
	GeminiAPIKey     string
	GeminiModel      string
	GeminiImageModel string

	Options RunOptions
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ！
func LoadConfig() *Config {
	cfg := &Config{
		GeminiAPIKey:     envutil.GetEnv("GEMINI_API_KEY", ""),
		GeminiModel:      envutil.GetEnv("GEMINI_MODEL", DefaultModel),
		GeminiImageModel: envutil.GetEnv("IMAGE_GEMINI_MODEL", DefaultImageModel),
	}
	return cfg
}

// RunOptions は CLI フラグから渡される実行時のパラメータなのだ。
type RunOptions struct {
	// 入力アセット関連
	StyleImages  []string // --style-image: 参照スタイル画像（2枚以上）
	TargetPhotos []string // --photo: スタイルを適用するターゲット写真
	RemixImages  []string // --image: リミックスする入力画像（1〜5枚）

	// プロンプト関連
	BasePrompt  string // --base-prompt: スタイル記述と合成する基本指示
	RemixPrompt string // --prompt: リミックス用の任意プロンプト

	// 出力関連
	OutputDir string // --output-dir

	// AI挙動設定
	AIModel    string // --model: スタイル要約に使うテキスト生成用のGeminiモデル
	ImageModel string // --image-model: 画像生成用のGeminiモデル

	// 実行制御
	AutoApprove bool          // --yes: 承認プロンプトをスキップして常に許可する
	HTTPTimeout time.Duration // --http-timeout
}
