package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shouni/go-restyle-kit/internal/config"
	intprompt "github.com/shouni/go-restyle-kit/internal/prompt"
	"github.com/shouni/go-restyle-kit/pkg/asset"
	"github.com/shouni/go-restyle-kit/pkg/domain"
	"github.com/shouni/go-restyle-kit/pkg/gemini"
	"github.com/shouni/go-restyle-kit/pkg/prompt"
	"github.com/shouni/go-restyle-kit/pkg/stream"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// StyleRunner は、スタイル転写パイプラインの全工程を順番に駆動する実体なのだ。
// 要約 → プロンプト合成 → 承認ゲート → ターゲットごとの生成、という一本道で、
// ターゲット単位の失敗はレポートに記録してバッチを継続するのだ。
type StyleRunner struct {
	generator  gemini.Generator
	loader     *asset.Loader
	limiter    *rate.Limiter
	approve    ApprovalFunc
	textModel  string // スタイル要約に使うモデル
	imageModel string // 画像生成に使うモデル
	basePrompt string
	outputDir  string
}

// NewStyleRunner は StyleRunner の新しいインスタンスを生成して返す。
func NewStyleRunner(
	generator gemini.Generator,
	loader *asset.Loader,
	limiter *rate.Limiter,
	approve ApprovalFunc,
	textModel, imageModel, basePrompt, outputDir string,
) *StyleRunner {
	return &StyleRunner{
		generator:  generator,
		loader:     loader,
		limiter:    limiter,
		approve:    approve,
		textModel:  textModel,
		imageModel: imageModel,
		basePrompt: basePrompt,
		outputDir:  outputDir,
	}
}

// Run はパイプライン1回分を実行し、ターゲットごとの結果レポートを返すのだ。
// 設定エラーと要約エラーは致命として即座に返し、それ以降のエラーは
// ターゲット単位でレポートに閉じ込めるのだ。
func (r *StyleRunner) Run(ctx context.Context, styleImages, targetPhotos []string) (*domain.RunReport, error) {
	// 前提チェックはネットワークに触れる前にまとめて行うのだ
	if err := validateInputs(styleImages, targetPhotos); err != nil {
		return nil, err
	}

	// --- SUMMARIZE ---
	style, err := r.Summarize(ctx, styleImages)
	if err != nil {
		return nil, err
	}

	// --- COMPOSE ---
	connective, err := intprompt.GetPromptByKind(intprompt.KindStyleConnective)
	if err != nil {
		return nil, err
	}
	finalPrompt := prompt.Compose(r.basePrompt, connective, style)

	// --- AWAIT_APPROVAL ---
	// 明示的な肯定が得られるまで生成リクエストは1件も発行しないのだ
	approved, err := r.approve(style, finalPrompt)
	if err != nil {
		return nil, err
	}

	report := &domain.RunReport{}
	if !approved {
		slog.Info("承認が得られなかったため、画像を生成せずに中断するのだ")
		report.Aborted = true
		return report, nil
	}

	// --- GENERATE_EACH ---
	// ターゲットは与えられた順に1件ずつ処理するのだ。並列化はしない。
	// 同時に飛ぶリクエストとオープンなストリームを常に1つに抑えるためなのだ。
	for _, photoPath := range targetPhotos {
		report.Add(r.generateOne(ctx, styleImages, photoPath, finalPrompt))
	}

	return report, nil
}

// Summarize は参照画像から画風の説明文を導出するのだ。
// 成功時は空でないスタイル記述を返し、候補なし・内容なし・空文字は
// すべて EmptySummaryError として失敗するのだ（部分成功はない）。
func (r *StyleRunner) Summarize(ctx context.Context, styleImages []string) (domain.StyleDescription, error) {
	parts, err := r.loader.Load(ctx, styleImages)
	if err != nil {
		return "", err
	}

	instructions, err := intprompt.GetPromptByKind(intprompt.KindStyleSummary)
	if err != nil {
		return "", err
	}
	parts = append(parts, genai.NewPartFromText(instructions))

	resp, err := r.generator.Generate(ctx, r.textModel, parts, []string{gemini.ModalityText})
	if err != nil {
		return "", fmt.Errorf("スタイル要約リクエストに失敗しました: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &domain.EmptySummaryError{Reason: "モデルが候補を返しませんでした"}
	}

	// 先頭候補のテキストパートを到着順に改行で連結するのだ
	var texts []string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			texts = append(texts, strings.TrimSpace(part.Text))
		}
	}

	return domain.NewStyleDescription(strings.Join(texts, "\n"))
}

// generateOne は1ターゲット分の生成を実行し、結果を値として返すのだ。
// どんな失敗もこの関数の中で結果値に変換され、呼び出し側のループを止めないのだ。
func (r *StyleRunner) generateOne(ctx context.Context, styleImages []string, photoPath, finalPrompt string) domain.TargetResult {
	if _, err := os.Stat(photoPath); err != nil {
		slog.Warn("ターゲット写真が見つからないためスキップするのだ", "path", photoPath)
		return domain.TargetResult{
			Path:    photoPath,
			Status:  domain.StatusSkipped,
			Message: "ターゲット写真が存在しません",
		}
	}

	// 生成リクエストの流量制限。順次処理でも連続爆撃は避けるのだ
	if err := r.limiter.Wait(ctx); err != nil {
		return failedResult(photoPath, err)
	}

	slog.Info("ターゲットを処理中...", "path", photoPath)

	// 参照画像＋このターゲット1枚を順序どおりに積み、最終プロンプトで締めるのだ
	parts, err := r.loader.Load(ctx, append(append([]string{}, styleImages...), photoPath))
	if err != nil {
		return failedResult(photoPath, err)
	}
	parts = append(parts, genai.NewPartFromText(finalPrompt))

	targetDir := filepath.Join(r.outputDir, asset.TargetBaseName(photoPath))
	sink, err := stream.NewDirSink(targetDir, asset.DefaultStyledFileName)
	if err != nil {
		return failedResult(photoPath, err)
	}

	src := r.generator.GenerateStream(ctx, r.imageModel, parts, []string{gemini.ModalityImage, gemini.ModalityText})
	result, err := stream.Decode(src, sink)
	if err != nil {
		slog.Error("ターゲットの生成に失敗したのだ", "path", photoPath, "error", err)
		return failedResult(photoPath, err)
	}

	for _, text := range result.Texts {
		slog.Info("モデルからのメッセージなのだ", "path", photoPath, "text", text)
	}

	if result.NoOutput() {
		slog.Warn("ストリームを飲み切ったが成果物がゼロだったのだ", "path", photoPath)
		return domain.TargetResult{
			Path:      photoPath,
			Status:    domain.StatusNoOutput,
			OutputDir: targetDir,
			Message:   "応答にテキストも画像も含まれていませんでした",
		}
	}

	slog.Info("ターゲットの生成が完了したのだ", "path", photoPath, "images", result.ImageCount, "output_dir", targetDir)
	return domain.TargetResult{
		Path:       photoPath,
		Status:     domain.StatusGenerated,
		OutputDir:  targetDir,
		ImageCount: result.ImageCount,
	}
}

// validateInputs は参照画像の枚数と、ターゲットのベース名重複を検査するのだ。
// ベース名が衝突すると出力サブディレクトリが同じ場所を指して上書き合戦になる
// ため、フェイルファストで弾くのだ。
func validateInputs(styleImages, targetPhotos []string) error {
	if len(styleImages) < config.MinStyleImages {
		return &domain.ConfigError{
			Reason: fmt.Sprintf("参照スタイル画像は最低%d枚必要です（指定: %d枚）", config.MinStyleImages, len(styleImages)),
		}
	}

	seen := make(map[string]string, len(targetPhotos))
	for _, photo := range targetPhotos {
		base := asset.TargetBaseName(photo)
		if prev, ok := seen[base]; ok {
			return &domain.ConfigError{
				Reason: fmt.Sprintf("ターゲットのベース名 '%s' が重複しています ('%s' と '%s')。出力先が衝突します", base, prev, photo),
			}
		}
		seen[base] = photo
	}
	return nil
}

func failedResult(photoPath string, err error) domain.TargetResult {
	return domain.TargetResult{
		Path:    photoPath,
		Status:  domain.StatusFailed,
		Message: err.Error(),
	}
}
