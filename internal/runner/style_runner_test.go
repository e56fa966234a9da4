package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	intprompt "github.com/shouni/go-restyle-kit/internal/prompt"
	"github.com/shouni/go-restyle-kit/pkg/asset"
	"github.com/shouni/go-restyle-kit/pkg/domain"
	"github.com/shouni/go-restyle-kit/pkg/gemini"
	"github.com/shouni/go-restyle-kit/pkg/prompt"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// stubGenerator は Generator のネットワークなしスタブなのだ。
// 要約用の固定テキストと、ストリーム用の固定画像列を返すのだ。
type stubGenerator struct {
	summaryText  string   // Generate が返すテキスト（空なら内容なしの応答）
	streamImages [][]byte // GenerateStream が流す画像列
	streamErr    error    // 画像列の後に流すエラー

	generateCalls int
	streamCalls   int
	lastParts     []*genai.Part // 直近のストリームリクエストのパート列
}

func (s *stubGenerator) Generate(_ context.Context, _ string, _ []*genai.Part, _ []string) (*genai.GenerateContentResponse, error) {
	s.generateCalls++
	if s.summaryText == "" {
		return &genai.GenerateContentResponse{}, nil
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(s.summaryText)}}},
		},
	}, nil
}

func (s *stubGenerator) GenerateStream(_ context.Context, _ string, parts []*genai.Part, _ []string) gemini.Stream {
	s.streamCalls++
	s.lastParts = parts
	images := s.streamImages
	streamErr := s.streamErr
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for _, img := range images {
			chunk := &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{
					{Content: &genai.Content{Parts: []*genai.Part{
						{InlineData: &genai.Blob{MIMEType: "image/png", Data: img}},
					}}},
				},
			}
			if !yield(chunk, nil) {
				return
			}
		}
		if streamErr != nil {
			yield(nil, streamErr)
		}
	}
}

// approveAlways / rejectAlways は承認境界のスタブなのだ。
func approveAlways(domain.StyleDescription, string) (bool, error) { return true, nil }
func rejectAlways(domain.StyleDescription, string) (bool, error)  { return false, nil }

func newTestRunner(t *testing.T, gen *stubGenerator, approve ApprovalFunc, outputDir string) *StyleRunner {
	t.Helper()
	return NewStyleRunner(
		gen,
		asset.NewLoader(nil, asset.Strict),
		rate.NewLimiter(rate.Inf, 1),
		approve,
		"text-model",
		"image-model",
		"Recreate this photo as a postcard illustration while preserving the main subject and proportions.",
		outputDir,
	)
}

// writeStyleImages は参照画像としてダミーのjpgを2枚用意するのだ。
func writeStyleImages(t *testing.T, dir string) []string {
	t.Helper()
	paths := make([]string, 0, 2)
	for _, name := range []string{"s1.jpg", "s2.jpg"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("style-"+name), 0o644); err != nil {
			t.Fatalf("参照画像の作成に失敗したのだ: %v", err)
		}
		paths = append(paths, path)
	}
	return paths
}

func TestStyleRunner_MinimumReferences(t *testing.T) {
	t.Run("参照画像1枚では ConfigError で、ネットワークには触れないのだ", func(t *testing.T) {
		gen := &stubGenerator{summaryText: "- style"}
		r := newTestRunner(t, gen, approveAlways, t.TempDir())

		_, err := r.Run(context.Background(), []string{"only_one.jpg"}, []string{"t1.jpg"})
		if err == nil {
			t.Fatal("エラーが返らなかったのだ")
		}
		var cfgErr *domain.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("ConfigError ではないのだ: %T", err)
		}
		if gen.generateCalls != 0 || gen.streamCalls != 0 {
			t.Error("前提チェック前にリクエストが発行されたのだ")
		}
	})

	t.Run("参照画像2枚なら先に進むのだ", func(t *testing.T) {
		dir := t.TempDir()
		styleImages := writeStyleImages(t, dir)
		gen := &stubGenerator{summaryText: "- style", streamImages: [][]byte{[]byte("img")}}
		r := newTestRunner(t, gen, approveAlways, filepath.Join(dir, "out"))

		target := filepath.Join(dir, "t1.jpg")
		if err := os.WriteFile(target, []byte("photo"), 0o644); err != nil {
			t.Fatal(err)
		}

		if _, err := r.Run(context.Background(), styleImages, []string{target}); err != nil {
			t.Fatalf("実行に失敗したのだ: %v", err)
		}
		if gen.generateCalls != 1 {
			t.Errorf("要約リクエストは1回のはずなのだ: %d", gen.generateCalls)
		}
	})
}

func TestStyleRunner_DuplicateBaseNames(t *testing.T) {
	t.Run("ベース名が衝突するターゲットはフェイルファストで弾くのだ", func(t *testing.T) {
		gen := &stubGenerator{summaryText: "- style"}
		dir := t.TempDir()
		r := newTestRunner(t, gen, approveAlways, dir)

		_, err := r.Run(context.Background(),
			writeStyleImages(t, dir),
			[]string{"a/t1.jpg", "b/t1.png"})
		if err == nil {
			t.Fatal("エラーが返らなかったのだ")
		}
		var cfgErr *domain.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("ConfigError ではないのだ: %T", err)
		}
		if gen.generateCalls != 0 {
			t.Error("検証前にリクエストが発行されたのだ")
		}
	})
}

func TestStyleRunner_ApprovalGate(t *testing.T) {
	t.Run("承認が拒否されたら生成リクエストゼロで中断するのだ", func(t *testing.T) {
		dir := t.TempDir()
		styleImages := writeStyleImages(t, dir)
		outputDir := filepath.Join(dir, "out")
		gen := &stubGenerator{summaryText: "- style", streamImages: [][]byte{[]byte("img")}}
		r := newTestRunner(t, gen, rejectAlways, outputDir)

		target := filepath.Join(dir, "t1.jpg")
		if err := os.WriteFile(target, []byte("photo"), 0o644); err != nil {
			t.Fatal(err)
		}

		report, err := r.Run(context.Background(), styleImages, []string{target})
		if err != nil {
			t.Fatalf("中断は正常終了のはずなのだ: %v", err)
		}
		if !report.Aborted {
			t.Error("レポートが中断を示していないのだ")
		}
		if gen.streamCalls != 0 {
			t.Errorf("拒否後に生成リクエストが発行されたのだ: %d", gen.streamCalls)
		}
		if _, err := os.Stat(outputDir); !errors.Is(err, os.ErrNotExist) {
			t.Error("拒否したのに出力ディレクトリが作られたのだ")
		}
	})

	t.Run("承認関数にはスタイル記述と最終プロンプトがそのまま渡るのだ", func(t *testing.T) {
		dir := t.TempDir()
		styleImages := writeStyleImages(t, dir)
		gen := &stubGenerator{summaryText: "- warm palette"}

		var gotStyle domain.StyleDescription
		var gotPrompt string
		capture := func(style domain.StyleDescription, finalPrompt string) (bool, error) {
			gotStyle = style
			gotPrompt = finalPrompt
			return false, nil
		}

		r := newTestRunner(t, gen, capture, filepath.Join(dir, "out"))
		if _, err := r.Run(context.Background(), styleImages, nil); err != nil {
			t.Fatalf("実行に失敗したのだ: %v", err)
		}

		if gotStyle.String() != "- warm palette" {
			t.Errorf("スタイル記述が加工されているのだ: %q", gotStyle)
		}
		connective, err := intprompt.GetPromptByKind(intprompt.KindStyleConnective)
		if err != nil {
			t.Fatal(err)
		}
		want := prompt.Compose(
			"Recreate this photo as a postcard illustration while preserving the main subject and proportions.",
			connective, gotStyle)
		if gotPrompt != want {
			t.Errorf("最終プロンプトが合成結果と一致しないのだ。\n期待: %q\n実際: %q", want, gotPrompt)
		}
	})
}

func TestStyleRunner_PerTargetIsolation(t *testing.T) {
	t.Run("欠けたターゲットはスキップされ、残りは処理されるのだ", func(t *testing.T) {
		dir := t.TempDir()
		styleImages := writeStyleImages(t, dir)
		outputDir := filepath.Join(dir, "out")
		img := []byte("styled-bytes")
		gen := &stubGenerator{summaryText: "- style", streamImages: [][]byte{img}}
		r := newTestRunner(t, gen, approveAlways, outputDir)

		t1 := filepath.Join(dir, "t1.jpg")
		t3 := filepath.Join(dir, "t3.jpg")
		for _, p := range []string{t1, t3} {
			if err := os.WriteFile(p, []byte("photo"), 0o644); err != nil {
				t.Fatal(err)
			}
		}
		missing := filepath.Join(dir, "missing.jpg")

		report, err := r.Run(context.Background(), styleImages, []string{t1, missing, t3})
		if err != nil {
			t.Fatalf("バッチ全体が失敗したのだ: %v", err)
		}

		if len(report.Results) != 3 {
			t.Fatalf("結果の件数が違うのだ。期待: 3, 実際: %d", len(report.Results))
		}
		if report.Results[0].Status != domain.StatusGenerated {
			t.Errorf("t1 が生成扱いになっていないのだ: %s", report.Results[0].Status)
		}
		if report.Results[1].Status != domain.StatusSkipped {
			t.Errorf("missing がスキップ扱いになっていないのだ: %s", report.Results[1].Status)
		}
		if report.Results[2].Status != domain.StatusGenerated {
			t.Errorf("後続の t3 が処理されていないのだ: %s", report.Results[2].Status)
		}

		// 存在するターゲットだけに出力ディレクトリができる
		for _, base := range []string{"t1", "t3"} {
			data, err := os.ReadFile(filepath.Join(outputDir, base, "image_1.png"))
			if err != nil {
				t.Fatalf("%s の出力が読めないのだ: %v", base, err)
			}
			if !bytes.Equal(data, img) {
				t.Errorf("%s の出力内容が違うのだ", base)
			}
		}
		if _, err := os.Stat(filepath.Join(outputDir, "missing")); !errors.Is(err, os.ErrNotExist) {
			t.Error("欠けたターゲットの出力ディレクトリが作られたのだ")
		}
	})

	t.Run("ストリームの失敗は1ターゲットに閉じるのだ", func(t *testing.T) {
		dir := t.TempDir()
		styleImages := writeStyleImages(t, dir)
		gen := &stubGenerator{
			summaryText: "- style",
			streamErr:   errors.New("connection reset"),
		}
		r := newTestRunner(t, gen, approveAlways, filepath.Join(dir, "out"))

		t1 := filepath.Join(dir, "t1.jpg")
		t2 := filepath.Join(dir, "t2.jpg")
		for _, p := range []string{t1, t2} {
			if err := os.WriteFile(p, []byte("photo"), 0o644); err != nil {
				t.Fatal(err)
			}
		}

		report, err := r.Run(context.Background(), styleImages, []string{t1, t2})
		if err != nil {
			t.Fatalf("ターゲット単位の失敗がバッチを止めたのだ: %v", err)
		}
		if report.CountByStatus(domain.StatusFailed) != 2 {
			t.Errorf("両ターゲットとも失敗として記録されるはずなのだ: %+v", report.Results)
		}
		if gen.streamCalls != 2 {
			t.Errorf("失敗後も次のターゲットを試行するはずなのだ: %d", gen.streamCalls)
		}
	})

	t.Run("成果物ゼロのストリームは失敗ではなく出力なしなのだ", func(t *testing.T) {
		dir := t.TempDir()
		styleImages := writeStyleImages(t, dir)
		gen := &stubGenerator{summaryText: "- style"} // 画像もテキストも流さない
		r := newTestRunner(t, gen, approveAlways, filepath.Join(dir, "out"))

		t1 := filepath.Join(dir, "t1.jpg")
		if err := os.WriteFile(t1, []byte("photo"), 0o644); err != nil {
			t.Fatal(err)
		}

		report, err := r.Run(context.Background(), styleImages, []string{t1})
		if err != nil {
			t.Fatalf("実行に失敗したのだ: %v", err)
		}
		if report.Results[0].Status != domain.StatusNoOutput {
			t.Errorf("出力なし扱いになっていないのだ: %s", report.Results[0].Status)
		}
	})
}

func TestStyleRunner_Summarize(t *testing.T) {
	t.Run("候補のない応答は EmptySummaryError なのだ", func(t *testing.T) {
		dir := t.TempDir()
		styleImages := writeStyleImages(t, dir)
		gen := &stubGenerator{summaryText: ""} // 内容なしの応答
		r := newTestRunner(t, gen, approveAlways, dir)

		_, err := r.Summarize(context.Background(), styleImages)
		if err == nil {
			t.Fatal("エラーが返らなかったのだ")
		}
		var emptyErr *domain.EmptySummaryError
		if !errors.As(err, &emptyErr) {
			t.Fatalf("EmptySummaryError ではないのだ: %T", err)
		}
	})

	t.Run("要約エラーは致命で、生成リクエストは発行されないのだ", func(t *testing.T) {
		dir := t.TempDir()
		styleImages := writeStyleImages(t, dir)
		gen := &stubGenerator{summaryText: ""}
		r := newTestRunner(t, gen, approveAlways, dir)

		t1 := filepath.Join(dir, "t1.jpg")
		if err := os.WriteFile(t1, []byte("photo"), 0o644); err != nil {
			t.Fatal(err)
		}

		_, err := r.Run(context.Background(), styleImages, []string{t1})
		if err == nil {
			t.Fatal("エラーが返らなかったのだ")
		}
		if gen.streamCalls != 0 {
			t.Errorf("要約失敗後に生成リクエストが発行されたのだ: %d", gen.streamCalls)
		}
	})
}

// 仕様シナリオ: 参照2枚、ターゲットは実在1枚と欠け1枚、承認は肯定。
func TestStyleRunner_Scenario(t *testing.T) {
	dir := t.TempDir()
	styleImages := writeStyleImages(t, dir)
	outputDir := filepath.Join(dir, "out")
	gen := &stubGenerator{summaryText: "- postcard palette", streamImages: [][]byte{[]byte("result")}}
	r := newTestRunner(t, gen, approveAlways, outputDir)

	t1 := filepath.Join(dir, "t1.jpg")
	if err := os.WriteFile(t1, []byte("photo"), 0o644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "missing.jpg")

	report, err := r.Run(context.Background(), styleImages, []string{t1, missing})
	if err != nil {
		t.Fatalf("実行に失敗したのだ: %v", err)
	}

	if gen.generateCalls != 1 {
		t.Errorf("要約は1回だけのはずなのだ: %d", gen.generateCalls)
	}
	if gen.streamCalls != 1 {
		t.Errorf("生成は実在ターゲットの1回だけのはずなのだ: %d", gen.streamCalls)
	}

	// ストリームリクエストの末尾パートは合成済みプロンプトのテキストである
	if len(gen.lastParts) != len(styleImages)+2 {
		t.Fatalf("パート数が違うのだ。期待: %d, 実際: %d", len(styleImages)+2, len(gen.lastParts))
	}
	last := gen.lastParts[len(gen.lastParts)-1]
	if last.Text == "" || !strings.Contains(last.Text, "- postcard palette") {
		t.Errorf("最終パートが合成プロンプトになっていないのだ: %+v", last)
	}

	if _, err := os.Stat(filepath.Join(outputDir, "t1", "image_1.png")); err != nil {
		t.Errorf("t1 の出力が存在しないのだ: %v", err)
	}
	if report.CountByStatus(domain.StatusSkipped) != 1 {
		t.Errorf("欠けたターゲットがスキップとして報告されていないのだ: %+v", report.Results)
	}
}
