// Package stream は、生成サービスからのマルチモーダルなストリーミング応答を
// テキスト断片と画像ペイロードに分離（デマルチプレクス）するデコーダーを提供します。
package stream

import (
	"fmt"
	"os"

	"github.com/shouni/go-restyle-kit/pkg/asset"
	"github.com/shouni/go-restyle-kit/pkg/domain"
	"github.com/shouni/go-restyle-kit/pkg/gemini"

	"google.golang.org/genai"
)

// Sink はデコード済み画像ペイロードの行き先です。
// n は到着順の1始まりの連番です。
type Sink interface {
	Write(n int, data []byte) error
}

// DirSink は画像を出力ディレクトリへ即時書き出すシンクです。
// ファイル名は <base>_<n>.png の連番形式になります。
type DirSink struct {
	basePath string
	// Files は書き出したファイルパスの到着順リストです。
	Files []string
}

// NewDirSink は出力ディレクトリを（冪等に）作成し、ファイル書き出しモードの
// シンクを返します。fileName は "image.png" のようなベースファイル名です。
func NewDirSink(dir, fileName string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("出力ディレクトリ '%s' の作成に失敗しました: %w", dir, err)
	}

	basePath, err := asset.ResolveOutputPath(dir, fileName)
	if err != nil {
		return nil, err
	}
	return &DirSink{basePath: basePath}, nil
}

// Write は到着順の連番を拡張子の前に挿入したパスへ画像を書き出します。
func (s *DirSink) Write(n int, data []byte) error {
	path, err := asset.GenerateIndexedPath(s.basePath, n)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("画像 '%s' の書き出しに失敗しました: %w", path, err)
	}
	s.Files = append(s.Files, path)
	return nil
}

// MemorySink は画像をメモリ上に到着順で蓄積するシンクです。
type MemorySink struct {
	Images [][]byte
}

// Write は画像ペイロードを蓄積します。
func (s *MemorySink) Write(_ int, data []byte) error {
	s.Images = append(s.Images, data)
	return nil
}

// Result は1ストリームを飲み切った結果です。
type Result struct {
	// Texts はテキスト断片の到着順リストです。
	Texts []string
	// ImageCount はシンクへ渡した画像の枚数です。
	ImageCount int
}

// NoOutput はテキストも画像もひとつも得られなかったかどうかを返します。
// これはエラーではなく「出力なし」という独立した結果です。
func (r *Result) NoOutput() bool {
	return len(r.Texts) == 0 && r.ImageCount == 0
}

// Decode はストリームを完全に飲み切り、各チャンクのパートをテキストと画像に
// 振り分けるのだ。候補やパートを持たないチャンク（ハートビート等）は正常系
// として黙ってスキップするのだ。ストリーム読み取り中のエラーはこの1件分の
// DecodeError として返し、無関係なターゲットのバッチを道連れにしないのだ。
func Decode(src gemini.Stream, sink Sink) (*Result, error) {
	result := &Result{}

	for chunk, err := range src {
		if err != nil {
			return nil, &domain.DecodeError{Err: err}
		}
		for _, part := range chunkParts(chunk) {
			if part == nil {
				continue
			}
			switch {
			case part.InlineData != nil && len(part.InlineData.Data) > 0:
				result.ImageCount++
				if err := sink.Write(result.ImageCount, part.InlineData.Data); err != nil {
					return nil, &domain.DecodeError{Err: err}
				}
			case part.Text != "":
				result.Texts = append(result.Texts, part.Text)
			}
			// どちらでもない空パートはスキップ
		}
	}

	return result, nil
}

// chunkParts はチャンクから先頭候補のパート列を取り出します。
// 候補なし・内容なしは有効な応答として空を返します。
func chunkParts(chunk *genai.GenerateContentResponse) []*genai.Part {
	if chunk == nil || len(chunk.Candidates) == 0 {
		return nil
	}
	content := chunk.Candidates[0].Content
	if content == nil {
		return nil
	}
	return content.Parts
}
