package asset

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/shouni/go-utils/urlpath"
)

const (
	// DefaultStyledFileName はスタイル適用済み画像の共通のベースファイル名です。
	DefaultStyledFileName = "image.png"
	// DefaultRemixFileName はリミックス画像の共通のベースファイル名です。
	DefaultRemixFileName = "remixed_image.png"
)

var (
	// StyledFileRegex はスタイル適用済み画像 (image_1.png 等) に一致します
	StyledFileRegex = createIndexedRegex(DefaultStyledFileName)
	// RemixFileRegex はリミックス画像 (remixed_image_1.png 等) に一致します
	RemixFileRegex = createIndexedRegex(DefaultRemixFileName)
)

// ResolveOutputPath は、ベースとなるディレクトリパスとファイル名から、
// 最終的な出力パスを生成します。
func ResolveOutputPath(baseDir, fileName string) (string, error) {
	return urlpath.ResolvePath(baseDir, fileName)
}

// GenerateIndexedPath は、指定されたベースパスの拡張子の前に連番を挿入し、
// 新しいパス文字列を生成します。index は1以上の整数である必要があります。
// 例: "path/to/image.png", 1 -> "path/to/image_1.png"
func GenerateIndexedPath(basePath string, index int) (string, error) {
	return urlpath.GenerateIndexedPath(basePath, index)
}

// TargetBaseName は、ターゲット写真のパスから出力サブディレクトリ名
// （拡張子を除いたベースファイル名）を導出します。
func TargetBaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// createIndexedRegex は、ファイル名に基づきインデックス付きファイル用の正規表現を生成します。
// 例: "image.png" -> ^image_\d+\.png$
func createIndexedRegex(fileName string) *regexp.Regexp {
	ext := filepath.Ext(fileName)
	baseName := strings.TrimSuffix(fileName, ext)

	// baseName と ext の両方を QuoteMeta でエスケープすることで
	// ドットや特殊文字が含まれていても正しくリテラルとしてマッチします。
	pattern := fmt.Sprintf(`^%s_\d+%s$`, regexp.QuoteMeta(baseName), regexp.QuoteMeta(ext))
	return regexp.MustCompile(pattern)
}
