package asset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shouni/go-restyle-kit/pkg/domain"

	"github.com/patrickmn/go-cache"
	"github.com/shouni/go-http-kit/httpkit"
	"google.golang.org/genai"
)

// アセットのバイト列キャッシュの寿命設定です。参照画像は要約と
// ターゲットごとの生成リクエストの双方で繰り返し使われるため、
// 1回の実行中はディスク/ネットワークを再度叩かずに済ませます。
const (
	defaultCacheExpiration = 30 * time.Minute
	cacheCleanupInterval   = 1 * time.Hour
)

// Policy は未知のメディア形式に対するローダーの挙動を決めます。
type Policy int

const (
	// Strict は拡張子から Content-Type を特定できないパスをエラーとします。
	Strict Policy = iota
	// Lenient は特定できない場合にバイト列の署名から推定し、
	// それでも不明なら汎用のバイナリ型にフォールバックします。
	Lenient
)

// mimeByExt は拡張子と Content-Type の対応表なのだ。
var mimeByExt = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
}

// Loader はファイルパスの列を生成リクエスト用のメディアパート列へ変換します。
// ローカルパスに加えて http(s):// のリモートアセットも取得できます。
type Loader struct {
	httpClient httpkit.Doer
	byteCache  *cache.Cache
	policy     Policy
}

// NewLoader は指定ポリシーのローダーを構築します。
// httpClient はリモートアセットを使わない場合 nil でも構いません。
func NewLoader(httpClient httpkit.Doer, policy Policy) *Loader {
	return &Loader{
		httpClient: httpClient,
		byteCache:  cache.New(defaultCacheExpiration, cacheCleanupInterval),
		policy:     policy,
	}
}

// Load は与えられた順序のまま各パスを読み込み、メディアパートの列を返すのだ。
// 読めないパスがあればそのパス名を含むエラーで失敗するのだ（全件成功か失敗かの二択）。
func (l *Loader) Load(ctx context.Context, paths []string) ([]*genai.Part, error) {
	parts := make([]*genai.Part, 0, len(paths))
	for _, path := range paths {
		data, err := l.readAsset(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("アセット '%s' の読み込みに失敗しました: %w", path, err)
		}

		mimeType, err := l.resolveMimeType(path, data)
		if err != nil {
			return nil, err
		}

		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: mimeType, Data: data},
		})
	}
	return parts, nil
}

// readAsset はキャッシュ → ローカル/リモートの順でアセットのバイト列を取得するのだ。
func (l *Loader) readAsset(ctx context.Context, path string) ([]byte, error) {
	if cached, ok := l.byteCache.Get(path); ok {
		if data, ok := cached.([]byte); ok {
			return data, nil
		}
	}

	var data []byte
	var err error
	if isRemote(path) {
		data, err = l.fetchRemote(ctx, path)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	l.byteCache.SetDefault(path, data)
	return data, nil
}

// fetchRemote は http(s) のアセットを共通HTTPクライアント経由で取得します。
func (l *Loader) fetchRemote(ctx context.Context, url string) ([]byte, error) {
	if l.httpClient == nil {
		return nil, fmt.Errorf("リモートアセットを取得するHTTPクライアントが設定されていません")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("リモートアセットの取得に失敗しました: status=%d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// resolveMimeType は拡張子から Content-Type を推定します。
// 未知の拡張子の扱いはポリシーに従います。
func (l *Loader) resolveMimeType(path string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if mimeType, ok := mimeByExt[ext]; ok {
		return mimeType, nil
	}

	if l.policy == Strict {
		return "", &domain.UnsupportedMediaError{Path: path}
	}

	// Lenient: バイト列の署名から推定する。http.DetectContentType は
	// 不明な場合 application/octet-stream を返すため、そのまま汎用型として使う。
	return http.DetectContentType(data), nil
}

// isRemote は http(s) スキームのパスかどうかを判定します。
func isRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}
