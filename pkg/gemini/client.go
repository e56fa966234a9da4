package gemini

import (
	"context"
	"fmt"
	"iter"

	"github.com/shouni/go-restyle-kit/pkg/domain"

	"google.golang.org/genai"
)

// 応答モダリティの指定値です。GenerateContentConfig.ResponseModalities に渡します。
const (
	ModalityText  = "TEXT"
	ModalityImage = "IMAGE"
)

// Stream は生成サービスからの増分応答の遅延シーケンスです。
// 本物のAPIストリームも、テスト用の合成シーケンスも同じ形で扱えます。
type Stream = iter.Seq2[*genai.GenerateContentResponse, error]

// Generator は Gemini のマルチモーダル生成APIへの最小限の窓口です。
// ランナーやデコーダーはこのインターフェースにのみ依存するため、
// ネットワークなしのスタブ実装でテストできます。
type Generator interface {
	// Generate は単発（非ストリーミング）の生成リクエストを送信します。
	Generate(ctx context.Context, model string, parts []*genai.Part, modalities []string) (*genai.GenerateContentResponse, error)
	// GenerateStream はストリーミング生成リクエストを送信し、チャンクの遅延シーケンスを返します。
	GenerateStream(ctx context.Context, model string, parts []*genai.Part, modalities []string) Stream
}

// Client は genai.Client に委譲する Generator の標準実装なのだ。
type Client struct {
	client *genai.Client
}

// NewClient は APIキーから Gemini クライアントを構築するのだ。
// キーが空の場合はネットワークに触れる前に設定エラーを返すのだ。
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, &domain.ConfigError{Reason: "環境変数 GEMINI_API_KEY が設定されていません"}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Client{client: client}, nil
}

// Generate は単発の生成リクエストを送信します。
func (c *Client) Generate(ctx context.Context, model string, parts []*genai.Part, modalities []string) (*genai.GenerateContentResponse, error) {
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := c.client.Models.GenerateContent(ctx, model, contents, &genai.GenerateContentConfig{
		ResponseModalities: modalities,
	})
	if err != nil {
		return nil, fmt.Errorf("生成リクエストに失敗しました: %w", err)
	}
	return resp, nil
}

// GenerateStream はストリーミング生成リクエストを送信します。
// チャンク読み取り中のエラーはシーケンスの第2値として呼び出し側に届きます。
func (c *Client) GenerateStream(ctx context.Context, model string, parts []*genai.Part, modalities []string) Stream {
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	return c.client.Models.GenerateContentStream(ctx, model, contents, &genai.GenerateContentConfig{
		ResponseModalities: modalities,
	})
}
