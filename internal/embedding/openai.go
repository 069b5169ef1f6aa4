package embedding

import (
	"context"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIClient 基于OpenAI兼容接口的嵌入客户端实现
type OpenAIClient struct {
	client     openai.Client // OpenAI SDK客户端
	model      string        // 模型名称
	dimensions int           // 向量维度
}

// openaiEmbeddingRequest OpenAI嵌入请求结构
type openaiEmbeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

// openaiEmbeddingResponse OpenAI嵌入响应结构
type openaiEmbeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewOpenAIClient 创建新的OpenAI嵌入客户端
func NewOpenAIClient(opts ...Option) (Client, error) {
	cfg := NewConfig(opts...)

	if cfg.APIKey == "" {
		return nil, NewEmbeddingError(ErrCodeInvalidAPIKey, ErrMsgInvalidAPIKey)
	}

	requestOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" || model == "text-embedding-v1" {
		model = "text-embedding-3-small"
	}

	return &OpenAIClient{
		client:     openai.NewClient(requestOpts...),
		model:      model,
		dimensions: cfg.Dimensions,
	}, nil
}

// Name 返回模型名称
func (c *OpenAIClient) Name() string {
	return c.model
}

// Embed 生成单条文本的向量表示
func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, NewEmbeddingError(ErrCodeServerError, "no embedding vectors returned")
	}

	return vectors[0], nil
}

// EmbedBatch 批量生成文本的向量表示
func (c *OpenAIClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	req := openaiEmbeddingRequest{
		Model: c.model,
		Input: texts,
	}

	var out openaiEmbeddingResponse
	if err := c.client.Post(ctx, "/embeddings", req, &out); err != nil {
		return nil, NewEmbeddingError(ErrCodeNetworkError, err.Error())
	}
	if out.Error != nil {
		return nil, NewEmbeddingError(ErrCodeServerError, out.Error.Message)
	}

	// 响应中的float64向量转换为float32，按索引归位
	vectors := make([][]float32, len(texts))
	for _, item := range out.Data {
		if item.Index < 0 || item.Index >= len(texts) {
			continue
		}
		vec := make([]float32, len(item.Embedding))
		for k := range item.Embedding {
			vec[k] = float32(item.Embedding[k])
		}
		vectors[item.Index] = vec
	}

	return vectors, nil
}

// 在包初始化时注册OpenAI嵌入客户端
func init() {
	RegisterClient("openai", NewOpenAIClient)
}
