// Package imagegen 封装图片生成（Imagen predict）接口
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"prompt-deck-api/internal/config"
)

// maxErrorBody 错误响应最多读取的字节数
const maxErrorBody = 4 << 10

// ErrEmptyPrediction 响应中没有图片数据
var ErrEmptyPrediction = errors.New("imagegen: empty prediction")

// Client Imagen predict 客户端
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     string
	style      string
}

// NewClient 创建客户端，transport 经过 otelhttp 包装
func NewClient(cfg *config.ImageConfig) *Client {
	return NewClientWithHTTP(cfg, &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   cfg.Timeout,
	})
}

// NewClientWithHTTP 使用指定 http.Client 创建客户端
func NewClientWithHTTP(cfg *config.ImageConfig, hc *http.Client) *Client {
	return &Client{
		httpClient: hc,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		style:      cfg.PromptStyle,
	}
}

type predictRequest struct {
	Instances  predictInstance   `json:"instances"`
	Parameters predictParameters `json:"parameters"`
}

type predictInstance struct {
	Prompt string `json:"prompt"`
}

type predictParameters struct {
	SampleCount int `json:"sampleCount"`
}

type predictResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
	} `json:"predictions"`
}

// Generate 按视觉提示生成一张图片，返回 data URI
func (c *Client) Generate(ctx context.Context, visualPrompt string) (string, error) {
	body, err := json.Marshal(predictRequest{
		Instances:  predictInstance{Prompt: c.decorate(visualPrompt)},
		Parameters: predictParameters{SampleCount: 1},
	})
	if err != nil {
		return "", fmt.Errorf("imagegen: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("imagegen: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("imagegen: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", fmt.Errorf("imagegen: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("imagegen: decode response: %w", err)
	}
	if len(out.Predictions) == 0 || out.Predictions[0].BytesBase64Encoded == "" {
		return "", ErrEmptyPrediction
	}

	mime := out.Predictions[0].MimeType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + out.Predictions[0].BytesBase64Encoded, nil
}

func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/models/%s:predict?key=%s", c.baseURL, c.model, url.QueryEscape(c.apiKey))
}

func (c *Client) decorate(visualPrompt string) string {
	p := strings.TrimSpace(visualPrompt)
	if c.style == "" {
		return p
	}
	return p + ", " + c.style
}
