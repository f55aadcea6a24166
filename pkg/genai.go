package pkg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const genAIDefaultBaseURL = "https://api.openai.com/v1"

// GenClient calls the external generation backend used for listing previews.
type GenClient struct {
	client     *http.Client
	apiKey     string
	baseURL    string
	chatModel  string
	imageModel string
}

func NewGenClient(apiKey, baseURL, chatModel, imageModel string) *GenClient {
	if baseURL == "" {
		baseURL = genAIDefaultBaseURL
	}
	return &GenClient{
		client:     &http.Client{Timeout: 60 * time.Second},
		apiKey:     apiKey,
		baseURL:    baseURL,
		chatModel:  chatModel,
		imageModel: imageModel,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type imageGenerationRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type imageGenerationResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

func (c *GenClient) post(ctx context.Context, endpoint string, body any) ([]byte, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/%s", c.baseURL, endpoint), bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

// GenerateText runs the substituted prompt through the chat model and
// returns the completion text.
func (c *GenClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	body, err := c.post(ctx, "chat/completions", chatCompletionRequest{
		Model:    c.chatModel,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	var out chatCompletionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("parse chat completion: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}

// GenerateImage runs the substituted prompt through the image model and
// returns the hosted image URL.
func (c *GenClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	body, err := c.post(ctx, "images/generations", imageGenerationRequest{
		Model:  c.imageModel,
		Prompt: prompt,
		N:      1,
		Size:   "1024x1024",
	})
	if err != nil {
		return "", err
	}
	var out imageGenerationResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("parse image generation: %w", err)
	}
	if len(out.Data) == 0 {
		return "", errors.New("image generation returned no data")
	}
	return out.Data[0].URL, nil
}
