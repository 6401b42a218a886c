package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/socialvibe/socialvibe/internal/config"
	"github.com/socialvibe/socialvibe/internal/logging"
)

// Service talks to an OpenAI-compatible vision endpoint. In stub mode it
// returns canned text so the rest of the app works without credentials.
type Service struct {
	apiKey  string
	baseURL string
	model   string
	stub    bool
	client  *http.Client
}

func NewService(cfg *config.AIConfig) *Service {
	return &Service{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		stub:    cfg.Stub,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Styles supported by DescribeImage. The first entry is the default.
var describeStyles = map[string]string{
	"creative":     "Analyze this image and write a creative, engaging social media post. Focus on the visual elements, mood and story behind the image. Use a conversational tone that invites engagement, and suggest 5 relevant hashtags.",
	"professional": "Analyze this image and write a polished, professional social media post. Focus on the key elements and composition. Use a clear, informative tone suitable for professional networking, and suggest 5 relevant hashtags.",
	"casual":       "Analyze this image and write a casual, friendly social media post about everyday moments. Use a warm, easy-going tone, and suggest 5 relevant hashtags.",
	"poetic":       "Analyze this image and write a poetic, artistic social media post. Focus on beauty, emotion and meaning, with expressive language, and suggest 5 relevant hashtags.",
}

// DescribeStyles lists the accepted style names.
func DescribeStyles() []string {
	return []string{"creative", "professional", "casual", "poetic"}
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// DescribeImage turns an uploaded image into post text in the given style.
func (s *Service) DescribeImage(ctx context.Context, image []byte, mimeType, style, prompt string) (string, error) {
	if len(image) == 0 {
		return "", ErrInvalidInput
	}

	stylePrompt, ok := describeStyles[style]
	if !ok {
		stylePrompt = describeStyles["creative"]
	}
	if p := strings.TrimSpace(prompt); p != "" {
		stylePrompt = p + "\n\n" + stylePrompt
	}

	if s.stub {
		return stubDescription(style), nil
	}
	if s.apiKey == "" {
		return "", ErrNotConfigured
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))
	reqBody := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: stylePrompt},
					{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
				},
			},
		},
		MaxTokens: 500,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: marshaling request", ErrUpstreamUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	logging.Info("Sending image description request", map[string]interface{}{
		"model":       s.model,
		"image_bytes": len(image),
		"style":       style,
	})

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		logging.Error("Vision endpoint non-200 response", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(body),
		})
		return "", fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("%w: decoding response", ErrUpstreamUnavailable)
	}
	if len(chatResp.Choices) == 0 || strings.TrimSpace(chatResp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: empty completion", ErrUpstreamUnavailable)
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

func stubDescription(style string) string {
	switch style {
	case "professional":
		return "A well-composed shot with strong lines and balanced light. Worth sharing with your network.\n\n#SocialVibe #Professional #Photography #Moments #Share"
	case "casual":
		return "Just one of those little everyday moments that deserve a post.\n\n#SocialVibe #DailyLife #Casual #Moments #Share"
	case "poetic":
		return "Light settles softly here, and for a breath the ordinary turns luminous.\n\n#SocialVibe #Poetry #Light #Moments #Art"
	default:
		return "There's a whole story hiding in this frame. Share it and let others feel the moment too.\n\n#SocialVibe #Creative #Inspiration #Moments #Share"
	}
}
