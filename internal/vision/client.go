// Package vision adapts the external vision/LLM API into the pipeline's
// Classifier interface. Every failure mode, from a missing API key to a
// malformed reply, collapses into domain.ErrClassificationUnavailable so the
// caller can substitute the fallback analyzer.
package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/skin-wellness-navigator/internal/domain"
)

// Client performs one synchronous classification call per request against
// the external vision model. It never retries; the pipeline orchestrator
// decides what happens after a failure.
type Client struct {
	api    *openai.Client
	config domain.VisionConfig
	logger *logrus.Logger
}

// replySchema is the JSON shape requested by the instruction prompt.
type replySchema struct {
	Classification  string                 `json:"classification"`
	Confidence      float64                `json:"confidence"`
	Characteristics domain.Characteristics `json:"characteristics"`
	Reasoning       string                 `json:"reasoning"`
	Recommendations []string               `json:"recommendations"`
}

// NewClient creates a vision client. With an empty API key the client is
// unconfigured: Classify reports unavailability immediately without any
// network attempt.
func NewClient(cfg domain.VisionConfig, logger *logrus.Logger) *Client {
	c := &Client{config: cfg, logger: logger}
	if cfg.APIKey == "" {
		return c
	}

	apiConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiConfig.BaseURL = cfg.BaseURL
	}
	c.api = openai.NewClientWithConfig(apiConfig)
	return c
}

// Configured reports whether an external model is available at all.
func (c *Client) Configured() bool {
	return c.api != nil
}

// Classify sends the image to the external model under the configured
// deadline and parses the structured JSON reply. A single attempt is made;
// timeout, transport errors, non-2xx responses, and malformed replies are
// all reported as domain.ErrClassificationUnavailable.
func (c *Client) Classify(ctx context.Context, data []byte, mimeType string) (*domain.ClassificationResult, error) {
	if c.api == nil {
		return nil, fmt.Errorf("%w: no API key configured", domain.ErrClassificationUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))

	req := openai.ChatCompletionRequest{
		Model:     c.config.Model,
		MaxTokens: c.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: Prompt()},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		c.logger.WithError(err).Warn("External classification call failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrClassificationUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		c.logger.Warn("External classification returned no choices")
		return nil, fmt.Errorf("%w: empty completion", domain.ErrClassificationUnavailable)
	}

	result, err := c.parseReply(resp.Choices[0].Message.Content)
	if err != nil {
		c.logger.WithError(err).Warn("External classification reply unparseable")
		return nil, fmt.Errorf("%w: %v", domain.ErrClassificationUnavailable, err)
	}

	c.logger.WithFields(logrus.Fields{
		"classification": result.Label,
		"confidence":     result.Confidence,
	}).Info("External classification completed")

	return result, nil
}

// parseReply extracts and validates the JSON object in the model's free-text
// reply. A parse failure is indistinguishable from a timeout to the caller.
func (c *Client) parseReply(content string) (*domain.ClassificationResult, error) {
	raw, err := ExtractJSONObject(content)
	if err != nil {
		return nil, err
	}

	var reply replySchema
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		return nil, fmt.Errorf("unmarshal reply: %w", err)
	}

	label := domain.Label(reply.Classification)
	if label != domain.LabelBenign && label != domain.LabelMalignant {
		return nil, fmt.Errorf("unexpected classification %q", reply.Classification)
	}
	if reply.Confidence < 0 || reply.Confidence > 1 {
		return nil, fmt.Errorf("confidence %v outside [0,1]", reply.Confidence)
	}

	result := &domain.ClassificationResult{
		Label:           label,
		Confidence:      reply.Confidence,
		Characteristics: reply.Characteristics,
		Reasoning:       reply.Reasoning,
		// The shared recommendation rule applies to both classification
		// paths; the model's own suggestions are advisory only.
		Recommendations: domain.Recommendations(label, reply.Confidence),
		Source:          domain.SourceExternal,
	}

	if err := result.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}
