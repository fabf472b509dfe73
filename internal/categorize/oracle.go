package categorize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Confidence levels reported by the classifier oracle.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Classification is the oracle's answer for one description.
type Classification struct {
	Category     string
	Confidence   string
	Alternatives []string
	Reasoning    string
}

// Oracle classifies an expense description into a category. Amount may be
// zero when unknown; implementations treat it as optional context.
type Oracle interface {
	Classify(ctx context.Context, description string, amount decimal.Decimal) (*Classification, error)
}

// OracleError wraps a classifier failure with retry semantics.
type OracleError struct {
	Message     string
	StatusCode  int
	RateLimited bool
	Retryable   bool
	Cause       error
}

func (e *OracleError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("classifier: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("classifier: %s", e.Message)
}

func (e *OracleError) Unwrap() error { return e.Cause }

// HTTPOracle calls a hosted chat-completion API (Groq-compatible) to
// classify descriptions the local strategies could not handle.
type HTTPOracle struct {
	apiURL     string
	apiKey     string
	model      string
	httpClient *http.Client
	retry      RetryConfig
}

// NewHTTPOracle creates a classifier client. The request timeout is a hard
// cap; a timeout is a recoverable failure for callers.
func NewHTTPOracle(apiURL, apiKey, model string) *HTTPOracle {
	return &HTTPOracle{
		apiURL: apiURL,
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		retry: DefaultOracleRetryConfig,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Classify asks the API for a structured categorization suggestion.
func (o *HTTPOracle) Classify(ctx context.Context, description string, amount decimal.Decimal) (*Classification, error) {
	if o.apiKey == "" {
		return nil, &OracleError{Message: "api key not configured", Retryable: false}
	}

	prompt := buildPrompt(description, amount)

	return WithRetry(ctx, o.retry, func(ctx context.Context) (*Classification, error) {
		return o.classifyOnce(ctx, prompt)
	})
}

func (o *HTTPOracle) classifyOnce(ctx context.Context, prompt string) (*Classification, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       o.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.3,
		MaxTokens:   150,
	})
	if err != nil {
		return nil, &OracleError{Message: "encode request", Retryable: false, Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, &OracleError{Message: "create request", Retryable: false, Cause: err}
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, &OracleError{Message: "execute request", Retryable: true, Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &OracleError{Message: "read response", Retryable: true, Cause: err}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		log.Printf("[categorize] classifier rate limit exceeded: %s", string(body))
		return nil, &OracleError{
			Message:     "rate limit exceeded",
			StatusCode:  resp.StatusCode,
			RateLimited: true,
			Retryable:   false,
		}
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("[categorize] classifier error: %d - %s", resp.StatusCode, string(body))
		return nil, &OracleError{
			Message:    fmt.Sprintf("unexpected status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
			Retryable:  resp.StatusCode >= 500,
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &OracleError{Message: "decode response", Retryable: false, Cause: err}
	}
	if len(parsed.Choices) == 0 {
		return nil, &OracleError{Message: "empty response", Retryable: false}
	}

	return parseClassification(parsed.Choices[0].Message.Content), nil
}

func buildPrompt(description string, amount decimal.Decimal) string {
	categories := strings.Join(ValidCategories(), ", ")

	var b strings.Builder
	b.WriteString("You are an expense categorization assistant. Analyze this expense and provide categorization suggestions.\n\n")
	fmt.Fprintf(&b, "Expense description: %q\n", description)
	if !amount.IsZero() {
		fmt.Fprintf(&b, "Amount: ₹%s\n", amount.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nAvailable categories: %s\n\n", categories)
	b.WriteString("Provide your response in this exact format:\n")
	b.WriteString("CATEGORY: [your best guess category]\n")
	b.WriteString("CONFIDENCE: [high/medium/low]\n")
	b.WriteString("ALTERNATIVES: [comma-separated list of 1-2 alternative categories if uncertain]\n")
	b.WriteString("REASONING: [brief explanation in one sentence]\n")
	return b.String()
}

// parseClassification extracts the structured fields from the model reply,
// tolerating minor formatting drift.
func parseClassification(content string) *Classification {
	c := &Classification{
		Category:   CategoryOther,
		Confidence: ConfidenceLow,
		Reasoning:  "Unable to categorize",
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		upper := strings.ToUpper(line)

		switch {
		case strings.HasPrefix(upper, "CATEGORY"):
			raw := strings.Trim(afterColon(line, "CATEGORY"), "[](){} ")
			if canonical, ok := IsValidCategory(raw); ok {
				c.Category = canonical
			}
		case strings.HasPrefix(upper, "CONFIDENCE"):
			conf := strings.ToLower(strings.TrimSpace(afterColon(line, "CONFIDENCE")))
			if conf == ConfidenceHigh || conf == ConfidenceMedium || conf == ConfidenceLow {
				c.Confidence = conf
			}
		case strings.HasPrefix(upper, "ALTERNATIVE"):
			raw := strings.TrimSpace(afterColon(line, "ALTERNATIVES"))
			lower := strings.ToLower(raw)
			if raw == "" || lower == "none" || lower == "n/a" || lower == "na" {
				continue
			}
			for _, alt := range strings.Split(raw, ",") {
				if alt = strings.TrimSpace(alt); alt != "" {
					c.Alternatives = append(c.Alternatives, alt)
				}
			}
		case strings.HasPrefix(upper, "REASON"), strings.HasPrefix(upper, "EXPLANATION"):
			if reasoning := strings.TrimSpace(afterColon(line, "REASONING")); reasoning != "" {
				c.Reasoning = reasoning
			}
		}
	}

	return c
}

func afterColon(line, label string) string {
	if idx := strings.Index(line, ":"); idx >= 0 {
		return strings.TrimSpace(line[idx+1:])
	}
	trimmed := strings.TrimSpace(line)
	if len(trimmed) > len(label) {
		return strings.TrimSpace(trimmed[len(label):])
	}
	return ""
}
