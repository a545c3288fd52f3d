// Package openai implements the inference gateway against the OpenAI
// chat completions API.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"resty.dev/v3"

	"github.com/ahakobyan/phrasebook/internal/inference"
	"github.com/ahakobyan/phrasebook/internal/language"
)

type Client struct {
	httpClient       *resty.Client
	model            string
	maxRetryAttempts uint
}

func NewClient(apiKey, model string, timeout time.Duration, retryAttempts uint) *Client {
	client := resty.New()
	client.SetBaseURL("https://api.openai.com/v1")
	client.SetHeader("Authorization", "Bearer "+apiKey)
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(timeout)

	return &Client{
		httpClient:       client,
		model:            model,
		maxRetryAttempts: retryAttempts,
	}
}

func (client *Client) Close() error {
	return client.httpClient.Close()
}

type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float32         `json:"temperature"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Index        int           `json:"index"`
	Message      ChoiceMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type ChoiceMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Retry on JSON parsing errors as they might be due to incomplete responses
	errStr := err.Error()
	if strings.Contains(errStr, "json.Unmarshal") || strings.Contains(errStr, "unexpected end of JSON input") {
		return true
	}

	// Retry on network-related errors
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "i/o timeout") ||
		strings.Contains(errStr, "context deadline exceeded") {
		return true
	}

	// Retry on 5xx errors (server errors)
	if strings.Contains(errStr, "response error 5") {
		return true
	}

	// Retry on rate limiting (429)
	if strings.Contains(errStr, "response error 429") {
		return true
	}

	return false
}

func (client *Client) withRetries(ctx context.Context, fn func() error) error {
	return retry.Do(
		func() error {
			if err := fn(); err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(client.maxRetryAttempts+1),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	)
}

// completeJSON sends one chat completion expecting a strict JSON object
// back and returns the raw message content.
func (client *Client) completeJSON(ctx context.Context, systemPrompt, userContent string) (string, error) {
	requestBody := ChatCompletionRequest{
		Model:          client.model,
		Temperature:    0,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
		Messages: []Message{
			{Role: RoleSystem, Content: systemPrompt},
			{Role: RoleUser, Content: userContent},
		},
	}

	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&ChatCompletionResponse{}).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		return "", fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
	}

	responseBody := response.Result().(*ChatCompletionResponse)
	if responseBody == nil || len(responseBody.Choices) == 0 {
		return "", fmt.Errorf("empty response body or choices: %s", response.String())
	}

	content := responseBody.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("empty response content: %s", response.String())
	}
	slog.Default().Debug("openai response content",
		"model", client.model,
		"response", responseBody,
	)
	return content, nil
}

const translateSystemPrompt = "You are a translation engine for ru, en, de, hy. " +
	"Return only strict JSON with keys detected_language and translations. " +
	"Do not include markdown. Do not include extra keys. " +
	"detected_language must be one of ru,en,de,hy,unknown. " +
	"Translate directly without stylistic rewriting. " +
	"For single words, include up to 3 common variants only when genuinely common."

type translateSchema struct {
	DetectedLanguage string                     `json:"detected_language"`
	Translations     map[string]json.RawMessage `json:"translations"`
}

// Translate implements the inference.Client interface.
func (client *Client) Translate(ctx context.Context, req inference.TranslateRequest) (inference.TranslateResponse, error) {
	var result inference.TranslateResponse
	if err := client.withRetries(ctx, func() error {
		response, err := client.translate(ctx, req)
		if err != nil {
			return err
		}
		result = response
		return nil
	}); err != nil {
		return inference.TranslateResponse{}, err
	}
	return result, nil
}

func (client *Client) translate(ctx context.Context, req inference.TranslateRequest) (inference.TranslateResponse, error) {
	allowed := req.AllowedLanguages
	if len(allowed) == 0 {
		allowed = language.Supported
	}

	payload := map[string]any{
		"input_text":        req.Text,
		"allowed_languages": allowed,
		"requested_targets": req.RequestedTargets,
		"forced_source":     nil,
		"requirements": map[string]any{
			"translation_style":             "direct",
			"max_variants_for_single_words": 3,
			"empty_translation_for_missing": false,
		},
	}
	if req.ForcedSource != "" {
		payload["forced_source"] = req.ForcedSource
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return inference.TranslateResponse{}, fmt.Errorf("json.Marshal > %w", err)
	}

	content, err := client.completeJSON(ctx, translateSystemPrompt,
		"Return valid JSON for this request: "+string(encoded))
	if err != nil {
		return inference.TranslateResponse{}, err
	}

	var parsed translateSchema
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return inference.TranslateResponse{}, fmt.Errorf("json.Unmarshal(%s) > %w", content, err)
	}

	detected := language.Code(parsed.DetectedLanguage)
	if detected != language.Unknown && !language.IsSupported(detected) {
		return inference.TranslateResponse{}, fmt.Errorf("invalid detected_language %q", parsed.DetectedLanguage)
	}

	translations := map[language.Code]string{}
	for _, target := range req.RequestedTargets {
		raw, ok := parsed.Translations[string(target)]
		if !ok {
			continue
		}
		if value := normalizeTranslationValue(raw); value != "" {
			translations[target] = value
		}
	}

	return inference.TranslateResponse{
		DetectedLanguage: detected,
		Translations:     translations,
	}, nil
}

// normalizeTranslationValue accepts either a string or a list of variant
// strings and flattens the latter into a comma-separated value.
func normalizeTranslationValue(raw json.RawMessage) string {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return strings.TrimSpace(single)
	}

	var variants []string
	if err := json.Unmarshal(raw, &variants); err == nil {
		cleaned := make([]string, 0, len(variants))
		for _, variant := range variants {
			if v := strings.TrimSpace(variant); v != "" {
				cleaned = append(cleaned, v)
			}
		}
		return strings.Join(cleaned, ", ")
	}
	return ""
}

const verbFormsSystemPrompt = "You are a grammar engine for verbs in ru, en, de, hy. " +
	"Given a verb and its translations, return only strict JSON with keys " +
	"is_verb, infinitives, past_lookup, past_display. " +
	"infinitives and past_display map each of ru,en,de,hy to a string. " +
	"past_lookup maps ru_past, en_past_simple, en_past_participle, " +
	"de_perfekt, de_prateritum, hy_past to the plain inflected form. " +
	"past_display values are short human-readable summaries of the past " +
	"forms in that language. " +
	"If the input is not a verb, return is_verb=false and empty objects. " +
	"Do not include markdown. Do not include extra keys."

type verbFormsSchema struct {
	IsVerb      bool              `json:"is_verb"`
	Infinitives map[string]string `json:"infinitives"`
	PastLookup  map[string]string `json:"past_lookup"`
	PastDisplay map[string]string `json:"past_display"`
}

// VerbForms implements the inference.Client interface.
func (client *Client) VerbForms(ctx context.Context, req inference.VerbFormsRequest) (inference.VerbFormsResponse, error) {
	var result inference.VerbFormsResponse
	if err := client.withRetries(ctx, func() error {
		response, err := client.verbForms(ctx, req)
		if err != nil {
			return err
		}
		result = response
		return nil
	}); err != nil {
		return inference.VerbFormsResponse{}, err
	}
	return result, nil
}

func (client *Client) verbForms(ctx context.Context, req inference.VerbFormsRequest) (inference.VerbFormsResponse, error) {
	payload := map[string]any{
		"source_language":    req.SourceLanguage,
		"source_text":        req.SourceText,
		"known_translations": req.KnownTranslations,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return inference.VerbFormsResponse{}, fmt.Errorf("json.Marshal > %w", err)
	}

	content, err := client.completeJSON(ctx, verbFormsSystemPrompt,
		"Return valid JSON for this request: "+string(encoded))
	if err != nil {
		return inference.VerbFormsResponse{}, err
	}

	var parsed verbFormsSchema
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return inference.VerbFormsResponse{}, fmt.Errorf("json.Unmarshal(%s) > %w", content, err)
	}

	response := inference.VerbFormsResponse{
		IsVerb:      parsed.IsVerb,
		Infinitives: map[language.Code]string{},
		PastLookup:  map[string]string{},
		PastDisplay: map[language.Code]string{},
	}
	for _, code := range language.Supported {
		if v := strings.TrimSpace(parsed.Infinitives[string(code)]); v != "" {
			response.Infinitives[code] = v
		}
		if v := strings.TrimSpace(parsed.PastDisplay[string(code)]); v != "" {
			response.PastDisplay[code] = v
		}
	}
	for _, key := range inference.PastKeys {
		if v := strings.TrimSpace(parsed.PastLookup[key]); v != "" {
			response.PastLookup[key] = v
		}
	}
	return response, nil
}

const governanceSystemPrompt = "You are a German grammar engine. " +
	"Given a German verb, return only strict JSON with keys is_verb and governance. " +
	"governance is a short line describing the verb's preposition government " +
	"and case, for example \"teilnehmen an + D\". " +
	"If the input is not a verb, return is_verb=false and an empty governance. " +
	"Do not include markdown. Do not include extra keys."

type governanceSchema struct {
	IsVerb     bool   `json:"is_verb"`
	Governance string `json:"governance"`
}

// GermanVerbGovernance implements the inference.Client interface. An
// empty result means the input is not a verb.
func (client *Client) GermanVerbGovernance(ctx context.Context, germanText string) (string, error) {
	var result string
	if err := client.withRetries(ctx, func() error {
		content, err := client.completeJSON(ctx, governanceSystemPrompt,
			fmt.Sprintf("Return valid JSON for this German text: %q", germanText))
		if err != nil {
			return err
		}

		var parsed governanceSchema
		if err := json.Unmarshal([]byte(content), &parsed); err != nil {
			return fmt.Errorf("json.Unmarshal(%s) > %w", content, err)
		}
		if !parsed.IsVerb {
			result = ""
			return nil
		}
		result = strings.TrimSpace(parsed.Governance)
		return nil
	}); err != nil {
		return "", err
	}
	return result, nil
}

const nounArticleSystemPrompt = "You are a German grammar engine. " +
	"Given a German noun, return only strict JSON with keys is_noun and article_line. " +
	"article_line is the noun with its definite article and gender mark, " +
	"for example \"die Freundschaft (f.)\". " +
	"If the input is not a noun, return is_noun=false and an empty article_line. " +
	"Do not include markdown. Do not include extra keys."

type nounArticleSchema struct {
	IsNoun      bool   `json:"is_noun"`
	ArticleLine string `json:"article_line"`
}

// GermanNounArticle implements the inference.Client interface. An empty
// result means the input is not a noun.
func (client *Client) GermanNounArticle(ctx context.Context, germanText string) (string, error) {
	var result string
	if err := client.withRetries(ctx, func() error {
		content, err := client.completeJSON(ctx, nounArticleSystemPrompt,
			fmt.Sprintf("Return valid JSON for this German text: %q", germanText))
		if err != nil {
			return err
		}

		var parsed nounArticleSchema
		if err := json.Unmarshal([]byte(content), &parsed); err != nil {
			return fmt.Errorf("json.Unmarshal(%s) > %w", content, err)
		}
		if !parsed.IsNoun {
			result = ""
			return nil
		}
		result = strings.TrimSpace(parsed.ArticleLine)
		return nil
	}); err != nil {
		return "", err
	}
	return result, nil
}
