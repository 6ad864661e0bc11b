package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"growwise/internal/config"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ResponseSchema names a JSON schema the model's output must satisfy.
// The definition is sent to Gemini as responseSchema and also compiled
// locally so the reply is validated before anything trusts its fields.
type ResponseSchema struct {
	Name       string
	Definition map[string]interface{}
}

// GenAIClient calls the Gemini generateContent API
type GenAIClient struct {
	config *config.AIConfig
	client *http.Client

	compiled sync.Map // schema name -> *jsonschema.Schema
}

// NewGenAIClient creates a new Gemini client
func NewGenAIClient(cfg *config.AIConfig) *GenAIClient {
	return &GenAIClient{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

// Enabled reports whether an API key is configured
func (c *GenAIClient) Enabled() bool {
	return c.config.IsEnabled()
}

// Models returns the per-task model configuration
func (c *GenAIClient) Models() config.GeminiModels {
	return c.config.Models
}

// Complete requests structured JSON from the given model and validates it
// against schema before returning the raw payload
func (c *GenAIClient) Complete(ctx context.Context, modelName, prompt string, schema *ResponseSchema) (json.RawMessage, error) {
	genCfg := map[string]interface{}{
		"responseMimeType": "application/json",
	}
	if schema != nil {
		genCfg["responseSchema"] = schema.Definition
	}

	text, err := c.generate(ctx, modelName, prompt, genCfg)
	if err != nil {
		return nil, err
	}

	raw := json.RawMessage(text)
	if err := c.validate(schema, raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// CompleteText requests a plain-text reply (tutor chat)
func (c *GenAIClient) CompleteText(ctx context.Context, modelName, prompt string) (string, error) {
	return c.generate(ctx, modelName, prompt, nil)
}

func (c *GenAIClient) generate(ctx context.Context, modelName, prompt string, genCfg map[string]interface{}) (string, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
	}
	if genCfg != nil {
		reqBody["generationConfig"] = genCfg
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?key=%s", c.config.ModelEndpoint(modelName), c.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini returned status %d", resp.StatusCode)
	}

	// Parse Gemini response structure
	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", err
	}

	if len(geminiResp.Candidates) > 0 && len(geminiResp.Candidates[0].Content.Parts) > 0 {
		return geminiResp.Candidates[0].Content.Parts[0].Text, nil
	}

	return "", fmt.Errorf("empty response from Gemini")
}

// validate checks raw against schema, compiling and caching on first use
func (c *GenAIClient) validate(schema *ResponseSchema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}

	var parsed interface{}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON from model: %w", err)
	}

	compiled, err := c.compiledSchema(schema)
	if err != nil {
		return fmt.Errorf("compile schema %q: %w", schema.Name, err)
	}

	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("response failed schema %q: %w", schema.Name, err)
	}
	return nil
}

func (c *GenAIClient) compiledSchema(schema *ResponseSchema) (*jsonschema.Schema, error) {
	if cached, ok := c.compiled.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The jsonschema library expects a parsed JSON value, not raw bytes
	defBytes, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, err
	}
	var defParsed interface{}
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://%s.json", schema.Name)
	if err := compiler.AddResource(schemaURL, defParsed); err != nil {
		return nil, err
	}

	compiled, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, err
	}

	c.compiled.Store(schema.Name, compiled)
	return compiled, nil
}
