// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"

	"github.com/AgenticAITest/prd-to-tasks-sub001/internal/httputil"
	"github.com/AgenticAITest/prd-to-tasks-sub001/pkg/types"
)

// entityPromptTmpl is the prompt sent to the Claude API for entity
// extraction. It instructs the model to derive a normalized data model
// from the structured requirements.
var entityPromptTmpl = template.Must(template.New("entities").Parse(`You are a data modeling system. Analyze the following product requirements and derive the data model they imply.

Respond with a JSON object containing three arrays:
- "entities": each with "name" (PascalCase), "description", "type" (one of "master", "transaction", "reference", "lookup", "junction"), "confidence" (0.0-1.0), and "fields", each field with "name" (camelCase), "type" (e.g. "string", "integer", "decimal", "boolean", "date", "datetime", "uuid", "json", "enum"), "required", "primary_key", "unique", and optional "enum_values"
- "relationships": each with "from_entity", "from_field", "to_entity", "to_field", and "type" (one of "one-to-one", "one-to-many", "many-to-one", "many-to-many")
- "suggestions": free-text notes about gaps or ambiguities in the data model

Foreign keys follow the <entity>Id naming convention. Do not include any text outside the JSON object.

Document title: {{.Title}}

Requirements:
{{.Requirements}}

Declared entities:
{{.Entities}}
`))

// claudeAPIURL is the Claude API endpoint. Package-level var for test
// substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// ClaudeBackend calls the Claude API to extract a data model from a
// structured PRD.
type ClaudeBackend struct {
	APIKey string
	Model  string
	Client *http.Client
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ExtractEntities renders the entity prompt for the PRD and returns the
// model's raw text response. Rate-limited calls retry via the shared
// HTTP retry helper; decoding the response shape is the caller's
// concern.
func (c *ClaudeBackend) ExtractEntities(ctx context.Context, prd *types.StructuredPRD) (string, error) {
	prompt, err := renderEntityPrompt(prd)
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	reqBody := claudeRequest{
		Model:     c.Model,
		MaxTokens: 8192,
		Messages: []claudeMessage{
			{Role: "user", Content: prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w", err)
	}

	for _, block := range cResp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}

	return "", fmt.Errorf("no text content in Claude API response")
}

// renderEntityPrompt executes the entity prompt template with a compact
// summary of the PRD.
func renderEntityPrompt(prd *types.StructuredPRD) (string, error) {
	var reqs strings.Builder
	for _, fr := range prd.FunctionalRequirements {
		fmt.Fprintf(&reqs, "- %s: %s", fr.ID, fr.Title)
		if fr.Description != "" {
			fmt.Fprintf(&reqs, " - %s", fr.Description)
		}
		reqs.WriteString("\n")
		for _, rule := range fr.BusinessRules {
			fmt.Fprintf(&reqs, "  - rule %s (%s): %s\n", rule.ID, rule.Type, rule.Description)
		}
		for _, scr := range fr.Screens {
			fmt.Fprintf(&reqs, "  - screen %s (%s): %s\n", scr.ID, scr.Type, scr.Name)
		}
	}

	var ents strings.Builder
	for _, e := range prd.DataRequirements.Entities {
		fmt.Fprintf(&ents, "- %s: %s\n", e.Name, strings.Join(e.Fields, ", "))
	}
	if ents.Len() == 0 {
		ents.WriteString("(none declared)\n")
	}

	var buf bytes.Buffer
	err := entityPromptTmpl.Execute(&buf, struct {
		Title        string
		Requirements string
		Entities     string
	}{
		Title:        prd.Title,
		Requirements: reqs.String(),
		Entities:     ents.String(),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
