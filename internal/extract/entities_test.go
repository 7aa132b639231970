// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AgenticAITest/prd-to-tasks-sub001/pkg/types"
)

func init() {
	// Use a tiny base delay so retry tests finish quickly.
	backoffBase = 1 * time.Millisecond
}

// mockBackend returns canned responses and records call counts.
type mockBackend struct {
	responses []string
	errs      []error
	calls     int
}

func (m *mockBackend) ExtractEntities(_ context.Context, _ *types.StructuredPRD) (string, error) {
	i := m.calls
	m.calls++
	var err error
	if i < len(m.errs) {
		err = m.errs[i]
	}
	var resp string
	if i < len(m.responses) {
		resp = m.responses[i]
	}
	return resp, err
}

func TestDecodeAIResponse(t *testing.T) {
	t.Run("clean object", func(t *testing.T) {
		resp := DecodeAIResponse(`{"entities":[{"name":"Customer"}],"suggestions":["add an index"]}`)
		if len(resp.Entities) != 1 || resp.Entities[0].Name != "Customer" {
			t.Errorf("entities = %+v", resp.Entities)
		}
		if len(resp.Suggestions) != 1 {
			t.Fatalf("suggestions = %+v", resp.Suggestions)
		}
		// Bare-string suggestions decode with defaults.
		s := resp.Suggestions[0]
		if s.Message != "add an index" || s.Category != "schema" || s.Confidence != 0.5 {
			t.Errorf("suggestion = %+v", s)
		}
	})

	t.Run("object wrapped in prose", func(t *testing.T) {
		resp := DecodeAIResponse("Here is the model:\n```json\n{\"entities\":[{\"name\":\"Order\"}]}\n```\nDone.")
		if len(resp.Entities) != 1 || resp.Entities[0].Name != "Order" {
			t.Errorf("entities = %+v", resp.Entities)
		}
	})

	t.Run("garbage becomes parse-failure suggestion", func(t *testing.T) {
		resp := DecodeAIResponse("I could not produce JSON today.")
		if len(resp.Entities) != 0 {
			t.Errorf("entities = %+v", resp.Entities)
		}
		if len(resp.Suggestions) != 1 {
			t.Fatalf("suggestions = %+v", resp.Suggestions)
		}
		s := resp.Suggestions[0]
		if s.Category != "parse-failure" {
			t.Errorf("category = %q", s.Category)
		}
		if s.Confidence != 0.1 {
			t.Errorf("confidence = %v", s.Confidence)
		}
	})
}

func TestGraphDeclaredAndInferred(t *testing.T) {
	g := Graph(GraphInput{
		Declared: []types.DeclaredEntity{
			{Name: "Customer", Fields: []string{"name:string", "email:string"}},
			{Name: "purchase_order", Fields: []string{"orderNumber:string", "total:decimal", "customerId:uuid"}},
		},
	})

	if len(g.Entities) != 2 {
		t.Fatalf("got %d entities, want 2", len(g.Entities))
	}
	po := g.Entities[1]
	if po.Name != "PurchaseOrder" {
		t.Errorf("entity name = %q, want PurchaseOrder", po.Name)
	}
	if po.TableName != "purchase_order" {
		t.Errorf("table name = %q", po.TableName)
	}

	if len(g.Relationships) != 1 {
		t.Fatalf("got %d relationships, want 1", len(g.Relationships))
	}
	r := g.Relationships[0]
	if r.From.Entity != "PurchaseOrder" || r.From.Field != "customerId" {
		t.Errorf("from = %+v", r.From)
	}
	if r.To.Entity != "Customer" || r.To.Field != "id" {
		t.Errorf("to = %+v", r.To)
	}
	if r.Type != types.RelationManyToOne {
		t.Errorf("type = %q", r.Type)
	}
	if len(g.Warnings) != 0 {
		t.Errorf("warnings = %+v", g.Warnings)
	}
}

func TestGraphDeclaredWinsOverAI(t *testing.T) {
	ai := DecodeAIResponse(`{
		"entities": [
			{"name": "customer", "fields": [
				{"name": "name", "type": "text"},
				{"name": "phone", "type": "string"}
			], "confidence": 0.7}
		],
		"relationships": [
			{"from_entity": "Order", "from_field": "customerId", "to_entity": "Customer", "to_field": "id", "type": "many_to_one"}
		]
	}`)

	g := Graph(GraphInput{
		Declared: []types.DeclaredEntity{
			{Name: "Customer", Fields: []string{"name:string"}},
		},
		AI: &ai,
	})

	if len(g.Entities) != 1 {
		t.Fatalf("got %d entities, want 1 merged", len(g.Entities))
	}
	c := g.Entities[0]
	if c.Source != types.SourcePRDExplicit {
		t.Errorf("source = %q, want prd-explicit", c.Source)
	}

	// The declared "name" keeps its string type; "phone" is added.
	var sawName, sawPhone bool
	for _, f := range c.Fields {
		switch f.Name {
		case "name":
			sawName = true
			if f.DataType != types.TypeString {
				t.Errorf("name type = %q, want string from declaration", f.DataType)
			}
		case "phone":
			sawPhone = true
			if f.Source != types.SourceAIExtracted {
				t.Errorf("phone source = %q", f.Source)
			}
		}
	}
	if !sawName || !sawPhone {
		t.Errorf("fields = %+v", c.Fields)
	}

	// The AI relationship references an entity not in the set.
	if len(g.Warnings) == 0 {
		t.Error("expected unknown-entity warning for Order")
	}
}

func TestGraphAISuggestionsCarried(t *testing.T) {
	ai := AIResponse{Suggestions: []AISuggestion{{Message: "split address", Confidence: 0.8}}}
	g := Graph(GraphInput{AI: &ai})
	if len(g.Suggestions) != 1 {
		t.Fatalf("suggestions = %+v", g.Suggestions)
	}
	if g.Suggestions[0].Category != "schema" {
		t.Errorf("empty category defaults to schema, got %q", g.Suggestions[0].Category)
	}
}

func TestEntityGraphRetriesTransportErrors(t *testing.T) {
	backend := &mockBackend{
		errs:      []error{errors.New("overloaded"), errors.New("overloaded"), nil},
		responses: []string{"", "", `{"entities":[{"name":"Item"}]}`},
	}

	prd := PRD("# Doc\n\n### FR-001: Something\n")
	g, err := EntityGraph(context.Background(), backend, prd, 3)
	if err != nil {
		t.Fatal(err)
	}
	if backend.calls != 3 {
		t.Errorf("calls = %d, want 3", backend.calls)
	}
	var found bool
	for _, e := range g.Entities {
		if e.Name == "Item" {
			found = true
		}
	}
	if !found {
		t.Errorf("entities = %+v", g.Entities)
	}
}

func TestEntityGraphExhaustedRetries(t *testing.T) {
	failing := errors.New("api down")
	backend := &mockBackend{errs: []error{failing, failing, failing, failing}}

	prd := PRD("# Doc\n")
	_, err := EntityGraph(context.Background(), backend, prd, 3)
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if !errors.Is(err, failing) {
		t.Errorf("err = %v, want wrapped %v", err, failing)
	}
	if backend.calls != 4 {
		t.Errorf("calls = %d, want 1 initial + 3 retries", backend.calls)
	}
}

func TestEntityGraphUnparsableResponseStillBuilds(t *testing.T) {
	backend := &mockBackend{responses: []string{"not json"}}

	prd := PRD("# Doc\n\n## Data Requirements\n\n### Entities\n\n- Customer: name:string\n")
	g, err := EntityGraph(context.Background(), backend, prd, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Entities) != 1 || g.Entities[0].Name != "Customer" {
		t.Errorf("entities = %+v", g.Entities)
	}
	var sawParseFailure bool
	for _, s := range g.Suggestions {
		if s.Category == "parse-failure" {
			sawParseFailure = true
		}
	}
	if !sawParseFailure {
		t.Errorf("suggestions = %+v", g.Suggestions)
	}
}

func TestEntityGraphContextCancelled(t *testing.T) {
	old := backoffBase
	backoffBase = 500 * time.Millisecond
	defer func() { backoffBase = old }()

	backend := &mockBackend{errs: []error{errors.New("down"), errors.New("down")}}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := EntityGraph(ctx, backend, PRD("# Doc\n"), 2)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}
