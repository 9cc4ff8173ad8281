package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestFormatEmptyBundle(t *testing.T) {
	b := &ContextBundle{}
	if got := b.Format(); got != "" {
		t.Errorf("expected empty string for empty bundle, got %q", got)
	}
}

func TestFormatSectionsAndOrder(t *testing.T) {
	b := &ContextBundle{
		Turns: []ConversationTurn{
			{Speaker: SpeakerUser, Text: "what is recursion?", Timestamp: time.Now()},
		},
		Neighbors: []GraphNeighbor{
			{ID: "loops", DisplayName: "loops", Relation: RelationPrerequisiteOf, Weight: 0.9},
		},
		Events: []EpisodicEvent{
			{Kind: EventResourceFound, Payload: map[string]interface{}{"title": "intro"}, Timestamp: time.Now()},
		},
		Recall: []string{"user once asked about base cases"},
	}

	out := b.Format()
	sections := []string{
		"=== RECENT CONVERSATION (newest first) ===",
		"=== RELATED CONCEPTS AND RESOURCES ===",
		"=== PAST ACTIONS ===",
		"=== RELEVANT MEMORIES ===",
	}
	last := -1
	for _, s := range sections {
		idx := strings.Index(out, s)
		if idx < 0 {
			t.Fatalf("missing section %q in:\n%s", s, out)
		}
		if idx < last {
			t.Errorf("section %q out of order", s)
		}
		last = idx
	}
	if !strings.Contains(out, "[user] what is recursion?") {
		t.Errorf("turn not rendered:\n%s", out)
	}
}

func TestFormatOmitsEmptySections(t *testing.T) {
	b := &ContextBundle{
		Turns: []ConversationTurn{{Speaker: SpeakerUser, Text: "hi", Timestamp: time.Now()}},
	}
	out := b.Format()
	if strings.Contains(out, "PAST ACTIONS") || strings.Contains(out, "RELEVANT MEMORIES") {
		t.Errorf("empty sections must be omitted:\n%s", out)
	}
}

func TestSummarizePayloadStable(t *testing.T) {
	payload := map[string]interface{}{"b": "two", "a": "one"}
	first := summarizePayload(payload)
	for i := 0; i < 10; i++ {
		if got := summarizePayload(payload); got != first {
			t.Fatalf("expected stable rendering, got %q then %q", first, got)
		}
	}
	if !strings.HasPrefix(first, "a=one") {
		t.Errorf("expected sorted keys, got %q", first)
	}
}

func TestAdapterErrorUnwraps(t *testing.T) {
	inner := errors.New("connection refused")
	err := NewAdapterError("resource_search", inner)

	var adapterErr *AdapterError
	if !errors.As(err, &adapterErr) {
		t.Fatal("expected errors.As to find AdapterError")
	}
	if adapterErr.Capability != "resource_search" {
		t.Errorf("unexpected capability %q", adapterErr.Capability)
	}
	if !errors.Is(err, inner) {
		t.Error("expected errors.Is to reach the wrapped error")
	}
}

func TestNewAdapterErrorNilSafe(t *testing.T) {
	if err := NewAdapterError("x", nil); err != nil {
		t.Errorf("expected nil for nil inner error, got %v", err)
	}
}

func TestValidationErrorf(t *testing.T) {
	err := ValidationErrorf("field %s is empty", "topic")
	if !errors.Is(err, ErrValidation) {
		t.Error("expected errors.Is(err, ErrValidation)")
	}
	if !strings.Contains(err.Error(), "topic") {
		t.Errorf("expected message detail, got %q", err)
	}
}

func TestEventIDsUniqueAndOrdered(t *testing.T) {
	prev := NewEventID()
	for i := 0; i < 100; i++ {
		id := NewEventID()
		if id <= prev {
			t.Fatalf("expected strictly increasing ids, got %d after %d", id, prev)
		}
		prev = id
	}
}
