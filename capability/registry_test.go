package capability

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/abhiabhi150614/edu-ai-pro/core"
)

func noopAdapter() Adapter {
	return AdapterFunc(func(context.Context, map[string]interface{}) (map[string]interface{}, error) {
		return map[string]interface{}{}, nil
	})
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	def := &Definition{Name: "resource_search", Adapter: noopAdapter()}

	if err := r.Register(def); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if err := r.Register(&Definition{Name: "resource_search", Adapter: noopAdapter()}); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestRegisterRejectsIncomplete(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&Definition{Adapter: noopAdapter()}); err == nil {
		t.Error("expected nameless definition to fail")
	}
	if err := r.Register(&Definition{Name: "x"}); err == nil {
		t.Error("expected adapterless definition to fail")
	}
}

func TestMaxTimeout(t *testing.T) {
	r := NewRegistry()
	r.Register(&Definition{Name: "a", Adapter: noopAdapter(), Timeout: 3 * time.Second})
	r.Register(&Definition{Name: "b", Adapter: noopAdapter(), Timeout: 9 * time.Second})

	if got := r.MaxTimeout(); got != 9*time.Second {
		t.Errorf("expected max timeout 9s, got %v", got)
	}
}

func TestValidateUnknownCapability(t *testing.T) {
	r := NewRegistry()
	err := r.Validate(core.Invocation{Name: "nonexistent"})
	if !errors.Is(err, core.ErrUnknownCapability) {
		t.Errorf("expected ErrUnknownCapability, got %v", err)
	}
}

func TestValidateArgsRequiredAndUnknown(t *testing.T) {
	schema := ObjectSchema(map[string]interface{}{
		"topic": StringProperty("topic"),
		"limit": IntegerProperty("limit"),
	}, []string{"topic"})

	if err := ValidateArgs(schema, map[string]interface{}{"limit": 3}); !errors.Is(err, core.ErrValidation) {
		t.Errorf("expected validation error for missing required field, got %v", err)
	}
	if err := ValidateArgs(schema, map[string]interface{}{"topic": "recursion", "bogus": 1}); !errors.Is(err, core.ErrValidation) {
		t.Errorf("expected validation error for unknown field, got %v", err)
	}
	if err := ValidateArgs(schema, map[string]interface{}{"topic": "recursion"}); err != nil {
		t.Errorf("expected valid args to pass, got %v", err)
	}
}

func TestValidateArgsCoercesIntegralFloats(t *testing.T) {
	schema := ObjectSchema(map[string]interface{}{
		"limit": IntegerProperty("limit"),
	}, nil)

	// JSON decoding turns numbers into float64.
	args := map[string]interface{}{"limit": float64(3)}
	if err := ValidateArgs(schema, args); err != nil {
		t.Fatalf("expected integral float to validate, got %v", err)
	}
	if v, ok := args["limit"].(int); !ok || v != 3 {
		t.Errorf("expected coerced int 3, got %v (%T)", args["limit"], args["limit"])
	}

	if err := ValidateArgs(schema, map[string]interface{}{"limit": 3.5}); !errors.Is(err, core.ErrValidation) {
		t.Errorf("expected fractional value to fail, got %v", err)
	}
}

func TestValidateArgsTypeMismatch(t *testing.T) {
	schema := ObjectSchema(map[string]interface{}{
		"topic": StringProperty("topic"),
		"deep":  BooleanProperty("deep"),
	}, nil)

	if err := ValidateArgs(schema, map[string]interface{}{"topic": 42}); !errors.Is(err, core.ErrValidation) {
		t.Errorf("expected string mismatch to fail, got %v", err)
	}
	if err := ValidateArgs(schema, map[string]interface{}{"deep": "yes"}); !errors.Is(err, core.ErrValidation) {
		t.Errorf("expected boolean mismatch to fail, got %v", err)
	}
}

func TestValidateArgsEnum(t *testing.T) {
	schema := ObjectSchema(map[string]interface{}{
		"kind": EnumProperty("resource kind", []string{"video", "note"}),
	}, nil)

	if err := ValidateArgs(schema, map[string]interface{}{"kind": "video"}); err != nil {
		t.Errorf("expected enum member to pass, got %v", err)
	}
	if err := ValidateArgs(schema, map[string]interface{}{"kind": "podcast"}); !errors.Is(err, core.ErrValidation) {
		t.Errorf("expected non-member to fail, got %v", err)
	}
}

func TestDefaultDefinitionsSkipNilProviders(t *testing.T) {
	defs := DefaultDefinitions(Providers{})

	// Only the provider-free share capability remains.
	if len(defs) != 1 || defs[0].Name != "share_achievement" {
		names := make([]string, 0, len(defs))
		for _, d := range defs {
			names = append(names, d.Name)
		}
		t.Errorf("expected only share_achievement, got %v", names)
	}
}

func TestShareAchievementBuildsLink(t *testing.T) {
	defs := DefaultDefinitions(Providers{})
	share := defs[0]

	result, err := share.Adapter.Execute(context.Background(), map[string]interface{}{
		"message": "Finished day 5 of my Go plan!",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	url, _ := result["share_url"].(string)
	if url == "" {
		t.Fatal("expected share_url in result")
	}
	if want := "linkedin.com/sharing/share-offsite"; !strings.Contains(url, want) {
		t.Errorf("expected %q in share url, got %q", want, url)
	}
}

func TestShareAchievementRejectsEmptyMessage(t *testing.T) {
	defs := DefaultDefinitions(Providers{})
	_, err := defs[0].Adapter.Execute(context.Background(), map[string]interface{}{"message": "  "})

	var adapterErr *core.AdapterError
	if !errors.As(err, &adapterErr) {
		t.Fatalf("expected AdapterError, got %v", err)
	}
	if adapterErr.Capability != "share_achievement" {
		t.Errorf("expected capability name in error, got %q", adapterErr.Capability)
	}
}
