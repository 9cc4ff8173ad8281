package capability

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/abhiabhi150614/edu-ai-pro/core"
)

// Provider interfaces for the external systems capabilities call into.
// Production wiring supplies real clients; tests supply stubs.

// Video is one search hit from the resource provider.
type Video struct {
	Title string
	URL   string
}

// ResourceProvider finds learning videos for a topic.
type ResourceProvider interface {
	SearchVideos(ctx context.Context, topic string, limit int) ([]Video, error)
}

// NotesProvider reads and writes the user's study notes.
type NotesProvider interface {
	Lookup(ctx context.Context, userID, topic string) ([]string, error)
	Add(ctx context.Context, userID, topic, text string) error
}

// ProgressProvider summarizes the user's plan progress.
type ProgressProvider interface {
	Report(ctx context.Context, userID string) (map[string]interface{}, error)
}

// AssessmentProvider generates a short quiz for a topic.
type AssessmentProvider interface {
	Generate(ctx context.Context, topic string, questions int) ([]string, error)
}

// Providers bundles every external dependency the default capability set
// needs.
type Providers struct {
	Resources   ResourceProvider
	Notes       NotesProvider
	Progress    ProgressProvider
	Assessments AssessmentProvider
}

// DefaultDefinitions builds the standard capability set over the given
// providers. Definitions with a nil provider are skipped, so partial
// deployments degrade to a smaller catalog instead of failing.
func DefaultDefinitions(p Providers) []*Definition {
	var defs []*Definition

	if p.Resources != nil {
		defs = append(defs, &Definition{
			Name:        "resource_search",
			Description: "Search for learning videos on a topic. Use when the user asks for videos, tutorials, or material to watch.",
			InputSchema: ObjectSchema(map[string]interface{}{
				"topic": StringProperty("The topic to find videos for"),
				"limit": IntegerProperty("Maximum number of results, default 3"),
			}, []string{"topic"}),
			Timeout:   8 * time.Second,
			EventKind: core.EventResourceFound,
			Adapter: AdapterFunc(func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
				topic, _ := args["topic"].(string)
				limit := intArg(args, "limit", 3)
				videos, err := p.Resources.SearchVideos(ctx, topic, limit)
				if err != nil {
					return nil, core.NewAdapterError("resource_search", err)
				}
				items := make([]map[string]interface{}, 0, len(videos))
				for _, v := range videos {
					items = append(items, map[string]interface{}{"title": v.Title, "url": v.URL})
				}
				return map[string]interface{}{"topic": topic, "videos": items}, nil
			}),
		})
	}

	if p.Notes != nil {
		defs = append(defs,
			&Definition{
				Name:        "note_lookup",
				Description: "Fetch the user's saved study notes on a topic. Use when the user asks what they wrote down earlier.",
				InputSchema: ObjectSchema(map[string]interface{}{
					"user_id": StringProperty("The user whose notes to fetch"),
					"topic":   StringProperty("The topic to look up notes for"),
				}, []string{"user_id", "topic"}),
				Timeout: 5 * time.Second,
				Adapter: AdapterFunc(func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
					userID, _ := args["user_id"].(string)
					topic, _ := args["topic"].(string)
					notes, err := p.Notes.Lookup(ctx, userID, topic)
					if err != nil {
						return nil, core.NewAdapterError("note_lookup", err)
					}
					return map[string]interface{}{"topic": topic, "notes": notes}, nil
				}),
			},
			&Definition{
				Name:        "note_update",
				Description: "Save a new study note for the user. Use when the user asks to note something down or remember it.",
				InputSchema: ObjectSchema(map[string]interface{}{
					"user_id": StringProperty("The user to save the note for"),
					"topic":   StringProperty("The topic the note belongs to"),
					"text":    StringProperty("The note content"),
				}, []string{"user_id", "topic", "text"}),
				SideEffecting: true,
				Timeout:       5 * time.Second,
				EventKind:     core.EventNoteUpdated,
				Adapter: AdapterFunc(func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
					userID, _ := args["user_id"].(string)
					topic, _ := args["topic"].(string)
					text, _ := args["text"].(string)
					if err := p.Notes.Add(ctx, userID, topic, text); err != nil {
						return nil, core.NewAdapterError("note_update", err)
					}
					return map[string]interface{}{"topic": topic, "saved": true}, nil
				}),
			},
		)
	}

	if p.Progress != nil {
		defs = append(defs, &Definition{
			Name:        "progress_report",
			Description: "Summarize the user's learning plan progress. Use when the user asks how far along they are.",
			InputSchema: ObjectSchema(map[string]interface{}{
				"user_id": StringProperty("The user to report progress for"),
			}, []string{"user_id"}),
			Timeout:   5 * time.Second,
			EventKind: core.EventProgressChecked,
			Adapter: AdapterFunc(func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
				userID, _ := args["user_id"].(string)
				report, err := p.Progress.Report(ctx, userID)
				if err != nil {
					return nil, core.NewAdapterError("progress_report", err)
				}
				return report, nil
			}),
		})
	}

	if p.Assessments != nil {
		defs = append(defs, &Definition{
			Name:        "generate_assessment",
			Description: "Generate a short quiz on a topic. Use when the user wants to test their understanding.",
			InputSchema: ObjectSchema(map[string]interface{}{
				"topic":     StringProperty("The topic to quiz on"),
				"questions": IntegerProperty("Number of questions, default 3"),
			}, []string{"topic"}),
			Timeout:   10 * time.Second,
			EventKind: core.EventAssessmentCompleted,
			Adapter: AdapterFunc(func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
				topic, _ := args["topic"].(string)
				n := intArg(args, "questions", 3)
				questions, err := p.Assessments.Generate(ctx, topic, n)
				if err != nil {
					return nil, core.NewAdapterError("generate_assessment", err)
				}
				return map[string]interface{}{"topic": topic, "questions": questions}, nil
			}),
		})
	}

	// share_achievement has no external provider: it builds a share link the
	// user opens themselves.
	defs = append(defs, &Definition{
		Name:        "share_achievement",
		Description: "Build a LinkedIn share link for a learning milestone. Use when the user wants to share an achievement.",
		InputSchema: ObjectSchema(map[string]interface{}{
			"message": StringProperty("The achievement text to share"),
		}, []string{"message"}),
		SideEffecting: true,
		Timeout:       2 * time.Second,
		EventKind:     core.EventAchievementShared,
		Adapter: AdapterFunc(func(_ context.Context, args map[string]interface{}) (map[string]interface{}, error) {
			message, _ := args["message"].(string)
			if strings.TrimSpace(message) == "" {
				return nil, core.NewAdapterError("share_achievement", fmt.Errorf("message is empty"))
			}
			share := "https://www.linkedin.com/sharing/share-offsite/?text=" + url.QueryEscape(message)
			return map[string]interface{}{"share_url": share}, nil
		}),
	})

	return defs
}

func intArg(args map[string]interface{}, name string, fallback int) int {
	switch v := args[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return fallback
}
