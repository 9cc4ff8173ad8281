package main

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/abhiabhi150614/edu-ai-pro/capability"
)

// Local providers for running without external integrations. They keep the
// full capability surface exercisable offline; production deployments swap
// in real clients.

// searchLinkProvider answers video searches with result-page links instead
// of calling a video API.
type searchLinkProvider struct{}

func (searchLinkProvider) SearchVideos(_ context.Context, topic string, limit int) ([]capability.Video, error) {
	if limit <= 0 {
		limit = 3
	}
	videos := []capability.Video{{
		Title: "Search results for " + topic,
		URL:   "https://www.youtube.com/results?search_query=" + url.QueryEscape(topic),
	}}
	if len(videos) > limit {
		videos = videos[:limit]
	}
	return videos, nil
}

// memoryNotes stores notes in process memory, keyed by user and topic.
type memoryNotes struct {
	mu    sync.Mutex
	notes map[string]map[string][]string
}

func newMemoryNotes() *memoryNotes {
	return &memoryNotes{notes: make(map[string]map[string][]string)}
}

func (n *memoryNotes) Lookup(_ context.Context, userID, topic string) ([]string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.notes[userID][topic]...), nil
}

func (n *memoryNotes) Add(_ context.Context, userID, topic, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.notes[userID] == nil {
		n.notes[userID] = make(map[string][]string)
	}
	n.notes[userID][topic] = append(n.notes[userID][topic], text)
	return nil
}

// count returns the total notes a user has saved, across topics.
func (n *memoryNotes) count(userID string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	total := 0
	for _, notes := range n.notes[userID] {
		total += len(notes)
	}
	return total
}

// notesProgress derives a progress summary from saved notes.
type notesProgress struct {
	notes *memoryNotes
}

func (p notesProgress) Report(_ context.Context, userID string) (map[string]interface{}, error) {
	return map[string]interface{}{
		"notes_saved": p.notes.count(userID),
		"summary":     fmt.Sprintf("You have saved %d notes so far.", p.notes.count(userID)),
	}, nil
}

// templateAssessments produces simple prompt-style questions.
type templateAssessments struct{}

func (templateAssessments) Generate(_ context.Context, topic string, questions int) ([]string, error) {
	if questions <= 0 {
		questions = 3
	}
	templates := []string{
		"Explain %s in your own words.",
		"Give a small example that uses %s.",
		"What is a common mistake when working with %s?",
		"How would you test code that relies on %s?",
		"When would you avoid %s, and what would you use instead?",
	}
	if questions > len(templates) {
		questions = len(templates)
	}
	out := make([]string, 0, questions)
	for _, tpl := range templates[:questions] {
		out = append(out, fmt.Sprintf(tpl, topic))
	}
	return out, nil
}
