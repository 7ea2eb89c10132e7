package publisher

import (
	"fmt"
	"html"
	"strings"

	"twine-publisher/formats"
	"twine-publisher/story"
)

// Placeholder sostituiti nel template dello story format
const (
	namePlaceholder = "{{STORY_NAME}}"
	dataPlaceholder = "{{STORY_DATA}}"
)

// PublishStoryWithFormat lega una storia serializzata al template del
// suo story format, producendo il documento HTML finale giocabile.
// La sostituzione è letterale (strings.ReplaceAll): caratteri speciali
// di pattern dentro nome o contenuto restano intatti.
func PublishStoryWithFormat(app story.AppInfo, s *story.Story, format *formats.StoryFormat, opts *PublishOptions) (string, error) {
	if format == nil || format.Properties.Source == "" {
		return "", fmt.Errorf("storia %q: %w", s.Name, ErrMissingSource)
	}

	data, err := PublishStory(app, s, opts)
	if err != nil {
		return "", err
	}

	out := strings.ReplaceAll(format.Properties.Source, namePlaceholder, html.EscapeString(s.Name))
	out = strings.ReplaceAll(out, dataPlaceholder, data)

	return out, nil
}
