// Package formats gestisce i descrittori degli story format Twine
// (Harlowe, SugarCube, ...) e il loro caricamento da file format.js.
package formats

// FormatProperties proprietà esposte dal descrittore.
// Source è il template HTML con i placeholder {{STORY_NAME}} e
// {{STORY_DATA}} in cui viene incorporata la storia serializzata.
type FormatProperties struct {
	Source string `json:"source"`
}

// StoryFormat descrittore di uno story format caricato
type StoryFormat struct {
	Name        string           `json:"name"`
	Version     string           `json:"version"`
	Author      string           `json:"author,omitempty"`
	Description string           `json:"description,omitempty"`
	Proofing    bool             `json:"proofing,omitempty"`
	Properties  FormatProperties `json:"-"`
}
