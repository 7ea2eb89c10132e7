package story

import (
	"github.com/google/uuid"
)

// AppInfo identifica l'applicazione che pubblica la storia.
// Finisce negli attributi creator/creator-version dell'output.
type AppInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Passage rappresenta un singolo passaggio Twine
type Passage struct {
	ID     string   `json:"id"` // Identificatore stabile, mai pubblicato
	Name   string   `json:"name"`
	Tags   []string `json:"tags"`
	Left   float64  `json:"left"`
	Top    float64  `json:"top"`
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
	Text   string   `json:"text"`
}

// Story rappresenta l'intera storia
type Story struct {
	Name          string            `json:"name"`
	IFID          string            `json:"ifid"`
	Zoom          float64           `json:"zoom"`
	Format        string            `json:"format"`
	FormatVersion string            `json:"format_version"`
	Stylesheet    string            `json:"stylesheet"`
	Script        string            `json:"script"`
	TagColors     map[string]string `json:"tag_colors"`
	StartPassage  string            `json:"start_passage"` // ID del passaggio iniziale (può essere vuoto)
	Passages      []*Passage        `json:"passages"`      // Ordine di inserimento
}

// NewStory crea una storia vuota con un IFID generato
func NewStory(name string) *Story {
	return &Story{
		Name:      name,
		IFID:      uuid.NewString(),
		Zoom:      1,
		TagColors: map[string]string{},
	}
}

// NewPassage crea un passaggio con un ID stabile generato
func NewPassage(name string) *Passage {
	return &Passage{
		ID:     uuid.NewString(),
		Name:   name,
		Tags:   []string{},
		Width:  100,
		Height: 100,
	}
}

// AddPassage accoda un passaggio alla collezione
func (s *Story) AddPassage(p *Passage) {
	s.Passages = append(s.Passages, p)
}

// PassageByID cerca un passaggio per identificatore stabile
func (s *Story) PassageByID(id string) *Passage {
	for _, p := range s.Passages {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PassageByName cerca un passaggio per nome
func (s *Story) PassageByName(name string) *Passage {
	for _, p := range s.Passages {
		if p.Name == name {
			return p
		}
	}
	return nil
}
