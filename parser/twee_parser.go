// Package parser legge file .twee e produce il modello di storia
// pubblicabile.
package parser

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"twine-publisher/story"

	"github.com/google/uuid"
)

// Regex per il formato :: Title [tags] {"position":"x,y","size":"w,h"}
var passageHeaderRegex = regexp.MustCompile(`^::\s*(.+?)(?:\s+\[([^\]]*)\])?(?:\s+(\{.*\}))?\s*$`)

// storyData layout del passaggio speciale StoryData
type storyData struct {
	IFID          string            `json:"ifid"`
	Format        string            `json:"format"`
	FormatVersion string            `json:"format-version"`
	Start         string            `json:"start"`
	Zoom          float64           `json:"zoom"`
	TagColors     map[string]string `json:"tag-colors"`
}

// TweeParser gestisce il parsing dei file .twee
type TweeParser struct {
	filepath string
}

// NewTweeParser crea un nuovo parser
func NewTweeParser(filepath string) *TweeParser {
	return &TweeParser{filepath: filepath}
}

// Parse legge e parsa il file .twee.
// I passaggi speciali StoryTitle e StoryData alimentano i metadati
// della storia; i passaggi taggati stylesheet o script confluiscono
// nei rispettivi campi. L'ordine dei passaggi è quello del file.
func (tp *TweeParser) Parse() (*story.Story, error) {
	file, err := os.Open(tp.filepath)
	if err != nil {
		return nil, fmt.Errorf("errore apertura file: %w", err)
	}
	defer file.Close()

	s := story.NewStory("")
	s.IFID = "" // Assegnato da StoryData, o rigenerato a fine parsing

	var startName string

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var currentPassage *story.Passage
	var contentBuilder strings.Builder

	flush := func() error {
		if currentPassage == nil {
			return nil
		}
		currentPassage.Text = strings.TrimSpace(contentBuilder.String())
		contentBuilder.Reset()

		p := currentPassage
		currentPassage = nil

		// Passaggi speciali: non entrano nella collezione
		switch p.Name {
		case "StoryTitle":
			s.Name = p.Text
			return nil
		case "StoryData":
			var sd storyData
			if err := json.Unmarshal([]byte(p.Text), &sd); err != nil {
				return fmt.Errorf("StoryData non valido: %w", err)
			}
			s.IFID = sd.IFID
			s.Format = sd.Format
			s.FormatVersion = sd.FormatVersion
			if sd.Zoom != 0 {
				s.Zoom = sd.Zoom
			}
			if sd.TagColors != nil {
				s.TagColors = sd.TagColors
			}
			startName = sd.Start
			return nil
		}

		// Passaggi taggati stylesheet/script confluiscono nei campi
		// della storia
		for _, tag := range p.Tags {
			switch tag {
			case "stylesheet":
				s.Stylesheet = appendBlock(s.Stylesheet, p.Text)
				return nil
			case "script":
				s.Script = appendBlock(s.Script, p.Text)
				return nil
			}
		}

		s.AddPassage(p)
		return nil
	}

	for scanner.Scan() {
		line := scanner.Text()

		// Nuova intestazione passaggio
		if strings.HasPrefix(line, "::") {
			if err := flush(); err != nil {
				return nil, err
			}

			matches := passageHeaderRegex.FindStringSubmatch(line)
			if len(matches) < 2 {
				continue
			}

			currentPassage = story.NewPassage(strings.TrimSpace(matches[1]))

			// Estrai i tag se presenti
			if matches[2] != "" {
				for _, tag := range strings.Split(matches[2], " ") {
					tag = strings.TrimSpace(tag)
					if tag != "" {
						currentPassage.Tags = append(currentPassage.Tags, tag)
					}
				}
			}

			// Metadata posizione/dimensione
			if matches[3] != "" {
				parseGeometry(currentPassage, matches[3])
			}
		} else if currentPassage != nil {
			contentBuilder.WriteString(line)
			contentBuilder.WriteString("\n")
		}
	}

	if err := flush(); err != nil {
		return nil, err
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("errore lettura file: %w", err)
	}

	if s.IFID == "" {
		s.IFID = uuid.NewString()
	}

	// Risolvi il passaggio iniziale per nome: StoryData.start,
	// altrimenti la convenzione tweego del passaggio "Start"
	if startName == "" {
		startName = "Start"
	}
	if p := s.PassageByName(startName); p != nil {
		s.StartPassage = p.ID
	}

	return s, nil
}

// parseGeometry applica i metadata "position" e "size" al passaggio
func parseGeometry(p *story.Passage, meta string) {
	var m struct {
		Position string `json:"position"`
		Size     string `json:"size"`
	}
	if err := json.Unmarshal([]byte(meta), &m); err != nil {
		return // Metadata malformati: ignora, non è un errore fatale
	}

	if x, y, ok := splitPair(m.Position); ok {
		p.Left, p.Top = x, y
	}
	if w, h, ok := splitPair(m.Size); ok {
		p.Width, p.Height = w, h
	}
}

// splitPair parsa una coppia "a,b" di numeri
func splitPair(pair string) (float64, float64, bool) {
	parts := strings.SplitN(pair, ",", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	a, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	b, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return a, b, true
}

// appendBlock concatena blocchi di stylesheet/script separandoli con
// una riga vuota
func appendBlock(existing, block string) string {
	if existing == "" {
		return block
	}
	return existing + "\n\n" + block
}
