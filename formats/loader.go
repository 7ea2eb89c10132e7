package formats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// formatFile layout JSON di un format.js Twine: i campi descrittivi e
// il template stanno allo stesso livello
type formatFile struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Proofing    bool   `json:"proofing"`
	Source      string `json:"source"`
}

// LoadFormatFile carica un descrittore da un file format.js.
// Accetta sia il wrapper JSONP window.storyFormat({...}) usato da
// Twine sia un oggetto JSON nudo.
func LoadFormatFile(path string) (*StoryFormat, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("errore lettura formato %s: %w", path, err)
	}

	payload, err := stripJSONP(string(raw))
	if err != nil {
		return nil, fmt.Errorf("formato %s: %w", path, err)
	}

	var ff formatFile
	if err := json.Unmarshal([]byte(payload), &ff); err != nil {
		return nil, fmt.Errorf("errore decodifica formato %s: %w", path, err)
	}

	if ff.Name == "" {
		// Fallback: nome dalla directory, come fa Twine con i
		// formati senza campo name
		ff.Name = filepath.Base(filepath.Dir(path))
	}

	return &StoryFormat{
		Name:        ff.Name,
		Version:     ff.Version,
		Author:      ff.Author,
		Description: ff.Description,
		Proofing:    ff.Proofing,
		Properties:  FormatProperties{Source: ff.Source},
	}, nil
}

// LoadFormatDir carica e registra tutti i format.js trovati sotto la
// directory indicata. Ritorna i descrittori caricati.
func LoadFormatDir(dir string) ([]*StoryFormat, error) {
	var loaded []*StoryFormat

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Base(path) != "format.js" {
			return nil
		}

		f, err := LoadFormatFile(path)
		if err != nil {
			return err
		}
		Register(f)
		loaded = append(loaded, f)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("errore scansione formati in %s: %w", dir, err)
	}

	return loaded, nil
}

// stripJSONP estrae l'oggetto JSON dal wrapper window.storyFormat(...)
func stripJSONP(src string) (string, error) {
	trimmed := strings.TrimSpace(src)
	if strings.HasPrefix(trimmed, "{") {
		return trimmed, nil
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("nessun oggetto JSON nel file formato")
	}
	return trimmed[start : end+1], nil
}
