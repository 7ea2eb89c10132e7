package parser

import (
	"fmt"
	"os"
)

// ValidationIssue un singolo problema riscontrato
type ValidationIssue struct {
	Passage string `json:"passage,omitempty"`
	Message string `json:"message"`
}

// ValidationResult risultato della validazione di un file .twee
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationIssue `json:"errors"`
	Warnings []ValidationIssue `json:"warnings"`
}

// Validate controlla il file .twee senza pubblicarlo: errori di
// struttura bloccanti più warning su link rotti e passaggio iniziale
// mancante.
func (tp *TweeParser) Validate() *ValidationResult {
	result := &ValidationResult{
		Errors:   []ValidationIssue{},
		Warnings: []ValidationIssue{},
	}

	fail := func(msg string) *ValidationResult {
		result.Errors = append(result.Errors, ValidationIssue{Message: msg})
		result.Valid = false
		return result
	}

	info, err := os.Stat(tp.filepath)
	if err != nil {
		return fail(fmt.Sprintf("file non trovato: %s", tp.filepath))
	}
	if info.Size() == 0 {
		return fail(fmt.Sprintf("file vuoto: %s", tp.filepath))
	}

	s, err := tp.Parse()
	if err != nil {
		return fail(fmt.Sprintf("errore di parsing: %v", err))
	}

	if len(s.Passages) == 0 {
		return fail("nessun passaggio nel file")
	}

	// Nomi duplicati: i link per nome diventano ambigui
	seen := map[string]bool{}
	for _, p := range s.Passages {
		if seen[p.Name] {
			result.Errors = append(result.Errors, ValidationIssue{
				Passage: p.Name,
				Message: fmt.Sprintf("passaggio duplicato: %q", p.Name),
			})
		}
		seen[p.Name] = true
	}

	// Link verso passaggi inesistenti
	for _, p := range s.Passages {
		for _, link := range ParseLinks(p.Text) {
			if !seen[link] {
				result.Warnings = append(result.Warnings, ValidationIssue{
					Passage: p.Name,
					Message: fmt.Sprintf("link verso passaggio inesistente: %q", link),
				})
			}
		}
	}

	// Senza passaggio iniziale la pubblicazione strict fallirà
	if s.StartPassage == "" {
		result.Warnings = append(result.Warnings, ValidationIssue{
			Message: "nessun passaggio iniziale (StoryData.start o passaggio \"Start\")",
		})
	}

	result.Valid = len(result.Errors) == 0
	return result
}
