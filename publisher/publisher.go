// Package publisher serializza storie Twine nel formato HTML
// <tw-storydata> usato da Twine 2 e dai suoi story format.
package publisher

import (
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"twine-publisher/story"
)

// Errori di pubblicazione. Vengono sempre sollevati prima di produrre
// qualsiasi frammento: nessun output parziale.
var (
	// ErrNoStartPoint: modalità strict senza passaggio iniziale risolvibile
	ErrNoStartPoint = errors.New("nessun passaggio iniziale definito")

	// ErrStartPointNotFound: l'ID iniziale non corrisponde a nessun passaggio
	ErrStartPointNotFound = errors.New("passaggio iniziale non trovato")

	// ErrMissingSource: lo story format non espone properties.source
	ErrMissingSource = errors.New("lo story format non contiene properties.source")
)

// PublishOptions opzioni per la pubblicazione di una storia
type PublishOptions struct {
	FormatOptions string // Stringa options passata allo story format
	StartID       string // Override del passaggio iniziale (ID stabile)
	StartOptional bool   // Modalità lenient: startnode vuoto invece di errore
}

// PublishPassage serializza un passaggio con il suo id locale.
// L'id locale (pid) è assegnato dal chiamante in ordine di
// serializzazione, 1-based; l'ID stabile del passaggio non compare
// mai nell'output.
func PublishPassage(p *story.Passage, pid int) string {
	var b strings.Builder

	b.WriteString(`<tw-passagedata pid="`)
	b.WriteString(strconv.Itoa(pid))
	b.WriteString(`" name="`)
	b.WriteString(html.EscapeString(p.Name))
	b.WriteString(`" tags="`)
	b.WriteString(html.EscapeString(strings.Join(p.Tags, " ")))
	b.WriteString(`" position="`)
	b.WriteString(num(p.Left) + "," + num(p.Top))
	b.WriteString(`" size="`)
	b.WriteString(num(p.Width) + "," + num(p.Height))
	b.WriteString(`">`)
	b.WriteString(html.EscapeString(p.Text))
	b.WriteString("</tw-passagedata>")

	return b.String()
}

// PublishStory serializza una storia completa in un frammento
// <tw-storydata>. Gli id locali dei passaggi sono assegnati 1..N
// nell'ordine della collezione; startnode riporta l'id locale del
// passaggio iniziale risolto, o stringa vuota in modalità lenient.
func PublishStory(app story.AppInfo, s *story.Story, opts *PublishOptions) (string, error) {
	if opts == nil {
		opts = &PublishOptions{}
	}

	// Risolvi l'ID del passaggio iniziale: override esplicito,
	// altrimenti quello dichiarato dalla storia
	startID := opts.StartID
	if startID == "" {
		startID = s.StartPassage
	}

	// Mappa ID -> id locale, costruita una volta per passata
	localIDs := make(map[string]int, len(s.Passages))
	for i, p := range s.Passages {
		localIDs[p.ID] = i + 1
	}

	// Validazione strict, prima di emettere qualsiasi frammento
	startNode := ""
	if pid, ok := localIDs[startID]; ok && startID != "" {
		startNode = strconv.Itoa(pid)
	} else if !opts.StartOptional {
		if startID == "" {
			return "", fmt.Errorf("storia %q: %w", s.Name, ErrNoStartPoint)
		}
		return "", fmt.Errorf("storia %q, id %q: %w", s.Name, startID, ErrStartPointNotFound)
	}

	var b strings.Builder

	b.WriteString(`<tw-storydata name="`)
	b.WriteString(html.EscapeString(s.Name))
	b.WriteString(`" startnode="`)
	b.WriteString(startNode)
	b.WriteString(`" creator="`)
	b.WriteString(html.EscapeString(app.Name))
	b.WriteString(`" creator-version="`)
	b.WriteString(html.EscapeString(app.Version))
	b.WriteString(`" ifid="`)
	b.WriteString(html.EscapeString(s.IFID))
	b.WriteString(`" zoom="`)
	b.WriteString(num(s.Zoom))
	b.WriteString(`" format="`)
	b.WriteString(html.EscapeString(s.Format))
	b.WriteString(`" format-version="`)
	b.WriteString(html.EscapeString(s.FormatVersion))
	b.WriteString(`" options="`)
	b.WriteString(html.EscapeString(opts.FormatOptions))
	b.WriteString(`" hidden>`)

	b.WriteString(`<style role="stylesheet" id="twine-user-stylesheet" type="text/twine-css">`)
	b.WriteString(s.Stylesheet)
	b.WriteString("</style>")

	b.WriteString(`<script role="script" id="twine-user-script" type="text/twine-javascript">`)
	b.WriteString(s.Script)
	b.WriteString("</script>")

	for tag, color := range s.TagColors {
		b.WriteString(`<tw-tag name="`)
		b.WriteString(html.EscapeString(tag))
		b.WriteString(`" color="`)
		b.WriteString(html.EscapeString(color))
		b.WriteString(`"></tw-tag>`)
	}

	for i, p := range s.Passages {
		b.WriteString(PublishPassage(p, i+1))
	}

	b.WriteString("</tw-storydata>")

	return b.String(), nil
}

// num formatta un numero senza esponente né zeri finali
func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
