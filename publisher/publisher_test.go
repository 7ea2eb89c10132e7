package publisher

import (
	"errors"
	"strings"
	"testing"

	"twine-publisher/story"
)

var testApp = story.AppInfo{Name: "twine-publisher", Version: "0.1.0"}

// storiaDiProva costruisce una storia con tre passaggi ordinati
func storiaDiProva() *story.Story {
	s := story.NewStory("La Grotta")
	s.Format = "Harlowe"
	s.FormatVersion = "3.3.9"
	s.Zoom = 1.5

	for _, name := range []string{"Inizio", "Bivio", "Fine"} {
		p := story.NewPassage(name)
		p.Text = "Testo di " + name
		s.AddPassage(p)
	}
	s.StartPassage = s.Passages[0].ID

	return s
}

// ============================================
// Test PublishPassage
// ============================================

func TestPublishPassageAttributes(t *testing.T) {
	p := story.NewPassage("Bivio")
	p.Tags = []string{"bosco", "notte"}
	p.Left = 12.5
	p.Top = 25
	p.Width = 100
	p.Height = 200
	p.Text = "Scegli la strada"

	out := PublishPassage(p, 3)

	if !strings.Contains(out, `pid="3"`) {
		t.Errorf("pid mancante: %s", out)
	}
	if !strings.Contains(out, `name="Bivio"`) {
		t.Errorf("name mancante: %s", out)
	}
	if !strings.Contains(out, `tags="bosco notte"`) {
		t.Errorf("tag non uniti da singolo spazio: %s", out)
	}
	if !strings.Contains(out, `position="12.5,25"`) {
		t.Errorf("position errata: %s", out)
	}
	if !strings.Contains(out, `size="100,200"`) {
		t.Errorf("size errata: %s", out)
	}
	if !strings.Contains(out, ">Scegli la strada</tw-passagedata>") {
		t.Errorf("testo mancante: %s", out)
	}

	t.Logf("✅ Passaggio pubblicato: %s", out)
}

func TestPublishPassageEscaping(t *testing.T) {
	p := story.NewPassage(`Nome <con> "attributi" & altro`)
	p.Tags = []string{"a&b"}
	p.Text = `<script>alert("x")</script>`

	out := PublishPassage(p, 1)

	if strings.Contains(out, `<script>`) {
		t.Error("il testo del passaggio non è stato escapato")
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Errorf("escape del testo mancante: %s", out)
	}
	if !strings.Contains(out, `name="Nome &lt;con&gt; &#34;attributi&#34; &amp; altro"`) {
		t.Errorf("escape del nome mancante: %s", out)
	}
	if !strings.Contains(out, `tags="a&amp;b"`) {
		t.Errorf("escape dei tag mancante: %s", out)
	}

	t.Log("✅ Nessun carattere pericoloso non escapato")
}

func TestPublishPassageIsPure(t *testing.T) {
	p := story.NewPassage("Inizio")
	p.Text = "Testo"

	a := PublishPassage(p, 1)
	b := PublishPassage(p, 1)

	if a != b {
		t.Error("PublishPassage non è deterministica a parità di input")
	}

	t.Log("✅ PublishPassage pura")
}

// ============================================
// Test PublishStory
// ============================================

func TestPublishStoryLocalIDs(t *testing.T) {
	s := storiaDiProva()
	s.StartPassage = s.Passages[1].ID // "Bivio"

	out, err := PublishStory(testApp, s, nil)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	// Id locali 1..N nell'ordine della collezione
	for i, name := range []string{"Inizio", "Bivio", "Fine"} {
		want := `pid="` + string(rune('1'+i)) + `" name="` + name + `"`
		if !strings.Contains(out, want) {
			t.Errorf("id locale %d non assegnato a %s", i+1, name)
		}
	}

	if !strings.Contains(out, `startnode="2"`) {
		t.Errorf("startnode deve essere l'id locale del passaggio iniziale: %s", out)
	}

	t.Log("✅ Id locali 1..N in ordine di collezione, startnode corretto")
}

func TestPublishStoryAttributes(t *testing.T) {
	s := storiaDiProva()

	out, err := PublishStory(testApp, s, &PublishOptions{FormatOptions: "debug"})
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	checks := []string{
		`name="La Grotta"`,
		`startnode="1"`,
		`creator="twine-publisher"`,
		`creator-version="0.1.0"`,
		`ifid="` + s.IFID + `"`,
		`zoom="1.5"`,
		`format="Harlowe"`,
		`format-version="3.3.9"`,
		`options="debug"`,
		` hidden>`,
	}
	for _, want := range checks {
		if !strings.Contains(out, want) {
			t.Errorf("attributo mancante %q in: %s", want, out)
		}
	}

	t.Log("✅ Attributi della storia completi")
}

func TestPublishStoryContentOrder(t *testing.T) {
	s := storiaDiProva()
	s.Stylesheet = "body { color: red; }"
	s.Script = "window.setup = {};"
	s.TagColors = map[string]string{"bosco": "green"}

	out, err := PublishStory(testApp, s, nil)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	style := strings.Index(out, `<style role="stylesheet" id="twine-user-stylesheet" type="text/twine-css">body { color: red; }</style>`)
	script := strings.Index(out, `<script role="script" id="twine-user-script" type="text/twine-javascript">window.setup = {};</script>`)
	tag := strings.Index(out, `<tw-tag name="bosco" color="green"></tw-tag>`)
	passage := strings.Index(out, "<tw-passagedata")

	if style == -1 || script == -1 || tag == -1 || passage == -1 {
		t.Fatalf("blocco mancante nell'output: style=%d script=%d tag=%d passage=%d", style, script, tag, passage)
	}
	if !(style < script && script < tag && tag < passage) {
		t.Errorf("ordine del contenuto errato: style=%d script=%d tag=%d passage=%d", style, script, tag, passage)
	}

	t.Log("✅ Ordine: stylesheet, script, tag, passaggi")
}

func TestPublishStoryNameEscaping(t *testing.T) {
	s := storiaDiProva()
	s.Name = `A&B "storia" <vera>`

	out, err := PublishStory(testApp, s, nil)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	if !strings.Contains(out, `name="A&amp;B &#34;storia&#34; &lt;vera&gt;"`) {
		t.Errorf("nome non escapato: %s", out)
	}
	if strings.Contains(out, `name="A&B`) {
		t.Error("nome con & non escapato nell'attributo")
	}

	t.Log("✅ Round-trip escaping del nome storia")
}

// ============================================
// Test modalità strict / lenient
// ============================================

func TestPublishStoryNoStartStrict(t *testing.T) {
	s := storiaDiProva()
	s.StartPassage = ""

	_, err := PublishStory(testApp, s, nil)
	if !errors.Is(err, ErrNoStartPoint) {
		t.Fatalf("atteso ErrNoStartPoint, ottenuto: %v", err)
	}

	t.Logf("✅ Strict senza start: %v", err)
}

func TestPublishStoryStartNotFoundStrict(t *testing.T) {
	s := storiaDiProva()
	s.StartPassage = "id-inesistente"

	_, err := PublishStory(testApp, s, nil)
	if !errors.Is(err, ErrStartPointNotFound) {
		t.Fatalf("atteso ErrStartPointNotFound, ottenuto: %v", err)
	}

	t.Logf("✅ Strict con start inesistente: %v", err)
}

func TestPublishStoryLenient(t *testing.T) {
	s := storiaDiProva()
	s.StartPassage = ""

	out, err := PublishStory(testApp, s, &PublishOptions{StartOptional: true})
	if err != nil {
		t.Fatalf("la modalità lenient non deve fallire: %v", err)
	}
	if !strings.Contains(out, `startnode=""`) {
		t.Errorf("startnode deve restare vuoto: %s", out)
	}

	// Anche con un id che non corrisponde a nulla
	s.StartPassage = "id-inesistente"
	out, err = PublishStory(testApp, s, &PublishOptions{StartOptional: true})
	if err != nil {
		t.Fatalf("la modalità lenient non deve validare lo start: %v", err)
	}
	if !strings.Contains(out, `startnode=""`) {
		t.Errorf("startnode deve restare vuoto: %s", out)
	}

	t.Log("✅ Lenient: startnode vuoto, nessun errore")
}

func TestPublishStoryStartOverride(t *testing.T) {
	s := storiaDiProva()
	// La storia dichiara "Inizio", l'override punta a "Fine"
	out, err := PublishStory(testApp, s, &PublishOptions{StartID: s.Passages[2].ID})
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	if !strings.Contains(out, `startnode="3"`) {
		t.Errorf("l'override esplicito deve vincere sullo start dichiarato: %s", out)
	}

	t.Log("✅ Override esplicito dello start")
}

func TestPublishStoryNoPartialOutput(t *testing.T) {
	s := storiaDiProva()
	s.StartPassage = ""

	out, err := PublishStory(testApp, s, nil)
	if err == nil {
		t.Fatal("atteso errore")
	}
	if out != "" {
		t.Errorf("nessun output parziale in caso di errore, ottenuto: %q", out)
	}

	t.Log("✅ Nessun frammento prodotto in caso di errore")
}
