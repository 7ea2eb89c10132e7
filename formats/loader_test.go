package formats

import (
	"os"
	"path/filepath"
	"testing"
)

// scriviFormato scrive un format.js temporaneo e ritorna il path
func scriviFormato(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "format.js")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Error: %v", err)
	}
	return path
}

func TestLoadFormatFileJSONP(t *testing.T) {
	path := scriviFormato(t, t.TempDir(),
		`window.storyFormat({"name":"Harlowe","version":"3.3.9","source":"<html>{{STORY_DATA}}</html>"});`)

	f, err := LoadFormatFile(path)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	if f.Name != "Harlowe" || f.Version != "3.3.9" {
		t.Errorf("descrittore errato: %+v", f)
	}
	if f.Properties.Source != "<html>{{STORY_DATA}}</html>" {
		t.Errorf("source errato: %q", f.Properties.Source)
	}

	t.Logf("✅ Caricato %s-%s dal wrapper JSONP", f.Name, f.Version)
}

func TestLoadFormatFileBareJSON(t *testing.T) {
	path := scriviFormato(t, t.TempDir(),
		`{"name":"SugarCube","version":"2.36.1","source":"{{STORY_NAME}}{{STORY_DATA}}"}`)

	f, err := LoadFormatFile(path)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}

	if f.Name != "SugarCube" {
		t.Errorf("nome errato: %q", f.Name)
	}

	t.Log("✅ JSON nudo accettato")
}

func TestLoadFormatFileInvalid(t *testing.T) {
	path := scriviFormato(t, t.TempDir(), `window.storyFormat(niente di utile);`)

	if _, err := LoadFormatFile(path); err == nil {
		t.Error("atteso errore su file senza oggetto JSON")
	}

	if _, err := LoadFormatFile(filepath.Join(t.TempDir(), "manca.js")); err == nil {
		t.Error("atteso errore su file inesistente")
	}

	t.Log("✅ File malformati rifiutati")
}

func TestLoadFormatDirRegisters(t *testing.T) {
	base := t.TempDir()
	sub := filepath.Join(base, "harlowe-3.3.9")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatalf("Error: %v", err)
	}
	scriviFormato(t, sub,
		`window.storyFormat({"name":"Harlowe","version":"3.3.9","source":"x{{STORY_DATA}}x"});`)

	loaded, err := LoadFormatDir(base)
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("atteso 1 formato, ottenuti %d", len(loaded))
	}

	if Lookup("Harlowe", "3.3.9") == nil {
		t.Error("formato non registrato dopo il caricamento")
	}
	if Lookup("harlowe", "3.3.9") == nil {
		t.Error("lookup deve essere case-insensitive sul nome")
	}

	t.Log("✅ LoadFormatDir registra i formati trovati")
}

func TestLookupAnyVersion(t *testing.T) {
	Register(&StoryFormat{Name: "Chapbook", Version: "1.2.3"})
	Register(&StoryFormat{Name: "Chapbook", Version: "2.0.0"})

	f := Lookup("Chapbook", "")
	if f == nil {
		t.Fatal("lookup senza versione deve trovare il formato")
	}
	if f.Version != "2.0.0" {
		t.Errorf("attesa la versione con chiave più alta, ottenuta %s", f.Version)
	}

	if Lookup("Inesistente", "") != nil {
		t.Error("formato mai registrato trovato")
	}

	t.Logf("✅ Lookup senza versione: %s-%s", f.Name, f.Version)
}
