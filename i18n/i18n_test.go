package i18n

import "testing"

func TestTranslate(t *testing.T) {
	SetLocale("it")
	if T("archive_filename") != "Archivio Twine" {
		t.Errorf("traduzione it errata: %q", T("archive_filename"))
	}

	SetLocale("en")
	if T("archive_filename") != "Twine Archive" {
		t.Errorf("traduzione en errata: %q", T("archive_filename"))
	}

	// Chiave sconosciuta: ritorna la chiave stessa
	if T("manca") != "manca" {
		t.Errorf("fallback sulla chiave mancato: %q", T("manca"))
	}

	// Locale sconosciuto: ignorato
	SetLocale("xx")
	if Locale() != "en" {
		t.Errorf("locale sconosciuto non ignorato: %q", Locale())
	}

	SetLocale("it")
	t.Log("✅ Lookup di traduzione")
}
