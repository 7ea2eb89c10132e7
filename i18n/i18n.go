// Package i18n fornisce la lookup di traduzione per le stringhe
// mostrate all'utente (nomi file, messaggi).
package i18n

import "sync"

var (
	locale     = "it"
	localeLock sync.RWMutex
)

// Tabelle di traduzione per locale
var tables = map[string]map[string]string{
	"it": {
		"archive_filename": "Archivio Twine",
	},
	"en": {
		"archive_filename": "Twine Archive",
	},
}

// SetLocale imposta il locale corrente. Locale sconosciuti vengono
// ignorati.
func SetLocale(l string) {
	localeLock.Lock()
	defer localeLock.Unlock()
	if _, ok := tables[l]; ok {
		locale = l
	}
}

// Locale ritorna il locale corrente
func Locale() string {
	localeLock.RLock()
	defer localeLock.RUnlock()
	return locale
}

// T traduce una chiave nel locale corrente. Se la chiave non esiste
// ritorna la chiave stessa, così il problema resta visibile.
func T(key string) string {
	localeLock.RLock()
	defer localeLock.RUnlock()

	if s, ok := tables[locale][key]; ok {
		return s
	}
	if s, ok := tables["en"][key]; ok {
		return s
	}
	return key
}
