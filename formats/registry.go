package formats

import (
	"strings"
	"sync"
)

// formatRegistry mantiene i descrittori registrati
var (
	registry     = make(map[string]*StoryFormat)
	registryLock sync.RWMutex
)

// registryKey chiave nome+versione, case-insensitive sul nome
func registryKey(name, version string) string {
	return strings.ToLower(name) + "-" + version
}

// Register registra un descrittore di formato.
// Una registrazione successiva con stessi nome e versione sovrascrive
// la precedente.
func Register(f *StoryFormat) {
	registryLock.Lock()
	defer registryLock.Unlock()
	registry[registryKey(f.Name, f.Version)] = f
}

// Lookup restituisce il descrittore registrato per nome e versione.
// Con versione vuota ritorna una versione qualsiasi del formato
// (quella con la chiave più alta, per avere un risultato stabile).
func Lookup(name, version string) *StoryFormat {
	registryLock.RLock()
	defer registryLock.RUnlock()

	if version != "" {
		return registry[registryKey(name, version)]
	}

	prefix := strings.ToLower(name) + "-"
	var bestKey string
	var best *StoryFormat
	for key, f := range registry {
		if strings.HasPrefix(key, prefix) && key > bestKey {
			bestKey = key
			best = f
		}
	}
	return best
}

// Available restituisce nome e versione dei formati registrati
func Available() []string {
	registryLock.RLock()
	defer registryLock.RUnlock()

	names := make([]string, 0, len(registry))
	for _, f := range registry {
		names = append(names, f.Name+"-"+f.Version)
	}
	return names
}

// IsRegistered verifica se un formato è registrato
func IsRegistered(name, version string) bool {
	return Lookup(name, version) != nil
}
