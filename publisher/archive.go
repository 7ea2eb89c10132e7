package publisher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"twine-publisher/i18n"
	"twine-publisher/story"
)

// SaveFunc salva un blob di byte con il nome suggerito.
// L'implementazione di default è DirSaver; i test possono iniettarne
// una propria.
type SaveFunc func(data []byte, filename string) error

// PublishArchive serializza una lista di storie in un unico documento
// archivio: ogni storia in modalità lenient, senza override e senza
// options, ogni frammento seguito da una riga vuota, nessun elemento
// contenitore. Una lista vuota produce la stringa vuota.
func PublishArchive(app story.AppInfo, stories []*story.Story) (string, error) {
	var b strings.Builder

	for _, s := range stories {
		frag, err := PublishStory(app, s, &PublishOptions{StartOptional: true})
		if err != nil {
			return "", fmt.Errorf("archivio, storia %q: %w", s.Name, err)
		}
		b.WriteString(frag)
		b.WriteString("\n\n")
	}

	return b.String(), nil
}

// ArchiveFilename costruisce il nome file dell'archivio: timestamp
// locale con i caratteri non validi nei path (/ : \) sostituiti da
// punti, più il nome base localizzato.
func ArchiveFilename(now time.Time) string {
	stamp := now.Format("02/01/2006, 15:04:05")
	stamp = strings.NewReplacer("/", ".", ":", ".", `\`, ".").Replace(stamp)
	return stamp + " " + i18n.T("archive_filename") + ".html"
}

// PublishArchiveToFile pubblica l'archivio e lo consegna alla
// capability di salvataggio. Ritorna il nome file suggerito.
func PublishArchiveToFile(app story.AppInfo, stories []*story.Story, save SaveFunc) (string, error) {
	archive, err := PublishArchive(app, stories)
	if err != nil {
		return "", err
	}

	filename := ArchiveFilename(time.Now())
	if err := save([]byte(archive), filename); err != nil {
		return "", fmt.Errorf("errore salvataggio archivio: %w", err)
	}

	return filename, nil
}

// DirSaver ritorna una SaveFunc che scrive sotto la directory di
// lavoro indicata, creandola se necessario
func DirSaver(dir string) SaveFunc {
	return func(data []byte, filename string) error {
		if dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("impossibile creare workDir: %w", err)
			}
		}
		path := filepath.Join(dir, filename)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("errore scrittura %s: %w", path, err)
		}
		return nil
	}
}
