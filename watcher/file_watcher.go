// Package watcher monitora i file .twee e li ripubblica al volo.
package watcher

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"twine-publisher/formats"
	"twine-publisher/parser"
	"twine-publisher/publisher"
	"twine-publisher/story"
)

// FileWatcher monitora cambiamenti ai file
type FileWatcher struct {
	watcher      *fsnotify.Watcher
	watchedPaths []string
	app          story.AppInfo
	publishOpts  *PublishConfig
	debounceTime time.Duration
	eventChan    chan WatchEvent
	stopChan     chan bool
	isRunning    bool
}

// WatchEvent rappresenta un evento del watcher
type WatchEvent struct {
	Type      string    `json:"type"` // "created", "modified", "deleted", "renamed", "publish_success", "publish_error", "validation_error"
	Path      string    `json:"path"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// PublishConfig come ripubblicare un file modificato
type PublishConfig struct {
	Format        string // Nome dello story format registrato
	FormatVersion string // Versione ("" = qualsiasi)
	OutputDir     string // Directory di output
	StartOptional bool   // Pubblica anche senza passaggio iniziale
}

// WatcherConfig configurazione per il watcher
type WatcherConfig struct {
	Paths        []string       // Path da monitorare
	App          story.AppInfo  // Identità dell'applicazione
	PublishOpts  *PublishConfig // Opzioni di pubblicazione
	DebounceTime time.Duration  // Tempo di debounce (default: 500ms)
	AutoPublish  bool           // Ripubblica automaticamente
}

// NewFileWatcher crea un nuovo file watcher
func NewFileWatcher(config WatcherConfig) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("errore creazione watcher: %w", err)
	}

	// Default debounce time
	if config.DebounceTime == 0 {
		config.DebounceTime = 500 * time.Millisecond
	}

	opts := config.PublishOpts
	if !config.AutoPublish {
		opts = nil
	}

	fw := &FileWatcher{
		watcher:      watcher,
		watchedPaths: config.Paths,
		app:          config.App,
		publishOpts:  opts,
		debounceTime: config.DebounceTime,
		eventChan:    make(chan WatchEvent, 100),
		stopChan:     make(chan bool),
		isRunning:    false,
	}

	// Aggiungi i path da monitorare
	for _, path := range config.Paths {
		if err := watcher.Add(path); err != nil {
			return nil, fmt.Errorf("errore aggiunta path %s: %w", path, err)
		}
		log.Printf("👀 Watching: %s", path)
	}

	return fw, nil
}

// Start avvia il file watcher
func (fw *FileWatcher) Start() error {
	if fw.isRunning {
		return fmt.Errorf("watcher già in esecuzione")
	}

	fw.isRunning = true
	log.Println("🚀 File watcher avviato!")

	// Map per debouncing
	debounceMap := make(map[string]*time.Timer)

	go func() {
		for {
			select {
			case event, ok := <-fw.watcher.Events:
				if !ok {
					return
				}

				// Ignora file non .twee
				if !strings.HasSuffix(event.Name, ".twee") {
					continue
				}

				// Determina tipo evento
				var eventType string
				switch {
				case event.Op&fsnotify.Create == fsnotify.Create:
					eventType = "created"
				case event.Op&fsnotify.Write == fsnotify.Write:
					eventType = "modified"
				case event.Op&fsnotify.Remove == fsnotify.Remove:
					eventType = "deleted"
				case event.Op&fsnotify.Rename == fsnotify.Rename:
					eventType = "renamed"
				default:
					continue
				}

				log.Printf("📝 File %s: %s", eventType, filepath.Base(event.Name))

				fw.eventChan <- WatchEvent{
					Type:      eventType,
					Path:      event.Name,
					Timestamp: time.Now(),
				}

				// Debounce per ripubblicazione
				if timer, exists := debounceMap[event.Name]; exists {
					timer.Stop()
				}

				debounceMap[event.Name] = time.AfterFunc(fw.debounceTime, func() {
					if (eventType == "modified" || eventType == "created") && fw.publishOpts != nil {
						fw.republish(event.Name)
					}
					delete(debounceMap, event.Name)
				})

			case err, ok := <-fw.watcher.Errors:
				if !ok {
					return
				}
				log.Printf("❌ Errore watcher: %v", err)

			case <-fw.stopChan:
				log.Println("🛑 File watcher fermato")
				return
			}
		}
	}()

	return nil
}

// Stop ferma il file watcher
func (fw *FileWatcher) Stop() error {
	if !fw.isRunning {
		return fmt.Errorf("watcher non in esecuzione")
	}

	fw.isRunning = false
	fw.stopChan <- true

	if err := fw.watcher.Close(); err != nil {
		return fmt.Errorf("errore chiusura watcher: %w", err)
	}

	close(fw.eventChan)
	return nil
}

// Events restituisce il canale degli eventi
func (fw *FileWatcher) Events() <-chan WatchEvent {
	return fw.eventChan
}

// IsRunning verifica se il watcher è attivo
func (fw *FileWatcher) IsRunning() bool {
	return fw.isRunning
}

// AddPath aggiunge un path da monitorare
func (fw *FileWatcher) AddPath(path string) error {
	if err := fw.watcher.Add(path); err != nil {
		return fmt.Errorf("errore aggiunta path: %w", err)
	}
	fw.watchedPaths = append(fw.watchedPaths, path)
	log.Printf("👀 Watching: %s", path)
	return nil
}

// RemovePath rimuove un path dal monitoraggio
func (fw *FileWatcher) RemovePath(path string) error {
	if err := fw.watcher.Remove(path); err != nil {
		return fmt.Errorf("errore rimozione path: %w", err)
	}

	// Rimuovi dalla lista
	for i, p := range fw.watchedPaths {
		if p == path {
			fw.watchedPaths = append(fw.watchedPaths[:i], fw.watchedPaths[i+1:]...)
			break
		}
	}

	log.Printf("👁️  Stopped watching: %s", path)
	return nil
}

// republish ripubblica il file quando viene modificato
func (fw *FileWatcher) republish(filePath string) {
	// Valida il file prima di pubblicare
	tweeParser := parser.NewTweeParser(filePath)
	validation := tweeParser.Validate()

	if !validation.Valid {
		log.Printf("❌ Validazione fallita per %s:", filepath.Base(filePath))
		for _, issue := range validation.Errors {
			log.Printf("   - %s", issue.Message)
		}

		// Invia evento di errore ma non bloccare il watcher
		fw.eventChan <- WatchEvent{
			Type:      "validation_error",
			Path:      filePath,
			Timestamp: time.Now(),
		}
		return
	}

	// Mostra warning se presenti
	for _, warn := range validation.Warnings {
		log.Printf("⚠️  %s", warn.Message)
	}

	start := time.Now()
	output, err := fw.publishFile(filePath)
	elapsed := time.Since(start)

	if err != nil {
		log.Printf("❌ Pubblicazione fallita (%v): %v", elapsed, err)
		fw.eventChan <- WatchEvent{
			Type:      "publish_error",
			Path:      filePath,
			Message:   err.Error(),
			Timestamp: time.Now(),
		}
		return
	}

	log.Printf("✅ Pubblicato con successo in %v: %s", elapsed, output)
	fw.eventChan <- WatchEvent{
		Type:      "publish_success",
		Path:      filePath,
		Message:   output,
		Timestamp: time.Now(),
	}
}

// publishFile parsa, lega al formato e salva l'HTML.
// Ritorna il nome del file prodotto.
func (fw *FileWatcher) publishFile(filePath string) (string, error) {
	s, err := parser.NewTweeParser(filePath).Parse()
	if err != nil {
		return "", err
	}

	formatName := fw.publishOpts.Format
	if formatName == "" {
		formatName = s.Format
	}
	format := formats.Lookup(formatName, fw.publishOpts.FormatVersion)
	if format == nil {
		return "", fmt.Errorf("formato %q non registrato", formatName)
	}

	html, err := publisher.PublishStoryWithFormat(fw.app, s, format, &publisher.PublishOptions{
		StartOptional: fw.publishOpts.StartOptional,
	})
	if err != nil {
		return "", err
	}

	base := strings.TrimSuffix(filepath.Base(filePath), ".twee") + ".html"
	save := publisher.DirSaver(fw.publishOpts.OutputDir)
	if err := save([]byte(html), base); err != nil {
		return "", err
	}

	return base, nil
}
