package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"twine-publisher/api"
	"twine-publisher/formats"
	"twine-publisher/i18n"
	"twine-publisher/parser"
	"twine-publisher/publisher"
	"twine-publisher/story"
)

const version = "0.1.0"

func main() {
	port := flag.Int("port", 8080, "Porta del server API")
	formatsDir := flag.String("formats", "./storyformats", "Directory degli story format (format.js)")
	outputDir := flag.String("output", "./output", "Directory di output")
	formatName := flag.String("format", "", "Story format da usare (default: quello dichiarato dalla storia)")
	formatVersion := flag.String("format-version", "", "Versione dello story format")
	startName := flag.String("start", "", "Passaggio iniziale (override, per nome)")
	locale := flag.String("locale", "it", "Locale per i nomi file (it, en)")
	debug := flag.Bool("debug", false, "Modalità debug")
	flag.Parse()

	fmt.Println("Twine Publisher Backend v" + version)
	fmt.Println("================================")

	i18n.SetLocale(*locale)
	app := story.AppInfo{Name: "twine-publisher", Version: version}

	// Carica gli story format disponibili
	if loaded, err := formats.LoadFormatDir(*formatsDir); err != nil {
		log.Printf("⚠️  Formati non caricati da %s: %v", *formatsDir, err)
	} else {
		for _, f := range loaded {
			log.Printf("📦 Formato registrato: %s-%s", f.Name, f.Version)
		}
	}

	args := flag.Args()
	command := "serve"
	if len(args) > 0 {
		command = args[0]
	}

	switch command {
	case "serve":
		runServer(app, *port, *outputDir, *debug)

	case "publish":
		if len(args) < 2 {
			log.Fatal("uso: twine-publisher publish <file.twee>")
		}
		runPublish(app, args[1], *formatName, *formatVersion, *startName, *outputDir)

	case "archive":
		if len(args) < 2 {
			log.Fatal("uso: twine-publisher archive <file.twee> [altri.twee...]")
		}
		runArchive(app, args[1:], *outputDir)

	default:
		log.Fatalf("comando sconosciuto: %q (serve, publish, archive)", command)
	}
}

// runServer avvia il server API
func runServer(app story.AppInfo, port int, outputDir string, debug bool) {
	server := api.NewServer(api.ServerConfig{
		Port:       port,
		App:        app,
		OutputDir:  outputDir,
		EnableCORS: true,
		Debug:      debug,
	})

	if err := server.Start(); err != nil {
		log.Fatalf("❌ Errore server: %v", err)
	}
}

// runPublish pubblica una singola storia in HTML giocabile
func runPublish(app story.AppInfo, filePath, formatName, formatVersion, startName, outputDir string) {
	s, err := parser.NewTweeParser(filePath).Parse()
	if err != nil {
		log.Fatalf("❌ Errore parsing: %v", err)
	}

	if formatName == "" {
		formatName = s.Format
	}
	format := formats.Lookup(formatName, formatVersion)
	if format == nil {
		log.Fatalf("❌ Formato %q non registrato. Disponibili: %v", formatName, formats.Available())
	}

	opts := &publisher.PublishOptions{}
	if startName != "" {
		p := s.PassageByName(startName)
		if p == nil {
			log.Fatalf("❌ Passaggio %q non trovato", startName)
		}
		opts.StartID = p.ID
	}

	html, err := publisher.PublishStoryWithFormat(app, s, format, opts)
	if err != nil {
		log.Fatalf("❌ Pubblicazione fallita: %v", err)
	}

	output := strings.TrimSuffix(filepath.Base(filePath), ".twee") + ".html"
	if err := publisher.DirSaver(outputDir)([]byte(html), output); err != nil {
		log.Fatalf("❌ %v", err)
	}

	fmt.Printf("✅ Pubblicato: %s\n", filepath.Join(outputDir, output))
}

// runArchive pubblica un archivio con tutte le storie indicate
func runArchive(app story.AppInfo, filePaths []string, outputDir string) {
	stories := make([]*story.Story, 0, len(filePaths))
	for _, path := range filePaths {
		s, err := parser.NewTweeParser(path).Parse()
		if err != nil {
			log.Fatalf("❌ Errore parsing %s: %v", path, err)
		}
		stories = append(stories, s)
	}

	filename, err := publisher.PublishArchiveToFile(app, stories, publisher.DirSaver(outputDir))
	if err != nil {
		log.Fatalf("❌ Archivio fallito: %v", err)
	}

	fmt.Printf("✅ Archivio: %s (%d storie)\n", filepath.Join(outputDir, filename), len(stories))
}
