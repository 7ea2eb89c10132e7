package api

import (
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"twine-publisher/formats"
	"twine-publisher/parser"
	"twine-publisher/publisher"
	"twine-publisher/story"
	"twine-publisher/watcher"
)

// Server rappresenta il server API
type Server struct {
	router       *gin.Engine
	app          story.AppInfo
	outputDir    string
	watcher      *watcher.FileWatcher
	watcherMutex sync.Mutex
	wsClients    map[*websocket.Conn]bool
	wsUpgrader   websocket.Upgrader
	port         int
}

// ServerConfig configurazione del server
type ServerConfig struct {
	Port       int
	App        story.AppInfo
	OutputDir  string
	EnableCORS bool
	Debug      bool
}

// NewServer crea un nuovo server API
func NewServer(config ServerConfig) *Server {
	// Imposta modalità Gin
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// CORS se abilitato
	if config.EnableCORS {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"*"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
		}))
	}

	server := &Server{
		router:    router,
		app:       config.App,
		outputDir: config.OutputDir,
		wsClients: make(map[*websocket.Conn]bool),
		wsUpgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins in development
			},
		},
		port: config.Port,
	}

	// Setup routes
	server.setupRoutes()

	return server
}

// setupRoutes configura tutti gli endpoint
func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		// Health check
		api.GET("/health", s.healthCheck)

		// Story endpoints
		api.POST("/story/parse", s.parseStory)
		api.POST("/story/validate", s.validateStory)
		api.POST("/story/publish", s.publishStory)
		api.POST("/story/archive", s.publishArchive)

		// Passage endpoints
		api.GET("/story/:file/passages", s.getPassages)
		api.GET("/story/:file/passage/:name", s.getPassage)

		// Watcher endpoints
		api.POST("/watch/start", s.startWatcher)
		api.POST("/watch/stop", s.stopWatcher)
		api.GET("/watch/status", s.getWatcherStatus)

		// Utils endpoints
		api.GET("/formats", s.getFormats)
		api.GET("/version", s.getVersion)
	}

	// WebSocket endpoint
	s.router.GET("/ws", s.handleWebSocket)
}

// Start avvia il server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("🚀 Server avviato su http://localhost%s", addr)
	log.Printf("📚 API disponibile su http://localhost%s/api", addr)
	log.Printf("🔌 WebSocket su ws://localhost%s/ws", addr)
	return s.router.Run(addr)
}

// ============================================
// Handlers
// ============================================

// healthCheck verifica lo stato del server
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": s.app.Version,
	})
}

// ValidateStoryRequest richiesta di validazione
type ValidateStoryRequest struct {
	FilePath string `json:"file_path" binding:"required"`
}

// validateStory valida un file .twee
func (s *Server) validateStory(c *gin.Context) {
	var req ValidateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Valida il file
	tweeParser := parser.NewTweeParser(req.FilePath)
	validation := tweeParser.Validate()

	c.JSON(http.StatusOK, validation)
}

// ParseStoryRequest richiesta di parsing
type ParseStoryRequest struct {
	FilePath string `json:"file_path" binding:"required"`
}

// parseStory parsa un file .twee
func (s *Server) parseStory(c *gin.Context) {
	var req ParseStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Parse il file
	tweeParser := parser.NewTweeParser(req.FilePath)
	st, err := tweeParser.Parse()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Arricchisci i passaggi con info extra
	enrichedPassages := make([]gin.H, 0, len(st.Passages))
	for _, p := range st.Passages {
		enrichedPassages = append(enrichedPassages, gin.H{
			"name":    p.Name,
			"tags":    p.Tags,
			"text":    p.Text,
			"links":   parser.ParseLinks(p.Text),
			"preview": parser.StripLinks(p.Text),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"story": gin.H{
			"name":           st.Name,
			"ifid":           st.IFID,
			"format":         st.Format,
			"format_version": st.FormatVersion,
			"passages":       enrichedPassages,
			"count":          len(st.Passages),
		},
	})
}

// PublishStoryRequest richiesta di pubblicazione
type PublishStoryRequest struct {
	FilePath      string `json:"file_path" binding:"required"`
	Format        string `json:"format"`
	FormatVersion string `json:"format_version"`
	Output        string `json:"output"`
	Start         string `json:"start"`          // Nome del passaggio iniziale (override)
	StartOptional bool   `json:"start_optional"` // Modalità lenient
}

// publishStory pubblica un file .twee in HTML giocabile
func (s *Server) publishStory(c *gin.Context) {
	var req PublishStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	st, err := parser.NewTweeParser(req.FilePath).Parse()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Default: il formato dichiarato dalla storia
	formatName := req.Format
	if formatName == "" {
		formatName = st.Format
	}
	format := formats.Lookup(formatName, req.FormatVersion)
	if format == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   fmt.Sprintf("formato %q non registrato", formatName),
			"formats": formats.Available(),
		})
		return
	}

	opts := &publisher.PublishOptions{StartOptional: req.StartOptional}
	if req.Start != "" {
		p := st.PassageByName(req.Start)
		if p == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("passaggio %q non trovato", req.Start)})
			return
		}
		opts.StartID = p.ID
	}

	html, err := publisher.PublishStoryWithFormat(s.app, st, format, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	output := req.Output
	if output == "" {
		output = strings.TrimSuffix(filepath.Base(req.FilePath), ".twee") + ".html"
	}

	if err := publisher.DirSaver(s.outputDir)([]byte(html), output); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"output_file": filepath.Join(s.outputDir, output),
	})
}

// PublishArchiveRequest richiesta di archivio
type PublishArchiveRequest struct {
	FilePaths []string `json:"file_paths" binding:"required"`
}

// publishArchive pubblica un archivio con tutte le storie indicate
func (s *Server) publishArchive(c *gin.Context) {
	var req PublishArchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stories := make([]*story.Story, 0, len(req.FilePaths))
	for _, path := range req.FilePaths {
		st, err := parser.NewTweeParser(path).Parse()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": fmt.Sprintf("%s: %v", path, err),
			})
			return
		}
		stories = append(stories, st)
	}

	filename, err := publisher.PublishArchiveToFile(s.app, stories, publisher.DirSaver(s.outputDir))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"output_file": filepath.Join(s.outputDir, filename),
		"count":       len(stories),
	})
}

// getPassages ottiene tutti i passaggi
func (s *Server) getPassages(c *gin.Context) {
	filePath := c.Param("file")

	st, err := parser.NewTweeParser(filePath).Parse()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"passages": st.Passages,
	})
}

// getPassage ottiene un singolo passaggio
func (s *Server) getPassage(c *gin.Context) {
	filePath := c.Param("file")
	passageName := c.Param("name")

	st, err := parser.NewTweeParser(filePath).Parse()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	p := st.PassageByName(passageName)
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Passaggio non trovato"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"passage": gin.H{
			"name":    p.Name,
			"tags":    p.Tags,
			"text":    p.Text,
			"links":   parser.ParseLinks(p.Text),
			"preview": parser.StripLinks(p.Text),
		},
	})
}

// StartWatcherRequest richiesta avvio watcher
type StartWatcherRequest struct {
	Paths         []string `json:"paths" binding:"required"`
	Format        string   `json:"format"`
	FormatVersion string   `json:"format_version"`
	AutoPublish   bool     `json:"auto_publish"`
}

// startWatcher avvia il file watcher
func (s *Server) startWatcher(c *gin.Context) {
	s.watcherMutex.Lock()
	defer s.watcherMutex.Unlock()

	if s.watcher != nil && s.watcher.IsRunning() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Watcher già in esecuzione"})
		return
	}

	var req StartWatcherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Crea watcher
	config := watcher.WatcherConfig{
		Paths: req.Paths,
		App:   s.app,
		PublishOpts: &watcher.PublishConfig{
			Format:        req.Format,
			FormatVersion: req.FormatVersion,
			OutputDir:     s.outputDir,
		},
		AutoPublish: req.AutoPublish,
	}

	fw, err := watcher.NewFileWatcher(config)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := fw.Start(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.watcher = fw

	// Invia eventi ai client WebSocket
	go s.broadcastWatcherEvents()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Watcher avviato",
		"paths":   req.Paths,
	})
}

// stopWatcher ferma il file watcher
func (s *Server) stopWatcher(c *gin.Context) {
	s.watcherMutex.Lock()
	defer s.watcherMutex.Unlock()

	if s.watcher == nil || !s.watcher.IsRunning() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Watcher non in esecuzione"})
		return
	}

	if err := s.watcher.Stop(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.watcher = nil

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Watcher fermato",
	})
}

// getWatcherStatus ottiene lo stato del watcher
func (s *Server) getWatcherStatus(c *gin.Context) {
	s.watcherMutex.Lock()
	defer s.watcherMutex.Unlock()

	isRunning := s.watcher != nil && s.watcher.IsRunning()

	c.JSON(http.StatusOK, gin.H{
		"running": isRunning,
	})
}

// getFormats ottiene i formati registrati
func (s *Server) getFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"formats": formats.Available(),
	})
}

// getVersion ottiene la versione dell'applicazione
func (s *Server) getVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"name":    s.app.Name,
		"version": s.app.Version,
	})
}

// ============================================
// WebSocket
// ============================================

// handleWebSocket gestisce connessioni WebSocket
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Errore upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	s.wsClients[conn] = true
	log.Printf("🔌 Client WebSocket connesso (totale: %d)", len(s.wsClients))

	// Mantieni la connessione aperta
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			delete(s.wsClients, conn)
			log.Printf("🔌 Client WebSocket disconnesso (totale: %d)", len(s.wsClients))
			break
		}
	}
}

// broadcastWatcherEvents invia eventi del watcher ai client WebSocket
func (s *Server) broadcastWatcherEvents() {
	if s.watcher == nil {
		return
	}

	for event := range s.watcher.Events() {
		message := gin.H{
			"type":      event.Type,
			"path":      filepath.Base(event.Path),
			"full_path": event.Path,
			"message":   event.Message,
			"timestamp": event.Timestamp,
		}

		// Broadcast a tutti i client connessi
		for client := range s.wsClients {
			if err := client.WriteJSON(message); err != nil {
				log.Printf("Errore invio WebSocket: %v", err)
				client.Close()
				delete(s.wsClients, client)
			}
		}
	}
}
