// Command puzzle-search starts the puzzle search server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags control host/port, config and session directories, search budget,
// logging, version output, and optional ngrok tunneling for external access.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/puzzle-search/api"
	"github.com/wricardo/puzzle-search/game/config"
	"github.com/wricardo/puzzle-search/game/service"
	"github.com/wricardo/puzzle-search/game/session"
	"github.com/wricardo/puzzle-search/logging"
	"github.com/wricardo/puzzle-search/transport/mcp"
	"github.com/wricardo/puzzle-search/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Puzzle Search Server"
)

// Configuration flags control how the server starts and which services are enabled.
var (
	port          = flag.Int("port", 8080, "HTTP server port")
	host          = flag.String("host", "localhost", "HTTP server host")
	configDir     = flag.String("config-dir", envDefault("CONFIG_DIR", "configs"), "Directory containing puzzle configurations")
	sessionsDir   = flag.String("sessions-dir", envDefault("SESSIONS_DIR", "sessions"), "Directory for persisted sessions")
	maxExpansions = flag.Int("max-expansions", 0, "Default search expansion budget (0 uses the config or built-in default)")
	debug         = flag.Bool("debug", false, "Enable debug logging")
	logFormat     = flag.String("log-format", "console", "Log format (console or json)")
	version       = flag.Bool("version", false, "Show version information")
	ngrokEnabled  = flag.Bool("ngrok", false, "Enable ngrok tunnel")
	ngrokAuth     = flag.String("ngrok-auth", "", "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	ngrokDomain   = flag.String("ngrok-domain", "", "Custom ngrok domain (optional)")
)

// envDefault returns the environment variable when set, otherwise fallback.
func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Available modes:\n")
		fmt.Fprintf(os.Stderr, "  server, http     Run HTTP server with API, WebSocket, and MCP endpoint (default)\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp        Run MCP stdio server with internal HTTP server\n")
		fmt.Fprintf(os.Stderr, "  mcp-stdio, mcp   Aliases for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                          # Run HTTP server on default port 8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -port 9090               # Run HTTP server on port 9090\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -max-expansions 500000  # Lower the default search budget\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s stdio-mcp                # Run MCP stdio server\n", os.Args[0])
	}
}

func fatal(msg string, err error) {
	logging.Error().Add(logging.ErrorField(err)).Msg(msg)
	os.Exit(1)
}

// main parses flags, initializes services, and starts the selected mode.
func main() {
	envErr := godotenv.Load()

	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	logConfig := logging.DefaultConfig()
	logConfig.Format = *logFormat
	if *debug {
		logConfig.Level = "debug"
	}
	logging.Init(logConfig)

	if envErr == nil {
		logging.Debug().Msg("loaded environment variables from .env file")
	} else if !os.IsNotExist(envErr) {
		logging.Warn().Add(logging.ErrorField(envErr)).Msg("error loading .env file")
	}

	mode := "server"
	if args := flag.Args(); len(args) > 0 {
		mode = args[0]
	}

	logging.Info().Add(
		logging.Str("version", Version),
		logging.Str("mode", mode),
	).Msg("starting " + AppName)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	gameService, sessionManager, err := initializeServices(ctx)
	if err != nil {
		fatal("failed to initialize services", err)
	}
	defer func() {
		if err := sessionManager.SaveAllSessions(); err != nil {
			logging.Warn().Add(logging.ErrorField(err)).Msg("failed to save sessions on shutdown")
		}
	}()

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		runStdioMCPWithInternalServer(ctx, gameService)

	case "server", "http":
		runHTTPServer(ctx, gameService)

	default:
		fatal("unknown mode", fmt.Errorf("mode %q: use 'server' (default) or 'stdio-mcp'", mode))
	}
}

// mcpHandler serves MCP JSON-RPC messages over plain HTTP POST.
func mcpHandler(mcpServer *server.MCPServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpServer.HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// newRouter combines the REST API, WebSocket endpoint, and /mcp proxy.
func newRouter(apiServer http.Handler, mcpClient *mcp.Client) *http.ServeMux {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient.GetMCPServer()))
	return mainRouter
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled (via flag or environment), it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, gameService service.GameService) {
	hub := websocket.NewHub()
	go hub.Run(ctx)

	apiServer := api.NewServer(gameService, hub, Version)

	addr := fmt.Sprintf("%s:%d", *host, *port)
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))
	mainRouter := newRouter(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:        addr,
		Handler:     mainRouter,
		ReadTimeout: 15 * time.Second,
		// Long solves on large boards stay within the MCP client timeout.
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		logging.Info().Add(
			logging.Component("server"),
			logging.Str("addr", addr),
			logging.Str("api", fmt.Sprintf("http://%s/api", addr)),
			logging.Str("websocket", fmt.Sprintf("ws://%s/ws?session=<session_id>", addr)),
			logging.Str("mcp", fmt.Sprintf("http://%s/mcp", addr)),
		).Msg("HTTP server listening")

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fatal("HTTP server failed", err)
		}
	}()

	ngrokShouldRun := *ngrokEnabled
	if env := os.Getenv("NGROK_ENABLED"); env == "true" || env == "1" {
		ngrokShouldRun = true
	}
	if ngrokShouldRun {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, mainRouter)
		}()
	}

	<-ctx.Done()
	logging.Info().Add(logging.Component("server")).Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Warn().Add(logging.ErrorField(err)).Msg("HTTP server shutdown error")
	}

	wg.Wait()
	logging.Info().Add(logging.Component("server")).Msg("server stopped")
}

// runNgrokTunnel serves handler through an ngrok endpoint until ctx is done.
func runNgrokTunnel(ctx context.Context, handler http.Handler) {
	authToken := *ngrokAuth
	if authToken == "" {
		authToken = envDefault("NGROK_AUTHTOKEN", os.Getenv("NGROK_AUTH_TOKEN"))
	}
	if authToken == "" {
		logging.Warn().Add(logging.Component("ngrok")).
			Msg("ngrok enabled but no auth token provided (use -ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	domain := *ngrokDomain
	if domain == "" {
		domain = os.Getenv("NGROK_DOMAIN")
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		logging.Error().Add(logging.Component("ngrok"), logging.ErrorField(err)).Msg("failed to start ngrok tunnel")
		return
	}
	defer func() {
		if err := tun.Close(); err != nil {
			logging.Warn().Add(logging.Component("ngrok"), logging.ErrorField(err)).Msg("failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	logging.Info().Add(
		logging.Component("ngrok"),
		logging.Str("url", ngrokURL),
		logging.Str("websocket", ngrokURL+"/ws?session=<session_id>"),
		logging.Str("mcp", ngrokURL+"/mcp"),
	).Msg("ngrok tunnel established")

	go func() {
		<-ctx.Done()
		tun.Close()
	}()

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		logging.Warn().Add(logging.Component("ngrok"), logging.ErrorField(err)).Msg("ngrok server error")
	}
	logging.Info().Add(logging.Component("ngrok")).Msg("ngrok tunnel closed")
}

// initializeServices wires config and session managers into the game service
// and starts the background session maintenance routines.
func initializeServices(ctx context.Context) (service.GameService, *session.Manager, error) {
	configManager, err := config.NewManager(*configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, err := session.NewFilePersistence(*sessionsDir, configManager)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(persistence)
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		logging.Warn().Add(logging.ErrorField(err)).Msg("failed to load persisted sessions")
	}

	var opts []service.Option
	if *maxExpansions > 0 {
		opts = append(opts, service.WithMaxExpansions(*maxExpansions))
	}
	gameService := service.NewGameService(sessionManager, configManager, opts...)

	go sessionCleanupRoutine(ctx, sessionManager)
	go filesystemSyncRoutine(ctx, sessionManager, persistence)

	return gameService, sessionManager, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within a day.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(24 * time.Hour); removed > 0 {
				logging.Info().Add(logging.Count("removed", removed)).Msg("cleaned up expired sessions")
			}
		}
	}
}

// filesystemSyncRoutine drops in-memory sessions whose files were deleted.
func filesystemSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := pruneOrphans(manager, persistence); pruned > 0 {
				logging.Info().Add(logging.Count("pruned", pruned)).Msg("filesystem sync pruned orphaned sessions")
			}
		}
	}
}

func pruneOrphans(manager *session.Manager, persistence session.SessionPersistence) int {
	pruned := 0
	for _, sess := range manager.List() {
		if persistence.Exists(sess.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			logging.Debug().Add(logging.SessionID(sess.ID)).Msg("pruned session from memory (file deleted)")
		}
	}
	return pruned
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It reuses an API already listening on -port; otherwise it starts an
// internal HTTP API on a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, gameService service.GameService) {
	externalURL := fmt.Sprintf("http://localhost:%d", *port)
	baseURL := externalURL

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/api/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		logging.Info().Add(logging.Str("url", externalURL)).Msg("using external API server for MCP")
	} else {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			fatal("failed to get available port", err)
		}

		hub := websocket.NewHub()
		go hub.Run(ctx)

		httpServer := &http.Server{Handler: api.NewServer(gameService, hub, Version)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				logging.Error().Add(logging.ErrorField(err)).Msg("internal HTTP server error")
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + listener.Addr().String()
		logging.Info().Add(logging.Str("url", baseURL)).Msg("started internal API server for MCP")
	}

	mcpClient := mcp.NewClient(baseURL)

	logging.Info().Add(logging.Component("mcp")).Msg("MCP stdio server ready")
	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		fatal("MCP stdio server error", err)
	}
}
