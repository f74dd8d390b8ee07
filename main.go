package main

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"themeplane/api"
	"themeplane/cache"
	"themeplane/config"
	"themeplane/fetch"
	"themeplane/registry"
	"themeplane/syncer"
	"themeplane/themes"
)

//go:embed web/dist
var staticFS embed.FS

var (
	dataDir    string
	listen     string
	listenPort int
	themesDir  string
	appVersion = "0.2.1"
)

var rootCmd = &cobra.Command{
	Use:   "themeplane",
	Short: "themeplane – desktop theme browser and installer",
	Long:  "Themeplane is a local web service for browsing, previewing, installing, and applying desktop themes.",
	Run:   run,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long:  "Manage themeplane configuration files.",
}

var configGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a default configuration file",
	Long:  "Generate a default themeplane.config file in the specified data directory (or current directory if not specified).",
	Run:   runConfigGenerate,
}

func init() {
	wd, _ := os.Getwd()
	rootCmd.Version = appVersion
	rootCmd.Flags().StringVar(&dataDir, "data-dir", wd, "Data directory (default: current directory)")
	rootCmd.Flags().StringVar(&listen, "listen", "127.0.0.1", "IP address to listen on")
	rootCmd.Flags().IntVar(&listenPort, "listen-port", 0, "Port to listen on (default: first free port from 8420)")
	rootCmd.Flags().StringVar(&themesDir, "themes-dir", "", "Themes directory (default: ~/.config/omarchy/themes)")

	configGenerateCmd.Flags().StringVar(&dataDir, "data-dir", wd, "Data directory where config file will be created (default: current directory)")
	configCmd.AddCommand(configGenerateCmd)
	rootCmd.AddCommand(configCmd)
}

func run(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(dataDir)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// CLI flags win over config file values only when explicitly set.
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = dataDir
	} else if cfg.DataDir != "" && cfg.DataDir != "." {
		dataDir = cfg.DataDir
	}
	if cmd.Flags().Changed("themes-dir") {
		cfg.ThemesDir = themesDir
	}

	dataDirAbs, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		log.Fatalf("resolve data dir: %v", err)
	}
	cfg.DataDir = dataDirAbs

	store := cache.New(cfg.CacheDir)
	if err := store.EnsureDir(); err != nil {
		log.Fatalf("ensure cache dir: %v", err)
	}

	svc := themes.New(cfg.ThemesDir, cfg.CurrentLink, cfg.SetTool, cfg.InstallTool, store)
	fetcher := fetch.New(store, cfg.GitHubToken)
	sync := syncer.New(cfg.ThemesDir, store, fetcher, registry.Official)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	apiServer := api.NewServer(svc, store, sync)
	sync.SetOnEvent(apiServer.BroadcastSyncEvent)

	mux := http.NewServeMux()
	apiServer.Register(mux)
	registerIndex(mux)

	addr := resolveListenAddr(cmd, cfg)
	if err := writePortFile(cfg.DataDir, addr); err != nil {
		log.Printf("write port file: %v", err)
	}

	// Warm the installed-preview cache in the background once the server
	// has had a moment to come up.
	go func() {
		time.Sleep(1 * time.Second)
		if _, err := sync.CacheInstalled(); err != nil && err != syncer.ErrAlreadyRunning {
			log.Printf("startup cache: %v", err)
		}
	}()

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	log.Printf("listening on http://%s", addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}

func resolveListenAddr(cmd *cobra.Command, cfg config.Config) string {
	flagged := cmd.Flags().Changed("listen") || cmd.Flags().Changed("listen-port")
	if cfg.ListenAddr != "" && !flagged {
		return cfg.ListenAddr
	}

	port := listenPort
	if port == 0 {
		p, err := findFreePort(listen, 8420, 100)
		if err != nil {
			log.Fatalf("find free port: %v", err)
		}
		port = p
	}
	return net.JoinHostPort(listen, strconv.Itoa(port))
}

// findFreePort probes sequential ports until one binds.
func findFreePort(host string, start, attempts int) (int, error) {
	for port := start; port < start+attempts; port++ {
		l, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
		if err != nil {
			continue
		}
		l.Close()
		return port, nil
	}
	return 0, fmt.Errorf("no free port found in range %d-%d", start, start+attempts)
}

// writePortFile records the bound port so other local processes can find
// the service.
func writePortFile(dir, addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, ".port"), []byte(port), 0o644)
}

func registerIndex(mux *http.ServeMux) {
	indexHTML, err := staticFS.ReadFile("web/dist/index.html")
	if err != nil {
		log.Fatalf("read index.html: %v", err)
	}
	indexTemplate := template.Must(template.New("index").Parse(string(indexHTML)))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = indexTemplate.Execute(w, map[string]any{
			"Title":      "themeplane",
			"AppVersion": appVersion,
			"Year":       time.Now().Year(),
		})
	})
}

func runConfigGenerate(cmd *cobra.Command, args []string) {
	dataDirAbs, err := filepath.Abs(dataDir)
	if err != nil {
		log.Fatalf("resolve data dir: %v", err)
	}

	cfg := config.Default()
	cfg.DataDir = dataDirAbs

	cfgPath := filepath.Join(dataDirAbs, "themeplane.config")
	if _, err := os.Stat(cfgPath); err == nil {
		log.Fatalf("config file already exists: %s", cfgPath)
	}

	if err := config.Save(cfg); err != nil {
		log.Fatalf("failed to save config: %v", err)
	}

	fmt.Printf("Generated default config file: %s\n", cfgPath)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
