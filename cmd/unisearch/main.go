// Package main is the unisearch CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/agentcommand/unisearch/internal/cli"
	"github.com/agentcommand/unisearch/internal/config"
	"github.com/agentcommand/unisearch/internal/embedding"
	"github.com/agentcommand/unisearch/internal/extract"
	"github.com/agentcommand/unisearch/internal/fulltext"
	"github.com/agentcommand/unisearch/internal/ingest"
	"github.com/agentcommand/unisearch/internal/models"
	"github.com/agentcommand/unisearch/internal/pipeline"
	"github.com/agentcommand/unisearch/internal/retrieve"
	"github.com/agentcommand/unisearch/internal/server"
	"github.com/agentcommand/unisearch/internal/storage"
	"github.com/agentcommand/unisearch/internal/vector"
	"github.com/agentcommand/unisearch/internal/watcher"
	"github.com/agentcommand/unisearch/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/unisearch/config.yaml"

// loadConfig prefers config.yaml in the working directory when the caller
// did not pass an explicit path, so development runs pick up the project
// config. Returns the config and the path actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, err := os.Getwd(); err == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, err := os.Stat(fallback); err == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "selftest":
		runSelfTest()
	case "index":
		runIndex()
	case "delete":
		runDelete()
	case "memory":
		runMemory()
	case "watch":
		runWatch()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("unisearch version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Info("config loaded",
		zap.String("config_path", resolvedPath), zap.Bool("debug", debugMode))

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	idx := components.Indexer
	exts := cfg.Watch.Extensions
	watchSvc := watcher.New(
		cfg.Watch.Directories,
		exts,
		cfg.Watch.RecursiveOrDefault(),
		func(path string) {
			if err := idx.IndexFile(context.Background(), path, exts); err != nil {
				logger.Warn("watch ingest failed", zap.String("path", path), zap.Error(err))
			}
		},
		func(path string) {
			abs, _ := filepath.Abs(path)
			if err := idx.DeleteDocument(context.Background(), ingest.PathDocID(abs)); err != nil {
				logger.Warn("watch delete failed", zap.String("path", path), zap.Error(err))
			}
		},
		watcher.WithLogger(logger),
	)
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := watchSvc.Start(watchCtx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	watchSvc.IngestExisting()

	srv := server.NewServer(
		components.Pipeline,
		components.Indexer,
		components.Storage,
		cfg,
		logger,
		server.WithWatch(watchSvc, resolvedPath),
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if cfg.Storage.VectorIndexPath != "" {
		if err := components.Vectors.Save(cfg.Storage.VectorIndexPath); err != nil {
			logger.Warn("vector index save failed",
				zap.String("path", cfg.Storage.VectorIndexPath), zap.Error(err))
		}
	}
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func parseFormat(name string) cli.OutputFormat {
	switch name {
	case "json":
		return cli.OutputJSON
	case "text", "":
		return cli.OutputText
	default:
		fmt.Printf("Unknown output format %q; use text or json\n", name)
		os.Exit(1)
		return cli.OutputText
	}
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", `server URL (empty = direct storage access)`)
	mode := fs.String("mode", "hybrid", "search mode: hybrid, rag, or semantic")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: unisearch search [flags] <query>")
		os.Exit(1)
	}
	queryStr := strings.TrimSpace(strings.Join(fs.Args(), " "))
	format := parseFormat(*outputFormat)
	searchMode := models.SearchMode(*mode)

	if *serverURL != "" {
		// The HTTP API avoids Bleve/SQLite lock conflicts with a running server.
		resp, err := searchViaHTTP(*serverURL, queryStr, searchMode)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteSearchResponse(os.Stdout, resp, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	components, cleanup := mustInitialize(*configPath)
	defer cleanup()
	resp, err := components.Pipeline.Execute(context.Background(), queryStr, searchMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResponse(os.Stdout, resp, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func searchViaHTTP(serverURL, query string, mode models.SearchMode) (*models.SemanticSearchResponse, error) {
	body, err := json.Marshal(map[string]string{"query": query, "mode": string(mode)})
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/search", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.SemanticSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runSelfTest() {
	fs := flag.NewFlagSet("selftest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = run locally)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format := parseFormat(*outputFormat)

	var report *pipeline.SelfTestReport
	if *serverURL != "" {
		body, _ := json.Marshal(map[string][]string{"queries": fs.Args()})
		resp, err := http.Post(*serverURL+"/api/v1/selftest", "application/json", bytes.NewReader(body))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Self-test failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Fprintf(os.Stderr, "Server returned %d: %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		report = &pipeline.SelfTestReport{}
		if err := json.NewDecoder(resp.Body).Decode(report); err != nil {
			fmt.Fprintf(os.Stderr, "Decode failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		queries := fs.Args()
		if len(queries) == 0 {
			queries = cfg.Search.SelfTestQueries
		}
		if len(queries) == 0 {
			fmt.Fprintln(os.Stderr, "No self-test queries configured; pass them as arguments")
			os.Exit(1)
		}
		components, cleanup := mustInitialize(*configPath)
		defer cleanup()
		report = components.Pipeline.RunSelfTest(context.Background(), queries)
	}

	if err := cli.WriteSelfTestReport(os.Stdout, report, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
	if !report.AllPassed() {
		os.Exit(1)
	}
}

func runIndex() {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: unisearch index [flags] <file-or-directory>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	components, cleanup := mustInitialize(*configPath)
	defer cleanup()

	ctx := context.Background()
	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("Failed to stat path: %v\n", err)
		os.Exit(1)
	}
	if info.IsDir() {
		n, err := components.Indexer.IndexDirectory(ctx, path, cfg.Watch.Extensions)
		if err != nil {
			fmt.Printf("Indexing directory failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Indexed %d file(s) from %s\n", n, path)
		return
	}
	if err := components.Indexer.IndexFile(ctx, path, nil); err != nil {
		fmt.Printf("Indexing failed: %v\n", err)
		os.Exit(1)
	}
	abs, _ := filepath.Abs(path)
	fmt.Printf("Document indexed: %s\n", ingest.PathDocID(abs))
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: unisearch delete [flags] <document-id>")
		os.Exit(1)
	}
	components, cleanup := mustInitialize(*configPath)
	defer cleanup()
	if err := components.Indexer.DeleteDocument(context.Background(), fs.Arg(0)); err != nil {
		fmt.Printf("Deletion failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Document deleted: %s\n", fs.Arg(0))
}

func runMemory() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: unisearch memory <add|list|remove> [flags] [args]")
		os.Exit(1)
	}
	sub := os.Args[2]
	fs := flag.NewFlagSet("memory", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	agent := fs.String("agent", "", "agent name")
	tags := fs.String("tags", "", "comma-separated tags")
	_ = fs.Parse(os.Args[3:])

	switch sub {
	case "add":
		if fs.NArg() < 1 {
			fmt.Println("Usage: unisearch memory add [flags] <summary>")
			os.Exit(1)
		}
		summary := strings.Join(fs.Args(), " ")
		payload := map[string]interface{}{"agent": *agent, "summary": summary}
		if *tags != "" {
			payload["tags"] = strings.Split(*tags, ",")
		}
		body, _ := json.Marshal(payload)
		resp, err := http.Post(*serverURL+"/api/v1/memories", "application/json", bytes.NewReader(body))
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			b, _ := io.ReadAll(resp.Body)
			fmt.Printf("Add failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		var mem models.MemoryRecord
		_ = json.NewDecoder(resp.Body).Decode(&mem)
		fmt.Printf("Memory stored: %s\n", mem.ID)
	case "list":
		u := *serverURL + "/api/v1/memories"
		if *agent != "" {
			u += "?agent=" + url.QueryEscape(*agent)
		}
		resp, err := http.Get(u)
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		var out struct {
			Memories []*models.MemoryRecord `json:"memories"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			fmt.Printf("Parse failed: %v\n", err)
			os.Exit(1)
		}
		for _, m := range out.Memories {
			fmt.Printf("%s  [%s]  %s\n", m.ID, m.Agent, m.Summary)
		}
	case "remove":
		if fs.NArg() < 1 {
			fmt.Println("Usage: unisearch memory remove <id>")
			os.Exit(1)
		}
		req, _ := http.NewRequest(http.MethodDelete, *serverURL+"/api/v1/memories/"+url.PathEscape(fs.Arg(0)), nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Printf("Remove failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		fmt.Printf("Memory removed: %s\n", fs.Arg(0))
	default:
		fmt.Printf("Unknown memory subcommand: %s\n", sub)
		os.Exit(1)
	}
}

func runWatch() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: unisearch watch <add|remove|list> [path]")
		os.Exit(1)
	}
	sub := os.Args[2]
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[3:])

	switch sub {
	case "add":
		if fs.NArg() < 1 {
			fmt.Println("Usage: unisearch watch add <path>")
			os.Exit(1)
		}
		path, _ := filepath.Abs(fs.Arg(0))
		body, _ := json.Marshal(map[string]interface{}{"path": path, "sync": true})
		resp, err := http.Post(*serverURL+"/api/v1/watch/directories", "application/json", bytes.NewReader(body))
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			b, _ := io.ReadAll(resp.Body)
			fmt.Printf("Add failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		fmt.Printf("Added: %s\n", path)
	case "remove":
		if fs.NArg() < 1 {
			fmt.Println("Usage: unisearch watch remove <path>")
			os.Exit(1)
		}
		path, _ := filepath.Abs(fs.Arg(0))
		req, _ := http.NewRequest(http.MethodDelete,
			*serverURL+"/api/v1/watch/directories?path="+url.QueryEscape(path), nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Printf("Remove failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		fmt.Printf("Removed: %s\n", path)
	case "list":
		resp, err := http.Get(*serverURL + "/api/v1/watch/directories")
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		var out struct {
			Directories []string `json:"directories"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			fmt.Printf("Parse failed: %v\n", err)
			os.Exit(1)
		}
		for _, d := range out.Directories {
			fmt.Println(d)
		}
	default:
		fmt.Printf("Unknown watch subcommand: %s\n", sub)
		os.Exit(1)
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	resp, err := http.Get(*serverURL + "/api/v1/status")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Server returned %d: %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	var status map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		fmt.Fprintf(os.Stderr, "Decode failed: %v\n", err)
		os.Exit(1)
	}

	if *outputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(status)
		return
	}
	for _, key := range []string{"documents", "chunks", "memories"} {
		if v, ok := status[key]; ok {
			fmt.Printf("%-12s %v\n", key+":", v)
		}
	}
	if dirs, ok := status["watch_directories"].([]interface{}); ok {
		fmt.Println("watched:")
		for _, d := range dirs {
			fmt.Printf("  %v\n", d)
		}
	}
}

// Components holds the initialized service graph.
type Components struct {
	Storage  storage.Storage
	Embedder embedding.Embedder
	Vectors  *vector.MemoryIndex
	FullText *fulltext.Index
	Pipeline *pipeline.Pipeline
	Indexer  *ingest.Indexer
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Vectors != nil {
		_ = c.Vectors.Close()
	}
	if c.FullText != nil {
		_ = c.FullText.Close()
	}
}

func mustInitialize(configPath string) (*Components, func()) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	return components, func() {
		components.Close()
		_ = logger.Sync()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("initialize storage: %w", err)
	}

	embedder := embedding.New(cfg.Embedding, logger)

	vectors, err := vector.NewMemoryIndex(cfg.Embedding.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("initialize vector index: %w", err)
	}
	if cfg.Storage.VectorIndexPath != "" {
		if err := vectors.Load(cfg.Storage.VectorIndexPath); err != nil {
			logger.Warn("vector index load skipped",
				zap.String("path", cfg.Storage.VectorIndexPath), zap.Error(err))
		}
	}

	fullText, err := fulltext.NewIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		return nil, fmt.Errorf("initialize full-text index: %w", err)
	}

	topK := cfg.Search.TopKCandidates
	memHalfLife := time.Duration(cfg.Search.MemoryHalfLifeHours * float64(time.Hour))
	sources := []retrieve.Source{
		retrieve.NewFullTextSource(fullText, store, topK),
		retrieve.NewRelationshipSource(fullText, store, 5, topK),
		retrieve.NewMemorySource(store, memHalfLife, topK),
		retrieve.NewEntitySource(store, topK),
		retrieve.NewSemanticSource(embedder, vectors, store, topK),
	}
	retriever := retrieve.NewRetriever(sources, retrieve.WithLogger(logger))
	p := pipeline.New(retriever, cfg.Search, pipeline.WithLogger(logger))

	idx := ingest.NewIndexer(store, embedder, vectors, fullText, cfg.Search,
		extract.NewExtractor(), ingest.WithLogger(logger))

	return &Components{
		Storage:  store,
		Embedder: embedder,
		Vectors:  vectors,
		FullText: fullText,
		Pipeline: p,
		Indexer:  idx,
	}, nil
}

func printUsage() {
	fmt.Println(`unisearch - unified multi-source search for agent workspaces

Usage:
  unisearch server [flags]             Start the HTTP server
  unisearch search [flags] <query>     Run one search
  unisearch selftest [flags] [query…]  Run the canned self-test batch
  unisearch index [flags] <path>       Ingest a file or directory
  unisearch delete [flags] <id>        Delete a document
  unisearch memory <add|list|remove>   Manage agent memories
  unisearch watch <add|remove|list>    Manage watched directories
  unisearch status [flags]             Show index status
  unisearch version                    Show version
  unisearch help                       Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/unisearch/config.yaml)
  --debug            Enable debug logging

Search Flags:
  --config string    Config file path (direct storage mode)
  --server string    Server URL (default: http://localhost:8080; empty = direct storage)
  --mode string      Search mode: hybrid, rag, or semantic (default: hybrid)
  --output string    Output format: text or json

Examples:
  unisearch server
  unisearch search "fix the git polling error"
  unisearch search --mode rag refresh loop
  unisearch selftest
  unisearch index ./docs
  unisearch memory add --agent builder --tags docker "stats API paginates at 100"
  unisearch watch add ~/notes
  unisearch status --output json`)
}
