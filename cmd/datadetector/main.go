// Package main is the datadetector CLI entry point.
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
	"syscall"
	"time"

	"github.com/hyperjump/datadetector/internal/cli"
	"github.com/hyperjump/datadetector/internal/config"
	"github.com/hyperjump/datadetector/internal/detector"
	"github.com/hyperjump/datadetector/internal/fileid"
	"github.com/hyperjump/datadetector/internal/models"
	"github.com/hyperjump/datadetector/internal/scanner"
	"github.com/hyperjump/datadetector/internal/server"
	"github.com/hyperjump/datadetector/internal/storage"
	"github.com/hyperjump/datadetector/internal/watcher"
	"github.com/hyperjump/datadetector/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used.
// Returns the config and the path that was actually loaded (for saving, etc.).
func loadConfig(path string) (*config.Config, string, error) {
	if path == config.DefaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
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
	command := os.Args[1]
	switch command {
	case "detect":
		runDetect()
	case "features":
		runFeatures()
	case "scan":
		runScan()
	case "server":
		runServer()
	case "status":
		runStatus()
	case "watch":
		runWatch()
	case "version", "--version", "-v":
		fmt.Printf("datadetector version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// argsReorder moves any flags (and their values) that appear after the inputs to the
// front of the slice so that flag.Parse() sees them. Go's flag package stops at the
// first non-flag argument, so "datadetector detect book.xlsx -output json" would
// otherwise leave -output unparsed. A lone "-" names standard input, not a flag.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 1 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// truncateRowsOrDefault returns flagValue unless it is negative, in which case the
// configured default applies.
func truncateRowsOrDefault(flagValue int, cfg *config.Config) int {
	if flagValue >= 0 {
		return flagValue
	}
	return cfg.Detect.TruncateRows
}

// setup loads config and builds the logger shared by every subcommand.
func setup(configPath string, debugFlag bool) (*config.Config, string, *zap.Logger) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || debugFlag
	cfg.Debug = debugMode
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return cfg, resolved, logger
}

func parseFormat(s string) cli.OutputFormat {
	format, err := cli.ParseOutputFormat(s)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return format
}

func printDetectUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: datadetector %s [flags] <file>... \n\n", fs.Name())
	fmt.Fprintf(fs.Output(), "Use - to read standard input; --content-type is then required.\n\n")
	fs.PrintDefaults()
}

func runDetect() {
	fs := flag.NewFlagSet("detect", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultConfigPath, "config file path")
	contentType := fs.String("content-type", "", "input format: xls, xlsx or csv (default: from file extension)")
	truncateRows := fs.Int("truncate-rows", -1, "read at most this many rows per sheet; 0 reads all (default from config)")
	outputFormat := fs.String("output", "text", "output format: text, compact, or json")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Usage = func() { printDetectUsage(fs) }
	_ = fs.Parse(argsReorder(os.Args[2:]))
	if fs.NArg() < 1 {
		printDetectUsage(fs)
		os.Exit(1)
	}
	format := parseFormat(*outputFormat)

	cfg, _, logger := setup(*configPath, *debug)
	defer logger.Sync()

	det, err := newDetector(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load model: %v\n", err)
		os.Exit(1)
	}
	defer det.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	in := inputs{
		contentType:  *contentType,
		truncateRows: truncateRowsOrDefault(*truncateRows, cfg),
		stdin:        os.Stdin,
		errOut:       os.Stderr,
	}
	results, failed := in.detect(ctx, det, fs.Args())
	if err := cli.WriteFileResults(os.Stdout, results, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func runFeatures() {
	fs := flag.NewFlagSet("features", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultConfigPath, "config file path")
	contentType := fs.String("content-type", "", "input format: xls, xlsx or csv (default: from file extension)")
	truncateRows := fs.Int("truncate-rows", -1, "read at most this many rows per sheet; 0 reads all (default from config)")
	outputFormat := fs.String("output", "text", "output format: text, compact, or json")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Usage = func() { printDetectUsage(fs) }
	_ = fs.Parse(argsReorder(os.Args[2:]))
	if fs.NArg() < 1 {
		printDetectUsage(fs)
		os.Exit(1)
	}
	format := parseFormat(*outputFormat)

	cfg, _, logger := setup(*configPath, *debug)
	defer logger.Sync()

	// Features need no model.
	det := detector.New(nil, detector.WithLogger(logger))
	in := inputs{
		contentType:  *contentType,
		truncateRows: truncateRowsOrDefault(*truncateRows, cfg),
		stdin:        os.Stdin,
		errOut:       os.Stderr,
	}
	results, failed := in.features(context.Background(), det, fs.Args())
	for _, r := range results {
		if len(results) > 1 && format == cli.OutputText {
			fmt.Printf("==> %s <==\n", r.Path)
		}
		if err := cli.WriteFeatures(os.Stdout, r.Sheets, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// inputs runs detection or feature extraction over command-line arguments.
type inputs struct {
	contentType  string
	truncateRows int
	stdin        io.Reader
	errOut       io.Writer
}

// detect runs detection on each argument. "-" reads stdin. Arguments that fail are
// reported on errOut and counted.
func (in inputs) detect(ctx context.Context, det *detector.Detector, args []string) ([]*models.FileResult, int) {
	return in.each(args, func(arg string, opts []detector.DetectOption) ([]models.SheetResult, error) {
		if arg == "-" {
			return det.DetectSheetsReader(ctx, in.stdin, opts...)
		}
		return det.DetectSheetsPath(ctx, arg, opts...)
	})
}

// features extracts feature vectors for each argument without scoring.
func (in inputs) features(ctx context.Context, det *detector.Detector, args []string) ([]*models.FileResult, int) {
	return in.each(args, func(arg string, opts []detector.DetectOption) ([]models.SheetResult, error) {
		if arg == "-" {
			return det.FeaturesReader(ctx, in.stdin, opts...)
		}
		return det.FeaturesPath(ctx, arg, opts...)
	})
}

func (in inputs) each(args []string, run func(string, []detector.DetectOption) ([]models.SheetResult, error)) ([]*models.FileResult, int) {
	results := make([]*models.FileResult, 0, len(args))
	failed := 0
	for _, arg := range args {
		result, err := in.describe(arg)
		if err == nil {
			result.Sheets, err = run(arg, []detector.DetectOption{
				detector.WithContentType(in.contentType),
				detector.WithTruncateRows(in.truncateRows),
			})
		}
		if err != nil {
			fmt.Fprintf(in.errOut, "%s: %v\n", arg, err)
			failed++
			continue
		}
		result.DetectedAt = time.Now().UTC()
		results = append(results, result)
	}
	return results, failed
}

// describe fills the file facts of a result before detection.
func (in inputs) describe(arg string) (*models.FileResult, error) {
	ct, err := detector.ResolveContentType(in.contentType, pathOrEmpty(arg))
	if err != nil {
		return nil, err
	}
	result := &models.FileResult{ContentType: string(ct), TruncateRows: in.truncateRows}
	if arg == "-" {
		result.ID = fileid.UploadID()
		return result, nil
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	result.ID = fileid.FileID(abs)
	result.Path = abs
	result.Size = info.Size()
	result.ModTime = info.ModTime()
	return result, nil
}

func pathOrEmpty(arg string) string {
	if arg == "-" {
		return ""
	}
	return arg
}

func runScan() {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text, compact, or json")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(argsReorder(os.Args[2:]))
	if fs.NArg() < 1 {
		fmt.Println("Usage: datadetector scan [flags] <file-or-directory>")
		os.Exit(1)
	}
	format := parseFormat(*outputFormat)
	path := fs.Arg(0)

	cfg, _, logger := setup(*configPath, *debug)
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to stat path: %v\n", err)
		os.Exit(1)
	}
	if info.IsDir() {
		sum, err := components.Scanner.ScanDirectory(ctx, path, cfg.Watch.Extensions)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Scanning directory failed: %v\n", err)
			os.Exit(1)
		}
		root, _ := filepath.Abs(path)
		_ = cli.WriteSummary(os.Stdout, cli.Summary{
			Root:      root,
			Detected:  sum.Detected,
			Unchanged: sum.Unchanged,
			Failed:    sum.Failed,
		}, format)
		return
	}
	// Single file: no extension filter
	result, _, err := components.Scanner.ScanFile(ctx, path, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scanning failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteFileResults(os.Stdout, []*models.FileResult{result}, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (directory changes, file detection, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, logger := setup(*configPath, *debug)
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", cfg.Debug),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	watchSvc := newWatcher(cfg, components, logger)
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := watchSvc.Start(watchCtx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	watchSvc.SyncExistingFiles()

	srv := server.NewServer(
		components.Detector,
		components.Storage,
		cfg,
		logger,
		watchSvc,
		resolvedConfigPath,
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
	watchSvc.Stop()
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// newWatcher detects files dropped into the configured directories and forgets the
// results of files removed from them.
func newWatcher(cfg *config.Config, c *Components, logger *zap.Logger) *watcher.Watcher {
	exts := cfg.Watch.Extensions
	var opts []watcher.Option
	if cfg.Debug {
		opts = append(opts, watcher.WithLogger(logger))
	}
	return watcher.New(
		cfg.Watch.Directories,
		exts,
		cfg.Watch.RecursiveOrDefault(),
		func(path string) {
			if _, _, err := c.Scanner.ScanFile(context.Background(), path, exts); err != nil {
				logger.Warn("watch detect file failed", zap.String("path", path), zap.Error(err))
			}
		},
		func(path string) {
			if err := c.Scanner.Delete(context.Background(), path); err != nil {
				logger.Warn("watch delete by path failed", zap.String("path", path), zap.Error(err))
			}
		},
		opts...,
	)
}

// statusConfigResponse holds configuration info returned by status.
type statusConfigResponse struct {
	ModelRuntime string  `json:"model_runtime"`
	Threshold    float64 `json:"threshold"`
	TruncateRows int     `json:"truncate_rows"`
	DatabasePath string  `json:"database_path,omitempty"`
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Files          int64                 `json:"files"`
	Sheets         int64                 `json:"sheets"`
	DataSheets     int64                 `json:"data_sheets"`
	DiskUsageBytes *int64                `json:"disk_usage_bytes,omitempty"`
	Config         *statusConfigResponse `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status *statusResponse
	var err error
	if *serverURL != "" {
		status, err = statusViaHTTP(*serverURL)
	} else {
		cfg, _, logger := setup(*configPath, false)
		defer logger.Sync()
		status, err = statusFromStorage(context.Background(), cfg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	if err := writeStatus(os.Stdout, status, *outputFormat); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func statusFromStorage(ctx context.Context, cfg *config.Config) (*statusResponse, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	files, err := store.CountFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("count files: %w", err)
	}
	sheets, err := store.CountSheets(ctx)
	if err != nil {
		return nil, fmt.Errorf("count sheets: %w", err)
	}
	dataSheets, err := store.CountDataSheets(ctx)
	if err != nil {
		return nil, fmt.Errorf("count data sheets: %w", err)
	}
	status := &statusResponse{
		Files:      files,
		Sheets:     sheets,
		DataSheets: dataSheets,
		Config: &statusConfigResponse{
			ModelRuntime: cfg.Model.Runtime,
			Threshold:    cfg.Detect.Threshold,
			TruncateRows: cfg.Detect.TruncateRows,
			DatabasePath: cfg.Storage.DatabasePath,
		},
	}
	if size, err := storage.DatabaseSizeBytes(cfg.Storage.DatabasePath); err == nil {
		status.DiskUsageBytes = &size
	}
	return status, nil
}

func writeStatus(w io.Writer, status *statusResponse, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	case "text":
		fmt.Fprintf(w, "files:              %d   # files with stored results\n", status.Files)
		fmt.Fprintf(w, "sheets:             %d   # sheets across those files\n", status.Sheets)
		fmt.Fprintf(w, "data_sheets:        %d   # sheets judged to hold data\n", status.DataSheets)
		if status.DiskUsageBytes != nil {
			fmt.Fprintf(w, "disk_usage_bytes:   %d   # results database on disk\n", *status.DiskUsageBytes)
		}
		if status.Config != nil {
			fmt.Fprintln(w)
			fmt.Fprintln(w, "# configuration")
			fmt.Fprintf(w, "model_runtime:      %s\n", status.Config.ModelRuntime)
			fmt.Fprintf(w, "threshold:          %g\n", status.Config.Threshold)
			fmt.Fprintf(w, "truncate_rows:      %d\n", status.Config.TruncateRows)
			if status.Config.DatabasePath != "" {
				fmt.Fprintf(w, "database_path:      %s\n", status.Config.DatabasePath)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q; use text or json", format)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

func runWatch() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: datadetector watch <add|remove|list> [path]")
		fmt.Println("  datadetector watch add <path>     Add directory to watch")
		fmt.Println("  datadetector watch remove <path>  Remove directory from watch")
		fmt.Println("  datadetector watch list           List watched directories")
		os.Exit(1)
	}
	sub := os.Args[2]
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	noSync := fs.Bool("no-sync", false, "do not detect files already in an added directory")
	_ = fs.Parse(argsReorder(os.Args[3:]))
	switch sub {
	case "add":
		if fs.NArg() < 1 {
			fmt.Println("Usage: datadetector watch add <path>")
			os.Exit(1)
		}
		path, _ := filepath.Abs(fs.Arg(0))
		body, _ := json.Marshal(map[string]interface{}{"path": path, "sync": !*noSync})
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
			fmt.Println("Usage: datadetector watch remove <path>")
			os.Exit(1)
		}
		path, _ := filepath.Abs(fs.Arg(0))
		req, _ := http.NewRequest(http.MethodDelete, *serverURL+"/api/v1/watch/directories?path="+url.QueryEscape(path), nil)
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
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Printf("List failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
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

// Components holds initialized services.
type Components struct {
	Storage  storage.Storage
	Detector *detector.Detector
	Scanner  *scanner.Scanner
}

func (c *Components) Close() {
	if c.Detector != nil {
		_ = c.Detector.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func newDetector(cfg *config.Config, logger *zap.Logger) (*detector.Detector, error) {
	return detector.NewFromArtifacts(cfg.Model,
		detector.WithLogger(logger),
		detector.WithThreshold(cfg.Detect.Threshold),
		detector.WithCache(cfg.Detect.CacheSize),
	)
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	det, err := newDetector(cfg, logger)
	if err != nil {
		return nil, err
	}
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		_ = det.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	logger.Info("model loaded",
		zap.String("runtime", cfg.Model.Runtime),
		zap.String("classifier", cfg.Model.ClassifierPath))

	var scanOpts []scanner.Option
	if cfg.Debug {
		scanOpts = append(scanOpts, scanner.WithLogger(logger))
	}
	scanOpts = append(scanOpts, scanner.WithTruncateRows(cfg.Detect.TruncateRows))

	return &Components{
		Storage:  store,
		Detector: det,
		Scanner:  scanner.New(det, store, scanOpts...),
	}, nil
}

func printUsage() {
	fmt.Println(`datadetector - Tell data sheets from everything else in spreadsheets

Usage:
  datadetector detect [flags] <file>...     Print P(data) for every sheet
  datadetector features [flags] <file>...   Print the feature vector of every sheet
  datadetector scan [flags] <path>          Detect a file or directory and store the results
  datadetector server [flags]               Start the HTTP server
  datadetector status [flags]               Show stored result counts
  datadetector watch <add|remove|list>      Manage watched directories
  datadetector version                      Show version
  datadetector help                         Show this help

Detect and Features Flags:
  --config string          Config file path (default: /usr/local/etc/datadetector/config.yaml)
  --content-type string    xls, xlsx or csv; required when reading - (stdin)
  --truncate-rows int      Read at most this many rows per sheet (default from config)
  --output string          Output format: text, compact, or json (default: text)

Scan Flags:
  --config string    Config file path
  --output string    Output format: text, compact, or json (default: text)

Server Flags:
  --config string    Config file path
  --debug            Enable debug logging

Status Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --output string    Output format: text or json (default: text)

Watch Flags:
  --server string    Server URL (default: http://localhost:8080)
  --no-sync          Do not detect files already in an added directory

Examples:
  datadetector detect report.xlsx
  datadetector detect --output json a.xls b.csv
  cat export.csv | datadetector detect --content-type csv -
  datadetector features --truncate-rows 100 report.xlsx
  datadetector scan ~/Documents/sheets
  datadetector status --output json
  datadetector watch add /path/to/sheets`)
}
