// Command regard captures baseline screenshots and flags visual regressions.
//
// Usage:
//
//	regard capture -name home -page                  # store a full-page baseline
//	regard capture -name cta -element -class btn     # store an element baseline
//	regard compare -name home -page                  # compare against the baseline
//	regard list                                      # list stored baselines
//	regard -serve :8087                              # baseline gallery server
//	regard -mcp                                      # MCP server on stdio
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/regard"
	"github.com/hazyhaar/regard/target"
)

const version = "1.0.0"

// Exit codes. A similarity below the threshold is not a tool failure; CI
// distinguishes the two.
const (
	exitOK         = 0
	exitError      = 1
	exitMismatch   = 2
	exitNoBaseline = 3
)

func main() {
	configPath := flag.String("config", "", "path to regard.yaml config file")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	serveAddr := flag.String("serve", "", "run the baseline gallery server on this address (e.g. :8087)")
	mcpMode := flag.Bool("mcp", false, "run as an MCP server on stdio")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Println("regard " + version)
		os.Exit(exitOK)
	}

	logger := newLogger(*logLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, logger, *configPath, *serveAddr, *mcpMode, flag.Args()))
}

func run(ctx context.Context, logger *slog.Logger, configPath, serveAddr string, mcpMode bool, args []string) int {
	cfg, err := loadConfig(configPath)
	if err != nil {
		logger.Error("regard: config", "error", err)
		return exitError
	}

	eng, err := regard.New(cfg, logger)
	if err != nil {
		logger.Error("regard: init", "error", err)
		return exitError
	}
	defer eng.Close()

	switch {
	case serveAddr != "":
		return runServe(ctx, logger, cfg, eng, serveAddr)
	case mcpMode:
		return runMCP(ctx, logger, eng)
	}

	if len(args) == 0 {
		usage()
		return exitError
	}

	switch args[0] {
	case "capture":
		return runCapture(ctx, logger, eng, args[1:])
	case "compare":
		return runCompare(ctx, logger, eng, args[1:])
	case "list":
		return runList(ctx, logger, eng)
	default:
		fmt.Fprintf(os.Stderr, "regard: unknown command %q\n", args[0])
		usage()
		return exitError
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: regard [flags] <capture|compare|list>
       regard -serve <addr> | regard -mcp

commands:
  capture   capture and store a baseline screenshot
  compare   capture and compare against the stored baseline
  list      list stored baselines

flags:`)
	flag.PrintDefaults()
}

func loadConfig(path string) (*regard.Config, error) {
	if path == "" {
		return regard.DefaultConfig(), nil
	}
	return regard.LoadConfigFile(path)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// parseShot parses the flags shared by capture and compare into a Request.
func parseShot(cmd string, args []string) (regard.Request, error) {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	url := fs.String("url", "", "page URL (defaults to the configured target URL)")
	name := fs.String("name", "", "logical baseline name (required)")
	page := fs.Bool("page", false, "target the full page")
	element := fs.Bool("element", false, "target a single element (requires -class or -selector)")
	class := fs.String("class", "", "class name of the element")
	selector := fs.String("selector", "", "CSS selector of the element")
	if err := fs.Parse(args); err != nil {
		return regard.Request{}, err
	}

	if *name == "" {
		return regard.Request{}, errors.New("-name is required")
	}
	if *page && *element {
		return regard.Request{}, errors.New("-page and -element are mutually exclusive")
	}
	if !*page && !*element {
		return regard.Request{}, errors.New("you must provide either -page or -element")
	}

	req := regard.Request{URL: *url, Name: *name}
	if *page {
		if *class != "" || *selector != "" {
			return regard.Request{}, errors.New("-class and -selector only apply to -element")
		}
		req.Target = target.Page()
		return req, nil
	}

	switch {
	case *selector != "" && *class != "":
		return regard.Request{}, errors.New("provide either -class or -selector, not both")
	case *selector != "":
		req.Target = target.BySelector(*selector)
	case *class != "":
		req.Target = target.ByClass(*class)
	default:
		return regard.Request{}, errors.New("you must provide either -class or -selector for -element")
	}
	return req, nil
}

func runCapture(ctx context.Context, logger *slog.Logger, eng *regard.Engine, args []string) int {
	req, err := parseShot("capture", args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "regard capture:", err)
		return exitError
	}

	out, err := eng.Capture(ctx, req)
	if err != nil {
		logger.Error("regard: capture", "name", req.Name, "error", err)
		fmt.Fprintln(os.Stderr, renderError(err))
		return exitError
	}

	fmt.Println(renderCapture(out))
	return exitOK
}

func runCompare(ctx context.Context, logger *slog.Logger, eng *regard.Engine, args []string) int {
	req, err := parseShot("compare", args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "regard compare:", err)
		return exitError
	}

	out, err := eng.Compare(ctx, req)
	if err != nil {
		if errors.Is(err, regard.ErrBaselineNotFound) {
			fmt.Fprintf(os.Stderr, "regard: no baseline named %q; run 'regard capture' first\n", req.Name)
			return exitNoBaseline
		}
		logger.Error("regard: compare", "name", req.Name, "error", err)
		fmt.Fprintln(os.Stderr, renderError(err))
		return exitError
	}

	fmt.Println(renderCompare(out))
	if !out.Matched {
		return exitMismatch
	}
	return exitOK
}

func runList(ctx context.Context, logger *slog.Logger, eng *regard.Engine) int {
	entries, err := eng.Store().List(ctx)
	if err != nil {
		logger.Error("regard: list", "error", err)
		return exitError
	}
	fmt.Print(renderList(entries))
	return exitOK
}

func runMCP(ctx context.Context, logger *slog.Logger, eng *regard.Engine) int {
	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "regard",
		Version: version,
	}, nil)
	eng.RegisterMCP(srv)

	logger.Info("MCP server starting", "transport", "stdio")
	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		logger.Error("MCP server", "error", err)
		return exitError
	}
	return exitOK
}
