// ABOUTME: Entry point for the termchat terminal chat client
// ABOUTME: Loads configuration and theme, sets up file logging, and starts the Bubbletea application
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/harper/termchat/internal/config"
	chaterrors "github.com/harper/termchat/internal/errors"
	"github.com/harper/termchat/internal/logger"
	"github.com/harper/termchat/internal/tui"
	"github.com/harper/termchat/internal/tui/client"
	"github.com/harper/termchat/internal/tui/theme"
	"github.com/harper/termchat/internal/xdg"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default "+config.DefaultPath()+")")
	verbose := flag.Bool("verbose", false, "write debug messages to the log file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("termchat %s (built %s)\n", version, buildTime)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fail("failed to load config: %v", err)
	}

	// A missing or malformed theme is fatal; there is no fallback palette.
	th, err := theme.Load(cfg.UI.ThemeFile)
	if err != nil {
		fail("%s", chaterrors.UserMessage(err))
	}

	logFile, err := setupLogging(cfg.Logging, *verbose)
	if err != nil {
		fail("failed to set up logging: %v", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}
	logger.Info("termchat %s starting (transport=%s)", version, cfg.Server.Transport)

	p := tea.NewProgram(tui.NewModel(cfg, th, newDeps(cfg)), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("program exited: %v", err)
		fail("Error: %v", err)
	}
}

// setupLogging sends log output to the configured file. The terminal belongs
// to the UI, so disabled logging discards everything.
func setupLogging(cfg config.LoggingConfig, verbose bool) (io.Closer, error) {
	logger.SetLevel(logger.ParseLevel(cfg.Level))
	if verbose {
		logger.SetVerbose(true)
	}

	if !cfg.Enabled || cfg.File == "" {
		logger.SetOutput(io.Discard)
		return nil, nil
	}

	if err := xdg.EnsureParent("logging.file", cfg.File); err != nil {
		return nil, err
	}
	f, err := tea.LogToFile(cfg.File, "termchat")
	if err != nil {
		return nil, err
	}
	logger.SetOutput(f)
	return f, nil
}

func newDeps(cfg *config.Config) tui.Deps {
	timeout := cfg.Server.HandshakeTimeout()
	if cfg.Server.Transport == config.TransportTCP {
		return tui.Deps{
			Authenticator: client.NewTCPAuthenticator(cfg.Server.TCPAddr),
			Dialer:        client.TCPDialer{Addr: cfg.Server.TCPAddr, Timeout: timeout},
		}
	}
	return tui.Deps{
		Authenticator: client.NewHTTPAuthenticator(cfg.Server.APIURL),
		Dialer:        client.WebSocketDialer{URL: cfg.Server.WSURL, HandshakeTimeout: timeout},
	}
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
