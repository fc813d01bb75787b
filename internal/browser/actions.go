package browser

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mlowther/vidgrab/models"
	"github.com/mlowther/vidgrab/pkg/devtools"
)

// BrowserAction reports on the remote debugging endpoint and optionally
// launches a browser with debugging enabled. It never kills a running
// browser: when the port is silent but Chrome may be open, the operator is
// told to restart it themselves.
func BrowserAction(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("port") {
		cfg.DevToolsPort = c.Int("port")
	}

	endpoint := devtools.NewEndpoint(cfg.DevToolsPort)

	if endpoint.Alive(c.Context) {
		tabs, err := endpoint.ListTabs(c.Context)
		if err != nil {
			return err
		}
		fmt.Printf("Debugging endpoint up on port %d, %d tabs\n", cfg.DevToolsPort, len(tabs))
		if tab, ok := devtools.FindTab(tabs, cfg.Site); ok {
			fmt.Printf("Site tab: %s (%s)\n", tab.Title, tab.URL)
		} else {
			fmt.Printf("No tab matches %s. Open %s in the debugged browser.\n", cfg.Site, cfg.LibraryURL)
		}
		return nil
	}

	if !c.Bool("launch") {
		fmt.Printf("No debugging endpoint on port %d\n", cfg.DevToolsPort)
		fmt.Println("")
		fmt.Println("If a browser is already running it was started without debugging.")
		fmt.Println("Quit it yourself and relaunch with: vidgrab browser --launch")
		fmt.Println("(this tool will not kill your browser)")
		os.Exit(1)
	}

	binary, err := devtools.FindBrowser(c.String("binary"))
	if err != nil {
		return err
	}
	logger.Info("launching browser", "binary", binary, "port", cfg.DevToolsPort)

	if err := devtools.Launch(binary, cfg.DevToolsPort, c.String("user-data-dir"), cfg.LibraryURL); err != nil {
		return err
	}
	if err := endpoint.Wait(c.Context, 30*time.Second); err != nil {
		fmt.Fprintln(os.Stderr, "Browser launched but the debugging port never came up.")
		fmt.Fprintln(os.Stderr, "A running instance without debugging usually swallows the new window.")
		fmt.Fprintln(os.Stderr, "Quit the browser completely and retry, or pass --user-data-dir for a separate instance.")
		os.Exit(1)
	}

	fmt.Printf("Browser ready, debugging on port %d\n", cfg.DevToolsPort)
	fmt.Printf("Log in at %s, then run: vidgrab scan --tab\n", cfg.LibraryURL)
	return nil
}
