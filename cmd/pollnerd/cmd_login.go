package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pollnerd/internal/surface"
)

// loginCmd opens a visible browser for a manual login and saves the
// session state for the monitor to replay.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to PollEverywhere and save the session",
	Long: `Opens a browser window on the PollEverywhere login page. Complete the
login there, then press ENTER in this terminal; the session cookies and
web storage are saved so the monitor can reuse them without credentials.`,
	RunE: runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Login is interactive, a headless window would be useless.
	browserCfg := cfg.Browser
	browserCfg.Headless = false

	mgr := surface.NewManager(browserCfg, logger)
	if err := mgr.Start(cmd.Context()); err != nil {
		return err
	}
	defer func() {
		if err := mgr.Shutdown(); err != nil {
			logger.Warn("browser shutdown", zap.Error(err))
		}
	}()

	loginURL := strings.TrimRight(browserCfg.BaseURL, "/") + "/login"
	page, err := mgr.OpenPage(cmd.Context(), loginURL)
	if err != nil {
		return err
	}

	fmt.Println("A browser window has opened on the PollEverywhere login page.")
	fmt.Println("Log in there, then press ENTER here to save the session.")
	fmt.Print(">>> ")
	if _, err := bufio.NewReader(os.Stdin).ReadString('\n'); err != nil {
		return fmt.Errorf("waiting for confirmation: %w", err)
	}

	state, err := surface.CaptureState(page)
	if err != nil {
		return err
	}
	if err := state.Save(cfg.Browser.StatePath); err != nil {
		return err
	}

	fmt.Printf("Session saved to %s\n", cfg.Browser.StatePath)
	return nil
}
