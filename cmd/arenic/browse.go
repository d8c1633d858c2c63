package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/matthewharwood/arenic-replay/internal/platform/tui"
	"github.com/matthewharwood/arenic-replay/internal/storage"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse stored timelines interactively",
	Long: `Open an interactive table of every timeline in the store.

Controls:
  Up/Down - Move selection
  D       - Delete the selected timeline
  Ctrl+R  - Refresh
  Q/Esc   - Quit`,
	Run: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) {
	cfg, err := loadSessionConfig()
	if err != nil {
		fail("%v", err)
	}
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		fail("%v", err)
	}
	defer store.Close()

	width, height := 80, 24
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	if err := tui.RunBrowser(store, width, height); err != nil {
		fail("%v", err)
	}
}
