package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matthewharwood/arenic-replay/internal/sim"
	"github.com/matthewharwood/arenic-replay/internal/storage"
)

var flagExportOut string

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Write a stored timeline to a portable file",
	Long: `Export a timeline in the versioned binary format. The file embeds
the fingerprint, so the receiving side detects any corruption on import.

Examples:
  arenic export 3
  arenic export 3 --out ./patrol.arnt`,
	Args: cobra.ExactArgs(1),
	Run:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&flagExportOut, "out", "", "Output path (default: timeline-<id>.arnt)")
}

func runExport(cmd *cobra.Command, args []string) {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fail("invalid timeline ID %q", args[0])
	}

	cfg, err := loadSessionConfig()
	if err != nil {
		fail("%v", err)
	}
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		fail("%v", err)
	}
	defer store.Close()

	timeline, err := store.LoadTimeline(id)
	if err != nil {
		fail("%v", err)
	}

	data, err := sim.Encode(timeline)
	if err != nil {
		fail("%v", err)
	}

	out := flagExportOut
	if out == "" {
		out = fmt.Sprintf("timeline-%d.arnt", id)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		fail("%v", err)
	}

	fmt.Printf("Exported timeline #%d to %s (%d bytes, fingerprint %016x)\n",
		id, out, len(data), timeline.Fingerprint())
}
