package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matthewharwood/arenic-replay/internal/script"
	"github.com/matthewharwood/arenic-replay/internal/storage"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored timelines and input scripts",
	Long:  `Shows every timeline in the store and every registered input script.`,
	Run:   runList,
}

func runList(cmd *cobra.Command, args []string) {
	cfg, err := loadSessionConfig()
	if err != nil {
		fail("%v", err)
	}

	fmt.Println("Input scripts:")
	for _, s := range script.List() {
		fmt.Printf("  %-10s %s\n", s.ID, s.Title)
	}
	fmt.Println()

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		fail("%v", err)
	}
	defer store.Close()

	entries, err := store.ListTimelines()
	if err != nil {
		fail("%v", err)
	}

	if len(entries) == 0 {
		fmt.Println("No stored timelines. Run 'arenic simulate <script>' to create one.")
		return
	}

	fmt.Println("Stored timelines:")
	fmt.Printf("  %4s  %-12s  %-10s  %6s  %-16s  %s\n", "ID", "Actor", "Archetype", "Ticks", "Fingerprint", "Created")
	for _, e := range entries {
		fmt.Printf("  %4d  %-12s  %-10s  %6d  %016x  %s\n",
			e.ID, e.Actor, e.Archetype, e.Duration, e.Fingerprint,
			e.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Println()
	fmt.Println("Run 'arenic replay <id>' to replay a timeline.")
}
