package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/egarcia91/BondiolaFC/internal/config"
	"github.com/egarcia91/BondiolaFC/internal/docstore"
	"github.com/egarcia91/BondiolaFC/internal/effects"
	"github.com/egarcia91/BondiolaFC/internal/league"
	"github.com/egarcia91/BondiolaFC/internal/metrics"
	"github.com/egarcia91/BondiolaFC/internal/notifier"
	"github.com/egarcia91/BondiolaFC/internal/pubsub"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	playersFile string
	matchesFile string
)

var rootCmd = &cobra.Command{
	Use:   "seeder",
	Short: "Import players and matches exported from the previous store",
	Long: `Loads the players and matches JSON exports into the configured document
store. Files may hold a list of {"id", "data"} records or an object keyed by
document id. The import only runs against an empty store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&playersFile, "players", "jugadores.json", "Players export")
	rootCmd.Flags().StringVar(&matchesFile, "matches", "partidos.json", "Matches export")
}

func main() {
	log.Info("Starting seeder...")
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatal("Seeding failed", "error", err)
	}
}

func run(ctx context.Context) error {
	cfg := config.Load()

	legacyPlayers, err := readRecords(playersFile)
	if err != nil {
		return err
	}
	legacyMatches, err := readRecords(matchesFile)
	if err != nil {
		return err
	}

	store, teardown, err := docstore.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open document store: %w", err)
	}
	defer teardown()

	// Imports neither notify nor publish.
	ps, err := pubsub.New(ctx, "")
	if err != nil {
		return err
	}
	svc := league.New(store, effects.New(store, metrics.NewService(prometheus.NewRegistry())), notifier.Nop{}, ps)
	summary, err := svc.ImportLegacy(ctx, legacyPlayers, legacyMatches)
	if err != nil {
		return err
	}
	log.Info("Seeding complete", "backend", cfg.Store.Backend, "players", summary.Players, "matches", summary.Matches)
	return nil
}

// readRecords reads an export file in either supported shape.
func readRecords(path string) ([]league.LegacyRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return decodeRecords(raw)
}

func decodeRecords(raw []byte) ([]league.LegacyRecord, error) {
	var list []league.LegacyRecord
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var byID map[string]docstore.Document
	if err := json.Unmarshal(raw, &byID); err != nil {
		return nil, fmt.Errorf("export is neither a record list nor an object keyed by id: %w", err)
	}
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		list = append(list, league.LegacyRecord{ID: id, Data: byID[id]})
	}
	return list, nil
}
