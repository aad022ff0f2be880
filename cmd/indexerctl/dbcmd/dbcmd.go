// Package dbcmd implements indexerctl's "db" subcommand tree,
// grounded on the teacher's proxi/db_cmd package: a persistent
// --data_dir flag bound through viper, an "info" subcommand that
// opens the store read-only-in-spirit just long enough to report a
// summary, and a "segments" subcommand over the cold store index.
package dbcmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/solindex/geyser-indexer/cmd/indexerctl/console"
	"github.com/solindex/geyser-indexer/coldstore"
	"github.com/solindex/geyser-indexer/event"
	"github.com/solindex/geyser-indexer/global"
	"github.com/solindex/geyser-indexer/hotstore"
)

func Init(rootCmd *cobra.Command) {
	dbCmd := &cobra.Command{
		Use:   "db [<subcommand>]",
		Short: "inspect the hot and cold store data directory",
	}
	dbCmd.PersistentFlags().String("data_dir", "./data", "root directory for hot and cold store files")
	console.NoError(viper.BindPFlag("data_dir", dbCmd.PersistentFlags().Lookup("data_dir")))

	dbCmd.InitDefaultHelpCmd()
	initInfoCmd(dbCmd)
	initSegmentsCmd(dbCmd)

	rootCmd.AddCommand(dbCmd)
}

func dataDir() string {
	return viper.GetString("data_dir")
}

func initInfoCmd(dbCmd *cobra.Command) {
	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "displays the hot store's greatest rooted slot and migration cursor",
		Args:  cobra.NoArgs,
		Run:   runInfoCmd,
	}
	infoCmd.InitDefaultHelpCmd()
	dbCmd.AddCommand(infoCmd)
}

func runInfoCmd(_ *cobra.Command, _ []string) {
	dir := dataDir() + "/hot"
	env := global.New()
	hs, err := hotstore.Open(env, hotstore.DefaultConfig(dir))
	if err != nil {
		console.Fatalf("cannot open hot store at %q (is the indexer process running? it holds an exclusive lock): %v", dir, err)
	}
	defer hs.Close()

	rooted, err := hs.GreatestRootedSlot(context.Background())
	console.NoError(err)
	cursor, err := hs.MigrationCursor()
	console.NoError(err)

	console.Infof("data dir:             %s", dir)
	console.Infof("greatest rooted slot: %d", rooted)
	console.Infof("migration cursor:     %d", cursor)
	console.Infof("unmigrated lag:       %d slots", rooted-cursor)
}

func initSegmentsCmd(dbCmd *cobra.Command) {
	var kindFlag string
	segCmd := &cobra.Command{
		Use:   "segments",
		Short: "lists cold store segments for one event kind",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			runSegmentsCmd(kindFlag)
		},
	}
	segCmd.Flags().StringVar(&kindFlag, "kind", "account", "one of: account, transaction, slot_status, block_info")
	segCmd.InitDefaultHelpCmd()
	dbCmd.AddCommand(segCmd)
}

func runSegmentsCmd(kindFlag string) {
	kind, err := parseKind(kindFlag)
	if err != nil {
		console.Fatalf("%v", err)
	}

	root := dataDir() + "/cold"
	idx := coldstore.NewIndex(root)
	console.NoError(idx.Rebuild())

	segments := idx.Segments(kind)
	console.Infof("cold store root: %s", root)
	console.Infof("kind:            %s", kind)
	console.Infof("segments:        %d", len(segments))
	for _, s := range segments {
		console.Infof("  [%d, %d] %s", s.FirstSlot, s.LastSlot, s.Path)
	}
}

func parseKind(s string) (event.Kind, error) {
	for _, k := range event.AllKinds() {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown kind %q", s)
}
