package kv

import (
	"github.com/ValentinKolb/kvsub/cmd/util"
	"github.com/ValentinKolb/kvsub/lib/store"
	"github.com/spf13/cobra"
)

var (
	kvStore store.IStore
	closeFn util.Closer

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:   "kv",
		Short: "Perform raw key-value store operations",
		Long: `Perform raw key-value store operations, bypassing the schemas of the subs.
Records of a sub live under {cache}/{sub}/{key}, the blueprint of a cache persisted
in the store under {cache}_blueprint.`,
		PersistentPreRunE:  setupKVStore,
		PersistentPostRunE: func(*cobra.Command, []string) error { return closeFn() },
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add the store flags to the KV command
	util.SetupStoreFlags(KeyValueCommands)

	// Add subcommands
	KeyValueCommands.AddCommand(setCmd)
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(delCmd)
	KeyValueCommands.AddCommand(hasCmd)
	KeyValueCommands.AddCommand(scanCmd)
	KeyValueCommands.AddCommand(infoCmd)
}

// setupKVStore opens the store selected by the flags
func setupKVStore(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	var err error
	kvStore, closeFn, err = util.OpenStore()
	return err
}
