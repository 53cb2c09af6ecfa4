package sub

import (
	"os"

	"github.com/ValentinKolb/kvsub/cmd/util"
	"github.com/ValentinKolb/kvsub/lib/cache"
	"github.com/ValentinKolb/kvsub/rpc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	c       *cache.Cache
	closeFn util.Closer

	// SubCommands represents the sub command group
	SubCommands = &cobra.Command{
		Use:   "sub",
		Short: "Manage subs and their records",
		Long: `Manage the subs of a cache and read or write their records.

Creating and deleting subs requires the admin passphrase of the cache
(--admin-passphrase or KVSUB_ADMIN_PASSPHRASE) to be presented with --passphrase.`,
		PersistentPreRunE:  openCache,
		PersistentPostRunE: closeCache,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	util.SetupCacheFlags(SubCommands)

	SubCommands.PersistentFlags().String("log-level", "warn", util.WrapString("The level at which logs will be output (debug, info, warn, error)"))
	SubCommands.PersistentFlags().Bool("metrics", false, util.WrapString("Print the metrics of the cache after the command"))

	// Add subcommands
	SubCommands.AddCommand(listCmd)
	SubCommands.AddCommand(createCmd)
	SubCommands.AddCommand(deleteCmd)
	SubCommands.AddCommand(getCmd)
	SubCommands.AddCommand(getAllCmd)
	SubCommands.AddCommand(keysCmd)
	SubCommands.AddCommand(setCmd)
	SubCommands.AddCommand(setManyCmd)
	SubCommands.AddCommand(unsetCmd)
	SubCommands.AddCommand(unsetAllCmd)
}

// openCache binds the flags and opens the cache used by all subcommands
func openCache(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}
	if err := common.InitLoggers(viper.GetString("log-level")); err != nil {
		return err
	}

	var err error
	c, closeFn, err = util.OpenCache()
	return err
}

// closeCache prints the metrics if requested and releases the cache resources
func closeCache(_ *cobra.Command, _ []string) error {
	if viper.GetBool("metrics") {
		c.WriteMetrics(os.Stdout)
	}
	return closeFn()
}
