package demo

import (
	"os"

	"github.com/ValentinKolb/kvsub/cmd/util"
	"github.com/ValentinKolb/kvsub/rpc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// DemoCmd runs the walk-through against the configured cache
var DemoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a walk-through of all sub operations",
	Long: `Run a walk-through of all sub operations on the sub "users" of the configured cache.
An existing users sub is deleted first. The walk-through configures its own admin passphrase.`,
	Args: cobra.NoArgs,
	RunE: run,
}

func init() {
	cobra.OnInitialize(util.InitClientConfig)

	util.SetupCacheFlags(DemoCmd)
	DemoCmd.PersistentFlags().String("log-level", "warn", util.WrapString("The level at which logs will be output (debug, info, warn, error)"))
}

func run(cmd *cobra.Command, _ []string) (err error) {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}
	if err := common.InitLoggers(viper.GetString("log-level")); err != nil {
		return err
	}

	c, closeFn, err := util.OpenCache()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeFn(); err == nil {
			err = closeErr
		}
	}()

	return Run(cmd.Context(), os.Stdout, c)
}
