package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/ValentinKolb/kvsub/cmd/demo"
	"github.com/ValentinKolb/kvsub/cmd/kv"
	"github.com/ValentinKolb/kvsub/cmd/serve"
	"github.com/ValentinKolb/kvsub/cmd/sub"
	"github.com/ValentinKolb/kvsub/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "kvsub",
		Short: "schema-validated subs on a key-value store",
		Long: fmt.Sprintf(`kvsub (v%s)

Named, schema-validated record collections ("subs") on top of a
key-value store. The store runs in process or as a (RAFT replicated)
server reached via RPC.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of kvsub",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("kvsub v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(sub.SubCommands)
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(demo.DemoCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "binary", util.WrapString("serializer to use for RPC (json, gob, binary)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "http", util.WrapString("transport to use for RPC (http)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
