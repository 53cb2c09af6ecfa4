package util

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/kvsub/rpc/common"
	"github.com/ValentinKolb/kvsub/rpc/serializer"
	"github.com/ValentinKolb/kvsub/rpc/transport"
	"github.com/ValentinKolb/kvsub/rpc/transport/http"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// helpWidth is the column flag descriptions are wrapped at
const helpWidth = 50

// WrapString breaks text into lines of at most helpWidth characters at word boundaries
func WrapString(text string) string {
	var b strings.Builder
	width := 0
	for _, word := range strings.Fields(text) {
		switch {
		case width == 0:
		case width+1+len(word) > helpWidth:
			b.WriteByte('\n')
			width = 0
		default:
			b.WriteByte(' ')
			width++
		}
		b.WriteString(word)
		width += len(word)
	}
	return b.String()
}

// SetupRPCClientFlags adds common RPC connection flags to a command
func SetupRPCClientFlags(cmd *cobra.Command) {
	key := "timeout"
	cmd.PersistentFlags().Int(key, 10, WrapString("The timeout in seconds of the client"))

	key = "transport-endpoints"
	cmd.PersistentFlags().String(key, "http://localhost:8080", WrapString("The address of the kvsub server. Multiple endpoints can be specified as a comma-separated list, requests are spread over them round-robin"))

	key = "transport-retries"
	cmd.PersistentFlags().Int(key, 3, WrapString("How many times to retry the request"))
}

// InitClientConfig initializes configuration from environment variables
func InitClientConfig() {
	// each file is optional, Load stops at the first missing one
	for _, f := range []string{".env", ".env.local"} {
		_ = godotenv.Load(f)
	}

	viper.SetEnvPrefix("kvsub")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// GetClientConfig reads client configuration from viper
func GetClientConfig() *common.ClientConfig {
	endpoints := strings.Split(viper.GetString("transport-endpoints"), ",")
	for i := range endpoints {
		endpoints[i] = strings.TrimSpace(endpoints[i])
	}

	return &common.ClientConfig{
		Endpoints:     endpoints,
		TimeoutSecond: viper.GetInt("timeout"),
		RetryCount:    viper.GetInt("transport-retries"),
	}
}

// GetSerializer creates a serializer based on configuration
func GetSerializer() (serializer.IRPCSerializer, error) {
	return serializer.New(viper.GetString("serializer"))
}

// GetTransport creates the client transport based on configuration
func GetTransport() (transport.IRPCClientTransport, error) {
	switch viper.GetString("transport") {
	case "http":
		return http.NewHttpClientTransport(), nil
	default:
		return nil, fmt.Errorf("invalid transport %s (expected: http)", viper.GetString("transport"))
	}
}

// GetServerTransport is the listening counterpart of GetTransport
func GetServerTransport() (transport.IRPCServerTransport, error) {
	if name := viper.GetString("transport"); name != "http" {
		return nil, fmt.Errorf("invalid transport %s (expected: http)", name)
	}
	return http.NewHttpServerTransport(), nil
}

// GetShardID retrieves the configured shard ID
func GetShardID() uint64 {
	return uint64(viper.GetInt("shard"))
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
