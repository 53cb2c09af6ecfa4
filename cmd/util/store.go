package util

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ValentinKolb/kvsub/lib/blueprint"
	"github.com/ValentinKolb/kvsub/lib/cache"
	"github.com/ValentinKolb/kvsub/lib/db"
	"github.com/ValentinKolb/kvsub/lib/db/engines/maple"
	"github.com/ValentinKolb/kvsub/lib/store"
	"github.com/ValentinKolb/kvsub/lib/store/lstore"
	"github.com/ValentinKolb/kvsub/rpc/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// snapshotFile is the file a local store is kept in between runs
const snapshotFile = "store.snapshot"

// SetupStoreFlags adds the flags selecting the backing store to a command
func SetupStoreFlags(cmd *cobra.Command) {
	SetupRPCClientFlags(cmd)

	key := "backend"
	cmd.PersistentFlags().String(key, "local", WrapString("Store backend: local keeps the data in a snapshot inside data-dir, remote connects to a kvsub server"))

	key = "data-dir"
	cmd.PersistentFlags().String(key, "data", WrapString("Directory for the local store snapshot and the blueprint files"))

	key = "shard"
	cmd.PersistentFlags().Int(key, 100, WrapString("ID of the shard to connect to (remote backend only)"))
}

// SetupCacheFlags adds the store flags plus the flags of a cache to a command
func SetupCacheFlags(cmd *cobra.Command) {
	SetupStoreFlags(cmd)

	key := "cache"
	cmd.PersistentFlags().String(key, "app", WrapString("Name of the cache, used as first segment of every key"))

	key = "blueprint"
	cmd.PersistentFlags().String(key, "file", WrapString("Where the blueprint is persisted: file ({data-dir}/{cache}_blueprint.json), store (inside the backing store) or sqlite ({data-dir}/blueprints.db)"))

	key = "admin-passphrase"
	cmd.PersistentFlags().String(key, "", WrapString("The admin passphrase of the cache, usually set via KVSUB_ADMIN_PASSPHRASE"))

	key = "passphrase"
	cmd.PersistentFlags().String(key, "", WrapString("The passphrase presented for creating and deleting subs"))
}

// Closer releases resources opened for a command
type Closer func() error

// OpenStore opens the backing store selected by the backend flag.
// For the local backend the returned closer writes the snapshot back.
func OpenStore() (store.IStore, Closer, error) {
	switch backend := viper.GetString("backend"); backend {
	case "local":
		s := lstore.NewLocalStore(func() db.KVDB { return maple.NewMapleDB(nil) })
		path := filepath.Join(viper.GetString("data-dir"), snapshotFile)
		if err := lstore.LoadFile(s, path); err != nil {
			return nil, nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		return s, func() error { return lstore.SaveFile(s, path) }, nil

	case "remote":
		ser, err := GetSerializer()
		if err != nil {
			return nil, nil, err
		}
		t, err := GetTransport()
		if err != nil {
			return nil, nil, err
		}
		s, err := client.NewRPCStore(GetShardID(), *GetClientConfig(), t, ser)
		if err != nil {
			return nil, nil, err
		}
		return s, t.Close, nil

	default:
		return nil, nil, fmt.Errorf("invalid backend %s (expected one of: local, remote)", backend)
	}
}

// OpenPersister creates the blueprint persister selected by the blueprint flag
func OpenPersister(s store.IStore, cacheName string) (blueprint.Persister, Closer, error) {
	noop := func() error { return nil }
	dataDir := viper.GetString("data-dir")

	switch kind := viper.GetString("blueprint"); kind {
	case "file":
		return blueprint.NewFilePersister(dataDir, cacheName), noop, nil
	case "store":
		return blueprint.NewStorePersister(s, cacheName), noop, nil
	case "sqlite":
		p, err := blueprint.NewSQLitePersister(filepath.Join(dataDir, "blueprints.db"), cacheName)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	default:
		return nil, nil, fmt.Errorf("invalid blueprint persister %s (expected one of: file, store, sqlite)", kind)
	}
}

// OpenCache opens the store, the blueprint persister and the cache named by the cache flag.
// The admin passphrase is configured if one is set.
func OpenCache() (*cache.Cache, Closer, error) {
	s, closeStore, err := OpenStore()
	if err != nil {
		return nil, nil, err
	}

	name := viper.GetString("cache")
	p, closePersister, err := OpenPersister(s, name)
	if err != nil {
		return nil, nil, errors.Join(err, closeStore())
	}
	closeAll := func() error { return errors.Join(closePersister(), closeStore()) }

	c, err := cache.New(name, s, p)
	if err != nil {
		return nil, nil, errors.Join(err, closeAll())
	}
	if passphrase := viper.GetString("admin-passphrase"); passphrase != "" {
		c.SetupPassphrase(passphrase)
	}
	return c, closeAll, nil
}
