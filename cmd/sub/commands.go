package sub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ValentinKolb/kvsub/lib/cache"
	"github.com/ValentinKolb/kvsub/lib/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "Lists all subs with their schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range c.Subs() {
				s, err := c.Sub(name)
				if err != nil {
					return err
				}
				def, err := json.Marshal(s.Schema())
				if err != nil {
					return err
				}
				fmt.Printf("%s %s\n", name, def)
			}
			return nil
		},
	}
	createCmd = &cobra.Command{
		Use:   "create [name] [column=TYPE]...",
		Short: "Creates a sub, the first column is the key column",
		Long: `Creates a sub with the given columns. Types are descriptors like TEXT, INTEGER,
REAL, BOOLEAN, optionally followed by NOT NULL (quote descriptors containing spaces).
The first column is the key column and must not be REAL or BOOLEAN.`,
		Example: `  kvsub sub create users "uid=INTEGER NOT NULL" "name=TEXT NOT NULL" age=INTEGER --passphrase secret`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := parseSchema(args[1:])
			if err != nil {
				return err
			}
			ok, err := c.CreateSub(args[0], s, viper.GetString("passphrase"))
			return report("create", ok, err)
		},
	}
	deleteCmd = &cobra.Command{
		Use:   "delete [name]",
		Short: "Deletes a sub and all of its records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := c.DeleteSub(args[0], viper.GetString("passphrase"))
			return report("delete", ok, err)
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [name] [key]...",
		Short: "Reads records by key, one JSON document per line (null for a miss)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.Sub(args[0])
			if err != nil {
				return err
			}
			records, err := s.GetMany(cmd.Context(), cache.KeysOf(args[1:]...))
			if err != nil {
				return err
			}
			return printRecords(records)
		},
	}
	getAllCmd = &cobra.Command{
		Use:   "get-all [name]",
		Short: "Reads all records of a sub ordered by key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.Sub(args[0])
			if err != nil {
				return err
			}
			records, err := s.GetAll(cmd.Context())
			if err != nil {
				return err
			}
			return printRecords(records)
		},
	}
	keysCmd = &cobra.Command{
		Use:   "keys [name]",
		Short: "Lists the keys of all records of a sub",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.Sub(args[0])
			if err != nil {
				return err
			}
			keys, err := s.Keys(cmd.Context())
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Println(k)
			}
			return nil
		},
	}
	setCmd = &cobra.Command{
		Use:     "set [name] [key] [json]",
		Short:   "Writes one record, the key column is filled in from the key",
		Example: `  kvsub sub set users 1 '{"name":"Ada","age":36}'`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.Sub(args[0])
			if err != nil {
				return err
			}
			record, err := parseRecord([]byte(args[2]))
			if err != nil {
				return err
			}
			ok, err := s.Set(cmd.Context(), args[1], record)
			return report("set", ok, err)
		},
	}
	setManyCmd = &cobra.Command{
		Use:     "set-many [name] [json]",
		Short:   "Writes several records at once, all or none",
		Example: `  kvsub sub set-many users '{"2":{"name":"Bob"},"3":{"name":"Eve"}}'`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.Sub(args[0])
			if err != nil {
				return err
			}
			pairs, err := parsePairs([]byte(args[1]))
			if err != nil {
				return err
			}
			ok, err := s.SetMany(cmd.Context(), pairs)
			return report("set-many", ok, err)
		},
	}
	unsetCmd = &cobra.Command{
		Use:   "unset [name] [key]...",
		Short: "Removes records by key, all or none",
		Long: `Removes records by key. A single key reports whether a record was removed,
several keys are removed all or none and keys without a record are skipped.`,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.Sub(args[0])
			if err != nil {
				return err
			}
			return unsetKeys(cmd.Context(), cmd.OutOrStdout(), s, args[1:])
		},
	}
	unsetAllCmd = &cobra.Command{
		Use:   "unset-all [name]",
		Short: "Removes all records of a sub, the sub itself is kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.Sub(args[0])
			if err != nil {
				return err
			}
			ok, err := s.UnsetAll(cmd.Context())
			return report("unset-all", ok, err)
		},
	}
)

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// report prints the outcome of a mutation. A rejected mutation is returned as error
// so the process exits with a non-zero status.
func report(op string, ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s rejected", op)
	}
	fmt.Printf("%s successfully\n", op)
	return nil
}

// unsetKeys removes one record with Unset and several with UnsetMany
func unsetKeys(ctx context.Context, w io.Writer, s *cache.Sub, keys []string) error {
	if len(keys) == 1 {
		deleted, err := s.Unset(ctx, keys[0])
		if err != nil {
			return err
		}
		if !deleted {
			fmt.Fprintf(w, "nothing to unset for key %s\n", keys[0])
			return nil
		}
		fmt.Fprintln(w, "unset successfully")
		return nil
	}

	ok, err := s.UnsetMany(ctx, cache.KeysOf(keys...))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("unset rejected")
	}
	fmt.Fprintln(w, "unset successfully")
	return nil
}

// parseSchema parses column=TYPE arguments in declaration order
func parseSchema(args []string) (schema.Schema, error) {
	cols := make([]schema.Column, 0, len(args))
	for _, arg := range args {
		name, typ, found := strings.Cut(arg, "=")
		if !found || name == "" {
			return schema.Schema{}, fmt.Errorf("invalid column %q (expected column=TYPE)", arg)
		}
		cols = append(cols, schema.Col(strings.TrimSpace(name), strings.TrimSpace(typ)))
	}
	return schema.New(cols...)
}

// parseRecord decodes a JSON object, numbers keep their literal form
func parseRecord(data []byte) (cache.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var r cache.Record
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("invalid record: %w", err)
	}
	if r == nil {
		return nil, fmt.Errorf("invalid record: expected a JSON object")
	}
	return r, nil
}

// parsePairs decodes {"key": {record}, ...} into pairs sorted by key
func parsePairs(data []byte) ([]cache.KeyValue, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid records: %w", err)
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]cache.KeyValue, 0, len(keys))
	for _, k := range keys {
		r, err := parseRecord(raw[k])
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", k, err)
		}
		pairs = append(pairs, cache.KeyValue{Key: k, Value: r})
	}
	return pairs, nil
}

func printRecords(records []cache.Record) error {
	for _, r := range records {
		line, err := json.Marshal(r)
		if err != nil {
			return err
		}
		fmt.Println(string(line))
	}
	return nil
}
