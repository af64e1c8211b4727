package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ValentinKolb/rmap"
	"github.com/ValentinKolb/rmap/serializer"
)

// newStringClient builds a rmap.Client[string, string] from the
// currently bound flags, for the CLI's own ad hoc commands. Every
// subcommand constructs its own client and closes it when done — the
// CLI is a one-shot tool, not a long-running process holding a
// connection open between invocations.
func newStringClient() (*rmap.Client[string, string], error) {
	ser, err := stringSerializer()
	if err != nil {
		return nil, err
	}
	cfg := buildClientConfig()
	return rmap.New[string, string](cfg, ser, ser, serializer.JSONObjectSerializer{}), nil
}

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "fetch the value stored for a key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newStringClient()
		if err != nil {
			return err
		}
		defer c.Close()

		value, ok, err := c.Get(args[0])
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("<nil>")
			return nil
		}
		fmt.Println(value)
		return nil
	},
}

var putCmd = &cobra.Command{
	Use:   "put <key> <value>",
	Short: "store a value for a key, printing the prior value if any",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newStringClient()
		if err != nil {
			return err
		}
		defer c.Close()

		prior, ok, err := c.Put(args[0], args[1])
		if err != nil {
			return err
		}
		if ok {
			fmt.Printf("prior value: %s\n", prior)
		}
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <key>",
	Short: "remove a key, printing the prior value if any",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newStringClient()
		if err != nil {
			return err
		}
		defer c.Close()

		prior, ok, err := c.Remove(args[0])
		if err != nil {
			return err
		}
		if ok {
			fmt.Printf("removed, prior value: %s\n", prior)
		} else {
			fmt.Println("no such key")
		}
		return nil
	},
}

var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "print the number of entries in the map",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newStringClient()
		if err != nil {
			return err
		}
		defer c.Close()

		n, err := c.LongSize()
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "remove every entry from the map",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newStringClient()
		if err != nil {
			return err
		}
		defer c.Close()
		return c.Clear()
	},
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "list every key in the map",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newStringClient()
		if err != nil {
			return err
		}
		defer c.Close()

		keys, err := c.KeySet()
		if err != nil {
			return err
		}
		for _, k := range keys {
			fmt.Println(k)
		}
		return nil
	},
}

var valuesCmd = &cobra.Command{
	Use:   "values",
	Short: "list every value in the map",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newStringClient()
		if err != nil {
			return err
		}
		defer c.Close()

		values, err := c.Values()
		if err != nil {
			return err
		}
		for _, v := range values {
			fmt.Println(v)
		}
		return nil
	},
}

var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "list every key/value pair in the map",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newStringClient()
		if err != nil {
			return err
		}
		defer c.Close()

		entries, err := c.EntrySet()
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%s=%s\n", e.Key, e.Value)
		}
		return nil
	},
}
