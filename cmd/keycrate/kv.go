package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/keycrate/keycrate/internal/container"
	"github.com/keycrate/keycrate/internal/crate"
)

var flagType string

var setCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Set a typed value and save the record",
	Long: "Set a value in the record's container and persist it. If value is " +
		"omitted, reads from stdin (useful for piping). Bytes values are " +
		"given as base64.",
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cr, err := newCrate(cmd)
		if err != nil {
			return err
		}
		if err := loadOrStartEmpty(cr); err != nil {
			return err
		}

		key := args[0]
		var raw string
		if len(args) == 2 {
			raw = args[1]
		} else {
			raw, err = readValueFromStdin()
			if err != nil {
				return err
			}
		}

		if err := setTyped(cr.Container(), key, flagType, raw); err != nil {
			return err
		}
		if err := cr.Save(); err != nil {
			return err
		}
		fmt.Printf("%s %q set\n", flagType, key)
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a value from the record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cr, err := newCrate(cmd)
		if err != nil {
			return err
		}
		if err := cr.Load(); err != nil {
			return err
		}

		out, ok := formatValue(cr.Container(), args[0])
		if !ok {
			return fmt.Errorf("key %q not set", args[0])
		}
		fmt.Println(out)
		return nil
	},
}

var unsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a key from the record and save it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cr, err := newCrate(cmd)
		if err != nil {
			return err
		}
		if err := cr.Load(); err != nil {
			return err
		}
		cr.Container().Delete(args[0])
		return cr.Save()
	},
}

var keysCmd = &cobra.Command{
	Use:     "keys",
	Short:   "List keys and kinds in the record",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cr, err := newCrate(cmd)
		if err != nil {
			return err
		}
		if err := cr.Load(); err != nil {
			if errors.Is(err, crate.ErrNotFound) {
				fmt.Println("No record stored")
				return nil
			}
			return err
		}

		c := cr.Container()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tKIND")
		for _, k := range c.Keys() {
			kind, _ := c.Kind(k)
			fmt.Fprintf(w, "%s\t%s\n", k, kind)
		}
		w.Flush()
		return nil
	},
}

// loadOrStartEmpty pulls the existing record if there is one; a missing
// record just means the first save will insert.
func loadOrStartEmpty(cr *crate.Crate) error {
	if err := cr.Load(); err != nil && !errors.Is(err, crate.ErrNotFound) {
		return err
	}
	return nil
}

func readValueFromStdin() (string, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Print("Enter value: ")
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return "", fmt.Errorf("reading value: %w", err)
		}
		fmt.Println()
		return string(b), nil
	}
	b, err := os.ReadFile("/dev/stdin")
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimRight(string(b), "\n"), nil
}

func setTyped(c *container.Container, key, typ, raw string) error {
	switch typ {
	case "bool":
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("bad bool %q: %w", raw, err)
		}
		c.SetBool(key, v)
	case "int32":
		v, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return fmt.Errorf("bad int32 %q: %w", raw, err)
		}
		c.SetInt32(key, int32(v))
	case "int64":
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("bad int64 %q: %w", raw, err)
		}
		c.SetInt64(key, v)
	case "float32":
		v, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return fmt.Errorf("bad float32 %q: %w", raw, err)
		}
		c.SetFloat32(key, float32(v))
	case "float64":
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("bad float64 %q: %w", raw, err)
		}
		c.SetFloat64(key, v)
	case "bytes":
		v, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return fmt.Errorf("bad base64 value: %w", err)
		}
		c.SetBytes(key, v)
	default:
		return fmt.Errorf("unknown type %q (want bool, int32, int64, float32, float64 or bytes)", typ)
	}
	return nil
}

func formatValue(c *container.Container, key string) (string, bool) {
	kind, ok := c.Kind(key)
	if !ok {
		return "", false
	}
	switch kind {
	case container.KindBool:
		v, _ := c.Bool(key)
		return strconv.FormatBool(v), true
	case container.KindInt32:
		v, _ := c.Int32(key)
		return strconv.FormatInt(int64(v), 10), true
	case container.KindInt64:
		v, _ := c.Int64(key)
		return strconv.FormatInt(v, 10), true
	case container.KindFloat32:
		v, _ := c.Float32(key)
		return strconv.FormatFloat(float64(v), 'g', -1, 32), true
	case container.KindFloat64:
		v, _ := c.Float64(key)
		return strconv.FormatFloat(v, 'g', -1, 64), true
	case container.KindBytes:
		v, _ := c.Bytes(key)
		return base64.StdEncoding.EncodeToString(v), true
	}
	return "", false
}

func init() {
	setCmd.Flags().StringVar(&flagType, "type", "bytes", "value type: bool, int32, int64, float32, float64, bytes")
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(unsetCmd)
	rootCmd.AddCommand(keysCmd)
}
