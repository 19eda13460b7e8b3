package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var existsCmd = &cobra.Command{
	Use:   "exists",
	Short: "Report whether a record is stored for the identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		cr, err := newCrate(cmd)
		if err != nil {
			return err
		}
		ok, err := cr.Exists()
		if err != nil {
			return err
		}
		fmt.Println(ok)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Remove the record for the identity",
	Aliases: []string{"rm"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cr, err := newCrate(cmd)
		if err != nil {
			return err
		}
		if err := cr.DeleteStore(); err != nil {
			return err
		}
		fmt.Println("Record deleted")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(existsCmd)
	rootCmd.AddCommand(deleteCmd)
}
