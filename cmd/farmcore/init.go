// Init command for the farmcore CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize farmcore storage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		doc := store.Get()
		fmt.Println("Farmcore initialized successfully")
		fmt.Println("  config: ", resolveConfigDir())
		fmt.Println("  driver: ", cfg.Storage.Driver)
		fmt.Println("  farm:   ", doc.Meta.FarmName)
		return nil
	},
}
