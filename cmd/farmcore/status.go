// Status command for the farmcore CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"farmcore/internal/core"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show farm state summary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		doc := store.Get()
		if err := core.VerifyTrash(doc); err != nil {
			return fmt.Errorf("trash check failed: %w", err)
		}

		active := "-"
		if u, ok := doc.ActiveUser(); ok {
			active = u.Name
		}
		live := 0
		for _, a := range doc.Animals {
			if !a.Deleted() {
				live++
			}
		}
		fmt.Println("farm:    ", doc.Meta.FarmName)
		fmt.Println("user:    ", active)
		fmt.Println("schema:  ", doc.SchemaVersion)
		fmt.Println("updated: ", doc.UpdatedAt.Format("2006-01-02 15:04:05"))
		fmt.Println("animals: ", live)
		fmt.Println("fields:  ", len(doc.Fields))
		fmt.Println("events:  ", len(doc.Events))
		fmt.Println("trash:   ", len(doc.Trash.Animals)+len(doc.Trash.Fields)+len(doc.Trash.Events))
		return nil
	},
}
