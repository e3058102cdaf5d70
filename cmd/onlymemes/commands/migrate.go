package commands

import (
	"github.com/spf13/cobra"

	"onlymemes/cmd/onlymemes/output"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := bootstrap()
		if err != nil {
			return err
		}
		defer e.close()

		output.Success("schema is up to date (%s)", e.db.Dialector.Name())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
