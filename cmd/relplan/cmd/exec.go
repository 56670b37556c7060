package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newExecCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <sql|->",
		Short: "run DDL statements against the catalog",
		Long:  "Run semicolon separated CREATE TABLE statements. Pass - to read them from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script := args[0]
			if script == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("cannot read stdin: %w", err)
				}
				script = string(data)
			}
			c, err := a.compiler()
			if err != nil {
				return err
			}
			return c.ExecuteScript(script)
		},
	}
}
