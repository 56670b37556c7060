package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExplainCmd(a *app) *cobra.Command {
	var ddlFile string
	cmd := &cobra.Command{
		Use:   "explain <sql>",
		Short: "print the optimized plan of a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.compiler()
			if err != nil {
				return err
			}
			if ddlFile != "" {
				if err := runDDLFile(c, ddlFile); err != nil {
					return err
				}
			}
			out, err := c.Explain(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringVar(&ddlFile, "ddl", "", "file of CREATE TABLE statements to run first")
	return cmd
}
