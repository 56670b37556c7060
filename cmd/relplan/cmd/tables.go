package cmd

import (
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newTablesCmd(a *app) *cobra.Command {
	var ddlFile string
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "list the tables of the catalog",
		Args:  cobra.NoArgs,
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

			var data [][]string
			for _, t := range c.Catalog.Tables() {
				columns := make([]string, len(t.Columns))
				for i, col := range t.Columns {
					columns[i] = col.Name + " " + col.Type.String()
				}
				data = append(data, []string{
					strconv.FormatUint(uint64(t.Oid), 10),
					t.Name,
					t.TypeTag,
					strings.Join(columns, ", "),
					t.Comment,
				})
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"oid", "name", "type", "columns", "comment"})
			table.SetAutoWrapText(false)
			table.AppendBulk(data)
			table.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&ddlFile, "ddl", "", "file of CREATE TABLE statements to run first")
	return cmd
}
