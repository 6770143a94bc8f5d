package ui

import (
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Table renders rows under headers, left aligned.
func Table(w io.Writer, headers []string, rows [][]string) error {
	table := tablewriter.NewTable(w)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Header.Alignment.Global = tw.AlignLeft
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	table.Header(headers)
	if err := table.Bulk(rows); err != nil {
		return err
	}

	return table.Render()
}
