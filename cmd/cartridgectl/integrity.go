// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newIntegrityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "integrity",
		Short: "List boxes whose parent record is missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(); err != nil {
				return err
			}

			s, err := openServices(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			dangling, err := s.boxes.Dangling(cmd.Context())
			if err != nil {
				return err
			}

			if format == formatJSON {
				return outputJSON(cmd, dangling)
			}

			t := newTable(cmd, table.Row{"ID", "BID", "Parent Type", "Parent ID", "Description"})
			for _, b := range dangling {
				t.AppendRow(table.Row{b.ID, b.Bid, string(b.ParentType), b.ParentID, orDash(b.Description)})
			}
			t.AppendFooter(table.Row{"", "", "", "total", len(dangling)})
			t.Render()
			return nil
		},
	}
}
