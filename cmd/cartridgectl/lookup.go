// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "lookup <caliber> <display-id>",
		Short:   "Resolve an L/D/V/B display id and print its breadcrumb chain",
		Example: "  cartridgectl lookup 9mm L1042\n  cartridgectl lookup 9mm B77 --format json",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(); err != nil {
				return err
			}

			s, err := openServices(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			hit, err := s.search.Lookup(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			if format == formatJSON {
				return outputJSON(cmd, hit)
			}

			t := newTable(cmd, table.Row{"#", "Kind", "ID", "Label"})
			for i, crumb := range hit.Chain {
				t.AppendRow(table.Row{i + 1, crumb.Ref.Kind.String(), crumb.Ref.ID, crumb.Label})
			}
			t.SetTitle(fmt.Sprintf("%s (%s)", hit.DisplayID, hit.Target))
			t.Render()
			return nil
		},
	}
}
