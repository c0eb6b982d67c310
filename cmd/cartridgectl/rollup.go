// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/node"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/rollup"
)

func newRollupCmd() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "rollup <caliber>",
		Short: "Print record and box counts for a caliber or one node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(); err != nil {
				return err
			}

			s, err := openServices(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			var result *rollup.Result
			if root == "" {
				result, err = s.rollups.Caliber(cmd.Context(), args[0])
			} else {
				ref, parseErr := parseRef(root)
				if parseErr != nil {
					return parseErr
				}
				result, err = s.rollups.Node(cmd.Context(), args[0], ref)
			}
			if err != nil {
				return err
			}

			if format == formatJSON {
				return outputJSON(cmd, result)
			}
			outputRollup(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "node", "", "Roll up below one node, as kind:id (e.g. load:12)")
	return cmd
}

// parseRef reads a kind:id pair.
func parseRef(raw string) (node.Ref, error) {
	rawKind, rawID, found := strings.Cut(raw, ":")
	if !found {
		return node.Ref{}, fmt.Errorf("node must look like kind:id, got %q", raw)
	}

	kind, err := node.ParseKind(rawKind)
	if err != nil {
		return node.Ref{}, err
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id < 1 {
		return node.Ref{}, fmt.Errorf("node id must be a positive integer, got %q", rawID)
	}
	return node.NewRef(kind, id), nil
}

func outputRollup(cmd *cobra.Command, result *rollup.Result) {
	t := newTable(cmd, table.Row{"Kind", "Records", "With Image"})
	for _, kind := range node.Kinds {
		tally, ok := result.Totals[kind]
		if !ok {
			continue
		}
		t.AppendRow(table.Row{kind.String(), tally.Count, tally.WithImage})
	}
	t.AppendFooter(table.Row{"boxes", result.TotalBoxes.Count, result.TotalBoxes.WithImage})

	title := result.Caliber
	if result.Root != nil {
		title += " / " + result.Root.String()
	}
	t.SetTitle(title)
	t.Render()

	if result.DanglingBoxes > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%d dangling box(es) across all calibers; run `cartridgectl integrity` for details\n", result.DanglingBoxes)
	}
}
