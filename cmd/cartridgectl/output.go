// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

func checkFormat() error {
	switch format {
	case formatTable, formatJSON:
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid values: table, json)", format)
	}
}

func outputJSON(cmd *cobra.Command, value any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func newTable(cmd *cobra.Command, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	return t
}

func orDash(value *string) string {
	if value == nil || *value == "" {
		return "-"
	}
	return *value
}
