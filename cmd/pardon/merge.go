package main

import (
	"fmt"

	"github.com/pardonhq/pardon"
	"github.com/spf13/cobra"
)

func newMergeCmd() *cobra.Command {
	var valuesPath string
	var match bool

	cmd := &cobra.Command{
		Use:   "merge <template.yaml>",
		Short: "Merge a template into a schema and preview its shape",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			template, err := loadTemplate(args[0])
			if err != nil {
				return err
			}
			values, err := loadValues(valuesPath)
			if err != nil {
				return err
			}

			mode := pardon.ModeMerge
			if match {
				mode = pardon.ModeMatch
			}
			env := pardon.NewMapEnvironment(args[0], values)
			result := pardon.MergeSchema(pardon.MergeOptions{Mode: mode, Phase: pardon.PhaseBuild}, pardon.NewStubSchema(), template, env)
			printDiagnostics(result.Diagnostics)
			if result.Schema == nil {
				return fmt.Errorf("merge produced no schema")
			}

			preview, err := pardon.PreviewSchema(result.Schema, env)
			if err != nil {
				return err
			}
			data, err := pardon.EncodeOrderedJSON(preview, true)
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&valuesPath, "values", "", "KV-text value bag file")
	cmd.Flags().BoolVar(&match, "match", false, "merge in match mode instead of merge mode")
	return cmd
}
