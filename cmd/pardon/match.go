package main

import (
	"fmt"
	"os"

	"github.com/pardonhq/pardon"
	"github.com/spf13/cobra"
)

func newMatchCmd() *cobra.Command {
	var valuesPath string

	cmd := &cobra.Command{
		Use:   "match <template.yaml> <response.json>",
		Short: "Match a captured response against a template and extract its values",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			template, err := loadTemplate(args[0])
			if err != nil {
				return err
			}
			responseData, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			response, err := pardon.DecodeTemplate(responseData)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[1], err)
			}

			values, err := loadValues(valuesPath)
			if err != nil {
				return err
			}
			env := pardon.NewMapEnvironment(args[0], values)

			merged := pardon.MergeSchema(pardon.MergeOptions{Mode: pardon.ModeMerge, Phase: pardon.PhaseBuild}, pardon.NewStubSchema(), template, env)
			printDiagnostics(merged.Diagnostics)
			if merged.Schema == nil {
				return fmt.Errorf("merge produced no schema")
			}

			matched := pardon.MergeSchema(pardon.MergeOptions{Mode: pardon.ModeMatch, Phase: pardon.PhaseValidate}, merged.Schema, response, env)
			printDiagnostics(matched.Diagnostics)
			if matched.Schema == nil {
				return fmt.Errorf("response did not match template")
			}

			_, resolved, err := pardon.RenderSchemaValues(matched.Schema, env)
			if err != nil {
				return err
			}
			data, err := pardon.EncodeOrderedJSON(toOrderedObject(resolved), true)
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&valuesPath, "values", "", "KV-text value bag file")
	return cmd
}
