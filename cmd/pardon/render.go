package main

import (
	"fmt"
	"sort"

	"github.com/pardonhq/pardon"
	"github.com/spf13/cobra"
)

func newRenderCmd() *cobra.Command {
	var valuesPath string
	var showValues bool

	cmd := &cobra.Command{
		Use:   "render <template.yaml>",
		Short: "Merge a template and render it to a concrete value",
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

			env := pardon.NewMapEnvironment(args[0], values)
			merged := pardon.MergeSchema(pardon.MergeOptions{Mode: pardon.ModeMerge, Phase: pardon.PhaseValidate}, pardon.NewStubSchema(), template, env)
			printDiagnostics(merged.Diagnostics)
			if merged.Schema == nil {
				return fmt.Errorf("merge produced no schema")
			}

			rendered, resolved, err := pardon.RenderSchemaValues(merged.Schema, env)
			if err != nil {
				return err
			}

			data, err := pardon.EncodeOrderedJSON(rendered, true)
			if err != nil {
				return err
			}
			fmt.Println(string(data))

			if showValues {
				valuesData, err := pardon.EncodeOrderedJSON(toOrderedObject(resolved), true)
				if err != nil {
					return err
				}
				fmt.Println(string(valuesData))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&valuesPath, "values", "", "KV-text value bag file")
	cmd.Flags().BoolVar(&showValues, "show-values", false, "also print the resolved value bag")
	return cmd
}

// toOrderedObject wraps a plain map into an OrderedObject (in sorted key
// order) so it can go through the same EncodeOrderedJSON path as schema
// output.
func toOrderedObject(m map[string]any) *pardon.OrderedObject {
	obj := pardon.NewOrderedObject()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		obj.Set(k, m[k])
	}
	return obj
}
