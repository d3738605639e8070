package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/inforoute-cli/internal/adapter"
)

type sourceDoc struct {
	Enabled        bool `yaml:"enabled"`
	adapter.Schema `yaml:",inline"`
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Print the field mapping of every source as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("sources"); err != nil {
			return err
		}

		var docs []sourceDoc
		for _, a := range adapter.DefaultRegistry(nil).All() {
			sp, ok := a.(adapter.SchemaProvider)
			if !ok {
				continue
			}
			sc, _ := cfg.Source(a.Key())
			docs = append(docs, sourceDoc{Enabled: sc.Enabled, Schema: sp.Schema()})
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(docs); err != nil {
			return eris.Wrap(err, "encode sources")
		}
		return enc.Close()
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
