package cli

import (
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/sitecraft/templet/core/block"
	"github.com/sitecraft/templet/core/render"
	"github.com/spf13/cobra"
)

// auditCommand checks that every block type the schema registry
// accepts also has a renderer, so a valid document can never hit the
// fallback placeholder in production.
func auditCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Check renderer coverage against the block schema registry",
		Example: heredoc.Doc(`
			$ templet audit
		`),
		Args: cobra.NoArgs,
		Annotations: map[string]string{
			"group:core": "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			schema := block.NewRegistry()
			renderers := render.NewRegistry()

			types := schema.Types()
			fmt.Printf("schema registry covers %d block types\n", len(types))
			for _, typ := range types {
				fmt.Printf("  %s\n", typ)
			}

			gaps := renderers.CoverageGaps(schema)
			if len(gaps) > 0 {
				for _, typ := range gaps {
					fmt.Printf("missing renderer for block type %q\n", typ)
				}
				return fmt.Errorf("%d block type(s) have no renderer", len(gaps))
			}

			fmt.Println("every schema type has a renderer")
			return nil
		},
	}
}
