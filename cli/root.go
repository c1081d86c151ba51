package cli

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/goto/salt/cmdx"
	"github.com/spf13/cobra"
)

func New(cliConfig *Config) *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:           "templet <command> <subcommand> [flags]",
		Short:         "Template & Block Document Engine",
		Long:          "Block-based website template storage, validation and versioning service.",
		SilenceErrors: true,
		SilenceUsage:  false,
		Example: heredoc.Doc(`
		$ templet migrate
		$ templet audit
		$ templet render <template-id>
		$ templet config init
		`),
		Annotations: map[string]string{
			"group": "core",
			"help:learn": heredoc.Doc(`
				Use 'templet <command> --help' for info about a command.
			`),
			"help:feedback": heredoc.Doc(`
				Open an issue here https://github.com/sitecraft/templet/issues
			`),
		},
	}

	rootCmd.AddCommand(
		cmdMigrate(),
		auditCommand(),
		renderCommand(),
		configCommand(cliConfig),
		versionCmd(),
	)

	// Help topics
	rootCmd.AddCommand(cmdx.SetCompletionCmd("templet"))
	rootCmd.AddCommand(cmdx.SetRefCmd(rootCmd))
	cmdx.SetHelp(rootCmd)

	return rootCmd
}
