//	@title			Showcase API
//	@version		1.0
//	@description	Backend for a project portfolio: projects, downloadable files, version history and visitor favorites.
//
//	@host		localhost:8080
//	@BasePath	/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Operator JWT. Format: **Bearer {token}**

package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/showcase/service/internal/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "showcase",
		Short:         "Portfolio backend: projects, files and favorites",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	config.Flags(root.PersistentFlags())

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			Args:  cobra.NoArgs,
			RunE:  runServe,
		},
		newMigrateCmd(),
		newExportCmd(),
		newImportCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("showcase failed")
		os.Exit(1)
	}
}
