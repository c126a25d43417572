package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/showcase/service/internal/config"
	"github.com/showcase/service/internal/db"
	"github.com/showcase/service/internal/logging"
	"github.com/showcase/service/internal/project"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations for the postgres project store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			if err := logging.Init(cfg.LogLevel, !cfg.IsProduction()); err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required")
			}
			return db.Migrate(cfg.DatabaseURL)
		},
	}
}

func newExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all projects as JSON to stdout or a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			projects, err := project.NewService(project.NewRepository(a.store)).Export(cmd.Context())
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			if err := writeProjects(w, projects); err != nil {
				return err
			}
			log.Info().Int("projects", len(projects)).Msg("projects exported")
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Replace all projects with the contents of a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			projects, err := readProjects(f)
			if err != nil {
				return err
			}

			svc := project.NewService(project.NewRepository(a.store))
			if err := svc.Import(cmd.Context(), projects); err != nil {
				return err
			}
			log.Info().Int("projects", len(projects)).Str("file", args[0]).Msg("projects imported")
			return nil
		},
	}
}

func writeProjects(w io.Writer, projects []project.Project) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(projects); err != nil {
		return fmt.Errorf("encode projects: %w", err)
	}
	return nil
}

func readProjects(r io.Reader) ([]project.Project, error) {
	var projects []project.Project
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&projects); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}
	return projects, nil
}
