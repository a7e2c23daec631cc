package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/lore-backend/internal/app"
	"github.com/yungbote/lore-backend/internal/seed"
	"github.com/yungbote/lore-backend/internal/services"
)

func serveCmd() *cobra.Command {
	var migrate bool
	command := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the index repair schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := app.New(ctx, app.Options{Migrate: migrate})
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.Start(ctx); err != nil {
				return err
			}
			return a.Run(ctx)
		},
	}
	command.Flags().BoolVar(&migrate, "migrate", true, "migrate the schema before serving")
	return command
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := app.NewLogger()
			if err != nil {
				return err
			}
			defer log.Sync()
			db, err := app.OpenDB(log, true)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
			log.Info("Migration complete")
			return nil
		},
	}
}

func reindexCmd() *cobra.Command {
	var repository string
	command := &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the search index from the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := app.New(ctx, app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			if repository == "" {
				n, err := a.Services.Repair.RunOnce(ctx)
				fmt.Fprintf(cmd.OutOrStdout(), "rebuilt %d repositories\n", n)
				return err
			}
			repo, err := a.Repos.Repository.GetBySlug(ctx, nil, repository)
			if err != nil {
				return err
			}
			if repo == nil {
				return fmt.Errorf("repository %q not found", repository)
			}
			n, err := a.Services.Repair.Rebuild(ctx, []uuid.UUID{repo.ID})
			fmt.Fprintf(cmd.OutOrStdout(), "rebuilt %d repositories\n", n)
			return err
		},
	}
	command.Flags().StringVar(&repository, "repository", "", "slug of a single repository to rebuild")
	return command
}

func seedCmd() *cobra.Command {
	var file string
	command := &cobra.Command{
		Use:   "seed",
		Short: "Create repositories and vocabularies from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := seed.ParseFile(file)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := app.New(ctx, app.Options{Migrate: true})
			if err != nil {
				return err
			}
			defer a.Close()

			loader := seed.NewLoader(a.Log, a.Repos, a.Services.Catalog, a.Services.Taxonomy)
			sum, err := loader.Apply(ctx, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "repositories=%d members=%d vocabularies=%d terms=%d\n",
				sum.Repositories, sum.Members, sum.Vocabularies, sum.Terms)
			return nil
		},
	}
	command.Flags().StringVarP(&file, "file", "f", "", "seed file")
	_ = command.MarkFlagRequired("file")
	return command
}

func tokenCmd() *cobra.Command {
	var (
		subject string
		staff   bool
	)
	command := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token signed with JWT_SECRET_KEY",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := app.NewLogger()
			if err != nil {
				return err
			}
			defer log.Sync()
			cfg := app.LoadConfig(log)
			tok, err := services.NewAuthService(log, cfg.JWTSecretKey, cfg.AccessTokenTTL).MintToken(subject, staff)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	command.Flags().StringVar(&subject, "subject", "", "token subject")
	command.Flags().BoolVar(&staff, "staff", false, "grant staff access")
	_ = command.MarkFlagRequired("subject")
	return command
}
