package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lore",
	Short: "learning object repository taxonomy service",
	Example: `lore serve
lore migrate
lore reindex --repository physics
lore seed --file vocabularies.yaml
lore token --subject alice --staff`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd(), migrateCmd(), reindexCmd(), seedCmd(), tokenCmd())
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	cobra.EnableCommandSorting = false
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
