package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/cv-ranker/internal/logger"
	"github.com/spigell/cv-ranker/internal/selection"
)

var filesCmd = &cobra.Command{
	Use:   "files [folder]",
	Short: "List the candidate resumes that an analysis would read",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		listFiles(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(filesCmd)

	filesCmd.Flags().StringSliceP("exclude", "e", nil, "glob patterns of file names to skip")
	filesCmd.Flags().StringSlice("disable-filter", nil, "selection filters to turn off: supported_extension, hidden, exclude")
}

const disabledByConfig = "disabled by configuration"

// newSelection builds the default filter chain with the configured filters turned off.
func newSelection(exclude, disabled []string, logger *zap.Logger) (*selection.Selection, error) {
	chain := selection.Default(exclude, logger)
	if err := chain.Disable(disabled, disabledByConfig); err != nil {
		return nil, err
	}
	return chain, nil
}

func listFiles(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"), cmd.Name())
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	folder := config.Folder
	if len(args) == 1 {
		folder = args[0]
	}
	folder = strings.TrimSpace(folder)
	if folder == "" {
		logger.Fatal("Please select a folder first.")
	}

	exclude := config.Exclude
	if flag := cmd.Flag("exclude"); flag != nil && flag.Changed {
		exclude, _ = cmd.Flags().GetStringSlice("exclude")
	}

	disabled := config.DisabledFilters
	if flag := cmd.Flag("disable-filter"); flag != nil && flag.Changed {
		disabled, _ = cmd.Flags().GetStringSlice("disable-filter")
	}

	chain, err := newSelection(exclude, disabled, logger)
	if err != nil {
		logger.Fatal("preparing filters", zap.Error(err))
	}
	for _, status := range chain.Describe() {
		logger.Debug("filter status",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}

	files, err := chain.Scan(ctx, folder)
	if err != nil {
		logger.Fatal("listing candidate files", zap.Error(err))
	}

	if files.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no candidate files found"))
		return
	}

	out := cmd.OutOrStdout()
	for i, name := range files.Items {
		fmt.Fprintf(out, "%d. %s\n", i+1, name)
	}
}
