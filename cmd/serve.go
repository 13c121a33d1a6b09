package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/cv-ranker/internal/logger"
	"github.com/spigell/cv-ranker/internal/server"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve analysis runs over a local HTTP API",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (default 127.0.0.1:8080)")
	viper.BindPFlag("serve.listen", serveCmd.Flags().Lookup("listen"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"), "serve")
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	// Fail at startup rather than on the first request.
	if _, err := newSelection(config.Exclude, config.DisabledFilters, logger); err != nil {
		logger.Fatal("preparing filters", zap.Error(err))
	}

	runner := newRunner(ctx, config, logger)
	lister := func(ctx context.Context, folder string, exclude []string) ([]string, error) {
		if len(exclude) == 0 {
			exclude = config.Exclude
		}
		chain, err := newSelection(exclude, config.DisabledFilters, logger)
		if err != nil {
			return nil, err
		}
		files, err := chain.Scan(ctx, folder)
		if err != nil {
			return nil, err
		}
		return files.Items, nil
	}

	app := server.New(runner, lister, logger).App()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting the api", zap.String("listen", config.Serve.Listen), zap.String("version", version))
		return app.Listen(config.Serve.Listen)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("stopping the api")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("api stopped", zap.Error(err))
	}
}
