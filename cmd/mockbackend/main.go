// Command mockbackend serves an in-memory MoneyKeeper backend for local
// development of the chat client.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/logging"
	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/testserver"
)

func main() {
	addr := flag.String("addr", ":5000", "Listen address")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	logger, err := logging.New(*logLevel, "console")
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	srv := testserver.New(testserver.Options{Logger: logger})

	go func() {
		if err := srv.Start(*addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start mock backend", zap.Error(err))
		}
	}()
	logger.Info("mock backend started",
		zap.String("api", "http://localhost"+*addr+"/api"),
		zap.String("chat", "ws://localhost"+*addr+"/chat"))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down mock backend")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("failed to shutdown gracefully", zap.Error(err))
	}
}
