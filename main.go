package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/epustaka/epustaka/config"
	"github.com/epustaka/epustaka/lending"
	"github.com/epustaka/epustaka/log"
	"github.com/epustaka/epustaka/server"
	"github.com/epustaka/epustaka/store"
	"github.com/epustaka/epustaka/store/db"
	"github.com/epustaka/epustaka/worker"
)

const (
	greetingBanner = `
███████ ██████  ██    ██ ███████ ████████  █████  ██   ██  █████
██      ██   ██ ██    ██ ██         ██    ██   ██ ██  ██  ██   ██
█████   ██████  ██    ██ ███████    ██    ███████ █████   ███████
██      ██      ██    ██      ██    ██    ██   ██ ██  ██  ██   ██
███████ ██       ██████  ███████    ██    ██   ██ ██   ██ ██   ██
`
)

var (
	configFile string
	host       string
	port       int
	data       string

	rootCmd = &cobra.Command{
		Use:   "epustaka",
		Short: "ePustaka is a digital library lending server",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			database, err := db.NewDB(config.Opts.DSN)
			if err != nil {
				log.Error("Error connecting to database", zap.Error(err))
				return
			}
			defer database.Close()
			if err := database.Migrate(ctx); err != nil {
				log.Error("Error migrating database", zap.Error(err))
				return
			}

			s := store.NewStore(database.DB)
			if err := s.Ping(); err != nil {
				log.Error("Error pinging database", zap.Error(err))
				return
			}

			engine := lending.NewEngine(s)
			uploadPool := worker.NewUploadPool(s, config.Opts.WorkerPoolSize)
			go worker.NewOverdueSweeper(s).Run(ctx)

			httpServer, err := server.StartServer(ctx, s, engine, uploadPool)
			if err != nil {
				log.Error("Error starting server", zap.Error(err))
				return
			}

			fmt.Print(greetingBanner)

			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt, syscall.SIGTERM)
			<-c

			log.Info("Shutting down server")
			if err := httpServer.Shutdown(ctx); err != nil {
				log.Error("Error shutting down server", zap.Error(err))
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&host, "host", "", "host to listen on")
	rootCmd.PersistentFlags().IntVar(&port, "port", 0, "port to listen on")
	rootCmd.PersistentFlags().StringVar(&data, "data", "", "data directory")

	cobra.OnInitialize(func() {
		config.GetDefaultOptions()
		if configFile != "" {
			if _, err := config.ParseFile(configFile); err != nil {
				fmt.Println("Error parsing config file: ", err)
				os.Exit(1)
			}
		}
		// Flags win over the config file.
		if host != "" {
			config.Opts.Host = host
		}
		if port != 0 {
			config.Opts.Port = port
		}
		if data != "" {
			config.Opts.Data = data
		}
		if _, err := config.GetConfig(); err != nil {
			fmt.Println("Error loading config: ", err)
			os.Exit(1)
		}

		log.Logger = log.NewLogger()
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Logger.Sync()
}
