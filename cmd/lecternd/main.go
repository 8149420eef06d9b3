// Command lecternd runs the virtual professor dialogue service.
package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	lectern "github.com/lectern-ai/lectern"
	"github.com/lectern-ai/lectern/config"
	"github.com/lectern-ai/lectern/logging"
	"github.com/lectern-ai/lectern/provider"
	antprovider "github.com/lectern-ai/lectern/provider/anthropic"
	oaiprovider "github.com/lectern-ai/lectern/provider/openai"
	"github.com/lectern-ai/lectern/server"
)

func main() {
	configPath := flag.String("config", "lectern.yaml", "path to the service configuration file")
	addr := flag.String("addr", "", "listen address override")
	logFormat := flag.String("log-format", "json", "log format: json or text")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := logging.LogLevelInfo
	if *debug {
		level = logging.LogLevelDebug
	}
	logger := logging.NewLogger(&logging.Config{Level: level, Format: *logFormat, Output: os.Stderr})

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("configuration load failed", "path", *configPath, "error", err)
		os.Exit(1)
	}

	credential, err := cfg.Credential()
	if err != nil {
		logger.Error("credential resolution failed", "error", err)
		os.Exit(1)
	}

	personas, err := cfg.Personas()
	if err != nil {
		logger.Error("persona registry build failed", "error", err)
		os.Exit(1)
	}

	p := buildProvider(cfg, credential)

	service := lectern.New(personas, p, func(o *lectern.Options) {
		o.Logger = logger
		o.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
		o.DebateTopic = cfg.DebateTopic
		o.MaxAutoExchanges = cfg.MaxAutoExchanges
	})

	srv := server.New(service, func(o *server.Options) { o.Logger = logger })

	listen := cfg.ListenAddr
	if *addr != "" {
		listen = *addr
	}

	httpServer := &http.Server{
		Addr:              listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("lecternd listening",
		"addr", listen, "provider", p.Info().Provider, "model", p.Info().Name, "personas", personas.Len())
	if err := httpServer.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func buildProvider(cfg *config.Config, credential string) provider.Provider {
	switch cfg.Provider {
	case config.ProviderAnthropic:
		return antprovider.New(func(o *antprovider.Options) {
			o.APIKey = credential
			o.Temperature = cfg.Temperature
			if cfg.Model != "" {
				o.Model = anthropic.Model(cfg.Model)
			}
		})
	default:
		return oaiprovider.New(func(o *oaiprovider.Options) {
			o.APIKey = credential
			o.Temperature = cfg.Temperature
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
		})
	}
}
