package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	checkpointx "github.com/harborlend/mortgage-assistant/agent/checkpoint"
	contractx "github.com/harborlend/mortgage-assistant/agent/contract"
	kbx "github.com/harborlend/mortgage-assistant/agent/kb"
	llmx "github.com/harborlend/mortgage-assistant/agent/llm"
	swarmx "github.com/harborlend/mortgage-assistant/agent/swarm"
	configx "github.com/harborlend/mortgage-assistant/pkg/config"
	_ "github.com/harborlend/mortgage-assistant/pkg/logger/autoload"
	modelgwx "github.com/harborlend/mortgage-assistant/pkg/modelgw"
	runtimex "github.com/harborlend/mortgage-assistant/runtime"
)

type AppConfig struct {
	CheckpointBackend string `envconfig:"CHECKPOINT_BACKEND" split_words:"true" default:"memory"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("")
	llmCfg := configx.MustNew[llmx.Config]("LLM")
	kbCfg := configx.MustNew[kbx.Config]("KB")
	swarmCfg := configx.MustNew[swarmx.Config]("SWARM")
	serverCfg := configx.MustNew[runtimex.ServerConfig]("SERVER")

	// Fail fast on gateway credentials before any agent wiring starts.
	if modelgwx.NewClient(llmCfg.GatewayFor(contractx.DefaultAgent)) == nil {
		log.Fatal().Msg("inference gateway client could not be created, check credentials")
	}

	saver, cleanup := newSaver(ctx, appCfg.CheckpointBackend)
	defer cleanup()

	kbTool := kbx.Setup(ctx, *kbCfg)

	assistant, err := swarmx.New(ctx, *llmCfg, saver, kbTool, *swarmCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to assemble agent swarm")
	}

	server := runtimex.NewServer(assistant, *serverCfg)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown")
		}
	}()

	if err := server.Run(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("assistant runtime stopped")
}

func newSaver(ctx context.Context, backend string) (checkpointx.Saver, func()) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "memory":
		return checkpointx.NewMemorySaver(), func() {}
	case "postgres":
		pgCfg := configx.MustNew[checkpointx.PostgresConfig]("CHECKPOINT_POSTGRES")
		saver, err := checkpointx.NewPostgresSaver(ctx, *pgCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open postgres checkpoint store")
		}
		return saver, func() {
			if err := saver.Close(); err != nil {
				log.Error().Err(err).Msg("close postgres checkpoint store")
			}
		}
	default:
		log.Fatal().Str("backend", backend).Msg("unknown checkpoint backend")
		return nil, nil
	}
}
