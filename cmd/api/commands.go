package main

import (
	"context"
	"os/signal"
	"syscall"

	"todoList/internal/app"
	"todoList/internal/config"
	"todoList/internal/migrations"

	"github.com/spf13/cobra"
)

const defaultConfigPath = "config.yml"

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "todo-list",
		Short: "HTTP сервис списка задач",
		Long: `todo-list хранит задачи списка дел (type, name, date, description)
и отдаёт их по HTTP. Без подкоманды запускает сервер.

КОНФИГУРАЦИЯ:
  YAML файл (--config, по умолчанию config.yml), поверх него переменные окружения:
    SERVER_HOST, SERVER_PORT, REPOSITORY_TYPE (inmemory|postgres|sqlite),
    DATABASE_URL, SQLITE_PATH, LOG_DEVELOPMENT, RATE_LIMIT_RPM`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "путь к YAML конфигу")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Запустить HTTP сервер",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd.Context(), configPath)
			},
		},
		&cobra.Command{
			Use:       "migrate [up|down]",
			Short:     "Применить или откатить миграции схемы",
			Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
			ValidArgs: []string{string(migrations.Up), string(migrations.Down)},
			RunE: func(cmd *cobra.Command, args []string) error {
				dir, err := migrations.ParseDirection(args[0])
				if err != nil {
					return err
				}

				cfg, err := config.Load(configPath)
				if err != nil {
					return err
				}
				return app.Migrate(cmd.Context(), cfg, dir)
			},
		},
	)

	return root
}

func serve(ctx context.Context, configPath string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	a := app.New(cfg)
	if err := a.Init(ctx); err != nil {
		return err
	}
	return a.Run(ctx)
}
