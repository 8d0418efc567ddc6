package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/arlberg/slack2md/internal"
	pkgconfig "github.com/arlberg/slack2md/pkg/config"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cmd.IsSet("group-by-day") {
		cfg.Convert.GroupByDay = cmd.Bool("group-by-day")
	}
	if cmd.IsSet("ignore-channel-login") {
		cfg.Convert.IgnoreChannelLogin = cmd.Bool("ignore-channel-login")
	}
	return cfg, nil
}

func runConvert(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithServe(true)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(cfg)
}

func main() {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to config file",
			DefaultText: "config/config.yaml",
			Value:       "config/config.yaml",
			Sources:     cli.EnvVars("APP_CONFIG_FILE"),
		},
		&cli.BoolFlag{
			Name:  "group-by-day",
			Usage: "Group messages by UTC calendar day instead of by source file",
		},
		&cli.BoolFlag{
			Name:  "ignore-channel-login",
			Usage: "Drop channel-join notices from the output",
		},
	}

	cmd := &cli.Command{
		Name:   "slack2md",
		Usage:  "Convert an exported chat-workspace log into a browsable Markdown archive",
		Action: runConvert,
		Flags:  flags,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Convert, then serve the archive over HTTP and re-convert on export changes",
				Action: runServe,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the converted archive over MCP stdio",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
