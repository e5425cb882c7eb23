// Package main provides the entry point for the vault application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/passkeep/passkeep/cmd/app/commands"
)

func main() {
	cmd := &cli.Command{
		Name:    "passkeep",
		Usage:   "Multi-tenant credential vault",
		Version: "1.0.0",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMigrations()
				},
			},
			{
				Name:  "create-master-key",
				Usage: "Generate a new master key for group key wrapping",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "id",
						Aliases: []string{"i"},
						Value:   "",
						Usage:   "Master key ID (e.g., prod-master-key-2026)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCreateMasterKey(cmd.String("id"))
				},
			},
			{
				Name:  "generate-password",
				Usage: "Generate a random password",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "length",
						Aliases: []string{"l"},
						Value:   16,
						Usage:   "Password length",
					},
					&cli.BoolFlag{
						Name:  "no-upper",
						Usage: "Exclude uppercase letters",
					},
					&cli.BoolFlag{
						Name:  "no-lower",
						Usage: "Exclude lowercase letters",
					},
					&cli.BoolFlag{
						Name:  "no-numbers",
						Usage: "Exclude numbers",
					},
					&cli.BoolFlag{
						Name:  "no-symbols",
						Usage: "Exclude symbols",
					},
					&cli.BoolFlag{
						Name:  "allow-ambiguous",
						Usage: "Allow easily confused characters (lIoO01)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunGeneratePassword(commands.GeneratePasswordOptions{
						Length:         int(cmd.Int("length")),
						NoUpper:        cmd.Bool("no-upper"),
						NoLower:        cmd.Bool("no-lower"),
						NoNumbers:      cmd.Bool("no-numbers"),
						NoSymbols:      cmd.Bool("no-symbols"),
						AllowAmbiguous: cmd.Bool("allow-ambiguous"),
					})
				},
			},
			{
				Name:      "check-strength",
				Usage:     "Analyze the strength of a password",
				ArgsUsage: "<password>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCheckStrength(cmd.Args().First())
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
