package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/fieldguard/cmd/app/commands"
	"github.com/allisson/fieldguard/internal/app"
	"github.com/allisson/fieldguard/internal/config"
)

func getVaultCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-vault-key",
			Usage: "Generate and store the key protecting sensitive values",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				vault, err := container.VaultUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateVaultKey(
					ctx,
					vault,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "decrypt-value",
			Usage: "Decrypt a value sealed by the vault",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "value",
					Aliases:  []string{"v"},
					Required: true,
					Usage:    "Ciphertext in v1:<base64> form",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				vault, err := container.VaultUseCase()
				if err != nil {
					return err
				}

				return commands.RunDecryptValue(ctx, vault, commands.DefaultIO().Writer, cmd.String("value"))
			},
		},
	}
}
