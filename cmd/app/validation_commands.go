package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/fieldguard/cmd/app/commands"
	"github.com/allisson/fieldguard/internal/app"
	"github.com/allisson/fieldguard/internal/config"
)

func getValidationCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "validate",
			Usage: "Validate a JSON object against a pre-built schema",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "schema",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Schema name (login, registration, payment, bank_account, credit_card, address)",
				},
				&cli.StringFlag{
					Name:     "data",
					Aliases:  []string{"d"},
					Required: true,
					Usage:    `Form data as a JSON object, e.g. '{"email":"a@b.co"}'`,
				},
				&cli.StringFlag{
					Name:    "user-id",
					Aliases: []string{"u"},
					Usage:   "User identifier for lockout tracking",
				},
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

				useCase, err := container.ValidationUseCase()
				if err != nil {
					return err
				}

				return commands.RunValidate(
					ctx,
					useCase,
					commands.DefaultIO().Writer,
					cmd.String("schema"),
					cmd.String("data"),
					cmd.String("user-id"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "password-strength",
			Usage: "Score a password from 0 to 6",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "password",
					Aliases:  []string{"p"},
					Required: true,
					Usage:    "Password to score",
				},
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

				useCase, err := container.ValidationUseCase()
				if err != nil {
					return err
				}

				return commands.RunPasswordStrength(
					ctx,
					useCase,
					commands.DefaultIO().Writer,
					cmd.String("password"),
					cmd.String("format"),
				)
			},
		},
	}
}
