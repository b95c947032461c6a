package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	vaultUseCase "github.com/allisson/fieldguard/internal/vault/usecase"
)

// RunCreateVaultKey generates and stores the vault key. It should run once during setup;
// the key is never rotated, so a second run fails.
//
// Requirements: a persistent DB_DRIVER with migrations applied. KMS_KEY_URI is optional.
func RunCreateVaultKey(
	ctx context.Context,
	vault vaultUseCase.VaultUseCase,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	format, err := parseFormat(format)
	if err != nil {
		return err
	}

	logger.Info("creating vault key")

	key, err := vault.CreateKey(ctx)
	if err != nil {
		return fmt.Errorf("failed to create vault key: %w", err)
	}

	if format == formatJSON {
		return writeJSON(writer, map[string]any{
			"id":         key.ID.String(),
			"name":       key.Name,
			"algorithm":  string(key.Algorithm),
			"wrapped":    key.Wrapped,
			"created_at": key.CreatedAt,
		})
	}

	_, err = fmt.Fprintf(writer, "Vault key created\n  ID: %s\n  Name: %s\n  Algorithm: %s\n  Wrapped: %t\n",
		key.ID, key.Name, key.Algorithm, key.Wrapped)
	return err
}

// RunDecryptValue prints the plaintext of a value sealed by the vault, such as the
// sanitized SSN returned by a validation.
func RunDecryptValue(
	ctx context.Context,
	vault vaultUseCase.VaultUseCase,
	writer io.Writer,
	value string,
) error {
	plaintext, err := vault.Decrypt(ctx, value)
	if err != nil {
		return fmt.Errorf("failed to decrypt value: %w", err)
	}

	_, err = fmt.Fprintln(writer, plaintext)
	return err
}
