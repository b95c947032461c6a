package service

import (
	"context"
	"fmt"

	"gocloud.dev/secrets"

	vaultDomain "github.com/allisson/fieldguard/internal/vault/domain"

	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// KeeperOpener opens a KMS keeper from a gocloud.dev secrets URI, for example
// "base64key://...", "awskms:///alias/name", "gcpkms://projects/...",
// "azurekeyvault://..." or "hashivault://name".
type KeeperOpener interface {
	OpenKeeper(ctx context.Context, keyURI string) (vaultDomain.KMSKeeper, error)
}

type keeperOpener struct{}

// NewKeeperOpener creates a KeeperOpener backed by gocloud.dev/secrets.
func NewKeeperOpener() KeeperOpener {
	return &keeperOpener{}
}

func (k *keeperOpener) OpenKeeper(ctx context.Context, keyURI string) (vaultDomain.KMSKeeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}
