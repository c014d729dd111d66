package users

import (
	"context"
	"fmt"

	"github.com/bankdki/stock-api/pkg/config"
	"github.com/bankdki/stock-api/pkg/db"
	"github.com/bankdki/stock-api/pkg/logger"
	"github.com/bankdki/stock-api/pkg/security"
	"gorm.io/gorm"
)

// SeedAdmin inserts the bootstrap credential when the store is empty. The
// count and insert run in one transaction so concurrent instances cannot
// both seed. An already-populated store is left untouched.
func SeedAdmin(ctx context.Context, client *db.Client, seedCfg config.SeedConfig, pwCfg config.PasswordConfig, logg *logger.Logger) error {
	if !seedCfg.Enabled {
		return nil
	}

	seeded := false
	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		count, err := repo.Count(ctx)
		if err != nil {
			return fmt.Errorf("counting users: %w", err)
		}
		if count > 0 {
			return nil
		}

		hash, err := security.HashPassword(seedCfg.AdminPassword, pwCfg)
		if err != nil {
			return fmt.Errorf("hashing seed password: %w", err)
		}
		if _, err := repo.Create(ctx, seedCfg.AdminUsername, hash); err != nil {
			return fmt.Errorf("creating seed user: %w", err)
		}
		seeded = true
		return nil
	})
	if err != nil {
		return err
	}

	if seeded && logg != nil {
		ctx = logg.WithUsername(ctx, seedCfg.AdminUsername)
		logg.Info(ctx, "seeded bootstrap credential")
	}
	return nil
}
