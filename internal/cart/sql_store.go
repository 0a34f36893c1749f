package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/iotfarm-web/pkg/db/models"
	"github.com/angelmondragon/iotfarm-web/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLStore keeps snapshots in the cart_snapshots table.
type SQLStore struct {
	db   *gorm.DB
	logg *logger.Logger
	now  func() time.Time
}

func NewSQLStore(db *gorm.DB, logg *logger.Logger) (*SQLStore, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm db required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &SQLStore{db: db, logg: logg, now: time.Now}, nil
}

// Migrate creates the snapshot table.
func (s *SQLStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&models.CartSnapshot{})
}

func (s *SQLStore) Load(ctx context.Context, identity string) ([]Item, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return []Item{}, nil
	}
	var row models.CartSnapshot
	err := s.db.WithContext(ctx).Where("identity = ?", identity).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []Item{}, nil
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return decodeSnapshot(ctx, s.logg, identity, row.Payload), nil
}

func (s *SQLStore) Save(ctx context.Context, identity string, items []Item) error {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil
	}
	payload, err := encodeSnapshot(items)
	if err != nil {
		return err
	}
	row := models.CartSnapshot{
		Identity:  identity,
		Payload:   payload,
		UpdatedAt: s.now().UTC(),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "identity"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *SQLStore) Clear(ctx context.Context, identity string) error {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("identity = ?", identity).Delete(&models.CartSnapshot{}).Error; err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
