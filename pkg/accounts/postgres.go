package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tecu23/match-server/pkg/elo"
)

// PostgresStore is the database-backed account store.
type PostgresStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPostgresStore connects to the database at dsn and migrates the
// accounts table.
func NewPostgresStore(dsn string, logger *zap.Logger) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(&Account{}); err != nil {
		return nil, fmt.Errorf("migrate accounts: %w", err)
	}

	return &PostgresStore{db: db, logger: logger}, nil
}

// Create inserts a new account. The caller is responsible for hashing the
// password beforehand.
func (s *PostgresStore) Create(ctx context.Context, account *Account) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if account.Rating == 0 {
		account.Rating = elo.DefaultRating
	}
	return s.db.WithContext(ctx).Create(account).Error
}

// FindByID retrieves an account by its id.
func (s *PostgresStore) FindByID(ctx context.Context, id string) (*Account, error) {
	return s.findOne(ctx, "id = ?", id)
}

// FindByUsername retrieves an account by username.
func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (*Account, error) {
	return s.findOne(ctx, "username = ?", username)
}

// FindByEmail retrieves an account by email.
func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return s.findOne(ctx, "email = ?", email)
}

func (s *PostgresStore) findOne(ctx context.Context, query string, arg any) (*Account, error) {
	var account Account
	err := s.db.WithContext(ctx).Where(query, arg).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// UpdateRating sets the account's rating in a single row update.
func (s *PostgresStore) UpdateRating(ctx context.Context, id string, newRating int) error {
	res := s.db.WithContext(ctx).
		Model(&Account{}).
		Where("id = ?", id).
		Update("rating", newRating)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementStats bumps the played counter and the counter matching result
// in one atomic row update.
func (s *PostgresStore) IncrementStats(ctx context.Context, id string, result elo.Result) error {
	updates := map[string]any{
		"games_played": gorm.Expr("games_played + 1"),
	}
	switch result {
	case elo.Win:
		updates["games_won"] = gorm.Expr("games_won + 1")
	case elo.Loss:
		updates["games_lost"] = gorm.Expr("games_lost + 1")
	case elo.Draw:
		updates["games_drawn"] = gorm.Expr("games_drawn + 1")
	}

	res := s.db.WithContext(ctx).
		Model(&Account{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Leaderboard returns the top accounts by rating.
func (s *PostgresStore) Leaderboard(ctx context.Context, limit int) ([]Account, error) {
	var list []Account
	err := s.db.WithContext(ctx).
		Order("rating DESC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
