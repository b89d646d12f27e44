// Package accounts persists user identity, credentials and cumulative
// rating/record fields, and exposes the narrow store contract the game
// core consumes.
package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/tecu23/match-server/pkg/elo"
)

// ErrNotFound is returned when no account matches the lookup.
var ErrNotFound = errors.New("account not found")

// Account is a registered user with a password credential and cumulative
// game record.
type Account struct {
	ID          string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Username    string    `gorm:"uniqueIndex;not null"                           json:"username"`
	Email       string    `gorm:"uniqueIndex;not null"                           json:"email"`
	Password    string    `gorm:"not null"                                       json:"-"`
	Rating      int       `gorm:"default:1000"                                   json:"rating"`
	GamesPlayed int       `gorm:"default:0"                                      json:"games_played"`
	GamesWon    int       `gorm:"default:0"                                      json:"games_won"`
	GamesLost   int       `gorm:"default:0"                                      json:"games_lost"`
	GamesDrawn  int       `gorm:"default:0"                                      json:"games_drawn"`
	CreatedAt   time.Time `gorm:"autoCreateTime"                                 json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"                                 json:"updated_at"`
}

// Public strips fields that must never leave the server.
func (a Account) Public() Account {
	a.Password = ""
	a.Email = ""
	return a
}

// Store is the account persistence contract. UpdateRating and
// IncrementStats must each be atomic per account row; the rating trigger
// relies on that rather than on any cross-account transaction.
type Store interface {
	Create(ctx context.Context, account *Account) error
	FindByID(ctx context.Context, id string) (*Account, error)
	FindByUsername(ctx context.Context, username string) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	UpdateRating(ctx context.Context, id string, newRating int) error
	IncrementStats(ctx context.Context, id string, result elo.Result) error
	Leaderboard(ctx context.Context, limit int) ([]Account, error)
}
