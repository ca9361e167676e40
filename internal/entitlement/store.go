package entitlement

import (
	"context"
	"time"
)

// Store opens transactions against the record store. Everything fn does
// through tx commits or rolls back together; returning an error rolls back.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the set of reads and writes a gated action needs. LockAccount must
// hold a lock on the user's account row until the transaction ends so that
// concurrent requests for the same user serialize.
type Tx interface {
	LockAccount(ctx context.Context, userID uint) (Account, error)
	SaveCounters(ctx context.Context, acc Account) error

	CountFavorites(ctx context.Context, userID uint) (int64, error)
	HasFavorite(ctx context.Context, userID, exampleID uint) (bool, error)
	CreateFavorite(ctx context.Context, fav Favorite) error

	CountCommentsSince(ctx context.Context, userID uint, since time.Time) (int64, error)
	CreateComment(ctx context.Context, c *Comment) error

	RecordDownload(ctx context.Context, d Download) error
}

type Favorite struct {
	UserID    uint
	ExampleID uint
	CreatedAt time.Time
}

type Comment struct {
	ID        uint
	UserID    uint
	ExampleID uint
	Text      string
	CreatedAt time.Time
}

type Download struct {
	UserID    uint
	ExampleID uint
	CreatedAt time.Time
}
