package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCodeNotFound means no confirmation code is outstanding for the user:
// never issued, already consumed, or past its TTL.
var ErrCodeNotFound = errors.New("confirmation code not found")

// ConfirmationRecord is what the store keeps per outstanding code: the bcrypt
// hash of the code itself plus a fingerprint of the account state the code
// was bound to at issue time.
type ConfirmationRecord struct {
	CodeHash    string
	Fingerprint string
}

// ConfirmationRepository is the single-use, time-limited confirmation code
// store. A code moves Issued -> Consumed (Consume) or silently expires via
// the store's TTL; there is no way back.
type ConfirmationRepository interface {
	Store(ctx context.Context, username string, rec ConfirmationRecord, ttl time.Duration) error
	Get(ctx context.Context, username string) (*ConfirmationRecord, error)
	Consume(ctx context.Context, username string) error
}

type confirmationRepository struct {
	rdb *redis.Client
}

func NewConfirmationRepository(rdb *redis.Client) ConfirmationRepository {
	return &confirmationRepository{rdb: rdb}
}

func key(username string) string {
	return "confirmation:" + username
}

// Store writes the record under the user's key, replacing any earlier code.
// Expiry is delegated to the store's TTL.
func (r *confirmationRepository) Store(ctx context.Context, username string, rec ConfirmationRecord, ttl time.Duration) error {
	value := rec.CodeHash + "\n" + rec.Fingerprint
	if err := r.rdb.Set(ctx, key(username), value, ttl).Err(); err != nil {
		return fmt.Errorf("store confirmation code: %w", err)
	}
	return nil
}

func (r *confirmationRepository) Get(ctx context.Context, username string) (*ConfirmationRecord, error) {
	value, err := r.rdb.Get(ctx, key(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCodeNotFound
		}
		return nil, fmt.Errorf("get confirmation code: %w", err)
	}
	hash, fingerprint, ok := strings.Cut(value, "\n")
	if !ok {
		return nil, ErrCodeNotFound
	}
	return &ConfirmationRecord{CodeHash: hash, Fingerprint: fingerprint}, nil
}

// Consume deletes the code, the terminal transition for a verified code.
func (r *confirmationRepository) Consume(ctx context.Context, username string) error {
	if err := r.rdb.Del(ctx, key(username)).Err(); err != nil {
		return fmt.Errorf("consume confirmation code: %w", err)
	}
	return nil
}
