package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/MohammadRstm/BookApp/internal/domain"
	"github.com/MohammadRstm/BookApp/internal/store"
)

// CreateUser saves a user and its email index atomically.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	key := userKey(user.ID)
	idxKey := emailKey(domain.NormalizeEmail(user.Email))

	err := s.update(func(txn *badger.Txn) error {
		for _, k := range [][]byte{key, idxKey} {
			taken, err := exists(txn, k)
			if err != nil {
				return fmt.Errorf("check user exists: %w", err)
			}
			if taken {
				return store.ErrAlreadyExists
			}
		}

		if err := setJSON(txn, key, user); err != nil {
			return err
		}
		return txn.Set(idxKey, []byte(user.ID))
	})
	if err != nil {
		return err
	}

	s.logger.DebugContext(ctx, "user created", "id", user.ID)
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(_ context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, userKey(id), &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail looks the user up through the email index.
func (s *Store) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailKey(domain.NormalizeEmail(email)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return store.ErrNotFound
		}
		if err != nil {
			return err
		}
		userID, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return getJSON(txn, userKey(string(userID)), &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdatePasswordHash replaces a user's stored hash.
func (s *Store) UpdatePasswordHash(_ context.Context, userID, hash string) error {
	return s.update(func(txn *badger.Txn) error {
		var user domain.User
		if err := getJSON(txn, userKey(userID), &user); err != nil {
			return err
		}
		user.PasswordHash = hash
		user.UpdatedAt = time.Now().UTC()
		return setJSON(txn, userKey(userID), &user)
	})
}

// usersByID loads the users named in ids, skipping any that are missing.
func usersByID(txn *badger.Txn, ids map[string]struct{}) (map[string]*domain.User, error) {
	users := make(map[string]*domain.User, len(ids))
	for userID := range ids {
		var u domain.User
		err := getJSON(txn, userKey(userID), &u)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		users[userID] = &u
	}
	return users, nil
}
