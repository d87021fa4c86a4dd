package store

import (
	"context"
	"time"
)

// CreateUser inserts a new directory entry.
func (s *Store) CreateUser(ctx context.Context, u *User) error {
	return s.db.WithContext(ctx).Create(u).Error
}

// FindUserByID returns ErrNotFound when no user has that id.
func (s *Store) FindUserByID(ctx context.Context, userID string) (*User, error) {
	var u User
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// FindUserByEmail expects email already normalized to lower case.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// UpdateUserProfile changes display name and email.
func (s *Store) UpdateUserProfile(ctx context.Context, userID, displayName, email string) error {
	res := s.db.WithContext(ctx).Model(&User{}).Where("user_id = ?", userID).
		Updates(map[string]any{"display_name": displayName, "email": email})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateUserKey replaces the user's published public key.
func (s *Store) UpdateUserKey(ctx context.Context, userID, publicKeyPEM, fingerprint string) error {
	res := s.db.WithContext(ctx).Model(&User{}).Where("user_id = ?", userID).
		Updates(map[string]any{"public_key": publicKeyPEM, "key_fingerprint": fingerprint})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchUser records activity for the user.
func (s *Store) TouchUser(ctx context.Context, userID string, at time.Time) error {
	return s.db.WithContext(ctx).Model(&User{}).Where("user_id = ?", userID).
		Update("last_active", at).Error
}

// ListUsers returns all users ordered by email.
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := s.db.WithContext(ctx).Order("email ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
