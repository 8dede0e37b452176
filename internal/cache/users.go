package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carepredict/authapi/internal/auth"
	"github.com/carepredict/authapi/internal/model"
	"github.com/carepredict/authapi/internal/repository"
)

// All user keys share the {users} hash tag so scripts touching several of
// them stay in one cluster slot.
const (
	userRecordPrefix   = "{users}:id:"
	userEmailPrefix    = "{users}:email:"
	userUsernamePrefix = "{users}:username:"
)

// cachedUser is the JSON record stored under userRecordPrefix.
type cachedUser struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// insertUserScript claims the email and username index keys and writes the
// record in one atomic step. Returns 0 on success, 1 if the email is taken,
// 2 if the username is taken.
var insertUserScript = redis.NewScript(`
	local email_key = KEYS[1]
	local username_key = KEYS[2]
	local record_key = KEYS[3]
	local id = ARGV[1]
	local record = ARGV[2]

	if redis.call('EXISTS', email_key) == 1 then
		return 1
	end
	if redis.call('EXISTS', username_key) == 1 then
		return 2
	end

	redis.call('SET', record_key, record)
	redis.call('SET', email_key, id)
	redis.call('SET', username_key, id)
	return 0
`)

// deleteUserScript removes the record and both index keys.
var deleteUserScript = redis.NewScript(`
	local record_key = KEYS[1]
	local email_key = KEYS[2]
	local username_key = KEYS[3]

	if redis.call('DEL', record_key) == 0 then
		return 0
	end
	redis.call('DEL', email_key, username_key)
	return 1
`)

// CreateUser stores user if neither its email nor its username is taken.
func (c *Cache) CreateUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(cachedUser{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	keys := []string{emailKey(user.Email), usernameKey(user.Username), userRecordPrefix + user.ID}
	result, err := insertUserScript.Run(ctx, c.client, keys, user.ID, data).Int()
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	switch result {
	case 0:
		return nil
	case 1:
		return repository.ErrEmailExists
	case 2:
		return repository.ErrUsernameExists
	default:
		return fmt.Errorf("failed to create user: unexpected script result %d", result)
	}
}

// GetUserByID retrieves a user by ID.
func (c *Cache) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	data, err := c.client.Get(ctx, userRecordPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	var cached cachedUser
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("decode user record: %w", err)
	}

	return &model.User{
		ID:           cached.ID,
		Username:     cached.Username,
		Email:        cached.Email,
		PasswordHash: cached.PasswordHash,
		CreatedAt:    cached.CreatedAt,
	}, nil
}

// GetUserByEmail retrieves a user by email.
func (c *Cache) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return c.getUserByIndex(ctx, emailKey(email), "email")
}

// GetUserByUsername retrieves a user by username.
func (c *Cache) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return c.getUserByIndex(ctx, usernameKey(username), "username")
}

// DeleteUser removes a user and releases its email and username.
func (c *Cache) DeleteUser(ctx context.Context, id string) error {
	user, err := c.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	keys := []string{userRecordPrefix + id, emailKey(user.Email), usernameKey(user.Username)}
	deleted, err := deleteUserScript.Run(ctx, c.client, keys).Int()
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if deleted == 0 {
		return repository.ErrUserNotFound
	}
	return nil
}

func (c *Cache) getUserByIndex(ctx context.Context, indexKey, field string) (*model.User, error) {
	id, err := c.client.Get(ctx, indexKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", field, err)
	}
	return c.GetUserByID(ctx, id)
}

// Index keys hash their input so key length stays bounded.
func emailKey(email string) string {
	return userEmailPrefix + auth.QuickHash(email)
}

func usernameKey(username string) string {
	return userUsernamePrefix + auth.QuickHash(username)
}
