package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/j-veylop/cursor-usage/internal/logger"
	"github.com/j-veylop/cursor-usage/internal/models"
)

// Credential lookup failures.
var (
	ErrNoUserID      = errors.New("could not extract user ID from database")
	ErrNoAccessToken = errors.New("could not extract access token from database")
)

// GetValue returns the value stored under key. ok is false when the key is
// absent or its value is NULL or empty.
func (db *DB) GetValue(ctx context.Context, key string) (value string, ok bool, err error) {
	var v sql.NullString
	err = db.QueryRowContext(ctx, sqlSelectValue, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !v.Valid || v.String == "" {
		return "", false, nil
	}
	return v.String, true, nil
}

type statsigBootstrap struct {
	User struct {
		UserID string `json:"userID"`
	} `json:"user"`
}

// LoadCredentials reads the signed-in user's ID, access token, email and
// membership. Email and membership are optional.
func (db *DB) LoadCredentials(ctx context.Context) (*models.Credentials, error) {
	creds := &models.Credentials{}

	bootstrap, ok, err := db.GetValue(ctx, KeyStatsigBootstrap)
	if err != nil {
		return nil, err
	}
	if ok {
		creds.UserID = parseUserID(bootstrap)
	}

	creds.AccessToken, _, err = db.GetValue(ctx, KeyAccessToken)
	if err != nil {
		return nil, err
	}
	creds.Email, _, err = db.GetValue(ctx, KeyEmail)
	if err != nil {
		return nil, err
	}
	creds.Membership, _, err = db.GetValue(ctx, KeyMembership)
	if err != nil {
		return nil, err
	}

	if creds.UserID == "" {
		return nil, ErrNoUserID
	}
	if creds.AccessToken == "" {
		return nil, ErrNoAccessToken
	}

	logger.Debug("loaded credentials", "email", creds.Email, "membership", creds.Membership)
	return creds, nil
}

func parseUserID(bootstrap string) string {
	var sb statsigBootstrap
	if err := json.Unmarshal([]byte(bootstrap), &sb); err != nil {
		logger.Warn("failed to extract user ID from statsigBootstrap", "error", err)
		return ""
	}
	return sb.User.UserID
}

// LoadCredentials opens the state database at path, reads credentials and
// closes it again.
func LoadCredentials(ctx context.Context, path string) (*models.Credentials, error) {
	db, err := Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.Warn("failed to close state database", "error", cerr)
		}
	}()
	return db.LoadCredentials(ctx)
}
