// Package storage persists the small amount of client state that must
// survive restarts: the bearer token and the cached user record.
package storage

import (
	"context"
	"fmt"
	"strings"
)

// Keys written by the client core
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Store is a durable string key/value store
type Store interface {
	// Get returns the value for key and whether it was present
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Options selects and configures a backend
type Options struct {
	Driver        string
	Path          string
	DSN           string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
	EncryptionKey string
}

// Open creates the backend named by opts.Driver, wrapped with encryption
// when an encryption key is configured
func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		store Store
		err   error
	)

	switch strings.ToLower(opts.Driver) {
	case "memory":
		store = NewMemory()
	case "", "file":
		store, err = NewFile(opts.Path)
	case "sqlite":
		store, err = NewSQLite(opts.Path)
	case "postgres":
		store, err = NewPostgres(ctx, opts.DSN)
	case "redis":
		store, err = NewRedis(ctx, RedisOptions{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
			Prefix:   opts.KeyPrefix,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	if opts.EncryptionKey != "" {
		enc, err := NewEncrypted(store, opts.EncryptionKey)
		if err != nil {
			store.Close()
			return nil, err
		}
		return enc, nil
	}
	return store, nil
}
