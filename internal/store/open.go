package store

import (
	"fmt"

	"github.com/ashureev/propdash/internal/config"
)

// Open returns the durable token store selected by cfg.
func Open(cfg *config.Config) (TokenStore, error) {
	switch cfg.CredentialBackend {
	case config.BackendRedis:
		s, err := NewRedis(cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendSQLite, "":
		s, err := NewSQLite(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown credential backend %q", cfg.CredentialBackend)
	}
}
