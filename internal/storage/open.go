package storage

import (
	"context"
	"fmt"
	"strings"
)

// Supported driver names.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Driver      string
	Path        string
	RedisAddr   string
	RedisDB     int
	RedisPrefix string
}

// Open builds the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Storage, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case DriverFile, "":
		return NewDir(opts.Path)
	case DriverSQLite:
		return OpenSQLite(ctx, opts.Path)
	case DriverRedis:
		return DialRedis(ctx, opts.RedisAddr, opts.RedisDB, opts.RedisPrefix)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", opts.Driver)
	}
}
