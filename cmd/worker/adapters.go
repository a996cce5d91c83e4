package main

import (
	"context"

	appdiscovery "github.com/dealsense/icp-engine/internal/application/discovery"
	"github.com/dealsense/icp-engine/internal/config"
	"github.com/dealsense/icp-engine/internal/infrastructure/database/postgres"
	"github.com/dealsense/icp-engine/internal/infrastructure/database/redis"
)

func postgresConfig(cfg config.DatabaseConfig) postgres.Config {
	return postgres.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		Database:        cfg.DBName,
		Username:        cfg.User,
		Password:        cfg.Password,
		SSLMode:         cfg.SSLMode,
		MaxConns:        int32(cfg.MaxConns),
		MinConns:        int32(cfg.MinConns),
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}
}

func redisConfig(cfg config.RedisConfig) redis.Config {
	return redis.Config{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		KeyPrefix:    cfg.KeyPrefix,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// lockerAdapter narrows the redis locker's concrete handle to the discovery
// service's interface.
type lockerAdapter struct {
	locker *redis.WorkspaceLocker
}

func (a lockerAdapter) TryLock(ctx context.Context, workspaceID string) (appdiscovery.LockHandle, bool, error) {
	handle, acquired, err := a.locker.TryLock(ctx, workspaceID)
	if err != nil || !acquired {
		return nil, false, err
	}
	return handle, true, nil
}

//Personal.AI order the ending
