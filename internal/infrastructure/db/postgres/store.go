package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ecomhub/storefront-api/internal/core/domain"
)

var errDBUnavailable = errors.New("db unavailable")

// Store owns the relational connection used by every repository.
type Store struct {
	DB *gorm.DB
}

// NewStore opens the Postgres connection. The pool is verified with a ping
// bounded by timeout.
func NewStore(ctx context.Context, dsn string, timeout time.Duration) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("POSTGRES_DSN is required")
	}

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	s := &Store{DB: gdb}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := s.Ping(pingCtx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates or updates the schema.
func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errDBUnavailable
	}
	err := s.DB.WithContext(ctx).AutoMigrate(
		&RoleModel{},
		&UserModel{},
		&CategoryModel{},
		&ProductModel{},
		&CartModel{},
		&CartItemModel{},
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// SeedRoles makes sure every reference role row exists.
func (s *Store) SeedRoles(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errDBUnavailable
	}
	for _, r := range domain.AllRoles {
		model := RoleModel{Name: r.String()}
		if err := s.DB.WithContext(ctx).Where(RoleModel{Name: r.String()}).FirstOrCreate(&model).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", r, err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errDBUnavailable
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return fmt.Errorf("postgres handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres ping: %w", err)
	}
	return nil
}

func (s *Store) Close() {
	if s == nil || s.DB == nil {
		return
	}
	if sqlDB, err := s.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
