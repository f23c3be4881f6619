package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/Rushen88/PDM-sub000/pkg/domain/apperrors"
	"github.com/Rushen88/PDM-sub000/pkg/domain/repositories"
	"github.com/Rushen88/PDM-sub000/pkg/infrastructure/config"
)

// Store is the PostgreSQL implementation of repositories.Store
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Verify interface compliance
var _ repositories.Store = (*Store)(nil)

// Open connects to PostgreSQL using the database section of the configuration
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*Store, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}
	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return New(db, log), nil
}

// New wraps an existing gorm connection
func New(db *gorm.DB, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: db, logger: log}
}

// Migrate creates or updates all tables
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Close releases the connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithinTx runs fn inside a database transaction
func (s *Store) WithinTx(ctx context.Context, fn repositories.TxFunc) error {
	root := s.db.WithContext(ctx)
	err := root.Transaction(func(db *gorm.DB) error {
		return fn(ctx, &tx{db: db, root: root})
	})
	if err != nil {
		s.logger.Debug("transaction rolled back", zap.Error(err))
	}
	return err
}

// Read runs fn inside a read-only database transaction
func (s *Store) Read(ctx context.Context, fn repositories.TxFunc) error {
	root := s.db.WithContext(ctx)
	return root.Transaction(func(db *gorm.DB) error {
		return fn(ctx, &tx{db: db, root: root})
	}, &sql.TxOptions{ReadOnly: true})
}

type tx struct {
	db   *gorm.DB
	// root is the pool outside the transaction, used for sequences
	root *gorm.DB
}

func (t *tx) Catalog() repositories.CatalogRepository                { return &catalogRepository{db: t.db} }
func (t *tx) Projects() repositories.ProjectRepository               { return &projectRepository{db: t.db} }
func (t *tx) Tree() repositories.TreeRepository                      { return &treeRepository{db: t.db} }
func (t *tx) Stock() repositories.StockRepository                    { return &stockRepository{db: t.db} }
func (t *tx) Requirements() repositories.RequirementRepository       { return &requirementRepository{db: t.db} }
func (t *tx) Orders() repositories.PurchaseOrderRepository           { return &orderRepository{db: t.db} }
func (t *tx) Receipts() repositories.GoodsReceiptRepository          { return &receiptRepository{db: t.db} }
func (t *tx) Contractors() repositories.ContractorDocumentRepository { return &contractorRepository{db: t.db} }
func (t *tx) Transfers() repositories.StockTransferRepository        { return &transferRepository{db: t.db} }
func (t *tx) Counts() repositories.InventoryCountRepository          { return &countRepository{db: t.db} }
func (t *tx) Sequences() repositories.SequenceRepository             { return &sequenceRepository{db: t.root} }

// forUpdate adds SELECT ... FOR UPDATE
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// first loads one row and maps gorm.ErrRecordNotFound to a NotFound error
func first(db *gorm.DB, dest any, kind, id string, query string, args ...any) error {
	err := db.Where(query, args...).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(kind, id)
	}
	return err
}

func mapAll[M any, E any](rows []M, conv func(*M) *E) []*E {
	out := make([]*E, len(rows))
	for i := range rows {
		out[i] = conv(&rows[i])
	}
	return out
}
