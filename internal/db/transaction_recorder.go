package db

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lbpsync/lbpengine"
)

// EpochSnapshotRecord is the database model for one recorded lbpengine.Event:
// every Sync or Exit call that actually reconciled the position (never a
// same-epoch no-op). big.Int-shaped fields are stored as varchar(78)
// strings rather than a numeric column, since MySQL has no native
// uint256/int128.
type EpochSnapshotRecord struct {
	ID              uint      `gorm:"primaryKey;autoIncrement"`
	Timestamp       time.Time `gorm:"index;not null"`
	PoolID          string    `gorm:"index;type:varchar(66);not null"`
	Epoch           uint64    `gorm:"not null;comment:epoch-floor unix timestamp"`
	Phase           string    `gorm:"type:varchar(16);not null"`
	Action          string    `gorm:"type:varchar(32);not null;comment:no_op|reconciled|forced_sell|deferred|exited"`
	AmountCommitted string    `gorm:"type:varchar(78);not null;comment:big.Int as string"`
	CurrentMinTick  int32     `gorm:"not null"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM.
func (EpochSnapshotRecord) TableName() string {
	return "epoch_snapshots"
}

// MySQLRecorder implements lbpengine.Recorder using GORM and MySQL.
type MySQLRecorder struct {
	db *gorm.DB
}

// NewMySQLRecorder creates a new MySQLRecorder instance.
// dsn format: "user:password@tcp(host:port)/dbname?charset=utf8mb4&parseTime=True&loc=Local"
func NewMySQLRecorder(dsn string) (*MySQLRecorder, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	if err := db.AutoMigrate(&EpochSnapshotRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &MySQLRecorder{db: db}, nil
}

// NewMySQLRecorderWithDB creates a new MySQLRecorder with an existing GORM
// DB instance, for callers that already own connection pooling.
func NewMySQLRecorderWithDB(db *gorm.DB) (*MySQLRecorder, error) {
	if err := db.AutoMigrate(&EpochSnapshotRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &MySQLRecorder{db: db}, nil
}

// RecordEvent implements lbpengine.Recorder.
func (r *MySQLRecorder) RecordEvent(ev lbpengine.Event) error {
	record := EpochSnapshotRecord{
		Timestamp:       time.Now(),
		PoolID:          ev.Pool.Hex(),
		Epoch:           ev.Epoch,
		Phase:           ev.Phase,
		Action:          string(ev.Action),
		AmountCommitted: ev.AmountCommitted,
		CurrentMinTick:  ev.CurrentMinTick,
	}

	result := r.db.Create(&record)
	if result.Error != nil {
		return fmt.Errorf("failed to record epoch snapshot: %w", result.Error)
	}
	return nil
}

// GetDB returns the underlying GORM DB instance for advanced queries.
func (r *MySQLRecorder) GetDB() *gorm.DB {
	return r.db
}

// Close closes the database connection.
func (r *MySQLRecorder) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying DB: %w", err)
	}
	return sqlDB.Close()
}

// GetLatestSnapshot retrieves the most recently recorded epoch snapshot.
func (r *MySQLRecorder) GetLatestSnapshot() (*EpochSnapshotRecord, error) {
	var record EpochSnapshotRecord
	result := r.db.Order("timestamp DESC").First(&record)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get latest snapshot: %w", result.Error)
	}
	return &record, nil
}

// GetSnapshotsByTimeRange retrieves snapshots within a time range.
func (r *MySQLRecorder) GetSnapshotsByTimeRange(start, end time.Time) ([]EpochSnapshotRecord, error) {
	var records []EpochSnapshotRecord
	result := r.db.Where("timestamp BETWEEN ? AND ?", start, end).
		Order("timestamp ASC").
		Find(&records)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get snapshots by time range: %w", result.Error)
	}
	return records, nil
}

// GetSnapshotsByPool retrieves all snapshots recorded for a given pool.
func (r *MySQLRecorder) GetSnapshotsByPool(poolID string) ([]EpochSnapshotRecord, error) {
	var records []EpochSnapshotRecord
	result := r.db.Where("pool_id = ?", poolID).
		Order("epoch ASC").
		Find(&records)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get snapshots by pool: %w", result.Error)
	}
	return records, nil
}

// CountSnapshots returns the total number of snapshots in the database.
func (r *MySQLRecorder) CountSnapshots() (int64, error) {
	var count int64
	result := r.db.Model(&EpochSnapshotRecord{}).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", result.Error)
	}
	return count, nil
}
