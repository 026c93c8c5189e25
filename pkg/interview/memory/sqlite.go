package memory

import (
	"context"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	apperrors "github.com/parley-dev/parley/pkg/interview/errors"
	"github.com/parley-dev/parley/pkg/interview/events"
	"github.com/parley-dev/parley/pkg/interview/thinker"
)

// frameRecord is the gorm model backing the frames table
type frameRecord struct {
	ID        string    `gorm:"primaryKey"`
	Address   string    `gorm:"index"`
	Role      string    `gorm:"index"`
	Content   string
	CreatedAt time.Time `gorm:"index"`
}

func (frameRecord) TableName() string { return "frames" }

// SQLiteStore persists frames in a sqlite database
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (or creates) the database at path and migrates the
// frames table
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeMemoryWrite, "failed to open sqlite store", err)
	}
	if err := db.AutoMigrate(&frameRecord{}); err != nil {
		return nil, apperrors.New(apperrors.ErrCodeMemoryWrite, "failed to migrate frames table", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Add appends a frame to the log
func (s *SQLiteStore) Add(ctx context.Context, frame events.Frame) error {
	record := frameRecord{
		ID:        frame.ID,
		Address:   frame.Address,
		Role:      frame.Role,
		Content:   frame.Content,
		CreatedAt: frame.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return apperrors.New(apperrors.ErrCodeMemoryWrite, "failed to store frame", err)
	}
	return nil
}

// ExtractForGeneration projects matching frames into thinker messages
func (s *SQLiteStore) ExtractForGeneration(ctx context.Context, filter Filter, customInstruction string) ([]thinker.Message, error) {
	query := s.db.WithContext(ctx).Model(&frameRecord{}).Order("created_at asc")
	if filter.Address != "" {
		query = query.Where("address = ?", filter.Address)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}

	var records []frameRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, apperrors.New(apperrors.ErrCodeMemoryRead, "failed to load frames", err)
	}

	frames := make([]events.Frame, 0, len(records))
	for _, record := range records {
		frames = append(frames, events.Frame{
			ID:        record.ID,
			Address:   record.Address,
			Role:      record.Role,
			Content:   record.Content,
			CreatedAt: record.CreatedAt,
		})
	}
	return project(frames, customInstruction), nil
}
