package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jmorgan84/golf-draft-backend/internal/engine"
)

// LeagueRecord is the persisted unit: one whole draft snapshot per
// league, read and written in full. The serial primary key is the
// league id, so ids increase monotonically with creation order.
type LeagueRecord struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	State     []byte `gorm:"type:jsonb"`
}

func (LeagueRecord) TableName() string { return "leagues" }

// Export pairs a league id with its snapshot for the backup mirror.
type Export struct {
	ID    uint            `json:"id"`
	State engine.Snapshot `json:"state"`
}

type LeagueStore struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(db *gorm.DB, log *zap.Logger) (*LeagueStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := db.AutoMigrate(&LeagueRecord{}); err != nil {
		return nil, fmt.Errorf("migrate leagues: %w", err)
	}
	return &LeagueStore{db: db, log: log}, nil
}

// CreateLeague inserts an empty, not-yet-seeded league and returns
// its assigned id.
func (s *LeagueStore) CreateLeague(teamNames []string) (uint, engine.Snapshot, error) {
	snap := engine.NewState(teamNames).Snapshot()
	data, err := json.Marshal(snap)
	if err != nil {
		return 0, engine.Snapshot{}, fmt.Errorf("encode league state: %w", err)
	}

	record := LeagueRecord{State: data}
	if err := s.db.Create(&record).Error; err != nil {
		return 0, engine.Snapshot{}, fmt.Errorf("create league: %w", err)
	}
	return record.ID, snap, nil
}

func (s *LeagueStore) LoadLeague(id uint) (engine.Snapshot, bool, error) {
	var record LeagueRecord
	err := s.db.First(&record, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return engine.Snapshot{}, false, nil
	}
	if err != nil {
		return engine.Snapshot{}, false, fmt.Errorf("load league %d: %w", id, err)
	}

	var snap engine.Snapshot
	if err := json.Unmarshal(record.State, &snap); err != nil {
		return engine.Snapshot{}, false, fmt.Errorf("decode league %d: %w", id, err)
	}
	return snap, true, nil
}

// SaveLeague overwrites the whole record. There are no partial
// updates; the snapshot is the unit of persistence.
func (s *LeagueStore) SaveLeague(id uint, snap engine.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode league state: %w", err)
	}
	result := s.db.Model(&LeagueRecord{}).Where("id = ?", id).Update("state", data)
	if result.Error != nil {
		return fmt.Errorf("save league %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("save league %d: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}

// ExportAll reads every league for the backup mirror. Records that no
// longer decode are skipped and logged rather than failing the sync.
func (s *LeagueStore) ExportAll() ([]Export, error) {
	var records []LeagueRecord
	if err := s.db.Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}

	exports := make([]Export, 0, len(records))
	for _, record := range records {
		var snap engine.Snapshot
		if err := json.Unmarshal(record.State, &snap); err != nil {
			s.log.Warn("skipping undecodable league record",
				zap.Uint("league", record.ID), zap.Error(err))
			continue
		}
		exports = append(exports, Export{ID: record.ID, State: snap})
	}
	return exports, nil
}
