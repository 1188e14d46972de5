package store

import (
	"context"

	"github.com/DomeLiquid/pair/core"
	"github.com/glebarez/sqlite"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db *gorm.DB
}

var (
	_ core.PairStore    = (*Store)(nil)
	_ core.OperateStore = (*Store)(nil)
)

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Open connects to a sqlite database, e.g. "file::memory:?cache=shared" or a file path.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return New(db), nil
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&Pair{}, &Position{}, &Operate{})
}

// UpsertPair replaces the stored pair row and its full position set.
func (s *Store) UpsertPair(ctx context.Context, snapshot *core.PairSnapshot) error {
	pair, positions := pairFromSnapshot(snapshot)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(pair).Error; err != nil {
			return err
		}
		if err := tx.Where("pair_id = ?", pair.Id).Delete(&Position{}).Error; err != nil {
			return err
		}
		if len(positions) == 0 {
			return nil
		}
		return tx.Create(&positions).Error
	})
}

func (s *Store) GetPair(ctx context.Context, pairId uuid.UUID) (*core.PairSnapshot, error) {
	db := s.db.WithContext(ctx)

	var pair Pair
	if err := db.First(&pair, "id = ?", pairId.String()).Error; err != nil {
		return nil, err
	}
	var positions []*Position
	if err := db.Where("pair_id = ?", pair.Id).Order("account").Find(&positions).Error; err != nil {
		return nil, err
	}
	return pair.snapshot(positions)
}

func (s *Store) ListPairs(ctx context.Context) ([]*core.PairSnapshot, error) {
	var pairs []Pair
	if err := s.db.WithContext(ctx).Order("created_at").Find(&pairs).Error; err != nil {
		return nil, err
	}

	snapshots := make([]*core.PairSnapshot, 0, len(pairs))
	for _, pair := range pairs {
		id, err := uuid.FromString(pair.Id)
		if err != nil {
			return nil, err
		}
		snapshot, err := s.GetPair(ctx, id)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}

func (s *Store) CreateOperate(ctx context.Context, operate *core.Operate) error {
	return s.db.WithContext(ctx).Create(operateFromCore(operate)).Error
}

// ListOperates returns the newest journal entries of a pair first. An empty user matches every
// user and a non-positive createdBeforeAt disables the time bound.
func (s *Store) ListOperates(ctx context.Context, pairId uuid.UUID, user string, createdBeforeAt, limit int64) ([]core.Operate, error) {
	query := s.db.WithContext(ctx).Where("pair_id = ?", pairId.String())
	if user != "" {
		query = query.Where("account = ?", user)
	}
	if createdBeforeAt > 0 {
		query = query.Where("created_at < ?", createdBeforeAt)
	}
	if limit > 0 {
		query = query.Limit(int(limit))
	}

	var rows []Operate
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	operates := make([]core.Operate, 0, len(rows))
	for _, row := range rows {
		operates = append(operates, row.operate())
	}
	return operates, nil
}
