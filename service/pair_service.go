package service

import (
	"context"

	"github.com/DomeLiquid/pair/config"
	"github.com/DomeLiquid/pair/core"
	"github.com/DomeLiquid/pair/metrics"
	"github.com/DomeLiquid/pair/store"
	"github.com/fox-one/mixin-sdk-go/v2"
	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PairService keeps the pairs of a factory in sync with their persisted snapshots.
type PairService struct {
	factory *core.Factory
	store   core.PairStore
}

func New(factory *core.Factory, store core.PairStore) *PairService {
	return &PairService{factory: factory, store: store}
}

// Open wires a service from configuration: the sqlite store doubles as the operation journal
// and pair metrics go to the default prometheus registerer.
func Open(ctx context.Context, cfg *config.Config, vault core.Vault, opts ...core.OptionFunc) (*PairService, error) {
	st, err := store.Open(cfg.Store.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "open store %s", cfg.Store.DSN)
	}
	if err := st.Migrate(ctx); err != nil {
		return nil, errors.Wrap(err, "migrate store")
	}

	opts = append([]core.OptionFunc{core.WithOperateStore(st), core.WithObserver(metrics.Pair())}, opts...)
	factory, err := core.NewFactory(vault, cfg.Pair, opts...)
	if err != nil {
		return nil, err
	}
	return New(factory, st), nil
}

func (s *PairService) Factory() *core.Factory {
	return s.factory
}

// Load restores every stored pair the factory does not know yet.
func (s *PairService) Load(ctx context.Context, log core.Log) (int, error) {
	snapshots, err := s.store.ListPairs(ctx)
	if err != nil {
		return 0, err
	}

	restored := 0
	for _, snapshot := range snapshots {
		if _, ok := s.factory.Pair(snapshot.Id.String()); ok {
			continue
		}
		if _, err := s.factory.Restore(snapshot); err != nil {
			return restored, errors.Wrapf(err, "restore pair %s", snapshot.Id)
		}
		restored++
	}
	log.Info().Msgf("loaded %d of %d stored pairs", restored, len(snapshots))
	return restored, nil
}

// DeployMixin deploys a pair for two Mixin safe assets, taking symbols and precisions from the
// network metadata.
func (s *PairService) DeployMixin(ctx context.Context, log core.Log, asset, collateral *mixin.SafeAsset, oracleId string, oracleData []byte) (*core.Pair, error) {
	if asset == nil || collateral == nil {
		return nil, errors.Wrap(core.ErrUnknownAsset, "missing mixin asset")
	}
	return s.Deploy(ctx, log, core.NewAssetFromMixin(asset), core.NewAssetFromMixin(collateral), oracleId, oracleData)
}

func (s *PairService) Deploy(ctx context.Context, log core.Log, asset, collateral *core.Asset, oracleId string, oracleData []byte) (*core.Pair, error) {
	pair, err := s.factory.Deploy(log, asset, collateral, oracleId, oracleData)
	if err != nil {
		return nil, err
	}
	if err := s.Persist(ctx, pair); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *PairService) Persist(ctx context.Context, pair *core.Pair) error {
	return s.store.UpsertPair(ctx, pair.Snapshot())
}

// FindPair returns a live pair, restoring it from the store on first use.
func (s *PairService) FindPair(ctx context.Context, pairId uuid.UUID) (*core.Pair, error) {
	if pair, ok := s.factory.Pair(pairId.String()); ok {
		return pair, nil
	}

	snapshot, err := s.store.GetPair(ctx, pairId)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrapf(core.ErrPairNotFound, "pair %s", pairId)
	} else if err != nil {
		return nil, err
	}
	return s.factory.Restore(snapshot)
}

// Sweep accrues every pair, refreshes its rate and liquidates the whole debt of each user that
// is insolvent under the posture. Pairs whose oracle fails are left alone. Every touched pair
// is persisted.
func (s *PairService) Sweep(ctx context.Context, log core.Log, liquidator, to string, swapper core.Swapper, open bool) ([]*core.LiquidateResult, error) {
	var results []*core.LiquidateResult
	for _, pair := range s.factory.Pairs() {
		result, err := s.sweepPair(log, pair, liquidator, to, swapper, open)
		if err != nil {
			log.Warn().Err(err).Msgf("sweep pair %s", pair.Id)
		}
		if result != nil {
			results = append(results, result)
		}
		if err := s.Persist(ctx, pair); err != nil {
			return results, errors.Wrapf(err, "persist pair %s", pair.Id)
		}
	}
	return results, nil
}

func (s *PairService) sweepPair(log core.Log, pair *core.Pair, liquidator, to string, swapper core.Swapper, open bool) (*core.LiquidateResult, error) {
	if err := pair.Accrue(log); err != nil {
		return nil, err
	}
	if _, err := pair.UpdateExchangeRate(log); err != nil {
		return nil, err
	}

	var (
		users []string
		parts []decimal.Decimal
	)
	for _, position := range pair.Positions() {
		if position.BorrowPart.IsZero() {
			continue
		}
		solvent, err := pair.IsSolvent(position.User, open)
		if err != nil {
			return nil, err
		}
		if !solvent {
			users = append(users, position.User)
			parts = append(parts, position.BorrowPart)
		}
	}
	if len(users) == 0 {
		return nil, nil
	}

	result, err := pair.Liquidate(log, liquidator, users, parts, to, swapper, open)
	if errors.Is(err, core.ErrAllPositionsSolvent) {
		return nil, nil
	}
	return result, err
}
