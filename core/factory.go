package core

import (
	"sync"

	"github.com/pkg/errors"
)

// Factory deploys independent pairs sharing one vault and one master configuration.
type Factory struct {
	mu sync.Mutex

	vault   Vault
	config  PairConfig
	oracles OracleRegistry
	opts    []OptionFunc
	pairs   map[string]*Pair
}

func NewFactory(vault Vault, config PairConfig, opts ...OptionFunc) (*Factory, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Factory{
		vault:   vault,
		config:  config,
		oracles: OracleRegistry{},
		opts:    opts,
		pairs:   map[string]*Pair{},
	}, nil
}

func (f *Factory) Config() PairConfig {
	return f.config
}

func (f *Factory) RegisterOracle(oracleId string, oracle Oracle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.oracles[oracleId] = oracle
}

// Deploy creates a pair for (asset, collateral, oracle, oracleData). Each tuple may be deployed once.
func (f *Factory) Deploy(log Log, asset, collateral *Asset, oracleId string, oracleData []byte) (*Pair, error) {
	if asset == nil || collateral == nil || asset.AssetID == "" || collateral.AssetID == "" {
		return nil, ErrUnknownAsset
	}
	if asset.AssetID == collateral.AssetID {
		return nil, errors.Wrap(ErrInvalidConfig, "asset and collateral must differ")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	oracle, ok := f.oracles.Lookup(oracleId)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownOracle, "oracle %s", oracleId)
	}

	id := GenPairId(asset.AssetID, collateral.AssetID, oracleId, oracleData)
	if _, ok := f.pairs[id.String()]; ok {
		return nil, errors.Wrapf(ErrPairExists, "pair %s", id)
	}

	pair := NewPair(f.vault, oracle, *asset, *collateral, oracleId, oracleData, f.config, f.opts...)
	f.pairs[id.String()] = pair
	log.Info().Msgf("deployed pair %s: asset %s, collateral %s, oracle %s", pair.Id, asset.Symbol, collateral.Symbol, oracleId)
	return pair, nil
}

// Restore registers a persisted pair with the factory, resolving its oracle by id.
func (f *Factory) Restore(snapshot *PairSnapshot) (*Pair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	oracle, ok := f.oracles.Lookup(snapshot.OracleId)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownOracle, "oracle %s", snapshot.OracleId)
	}
	pair := RestorePair(snapshot, f.vault, oracle, f.opts...)
	f.pairs[pair.Id.String()] = pair
	return pair, nil
}

func (f *Factory) Pair(pairId string) (*Pair, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pair, ok := f.pairs[pairId]
	return pair, ok
}

func (f *Factory) Pairs() []*Pair {
	f.mu.Lock()
	defer f.mu.Unlock()
	pairs := make([]*Pair, 0, len(f.pairs))
	for _, pair := range f.pairs {
		pairs = append(pairs, pair)
	}
	return pairs
}
