package core

import (
	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type (
	// PairSnapshot is the full persisted form of a pair.
	PairSnapshot struct {
		Id         uuid.UUID  `json:"id"`
		Asset      Asset      `json:"asset"`
		Collateral Asset      `json:"collateral"`
		OracleId   string     `json:"oracleId"`
		OracleData []byte     `json:"oracleData"`
		Config     PairConfig `json:"config"`

		PairState `json:"state"`

		Positions []*UserPosition `json:"positions"`
		CreatedAt int64           `json:"createdAt"`
		UpdatedAt int64           `json:"updatedAt"`
	}
)

func (p *Pair) Snapshot() *PairSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &PairSnapshot{
		Id:         p.Id,
		Asset:      p.Asset,
		Collateral: p.Collateral,
		OracleId:   p.OracleId,
		OracleData: append([]byte(nil), p.OracleData...),
		Config:     p.Config,
		PairState:  p.state,
		Positions:  p.positionsLocked(),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.clk.Now().Unix(),
	}
}

// RestorePair rebuilds a live pair from a snapshot, attaching the given collaborators.
func RestorePair(snapshot *PairSnapshot, vault Vault, oracle Oracle, opts ...OptionFunc) *Pair {
	p := NewPair(vault, oracle, snapshot.Asset, snapshot.Collateral, snapshot.OracleId, snapshot.OracleData, snapshot.Config, opts...)
	p.Id = snapshot.Id
	p.CreatedAt = snapshot.CreatedAt
	p.state = snapshot.PairState
	for _, position := range snapshot.Positions {
		p.positions[position.User] = position.Clone()
	}
	return p
}

// pairTx stages a mutation: totals are copied on begin, positions on first touch.
// Nothing reaches the pair until commit.
type pairTx struct {
	pair      *Pair
	state     PairState
	positions map[string]*UserPosition

	interest   decimal.Decimal
	settlement func() error
}

type txSavepoint struct {
	state    PairState
	user     string
	position *UserPosition
}

func (p *Pair) begin() *pairTx {
	return &pairTx{
		pair:      p,
		state:     p.state,
		positions: map[string]*UserPosition{},
		interest:  decimal.Zero,
	}
}

func (tx *pairTx) position(user string) *UserPosition {
	if position, ok := tx.positions[user]; ok {
		return position
	}
	position, ok := tx.pair.positions[user]
	if ok {
		position = position.Clone()
	} else {
		position = NewUserPosition(user)
	}
	tx.positions[user] = position
	return position
}

func (tx *pairTx) savepoint(user string) txSavepoint {
	return txSavepoint{
		state:    tx.state,
		user:     user,
		position: tx.position(user).Clone(),
	}
}

func (tx *pairTx) rollbackTo(sp txSavepoint) {
	tx.state = sp.state
	tx.positions[sp.user] = sp.position
}

// settle registers the vault side effects; they run after validation and before commit.
func (tx *pairTx) settle(fn func() error) {
	tx.settlement = fn
}

func (tx *pairTx) validate() error {
	state := &tx.state
	for name, value := range map[string]interface{ IsNegative() bool }{
		"total asset elastic":    state.TotalAsset.Elastic,
		"total asset base":       state.TotalAsset.Base,
		"total borrow elastic":   state.TotalBorrow.Elastic,
		"total borrow base":      state.TotalBorrow.Base,
		"total collateral share": state.TotalCollateralShare,
		"fees earned":            state.AccrueInfo.FeesEarned,
	} {
		if value.IsNegative() {
			return errors.Wrap(ErrUnderflow, name)
		}
	}
	for _, position := range tx.positions {
		if position.CollateralShare.IsNegative() || position.BorrowPart.IsNegative() || position.PoolShareBalance.IsNegative() {
			return errors.Wrapf(ErrUnderflow, "position of %s", position.User)
		}
	}
	return nil
}

// commit publishes the staged state. Emptied positions stay as zeroed entries; touched users
// that never held anything are not recorded.
func (tx *pairTx) commit() {
	p := tx.pair
	p.state = tx.state
	for user, position := range tx.positions {
		if _, ok := p.positions[user]; !ok && position.IsEmpty() {
			continue
		}
		p.positions[user] = position
	}
}
