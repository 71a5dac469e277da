// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package treasury holds collective funds and guards withdrawals with a
// rolling daily limit shared by every asset
package treasury

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"strings"

	"github.com/blinklabs-io/numbat/access"
	"github.com/blinklabs-io/numbat/database/models"
	"github.com/blinklabs-io/numbat/database/types"
	"github.com/blinklabs-io/numbat/event"
	"github.com/blinklabs-io/numbat/ledger"
	"github.com/ethereum/go-ethereum/common"
)

// WindowSeconds is the length of the withdrawal window
const WindowSeconds int64 = 86400

const (
	AssetTypeNative = "native"
	AssetTypeERC20  = "erc20"
)

const (
	WithdrawalEventType      event.EventType = "treasury.withdrawal"
	DepositEventType         event.EventType = "treasury.deposit"
	LimitChangedEventType    event.EventType = "treasury.limit_changed"
	AssetRegisteredEventType event.EventType = "treasury.asset_registered"
	AssetStatusEventType     event.EventType = "treasury.asset_status"
)

var (
	ErrNoAccess     = errors.New("treasury requires access control")
	ErrNoTokenMover = errors.New("treasury requires a token mover")
)

const msgLimitExceeded = "daily withdrawal limit exceeded"

type WithdrawalEvent struct {
	Token  common.Address
	To     common.Address
	Caller common.Address
	Amount *big.Int
}

type DepositEvent struct {
	Token  common.Address
	From   common.Address
	Amount *big.Int
}

type LimitChangedEvent struct {
	OldLimit *big.Int
	NewLimit *big.Int
}

type AssetEvent struct {
	Token     common.Address
	Name      string
	AssetType string
	Active    bool
}

// TokenMover moves balances of any token between accounts
type TokenMover interface {
	TransferToken(
		lc *ledger.Context,
		token common.Address,
		from common.Address,
		to common.Address,
		amount *big.Int,
	) error
}

// Ledger is the state of the withdrawal window
type Ledger struct {
	DailyLimit  *big.Int
	TodayTotal  *big.Int
	PeriodStart int64
	Remaining   *big.Int
}

// Asset is an entry of the asset registry
type Asset struct {
	Token     common.Address
	Name      string
	AssetType string
	Active    bool
	Balance   *big.Int
}

type Config struct {
	Logger *slog.Logger
	Access *access.Access
	Tokens TokenMover
}

type Treasury struct {
	logger   *slog.Logger
	access   *access.Access
	tokens   TokenMover
	contract *ledger.Contract
}

func New(cfg Config) (*Treasury, error) {
	if cfg.Access == nil {
		return nil, ErrNoAccess
	}
	if cfg.Tokens == nil {
		return nil, ErrNoTokenMover
	}
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	t := &Treasury{
		logger: cfg.Logger.With("component", "treasury"),
		access: cfg.Access,
		tokens: cfg.Tokens,
	}
	c, err := ledger.NewContract(ContractName, contractABI)
	if err != nil {
		return nil, err
	}
	handlers := map[string]ledger.Handler{
		"withdraw":                t.handleWithdraw,
		"deposit":                 t.handleDeposit,
		"setDailyWithdrawalLimit": t.handleSetDailyWithdrawalLimit,
		"registerAsset":           t.handleRegisterAsset,
		"setAssetActive":          t.handleSetAssetActive,
	}
	for method, handler := range handlers {
		if err := c.Handle(method, handler); err != nil {
			return nil, err
		}
	}
	t.contract = c
	return t, nil
}

func (t *Treasury) Contract() *ledger.Contract {
	return t.contract
}

// Address is the account holding the treasury's funds
func (t *Treasury) Address() common.Address {
	return t.contract.Address
}

// Initialize creates the withdrawal ledger and registers the native asset
func (t *Treasury) Initialize(lc *ledger.Context, dailyLimit *big.Int) error {
	existing, err := lc.DB().GetTreasuryLedger(lc.Txn())
	if err != nil && !errors.Is(err, models.ErrTreasuryLedgerNotFound) {
		return err
	}
	if existing != nil {
		return ledger.Precondition("treasury already initialized")
	}
	if dailyLimit == nil || dailyLimit.Sign() <= 0 {
		return ledger.InvalidInput("daily limit must be positive")
	}
	if err := lc.DB().SetTreasuryLedger(
		&models.TreasuryLedger{
			DailyLimit:  types.NewBigInt(dailyLimit),
			TodayTotal:  types.NewBigInt(nil),
			PeriodStart: lc.Block().Timestamp,
		},
		lc.Txn(),
	); err != nil {
		return err
	}
	return t.addAsset(lc, ledger.NativeToken, AssetTypeNative, AssetTypeNative)
}

// Withdraw sends amount of token to the recipient. The window is reset
// lazily once a full day has passed since it started; the limit is checked
// before the balance, and a rejected withdrawal changes nothing
func (t *Treasury) Withdraw(
	lc *ledger.Context,
	token common.Address,
	to common.Address,
	amount *big.Int,
) error {
	if err := t.access.CheckAny(
		lc,
		access.RoleTreasuryGovernance,
		access.RoleTreasuryAIOperator,
	); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ledger.InvalidInput("withdrawal amount must be positive")
	}
	if to == (common.Address{}) {
		return ledger.InvalidInput("withdrawal to the zero address")
	}
	asset, err := lc.DB().GetTreasuryAsset(token, lc.Txn())
	if err != nil {
		return err
	}
	if asset == nil {
		return errAssetNotFound(token)
	}
	if !asset.Active {
		return ledger.Precondition("asset %s is not active", asset.Name)
	}
	wl, err := lc.DB().GetTreasuryLedger(lc.Txn())
	if err != nil {
		return err
	}
	now := lc.Block().Timestamp
	resetWindow(wl, now)
	total := new(big.Int).Add(wl.TodayTotal.Big(), amount)
	if total.Cmp(wl.DailyLimit.Big()) > 0 {
		t.logger.Warn(
			"withdrawal rejected",
			"reason", msgLimitExceeded,
			"caller", lc.Sender().Hex(),
			"amount", amount.String(),
		)
		return ledger.ResourceLimit(msgLimitExceeded)
	}
	bal, err := t.Balance(lc, token)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return ledger.ResourceLimit("insufficient balance")
	}
	if err := t.tokens.TransferToken(lc, token, t.Address(), to, amount); err != nil {
		return err
	}
	wl.TodayTotal = types.NewBigInt(total)
	if err := lc.DB().SetTreasuryLedger(wl, lc.Txn()); err != nil {
		return err
	}
	if err := lc.DB().AddTreasuryWithdrawal(
		&models.TreasuryWithdrawal{
			Token:     token.Bytes(),
			Recipient: to.Bytes(),
			Caller:    lc.Sender().Bytes(),
			Amount:    types.NewBigInt(amount),
			Block:     lc.Block().Number,
			Timestamp: now,
		},
		lc.Txn(),
	); err != nil {
		return err
	}
	lc.Emit(
		WithdrawalEventType,
		WithdrawalEvent{
			Token:  token,
			To:     to,
			Caller: lc.Sender(),
			Amount: new(big.Int).Set(amount),
		},
	)
	t.logger.Info(
		fmt.Sprintf("withdrew %s of %s", amount.String(), asset.Name),
		"to", to.Hex(),
		"caller", lc.Sender().Hex(),
		"today_total", total.String(),
	)
	return nil
}

func errAssetNotFound(token common.Address) error {
	return ledger.NotFound(
		models.ErrTreasuryAssetNotFound,
		"asset %s is not registered",
		token.Hex(),
	)
}

func resetWindow(wl *models.TreasuryLedger, now int64) {
	if now-wl.PeriodStart >= WindowSeconds {
		wl.TodayTotal = types.NewBigInt(nil)
		wl.PeriodStart = now
	}
}

// SetDailyWithdrawalLimit changes the limit. The running total is kept
func (t *Treasury) SetDailyWithdrawalLimit(
	lc *ledger.Context,
	newLimit *big.Int,
) error {
	if err := t.access.Check(lc, access.RoleTreasuryAdmin); err != nil {
		return err
	}
	if newLimit == nil || newLimit.Sign() <= 0 {
		return ledger.InvalidInput("daily limit must be positive")
	}
	wl, err := lc.DB().GetTreasuryLedger(lc.Txn())
	if err != nil {
		return err
	}
	old := wl.DailyLimit.Big()
	wl.DailyLimit = types.NewBigInt(newLimit)
	if err := lc.DB().SetTreasuryLedger(wl, lc.Txn()); err != nil {
		return err
	}
	lc.Emit(
		LimitChangedEventType,
		LimitChangedEvent{OldLimit: old, NewLimit: new(big.Int).Set(newLimit)},
	)
	return nil
}

// RegisterAsset adds an active asset. Tokens and names are unique
func (t *Treasury) RegisterAsset(
	lc *ledger.Context,
	token common.Address,
	name string,
	assetType string,
) error {
	if err := t.access.CheckAny(
		lc,
		access.RoleTreasuryAdmin,
		access.RoleTreasuryGovernance,
	); err != nil {
		return err
	}
	return t.addAsset(lc, token, name, assetType)
}

// ImportAsset registers an asset without an authorization check. It is
// only reachable from genesis
func (t *Treasury) ImportAsset(
	lc *ledger.Context,
	token common.Address,
	name string,
	assetType string,
) error {
	return t.addAsset(lc, token, name, assetType)
}

func (t *Treasury) addAsset(
	lc *ledger.Context,
	token common.Address,
	name string,
	assetType string,
) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ledger.InvalidInput("asset name is empty")
	}
	switch assetType {
	case AssetTypeNative:
		if token != ledger.NativeToken {
			return ledger.InvalidInput("native asset must use the zero address")
		}
	case AssetTypeERC20:
		if token == ledger.NativeToken {
			return ledger.InvalidInput("token asset cannot use the zero address")
		}
	default:
		return ledger.InvalidInput("unknown asset type %q", assetType)
	}
	existing, err := lc.DB().GetTreasuryAsset(token, lc.Txn())
	if err != nil {
		return err
	}
	if existing != nil {
		return ledger.Precondition("asset %s already registered", token.Hex())
	}
	existing, err = lc.DB().GetTreasuryAssetByName(name, lc.Txn())
	if err != nil {
		return err
	}
	if existing != nil {
		return ledger.Precondition("asset name %q already registered", name)
	}
	if err := lc.DB().SetTreasuryAsset(
		&models.TreasuryAsset{
			Token:      token.Bytes(),
			Name:       name,
			AssetType:  assetType,
			AddedBlock: lc.Block().Number,
			Active:     true,
		},
		lc.Txn(),
	); err != nil {
		return err
	}
	lc.Emit(
		AssetRegisteredEventType,
		AssetEvent{Token: token, Name: name, AssetType: assetType, Active: true},
	)
	return nil
}

// SetAssetActive enables or disables withdrawals of an asset
func (t *Treasury) SetAssetActive(
	lc *ledger.Context,
	token common.Address,
	active bool,
) error {
	if err := t.access.Check(lc, access.RoleTreasuryAdmin); err != nil {
		return err
	}
	asset, err := lc.DB().GetTreasuryAsset(token, lc.Txn())
	if err != nil {
		return err
	}
	if asset == nil {
		return errAssetNotFound(token)
	}
	asset.Active = active
	if err := lc.DB().SetTreasuryAsset(asset, lc.Txn()); err != nil {
		return err
	}
	lc.Emit(
		AssetStatusEventType,
		AssetEvent{
			Token:     token,
			Name:      asset.Name,
			AssetType: asset.AssetType,
			Active:    active,
		},
	)
	return nil
}

// Deposit moves amount of a registered asset from the sender into the
// treasury
func (t *Treasury) Deposit(
	lc *ledger.Context,
	token common.Address,
	amount *big.Int,
) error {
	if amount == nil || amount.Sign() <= 0 {
		return ledger.InvalidInput("deposit amount must be positive")
	}
	if err := t.requireAsset(lc, token); err != nil {
		return err
	}
	if err := t.tokens.TransferToken(lc, token, lc.Sender(), t.Address(), amount); err != nil {
		return err
	}
	t.emitDeposit(lc, token, amount)
	return nil
}

func (t *Treasury) requireAsset(lc *ledger.Context, token common.Address) error {
	asset, err := lc.DB().GetTreasuryAsset(token, lc.Txn())
	if err != nil {
		return err
	}
	if asset == nil {
		return errAssetNotFound(token)
	}
	return nil
}

func (t *Treasury) emitDeposit(
	lc *ledger.Context,
	token common.Address,
	amount *big.Int,
) {
	lc.Emit(
		DepositEventType,
		DepositEvent{Token: token, From: lc.Sender(), Amount: new(big.Int).Set(amount)},
	)
}

// Ledger returns the withdrawal window as it would be seen by a withdrawal
// in the current block
func (t *Treasury) Ledger(lc *ledger.Context) (*Ledger, error) {
	wl, err := lc.DB().GetTreasuryLedger(lc.Txn())
	if err != nil {
		return nil, err
	}
	resetWindow(wl, lc.Block().Timestamp)
	limit := wl.DailyLimit.Big()
	today := wl.TodayTotal.Big()
	remaining := new(big.Int).Sub(limit, today)
	if remaining.Sign() < 0 {
		remaining.SetInt64(0)
	}
	return &Ledger{
		DailyLimit:  limit,
		TodayTotal:  today,
		PeriodStart: wl.PeriodStart,
		Remaining:   remaining,
	}, nil
}

// Balance returns the treasury's holding of token
func (t *Treasury) Balance(
	lc *ledger.Context,
	token common.Address,
) (*big.Int, error) {
	return lc.DB().GetBalance(token, t.Address(), lc.Txn())
}

// Asset returns a registry entry with the current holding
func (t *Treasury) Asset(lc *ledger.Context, token common.Address) (*Asset, error) {
	asset, err := lc.DB().GetTreasuryAsset(token, lc.Txn())
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, errAssetNotFound(token)
	}
	return t.assetView(lc, asset)
}

// Assets returns the registry in registration order
func (t *Treasury) Assets(lc *ledger.Context) ([]Asset, error) {
	assets, err := lc.DB().GetTreasuryAssets(lc.Txn())
	if err != nil {
		return nil, err
	}
	ret := make([]Asset, 0, len(assets))
	for i := range assets {
		a, err := t.assetView(lc, &assets[i])
		if err != nil {
			return nil, err
		}
		ret = append(ret, *a)
	}
	return ret, nil
}

func (t *Treasury) assetView(
	lc *ledger.Context,
	asset *models.TreasuryAsset,
) (*Asset, error) {
	token := common.BytesToAddress(asset.Token)
	bal, err := t.Balance(lc, token)
	if err != nil {
		return nil, err
	}
	return &Asset{
		Token:     token,
		Name:      asset.Name,
		AssetType: asset.AssetType,
		Active:    asset.Active,
		Balance:   bal,
	}, nil
}

// Withdrawals returns up to limit of the most recent withdrawals, newest
// first
func (t *Treasury) Withdrawals(
	lc *ledger.Context,
	limit int,
) ([]models.TreasuryWithdrawal, error) {
	return lc.DB().GetTreasuryWithdrawals(limit, lc.Txn())
}

func (t *Treasury) handleWithdraw(lc *ledger.Context, _ *big.Int, args []any) error {
	return t.Withdraw(
		lc,
		args[0].(common.Address),
		args[1].(common.Address),
		args[2].(*big.Int),
	)
}

// Native value sent with the call has already been moved by the router
func (t *Treasury) handleDeposit(lc *ledger.Context, value *big.Int, args []any) error {
	token := args[0].(common.Address)
	amount := args[1].(*big.Int)
	if value.Sign() == 0 {
		return t.Deposit(lc, token, amount)
	}
	if token != ledger.NativeToken || value.Cmp(amount) != 0 {
		return ledger.InvalidInput("call value does not match native deposit")
	}
	if err := t.requireAsset(lc, token); err != nil {
		return err
	}
	t.emitDeposit(lc, token, amount)
	return nil
}

func (t *Treasury) handleSetDailyWithdrawalLimit(lc *ledger.Context, _ *big.Int, args []any) error {
	return t.SetDailyWithdrawalLimit(lc, args[0].(*big.Int))
}

func (t *Treasury) handleRegisterAsset(lc *ledger.Context, _ *big.Int, args []any) error {
	return t.RegisterAsset(
		lc,
		args[0].(common.Address),
		args[1].(string),
		args[2].(string),
	)
}

func (t *Treasury) handleSetAssetActive(lc *ledger.Context, _ *big.Int, args []any) error {
	return t.SetAssetActive(lc, args[0].(common.Address), args[1].(bool))
}
