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

// Package access implements role based authorization as an explicit map of
// role to principals, checked at every entry point
package access

import (
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"slices"
	"strings"

	"github.com/blinklabs-io/numbat/database/models"
	"github.com/blinklabs-io/numbat/event"
	"github.com/blinklabs-io/numbat/ledger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
)

type Role string

const (
	RoleAdmin              Role = "admin"
	RoleTimelockProposer   Role = "timelock.proposer"
	RoleTimelockExecutor   Role = "timelock.executor"
	RoleTimelockCanceller  Role = "timelock.canceller"
	RoleTreasuryAdmin      Role = "treasury.admin"
	RoleTreasuryGovernance Role = "treasury.governance"
	RoleTreasuryAIOperator Role = "treasury.ai_operator"
	RoleGovernanceGuardian Role = "governance.guardian"
)

// Roles lists every known role
var Roles = []Role{
	RoleAdmin,
	RoleTimelockProposer,
	RoleTimelockExecutor,
	RoleTimelockCanceller,
	RoleTreasuryAdmin,
	RoleTreasuryGovernance,
	RoleTreasuryAIOperator,
	RoleGovernanceGuardian,
}

// ParseRole validates a role name
func ParseRole(name string) (Role, error) {
	r := Role(name)
	if !slices.Contains(Roles, r) {
		return "", ledger.InvalidInput("unknown role %q", name)
	}
	return r, nil
}

const (
	RoleGrantedEventType event.EventType = "access.role_granted"
	RoleRevokedEventType event.EventType = "access.role_revoked"
	HandOffEventType     event.EventType = "access.hand_off"
)

type RoleEvent struct {
	Role    Role
	Account common.Address
	Sender  common.Address
}

type HandOffEvent struct {
	PreviousAdmin common.Address
	NewAdmin      common.Address
}

type Config struct {
	Logger *slog.Logger
}

// Access is the capability map. All state lives in the operation's
// transaction
type Access struct {
	logger   *slog.Logger
	contract *ledger.Contract
}

func New(cfg Config) (*Access, error) {
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	a := &Access{
		logger: cfg.Logger.With("component", "access"),
	}
	c, err := ledger.NewContract(ContractName, contractABI)
	if err != nil {
		return nil, err
	}
	if err := c.Handle("grantRole", a.handleGrantRole); err != nil {
		return nil, err
	}
	if err := c.Handle("revokeRole", a.handleRevokeRole); err != nil {
		return nil, err
	}
	a.contract = c
	return a, nil
}

// Contract returns the router entry for role management through proposals
func (a *Access) Contract() *ledger.Contract {
	return a.contract
}

// HasRole reports whether account holds role
func (a *Access) HasRole(
	lc *ledger.Context,
	role Role,
	account common.Address,
) (bool, error) {
	return lc.DB().HasRoleMember(string(role), account, lc.Txn())
}

// Check fails with an authorization error unless the sender holds role
func (a *Access) Check(lc *ledger.Context, role Role) error {
	return a.CheckAny(lc, role)
}

// CheckAny fails with an authorization error unless the sender holds at
// least one of roles
func (a *Access) CheckAny(lc *ledger.Context, roles ...Role) error {
	for _, role := range roles {
		ok, err := a.HasRole(lc, role, lc.Sender())
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return ledger.Unauthorized(
		"account %s is missing role %s",
		lc.Sender().Hex(),
		joinRoles(roles),
	)
}

// CheckOpen is like Check, but a role granted to the zero address is open
// to everyone
func (a *Access) CheckOpen(lc *ledger.Context, role Role) error {
	open, err := a.HasRole(lc, role, common.Address{})
	if err != nil {
		return err
	}
	if open {
		return nil
	}
	return a.Check(lc, role)
}

func joinRoles(roles []Role) string {
	return strings.Join(
		lo.Map(roles, func(r Role, _ int) string { return string(r) }),
		" or ",
	)
}

// Members returns the holders of role in grant order
func (a *Access) Members(
	lc *ledger.Context,
	role Role,
) ([]common.Address, error) {
	members, err := lc.DB().GetRoleMembers(string(role), lc.Txn())
	if err != nil {
		return nil, err
	}
	ret := make([]common.Address, 0, len(members))
	for _, m := range members {
		ret = append(ret, common.BytesToAddress(m.Member))
	}
	return ret, nil
}

// Grant gives role to account. The sender must hold admin
func (a *Access) Grant(
	lc *ledger.Context,
	role Role,
	account common.Address,
) error {
	if err := a.Check(lc, RoleAdmin); err != nil {
		return err
	}
	return a.grant(lc, role, account)
}

// Revoke removes role from account. The sender must hold admin
func (a *Access) Revoke(
	lc *ledger.Context,
	role Role,
	account common.Address,
) error {
	if err := a.Check(lc, RoleAdmin); err != nil {
		return err
	}
	return a.revoke(lc, role, account)
}

// Renounce removes role from the sender
func (a *Access) Renounce(lc *ledger.Context, role Role) error {
	return a.revoke(lc, role, lc.Sender())
}

func (a *Access) grant(
	lc *ledger.Context,
	role Role,
	account common.Address,
) error {
	if _, err := ParseRole(string(role)); err != nil {
		return err
	}
	has, err := a.HasRole(lc, role, account)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	if err := lc.DB().AddRoleMember(
		&models.RoleMember{
			Role:      string(role),
			Member:    account.Bytes(),
			GrantedBy: lc.Sender().Bytes(),
			Block:     lc.Block().Number,
		},
		lc.Txn(),
	); err != nil {
		return err
	}
	lc.Emit(
		RoleGrantedEventType,
		RoleEvent{Role: role, Account: account, Sender: lc.Sender()},
	)
	return nil
}

func (a *Access) revoke(
	lc *ledger.Context,
	role Role,
	account common.Address,
) error {
	if _, err := ParseRole(string(role)); err != nil {
		return err
	}
	has, err := a.HasRole(lc, role, account)
	if err != nil {
		return err
	}
	if !has {
		return nil
	}
	if err := lc.DB().DeleteRoleMember(string(role), account, lc.Txn()); err != nil {
		return err
	}
	lc.Emit(
		RoleRevokedEventType,
		RoleEvent{Role: role, Account: account, Sender: lc.Sender()},
	)
	return nil
}

// Bootstrap records the setup admin and grants it admin. It only runs on an
// empty capability map
func (a *Access) Bootstrap(lc *ledger.Context, setupAdmin common.Address) error {
	state, err := lc.DB().GetAccessState(lc.Txn())
	if err != nil {
		return err
	}
	if len(state.SetupAdmin) > 0 {
		return ledger.Precondition("access control already initialized")
	}
	if setupAdmin == (common.Address{}) {
		return ledger.InvalidInput("setup admin is the zero address")
	}
	state.SetupAdmin = setupAdmin.Bytes()
	if err := lc.DB().SetAccessState(state, lc.Txn()); err != nil {
		return err
	}
	return a.grant(lc.WithSender(setupAdmin), RoleAdmin, setupAdmin)
}

// HandOff moves admin from the setup admin to newAdmin. It can run only
// once; afterwards the setup admin has no special standing
func (a *Access) HandOff(lc *ledger.Context, newAdmin common.Address) error {
	if err := a.Check(lc, RoleAdmin); err != nil {
		return err
	}
	state, err := lc.DB().GetAccessState(lc.Txn())
	if err != nil {
		return err
	}
	if state.Sealed {
		return ledger.Precondition("admin already handed off")
	}
	if newAdmin == (common.Address{}) {
		return ledger.InvalidInput("new admin is the zero address")
	}
	setupAdmin := common.BytesToAddress(state.SetupAdmin)
	if err := a.grant(lc, RoleAdmin, newAdmin); err != nil {
		return err
	}
	if setupAdmin != newAdmin {
		if err := a.revoke(lc, RoleAdmin, setupAdmin); err != nil {
			return err
		}
	}
	state.Sealed = true
	if err := lc.DB().SetAccessState(state, lc.Txn()); err != nil {
		return err
	}
	lc.Emit(
		HandOffEventType,
		HandOffEvent{PreviousAdmin: setupAdmin, NewAdmin: newAdmin},
	)
	a.logger.Info(
		fmt.Sprintf("admin handed off to %s", newAdmin.Hex()),
		"block", lc.Block().Number,
	)
	return nil
}

// HandedOff reports whether the one-way hand-off has happened
func (a *Access) HandedOff(lc *ledger.Context) (bool, error) {
	state, err := lc.DB().GetAccessState(lc.Txn())
	if err != nil {
		return false, err
	}
	return state.Sealed, nil
}

func (a *Access) handleGrantRole(lc *ledger.Context, _ *big.Int, args []any) error {
	role, err := ParseRole(args[0].(string))
	if err != nil {
		return err
	}
	return a.Grant(lc, role, args[1].(common.Address))
}

func (a *Access) handleRevokeRole(lc *ledger.Context, _ *big.Int, args []any) error {
	role, err := ParseRole(args[0].(string))
	if err != nil {
		return err
	}
	return a.Revoke(lc, role, args[1].(common.Address))
}
