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

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/blinklabs-io/numbat/chain"
	"github.com/blinklabs-io/numbat/database/models"
	"github.com/blinklabs-io/numbat/governance"
	"github.com/blinklabs-io/numbat/ledger"
	"github.com/blinklabs-io/numbat/timelock"
	"github.com/blinklabs-io/numbat/treasury"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testSender    = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	testRecipient = common.HexToAddress("0x00000000000000000000000000000000000000e1")
	testId        = common.HexToHash("0x01")
)

// mockBackend implements Backend for testing.
type mockBackend struct {
	tip          chain.Block
	proposals    []governance.Proposal
	ballots      []governance.Ballot
	ledger       treasury.Ledger
	assets       []treasury.Asset
	withdrawals  []WithdrawalInfo
	account      AccountInfo
	err          error
	sender       common.Address
	actions      []governance.Action
	calls        []timelock.Call
	description  string
	support      uint8
	reason       string
	amount       *big.Int
	token        common.Address
	to           common.Address
	delegatee    common.Address
	advanceSteps []time.Duration
}

func (m *mockBackend) ChainTip(context.Context) (chain.Block, error) {
	return m.tip, m.err
}

func (m *mockBackend) Proposals(_ context.Context, offset, limit int) ([]governance.Proposal, error) {
	if m.err != nil {
		return nil, m.err
	}
	end := min(offset+limit, len(m.proposals))
	return append([]governance.Proposal(nil), m.proposals[offset:end]...), nil
}

func (m *mockBackend) ProposalCount(context.Context) (int, error) {
	return len(m.proposals), m.err
}

func (m *mockBackend) Proposal(_ context.Context, id common.Hash) (*governance.Proposal, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.proposals {
		if m.proposals[i].Id == id {
			return &m.proposals[i], nil
		}
	}
	return nil, ledger.NotFound(models.ErrGovernanceProposalNotFound, "unknown proposal %s", id.Hex())
}

func (m *mockBackend) ProposalDeadline(ctx context.Context, id common.Hash) (uint64, uint64, error) {
	p, err := m.Proposal(ctx, id)
	if err != nil {
		return 0, 0, err
	}
	return p.SnapshotBlock, p.DeadlineBlock, nil
}

func (m *mockBackend) Ballots(context.Context, common.Hash) ([]governance.Ballot, error) {
	return m.ballots, m.err
}

func (m *mockBackend) ProposeActions(
	_ context.Context,
	sender common.Address,
	actions []governance.Action,
	description string,
) (common.Hash, error) {
	m.sender, m.actions, m.description = sender, actions, description
	return testId, m.err
}

func (m *mockBackend) ProposeCalls(
	_ context.Context,
	sender common.Address,
	calls []timelock.Call,
	description string,
) (common.Hash, error) {
	m.sender, m.calls, m.description = sender, calls, description
	return testId, m.err
}

func (m *mockBackend) CastVote(
	_ context.Context,
	sender common.Address,
	_ common.Hash,
	support uint8,
	reason string,
) (*big.Int, error) {
	m.sender, m.support, m.reason = sender, support, reason
	if m.err != nil {
		return nil, m.err
	}
	return big.NewInt(1_000_000), nil
}

func (m *mockBackend) Queue(_ context.Context, sender common.Address, _ common.Hash) (int64, error) {
	m.sender = sender
	return 1_700_003_600, m.err
}

func (m *mockBackend) Execute(_ context.Context, sender common.Address, _ common.Hash) error {
	m.sender = sender
	return m.err
}

func (m *mockBackend) Cancel(_ context.Context, sender common.Address, _ common.Hash) error {
	m.sender = sender
	return m.err
}

func (m *mockBackend) Treasury(context.Context) (*treasury.Ledger, error) {
	return &m.ledger, m.err
}

func (m *mockBackend) TreasuryAssets(context.Context) ([]treasury.Asset, error) {
	return m.assets, m.err
}

func (m *mockBackend) Withdrawals(context.Context, int) ([]WithdrawalInfo, error) {
	return m.withdrawals, m.err
}

func (m *mockBackend) Withdraw(
	_ context.Context,
	sender common.Address,
	token common.Address,
	to common.Address,
	amount *big.Int,
) error {
	m.sender, m.token, m.to, m.amount = sender, token, to, amount
	return m.err
}

func (m *mockBackend) Deposit(
	_ context.Context,
	sender common.Address,
	token common.Address,
	amount *big.Int,
) error {
	m.sender, m.token, m.amount = sender, token, amount
	return m.err
}

func (m *mockBackend) Account(context.Context, common.Address) (AccountInfo, error) {
	return m.account, m.err
}

func (m *mockBackend) Delegate(_ context.Context, sender, delegatee common.Address) error {
	m.sender, m.delegatee = sender, delegatee
	return m.err
}

func (m *mockBackend) Advance(_ context.Context, blocks uint64, step time.Duration) (chain.Block, error) {
	for range blocks {
		m.advanceSteps = append(m.advanceSteps, step)
	}
	return chain.Block{Number: m.tip.Number + blocks, Timestamp: m.tip.Timestamp}, m.err
}

func newTestServer(backend Backend, devMode bool) *Server {
	return New(
		Config{ListenAddress: "127.0.0.1:0", DevMode: devMode},
		backend,
		nil,
	)
}

// do sends a request through the full handler, with the test sender as
// principal unless noPrincipal is set
func do(
	t *testing.T,
	s *Server,
	method string,
	path string,
	body any,
	noPrincipal bool,
) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if !noPrincipal {
		req.Header.Set(PrincipalHeader, testSender.Hex())
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var ret T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&ret))
	return ret
}

func TestStartStop(t *testing.T) {
	s := newTestServer(&mockBackend{}, false)

	require.NoError(t, s.Start(t.Context()))
	s.mu.Lock()
	assert.NotNil(t, s.httpServer)
	s.mu.Unlock()
	assert.NotEqual(t, "127.0.0.1:0", s.Addr())

	resp, err := http.Get("http://" + s.Addr() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	require.NoError(t, s.Stop(stopCtx))
	s.mu.Lock()
	assert.Nil(t, s.httpServer)
	s.mu.Unlock()
}

func TestStartAlreadyStarted(t *testing.T) {
	s := newTestServer(&mockBackend{}, false)
	require.NoError(t, s.Start(t.Context()))
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		_ = s.Stop(stopCtx)
	}()
	err := s.Start(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already started")
}

func TestHandleRootAndHealth(t *testing.T) {
	s := newTestServer(&mockBackend{}, false)

	w := do(t, s, http.MethodGet, "/", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get(RequestIdHeader))
	assert.Equal(t, "numbat", decode[RootResponse](t, w).Name)

	w = do(t, s, http.MethodGet, "/health", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[HealthResponse](t, w).IsHealthy)

	s = newTestServer(&mockBackend{err: errors.New("database closed")}, false)
	w = do(t, s, http.MethodGet, "/health", nil, true)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.False(t, decode[HealthResponse](t, w).IsHealthy)
}

func TestHandleChainTip(t *testing.T) {
	s := newTestServer(&mockBackend{tip: chain.Block{Number: 42, Timestamp: 1_700_000_041}}, false)
	w := do(t, s, http.MethodGet, "/api/v1/chain/tip", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[TipResponse](t, w)
	assert.Equal(t, uint64(42), resp.Number)
	assert.Equal(t, int64(1_700_000_041), resp.Timestamp)
}

func testProposals(n int) []governance.Proposal {
	ret := make([]governance.Proposal, 0, n)
	for i := range n {
		ret = append(ret, governance.Proposal{
			Id:           common.BigToHash(big.NewInt(int64(i + 1))),
			Proposer:     testSender,
			State:        governance.StateActive,
			ForVotes:     big.NewInt(int64(i)),
			AgainstVotes: new(big.Int),
			AbstainVotes: new(big.Int),
			Calls: []timelock.Call{
				{Target: testRecipient, Value: big.NewInt(5), Data: []byte{0xde, 0xad}},
			},
		})
	}
	ret[0].State = governance.StateExecuted
	return ret
}

func TestHandleListProposals(t *testing.T) {
	s := newTestServer(&mockBackend{proposals: testProposals(5)}, false)

	w := do(t, s, http.MethodGet, "/api/v1/proposals?count=2&page=1", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5", w.Header().Get("X-Pagination-Count-Total"))
	assert.Equal(t, "3", w.Header().Get("X-Pagination-Page-Total"))
	page := decode[[]ProposalResponse](t, w)
	require.Len(t, page, 2)
	assert.Equal(t, common.BigToHash(big.NewInt(1)), page[0].Id)
	assert.Equal(t, "Executed", page[0].State)
	require.Len(t, page[0].Calls, 1)
	assert.Equal(t, "5", page[0].Calls[0].Value)
	assert.Nil(t, page[0].OperationId)

	w = do(t, s, http.MethodGet, "/api/v1/proposals?count=2&page=1&order=desc", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[[]ProposalResponse](t, w)
	require.Len(t, page, 2)
	assert.Equal(t, common.BigToHash(big.NewInt(5)), page[0].Id)
	assert.Equal(t, common.BigToHash(big.NewInt(4)), page[1].Id)

	w = do(t, s, http.MethodGet, "/api/v1/proposals?state=active", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]ProposalResponse](t, w), 4)

	// The state filter applies before paging
	w = do(t, s, http.MethodGet, "/api/v1/proposals?state=active&count=3&page=2", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "4", w.Header().Get("X-Pagination-Count-Total"))
	assert.Equal(t, "2", w.Header().Get("X-Pagination-Page-Total"))
	page = decode[[]ProposalResponse](t, w)
	require.Len(t, page, 1)
	assert.Equal(t, common.BigToHash(big.NewInt(5)), page[0].Id)

	w = do(t, s, http.MethodGet, "/api/v1/proposals?state=executed&count=2&order=desc", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-Pagination-Count-Total"))
	page = decode[[]ProposalResponse](t, w)
	require.Len(t, page, 1)
	assert.Equal(t, common.BigToHash(big.NewInt(1)), page[0].Id)

	w = do(t, s, http.MethodGet, "/api/v1/proposals?state=queued", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-Pagination-Count-Total"))
	assert.Empty(t, decode[[]ProposalResponse](t, w))

	w = do(t, s, http.MethodGet, "/api/v1/proposals?page=9", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]ProposalResponse](t, w))

	w = do(t, s, http.MethodGet, "/api/v1/proposals?state=bogus", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleProposalViews(t *testing.T) {
	proposals := testProposals(1)
	proposals[0].SnapshotBlock = 10
	proposals[0].DeadlineBlock = 30
	proposals[0].OperationId = common.HexToHash("0xaa")
	backend := &mockBackend{
		proposals: proposals,
		ballots: []governance.Ballot{
			{Voter: testSender, Support: models.VoteFor, Weight: big.NewInt(7), Reason: "yes"},
		},
	}
	s := newTestServer(backend, false)
	id := proposals[0].Id.Hex()

	w := do(t, s, http.MethodGet, "/api/v1/proposals/"+id, nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[ProposalResponse](t, w)
	require.NotNil(t, resp.OperationId)
	assert.Equal(t, common.HexToHash("0xaa"), *resp.OperationId)

	w = do(t, s, http.MethodGet, "/api/v1/proposals/"+id+"/state", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Executed", decode[StateResponse](t, w).State)

	w = do(t, s, http.MethodGet, "/api/v1/proposals/"+id+"/deadline", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	deadline := decode[DeadlineResponse](t, w)
	assert.Equal(t, uint64(10), deadline.Snapshot)
	assert.Equal(t, uint64(30), deadline.Deadline)

	w = do(t, s, http.MethodGet, "/api/v1/proposals/"+id+"/votes", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	votes := decode[ProposalVotesResponse](t, w)
	assert.Equal(t, "0", votes.Totals.For)
	require.Len(t, votes.Ballots, 1)
	assert.Equal(t, "for", votes.Ballots[0].Support)
	assert.Equal(t, "7", votes.Ballots[0].Weight)

	w = do(t, s, http.MethodGet, "/api/v1/proposals/"+common.HexToHash("0xff").Hex(), nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
	errResp := decode[ErrorResponse](t, w)
	assert.Equal(t, "input_validation", errResp.Kind)
	assert.NotEmpty(t, errResp.RequestId)

	w = do(t, s, http.MethodGet, "/api/v1/proposals/0x1234/state", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlePropose(t *testing.T) {
	backend := &mockBackend{}
	s := newTestServer(backend, false)

	w := do(t, s, http.MethodPost, "/api/v1/proposals", ProposeRequest{
		Description: "pay the auditors",
		Actions: []ActionRequest{
			{Type: "transfer", Token: "native", To: testRecipient.Hex(), Amount: "1000"},
			{Type: "parameter_update", Target: "governor", Parameter: "quorum_numerator", Value: "10"},
			{Type: "call", Target: "@access", Method: "grantRole", Args: []string{"admin", testRecipient.Hex()}},
		},
	}, false)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, testId, decode[ProposeResponse](t, w).Id)
	assert.Equal(t, testSender, backend.sender)
	assert.Equal(t, "pay the auditors", backend.description)
	require.Len(t, backend.actions, 3)
	assert.Equal(
		t,
		governance.TransferAction{Token: ledger.NativeToken, To: testRecipient, Amount: big.NewInt(1000)},
		backend.actions[0],
	)
	call, ok := backend.actions[2].(governance.CallAction)
	require.True(t, ok)
	assert.Equal(t, ledger.ContractAddress("access"), call.Target)
	assert.Equal(t, int64(0), call.Value.Int64())

	w = do(t, s, http.MethodPost, "/api/v1/proposals", map[string]any{
		"description": "raw",
		"calls": []map[string]any{
			{"target": testRecipient.Hex(), "value": "3", "data": "0x0102"},
		},
	}, false)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, backend.calls, 1)
	assert.Equal(t, []byte{0x01, 0x02}, backend.calls[0].Data)
	assert.Equal(t, big.NewInt(3), backend.calls[0].Value)
}

func TestHandleProposeInvalid(t *testing.T) {
	s := newTestServer(&mockBackend{}, false)
	tests := []struct {
		name        string
		body        any
		noPrincipal bool
		status      int
	}{
		{"no principal", ProposeRequest{Actions: []ActionRequest{{Type: "transfer"}}}, true, http.StatusUnauthorized},
		{"no actions or calls", ProposeRequest{Description: "empty"}, false, http.StatusBadRequest},
		{
			"both actions and calls",
			ProposeRequest{
				Actions: []ActionRequest{{Type: "transfer", Token: "native", To: testRecipient.Hex(), Amount: "1"}},
				Calls:   []CallRequest{{Target: testRecipient}},
			},
			false,
			http.StatusBadRequest,
		},
		{"unknown action", ProposeRequest{Actions: []ActionRequest{{Type: "mint"}}}, false, http.StatusBadRequest},
		{
			"bad amount",
			ProposeRequest{Actions: []ActionRequest{{Type: "transfer", Token: "native", To: testRecipient.Hex(), Amount: "-5"}}},
			false,
			http.StatusBadRequest,
		},
		{"unknown field", map[string]any{"descr": "typo"}, false, http.StatusBadRequest},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/api/v1/proposals", test.body, test.noPrincipal)
			assert.Equal(t, test.status, w.Code)
		})
	}
}

func TestInvalidPrincipal(t *testing.T) {
	s := newTestServer(&mockBackend{}, false)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/proposals/"+testId.Hex()+"/queue", nil)
	req.Header.Set(PrincipalHeader, "not-an-address")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRejectedOperationStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"authorization", ledger.Unauthorized("missing role"), http.StatusForbidden, "authorization"},
		{"state precondition", ledger.Precondition("proposal not active"), http.StatusConflict, "state_precondition"},
		{"resource limit", ledger.ResourceLimit("daily withdrawal limit exceeded"), http.StatusUnprocessableEntity, "resource_limit"},
		{"input validation", ledger.InvalidInput("invalid vote type 3"), http.StatusBadRequest, "input_validation"},
		{"wrapped", fmt.Errorf("treasury.withdraw: %w", ledger.ResourceLimit("insufficient balance")), http.StatusUnprocessableEntity, "resource_limit"},
		{"asset not found", ledger.NotFound(models.ErrTreasuryAssetNotFound, "unknown asset"), http.StatusNotFound, "input_validation"},
		{"internal", errors.New("disk on fire"), http.StatusInternalServerError, ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := newTestServer(&mockBackend{err: test.err}, false)
			w := do(t, s, http.MethodPost, "/api/v1/treasury/withdrawals", WithdrawalRequest{
				Token:  "native",
				To:     testRecipient.Hex(),
				Amount: "1",
			}, false)
			assert.Equal(t, test.status, w.Code)
			resp := decode[ErrorResponse](t, w)
			assert.Equal(t, test.kind, resp.Kind)
			if test.status == http.StatusInternalServerError {
				assert.Equal(t, "failed to withdraw", resp.Message)
			} else {
				assert.Equal(t, test.err.Error(), resp.Message)
			}
		})
	}
}

func TestHandleVoteQueueExecuteCancel(t *testing.T) {
	backend := &mockBackend{}
	s := newTestServer(backend, false)
	base := "/api/v1/proposals/" + testId.Hex()

	w := do(t, s, http.MethodPost, base+"/votes", VoteRequest{Support: "Abstain", Reason: "conflicted"}, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1000000", decode[VoteResponse](t, w).Weight)
	assert.Equal(t, uint8(models.VoteAbstain), backend.support)
	assert.Equal(t, "conflicted", backend.reason)

	w = do(t, s, http.MethodPost, base+"/votes", VoteRequest{Support: "1"}, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint8(models.VoteFor), backend.support)

	w = do(t, s, http.MethodPost, base+"/votes", VoteRequest{Support: "maybe"}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPost, base+"/queue", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1_700_003_600), decode[QueueResponse](t, w).Eta)

	w = do(t, s, http.MethodPost, base+"/execute", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "committed", decode[OperationResponse](t, w).Status)

	w = do(t, s, http.MethodPost, base+"/cancel", nil, false)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, s, http.MethodPost, base+"/cancel", nil, true)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleTreasury(t *testing.T) {
	backend := &mockBackend{
		ledger: treasury.Ledger{
			DailyLimit:  big.NewInt(1000),
			TodayTotal:  big.NewInt(400),
			Remaining:   big.NewInt(600),
			PeriodStart: 1_700_000_000,
		},
		assets: []treasury.Asset{
			{Token: ledger.NativeToken, Name: "native", AssetType: treasury.AssetTypeNative, Active: true, Balance: big.NewInt(5)},
		},
		withdrawals: []WithdrawalInfo{
			{Id: 2, To: testRecipient, Amount: big.NewInt(400), Block: 9},
		},
	}
	s := newTestServer(backend, false)

	w := do(t, s, http.MethodGet, "/api/v1/treasury", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	l := decode[TreasuryResponse](t, w)
	assert.Equal(t, "1000", l.DailyLimit)
	assert.Equal(t, "600", l.Remaining)
	assert.Equal(t, int64(1_700_086_400), l.PeriodEnd)

	w = do(t, s, http.MethodGet, "/api/v1/treasury/assets", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assets := decode[[]AssetResponse](t, w)
	require.Len(t, assets, 1)
	assert.Equal(t, "native", assets[0].Type)
	assert.Equal(t, "5", assets[0].Balance)

	w = do(t, s, http.MethodGet, "/api/v1/treasury/withdrawals?count=10", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	withdrawals := decode[[]WithdrawalResponse](t, w)
	require.Len(t, withdrawals, 1)
	assert.Equal(t, "400", withdrawals[0].Amount)

	w = do(t, s, http.MethodPost, "/api/v1/treasury/withdrawals", WithdrawalRequest{
		Token:  "0x00000000000000000000000000000000000000c0",
		To:     testRecipient.Hex(),
		Amount: "250",
	}, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, common.HexToAddress("0xc0"), backend.token)
	assert.Equal(t, testRecipient, backend.to)
	assert.Equal(t, big.NewInt(250), backend.amount)

	w = do(t, s, http.MethodPost, "/api/v1/treasury/deposits", DepositRequest{Token: "native", Amount: "0x10"}, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ledger.NativeToken, backend.token)
	assert.Equal(t, big.NewInt(16), backend.amount)

	w = do(t, s, http.MethodPost, "/api/v1/treasury/withdrawals", WithdrawalRequest{
		Token:  "native",
		To:     "nobody",
		Amount: "1",
	}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleAccountAndDelegate(t *testing.T) {
	backend := &mockBackend{
		account: AccountInfo{
			Address: testSender,
			Balance: big.NewInt(100),
			Votes:   big.NewInt(300),
		},
	}
	s := newTestServer(backend, false)

	w := do(t, s, http.MethodGet, "/api/v1/votes/"+testSender.Hex(), nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	account := decode[AccountResponse](t, w)
	assert.Equal(t, "300", account.Votes)
	assert.Nil(t, account.Delegate)

	w = do(t, s, http.MethodPost, "/api/v1/votes/delegate", DelegateRequest{Delegatee: testRecipient.Hex()}, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testSender, backend.sender)
	assert.Equal(t, testRecipient, backend.delegatee)
}

func TestHandleAdvanceDevModeOnly(t *testing.T) {
	backend := &mockBackend{tip: chain.Block{Number: 5}}

	s := newTestServer(backend, false)
	w := do(t, s, http.MethodPost, "/api/v1/dev/advance", AdvanceRequest{Blocks: 3}, true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	s = newTestServer(backend, true)
	w = do(t, s, http.MethodPost, "/api/v1/dev/advance", AdvanceRequest{Blocks: 3, StepSeconds: 12}, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint64(8), decode[TipResponse](t, w).Number)
	assert.Equal(t, []time.Duration{12 * time.Second, 12 * time.Second, 12 * time.Second}, backend.advanceSteps)

	w = do(t, s, http.MethodPost, "/api/v1/dev/advance", AdvanceRequest{Blocks: 0}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
