// Package ledger is an in-memory host-ledger executor.
//
// It models exactly what the engine's delegations need from a host chain:
// account balances, per-account endpoint handlers, contract slots for
// deploy/upgrade, and a pending queue of asynchronous calls delivered on
// demand. It is deterministic and offline, intended for tests and local
// runs of the governance daemon.
package ledger

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"xdao.co/multisig/action"
	"xdao.co/multisig/executor"
	"xdao.co/multisig/identity"
)

// Handler executes an endpoint on a hosted account. A returned error fails
// the calling dispatch (synchronously or via the async callback).
type Handler func(amount *big.Int, args [][]byte) ([]byte, error)

// Ledger implements executor.Executor against in-memory state.
type Ledger struct {
	mu sync.Mutex

	// account is the address funds are drawn from: the governed account.
	account identity.Address

	balances  map[identity.Address]*big.Int
	endpoints map[identity.Address]map[string]Handler
	code      map[identity.Address]identity.Address // contract -> code source
	pending   []executor.AsyncCall
	deploys   uint64
}

var _ executor.Executor = (*Ledger)(nil)

// New constructs a ledger that debits account on outbound dispatches.
func New(account identity.Address) *Ledger {
	return &Ledger{
		account:   account,
		balances:  make(map[identity.Address]*big.Int),
		endpoints: make(map[identity.Address]map[string]Handler),
		code:      make(map[identity.Address]identity.Address),
	}
}

// Credit adds amount to the balance of addr.
func (l *Ledger) Credit(addr identity.Address, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.creditLocked(addr, amount)
}

func (l *Ledger) creditLocked(addr identity.Address, amount *big.Int) {
	if amount == nil || amount.Sign() == 0 {
		return
	}
	cur, ok := l.balances[addr]
	if !ok {
		cur = new(big.Int)
		l.balances[addr] = cur
	}
	cur.Add(cur, amount)
}

// BalanceOf returns a copy of addr's balance.
func (l *Ledger) BalanceOf(addr identity.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cur, ok := l.balances[addr]
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(cur)
}

// RegisterEndpoint installs a callable endpoint on addr.
func (l *Ledger) RegisterEndpoint(addr identity.Address, name string, h Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	eps, ok := l.endpoints[addr]
	if !ok {
		eps = make(map[string]Handler)
		l.endpoints[addr] = eps
	}
	eps[name] = h
}

func (l *Ledger) Execute(to identity.Address, amount *big.Int, endpoint string, args [][]byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.callLocked(to, amount, endpoint, args)
	return err
}

func (l *Ledger) ExecuteAsync(call executor.AsyncCall) error {
	if call.Callback == "" {
		return errors.New("ledger: async call without callback endpoint")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = append(l.pending, call)
	return nil
}

// PendingCalls returns the number of queued asynchronous calls.
func (l *Ledger) PendingCalls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// CallbackFunc receives the completion of an asynchronous call. It matches
// the engine's AsyncCallResult entry point.
type CallbackFunc func(callID uint64, ok bool, payload []byte)

// DeliverPending executes every queued asynchronous call and reports each
// outcome through deliver. The queue drains even when calls fail.
func (l *Ledger) DeliverPending(deliver CallbackFunc) {
	l.mu.Lock()
	queue := l.pending
	l.pending = nil
	l.mu.Unlock()

	for _, call := range queue {
		l.mu.Lock()
		payload, err := l.callLocked(call.To, call.Amount, call.Endpoint, call.Arguments)
		l.mu.Unlock()
		if deliver == nil {
			continue
		}
		if err != nil {
			deliver(call.CallID, false, []byte(err.Error()))
			continue
		}
		deliver(call.CallID, true, payload)
	}
}

func (l *Ledger) callLocked(to identity.Address, amount *big.Int, endpoint string, args [][]byte) ([]byte, error) {
	if err := l.transferLocked(l.account, to, amount); err != nil {
		return nil, err
	}
	if endpoint == "" {
		return nil, nil
	}
	eps := l.endpoints[to]
	h, ok := eps[endpoint]
	if !ok {
		return nil, fmt.Errorf("ledger: account %s has no endpoint %q", to, endpoint)
	}
	return h(amount, args)
}

func (l *Ledger) transferLocked(from, to identity.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if amount.Sign() < 0 {
		return errors.New("ledger: negative amount")
	}
	cur, ok := l.balances[from]
	if !ok || cur.Cmp(amount) < 0 {
		return fmt.Errorf("ledger: insufficient balance on %s", from)
	}
	cur.Sub(cur, amount)
	l.creditLocked(to, amount)
	return nil
}

func (l *Ledger) DeployFromSource(amount *big.Int, source identity.Address, meta action.CodeMetadata, args [][]byte) (identity.Address, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.code[source]; !ok && len(l.endpoints[source]) == 0 {
		return identity.Address{}, fmt.Errorf("ledger: source %s holds no code", source)
	}
	// Check-then-act: a failed funding transfer must not mint the contract
	// slot or consume the nonce.
	addr := l.newAddressLocked(source, l.deploys+1)
	if err := l.transferLocked(l.account, addr, amount); err != nil {
		return identity.Address{}, err
	}
	l.deploys++
	l.code[addr] = source
	_ = meta
	_ = args
	return addr, nil
}

func (l *Ledger) UpgradeFromSource(target identity.Address, amount *big.Int, source identity.Address, meta action.CodeMetadata, args [][]byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.code[target]; !ok {
		return fmt.Errorf("ledger: target %s is not a deployed contract", target)
	}
	if _, ok := l.code[source]; !ok && len(l.endpoints[source]) == 0 {
		return fmt.Errorf("ledger: source %s holds no code", source)
	}
	l.code[target] = source
	_ = meta
	_ = args
	return l.transferLocked(l.account, target, amount)
}

// InstallContract marks addr as holding code so it can serve as a
// deploy/upgrade source.
func (l *Ledger) InstallContract(addr identity.Address) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.code[addr] = addr
}

// CodeSourceOf returns the code source recorded for a deployed contract.
func (l *Ledger) CodeSourceOf(addr identity.Address) (identity.Address, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	src, ok := l.code[addr]
	return src, ok
}

func (l *Ledger) newAddressLocked(source identity.Address, nonce uint64) identity.Address {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], nonce)
	h := sha256.New()
	h.Write(source[:])
	h.Write(buf[:])
	var addr identity.Address
	copy(addr[:], h.Sum(nil))
	return addr
}
