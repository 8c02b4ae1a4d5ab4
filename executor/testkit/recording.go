// Package testkit provides executor fakes for engine tests.
package testkit

import (
	"math/big"
	"sync"

	"xdao.co/multisig/action"
	"xdao.co/multisig/executor"
	"xdao.co/multisig/identity"
)

// ExecuteCall records one synchronous dispatch.
type ExecuteCall struct {
	To        identity.Address
	Amount    *big.Int
	Endpoint  string
	Arguments [][]byte
}

// DeployCall records one deploy-from-source dispatch.
type DeployCall struct {
	Amount       *big.Int
	Source       identity.Address
	CodeMetadata action.CodeMetadata
	Arguments    [][]byte
}

// UpgradeCall records one upgrade-from-source dispatch.
type UpgradeCall struct {
	Target       identity.Address
	Amount       *big.Int
	Source       identity.Address
	CodeMetadata action.CodeMetadata
	Arguments    [][]byte
}

// Recording is an executor.Executor that records every dispatch and returns
// configurable results. The zero value succeeds on everything.
type Recording struct {
	mu sync.Mutex

	Executes   []ExecuteCall
	AsyncCalls []executor.AsyncCall
	Deploys    []DeployCall
	Upgrades   []UpgradeCall

	// Failure injection. A nil error means success.
	ExecuteErr error
	AsyncErr   error
	DeployErr  error
	UpgradeErr error

	// DeployAddress is returned by DeployFromSource when set.
	DeployAddress identity.Address
}

var _ executor.Executor = (*Recording)(nil)

func (r *Recording) Execute(to identity.Address, amount *big.Int, endpoint string, args [][]byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Executes = append(r.Executes, ExecuteCall{To: to, Amount: amount, Endpoint: endpoint, Arguments: args})
	return r.ExecuteErr
}

func (r *Recording) ExecuteAsync(call executor.AsyncCall) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.AsyncCalls = append(r.AsyncCalls, call)
	return r.AsyncErr
}

func (r *Recording) DeployFromSource(amount *big.Int, source identity.Address, meta action.CodeMetadata, args [][]byte) (identity.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Deploys = append(r.Deploys, DeployCall{Amount: amount, Source: source, CodeMetadata: meta, Arguments: args})
	if r.DeployErr != nil {
		return identity.Address{}, r.DeployErr
	}
	return r.DeployAddress, nil
}

func (r *Recording) UpgradeFromSource(target identity.Address, amount *big.Int, source identity.Address, meta action.CodeMetadata, args [][]byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Upgrades = append(r.Upgrades, UpgradeCall{Target: target, Amount: amount, Source: source, CodeMetadata: meta, Arguments: args})
	return r.UpgradeErr
}
