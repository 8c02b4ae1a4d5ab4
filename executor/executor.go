// Package executor defines the external value-transfer, call, and
// deployment primitives the governance engine delegates to.
//
// The engine treats every dispatch as one-shot: once a call is handed to
// the executor, governance state is committed regardless of the call's
// outcome. The asynchronous variant completes later through the engine's
// callback entry point; callbacks may arrive in any order.
package executor

import (
	"math/big"

	"xdao.co/multisig/action"
	"xdao.co/multisig/identity"
)

// CallbackEndpoint names the entry point the external primitive invokes
// when an asynchronous call completes.
const CallbackEndpoint = "asyncCallCallback"

// AsyncCall carries an asynchronous dispatch. CallID correlates the later
// callback with the action that initiated the call.
type AsyncCall struct {
	CallID    uint64
	To        identity.Address
	Amount    *big.Int
	Endpoint  string
	Arguments [][]byte
	Callback  string
}

// Executor is the contract with the host ledger's call primitives.
//
// Implementations move balances and invoke other accounts' code; they never
// touch governance state.
type Executor interface {
	// Execute performs a synchronous transfer-and-call and returns the
	// callee's failure inline.
	Execute(to identity.Address, amount *big.Int, endpoint string, args [][]byte) error

	// ExecuteAsync initiates an asynchronous call. A returned error means
	// initiation failed; the call's eventual outcome is reported through
	// the callback named in the AsyncCall.
	ExecuteAsync(call AsyncCall) error

	// DeployFromSource deploys a new contract from the code of source and
	// returns the new account's address.
	DeployFromSource(amount *big.Int, source identity.Address, meta action.CodeMetadata, args [][]byte) (identity.Address, error)

	// UpgradeFromSource upgrades target from the code of source.
	UpgradeFromSource(target identity.Address, amount *big.Int, source identity.Address, meta action.CodeMetadata, args [][]byte) error
}
