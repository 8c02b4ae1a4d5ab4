// Package action defines the closed set of governance action kinds.
//
// An action is a stored, typed intent awaiting sufficient board
// endorsement. The set of kinds is sealed: the dispatcher switches
// exhaustively over Payload implementations, so adding a kind means
// touching exactly one dispatch site.
package action

import (
	"math/big"

	"xdao.co/multisig/identity"
)

// Kind names an action variant. The string values are stable and appear in
// canonical renders, snapshots, and the wire format.
type Kind string

const (
	KindAddBoardMember      Kind = "AddBoardMember"
	KindAddProposer         Kind = "AddProposer"
	KindRemoveUser          Kind = "RemoveUser"
	KindChangeQuorum        Kind = "ChangeQuorum"
	KindSendTransferExecute Kind = "SendTransferExecute"
	KindSendAsyncCall       Kind = "SendAsyncCall"
	KindSCDeployFromSource  Kind = "SCDeployFromSource"
	KindSCUpgradeFromSource Kind = "SCUpgradeFromSource"
)

// Payload is the sealed interface over action variants.
type Payload interface {
	Kind() Kind
	sealed()
}

// CallData carries the parameters of an outbound value-transfer/call.
//
// Endpoint may be empty for a plain transfer; the dispatcher rejects a call
// that carries arguments without an endpoint at execution time.
type CallData struct {
	To        identity.Address
	Amount    *big.Int
	Endpoint  string
	Arguments [][]byte
}

// AddBoardMember promotes an account to board member.
type AddBoardMember struct {
	Address identity.Address
}

// AddProposer grants an account the proposer role.
type AddProposer struct {
	Address identity.Address
}

// RemoveUser strips an account of its role.
type RemoveUser struct {
	Address identity.Address
}

// ChangeQuorum sets a new signature threshold.
type ChangeQuorum struct {
	NewQuorum uint32
}

// SendTransferExecute performs a synchronous transfer-and-call.
type SendTransferExecute struct {
	Call CallData
}

// SendAsyncCall initiates an asynchronous call; completion arrives later
// through the engine's callback entry point.
type SendAsyncCall struct {
	Call CallData
}

// SCDeployFromSource deploys a new contract from the code of an existing one.
type SCDeployFromSource struct {
	Amount       *big.Int
	Source       identity.Address
	CodeMetadata CodeMetadata
	Arguments    [][]byte
}

// SCUpgradeFromSource upgrades a contract from the code of an existing one.
type SCUpgradeFromSource struct {
	Target       identity.Address
	Amount       *big.Int
	Source       identity.Address
	CodeMetadata CodeMetadata
	Arguments    [][]byte
}

func (AddBoardMember) Kind() Kind      { return KindAddBoardMember }
func (AddProposer) Kind() Kind         { return KindAddProposer }
func (RemoveUser) Kind() Kind          { return KindRemoveUser }
func (ChangeQuorum) Kind() Kind        { return KindChangeQuorum }
func (SendTransferExecute) Kind() Kind { return KindSendTransferExecute }
func (SendAsyncCall) Kind() Kind       { return KindSendAsyncCall }
func (SCDeployFromSource) Kind() Kind  { return KindSCDeployFromSource }
func (SCUpgradeFromSource) Kind() Kind { return KindSCUpgradeFromSource }

func (AddBoardMember) sealed()      {}
func (AddProposer) sealed()         {}
func (RemoveUser) sealed()          {}
func (ChangeQuorum) sealed()        {}
func (SendTransferExecute) sealed() {}
func (SendAsyncCall) sealed()       {}
func (SCDeployFromSource) sealed()  {}
func (SCUpgradeFromSource) sealed() {}

// amountOrZero normalizes a nil big.Int to zero for rendering and encoding.
func amountOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
