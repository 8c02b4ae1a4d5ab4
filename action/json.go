package action

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"xdao.co/multisig/identity"
)

// Envelope wraps a Payload for JSON transport and snapshots.
//
// The encoding is kind-tagged: {"kind": "...", "<variant>": {...}} with
// exactly one variant object set. Amounts travel as decimal strings and
// byte arguments as base64 (the encoding/json default for []byte).
type Envelope struct {
	Payload Payload
}

type addressJSON struct {
	Address identity.Address `json:"address"`
}

type changeQuorumJSON struct {
	NewQuorum uint32 `json:"newQuorum"`
}

type callJSON struct {
	To        identity.Address `json:"to"`
	Amount    string           `json:"amount"`
	Endpoint  string           `json:"endpoint,omitempty"`
	Arguments [][]byte         `json:"arguments,omitempty"`
}

type deployJSON struct {
	Amount       string           `json:"amount"`
	Source       identity.Address `json:"source"`
	CodeMetadata CodeMetadata     `json:"codeMetadata"`
	Arguments    [][]byte         `json:"arguments,omitempty"`
}

type upgradeJSON struct {
	Target       identity.Address `json:"target"`
	Amount       string           `json:"amount"`
	Source       identity.Address `json:"source"`
	CodeMetadata CodeMetadata     `json:"codeMetadata"`
	Arguments    [][]byte         `json:"arguments,omitempty"`
}

type envelopeJSON struct {
	Kind            Kind              `json:"kind"`
	AddBoardMember  *addressJSON      `json:"addBoardMember,omitempty"`
	AddProposer     *addressJSON      `json:"addProposer,omitempty"`
	RemoveUser      *addressJSON      `json:"removeUser,omitempty"`
	ChangeQuorum    *changeQuorumJSON `json:"changeQuorum,omitempty"`
	TransferExecute *callJSON         `json:"transferExecute,omitempty"`
	AsyncCall       *callJSON         `json:"asyncCall,omitempty"`
	Deploy          *deployJSON       `json:"deployFromSource,omitempty"`
	Upgrade         *upgradeJSON      `json:"upgradeFromSource,omitempty"`
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.Payload == nil {
		return nil, errors.New("action: nil payload")
	}
	out := envelopeJSON{Kind: e.Payload.Kind()}
	switch a := e.Payload.(type) {
	case AddBoardMember:
		out.AddBoardMember = &addressJSON{Address: a.Address}
	case AddProposer:
		out.AddProposer = &addressJSON{Address: a.Address}
	case RemoveUser:
		out.RemoveUser = &addressJSON{Address: a.Address}
	case ChangeQuorum:
		out.ChangeQuorum = &changeQuorumJSON{NewQuorum: a.NewQuorum}
	case SendTransferExecute:
		out.TransferExecute = encodeCall(a.Call)
	case SendAsyncCall:
		out.AsyncCall = encodeCall(a.Call)
	case SCDeployFromSource:
		out.Deploy = &deployJSON{
			Amount:       amountOrZero(a.Amount).String(),
			Source:       a.Source,
			CodeMetadata: a.CodeMetadata,
			Arguments:    a.Arguments,
		}
	case SCUpgradeFromSource:
		out.Upgrade = &upgradeJSON{
			Target:       a.Target,
			Amount:       amountOrZero(a.Amount).String(),
			Source:       a.Source,
			CodeMetadata: a.CodeMetadata,
			Arguments:    a.Arguments,
		}
	default:
		return nil, fmt.Errorf("action: unknown payload kind %q", e.Payload.Kind())
	}
	return json.Marshal(out)
}

func (e *Envelope) UnmarshalJSON(data []byte) error {
	var in envelopeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.Kind {
	case KindAddBoardMember:
		if in.AddBoardMember == nil {
			return missingVariant(in.Kind)
		}
		e.Payload = AddBoardMember{Address: in.AddBoardMember.Address}
	case KindAddProposer:
		if in.AddProposer == nil {
			return missingVariant(in.Kind)
		}
		e.Payload = AddProposer{Address: in.AddProposer.Address}
	case KindRemoveUser:
		if in.RemoveUser == nil {
			return missingVariant(in.Kind)
		}
		e.Payload = RemoveUser{Address: in.RemoveUser.Address}
	case KindChangeQuorum:
		if in.ChangeQuorum == nil {
			return missingVariant(in.Kind)
		}
		e.Payload = ChangeQuorum{NewQuorum: in.ChangeQuorum.NewQuorum}
	case KindSendTransferExecute:
		if in.TransferExecute == nil {
			return missingVariant(in.Kind)
		}
		call, err := decodeCall(in.TransferExecute)
		if err != nil {
			return err
		}
		e.Payload = SendTransferExecute{Call: call}
	case KindSendAsyncCall:
		if in.AsyncCall == nil {
			return missingVariant(in.Kind)
		}
		call, err := decodeCall(in.AsyncCall)
		if err != nil {
			return err
		}
		e.Payload = SendAsyncCall{Call: call}
	case KindSCDeployFromSource:
		if in.Deploy == nil {
			return missingVariant(in.Kind)
		}
		amount, err := parseAmount(in.Deploy.Amount)
		if err != nil {
			return err
		}
		e.Payload = SCDeployFromSource{
			Amount:       amount,
			Source:       in.Deploy.Source,
			CodeMetadata: in.Deploy.CodeMetadata,
			Arguments:    in.Deploy.Arguments,
		}
	case KindSCUpgradeFromSource:
		if in.Upgrade == nil {
			return missingVariant(in.Kind)
		}
		amount, err := parseAmount(in.Upgrade.Amount)
		if err != nil {
			return err
		}
		e.Payload = SCUpgradeFromSource{
			Target:       in.Upgrade.Target,
			Amount:       amount,
			Source:       in.Upgrade.Source,
			CodeMetadata: in.Upgrade.CodeMetadata,
			Arguments:    in.Upgrade.Arguments,
		}
	default:
		return fmt.Errorf("action: unknown action kind %q", in.Kind)
	}
	return nil
}

func encodeCall(call CallData) *callJSON {
	return &callJSON{
		To:        call.To,
		Amount:    amountOrZero(call.Amount).String(),
		Endpoint:  call.Endpoint,
		Arguments: call.Arguments,
	}
}

func decodeCall(in *callJSON) (CallData, error) {
	amount, err := parseAmount(in.Amount)
	if err != nil {
		return CallData{}, err
	}
	return CallData{
		To:        in.To,
		Amount:    amount,
		Endpoint:  in.Endpoint,
		Arguments: in.Arguments,
	}, nil
}

func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("action: invalid amount %q", s)
	}
	return v, nil
}

func missingVariant(kind Kind) error {
	return fmt.Errorf("action: kind %q without matching variant object", kind)
}
