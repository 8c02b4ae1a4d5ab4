package action

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	// Preamble and Postamble frame the canonical text form of an action.
	Preamble  = "-----BEGIN XDAO MULTISIG ACTION-----"
	Postamble = "-----END XDAO MULTISIG ACTION-----"
)

// Render produces the canonical byte form of an action payload.
//
// Canonical form is a framed key-value listing: keys sorted
// lexicographically, "Key: Value" pairs, LF line endings, no trailing
// whitespace. Equal payloads always render to equal bytes, so the render is
// a fit input for content addressing.
func Render(p Payload) ([]byte, error) {
	if p == nil {
		return nil, errors.New("action: nil payload")
	}
	pairs, err := renderPairs(p)
	if err != nil {
		return nil, err
	}
	pairs["Kind"] = string(p.Kind())

	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		if k == "" {
			return nil, errors.New("action: empty render key")
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(Preamble)
	sb.WriteString("\n")
	for _, k := range keys {
		v := pairs[k]
		if strings.ContainsAny(v, "\n\r") {
			return nil, errors.New("action: render value must not contain newlines")
		}
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(v)
		sb.WriteString("\n")
	}
	sb.WriteString(Postamble)
	return []byte(sb.String()), nil
}

func renderPairs(p Payload) (map[string]string, error) {
	pairs := make(map[string]string)
	switch a := p.(type) {
	case AddBoardMember:
		pairs["Address"] = a.Address.String()
	case AddProposer:
		pairs["Address"] = a.Address.String()
	case RemoveUser:
		pairs["Address"] = a.Address.String()
	case ChangeQuorum:
		pairs["NewQuorum"] = fmt.Sprintf("%d", a.NewQuorum)
	case SendTransferExecute:
		renderCall(pairs, a.Call)
	case SendAsyncCall:
		renderCall(pairs, a.Call)
	case SCDeployFromSource:
		pairs["Amount"] = amountOrZero(a.Amount).String()
		pairs["Source"] = a.Source.String()
		pairs["CodeMetadata"] = a.CodeMetadata.String()
		renderArguments(pairs, a.Arguments)
	case SCUpgradeFromSource:
		pairs["Target"] = a.Target.String()
		pairs["Amount"] = amountOrZero(a.Amount).String()
		pairs["Source"] = a.Source.String()
		pairs["CodeMetadata"] = a.CodeMetadata.String()
		renderArguments(pairs, a.Arguments)
	default:
		return nil, fmt.Errorf("action: unknown payload kind %q", p.Kind())
	}
	return pairs, nil
}

func renderCall(pairs map[string]string, call CallData) {
	pairs["To"] = call.To.String()
	pairs["Amount"] = amountOrZero(call.Amount).String()
	if call.Endpoint != "" {
		pairs["Endpoint"] = call.Endpoint
	}
	renderArguments(pairs, call.Arguments)
}

// renderArguments emits one zero-padded indexed key per argument so the
// sorted key order preserves the argument order.
func renderArguments(pairs map[string]string, args [][]byte) {
	for i, arg := range args {
		pairs[fmt.Sprintf("Arg-%04d", i)] = "0x" + hex.EncodeToString(arg)
	}
}
