// msig_vector_gen prints conformance vectors for the canonical action
// encoding: the rendered bytes and CID for one action of every kind, with
// fixed inputs. Other implementations can diff against the output.
package main

import (
	"fmt"
	"math/big"

	"xdao.co/multisig/action"
	"xdao.co/multisig/identity"
)

func fixedAddress(fill byte) identity.Address {
	var a [identity.AddressSize]byte
	for i := range a {
		a[i] = fill
	}
	return identity.Address(a)
}

func main() {
	target := fixedAddress(0xA1)
	source := fixedAddress(0xB2)

	vectors := []action.Payload{
		action.AddBoardMember{Address: target},
		action.AddProposer{Address: target},
		action.RemoveUser{Address: target},
		action.ChangeQuorum{NewQuorum: 3},
		action.SendTransferExecute{Call: action.CallData{
			To:        target,
			Amount:    big.NewInt(1000),
			Endpoint:  "deposit",
			Arguments: [][]byte{{0x01}, {0x02, 0x03}},
		}},
		action.SendAsyncCall{Call: action.CallData{
			To:     target,
			Amount: big.NewInt(0),
		}},
		action.SCDeployFromSource{
			Amount:       big.NewInt(500),
			Source:       source,
			CodeMetadata: action.MetadataUpgradeable | action.MetadataPayable,
			Arguments:    [][]byte{{0xFF}},
		},
		action.SCUpgradeFromSource{
			Target:       target,
			Amount:       big.NewInt(0),
			Source:       source,
			CodeMetadata: action.MetadataUpgradeable,
		},
	}

	for _, p := range vectors {
		rendered, err := action.Render(p)
		if err != nil {
			panic(err)
		}
		id, err := action.Digest(p)
		if err != nil {
			panic(err)
		}
		fmt.Printf("Kind=%s\n", p.Kind())
		fmt.Printf("CID=%s\n", id)
		fmt.Printf("---BEGIN---\n%s\n---END---\n\n", rendered)
	}
}
