package action

import (
	"encoding/json"
	"math/big"
	"reflect"
	"testing"
)

func TestEnvelope_RoundTripAllKinds(t *testing.T) {
	payloads := []Payload{
		AddBoardMember{Address: addr(0x01)},
		AddProposer{Address: addr(0x02)},
		RemoveUser{Address: addr(0x03)},
		ChangeQuorum{NewQuorum: 4},
		SendTransferExecute{Call: CallData{
			To:        addr(0x05),
			Amount:    big.NewInt(12345),
			Endpoint:  "deposit",
			Arguments: [][]byte{{0xDE, 0xAD}},
		}},
		SendAsyncCall{Call: CallData{To: addr(0x06), Amount: new(big.Int)}},
		SCDeployFromSource{
			Amount:       big.NewInt(7),
			Source:       addr(0x07),
			CodeMetadata: MetadataUpgradeable,
			Arguments:    [][]byte{{0x01}},
		},
		SCUpgradeFromSource{
			Target:       addr(0x08),
			Amount:       new(big.Int),
			Source:       addr(0x09),
			CodeMetadata: MetadataPayable,
		},
	}

	for _, p := range payloads {
		t.Run(string(p.Kind()), func(t *testing.T) {
			b, err := json.Marshal(Envelope{Payload: p})
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			var back Envelope
			if err := json.Unmarshal(b, &back); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if back.Payload.Kind() != p.Kind() {
				t.Fatalf("kind mismatch: got %s want %s", back.Payload.Kind(), p.Kind())
			}
			// Canonical renders compare payloads without caring about
			// nil-vs-zero amount representation.
			wantRender, err := Render(p)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			gotRender, err := Render(back.Payload)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if string(gotRender) != string(wantRender) {
				t.Fatalf("render mismatch after round trip:\n%s\nvs\n%s", gotRender, wantRender)
			}
		})
	}
}

func TestEnvelope_RejectsMalformedInput(t *testing.T) {
	cases := map[string]string{
		"unknown kind":      `{"kind":"SelfDestruct"}`,
		"missing variant":   `{"kind":"ChangeQuorum"}`,
		"mismatched body":   `{"kind":"ChangeQuorum","addProposer":{"address":"00"}}`,
		"negative amount":   `{"kind":"SendTransferExecute","transferExecute":{"to":"` + addr(1).String() + `","amount":"-5"}}`,
		"non-digit amount":  `{"kind":"SendAsyncCall","asyncCall":{"to":"` + addr(1).String() + `","amount":"1e9"}}`,
		"nil action object": `{"kind":""}`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			var env Envelope
			if err := json.Unmarshal([]byte(in), &env); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestEnvelope_EmptyAmountDecodesAsZero(t *testing.T) {
	in := `{"kind":"SendTransferExecute","transferExecute":{"to":"` + addr(1).String() + `","amount":""}}`
	var env Envelope
	if err := json.Unmarshal([]byte(in), &env); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	call := env.Payload.(SendTransferExecute).Call
	if call.Amount.Sign() != 0 {
		t.Fatalf("expected zero amount, got %s", call.Amount)
	}
}

func TestEnvelope_MarshalNilPayloadFails(t *testing.T) {
	if _, err := json.Marshal(Envelope{}); err == nil {
		t.Fatalf("expected nil payload to be rejected")
	}
}

func TestEnvelope_PreservesArguments(t *testing.T) {
	p := SCDeployFromSource{
		Source:    addr(0x0A),
		Arguments: [][]byte{{0x00}, {0x01, 0x02}},
	}
	b, err := json.Marshal(Envelope{Payload: p})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back Envelope
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	got := back.Payload.(SCDeployFromSource).Arguments
	if !reflect.DeepEqual(got, p.Arguments) {
		t.Fatalf("arguments mismatch: %v vs %v", got, p.Arguments)
	}
}
