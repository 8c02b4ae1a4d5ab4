package model

import (
	"encoding/json"
	"testing"

	"xdao.co/multisig/action"
)

func TestSnapshot_SignedRequest_JSONShape(t *testing.T) {
	req := SignedRequest{
		Caller:    "caller-address-hex",
		Scheme:    "ed25519",
		PublicKey: []byte("pubkey"),
		Signature: []byte("sig"),
		Body:      json.RawMessage(`{"actionId":7}`),
	}

	b, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		t.Fatalf("MarshalIndent failed: %v", err)
	}

	const want = "{\n" +
		"  \"caller\": \"caller-address-hex\",\n" +
		"  \"scheme\": \"ed25519\",\n" +
		"  \"publicKey\": \"cHVia2V5\",\n" +
		"  \"signature\": \"c2ln\",\n" +
		"  \"body\": {\n" +
		"    \"actionId\": 7\n" +
		"  }\n" +
		"}"

	if string(b) != want {
		t.Fatalf("snapshot mismatch:\n%s", string(b))
	}
}

func TestSnapshot_ActionResponse_JSONShape(t *testing.T) {
	resp := ActionResponse{
		ActionSummary: ActionSummary{
			ID:         3,
			Kind:       "ChangeQuorum",
			Proposer:   "proposer-address-hex",
			CreatedAt:  1700000000,
			Signers:    []string{"signer-a", "signer-b"},
			Signatures: 2,
			Ready:      true,
		},
		Action: action.Envelope{Payload: action.ChangeQuorum{NewQuorum: 2}},
	}

	b, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		t.Fatalf("MarshalIndent failed: %v", err)
	}

	const want = "{\n" +
		"  \"id\": 3,\n" +
		"  \"kind\": \"ChangeQuorum\",\n" +
		"  \"proposer\": \"proposer-address-hex\",\n" +
		"  \"createdAt\": 1700000000,\n" +
		"  \"signers\": [\n" +
		"    \"signer-a\",\n" +
		"    \"signer-b\"\n" +
		"  ],\n" +
		"  \"signatures\": 2,\n" +
		"  \"ready\": true,\n" +
		"  \"action\": {\n" +
		"    \"kind\": \"ChangeQuorum\",\n" +
		"    \"changeQuorum\": {\n" +
		"      \"newQuorum\": 2\n" +
		"    }\n" +
		"  }\n" +
		"}"

	if string(b) != want {
		t.Fatalf("snapshot mismatch:\n%s", string(b))
	}
}
