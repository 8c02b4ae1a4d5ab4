package main

import (
	"encoding/json"
	"fmt"
	"os"

	"xdao.co/multisig/action"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: msig_action_cid <action.json>")
		os.Exit(2)
	}
	b, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "read: %v\n", err)
		os.Exit(1)
	}
	var env action.Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		fmt.Fprintf(os.Stderr, "parse: %v\n", err)
		os.Exit(1)
	}
	id, err := action.Digest(env.Payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cid: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(id)
}
