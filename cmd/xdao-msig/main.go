// Command xdao-msig is the operator CLI for a governed shared account: local
// key management, proposing and endorsing actions against a running
// xdao-msigd, and moving snapshot archives between stores.
package main

import (
	"crypto/rand"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ipfs/go-cid"

	"xdao.co/multisig/action"
	"xdao.co/multisig/grpcgov"
	"xdao.co/multisig/keys"
	"xdao.co/multisig/storage"
	"xdao.co/multisig/storage/bundle"
	"xdao.co/multisig/storage/casregistry"

	_ "xdao.co/multisig/storage/ipfs"
	_ "xdao.co/multisig/storage/localfs"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "key":
		return cmdKey(args[1:], out, errOut)
	case "address":
		return cmdAddress(args[1:], out, errOut)
	case "action-cid":
		return cmdActionCID(args[1:], out, errOut)
	case "propose":
		return cmdPropose(args[1:], out, errOut)
	case "sign":
		return cmdEndorse("sign", args[1:], out, errOut)
	case "unsign":
		return cmdEndorse("unsign", args[1:], out, errOut)
	case "discard":
		return cmdDiscard(args[1:], out, errOut)
	case "perform":
		return cmdPerform(args[1:], out, errOut)
	case "status":
		return cmdStatus(args[1:], out, errOut)
	case "action":
		return cmdAction(args[1:], out, errOut)
	case "snapshot":
		return cmdSnapshot(args[1:], out, errOut)
	case "bundle":
		return cmdBundle(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "xdao-msig: shared-account governance CLI")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  xdao-msig key init --name <name> [--scheme ed25519|dilithium3] [--seed-hex <64hex>] [--force]")
	fmt.Fprintln(w, "  xdao-msig key derive --from <name> --label <label> [--force]")
	fmt.Fprintln(w, "  xdao-msig key list")
	fmt.Fprintln(w, "  xdao-msig key export --name <name> [--label <label>]")
	fmt.Fprintln(w, "  xdao-msig address (--seed-hex <64hex> | --signer <name> [--signer-label <label>] | --key-file <path>)")
	fmt.Fprintln(w, "  xdao-msig action-cid <action.json>")
	fmt.Fprintln(w, "  xdao-msig propose --action <action.json> --target <addr> <signer flags>")
	fmt.Fprintln(w, "  xdao-msig sign|unsign|discard|perform --id <n> --target <addr> <signer flags>")
	fmt.Fprintln(w, "  xdao-msig status --target <addr>")
	fmt.Fprintln(w, "  xdao-msig action --id <n> --target <addr>")
	fmt.Fprintln(w, "  xdao-msig snapshot --target <addr>")
	fmt.Fprintln(w, "  xdao-msig bundle export --out <file> [--backend <name>] --cid <CID> [--cid ...]")
	fmt.Fprintln(w, "  xdao-msig bundle import --in <file> [--backend <name>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - keys are stored under ~/.xdao/multisig/keys/<name> (0600 key files)")
	fmt.Fprintln(w, "  - action.json is the kind-tagged envelope, e.g. {\"kind\":\"ChangeQuorum\",\"changeQuorum\":{\"newQuorum\":2}}")
	fmt.Fprintln(w, "  - action-cid prints the canonical content id of the action for out-of-band review")
}

// signerFlags are the shared flags for selecting an endorsement key.
type signerFlags struct {
	seedHex     string
	scheme      string
	signerName  string
	signerLabel string
	keyFile     string
}

func (sf *signerFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&sf.seedHex, "seed-hex", "", "Key seed as 64 hex chars")
	fs.StringVar(&sf.scheme, "scheme", "", "Signature scheme for --seed-hex (default ed25519)")
	fs.StringVar(&sf.signerName, "signer", "", "Use a stored key by name (from 'xdao-msig key init')")
	fs.StringVar(&sf.signerLabel, "signer-label", "", "When using --signer, use a derived label key")
	fs.StringVar(&sf.keyFile, "key-file", "", "Path to a key file created by 'xdao-msig key init/derive'")
}

func (sf *signerFlags) load(errOut io.Writer) (keys.Signer, bool) {
	if sf.seedHex == "" && sf.signerName == "" && sf.keyFile == "" {
		fmt.Fprintln(errOut, "missing signer: use --seed-hex, --signer, or --key-file")
		return nil, false
	}
	if sf.seedHex != "" && (sf.signerName != "" || sf.keyFile != "") {
		fmt.Fprintln(errOut, "conflicting signer flags: --seed-hex cannot be combined with --signer or --key-file")
		return nil, false
	}
	if sf.signerName != "" && sf.keyFile != "" {
		fmt.Fprintln(errOut, "conflicting signer flags: --signer cannot be combined with --key-file")
		return nil, false
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return nil, false
	}
	signer, err := ks.LoadSigner(sf.seedHex, sf.scheme, sf.signerName, sf.signerLabel, sf.keyFile)
	if err != nil {
		fmt.Fprintf(errOut, "invalid signer: %v\n", err)
		return nil, false
	}
	return signer, true
}

func dial(target string, signer keys.Signer, errOut io.Writer) (*grpcgov.Client, bool) {
	if target == "" {
		fmt.Fprintln(errOut, "missing --target")
		return nil, false
	}
	client, err := grpcgov.Dial(target, signer, grpcgov.DialOptions{Timeout: 10 * time.Second})
	if err != nil {
		fmt.Fprintf(errOut, "dial %s: %v\n", target, err)
		return nil, false
	}
	client.Timeout = 10 * time.Second
	return client, true
}

func cmdKey(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printKeyUsage(errOut)
		return 2
	}
	switch args[0] {
	case "init":
		return cmdKeyInit(args[1:], out, errOut)
	case "derive":
		return cmdKeyDerive(args[1:], out, errOut)
	case "list":
		return cmdKeyList(args[1:], out, errOut)
	case "export":
		return cmdKeyExport(args[1:], out, errOut)
	case "help", "-h", "--help":
		printKeyUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown key subcommand: %s\n\n", args[0])
		printKeyUsage(errOut)
		return 2
	}
}

func printKeyUsage(w io.Writer) {
	fmt.Fprintln(w, "xdao-msig key: minimal local key management (KMS-lite)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  xdao-msig key init --name <name> [--scheme ed25519|dilithium3] [--seed-hex <64hex>] [--force]")
	fmt.Fprintln(w, "  xdao-msig key derive --from <name> --label <label> [--force]")
	fmt.Fprintln(w, "  xdao-msig key list")
	fmt.Fprintln(w, "  xdao-msig key export --name <name> [--label <label>]")
}

func cmdKeyInit(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key init", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var name string
	var scheme string
	var seedHex string
	var force bool

	fs.StringVar(&name, "name", "", "Key name (directory under ~/.xdao/multisig/keys)")
	fs.StringVar(&scheme, "scheme", keys.SchemeEd25519, "Signature scheme: ed25519 or dilithium3")
	fs.StringVar(&seedHex, "seed-hex", "", "Optional seed as 64 hex chars (for reproducible demos)")
	fs.BoolVar(&force, "force", false, "Overwrite existing key files")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if name == "" {
		fmt.Fprintln(errOut, "missing --name")
		return 2
	}
	if err := keys.CheckKeyName(name); err != nil {
		fmt.Fprintf(errOut, "invalid --name: %v\n", err)
		return 2
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}

	var seed []byte
	if seedHex != "" {
		var derr error
		seed, derr = keys.ParseSeedHex(seedHex)
		if derr != nil {
			fmt.Fprintf(errOut, "invalid --seed-hex: %v\n", derr)
			return 2
		}
	} else {
		seed = make([]byte, keys.SeedSize)
		if _, err := rand.Read(seed); err != nil {
			fmt.Fprintf(errOut, "rand: %v\n", err)
			return 1
		}
	}

	address, rootPath, err := ks.InitializeRootKey(name, scheme, seed, force)
	if err != nil {
		fmt.Fprintf(errOut, "write key: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Created root key: %s\n", address)
	fmt.Fprintf(out, "Stored at: %s\n", rootPath)
	return 0
}

func cmdKeyDerive(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key derive", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var from string
	var label string
	var force bool

	fs.StringVar(&from, "from", "", "Root key name")
	fs.StringVar(&label, "label", "", "Sub-key label (e.g. the shared account's name)")
	fs.BoolVar(&force, "force", false, "Overwrite existing key files")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if from == "" {
		fmt.Fprintln(errOut, "missing --from")
		return 2
	}
	if label == "" {
		fmt.Fprintln(errOut, "missing --label")
		return 2
	}
	if err := keys.CheckKeyName(from); err != nil {
		fmt.Fprintf(errOut, "invalid --from: %v\n", err)
		return 2
	}
	if err := keys.CheckLabel(label); err != nil {
		fmt.Fprintf(errOut, "invalid --label: %v\n", err)
		return 2
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	address, labelPath, err := ks.DeriveKeyFromLabel(from, label, force)
	if err != nil {
		fmt.Fprintf(errOut, "derive label key: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Created label key: %s\n", address)
	fmt.Fprintf(out, "Stored at: %s\n", labelPath)
	return 0
}

func cmdKeyExport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key export", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var name string
	var label string

	fs.StringVar(&name, "name", "", "Key name")
	fs.StringVar(&label, "label", "", "Optional label (if set, exports the derived label key)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if name == "" {
		fmt.Fprintln(errOut, "missing --name")
		return 2
	}
	if err := keys.CheckKeyName(name); err != nil {
		fmt.Fprintf(errOut, "invalid --name: %v\n", err)
		return 2
	}
	if label != "" {
		if err := keys.CheckLabel(label); err != nil {
			fmt.Fprintf(errOut, "invalid --label: %v\n", err)
			return 2
		}
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	pub, err := ks.ExportKey(name, label)
	if err != nil {
		fmt.Fprintf(errOut, "export key: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, pub)
	return 0
}

func cmdKeyList(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key list", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	entries, err := ks.ListKeys()
	if err != nil {
		fmt.Fprintf(errOut, "list keys: %v\n", err)
		return 1
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s\n", e.Identifier)
		for _, l := range e.Labels {
			fmt.Fprintf(out, "  - %s\n", l)
		}
	}
	return 0
}

func cmdAddress(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("address", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var sf signerFlags
	sf.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	signer, ok := sf.load(errOut)
	if !ok {
		return 2
	}
	fmt.Fprintln(out, signer.Address())
	return 0
}

func cmdActionCID(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("action-cid", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: xdao-msig action-cid <action.json>")
		return 2
	}
	env, ok := readActionFile(fs.Arg(0), errOut)
	if !ok {
		return 1
	}
	id, err := action.Digest(env.Payload)
	if err != nil {
		fmt.Fprintf(errOut, "digest: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, id)
	return 0
}

func readActionFile(path string, errOut io.Writer) (action.Envelope, bool) {
	var env action.Envelope
	b, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(errOut, "read action: %v\n", err)
		return env, false
	}
	if err := json.Unmarshal(b, &env); err != nil {
		fmt.Fprintf(errOut, "invalid action: %v\n", err)
		return env, false
	}
	return env, true
}

func cmdPropose(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("propose", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var target string
	var actionPath string
	var sf signerFlags
	fs.StringVar(&target, "target", "", "Daemon address (host:port)")
	fs.StringVar(&actionPath, "action", "", "Action envelope JSON file")
	sf.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if actionPath == "" {
		fmt.Fprintln(errOut, "missing --action")
		return 2
	}
	env, ok := readActionFile(actionPath, errOut)
	if !ok {
		return 1
	}
	signer, ok := sf.load(errOut)
	if !ok {
		return 2
	}
	client, ok := dial(target, signer, errOut)
	if !ok {
		return 1
	}
	defer client.Close()

	id, err := client.Propose(env.Payload)
	if err != nil {
		fmt.Fprintf(errOut, "propose: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Action-ID: %d\n", id)
	return 0
}

func cmdEndorse(verb string, args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet(verb, flag.ContinueOnError)
	fs.SetOutput(errOut)
	var target string
	var id uint64
	var sf signerFlags
	fs.StringVar(&target, "target", "", "Daemon address (host:port)")
	fs.Uint64Var(&id, "id", 0, "Action id")
	sf.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if id == 0 {
		fmt.Fprintln(errOut, "missing --id")
		return 2
	}
	signer, ok := sf.load(errOut)
	if !ok {
		return 2
	}
	client, ok := dial(target, signer, errOut)
	if !ok {
		return 1
	}
	defer client.Close()

	call := client.Sign
	if verb == "unsign" {
		call = client.Unsign
	}
	view, err := call(id)
	if err != nil {
		fmt.Fprintf(errOut, "%s: %v\n", verb, err)
		return 1
	}
	printActionView(out, view.Kind, view.Signatures, view.Ready)
	return 0
}

func printActionView(out io.Writer, kind string, signatures uint32, ready bool) {
	state := "pending"
	if ready {
		state = "ready"
	}
	fmt.Fprintf(out, "%s: %d signature(s), %s\n", kind, signatures, state)
}

func cmdDiscard(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("discard", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var target string
	var id uint64
	var sf signerFlags
	fs.StringVar(&target, "target", "", "Daemon address (host:port)")
	fs.Uint64Var(&id, "id", 0, "Action id")
	sf.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if id == 0 {
		fmt.Fprintln(errOut, "missing --id")
		return 2
	}
	signer, ok := sf.load(errOut)
	if !ok {
		return 2
	}
	client, ok := dial(target, signer, errOut)
	if !ok {
		return 1
	}
	defer client.Close()

	if err := client.Discard(id); err != nil {
		fmt.Fprintf(errOut, "discard: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Discarded action %d\n", id)
	return 0
}

func cmdPerform(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("perform", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var target string
	var id uint64
	var sf signerFlags
	fs.StringVar(&target, "target", "", "Daemon address (host:port)")
	fs.Uint64Var(&id, "id", 0, "Action id")
	sf.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if id == 0 {
		fmt.Fprintln(errOut, "missing --id")
		return 2
	}
	signer, ok := sf.load(errOut)
	if !ok {
		return 2
	}
	client, ok := dial(target, signer, errOut)
	if !ok {
		return 1
	}
	defer client.Close()

	resp, err := client.Perform(id)
	if err != nil {
		fmt.Fprintf(errOut, "perform: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Performed action %d (%s)\n", resp.ActionID, resp.Kind)
	if resp.NewAddress != "" {
		fmt.Fprintf(out, "New-Address: %s\n", resp.NewAddress)
	}
	if resp.CallError != "" {
		fmt.Fprintf(errOut, "warning: downstream call failed: %s\n", resp.CallError)
	}
	return 0
}

func cmdStatus(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var target string
	fs.StringVar(&target, "target", "", "Daemon address (host:port)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	client, ok := dial(target, nil, errOut)
	if !ok {
		return 1
	}
	defer client.Close()

	st, err := client.Status()
	if err != nil {
		fmt.Fprintf(errOut, "status: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Quorum: %d\n", st.Quorum)
	fmt.Fprintln(out, "Board:")
	for _, a := range st.BoardMembers {
		fmt.Fprintf(out, "  - %s\n", a)
	}
	if len(st.Proposers) > 0 {
		fmt.Fprintln(out, "Proposers:")
		for _, a := range st.Proposers {
			fmt.Fprintf(out, "  - %s\n", a)
		}
	}
	fmt.Fprintf(out, "Pending actions: %d\n", len(st.Pending))
	for _, p := range st.Pending {
		state := "pending"
		if p.Ready {
			state = "ready"
		}
		fmt.Fprintf(out, "  #%d %s by %s: %d signature(s), %s\n", p.ID, p.Kind, p.Proposer, p.Signatures, state)
	}
	return 0
}

func cmdAction(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("action", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var target string
	var id uint64
	fs.StringVar(&target, "target", "", "Daemon address (host:port)")
	fs.Uint64Var(&id, "id", 0, "Action id")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if id == 0 {
		fmt.Fprintln(errOut, "missing --id")
		return 2
	}
	client, ok := dial(target, nil, errOut)
	if !ok {
		return 1
	}
	defer client.Close()

	resp, err := client.Action(id)
	if err != nil {
		fmt.Fprintf(errOut, "action: %v\n", err)
		return 1
	}
	b, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		fmt.Fprintf(errOut, "encode: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, string(b))
	return 0
}

func cmdSnapshot(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("snapshot", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var target string
	fs.StringVar(&target, "target", "", "Daemon address (host:port)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	client, ok := dial(target, nil, errOut)
	if !ok {
		return 1
	}
	defer client.Close()

	cidStr, err := client.Snapshot()
	if err != nil {
		fmt.Fprintf(errOut, "snapshot: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, cidStr)
	return 0
}

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func cmdBundle(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: xdao-msig bundle <export|import> ...")
		return 2
	}
	switch args[0] {
	case "export":
		return cmdBundleExport(args[1:], out, errOut)
	case "import":
		return cmdBundleImport(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown bundle subcommand: %s\n", args[0])
		return 2
	}
}

func openBackend(fs *flag.FlagSet, backend *string, args []string, errOut io.Writer) (storage.CAS, func() error, bool) {
	casregistry.RegisterFlags(fs, casregistry.UsageCLI)
	if err := fs.Parse(args); err != nil {
		return nil, nil, false
	}
	cas, closeFn, err := casregistry.Open(*backend, casregistry.UsageCLI)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return nil, nil, false
	}
	return cas, closeFn, true
}

func cmdBundleExport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("bundle export", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var outPath string
	var backend string
	var cids stringList
	fs.StringVar(&outPath, "out", "", "Output archive path")
	fs.StringVar(&backend, "backend", "localfs", "Snapshot store backend name")
	fs.Var(&cids, "cid", "Snapshot CID to export (repeatable)")

	cas, closeFn, ok := openBackend(fs, &backend, args, errOut)
	if !ok {
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}
	if outPath == "" {
		fmt.Fprintln(errOut, "missing --out")
		return 2
	}
	if len(cids) == 0 {
		fmt.Fprintln(errOut, "missing --cid")
		return 2
	}

	ids := make([]cid.Cid, 0, len(cids))
	for _, s := range cids {
		id, err := cid.Decode(s)
		if err != nil {
			fmt.Fprintf(errOut, "invalid --cid %q: %v\n", s, err)
			return 2
		}
		ids = append(ids, id)
	}

	f, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(errOut, "create %s: %v\n", outPath, err)
		return 1
	}
	defer f.Close()

	opts := bundle.ExportOptions{IncludeIndex: true}
	if len(ids) > 0 {
		opts.Labels = map[string]cid.Cid{"latest": ids[len(ids)-1]}
	}
	if err := bundle.Export(f, cas, ids, opts); err != nil {
		fmt.Fprintf(errOut, "export: %v\n", err)
		return 1
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(errOut, "close: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Exported %d snapshot(s) to %s\n", len(ids), outPath)
	return 0
}

func cmdBundleImport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("bundle import", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var inPath string
	var backend string
	fs.StringVar(&inPath, "in", "", "Input archive path")
	fs.StringVar(&backend, "backend", "localfs", "Snapshot store backend name")

	cas, closeFn, ok := openBackend(fs, &backend, args, errOut)
	if !ok {
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}
	if inPath == "" {
		fmt.Fprintln(errOut, "missing --in")
		return 2
	}

	f, err := os.Open(inPath)
	if err != nil {
		fmt.Fprintf(errOut, "open %s: %v\n", inPath, err)
		return 1
	}
	defer f.Close()

	if err := bundle.Import(f, cas); err != nil {
		fmt.Fprintf(errOut, "import: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Imported %s\n", inPath)
	return 0
}
