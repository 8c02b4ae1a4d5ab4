// Command xdao-msigd serves one shared account's governance engine over
// gRPC. Board membership and quorum come from flags at first start, or from
// a persisted snapshot on restart.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/ipfs/go-cid"
	"google.golang.org/grpc"

	"xdao.co/multisig/engine"
	"xdao.co/multisig/executor/ledger"
	"xdao.co/multisig/grpcgov"
	"xdao.co/multisig/identity"
	"xdao.co/multisig/storage"
	"xdao.co/multisig/storage/casconfig"
	"xdao.co/multisig/storage/casregistry"

	_ "xdao.co/multisig/storage/ipfs"
	_ "xdao.co/multisig/storage/localfs"
)

func init() {
	// Ephemeral backend for demos and tests; snapshots die with the process.
	casregistry.MustRegister(casregistry.Backend{
		Name:          "memory",
		Description:   "In-memory snapshot store (not persisted)",
		Usage:         casregistry.UsageDaemon,
		RegisterFlags: func(fs *flag.FlagSet) {},
		Open: func() (storage.CAS, func() error, error) {
			return storage.NewMemoryCAS(), nil, nil
		},
	})
}

type addressList []identity.Address

func (a *addressList) String() string {
	parts := make([]string, 0, len(*a))
	for _, addr := range *a {
		parts = append(parts, addr.String())
	}
	return strings.Join(parts, ",")
}

func (a *addressList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		addr, err := identity.Parse(part)
		if err != nil {
			return err
		}
		*a = append(*a, addr)
	}
	return nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("xdao-msigd", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7787", "listen address")
	backend := fs.String("backend", "localfs", "snapshot store backend name")
	casConfig := fs.String("cas-config", "", "JSON config for replicated snapshot backends (overrides -backend)")
	listBackends := fs.Bool("list-backends", false, "List supported backends and exit")
	snapshot := fs.String("snapshot", "", "Snapshot CID to restore the engine from")
	account := fs.String("account", "", "Shared account address (hex); defaults to the first board member")
	quorum := fs.Uint("quorum", 0, "Initial signature threshold")
	var board addressList
	var proposers addressList
	fs.Var(&board, "board", "Board member address (hex, repeatable or comma-separated)")
	fs.Var(&proposers, "proposer", "Proposer address (hex, repeatable or comma-separated)")

	casregistry.RegisterFlags(fs, casregistry.UsageDaemon)

	_ = fs.Parse(args)
	if *listBackends {
		for _, b := range casregistry.List(casregistry.UsageDaemon) {
			if b.Description == "" {
				fmt.Fprintf(os.Stdout, "%s\n", b.Name)
				continue
			}
			fmt.Fprintf(os.Stdout, "%s\t%s\n", b.Name, b.Description)
		}
		return 0
	}

	cas, closeFn, err := openCAS(*backend, *casConfig)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}

	acct, err := accountAddress(*account, board)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	cfg := engine.Config{
		Board:     board,
		Proposers: proposers,
		Quorum:    uint32(*quorum),
		Executor:  ledger.New(acct),
	}

	var eng *engine.Engine
	if *snapshot != "" {
		id, derr := cid.Decode(*snapshot)
		if derr != nil {
			fmt.Fprintf(os.Stderr, "invalid -snapshot CID: %v\n", derr)
			return 2
		}
		eng, err = engine.LoadSnapshot(cas, id, cfg)
	} else {
		eng, err = engine.New(cfg)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer lis.Close()

	s := grpc.NewServer()
	grpcgov.RegisterGovernanceServer(s, &grpcgov.Server{Engine: eng, Snapshots: cas})

	fmt.Fprintf(os.Stderr, "xdao-msigd listening on %s (quorum=%d board=%d)\n",
		lis.Addr().String(), eng.Quorum(), eng.BoardMemberCount())
	if err := s.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func openCAS(backend, configPath string) (storage.CAS, func() error, error) {
	if configPath != "" {
		cfg, err := casconfig.LoadFile(configPath)
		if err != nil {
			return nil, nil, err
		}
		return cfg.Open(casregistry.UsageDaemon)
	}
	return casregistry.Open(backend, casregistry.UsageDaemon)
}

func accountAddress(flagValue string, board []identity.Address) (identity.Address, error) {
	if flagValue != "" {
		return identity.Parse(flagValue)
	}
	if len(board) > 0 {
		return board[0], nil
	}
	return identity.Address{}, fmt.Errorf("missing -account (or at least one -board member)")
}
