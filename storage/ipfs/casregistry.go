package ipfs

import (
	"flag"
	"os"

	"xdao.co/multisig/storage"
	"xdao.co/multisig/storage/casregistry"
)

var (
	flagBin  string
	flagPath string
)

func init() {
	casregistry.MustRegister(casregistry.Backend{
		Name:        "ipfs",
		Description: "Kubo CLI snapshot store (local IPFS repo)",
		Usage:       casregistry.UsageCLI | casregistry.UsageDaemon,
		RegisterFlags: func(fs *flag.FlagSet) {
			fs.StringVar(&flagBin, "ipfs-bin", "", "Path to the ipfs binary (for --backend=ipfs)")
			fs.StringVar(&flagPath, "ipfs-path", "", "IPFS_PATH for the ipfs binary (for --backend=ipfs)")
		},
		Open: func() (storage.CAS, func() error, error) {
			opts := Options{Bin: flagBin}
			if flagPath != "" {
				opts.Env = append(os.Environ(), "IPFS_PATH="+flagPath)
			}
			return New(opts), nil, nil
		},
	})
}
