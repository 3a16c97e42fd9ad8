package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/kmerfield/bfield"
	"github.com/kmerfield/bfield/internal/member"
	"github.com/urfave/cli/v2"
)

func newCmdInfo() *cli.Command {
	return &cli.Command{
		Name:        "info",
		Description: "Print per-member (size, k, nu, kappa) for a b-field cascade.",
		ArgsUsage:   "<path-stem>",
		Action: func(c *cli.Context) error {
			stem := c.Args().Get(0)
			bf, err := bfield.FromFile[member.FileParams](stem, true, decodeFileParams)
			if err != nil {
				return cli.Exit(err, 1)
			}
			defer bf.Close()

			for i, info := range bf.Info() {
				fmt.Printf("member %d: %s bits  k=%d  nu=%d  kappa=%d\n",
					i, humanize.Comma(int64(info.SizeBits)), info.NHashes, info.MarkerWidth, info.NMarkerBits)
			}
			return nil
		},
	}
}
