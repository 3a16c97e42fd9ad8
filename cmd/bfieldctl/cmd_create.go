package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/kmerfield/bfield"
	"github.com/kmerfield/bfield/internal/member"
	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"
)

func newCmdCreate() *cli.Command {
	var size uint64
	var nHashes, markerWidth, nMarkerBits uint64
	var beta, maxBeta float64
	var nSecondaries int

	return &cli.Command{
		Name:        "create",
		Description: "Create a fresh b-field cascade at the given path stem.",
		ArgsUsage:   "<path-stem>",
		Flags: []cli.Flag{
			&cli.Uint64Flag{Name: "size", Usage: "bit size of the primary member", Value: 1 << 24, Destination: &size},
			&cli.Uint64Flag{Name: "k", Usage: "number of hashes per key", Value: 3, Destination: &nHashes},
			&cli.Uint64Flag{Name: "nu", Usage: "marker width in bits", Value: 64, Destination: &markerWidth},
			&cli.Uint64Flag{Name: "kappa", Usage: "number of set bits per marker", Value: 4, Destination: &nMarkerBits},
			&cli.Float64Flag{Name: "beta", Usage: "per-secondary shrink factor", Value: 0.6, Destination: &beta},
			&cli.Float64Flag{Name: "max-beta", Usage: "minimum shrink factor relative to the primary", Value: 0.3, Destination: &maxBeta},
			&cli.IntFlag{Name: "secondaries", Usage: "total member count including the primary", Value: 1, Destination: &nSecondaries},
		},
		Action: func(c *cli.Context) error {
			stem := c.Args().Get(0)
			if stem == "" {
				return fmt.Errorf("path stem required")
			}
			bf, err := bfield.Create[member.FileParams](
				stem, size,
				uint8(nHashes), uint8(markerWidth), uint8(nMarkerBits),
				beta, maxBeta, nSecondaries, nil,
			)
			if err != nil {
				return cli.Exit(err, 1)
			}
			defer bf.Close()
			for i, info := range bf.Info() {
				klog.Infof("member %d: %s bits, k=%d nu=%d kappa=%d", i, humanize.Comma(int64(info.SizeBits)), info.NHashes, info.MarkerWidth, info.NMarkerBits)
			}
			return nil
		},
	}
}
