package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kmerfield/bfield"
	"github.com/kmerfield/bfield/internal/member"
	"github.com/urfave/cli/v2"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"k8s.io/klog/v2"
)

// newCmdBuild runs the multi-pass cascade build the spec's §4.4 rationale
// describes: insert every key into M0, then re-insert only the keys that
// came back Indeterminate into M1, and so on.
func newCmdBuild() *cli.Command {
	var size uint64
	var nHashes, markerWidth, nMarkerBits uint64
	var beta, maxBeta float64
	var nSecondaries int

	return &cli.Command{
		Name:        "build",
		Description: "Build a b-field cascade from a newline-delimited \"key value\" input file.",
		ArgsUsage:   "<path-stem> <input-file>",
		Flags: []cli.Flag{
			&cli.Uint64Flag{Name: "size", Value: 1 << 24, Destination: &size},
			&cli.Uint64Flag{Name: "k", Value: 3, Destination: &nHashes},
			&cli.Uint64Flag{Name: "nu", Value: 64, Destination: &markerWidth},
			&cli.Uint64Flag{Name: "kappa", Value: 4, Destination: &nMarkerBits},
			&cli.Float64Flag{Name: "beta", Value: 0.6, Destination: &beta},
			&cli.Float64Flag{Name: "max-beta", Value: 0.3, Destination: &maxBeta},
			&cli.IntFlag{Name: "secondaries", Value: 3, Destination: &nSecondaries},
		},
		Action: func(c *cli.Context) error {
			stem := c.Args().Get(0)
			inputPath := c.Args().Get(1)

			entries, err := readKeyValueFile(inputPath)
			if err != nil {
				return cli.Exit(err, 1)
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

			progress := mpb.New(mpb.WithWidth(60))
			pending := entries
			infos := bf.Info()

			for pass := 0; pass < len(infos) && len(pending) > 0; pass++ {
				bar := progress.AddBar(int64(len(pending)),
					mpb.PrependDecorators(decor.Name(fmt.Sprintf("pass %d", pass))),
					mpb.AppendDecorators(decor.Percentage()),
				)
				// bf.Insert's bool only reports whether the pre-check against
				// earlier members let the insert through, not whether the key
				// resolved at this pass's member. That is asked once every key
				// of the pass is in: a key the cascade does not report as Some
				// is indeterminate here and goes on to the next pass.
				var inserted, promoted []kvEntry
				for _, e := range pending {
					ok, err := bf.Insert(e.key, e.value, pass)
					if err != nil {
						return cli.Exit(err, 1)
					}
					if ok {
						inserted = append(inserted, e)
					}
					bar.Increment()
				}
				bar.Wait()
				for _, e := range inserted {
					res, err := bf.LookupVerbose(e.key)
					if err != nil {
						return cli.Exit(err, 1)
					}
					if res.State != member.StateSome {
						promoted = append(promoted, e)
					}
				}
				pending = promoted
			}
			progress.Wait()

			if len(pending) > 0 {
				klog.Warningf("%d keys remain indeterminate after %d passes", len(pending), len(infos))
			}
			return bf.Sync()
		},
	}
}

type kvEntry struct {
	key   []byte
	value member.Val
}

func readKeyValueFile(path string) ([]kvEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var entries []kvEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("malformed line %q: want \"key value\"", line)
		}
		value, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("parsing value in line %q: %w", line, err)
		}
		entries = append(entries, kvEntry{key: []byte(fields[0]), value: member.Val(value)})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
