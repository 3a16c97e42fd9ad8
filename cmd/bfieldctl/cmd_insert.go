package main

import (
	"fmt"
	"strconv"

	"github.com/kmerfield/bfield"
	"github.com/kmerfield/bfield/internal/member"
	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"
)

func newCmdInsert() *cli.Command {
	var pass int
	var force bool

	return &cli.Command{
		Name:        "insert",
		Description: "Insert a single key/value pair into a b-field cascade.",
		ArgsUsage:   "<path-stem> <key> <value>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "pass", Usage: "member index to insert into", Destination: &pass},
			&cli.BoolFlag{Name: "force", Usage: "use force-insert (mask-or-insert) instead of a normal pass insert", Destination: &force},
		},
		Action: func(c *cli.Context) error {
			stem := c.Args().Get(0)
			key := []byte(c.Args().Get(1))
			value, err := strconv.ParseUint(c.Args().Get(2), 10, 32)
			if err != nil {
				return fmt.Errorf("parsing value: %w", err)
			}

			bf, err := bfield.FromFile[member.FileParams](stem, false, decodeFileParams)
			if err != nil {
				return cli.Exit(err, 1)
			}
			defer bf.Close()

			if force {
				ok, err := bf.ForceInsert(key, member.Val(value))
				if err != nil {
					return cli.Exit(err, 1)
				}
				klog.Infof("force-insert %q = %d: accepted=%v", key, value, ok)
				return bf.Sync()
			}

			ok, err := bf.Insert(key, member.Val(value), pass)
			if err != nil {
				return cli.Exit(err, 1)
			}
			klog.Infof("insert %q = %d at pass %d: accepted=%v", key, value, pass, ok)
			return bf.Sync()
		},
	}
}

func decodeFileParams(b []byte) (member.FileParams, error) {
	return member.FileParams{Other: append([]byte(nil), b...)}, nil
}
