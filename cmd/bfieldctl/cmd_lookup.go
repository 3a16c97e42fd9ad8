package main

import (
	"fmt"

	"github.com/kmerfield/bfield"
	"github.com/kmerfield/bfield/internal/member"
	"github.com/urfave/cli/v2"
)

func newCmdLookup() *cli.Command {
	var verbose bool

	return &cli.Command{
		Name:        "lookup",
		Description: "Look up a key in a b-field cascade.",
		ArgsUsage:   "<path-stem> <key>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Usage: "distinguish absent from indeterminate instead of collapsing both to not-found", Destination: &verbose},
		},
		Action: func(c *cli.Context) error {
			stem := c.Args().Get(0)
			key := []byte(c.Args().Get(1))

			bf, err := bfield.FromFile[member.FileParams](stem, true, decodeFileParams)
			if err != nil {
				return cli.Exit(err, 1)
			}
			defer bf.Close()

			if verbose {
				res, err := bf.LookupVerbose(key)
				if err != nil {
					return cli.Exit(err, 1)
				}
				switch res.State {
				case member.StateSome:
					fmt.Printf("%s\n", fmtValue(res.Value))
				case member.StateNone:
					fmt.Println("none")
				case member.StateIndeterminate:
					fmt.Println("indeterminate")
				}
				return nil
			}

			res, err := bf.Get(key)
			if err != nil {
				return cli.Exit(err, 1)
			}
			if !res.Found {
				fmt.Println("not found")
				return nil
			}
			fmt.Printf("%s\n", fmtValue(res.Value))
			return nil
		},
	}
}

func fmtValue(v member.Val) string {
	return fmt.Sprintf("%d", v)
}
