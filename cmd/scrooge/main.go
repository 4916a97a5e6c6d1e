package main

import (
	"fmt"
	"os"

	"github.com/lunfardo314/scroogeutxo/ledger/utxodb"
	"github.com/lunfardo314/scroogeutxo/util/testutil"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "scrooge",
		Usage: "run epochs of transactions against an in-memory UTXO ledger",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run scenario from the YAML file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "scenario",
						Aliases:  []string{"s"},
						Usage:    "scenario YAML file",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "debug",
						Usage: "log rejected transactions",
					},
				},
				Action: runScenario,
			},
			{
				Name:  "keys",
				Usage: "list deterministic keys and addresses",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "n",
						Usage: "number of keys",
						Value: 5,
					},
				},
				Action: listKeys,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runScenario(c *cli.Context) error {
	scenario, err := LoadScenario(c.String("scenario"))
	if err != nil {
		return err
	}
	log := testutil.NewSimpleLogger(c.Bool("debug"))
	defer func() { _ = log.Sync() }()

	u := utxodb.NewUTXODB(c.Bool("debug"))
	report, err := scenario.Run(u, log)
	if err != nil {
		return err
	}
	report.Write(c.App.Writer)
	return nil
}

func listKeys(c *cli.Context) error {
	n := c.Int("n")
	if n < 0 || n > 0xFFFF {
		return fmt.Errorf("wrong number of keys: %d", n)
	}
	u := utxodb.NewUTXODB()
	for i := 0; i < n; i++ {
		_, _, addr := u.GenerateAddress(uint16(i))
		_, _ = fmt.Fprintf(c.App.Writer, "%d: %s\n", i, addr.String())
	}
	return nil
}
