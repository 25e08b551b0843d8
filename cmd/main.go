package main

import (
	"fmt"
	"math/big"
	"os"

	"swaprouter/cmd/keygen"
	"swaprouter/cmd/quote"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "Swaprouter CMD"
	app.Usage = "The swaprouter command line interface"

	app.Commands = []cli.Command{
		quoteCMD,
		keygenCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	quoteCMD = cli.Command{
		Name:      "quote",
		Usage:     "run pool math for a candidate trade",
		Action:    quoteAction,
		ArgsUsage: "",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "reserve-in", Usage: "pool input-side reserve"},
			cli.StringFlag{Name: "reserve-out", Usage: "pool output-side reserve"},
			cli.StringFlag{Name: "amount-in", Usage: "trade input amount"},
			cli.IntFlag{Name: "routes", Usage: "planned route count", Value: 1},
		},
		Description: `Simulate a swap against one pool and print output, impact and split`,
	}
	keygenCMD = cli.Command{
		Name:        "keygen",
		Usage:       "hash an admin key",
		Action:      keygenAction,
		ArgsUsage:   "<key>",
		Flags:       []cli.Flag{},
		Description: `Print the bcrypt hash to configure as ADMIN_KEY_HASH`,
	}
)

func quoteAction(c *cli.Context) error {
	logrus.Info("Starting quote CMD")

	reserveIn, ok := new(big.Int).SetString(c.String("reserve-in"), 10)
	if !ok {
		return fmt.Errorf("invalid reserve-in")
	}
	reserveOut, ok := new(big.Int).SetString(c.String("reserve-out"), 10)
	if !ok {
		return fmt.Errorf("invalid reserve-out")
	}
	amountIn, ok := new(big.Int).SetString(c.String("amount-in"), 10)
	if !ok {
		return fmt.Errorf("invalid amount-in")
	}

	q := &quote.Quote{
		ReserveIn:  reserveIn,
		ReserveOut: reserveOut,
		AmountIn:   amountIn,
		Routes:     c.Int("routes"),
	}
	if err := q.Start(); err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	return nil
}

func keygenAction(c *cli.Context) error {
	key := c.Args().First()
	hash, err := keygen.Hash(key)
	if err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	fmt.Println(hash)
	return nil
}
