package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"cryptobot/cmd/backfill"
	"cryptobot/src/database"
	"cryptobot/src/model"
	"cryptobot/src/repository"
	"cryptobot/src/security"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "cryptobot CMD"
	app.Usage = "The cryptobot command line interface"

	app.Commands = []cli.Command{
		backfillCMD,
		sealKeysCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	backfillCMD = cli.Command{
		Name:        "backfill",
		Usage:       "backfill OHLCV bars",
		Action:      backfillAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Fetch kline history from the exchange into the bars table`,
	}
	sealKeysCMD = cli.Command{
		Name:      "seal_keys",
		Usage:     "seal and store exchange API credentials",
		Action:    sealKeysAction,
		ArgsUsage: "",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "exchange", Usage: "exchange name", Value: "gateway"},
			cli.StringFlag{Name: "key", Usage: "API key"},
			cli.StringFlag{Name: "secret", Usage: "API secret"},
		},
		Description: `Encrypt the given API credentials and store them in the database`,
	}
)

func backfillAction(_ *cli.Context) error {
	logrus.Info("Starting backfill CMD")

	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	b := &backfill.Backfill{
		Log: logrus.WithField("cmd", "backfill"),
		DB:  database.MainDB,
	}
	if err := b.Start(); err != nil {
		logrus.WithError(err).Error("Starting backfill CMD")
		return err
	}
	return nil
}

func sealKeysAction(c *cli.Context) error {
	exchange := c.String("exchange")
	key := c.String("key")
	secret := c.String("secret")
	if key == "" || secret == "" {
		return errors.New("both --key and --secret are required")
	}

	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	sealedKey, err := security.EncryptString(key)
	if err != nil {
		logrus.WithError(err).Error("Failed to seal API key")
		return err
	}
	sealedSecret, err := security.EncryptString(secret)
	if err != nil {
		logrus.WithError(err).Error("Failed to seal API secret")
		return err
	}

	credRep := repository.NewCredentialRepository()
	if err := credRep.Upsert(context.Background(), &model.ExchangeCredential{
		Exchange:        exchange,
		APIKeySealed:    sealedKey,
		APISecretSealed: sealedSecret,
	}); err != nil {
		logrus.WithError(err).Error("Failed to store sealed credentials")
		return err
	}

	logrus.WithField("exchange", exchange).Info("Credentials sealed and stored")
	return nil
}
