package main

import (
	"metalrates/internal/app"
	"os"

	"github.com/sirupsen/logrus"
)

// @title        Metal Rates API
// @version      1.0
// @description  Live precious-metal rates, quotation pricing and rate locks.
// @BasePath     /
// @securityDefinitions.apikey BearerAuth
// @in           header
// @name         Authorization
func main() {
	if err := app.Run(); err != nil {
		logrus.WithError(err).Error("Application stopped")
		os.Exit(1)
	}
}
