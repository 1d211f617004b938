package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/btracey/rootfind/cmd/rootfind/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		logrus.WithError(err).Error("rootfind failed")
		os.Exit(1)
	}
}
