package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/freetocompute/pgpkeeper/cmd/pgpkeeper"
	"github.com/freetocompute/pgpkeeper/cmd/pgpkeeper/utils"
	"github.com/freetocompute/pgpkeeper/config"
	"github.com/spf13/cobra"
)

func init() {
	cobra.OnInitialize(config.LoadConfig)
}

func main() {
	// A cached passphrase must never outlive the run, interrupt included.
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupts
		utils.Session.Clear()
		os.Exit(130)
	}()

	if err := pgpkeeper.Root.Execute(); err != nil {
		utils.Session.Clear()
		os.Exit(1)
	}

	utils.Session.Clear()
}
