package main

import (
	"github.com/robotalks/irtrx.go/pkg/cli/sh"
	env "github.com/robotalks/irtrx.go/pkg/l1/env/connector"

	_ "github.com/robotalks/irtrx.go/pkg/cli/cmds/trx"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
