package main

import (
	"github.com/mustafashaheen1/legacy-prime-workflow-suite-sub005/internal/bootstrap"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		bootstrap.API(),
	)
	app.Run()
}
