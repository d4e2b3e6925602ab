package main

import (
	"context"
	"log"
	"os"

	"github.com/sharmaronit/mindspend-labs/internal/buildinfo"
	"github.com/sharmaronit/mindspend-labs/internal/client/cli"
	"github.com/sharmaronit/mindspend-labs/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
