package main

import (
	"fmt"
	"os"

	"gopkg.in/urfave/cli.v2"

	"github.com/tiglabs/tabledb/catalog"
	"github.com/tiglabs/tabledb/config"
	_ "github.com/tiglabs/tabledb/engine/badgerdb"
	_ "github.com/tiglabs/tabledb/engine/boltdb"
	_ "github.com/tiglabs/tabledb/engine/memdb"
	"github.com/tiglabs/tabledb/util/json"
)

const flagConfig = "config"

var (
	app = &cli.App{
		Name:        "tabledb",
		Usage:       "tabledb [command]",
		Description: "TableDB catalog engine.",
	}
	startCmd = &cli.Command{
		Name:        "start",
		Usage:       "tabledb start",
		Description: "Bootstrap the catalog from its metadata directory.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "server config file path",
			},
		},
		Action: func(cmdCtx *cli.Context) error {
			cfg := config.NewConfig(cmdCtx.String(flagConfig))
			if raw, err := json.MarshalIndent(cfg, "", "  "); err == nil {
				fmt.Printf("start with config: %s\n", raw)
			}

			db, err := catalog.Open(cfg.ModuleCfg.Name, catalog.Options{
				MetadataPath:  cfg.ModuleCfg.MetadataPath,
				DataPath:      cfg.ModuleCfg.DataPath,
				MaxPoolSize:   cfg.BootstrapCfg.MaxPoolSize,
				FsyncMetadata: cfg.BootstrapCfg.FsyncMetadata,
			})
			if err != nil {
				return err
			}

			ctx := &catalog.Context{ForceRestoreData: cfg.BootstrapCfg.ForceRestoreData}
			if err := db.LoadStoredObjects(ctx); err != nil {
				fmt.Printf("tabledb bootstrap error: %s\n", err)
				return err
			}

			for _, t := range db.Tables() {
				fmt.Printf("table %s engine %s\n", t.Name(), t.EngineName())
			}
			return nil
		},
	}
)

func main() {
	app.Commands = append(app.Commands, startCmd)
	if err := app.Run(os.Args); err != nil {
		os.Exit(-1)
	}
}
