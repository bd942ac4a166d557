// Command admin manages staff roles and bans from the shell.
package main

import (
	"context"
	"os"

	"kbomate/internal/config"
	"kbomate/internal/database"
	"kbomate/internal/middleware"

	"gorm.io/gorm"
)

func main() {
	connect := func() (*gorm.DB, error) {
		cfg, err := config.LoadConfig()
		if err != nil {
			return nil, err
		}
		return database.Connect(cfg)
	}

	if err := newRootCmd(connect).ExecuteContext(context.Background()); err != nil {
		middleware.Logger.Error("admin command failed", "error", err)
		os.Exit(1)
	}
}
