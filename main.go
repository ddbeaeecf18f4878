package main

import (
	"log"

	"cookbook-backend/cmd/config"
	migration "cookbook-backend/cmd/database/migrate"
	"cookbook-backend/internal/utils"
)

func main() {
	utils.LoadConfig()

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("error connecting to database: %v", err)
	}

	if err := migration.Migrate(db); err != nil {
		log.Fatalf("error migrating database: %v", err)
	}

	app, err := config.NewApp(db)
	if err != nil {
		log.Fatalf("error creating app: %v", err)
	}

	if err := app.Listen(":" + utils.GetConfig("PORT")); err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
