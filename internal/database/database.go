package database

/*
	Data store setup for the assessment log. gorm over SQLite, with the
	schema migrated explicitly at process start. Nothing in here is lazy:
	the store either exists before the first request is routed, or the
	process doesn't come up.
*/

import (
	"github.com/pynezz/nauthiz/internal/database/models"

	"github.com/pynezz/pynezzentials/ansi"
	"gorm.io/driver/sqlite" // Sqlite driver based on CGO
	"gorm.io/gorm"
)

// InitAssessmentsDB opens (or creates) the assessment database at path
// and migrates all models. config is optional.
func InitAssessmentsDB(path string, config ...gorm.Config) (*gorm.DB, error) {
	dbConf := gorm.Config{}
	if c := len(config); c != 0 {
		dbConf = config[0]
	}
	ansi.PrintInfo("Initializing assessments database: " + path)
	return InitDB(path, dbConf, models.GetModels()...)
}

// InitDB opens the database at the given path with the given
// configuration and automigrates the given tables.
func InitDB(path string, conf gorm.Config, tables ...interface{}) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &conf)
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(tables...); err != nil {
		return nil, err
	}

	return db, nil
}
