package config

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// DB is the shared gorm handle, initialized once at startup.
var DB *gorm.DB

func InitDB(dsn string) error {
	// TranslateError lets callers match driver duplicate-key errors
	// with errors.Is(err, gorm.ErrDuplicatedKey).
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return err
	}
	DB = db
	return nil
}
