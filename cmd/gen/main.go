// Command gen generates typed gorm query helpers for the persistence models.
package main

import (
	"safeguard/internal/infra/persistence/model"

	"gorm.io/gen"
)

func main() {
	models := []any{
		model.LiveLocationModel{},
		model.TrackedLocationModel{},
		model.ContactModel{},
	}

	gen := gen.NewGenerator(gen.Config{
		OutPath: "./internal/infra/persistence/postgres/query",
		Mode:    gen.WithDefaultQuery | gen.WithQueryInterface,
	})

	gen.ApplyBasic(models...)

	gen.Execute()
}
