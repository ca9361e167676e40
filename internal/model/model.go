package model

// AllModels lists every table for migration, parents first.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Example{},
		&Favorite{},
		&Comment{},
		&DownloadRecord{},
		&Subscriber{},
		&Purchase{},
		&ActivityLog{},
		&LoginHistory{},
	}
}
