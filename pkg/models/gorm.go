package models

// ModelsToAutoMigrate returns the models in migration order. Referenced
// tables come before the tables referencing them.
func ModelsToAutoMigrate() []interface{} {
	return []interface{}{
		&User{},
		&Document{},
		&DocumentVersionHistory{},
		&ReviewTask{},
		&Acknowledgment{},
		&DocumentControl{},
		&DocumentRisk{},
	}
}
