package storage

// Local storage key scheme. These are part of the on-disk contract shared
// with the legacy single-project versions of the app; renaming any of them
// breaks migration.
const (
	// KeyProjects holds the JSON array of project records.
	KeyProjects = "projects"

	// KeyCurrentProjectID holds the plain-string pointer to the active project.
	KeyCurrentProjectID = "current_project_id"

	// KeyLegacyTransactions is the pre-multi-project flat transaction list.
	// Only the migration coordinator reads it.
	KeyLegacyTransactions = "project-finances"

	// KeyLegacyBackup is the migration safety copy of the legacy list.
	KeyLegacyBackup = "project-finances_backup"

	// KeyStorageMode persists the localOnly/cloudSync switch.
	KeyStorageMode = "storage_mode"

	// KeyMigrationCompleted is the one-time migration flag.
	KeyMigrationCompleted = "migration_completed"
)

// TransactionsKey returns the storage key of a project's transaction list.
func TransactionsKey(projectID string) string {
	return KeyLegacyTransactions + "-" + projectID
}
