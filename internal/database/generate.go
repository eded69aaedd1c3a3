package database

// Regenerating the schema snapshot and the sqlc query code:
//
//	go generate ./internal/database
//
// schema.sql is derived from the migrations, so edit migrations/files and regenerate.

//go:generate sh -c "cd ../.. && go run ./internal/database/tools -out internal/database/sqlc/schema.sql"
//go:generate sh -c "cd ../.. && sqlc generate -f internal/database/sqlc/sqlc.yaml"
