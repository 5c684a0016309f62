package models

// JSONB maps onto a Postgres jsonb column; pgx encodes it natively.
type JSONB map[string]interface{}
