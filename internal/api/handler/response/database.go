package response

import "github.com/google/uuid"

type DatabaseResponseDTO struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Engine   string    `json:"engine"`
	Host     string    `json:"host"`
	Port     int       `json:"port"`
	Username string    `json:"username"`
	Database string    `json:"database"`
}

type TestConnectionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Version string `json:"version,omitempty"`
}

type SchemaResponseDTO struct {
	DatabaseID uuid.UUID `json:"databaseId"`
	Ddl        string    `json:"ddl"`
}
