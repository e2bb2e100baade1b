package response

import "github.com/google/uuid"

type CustomModelResponseDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Host string    `json:"host"`
	Port int       `json:"port"`
}

// ModelOptionDTO is one entry of the model picker: built-in models and the
// caller's own registered endpoints.
type ModelOptionDTO struct {
	Label string `json:"label"`
	Value string `json:"value"`
}
