package response

import (
	"time"

	"github.com/google/uuid"

	"dbchat/internal/query"
)

type ChatResponseDTO struct {
	ID         uuid.UUID `json:"id"`
	DatabaseID uuid.UUID `json:"databaseId"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"createdAt"`
}

type MessageResponseDTO struct {
	ID               uuid.UUID `json:"id"`
	NlQuery          string    `json:"nlQuery"`
	DbQuery          *string   `json:"dbQuery"`
	GeneratePlot     bool      `json:"generatePlot"`
	PlotUrl          *string   `json:"plotUrl"`
	DbExecutionError *string   `json:"dbExecutionError"`
	PlotError        *string   `json:"plotError"`
	Timestamp        time.Time `json:"timestamp"`
}

// QueryResponseDTO is the outcome of one chat turn: the stored message plus
// the retrieved data when the generated query executed successfully.
type QueryResponseDTO struct {
	Message MessageResponseDTO `json:"message"`
	Data    *query.Outcome     `json:"data,omitempty"`
}
