package request

type CreateChatDTO struct {
	DatabaseID string `json:"databaseId" validate:"required,uuid"`
}

type RenameChatDTO struct {
	Name string `json:"name" validate:"required,max=64"`
}

// QueryDTO is a natural-language message sent into a chat. Page and PageSize
// bound the result window of the generated query.
type QueryDTO struct {
	Query    string `json:"query" validate:"required"`
	Model    string `json:"model" validate:"required"`
	Page     *int   `json:"page"`
	PageSize *int   `json:"pageSize"`
}

// ConsoleQueryDTO runs a user-written query directly, skipping translation.
type ConsoleQueryDTO struct {
	Query    string `json:"query" validate:"required"`
	Page     *int   `json:"page"`
	PageSize *int   `json:"pageSize"`
}
