package response

type UserResponseDTO struct {
	ID         uint   `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Active     bool   `json:"active"`
	QueryLimit int    `json:"queryLimit"`
}

type AuthResponseDTO struct {
	Token        string          `json:"token"`
	RefreshToken string          `json:"refreshToken"`
	User         UserResponseDTO `json:"user"`
}
