package request

type CreateCustomModelDTO struct {
	Name string `json:"name" validate:"required,max=32"`
	Host string `json:"host" validate:"required,max=253"`
	Port int    `json:"port" validate:"required,min=1,max=65535"`
}

type UpdateCustomModelDTO struct {
	Name *string `json:"name"`
	Host *string `json:"host"`
	Port *int    `json:"port"`
}
