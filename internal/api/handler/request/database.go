package request

type CreateDatabaseDTO struct {
	Name     string `json:"name" validate:"required"`
	Engine   string `json:"engine" validate:"required,oneof=postgres mysql sqlserver"`
	Host     string `json:"host" validate:"required"`
	Port     int    `json:"port" validate:"required,min=1,max=65535"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Database string `json:"database" validate:"required"`
}

type UpdateDatabaseDTO struct {
	Name     *string `json:"name"`
	Host     *string `json:"host"`
	Port     *int    `json:"port"`
	Username *string `json:"username"`
	Password *string `json:"password"`
	Database *string `json:"database"`
}
