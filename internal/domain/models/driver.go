package models

// Driver runs pickup routes. No capacity limits are modeled.
type Driver struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Active bool   `json:"active"`
}

// StaffAccount is a console login; drivers carry their driver id.
type StaffAccount struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
	DriverID     *int64 `json:"driverId"`
}

// StaffInput creates a console login. Driver logins also create the driver record.
type StaffInput struct {
	Username    string `json:"username" validate:"required,min=3,max=100"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	Role        string `json:"role" validate:"required,oneof=admin driver"`
	DriverName  string `json:"driverName" validate:"required_if=Role driver,max=255"`
	DriverPhone string `json:"driverPhone" validate:"max=100"`
}
