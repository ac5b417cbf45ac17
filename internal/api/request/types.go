package request

// CreateGuestRequest is the request body for creating a guest patient player
type CreateGuestRequest struct {
	DisplayName string `json:"display_name"`
}

// RegisterStaffRequest is the request body for registering a staff account
type RegisterStaffRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
