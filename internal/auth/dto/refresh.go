package dto

type RefreshInput struct {
	RefreshToken string `json:"refresh_token"`
	IPAddress    string `json:"-"`
	UserAgent    string `json:"-"`
}

type ForgotPasswordInput struct {
	Email string `json:"email"`
}

type ResetPasswordInput struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

type TokenValidationOutput struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"user_id,omitempty"`
}
