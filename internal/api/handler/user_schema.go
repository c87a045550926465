package handler

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8"`
}

type changeUsernameRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
}

type updateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,max=100"`
	Bio         *string `json:"bio,omitempty"          validate:"omitempty,max=500"`
	AvatarURL   *string `json:"avatar_url,omitempty"   validate:"omitempty,url"`
}
