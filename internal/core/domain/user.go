package domain

import "time"

// User models a registered member of the community. The plaintext password
// never appears on this struct; only the bcrypt digest is carried.
type User struct {
	ID                 string     `json:"id"`
	Username           string     `json:"username"`
	Email              string     `json:"email"`
	PasswordHash       string     `json:"-"`
	Role               Role       `json:"role"`
	DisplayName        string     `json:"display_name,omitempty"`
	Bio                string     `json:"bio,omitempty"`
	AvatarURL          string     `json:"avatar_url,omitempty"`
	LastUsernameChange *time.Time `json:"last_username_change,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// RoleChangeRecord is one entry in the append-only role audit trail.
// Records are never updated or deleted.
type RoleChangeRecord struct {
	UserID       string    `json:"user_id"`
	GrantedBy    string    `json:"granted_by"`
	PreviousRole Role      `json:"previous_role"`
	NewRole      Role      `json:"new_role"`
	Reason       string    `json:"reason,omitempty"`
	GrantedAt    time.Time `json:"granted_at"`
}
