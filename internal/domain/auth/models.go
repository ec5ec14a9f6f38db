package auth

type UserContext struct {
	UserID    string
	CompanyID string
	RoleID    string
	RoleName  string
	SessionID string
}

type AuthUser struct {
	ID          string
	CompanyID   string
	RoleID      string
	RoleName    string
	Password    string
	MFAEnabled  bool
	MFASecretEn []byte
}

type LoginResult struct {
	Token     string `json:"token"`
	UserID    string `json:"userId"`
	CompanyID string `json:"companyId"`
	RoleID    string `json:"roleId"`
	Role      string `json:"role"`
}

type MFASetup struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauthUrl"`
}
