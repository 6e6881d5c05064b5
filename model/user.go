package model

// Role is the type of a role.
type Role string

const (
	// RoleAdmin is the ADMIN role, it manages the catalog and the loan console.
	RoleAdmin Role = "ADMIN"
	// RoleMember is the MEMBER role, it can browse, borrow and review.
	RoleMember Role = "MEMBER"
)

func (e Role) String() string {
	switch e {
	case RoleAdmin:
		return "ADMIN"
	case RoleMember:
		return "MEMBER"
	}
	return "MEMBER"
}

// IsAdmin reports whether the role carries back-office privileges.
// Role checks happen here and at the access-gate boundary, nowhere else.
func (e Role) IsAdmin() bool {
	return e == RoleAdmin
}

type User struct {
	ID int32 `json:"id"`

	RowStatus RowStatus `json:"row_status"`
	CreatedTs int64     `json:"created_ts"`
	UpdatedTs int64     `json:"updated_ts"`

	Username     string `json:"username"`
	Role         Role   `json:"role"`
	Email        string `json:"email"`
	Nickname     string `json:"nickname"`
	PasswordHash string `json:"password_hash"`
	LastLoginTs  int64  `json:"last_login_ts"`
}

type FindUser struct {
	ID        *int32     `json:"id"`
	RowStatus *RowStatus `json:"row_status"`
	Username  *string    `json:"username"`
	Role      *Role      `json:"role"`
	Email     *string    `json:"email"`

	// The maximum number of users to return.
	Limit *int
}

type UserSignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

type UserSigninRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	NeverExpire bool   `json:"never_expire"`
}

type UserCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}
