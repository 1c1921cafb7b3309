package model

// Grade 관리자 권한 등급. 높은 등급은 하위 등급의 권한을 모두 포함한다.
type Grade int

const (
	GradeViewer     Grade = 0
	GradeEditor     Grade = 1
	GradeManager    Grade = 2
	GradeSuperAdmin Grade = 3
)

// AdminAccount 백엔드 /admin/accounts 응답 및 세션에 보관되는 관리자 정보
type AdminAccount struct {
	AdminIndex       int64   `json:"adminIndex"`
	AdminID          string  `json:"adminId"`
	AdminNickName    string  `json:"adminNickName"`
	AdminGrade       Grade   `json:"adminGrade"`
	AdminPhone       *string `json:"adminPhone,omitempty"`
	AccountNonLocked bool    `json:"accountNonLocked"`
	LastLoginTime    string  `json:"lastLoginTime,omitempty"`
	LoginFailCnt     int     `json:"loginFailCnt"`
	AdminCreateTime  string  `json:"adminCreateTime,omitempty"`
	AdminPwdChgTime  string  `json:"adminPwdChgTime,omitempty"`
}

type AdminLoginRequest struct {
	AdminID  string `json:"adminId" validate:"required"`
	AdminPwd string `json:"adminPwd" validate:"required"`
}

type AdminLoginResponse struct {
	SessionID     string `json:"sessionId"`
	AdminID       string `json:"adminId"`
	AdminNickName string `json:"adminNickName"`
	AdminGrade    Grade  `json:"adminGrade"`
	LastLoginTime string `json:"lastLoginTime"`
}

// Account 로그인 응답을 세션용 AdminAccount 로 변환 (로그인 직후에는 잠금 해제 상태)
func (r AdminLoginResponse) Account() AdminAccount {
	return AdminAccount{
		AdminID:          r.AdminID,
		AdminNickName:    r.AdminNickName,
		AdminGrade:       r.AdminGrade,
		AccountNonLocked: true,
		LastLoginTime:    r.LastLoginTime,
	}
}

type AdminAccountCreateRequest struct {
	AdminID       string  `json:"adminId" validate:"required,max=50"`
	AdminPwd      string  `json:"adminPwd" validate:"required"`
	AdminNickName string  `json:"adminNickName" validate:"required,max=50"`
	AdminGrade    Grade   `json:"adminGrade" validate:"min=0"`
	AdminPhone    *string `json:"adminPhone,omitempty"`
}

type AdminAccountUpdateRequest struct {
	AdminNickName *string `json:"adminNickName,omitempty"`
	AdminGrade    *Grade  `json:"adminGrade,omitempty"`
	AdminPhone    *string `json:"adminPhone,omitempty"`
}

type ProfileUpdateRequest struct {
	AdminNickName *string `json:"adminNickName,omitempty"`
	AdminPhone    *string `json:"adminPhone,omitempty"`
}

type PasswordUpdateRequest struct {
	CurrentPassword    string `json:"currentPassword" validate:"required"`
	NewPassword        string `json:"newPassword" validate:"required"`
	ConfirmNewPassword string `json:"confirmNewPassword" validate:"required,eqfield=NewPassword"`
}
