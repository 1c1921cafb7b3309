// Package authz 관리자 등급으로부터 권한을 판단하는 단일 지점.
// 사이드바, 대시보드, 라우트 가드 모두 여기만 호출한다.
package authz

import "garden-console/internal/domain/model"

type Capability string

const (
	ManageAdmins   Capability = "manage_admins"
	ViewLogs       Capability = "view_logs"
	ViewAdminStats Capability = "view_admin_stats"
)

// required 기능별 최소 등급
var required = map[Capability]model.Grade{
	ManageAdmins:   model.GradeManager,
	ViewLogs:       model.GradeManager,
	ViewAdminStats: model.GradeManager,
}

var gradeNames = map[model.Grade]string{
	model.GradeViewer:     "VIEWER",
	model.GradeEditor:     "EDITOR",
	model.GradeManager:    "MANAGER",
	model.GradeSuperAdmin: "SUPER_ADMIN",
}

// Allows user 가 nil 이면 항상 false. 정의되지 않은 기능도 false.
func Allows(user *model.AdminAccount, c Capability) bool {
	if user == nil {
		return false
	}
	min, ok := required[c]
	if !ok {
		return false
	}
	return user.AdminGrade >= min
}

func CanManageAdmins(user *model.AdminAccount) bool   { return Allows(user, ManageAdmins) }
func CanViewLogs(user *model.AdminAccount) bool       { return Allows(user, ViewLogs) }
func CanViewAdminStats(user *model.AdminAccount) bool { return Allows(user, ViewAdminStats) }

// GradeName 0~3 외의 값은 UNKNOWN (거부하지 않음)
func GradeName(g model.Grade) string {
	if name, ok := gradeNames[g]; ok {
		return name
	}
	return "UNKNOWN"
}

// Capabilities 화면에 내려줄 권한 요약
func Capabilities(user *model.AdminAccount) map[Capability]bool {
	out := make(map[Capability]bool, len(required))
	for c := range required {
		out[c] = Allows(user, c)
	}
	return out
}
