package authz

import "garden-console/internal/domain/model"

// NavItem 사이드바 메뉴. Requires 가 비어 있으면 로그인 사용자 모두에게 노출.
type NavItem struct {
	Name     string     `json:"name"`
	Href     string     `json:"href"`
	Requires Capability `json:"requires,omitempty"`
}

var navigation = []NavItem{
	{Name: "대시보드", Href: "/admin/dashboard"},
	{Name: "꽃 메시지", Href: "/admin/flower-messages"},
	{Name: "나뭇잎 메시지", Href: "/admin/leaf-messages"},
	{Name: "관리자 계정", Href: "/admin/admin-accounts", Requires: ManageAdmins},
	{Name: "로그 관리", Href: "/admin/logs", Requires: ViewLogs},
	{Name: "마이페이지", Href: "/admin/my-profile"},
}

// Navigation 비로그인(nil)이면 빈 목록
func Navigation(user *model.AdminAccount) []NavItem {
	if user == nil {
		return []NavItem{}
	}
	out := make([]NavItem, 0, len(navigation))
	for _, item := range navigation {
		if item.Requires == "" || Allows(user, item.Requires) {
			out = append(out, item)
		}
	}
	return out
}
