package model

// AdminLoginHistory 로그인 이력 (읽기 전용)
type AdminLoginHistory struct {
	LoginIndex    int64  `json:"loginIndex"`
	AdminIndex    int64  `json:"adminIndex"`
	AdminID       string `json:"adminId"`
	AdminNickname string `json:"adminNickname"`
	LoginIP       string `json:"loginIp"`
	LoginTime     string `json:"loginTime"`
}

// AdminActivityHistory 관리자 활동 이력 (읽기 전용)
type AdminActivityHistory struct {
	ActIndex      int64  `json:"actIndex"`
	AdminIndex    int64  `json:"adminIndex"`
	AdminID       string `json:"adminId"`
	AdminNickName string `json:"adminNickName"`
	ActType       string `json:"actType"`
	ActURL        string `json:"actUrl"`
	ActDetail     string `json:"actDetail"`
	ActIP         string `json:"actIp"`
	ActTime       string `json:"actTime"`
}

type DashboardStats struct {
	TotalFlowerMessages int64 `json:"totalFlowerMessages"`
	TotalLeafMessages   int64 `json:"totalLeafMessages"`
	TotalAdmins         int64 `json:"totalAdmins"`
	TodayLogins         int64 `json:"todayLogins"`
}
