package authz

import (
	"testing"

	"garden-console/internal/domain/model"
)

func TestGateThreshold(t *testing.T) {
	for g := model.Grade(-2); g <= 6; g++ {
		u := &model.AdminAccount{AdminID: "a", AdminGrade: g}
		want := g >= 2
		if got := CanManageAdmins(u); got != want {
			t.Errorf("CanManageAdmins(grade=%d) = %v, want %v", g, got, want)
		}
		if got := CanViewLogs(u); got != want {
			t.Errorf("CanViewLogs(grade=%d) = %v, want %v", g, got, want)
		}
		if got := CanViewAdminStats(u); got != want {
			t.Errorf("CanViewAdminStats(grade=%d) = %v, want %v", g, got, want)
		}
	}
}

func TestGateNilUser(t *testing.T) {
	if CanManageAdmins(nil) || CanViewLogs(nil) || CanViewAdminStats(nil) {
		t.Fatal("nil user must be unauthorized")
	}
	for c, ok := range Capabilities(nil) {
		if ok {
			t.Errorf("capability %s granted to nil user", c)
		}
	}
	if Allows(&model.AdminAccount{AdminGrade: model.GradeSuperAdmin}, Capability("unknown")) {
		t.Error("undefined capability must be denied")
	}
}

func TestGradeName(t *testing.T) {
	tests := []struct {
		grade model.Grade
		want  string
	}{
		{0, "VIEWER"},
		{1, "EDITOR"},
		{2, "MANAGER"},
		{3, "SUPER_ADMIN"},
		{4, "UNKNOWN"},
		{-1, "UNKNOWN"},
		{99, "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := GradeName(tt.grade); got != tt.want {
			t.Errorf("GradeName(%d) = %q, want %q", tt.grade, got, tt.want)
		}
	}
}

func TestNavigation(t *testing.T) {
	if got := Navigation(nil); len(got) != 0 {
		t.Fatalf("nil user nav = %v", got)
	}
	viewer := Navigation(&model.AdminAccount{AdminGrade: model.GradeViewer})
	for _, item := range viewer {
		if item.Requires != "" {
			t.Errorf("viewer sees gated item %q", item.Href)
		}
	}
	if len(viewer) != 4 {
		t.Errorf("viewer nav len = %d, want 4", len(viewer))
	}
	manager := Navigation(&model.AdminAccount{AdminGrade: model.GradeManager})
	if len(manager) != len(navigation) {
		t.Errorf("manager nav len = %d, want %d", len(manager), len(navigation))
	}
}
