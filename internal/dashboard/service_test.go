package dashboard

import (
	"context"
	"sync"
	"testing"
	"time"

	"garden-console/internal/domain/model"
	"garden-console/internal/gardenapi"
)

type fakeSource struct {
	mu        sync.Mutex
	flowers   int64
	leaves    int64
	accounts  []model.AdminAccount
	logins    int64
	errs      map[string]error
	loginCond *model.LogSearchCondition
	calls     map[string]int
}

func (f *fakeSource) hit(stat string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[stat]++
	return f.errs[stat]
}

func (f *fakeSource) ListFlowerMessages(_ context.Context, _ *model.MessageSearchCondition, page model.Pageable) (*model.PageResponse[model.FlowerMessage], error) {
	if err := f.hit(StatFlowers); err != nil {
		return nil, err
	}
	return &model.PageResponse[model.FlowerMessage]{Content: []model.FlowerMessage{}, TotalElements: f.flowers, Size: page.Size}, nil
}

func (f *fakeSource) ListLeafMessages(_ context.Context, _ *model.MessageSearchCondition, page model.Pageable) (*model.PageResponse[model.LeafMessage], error) {
	if err := f.hit(StatLeaves); err != nil {
		return nil, err
	}
	return &model.PageResponse[model.LeafMessage]{Content: []model.LeafMessage{}, TotalElements: f.leaves, Size: page.Size}, nil
}

func (f *fakeSource) ListAdminAccounts(context.Context) ([]model.AdminAccount, error) {
	if err := f.hit(StatAdmins); err != nil {
		return nil, err
	}
	return f.accounts, nil
}

func (f *fakeSource) ListLoginHistory(_ context.Context, cond *model.LogSearchCondition, _ model.Pageable) (*model.PageResponse[model.AdminLoginHistory], error) {
	if err := f.hit(StatTodayLogins); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.loginCond = cond
	f.mu.Unlock()
	return &model.PageResponse[model.AdminLoginHistory]{TotalElements: f.logins}, nil
}

func newTestService() *Service {
	s := NewService(nil)
	s.now = func() time.Time { return time.Date(2024, 11, 2, 9, 0, 0, 0, time.Local) }
	return s
}

var manager = &model.AdminAccount{AdminID: "m", AdminGrade: model.GradeManager}

func TestStatsAllSucceed(t *testing.T) {
	src := &fakeSource{flowers: 120, leaves: 45, accounts: make([]model.AdminAccount, 3), logins: 7}
	got, err := newTestService().Stats(context.Background(), src, manager)
	if err != nil {
		t.Fatal(err)
	}
	want := model.DashboardStats{TotalFlowerMessages: 120, TotalLeafMessages: 45, TotalAdmins: 3, TodayLogins: 7}
	if got.DashboardStats != want || len(got.Failed) != 0 {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if src.loginCond == nil || *src.loginCond.StartDate != "2024-11-02" || *src.loginCond.EndDate != "2024-11-02" {
		t.Fatalf("login cond = %+v", src.loginCond)
	}
}

// 관리자 목록 조회가 500 으로 실패해도 꽃 메시지 수는 표시된다
func TestStatsPartialFailure(t *testing.T) {
	src := &fakeSource{
		flowers: 12,
		leaves:  4,
		logins:  2,
		errs:    map[string]error{StatAdmins: &gardenapi.ApiError{Status: 500, Message: "API Error: 500 Internal Server Error"}},
	}
	got, err := newTestService().Stats(context.Background(), src, manager)
	if err != nil {
		t.Fatalf("partial failure must not surface: %v", err)
	}
	if got.TotalFlowerMessages != 12 || got.TotalLeafMessages != 4 || got.TodayLogins != 2 {
		t.Fatalf("got %+v", got)
	}
	if got.TotalAdmins != 0 || len(got.Failed) != 1 || got.Failed[0] != StatAdmins {
		t.Fatalf("admins = %d failed = %v", got.TotalAdmins, got.Failed)
	}
}

func TestStatsGatedByGrade(t *testing.T) {
	src := &fakeSource{flowers: 1, leaves: 2, accounts: make([]model.AdminAccount, 5), logins: 9}
	viewer := &model.AdminAccount{AdminID: "v", AdminGrade: model.GradeEditor}
	got, err := newTestService().Stats(context.Background(), src, viewer)
	if err != nil {
		t.Fatal(err)
	}
	if got.TotalAdmins != 0 || got.TodayLogins != 0 {
		t.Fatalf("gated stats leaked: %+v", got)
	}
	if src.calls[StatAdmins] != 0 || src.calls[StatTodayLogins] != 0 {
		t.Fatalf("gated endpoints called: %v", src.calls)
	}
}

func TestStatsSessionExpired(t *testing.T) {
	src := &fakeSource{flowers: 3, errs: map[string]error{StatLeaves: gardenapi.ErrSessionExpired}}
	got, err := newTestService().Stats(context.Background(), src, manager)
	if !gardenapi.IsSessionExpired(err) {
		t.Fatalf("err = %v", err)
	}
	if got.TotalFlowerMessages != 3 {
		t.Fatalf("got %+v", got)
	}
}
