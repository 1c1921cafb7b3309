// Package dashboard 대시보드 통계 집계. 네 개의 조회를 병렬로 실행하고
// 실패한 항목은 0 으로 둔다.
package dashboard

import (
	"context"
	"sync"
	"time"

	"garden-console/internal/authz"
	"garden-console/internal/domain/model"
	"garden-console/internal/gardenapi"
	"garden-console/internal/logging"
	"garden-console/internal/metrics"

	"go.uber.org/zap"
)

// Source 대시보드가 사용하는 백엔드 조회. *gardenapi.Client 가 만족한다.
type Source interface {
	ListFlowerMessages(ctx context.Context, cond *model.MessageSearchCondition, page model.Pageable) (*model.PageResponse[model.FlowerMessage], error)
	ListLeafMessages(ctx context.Context, cond *model.MessageSearchCondition, page model.Pageable) (*model.PageResponse[model.LeafMessage], error)
	ListAdminAccounts(ctx context.Context) ([]model.AdminAccount, error)
	ListLoginHistory(ctx context.Context, cond *model.LogSearchCondition, page model.Pageable) (*model.PageResponse[model.AdminLoginHistory], error)
}

const (
	StatFlowers     = "flower_messages"
	StatLeaves      = "leaf_messages"
	StatAdmins      = "admins"
	StatTodayLogins = "today_logins"
)

// Summary 통계와 실패한 항목 이름
type Summary struct {
	model.DashboardStats
	Failed []string `json:"failed,omitempty"`
}

type Service struct {
	log *logging.Logger
	now func() time.Time
}

func NewService(log *logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{log: log, now: time.Now}
}

// countPage 총 개수만 필요하므로 한 건짜리 페이지를 요청한다
var countPage = model.Pageable{Page: 0, Size: 1}

// Stats 권한이 없는 항목은 조회하지 않고 0 으로 둔다.
// 개별 실패는 삼키지만 세션 만료는 gardenapi.ErrSessionExpired 로 돌려준다.
func (s *Service) Stats(ctx context.Context, src Source, user *model.AdminAccount) (Summary, error) {
	var (
		out     Summary
		mu      sync.Mutex
		wg      sync.WaitGroup
		expired bool
	)
	run := func(stat string, fetch func(context.Context) (int64, error), dst *int64) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := fetch(ctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				metrics.DashboardFetchFailures.WithLabelValues(stat).Inc()
				s.log.WithContext(ctx).Warn("dashboard_stat_failed", zap.String("stat", stat), zap.Error(err))
				out.Failed = append(out.Failed, stat)
				if gardenapi.IsSessionExpired(err) {
					expired = true
				}
				return
			}
			*dst = n
		}()
	}

	run(StatFlowers, func(ctx context.Context) (int64, error) {
		p, err := src.ListFlowerMessages(ctx, nil, countPage)
		if err != nil {
			return 0, err
		}
		return p.TotalElements, nil
	}, &out.TotalFlowerMessages)

	run(StatLeaves, func(ctx context.Context) (int64, error) {
		p, err := src.ListLeafMessages(ctx, nil, countPage)
		if err != nil {
			return 0, err
		}
		return p.TotalElements, nil
	}, &out.TotalLeafMessages)

	if authz.CanViewAdminStats(user) {
		run(StatAdmins, func(ctx context.Context) (int64, error) {
			accounts, err := src.ListAdminAccounts(ctx)
			if err != nil {
				return 0, err
			}
			return int64(len(accounts)), nil
		}, &out.TotalAdmins)
	}

	if authz.CanViewLogs(user) {
		today := s.now().Format("2006-01-02")
		run(StatTodayLogins, func(ctx context.Context) (int64, error) {
			p, err := src.ListLoginHistory(ctx, &model.LogSearchCondition{StartDate: &today, EndDate: &today}, countPage)
			if err != nil {
				return 0, err
			}
			return p.TotalElements, nil
		}, &out.TodayLogins)
	}

	wg.Wait()
	if expired {
		return out, gardenapi.ErrSessionExpired
	}
	return out, nil
}
