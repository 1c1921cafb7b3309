package cli

import (
	"context"
	"fmt"
	"strings"

	"garden-console/internal/dashboard"
	"garden-console/internal/gardenapi"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newDashboardCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "대시보드 통계. 등급이 낮으면 관리자/로그인 통계는 0",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, ok := e.store.Current()
			if !ok {
				return ErrNotLoggedIn
			}
			var out dashboard.Summary
			err := e.call(cmd.Context(), func(ctx context.Context, c *gardenapi.Client) (err error) {
				out, err = dashboard.NewService(e.log).Stats(ctx, c, u)
				return err
			})
			if err != nil {
				return err
			}
			rows := [][]string{
				{"꽃 메시지", humanize.Comma(out.TotalFlowerMessages)},
				{"나뭇잎 메시지", humanize.Comma(out.TotalLeafMessages)},
				{"관리자", humanize.Comma(out.TotalAdmins)},
				{"오늘 로그인", humanize.Comma(out.TodayLogins)},
			}
			if err := e.print(out, []string{"항목", "값"}, rows); err != nil {
				return err
			}
			if len(out.Failed) > 0 && e.format == "table" {
				fmt.Fprintf(e.errOut, "일부 항목을 불러오지 못했습니다: %s\n", strings.Join(out.Failed, ", "))
			}
			return nil
		},
	}
}
