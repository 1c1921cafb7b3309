package cli

import (
	"context"

	"garden-console/internal/authz"
	"garden-console/internal/domain/model"
	"garden-console/internal/gardenapi"
	"garden-console/internal/search"

	"github.com/spf13/cobra"
)

func newLogsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "관리자 로그인/활동 로그 (MANAGER 이상)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			return e.require(authz.ViewLogs)
		},
	}
	cmd.AddCommand(newLoginLogsCmd(e), newActivityLogsCmd(e))
	return cmd
}

func newLoginLogsCmd(e *env) *cobra.Command {
	var (
		f    search.LogFilter
		page pageFlags
	)
	cmd := &cobra.Command{
		Use:   "logins",
		Short: "로그인 이력",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := f.Validate(); err != nil {
				return err
			}
			// 로그인 이력에는 행위 유형 조건이 없다
			f.ActType = ""
			cond := f.Condition()
			var out *model.PageResponse[model.AdminLoginHistory]
			err := e.call(cmd.Context(), func(ctx context.Context, c *gardenapi.Client) (err error) {
				out, err = c.ListLoginHistory(ctx, &cond, page.pageable())
				return err
			})
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(out.Content))
			for _, h := range out.Content {
				rows = append(rows, []string{i64(h.LoginIndex), h.AdminID, h.AdminNickname, h.LoginIP, h.LoginTime})
			}
			if err := e.print(out, []string{"번호", "아이디", "닉네임", "IP", "시각"}, rows); err != nil {
				return err
			}
			if e.format == "table" {
				pageFooter(e.out, out)
			}
			return nil
		},
	}
	bindLogFilter(cmd, &f)
	page.bind(cmd)
	return cmd
}

func newActivityLogsCmd(e *env) *cobra.Command {
	var (
		f    search.LogFilter
		page pageFlags
	)
	cmd := &cobra.Command{
		Use:   "activities",
		Short: "활동 이력",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := f.Validate(); err != nil {
				return err
			}
			cond := f.Condition()
			var out *model.PageResponse[model.AdminActivityHistory]
			err := e.call(cmd.Context(), func(ctx context.Context, c *gardenapi.Client) (err error) {
				out, err = c.ListActivityHistory(ctx, &cond, page.pageable())
				return err
			})
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(out.Content))
			for _, h := range out.Content {
				rows = append(rows, []string{i64(h.ActIndex), h.AdminID, h.ActType, h.ActURL, h.ActIP, h.ActTime})
			}
			if err := e.print(out, []string{"번호", "아이디", "유형", "URL", "IP", "시각"}, rows); err != nil {
				return err
			}
			if e.format == "table" {
				pageFooter(e.out, out)
			}
			return nil
		},
	}
	bindLogFilter(cmd, &f)
	cmd.Flags().StringVar(&f.ActType, "type", "", "행위 유형")
	page.bind(cmd)
	return cmd
}
