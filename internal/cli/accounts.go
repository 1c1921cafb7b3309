package cli

import (
	"context"
	"fmt"
	"strings"

	"garden-console/internal/authz"
	"garden-console/internal/domain/model"
	"garden-console/internal/gardenapi"

	"github.com/spf13/cobra"
)

// require 화면과 같은 등급 기준으로 명령을 막는다
func (e *env) require(c authz.Capability) error {
	u, ok := e.store.Current()
	if !ok {
		return ErrNotLoggedIn
	}
	if !authz.Allows(u, c) {
		return fmt.Errorf("권한이 없습니다: %s (현재 등급 %s)", c, authz.GradeName(u.AdminGrade))
	}
	return nil
}

func accountRow(a model.AdminAccount) []string {
	return []string{
		i64(a.AdminIndex), a.AdminID, a.AdminNickName, authz.GradeName(a.AdminGrade),
		deref(a.AdminPhone), yesNo(!a.AccountNonLocked), fmt.Sprint(a.LoginFailCnt), a.LastLoginTime,
	}
}

var accountHeader = []string{"번호", "아이디", "닉네임", "등급", "연락처", "잠김", "실패", "최근 로그인"}

func newAccountsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "관리자 계정 관리 (MANAGER 이상)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			return e.require(authz.ManageAdmins)
		},
	}
	cmd.AddCommand(
		newAccountListCmd(e),
		newAccountCreateCmd(e),
		newAccountUpdateCmd(e),
		newAccountIdxCmd(e, "delete <idx>", "계정 삭제", "삭제했습니다", (*gardenapi.Client).DeleteAdminAccount),
		newAccountResetCmd(e),
		newAccountIdxCmd(e, "unlock <idx>", "잠긴 계정 해제", "잠금을 해제했습니다", (*gardenapi.Client).UnlockAdminAccount),
	)
	return cmd
}

func newAccountListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "계정 목록",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var out []model.AdminAccount
			err := e.call(cmd.Context(), func(ctx context.Context, c *gardenapi.Client) (err error) {
				out, err = c.ListAdminAccounts(ctx)
				return err
			})
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(out))
			for _, a := range out {
				rows = append(rows, accountRow(a))
			}
			return e.print(out, accountHeader, rows)
		},
	}
}

func newAccountCreateCmd(e *env) *cobra.Command {
	var (
		req   model.AdminAccountCreateRequest
		grade int
		phone string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "계정 생성",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req.AdminGrade = model.Grade(grade)
			if phone = strings.TrimSpace(phone); phone != "" {
				req.AdminPhone = &phone
			}
			var out *model.AdminAccount
			err := e.call(cmd.Context(), func(ctx context.Context, c *gardenapi.Client) (err error) {
				out, err = c.CreateAdminAccount(ctx, req)
				return err
			})
			if err != nil {
				return err
			}
			return e.print(out, accountHeader, [][]string{accountRow(*out)})
		},
	}
	cmd.Flags().StringVar(&req.AdminID, "id", "", "아이디")
	cmd.Flags().StringVar(&req.AdminPwd, "password", "", "초기 비밀번호")
	cmd.Flags().StringVar(&req.AdminNickName, "nickname", "", "닉네임")
	cmd.Flags().IntVar(&grade, "grade", int(model.GradeViewer), "등급 0-3")
	cmd.Flags().StringVar(&phone, "phone", "", "연락처")
	for _, f := range []string{"id", "password", "nickname"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newAccountUpdateCmd(e *env) *cobra.Command {
	var (
		nickname, phone string
		grade           int
	)
	cmd := &cobra.Command{
		Use:   "update <idx>",
		Short: "닉네임/등급/연락처 수정. 지정한 항목만 바뀐다",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseID(args[0])
			if err != nil {
				return err
			}
			var req model.AdminAccountUpdateRequest
			if cmd.Flags().Changed("nickname") {
				req.AdminNickName = &nickname
			}
			if cmd.Flags().Changed("phone") {
				req.AdminPhone = &phone
			}
			if cmd.Flags().Changed("grade") {
				g := model.Grade(grade)
				req.AdminGrade = &g
			}
			var out *model.AdminAccount
			err = e.call(cmd.Context(), func(ctx context.Context, c *gardenapi.Client) (err error) {
				out, err = c.UpdateAdminAccount(ctx, idx, req)
				return err
			})
			if err != nil {
				return err
			}
			return e.print(out, accountHeader, [][]string{accountRow(*out)})
		},
	}
	cmd.Flags().StringVar(&nickname, "nickname", "", "닉네임")
	cmd.Flags().StringVar(&phone, "phone", "", "연락처")
	cmd.Flags().IntVar(&grade, "grade", 0, "등급 0-3")
	return cmd
}

func newAccountIdxCmd(e *env, use, short, done string, op func(c *gardenapi.Client, ctx context.Context, idx int64) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseID(args[0])
			if err != nil {
				return err
			}
			err = e.call(cmd.Context(), func(ctx context.Context, c *gardenapi.Client) error {
				return op(c, ctx, idx)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "%d 번 계정: %s\n", idx, done)
			return nil
		},
	}
}

// reset-password 백엔드 응답(임시 비밀번호 등)을 그대로 출력한다
func newAccountResetCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password <idx>",
		Short: "비밀번호 초기화",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseID(args[0])
			if err != nil {
				return err
			}
			var out []byte
			err = e.call(cmd.Context(), func(ctx context.Context, c *gardenapi.Client) error {
				raw, err := c.ResetAdminPassword(ctx, idx)
				out = raw
				return err
			})
			if err != nil {
				return err
			}
			if len(out) == 0 || string(out) == "null" {
				fmt.Fprintf(e.out, "%d 번 계정 비밀번호를 초기화했습니다\n", idx)
				return nil
			}
			fmt.Fprintln(e.out, string(out))
			return nil
		},
	}
}
