package cli

import (
	"context"
	"fmt"

	"garden-console/internal/domain/model"
	"garden-console/internal/gardenapi"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMeCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{Use: "me", Short: "내 정보"}
	cmd.AddCommand(newMeProfileCmd(e), newMePasswordCmd(e))
	return cmd
}

func newMeProfileCmd(e *env) *cobra.Command {
	var nickname, phone string
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "닉네임/연락처 수정",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req model.ProfileUpdateRequest
			if cmd.Flags().Changed("nickname") {
				req.AdminNickName = &nickname
			}
			if cmd.Flags().Changed("phone") {
				req.AdminPhone = &phone
			}
			var out *model.AdminAccount
			err := e.call(cmd.Context(), func(ctx context.Context, c *gardenapi.Client) (err error) {
				out, err = c.UpdateMyProfile(ctx, req)
				return err
			})
			if err != nil {
				return err
			}
			// 세션의 사용자 정보도 맞춘다
			err = e.store.UpdateUser(cmd.Context(), func(u *model.AdminAccount) {
				u.AdminNickName = out.AdminNickName
				u.AdminPhone = out.AdminPhone
			})
			if err != nil {
				e.log.Warn("cli_session_update_failed", zap.Error(err))
			}
			u, _ := e.store.Current()
			if u == nil {
				u = out
			}
			return e.printUser(u)
		},
	}
	cmd.Flags().StringVar(&nickname, "nickname", "", "닉네임")
	cmd.Flags().StringVar(&phone, "phone", "", "연락처")
	return cmd
}

func newMePasswordCmd(e *env) *cobra.Command {
	var req model.PasswordUpdateRequest
	cmd := &cobra.Command{
		Use:   "password",
		Short: "비밀번호 변경",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.NewPassword != req.ConfirmNewPassword {
				return gardenapi.ErrPasswordMismatch
			}
			err := e.call(cmd.Context(), func(ctx context.Context, c *gardenapi.Client) error {
				return c.UpdateMyPassword(ctx, req)
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(e.out, "비밀번호를 변경했습니다")
			return nil
		},
	}
	cmd.Flags().StringVar(&req.CurrentPassword, "current", "", "현재 비밀번호")
	cmd.Flags().StringVar(&req.NewPassword, "new", "", "새 비밀번호")
	cmd.Flags().StringVar(&req.ConfirmNewPassword, "confirm", "", "새 비밀번호 확인")
	for _, f := range []string{"current", "new", "confirm"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}
