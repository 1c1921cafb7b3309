package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"garden-console/internal/authz"
	"garden-console/internal/domain/model"
	"garden-console/internal/session"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newLoginCmd(e *env) *cobra.Command {
	var id, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "관리자 로그인. 세션은 로컬 파일에 보관된다",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("GARDEN_PASSWORD")
			}
			if password == "" {
				fmt.Fprint(e.errOut, "비밀번호: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("비밀번호를 읽지 못했습니다")
				}
				password = strings.TrimRight(line, "\r\n")
			}
			c := e.upstream.ForSession(nil)
			resp, err := c.Login(cmd.Context(), model.AdminLoginRequest{AdminID: strings.TrimSpace(id), AdminPwd: password})
			if err != nil {
				return err
			}
			rec := session.Record{User: resp.Account(), Cookies: session.CookiesFrom(c.Cookies())}
			if err := e.store.Login(cmd.Context(), rec); err != nil {
				return fmt.Errorf("세션 저장 실패: %w", err)
			}
			e.log.Info("cli_login", zap.String("admin_id", resp.AdminID))
			u, _ := e.store.Current()
			return e.printUser(u)
		},
	}
	cmd.Flags().StringVarP(&id, "id", "u", "", "관리자 아이디")
	cmd.Flags().StringVarP(&password, "password", "p", "", "비밀번호 (미지정 시 GARDEN_PASSWORD 또는 표준 입력)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

// logout 백엔드 로그아웃 실패와 관계없이 로컬 세션은 지운다
func newLogoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "로그아웃",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := e.client()
			if errors.Is(err, ErrNotLoggedIn) {
				fmt.Fprintln(e.out, "로그인 상태가 아닙니다")
				return nil
			}
			if err := c.Logout(cmd.Context()); err != nil {
				e.log.Warn("cli_upstream_logout_failed", zap.Error(err))
			}
			if err := e.store.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(e.out, "로그아웃되었습니다")
			return nil
		},
	}
}

func newWhoamiCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "현재 로그인한 관리자와 권한",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			u, ok := e.store.Current()
			if !ok {
				return ErrNotLoggedIn
			}
			return e.printUser(u)
		},
	}
}

func (e *env) printUser(u *model.AdminAccount) error {
	caps := authz.Capabilities(u)
	if e.format == "json" {
		return e.printJSON(map[string]interface{}{
			"user":         u,
			"gradeName":    authz.GradeName(u.AdminGrade),
			"capabilities": caps,
		})
	}
	var allowed []string
	for _, c := range []authz.Capability{authz.ManageAdmins, authz.ViewLogs, authz.ViewAdminStats} {
		if caps[c] {
			allowed = append(allowed, string(c))
		}
	}
	renderTable(e.out, []string{"아이디", "닉네임", "등급", "권한"}, [][]string{{
		u.AdminID, u.AdminNickName, authz.GradeName(u.AdminGrade), strings.Join(allowed, ","),
	}})
	return nil
}
