// Package cli gardenctl 명령. 콘솔 BFF 없이 백엔드 관리자 API 를 직접 호출한다.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"garden-console/internal/gardenapi"
	"garden-console/internal/logging"
	"garden-console/internal/session"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ErrNotLoggedIn 저장된 세션이 없을 때
var ErrNotLoggedIn = errors.New("로그인이 필요합니다. gardenctl login 을 먼저 실행하세요")

// env 명령 실행 동안 공유하는 값
type env struct {
	cfg      *Config
	log      *logging.Logger
	upstream *gardenapi.Client
	store    *session.Store
	out      io.Writer
	errOut   io.Writer
	format   string
}

type rootFlags struct {
	configPath string
	format     string
}

func NewRootCmd() *cobra.Command {
	var (
		flags rootFlags
		e     = &env{}
	)
	root := &cobra.Command{
		Use:           "gardenctl",
		Short:         "추모의 정원 관리자 콘솔 CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.init(cmd, flags)
		},
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "설정 파일 (YAML)")
	root.PersistentFlags().StringVarP(&flags.format, "output", "o", "table", "출력 형식 table|json")

	root.AddCommand(
		newLoginCmd(e),
		newLogoutCmd(e),
		newWhoamiCmd(e),
		newFlowersCmd(e),
		newLeavesCmd(e),
		newExportCmd(e),
		newAccountsCmd(e),
		newMeCmd(e),
		newLogsCmd(e),
		newDashboardCmd(e),
		newAuditCmd(e),
		newInstancesCmd(e),
	)
	return root
}

func (e *env) init(cmd *cobra.Command, f rootFlags) error {
	if f.format != "table" && f.format != "json" {
		return fmt.Errorf("--output must be table|json, got %q", f.format)
	}
	cfg, err := LoadConfig(f.configPath)
	if err != nil {
		return err
	}
	l, err := logging.New(cfg.Log.Level, "console")
	if err != nil {
		return err
	}
	up, err := gardenapi.New(gardenapi.Options{
		BaseURL:   cfg.Upstream.BaseURL,
		Timeout:   cfg.UpstreamTimeout(),
		UserAgent: cfg.Upstream.UserAgent,
	})
	if err != nil {
		return err
	}
	p, err := session.NewFilePersister(cfg.Session.Dir, cfg.Session.Secret)
	if err != nil {
		return err
	}
	e.cfg, e.log, e.upstream, e.format = cfg, l, up, f.format
	e.store = session.NewStore(session.StorageKey, p, l)
	e.store.Init(cmd.Context())
	e.out, e.errOut = cmd.OutOrStdout(), cmd.ErrOrStderr()
	return nil
}

// client 저장된 세션의 백엔드 쿠키를 실은 클라이언트
func (e *env) client() (*gardenapi.Client, error) {
	rec, ok := e.store.Record()
	if !ok {
		return nil, ErrNotLoggedIn
	}
	return e.upstream.ForSession(rec.HTTPCookies()), nil
}

// call 로그인 세션으로 fn 을 실행한다. 바뀐 쿠키는 저장하고, 세션 만료면 로컬 세션을 지운다.
func (e *env) call(ctx context.Context, fn func(ctx context.Context, c *gardenapi.Client) error) error {
	c, err := e.client()
	if err != nil {
		return err
	}
	err = fn(ctx, c)
	if gardenapi.IsSessionExpired(err) {
		if lerr := e.store.Logout(ctx); lerr != nil {
			e.log.Warn("cli_session_clear_failed", zap.Error(lerr))
		}
		return fmt.Errorf("%w\n세션이 만료되었습니다. gardenctl login 으로 다시 로그인하세요", err)
	}
	if serr := e.store.SetCookies(ctx, session.CookiesFrom(c.Cookies())); serr != nil {
		e.log.Warn("cli_session_save_failed", zap.Error(serr))
	}
	return err
}
