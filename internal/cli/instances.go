package cli

import (
	"context"
	"errors"
	"sort"
	"time"

	"garden-console/internal/discovery/etcd"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newInstancesCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "instances",
		Short: "etcd 에 등록된 콘솔 인스턴스",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(e.cfg.Etcd.Endpoints) == 0 {
				return errors.New("etcd.endpoints 가 설정되지 않았습니다 (GARDEN_ETCD_ENDPOINTS)")
			}
			cli, err := etcd.New(etcd.Config{Endpoints: e.cfg.Etcd.Endpoints})
			if err != nil {
				return err
			}
			defer cli.Close()
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			found, err := cli.Discover(ctx, e.cfg.Etcd.Prefix)
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(found))
			for k := range found {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			rows := make([][]string, 0, len(keys))
			for _, k := range keys {
				in := found[k]
				rows = append(rows, []string{in.Addr, in.Env, in.Version, in.Upstream, humanize.Time(time.Unix(in.StartupUnix, 0))})
			}
			return e.print(found, []string{"주소", "환경", "버전", "업스트림", "시작"}, rows)
		},
	}
}
