package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"garden-console/internal/domain/model"
	"garden-console/internal/gardenapi"
	"garden-console/internal/search"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

type messageLister func(c *gardenapi.Client, ctx context.Context, cond *model.MessageSearchCondition, page model.Pageable) (*model.PageResponse[model.Message], error)

func newFlowersCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{Use: "flowers", Short: "꽃 메시지"}
	cmd.AddCommand(
		newMessageListCmd(e, (*gardenapi.Client).ListFlowerMessages),
		newFlowerEditCmd(e),
		newMessageDeleteCmd(e, (*gardenapi.Client).DeleteFlowerMessage),
	)
	return cmd
}

func newLeavesCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{Use: "leaves", Short: "나뭇잎 메시지 (조회/삭제만)"}
	cmd.AddCommand(
		newMessageListCmd(e, (*gardenapi.Client).ListLeafMessages),
		newMessageDeleteCmd(e, (*gardenapi.Client).DeleteLeafMessage),
	)
	return cmd
}

func newMessageListCmd(e *env, list messageLister) *cobra.Command {
	var (
		f    search.MessageFilter
		page pageFlags
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "검색 조건으로 목록 조회",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := f.Validate(); err != nil {
				return err
			}
			cond := f.Condition()
			var out *model.PageResponse[model.Message]
			err := e.call(cmd.Context(), func(ctx context.Context, c *gardenapi.Client) (err error) {
				out, err = list(c, ctx, &cond, page.pageable())
				return err
			})
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(out.Content))
			for _, m := range out.Content {
				rows = append(rows, []string{i64(m.ID), m.Content, m.CreatedAt, string(m.DeleteFlag)})
			}
			if err := e.print(out, []string{"ID", "내용", "작성일", "삭제"}, rows); err != nil {
				return err
			}
			if e.format == "table" {
				pageFooter(e.out, out)
			}
			return nil
		},
	}
	bindMessageFilter(cmd, &f)
	page.bind(cmd)
	return cmd
}

func newFlowerEditCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <content>",
		Short: "꽃 메시지 본문 수정 (50자 이내)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			// 로그인 여부와 무관하게 본문부터 검사한다
			if err := gardenapi.ValidateFlowerContent(args[1]); err != nil {
				return err
			}
			var out *model.FlowerMessage
			err = e.call(cmd.Context(), func(ctx context.Context, c *gardenapi.Client) (err error) {
				out, err = c.UpdateFlowerMessage(ctx, id, model.FlowerMessageUpdateRequest{Content: args[1]})
				return err
			})
			if err != nil {
				return err
			}
			return e.print(out, []string{"ID", "내용", "수정일"}, [][]string{{i64(out.ID), out.Content, out.UpdatedAt}})
		},
	}
}

func newMessageDeleteCmd(e *env, del func(c *gardenapi.Client, ctx context.Context, id int64) error) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "메시지 삭제",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			err = e.call(cmd.Context(), func(ctx context.Context, c *gardenapi.Client) error {
				return del(c, ctx, id)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "%d 번 메시지를 삭제했습니다\n", id)
			return nil
		},
	}
}

func newExportCmd(e *env) *cobra.Command {
	var (
		f   search.MessageFilter
		dir string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "검색 조건의 메시지를 엑셀 파일로 내려받는다",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := f.Validate(); err != nil {
				return err
			}
			cond := f.Condition()
			var file *model.ExportFile
			err := e.call(cmd.Context(), func(ctx context.Context, c *gardenapi.Client) (err error) {
				file, err = c.ExportMessages(ctx, &cond)
				return err
			})
			if err != nil {
				return err
			}
			path := filepath.Join(dir, filepath.Base(file.Filename))
			if err := os.WriteFile(path, file.Data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(e.out, "%s (%s)\n", path, humanize.Bytes(uint64(len(file.Data))))
			return nil
		},
	}
	bindMessageFilter(cmd, &f)
	cmd.Flags().StringVar(&f.MessageType, "type", "", "메시지 종류 FLOWER|LEAF")
	cmd.Flags().StringVar(&dir, "dir", ".", "저장 디렉터리")
	return cmd
}
