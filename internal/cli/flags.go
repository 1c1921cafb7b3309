package cli

import (
	"fmt"
	"strconv"

	"garden-console/internal/domain/model"
	"garden-console/internal/search"

	"github.com/spf13/cobra"
)

// pageFlags 화면 기준 1부터 세는 페이지 번호를 받는다
type pageFlags struct {
	page int
	size int
	sort []string
}

func (p *pageFlags) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.page, "page", 1, "페이지 (1부터)")
	cmd.Flags().IntVar(&p.size, "size", search.DefaultPageSize, "페이지 크기")
	cmd.Flags().StringSliceVar(&p.sort, "sort", nil, "정렬 field,asc|desc")
}

func (p pageFlags) pageable() model.Pageable {
	return search.NormalizePage(model.Pageable{Page: p.page - 1, Size: p.size, Sort: p.sort})
}

func bindMessageFilter(cmd *cobra.Command, f *search.MessageFilter) {
	cmd.Flags().StringVarP(&f.SearchKeyword, "keyword", "k", "", "본문 검색어")
	cmd.Flags().StringVar(&f.StartDate, "from", "", "시작일 YYYY-MM-DD")
	cmd.Flags().StringVar(&f.EndDate, "to", "", "종료일 YYYY-MM-DD")
	cmd.Flags().StringVar(&f.DeleteFlag, "deleted", "", "삭제 여부 Y|N")
}

func bindLogFilter(cmd *cobra.Command, f *search.LogFilter) {
	cmd.Flags().StringVar(&f.AdminID, "admin", "", "관리자 아이디")
	cmd.Flags().StringVar(&f.StartDate, "from", "", "시작일 YYYY-MM-DD")
	cmd.Flags().StringVar(&f.EndDate, "to", "", "종료일 YYYY-MM-DD")
	cmd.Flags().StringVar(&f.IPAddress, "ip", "", "IP 주소")
}

func parseID(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("id 값이 올바르지 않습니다: %q", s)
	}
	return v, nil
}
