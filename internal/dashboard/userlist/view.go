package userlist

import (
	"sort"
	"strings"

	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/model"
)

// Query 派生视图查询
type Query struct {
	Search   string
	Page     int // 1 起始
	PageSize int
}

// Page 派生视图结果（不持久化，每次查询重新计算）
type Page struct {
	Items      []model.User
	Total      int // 过滤后的总条数
	Page       int
	PageSize   int
	TotalPages int
}

// View 计算派生视图
//
// 在当前列表上：按 name 做大小写不敏感的子串过滤，
// 按 id 升序稳定排序，再按固定页大小分页。
// 页码越界时返回空页（Total 仍为过滤后总数）。
func (s *Store) View(q Query) Page {
	if q.PageSize <= 0 {
		q.PageSize = 10
	}
	if q.Page <= 0 {
		q.Page = 1
	}

	snap := s.Snapshot()

	needle := strings.ToLower(q.Search)
	filtered := make([]model.User, 0, len(snap.List))
	for _, u := range snap.List {
		if needle == "" || strings.Contains(strings.ToLower(u.Name), needle) {
			filtered = append(filtered, u)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].ID < filtered[j].ID
	})

	total := len(filtered)
	totalPages := (total + q.PageSize - 1) / q.PageSize

	start := (q.Page - 1) * q.PageSize
	if start > total {
		start = total
	}
	end := start + q.PageSize
	if end > total {
		end = total
	}

	return Page{
		Items:      filtered[start:end],
		Total:      total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages,
	}
}
