// Package hierarchy walks the employee reporting forest. It only needs a
// "direct subordinates of X" query from storage and builds closures on top.
package hierarchy

import (
	"context"

	hierarchyerrors "aisg-audit/internal/hierarchy/errors"
)

const DefaultMaxDepth = 64

type Node struct {
	ID           string
	Code         string
	FullName     string
	PositionCode string
	Level        int
	ManagerID    string
}

type Source interface {
	DirectSubordinates(ctx context.Context, companyID, managerID string) ([]Node, error)
}

type Walker struct {
	src      Source
	maxDepth int
}

type Option func(*Walker)

func WithMaxDepth(depth int) Option {
	return func(w *Walker) {
		if depth > 0 {
			w.maxDepth = depth
		}
	}
}

func NewWalker(src Source, opts ...Option) *Walker {
	w := &Walker{src: src, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Walker) DirectSubordinates(ctx context.Context, companyID, managerID string) ([]Node, error) {
	return w.src.DirectSubordinates(ctx, companyID, managerID)
}

// AllSubordinates mengembalikan closure transitif bawahan secara breadth-first.
// Tidak ada node yang muncul dua kali; rantai yang lebih dalam dari maxDepth
// dianggap siklus yang lolos validasi dan dikembalikan sebagai ErrDepthExceeded.
func (w *Walker) AllSubordinates(ctx context.Context, companyID, managerID string) ([]Node, error) {
	visited := map[string]struct{}{managerID: {}}
	frontier := []string{managerID}
	result := make([]Node, 0)

	for depth := 0; len(frontier) > 0; depth++ {
		if depth >= w.maxDepth {
			return nil, hierarchyerrors.ErrDepthExceeded
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next := make([]string, 0)
		for _, id := range frontier {
			subs, err := w.src.DirectSubordinates(ctx, companyID, id)
			if err != nil {
				return nil, err
			}
			for _, sub := range subs {
				if _, seen := visited[sub.ID]; seen {
					continue
				}
				visited[sub.ID] = struct{}{}
				result = append(result, sub)
				next = append(next, sub.ID)
			}
		}
		frontier = next
	}

	return result, nil
}

func (w *Walker) CanManage(ctx context.Context, companyID, managerID, targetID string) (bool, error) {
	if managerID == "" || targetID == "" || managerID == targetID {
		return false, nil
	}

	subs, err := w.AllSubordinates(ctx, companyID, managerID)
	if err != nil {
		return false, err
	}
	for _, s := range subs {
		if s.ID == targetID {
			return true, nil
		}
	}
	return false, nil
}

// ValidateManager memeriksa dua invariant sebelum employee diarahkan ke manager baru:
// level manager harus lebih tinggi (angka lebih kecil) dan manager tidak boleh
// berada di dalam closure bawahan employee itu sendiri.
func (w *Walker) ValidateManager(ctx context.Context, companyID string, employee, manager Node) error {
	if employee.ID != "" && employee.ID == manager.ID {
		return hierarchyerrors.ErrSelfManagement
	}
	if manager.Level >= employee.Level {
		return hierarchyerrors.ErrManagerRankViolation
	}
	if employee.ID == "" {
		// employee baru belum punya bawahan
		return nil
	}

	isBelow, err := w.CanManage(ctx, companyID, employee.ID, manager.ID)
	if err != nil {
		return err
	}
	if isBelow {
		return hierarchyerrors.ErrCircularReference
	}
	return nil
}
