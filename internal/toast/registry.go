package toast

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Registry keeps one board per viewer. The least recently used board is
// closed and dropped once the bound is reached.
type Registry struct {
	mu     sync.Mutex
	boards *lru.Cache[string, *Board]
	opts   []Option
}

// NewRegistry creates a registry holding at most size boards, each built
// with opts.
func NewRegistry(size int, opts ...Option) (*Registry, error) {
	boards, err := lru.NewWithEvict(size, func(_ string, board *Board) {
		board.Close()
	})
	if err != nil {
		return nil, fmt.Errorf("toast registry: %w", err)
	}
	return &Registry{boards: boards, opts: opts}, nil
}

// Board returns the viewer's board, creating it on first use.
func (r *Registry) Board(viewerID string) *Board {
	r.mu.Lock()
	defer r.mu.Unlock()
	if board, ok := r.boards.Get(viewerID); ok {
		return board
	}
	board := NewBoard(r.opts...)
	r.boards.Add(viewerID, board)
	return board
}

// Len reports how many boards are held.
func (r *Registry) Len() int {
	return r.boards.Len()
}
