package workflow

import (
	"sync"
	"time"
)

// IDGenerator は文書IDを生成する。
// IDは作成時刻（ミリ秒）由来の単調増加値。同一ミリ秒内に複数の
// 作成が行われた場合は直前の値+1を返すことで衝突を防ぐ。
// タイムスタンプの粒度だけに依存しない。
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDGenerator はIDGeneratorを生成する。
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// Next は次の文書IDを返す。同一プロセス内で重複しない。
func (g *IDGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}
