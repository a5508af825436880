package generation

import (
	"sync"
	"time"
)

// windowBreaker 滑动窗口熔断器: 窗口内失败达到阈值即熔断,
// 冷却期后放行单个探测请求, 探测成功恢复, 失败重新熔断
type windowBreaker struct {
	mu sync.Mutex

	maxFailures int
	window      time.Duration
	cooldown    time.Duration

	failures []time.Time
	open     bool
	openedAt time.Time
	probing  bool

	now func() time.Time
}

func newWindowBreaker(maxFailures int, window, cooldown time.Duration) *windowBreaker {
	return &windowBreaker{
		maxFailures: maxFailures,
		window:      window,
		cooldown:    cooldown,
		now:         time.Now,
	}
}

func (b *windowBreaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return true
	}
	if b.probing {
		return false
	}
	if b.now().Sub(b.openedAt) >= b.cooldown {
		b.probing = true
		return true
	}
	return false
}

func (b *windowBreaker) OnSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.open = false
	b.probing = false
	b.failures = b.failures[:0]
}

func (b *windowBreaker) OnFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if b.probing {
		// 探测失败, 重新计冷却
		b.probing = false
		b.openedAt = now
		return
	}
	if b.open {
		return
	}

	b.failures = append(b.failures, now)
	cutoff := now.Add(-b.window)
	kept := b.failures[:0]
	for _, t := range b.failures {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	b.failures = kept

	if len(b.failures) >= b.maxFailures {
		b.open = true
		b.openedAt = now
		b.failures = b.failures[:0]
	}
}
