package convo

import (
	"container/list"
	"sync"
)

// Locker 对话级串行化: 同一对话同时只允许一次在途处理,
// 后到的消息在各自goroutine上排队等待, 按到达顺序获得锁
type Locker struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	held    bool
	waiters *list.List // chan struct{}
}

func NewLocker() *Locker {
	return &Locker{entries: make(map[string]*lockEntry)}
}

// Lock 阻塞直到获得key对应的锁
func (l *Locker) Lock(key string) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &lockEntry{waiters: list.New()}
		l.entries[key] = e
	}
	if !e.held {
		e.held = true
		l.mu.Unlock()
		return
	}
	ch := make(chan struct{})
	e.waiters.PushBack(ch)
	l.mu.Unlock()
	<-ch
}

// Unlock 释放锁, 唤醒最早的等待者; 无等待者时回收表项
func (l *Locker) Unlock(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok || !e.held {
		return
	}
	if front := e.waiters.Front(); front != nil {
		e.waiters.Remove(front)
		close(front.Value.(chan struct{}))
		return
	}
	e.held = false
	delete(l.entries, key)
}
