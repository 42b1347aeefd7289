// Package overlay подключает к слоям карты интерактивное поведение: подсказки,
// подсветку, клики и сброс вида. Каждое подключение возвращает Handle,
// владелец которого обязан освободить его перед повторным подключением.
package overlay

import (
	"sync"
)

// Handle - подключенное поведение. Release идемпотентен.
type Handle struct {
	once    sync.Once
	release func()
}

func newHandle(release func()) *Handle {
	return &Handle{release: release}
}

// noop возвращает хендл, который ничего не освобождает
func noop() *Handle {
	return &Handle{}
}

// Release отключает поведение. Повторные вызовы ничего не делают.
func (h *Handle) Release() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		if h.release != nil {
			h.release()
		}
	})
}

// Group собирает хендлы для совместного освобождения
type Group struct {
	mu      sync.Mutex
	handles []*Handle
}

// Add добавляет хендл в группу и возвращает его
func (g *Group) Add(h *Handle) *Handle {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.handles = append(g.handles, h)
	return h
}

// Len возвращает число хендлов в группе
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.handles)
}

// Release освобождает хендлы в обратном порядке подключения
func (g *Group) Release() {
	g.mu.Lock()
	handles := g.handles
	g.handles = nil
	g.mu.Unlock()

	for i := len(handles) - 1; i >= 0; i-- {
		handles[i].Release()
	}
}
