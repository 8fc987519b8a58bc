package notify

import (
	"sync"
	"time"
)

// 消息类型常量
const (
	KindSuccess = "success"
	KindError   = "error"
)

// Message 短时通知消息
type Message struct {
	Kind      string    `json:"kind"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Slot 单槽位通知持有者
// 同一时刻至多一条活跃消息；新消息立即取代旧消息并重新计时；
// 到期定时器只清除仍然持有的那条消息，已被取代的消息不受影响
type Slot struct {
	mu      sync.Mutex
	ttl     time.Duration
	current *Message
	seq     uint64 // 消息序号，用于判断到期的是不是当前消息
	timer   *time.Timer
}

// NewSlot 创建通知槽位
func NewSlot(ttl time.Duration) *Slot {
	return &Slot{ttl: ttl}
}

// Post 发布一条消息，取代当前活跃消息
func (s *Slot) Post(kind, text string) *Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}

	msg := &Message{
		Kind:      kind,
		Text:      text,
		CreatedAt: time.Now(),
	}
	s.current = msg
	s.seq++

	seq := s.seq
	s.timer = time.AfterFunc(s.ttl, func() {
		s.expire(seq)
	})

	return msg
}

// Success 发布成功消息
func (s *Slot) Success(text string) *Message {
	return s.Post(KindSuccess, text)
}

// Error 发布错误消息
func (s *Slot) Error(text string) *Message {
	return s.Post(KindError, text)
}

// Current 返回当前活跃消息，无消息时返回 nil
func (s *Slot) Current() *Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Clear 立即清除当前消息
func (s *Slot) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.current = nil
	s.seq++
}

// expire 到期清除，仅当槽位仍持有同一条消息时生效
func (s *Slot) expire(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq != seq {
		return
	}
	s.current = nil
	s.timer = nil
}
