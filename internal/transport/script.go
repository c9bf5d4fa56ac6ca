package transport

import (
	"sync"

	apperrors "github.com/wfunc/lcr-driver/internal/errors"
)

// Script 脚本化的模拟传输（用于测试）。
// 依次返回预设的响应行，耗尽后返回Err；Err为空时表现为读超时。
type Script struct {
	mu      sync.Mutex
	lines   []string
	err     error
	written []string
	flushes int
	closed  bool
}

// NewScript 创建脚本传输
func NewScript(lines []string, err error) *Script {
	return &Script{lines: lines, err: err}
}

// WriteLine 记录写入的命令行
func (s *Script) WriteLine(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return apperrors.New(apperrors.ErrNotConnected)
	}
	s.written = append(s.written, text)
	return nil
}

// ReadLine 返回下一条预设响应
func (s *Script) ReadLine() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", apperrors.New(apperrors.ErrNotConnected)
	}
	if len(s.lines) == 0 {
		if s.err != nil {
			return "", s.err
		}
		return "", apperrors.New(apperrors.ErrSerialTimeout, "脚本响应已耗尽")
	}

	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

// Flush 记录清空次数
func (s *Script) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushes++
	return nil
}

// Close 关闭脚本传输
func (s *Script) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Written 返回已写入的命令行
func (s *Script) Written() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.written))
	copy(out, s.written)
	return out
}

// Flushes 返回Flush调用次数
func (s *Script) Flushes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushes
}
