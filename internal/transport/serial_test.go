package transport

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/wfunc/lcr-driver/internal/errors"
)

// fakePort 模拟串口：按脚本返回读取块和错误
type fakePort struct {
	chunks  [][]byte
	readErr error
	written []byte
	flushed int
	closed  bool
	short   bool // 模拟不完整写入
}

func (f *fakePort) Read(p []byte) (int, error) {
	if len(f.chunks) == 0 {
		if f.readErr != nil {
			return 0, f.readErr
		}
		// 模拟tarm串口读超时（POSIX下表现为EOF）
		return 0, io.EOF
	}
	chunk := f.chunks[0]
	f.chunks = f.chunks[1:]
	n := copy(p, chunk)
	return n, nil
}

func (f *fakePort) Write(p []byte) (int, error) {
	f.written = append(f.written, p...)
	if f.short {
		return len(p) - 1, nil
	}
	return len(p), nil
}

func (f *fakePort) Flush() error {
	f.flushed++
	return nil
}

func (f *fakePort) Close() error {
	f.closed = true
	return nil
}

func TestReadLine(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   []string
	}{
		{
			name:   "单行",
			chunks: []string{"+1.23456e-03\r\n"},
			want:   []string{"+1.23456e-03"},
		},
		{
			name:   "一次读到多行",
			chunks: []string{"ON\r\nOFF\r\n"},
			want:   []string{"ON", "OFF"},
		},
		{
			name:   "一行分多次到达",
			chunks: []string{"+2.345", "678e+04,", "-1.34567e-01\r\n"},
			want:   []string{"+2.345678e+04,-1.34567e-01"},
		},
		{
			name:   "无回车的行",
			chunks: []string{"HOLD\n"},
			want:   []string{"HOLD"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			port := &fakePort{}
			for _, c := range tt.chunks {
				port.chunks = append(port.chunks, []byte(c))
			}
			s := NewWithPort(port, nil)

			for _, want := range tt.want {
				line, err := s.ReadLine()
				require.NoError(t, err)
				assert.Equal(t, want, line)
			}
		})
	}
}

func TestReadLineTimeout(t *testing.T) {
	// 无任何数据时读取应报超时，而不是返回空行
	port := &fakePort{}
	s := NewWithPort(port, nil)

	_, err := s.ReadLine()
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrSerialTimeout))
	assert.True(t, apperrors.IsTimeout(err))
}

func TestReadLinePartialThenTimeout(t *testing.T) {
	// 半行数据后超时：报超时并保留半行，后续数据到达时拼出完整行
	port := &fakePort{chunks: [][]byte{[]byte("+1.2")}}
	s := NewWithPort(port, nil)

	_, err := s.ReadLine()
	require.True(t, apperrors.Is(err, apperrors.ErrSerialTimeout))

	port.chunks = append(port.chunks, []byte("34e+01\r\n"))
	line, err := s.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "+1.234e+01", line)
}

func TestReadLineError(t *testing.T) {
	// 串口读错误（如设备拔出）按读失败上报，与超时区分
	port := &fakePort{readErr: errors.New("input/output error")}
	s := NewWithPort(port, nil)

	_, err := s.ReadLine()
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrSerialPortRead))
	assert.False(t, apperrors.IsTimeout(err))
}

func TestWriteLine(t *testing.T) {
	port := &fakePort{}
	s := NewWithPort(port, nil)

	require.NoError(t, s.WriteLine("FETCh?"))
	assert.Equal(t, "FETCh?\n", string(port.written))
}

func TestWriteLineIncomplete(t *testing.T) {
	port := &fakePort{short: true}
	s := NewWithPort(port, nil)

	err := s.WriteLine("*IDN?")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrSerialPortWrite))
}

func TestFlushDropsBuffer(t *testing.T) {
	// Flush后残留的半行数据应被丢弃
	port := &fakePort{chunks: [][]byte{[]byte("stale")}}
	s := NewWithPort(port, nil)

	_, err := s.ReadLine() // 读入半行后超时
	require.True(t, apperrors.Is(err, apperrors.ErrSerialTimeout))

	require.NoError(t, s.Flush())
	assert.Equal(t, 1, port.flushed)

	port.chunks = append(port.chunks, []byte("FRESH\r\n"))
	line, err := s.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "FRESH", line)
}

// blockingPort 模拟阻塞读取的串口：Read一直阻塞，直到Close放行
type blockingPort struct {
	entered chan struct{}
	unblock chan struct{}
}

func newBlockingPort() *blockingPort {
	return &blockingPort{
		entered: make(chan struct{}, 1),
		unblock: make(chan struct{}),
	}
}

func (p *blockingPort) Read(b []byte) (int, error) {
	select {
	case p.entered <- struct{}{}:
	default:
	}
	<-p.unblock
	return 0, errors.New("serial: port closed")
}

func (p *blockingPort) Write(b []byte) (int, error) { return len(b), nil }

func (p *blockingPort) Flush() error { return nil }

func (p *blockingPort) Close() error {
	close(p.unblock)
	return nil
}

func TestCloseInterruptsBlockedRead(t *testing.T) {
	// 从另一个goroutine关闭时，阻塞中的读取必须以未连接结束，
	// 而不是读失败——调用方靠这个区分主动停止和传输故障
	port := newBlockingPort()
	s := NewWithPort(port, nil)

	errCh := make(chan error, 1)
	go func() {
		_, err := s.ReadLine()
		errCh <- err
	}()

	<-port.entered
	require.NoError(t, s.Close())

	err := <-errCh
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotConnected))
	assert.False(t, apperrors.Is(err, apperrors.ErrSerialPortRead))
}

func TestClose(t *testing.T) {
	port := &fakePort{}
	s := NewWithPort(port, nil)

	require.NoError(t, s.Close())
	assert.True(t, port.closed)

	// 关闭后的操作报未连接
	err := s.WriteLine("FETCh?")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotConnected))
	// 重复关闭无害
	assert.NoError(t, s.Close())
}
