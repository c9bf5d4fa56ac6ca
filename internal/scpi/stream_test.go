package scpi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/wfunc/lcr-driver/internal/errors"
)

// scriptReader 模拟传输：依次返回预设行，耗尽后返回err
type scriptReader struct {
	lines []string
	err   error
}

func (r *scriptReader) ReadLine() (string, error) {
	if len(r.lines) == 0 {
		if r.err != nil {
			return "", r.err
		}
		return "", apperrors.New(apperrors.ErrSerialTimeout)
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

// TestStreamYieldsThenFails 两条读数后传输断开：
// 流必须以失败结束，而不是静默终止
func TestStreamYieldsThenFails(t *testing.T) {
	r := &scriptReader{
		lines: []string{"1.0E-01,2.0E-01", "1.1E-01,2.1E-01"},
		err:   apperrors.New(apperrors.ErrSerialPortRead, "设备已断开"),
	}
	stream := NewDecoder().AutoFetch(r, 0)

	// 第一条
	v, err := stream.Next()
	require.NoError(t, err)
	tuple, ok := v.AsTuple()
	require.True(t, ok)
	require.Len(t, tuple, 2)
	f0, _ := tuple[0].AsFloat()
	f1, _ := tuple[1].AsFloat()
	assert.Equal(t, 0.10, f0)
	assert.Equal(t, 0.20, f1)

	// 第二条
	v, err = stream.Next()
	require.NoError(t, err)
	tuple, _ = v.AsTuple()
	f0, _ = tuple[0].AsFloat()
	assert.InDelta(t, 0.11, f0, 1e-12)

	// 传输失败：错误透传并粘滞
	_, err = stream.Next()
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrSerialPortRead))
	assert.Equal(t, 2, stream.Count())
	assert.Equal(t, err, stream.Err())

	// 再次拉取仍返回同一错误
	_, err2 := stream.Next()
	assert.Equal(t, err, err2)
}

// TestStreamTimeout 超时按失败上报，不产出空值读数
func TestStreamTimeout(t *testing.T) {
	r := &scriptReader{lines: []string{"+1.23456e-03,+4.56789e-01"}}
	stream := NewDecoder().AutoFetch(r, 0)

	v, err := stream.Next()
	require.NoError(t, err)
	assert.Equal(t, KindTuple, v.Kind())

	_, err = stream.Next()
	require.Error(t, err)
	assert.True(t, apperrors.IsTimeout(err))
	assert.NotNil(t, stream.Err())
}

// TestStreamLimit 数量上限
func TestStreamLimit(t *testing.T) {
	r := &scriptReader{
		lines: []string{"1.0E-01,2.0E-01", "1.1E-01,2.1E-01", "1.2E-01,2.2E-01"},
	}
	stream := NewDecoder().AutoFetch(r, 2)

	_, err := stream.Next()
	require.NoError(t, err)
	_, err = stream.Next()
	require.NoError(t, err)

	// 达到上限：以ErrEndOfStream结束，与传输失败可区分
	_, err = stream.Next()
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrEndOfStream))
	assert.False(t, apperrors.IsTimeout(err))
	assert.Equal(t, 2, stream.Count())
}

// TestStreamDecodeErrorNotSticky 单条解码失败不终止流
func TestStreamDecodeErrorNotSticky(t *testing.T) {
	r := &scriptReader{
		lines: []string{"", "1.0E-01,2.0E-01"},
	}
	stream := NewDecoder().AutoFetch(r, 0)

	_, err := stream.Next()
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrDecodeEmpty))
	assert.Nil(t, stream.Err()) // 未粘滞

	v, err := stream.Next()
	require.NoError(t, err)
	assert.Equal(t, KindTuple, v.Kind())
	assert.Equal(t, 1, stream.Count())
}
