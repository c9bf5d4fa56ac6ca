package scpi

import (
	apperrors "github.com/wfunc/lcr-driver/internal/errors"
)

// LineReader 自动取数所需的最小读取能力，由传输层实现
type LineReader interface {
	ReadLine() (string, error)
}

// Stream 自动取数流。操作员按下面板的自动取数键后，
// 仪表按自身节奏主动推送读数；这里把推流建模成调用方拉取的序列。
// 流是无界的，重新开始只能重连；结束方式只有三种：
// 调用方不再拉取、达到预设数量、或传输失败。
type Stream struct {
	r     LineReader
	dec   *Decoder
	limit int
	count int
	err   error
}

// AutoFetch 创建自动取数流。limit为采样数量上限，0表示不限。
func (d *Decoder) AutoFetch(r LineReader, limit int) *Stream {
	return &Stream{r: r, dec: d, limit: limit}
}

// Next 阻塞等待下一条读数并解码。
// 传输失败（包括超出读超时上限）原样返回并粘滞——
// 调用方能区分"自己停止拉取"和"传输失败"两种结束。
// 达到数量上限返回ErrEndOfStream。
func (s *Stream) Next() (Value, error) {
	if s.err != nil {
		return Value{}, s.err
	}
	if s.limit > 0 && s.count >= s.limit {
		s.err = apperrors.New(apperrors.ErrEndOfStream)
		return Value{}, s.err
	}

	line, err := s.r.ReadLine()
	if err != nil {
		s.err = err
		return Value{}, err
	}

	val, err := s.dec.Decode(line)
	if err != nil {
		// 单条解码失败不终止流，下一条推送可能是完好的
		return Value{}, err
	}

	s.count++
	return val, nil
}

// Count 返回已产出的读数条数
func (s *Stream) Count() int {
	return s.count
}

// Err 返回粘滞的终止错误，流未终止时为nil
func (s *Stream) Err() error {
	return s.err
}
