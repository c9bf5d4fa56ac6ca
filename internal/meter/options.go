package meter

import (
	"time"

	"github.com/wfunc/lcr-driver/internal/scpi"
	"github.com/wfunc/lcr-driver/internal/transport"
)

// Options 连接选项
type Options struct {
	// PostCommandDelay 命令发送后的等待时间，0使用默认值
	PostCommandDelay time.Duration
	// NullSentinels 空值标记列表，空则使用默认列表
	NullSentinels []string
}

// dial 打开串口并建立连接句柄
func dial(cfg *transport.Config, opts *Options) (*Conn, error) {
	if opts == nil {
		opts = &Options{}
	}

	s, err := transport.Open(cfg)
	if err != nil {
		return nil, err
	}

	dec := scpi.NewDecoder(opts.NullSentinels...)
	return NewConn(s, dec, opts.PostCommandDelay), nil
}
