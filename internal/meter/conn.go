package meter

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wfunc/lcr-driver/internal/logger"
	"github.com/wfunc/lcr-driver/internal/scpi"
	"github.com/wfunc/lcr-driver/internal/transport"
	"go.uber.org/zap"
)

// DefaultPostCommandDelay 命令发送后的默认等待时间。
// 命令间隔过短时仪表会报错，这是仪表固件的限制。
const DefaultPostCommandDelay = 150 * time.Millisecond

// Conn SCPI连接句柄。一个句柄对应一台仪表，所有操作通过显式句柄进行，
// 因此同一进程可以独立连接多台仪表。
// 方法不支持并发调用：SCPI要求严格的"一写一读"交替，
// 两个调用方交错会打乱命令与响应的配对，只能重连恢复。
type Conn struct {
	t      transport.Transport
	dec    *scpi.Decoder
	delay  time.Duration
	id     string
	logger *zap.Logger
}

// NewConn 创建连接句柄。dec为nil时使用默认解码器，
// delay为0时使用默认命令间隔。
func NewConn(t transport.Transport, dec *scpi.Decoder, delay time.Duration) *Conn {
	if dec == nil {
		dec = scpi.NewDecoder()
	}
	if delay == 0 {
		delay = DefaultPostCommandDelay
	}

	id := uuid.NewString()[:8]
	return &Conn{
		t:      t,
		dec:    dec,
		delay:  delay,
		id:     id,
		logger: logger.GetModuleLogger("meter").With(zap.String("conn_id", id)),
	}
}

// Exec 发送一条不带响应的SCPI命令。换行符由传输层补上。
func (c *Conn) Exec(cmd string) error {
	// 清掉残留数据，避免上一条命令的遗留影响配对
	if err := c.t.Flush(); err != nil {
		return err
	}

	if err := c.t.WriteLine(cmd); err != nil {
		logger.LogSerialCommand(cmd, "", false)
		return err
	}

	time.Sleep(c.delay)

	logger.LogSerialCommand(cmd, "", true)
	return nil
}

// Query 发送一条查询命令并等待一行响应。
// 每条查询恰好引出一行响应（可能是逗号分隔的多值行）。
func (c *Conn) Query(cmd string) (scpi.Value, error) {
	if err := c.t.Flush(); err != nil {
		return scpi.Value{}, err
	}

	if err := c.t.WriteLine(cmd); err != nil {
		logger.LogSerialCommand(cmd, "", false)
		return scpi.Value{}, err
	}

	time.Sleep(c.delay)

	line, err := c.t.ReadLine()
	if err != nil {
		logger.LogSerialCommand(cmd, "", false)
		return scpi.Value{}, err
	}

	val, err := c.dec.Decode(line)
	logger.LogSerialCommand(cmd, line, err == nil)
	if err != nil {
		return scpi.Value{}, err
	}

	return val, nil
}

// Send 按命令形态分派：以?结尾的是查询，其余按设置命令执行
func (c *Conn) Send(cmd string) (scpi.Value, error) {
	if strings.HasSuffix(cmd, "?") {
		return c.Query(cmd)
	}
	return scpi.Value{}, c.Exec(cmd)
}

// AutoFetch 进入自动取数模式。limit为采样数量上限，0表示不限。
// 推送只在操作员把仪表切入自动模式时产生，协议层没有启停消息。
func (c *Conn) AutoFetch(limit int) *scpi.Stream {
	// 丢弃进入自动模式前的残留推送
	_ = c.t.Flush()

	c.logger.Info("进入自动取数模式", zap.Int("limit", limit))
	return c.dec.AutoFetch(c.t, limit)
}

// ID 返回连接标识（用于日志关联）
func (c *Conn) ID() string {
	return c.id
}

// Close 关闭连接并释放串口
func (c *Conn) Close() error {
	c.logger.Info("连接已关闭")
	return c.t.Close()
}
