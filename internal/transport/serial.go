package transport

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/tarm/serial"
	apperrors "github.com/wfunc/lcr-driver/internal/errors"
	"github.com/wfunc/lcr-driver/internal/logger"
	"go.uber.org/zap"
)

// Config 串口配置
type Config struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
	DataBits int    `yaml:"data_bits"`
	StopBits int    `yaml:"stop_bits"`
	Parity   string `yaml:"parity"`
	// ReadTimeout 单次读取的等待上限。写入没有对应的超时：
	// 底层串口库只支持读超时，写入始终阻塞到完成。
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// DefaultConfig 默认配置。879B/878B/891 固定使用 9600 8N1。
func DefaultConfig() *Config {
	return &Config{
		Port:        "/dev/ttyUSB0",
		BaudRate:    9600,
		DataBits:    8,
		StopBits:    1,
		Parity:      "N",
		ReadTimeout: 10 * time.Second,
	}
}

// Serial 串口行传输。持有一个串口句柄，
// 不支持多个调用方并发使用（SCPI要求严格的一写一读交替）。
// 唯一允许的并发操作是Close：从另一个goroutine关闭可以中断
// 阻塞中的读取，被中断的调用返回ErrNotConnected。
type Serial struct {
	config *Config

	mu    sync.Mutex
	port  SerialPort
	rxBuf []byte

	logger *zap.Logger
}

// Open 打开串口
func Open(config *Config) (*Serial, error) {
	if config == nil {
		config = DefaultConfig()
	}

	// 解析校验位
	parity := serial.ParityNone
	switch config.Parity {
	case "O", "odd":
		parity = serial.ParityOdd
	case "E", "even":
		parity = serial.ParityEven
	}

	// 解析停止位
	stopBits := serial.Stop1
	if config.StopBits == 2 {
		stopBits = serial.Stop2
	}

	// 配置串口
	cfg := &serial.Config{
		Name:        config.Port,
		Baud:        config.BaudRate,
		Size:        byte(config.DataBits),
		Parity:      parity,
		StopBits:    stopBits,
		ReadTimeout: config.ReadTimeout,
	}

	// 打开串口
	port, err := serial.OpenPort(cfg)
	if err != nil {
		logger.GetModuleLogger("serial").Error("打开串口失败",
			zap.String("port", config.Port),
			zap.Error(err))
		return nil, apperrors.Wrapf(err, apperrors.ErrSerialPortOpen, "打开 %s 失败", config.Port)
	}

	s := &Serial{
		config: config,
		port:   port,
		logger: logger.GetModuleLogger("serial"),
	}

	s.logger.Info("串口已打开",
		zap.String("port", config.Port),
		zap.Int("baud_rate", config.BaudRate))

	return s, nil
}

// NewWithPort 用已有的串口句柄创建行传输（用于测试和自定义端口）
func NewWithPort(port SerialPort, config *Config) *Serial {
	if config == nil {
		config = DefaultConfig()
	}
	return &Serial{
		config: config,
		port:   port,
		logger: logger.GetModuleLogger("serial"),
	}
}

// snapshot 取当前串口句柄，已关闭时返回nil
func (s *Serial) snapshot() SerialPort {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// WriteLine 写入一行命令。换行符由这里补上。
func (s *Serial) WriteLine(text string) error {
	port := s.snapshot()
	if port == nil {
		return apperrors.New(apperrors.ErrNotConnected)
	}

	data := []byte(text + "\n")
	n, err := port.Write(data)
	if err != nil {
		if s.snapshot() == nil {
			return apperrors.New(apperrors.ErrNotConnected)
		}
		return apperrors.Wrap(err, apperrors.ErrSerialPortWrite)
	}
	if n != len(data) {
		return apperrors.Newf(apperrors.ErrSerialPortWrite, "写入不完整: %d/%d", n, len(data))
	}

	s.logger.Debug("命令已发送", zap.String("command", text))

	return nil
}

// ReadLine 阻塞读取一行响应，行尾的\r\n已剥离。
// 读超时返回ErrSerialTimeout——超时和仪表返回的空值标记是两种情况，
// 这里绝不会把超时伪造成空响应。
func (s *Serial) ReadLine() (string, error) {
	buf := make([]byte, 256)
	for {
		s.mu.Lock()
		if s.port == nil {
			s.mu.Unlock()
			return "", apperrors.New(apperrors.ErrNotConnected)
		}
		port := s.port

		// 缓冲区内已有完整行时直接取出
		if i := bytes.IndexByte(s.rxBuf, '\n'); i >= 0 {
			line := strings.TrimRight(string(s.rxBuf[:i]), "\r")
			s.rxBuf = append(s.rxBuf[:0:0], s.rxBuf[i+1:]...)
			s.mu.Unlock()
			s.logger.Debug("收到响应", zap.String("line", line))
			return line, nil
		}
		s.mu.Unlock()

		// 读取不持锁：Close要能中断阻塞中的读取
		n, err := port.Read(buf)

		s.mu.Lock()
		if s.port == nil {
			// 读取期间被Close中断，不按读失败上报
			s.mu.Unlock()
			return "", apperrors.New(apperrors.ErrNotConnected)
		}
		if n > 0 {
			s.rxBuf = append(s.rxBuf, buf[:n]...)
			s.mu.Unlock()
			continue
		}
		s.mu.Unlock()

		if err != nil && err != io.EOF {
			return "", apperrors.Wrap(err, apperrors.ErrSerialPortRead)
		}

		// tarm串口读超时表现为EOF（POSIX）或0字节读（Windows）。
		// 半行数据保留在缓冲区中，下一次调用继续拼接。
		return "", apperrors.Newf(apperrors.ErrSerialTimeout,
			"等待 %v 未收到完整响应", s.config.ReadTimeout)
	}
}

// Flush 清空收发缓冲区。发送命令前调用，丢弃残留数据。
func (s *Serial) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port == nil {
		return apperrors.New(apperrors.ErrNotConnected)
	}

	s.rxBuf = s.rxBuf[:0]
	if err := s.port.Flush(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrSerialPortRead)
	}
	return nil
}

// Close 关闭串口。可以从其他goroutine调用，
// 关闭底层句柄会让阻塞中的读取立即返回。
func (s *Serial) Close() error {
	s.mu.Lock()
	port := s.port
	s.port = nil
	s.mu.Unlock()

	if port == nil {
		return nil
	}

	if err := port.Close(); err != nil {
		s.logger.Error("关闭串口失败", zap.Error(err))
		return apperrors.Wrap(err, apperrors.ErrSerialPortClose)
	}

	s.logger.Info("串口已关闭")

	return nil
}
