package transport

import "io"

// SerialPort 串口接口（用于测试）
type SerialPort interface {
	io.ReadWriteCloser
	Flush() error
}

// Transport 行传输接口。一次WriteLine对应仪表的一条命令，
// 一次ReadLine对应仪表的一行响应。
type Transport interface {
	WriteLine(text string) error
	ReadLine() (string, error)
	Flush() error
	Close() error
}
