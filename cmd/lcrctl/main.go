package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/wfunc/lcr-driver/internal/config"
	apperrors "github.com/wfunc/lcr-driver/internal/errors"
	"github.com/wfunc/lcr-driver/internal/logger"
	"github.com/wfunc/lcr-driver/internal/meter"
	"github.com/wfunc/lcr-driver/internal/scpi"
	"github.com/wfunc/lcr-driver/internal/transport"
	"go.uber.org/zap"
)

// 版本信息
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Meter 879B与891驱动的公共操作
type Meter interface {
	Identify() (scpi.Value, error)
	Fetch() (scpi.Value, error)
	AutoFetch(limit int) *scpi.Stream
	Conn() *meter.Conn
	Close() error
}

func main() {
	// 命令行参数
	var (
		configPath  = flag.String("config", "", "配置文件路径")
		portName    = flag.String("port", "", "串口设备（覆盖配置文件）")
		model       = flag.String("model", "", "仪表型号: 879b/891（覆盖配置文件）")
		count       = flag.Int("n", 0, "monitor采样数量，0表示不限")
		showVersion = flag.Bool("version", false, "显示版本信息")
		showHelp    = flag.Bool("help", false, "显示帮助信息")
	)

	flag.Parse()

	// 显示版本信息
	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	// 显示帮助信息
	if *showHelp || flag.NArg() == 0 {
		printHelp()
		if *showHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// 加载配置
	if err := config.Init(*configPath); err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Get()

	// 初始化日志系统
	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Printf("初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Cleanup()

	// 命令行覆盖配置
	if *portName != "" {
		cfg.Serial.Port = *portName
	}
	if *model != "" {
		cfg.Meter.Model = *model
	}

	// 监听配置变化（monitor模式下可能长时间运行）
	config.Watch(func(newCfg *config.Config) {
		logger.Info("配置已更新")
	})

	if err := run(cfg, flag.Args(), *count); err != nil {
		logger.Error("命令执行失败", zap.Error(err))
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

// run 连接仪表并执行子命令
func run(cfg *config.Config, args []string, count int) error {
	m, err := connect(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	switch args[0] {
	case "idn":
		return cmdIdentify(m)
	case "fetch":
		return cmdFetch(m)
	case "monitor":
		return cmdMonitor(m, count)
	case "freq":
		return cmdFrequency(m, args[1:])
	default:
		return apperrors.Newf(apperrors.ErrInvalidParam, "未知命令 %q", args[0])
	}
}

// connect 按配置型号打开对应的驱动
func connect(cfg *config.Config) (Meter, error) {
	serialCfg := &transport.Config{
		Port:        cfg.Serial.Port,
		BaudRate:    cfg.Serial.BaudRate,
		DataBits:    cfg.Serial.DataBits,
		StopBits:    cfg.Serial.StopBits,
		Parity:      cfg.Serial.Parity,
		ReadTimeout: cfg.Serial.ReadTimeout,
	}
	opts := &meter.Options{
		PostCommandDelay: cfg.Meter.PostCommandDelay,
		NullSentinels:    cfg.Meter.NullSentinels,
	}

	logger.Info("连接仪表",
		zap.String("port", serialCfg.Port),
		zap.String("model", cfg.Meter.Model),
	)

	switch cfg.Meter.Model {
	case "879b", "878b":
		return meter.Connect879B(serialCfg, opts)
	case "891":
		return meter.Connect891(serialCfg, opts)
	default:
		return nil, apperrors.Newf(apperrors.ErrInvalidParam,
			"仪表型号 %q 无效，可选: 879b/878b/891", cfg.Meter.Model)
	}
}

// cmdIdentify 查询并打印仪表标识
func cmdIdentify(m Meter) error {
	v, err := m.Identify()
	if err != nil {
		return err
	}
	fmt.Println(v)
	return nil
}

// cmdFetch 读取一次测量值
func cmdFetch(m Meter) error {
	v, err := m.Fetch()
	if err != nil {
		return err
	}
	fmt.Println(v)
	return nil
}

// cmdMonitor 自动取数模式，持续打印测量值直到Ctrl+C或达到采样数量
func cmdMonitor(m Meter, count int) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// 收到信号后关闭连接，中断阻塞中的读取
	go func() {
		sig := <-sigCh
		logger.Info("收到退出信号", zap.String("signal", sig.String()))
		m.Close()
	}()

	stream := m.AutoFetch(count)
	for {
		v, err := stream.Next()
		if err != nil {
			if apperrors.Is(err, apperrors.ErrEndOfStream) ||
				apperrors.Is(err, apperrors.ErrNotConnected) {
				break
			}
			// 单条解码失败不终止监测，下一条推送可能是完好的
			if apperrors.Is(err, apperrors.ErrDecodeEmpty) ||
				apperrors.Is(err, apperrors.ErrDecodeInvalid) {
				logger.Warn("读数解码失败", zap.Error(err))
				continue
			}
			return err
		}
		fmt.Println(v)
	}

	logger.Info("自动取数结束", zap.Int("samples", stream.Count()))
	return nil
}

// cmdFrequency 设置或查询测试频率
func cmdFrequency(m Meter, args []string) error {
	// 无参数时查询当前频率
	if len(args) == 0 {
		switch d := m.(type) {
		case *meter.BKP879B:
			v, err := d.GetFrequency()
			if err != nil {
				return err
			}
			fmt.Println(v)
		case *meter.BKP891:
			hz, err := d.GetFrequency()
			if err != nil {
				return err
			}
			fmt.Printf("%gHz\n", hz)
		}
		return nil
	}

	hz, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return apperrors.Newf(apperrors.ErrInvalidParam, "频率 %q 不是数值", args[0])
	}

	switch d := m.(type) {
	case *meter.BKP879B:
		return d.SetFrequency(int(hz))
	case *meter.BKP891:
		return d.SetFrequency(hz)
	}
	return nil
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Printf("LCR表命令行工具\n")
	fmt.Printf("版本: %s\n", Version)
	fmt.Printf("构建时间: %s\n", BuildTime)
	fmt.Printf("Git提交: %s\n", GitCommit)
}

// printHelp 打印帮助信息
func printHelp() {
	fmt.Printf(`LCR表命令行工具 - BK Precision 879B/878B/891

用法: lcrctl [选项] <命令>

命令:
  idn            查询仪表标识
  fetch          读取一次测量值
  monitor        自动取数模式，持续打印测量值
  freq [Hz]      设置或查询测试频率

选项:
  -config string  配置文件路径
  -port string    串口设备（覆盖配置文件）
  -model string   仪表型号: 879b/891（覆盖配置文件）
  -n int          monitor采样数量，0表示不限
  -version        显示版本信息
  -help           显示帮助信息

示例:
  lcrctl -port /dev/ttyUSB0 -model 879b idn
  lcrctl -model 891 freq 1000
  lcrctl -model 879b -n 10 monitor
`)
}
