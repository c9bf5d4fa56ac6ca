package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	apperrors "github.com/wfunc/lcr-driver/internal/errors"
	"github.com/wfunc/lcr-driver/internal/meter"
	"github.com/wfunc/lcr-driver/internal/transport"
)

// testMeter 创建接到脚本传输的879B驱动（1ms命令间隔）
func testMeter(lines []string, err error) Meter {
	script := transport.NewScript(lines, err)
	return meter.NewBKP879B(meter.NewConn(script, nil, time.Millisecond))
}

func TestMonitorSkipsGarbledLine(t *testing.T) {
	// 中间夹杂一条空行：监测不终止，后续读数继续输出
	m := testMeter([]string{"1.0E-01,2.0E-01", "", "1.1E-01,2.1E-01"},
		apperrors.New(apperrors.ErrNotConnected))

	require.NoError(t, cmdMonitor(m, 0))
}

func TestMonitorStopsOnTransportFailure(t *testing.T) {
	// 传输失败必须上报，不能静默结束
	m := testMeter([]string{"1.0E-01,2.0E-01"},
		apperrors.New(apperrors.ErrSerialPortRead, "设备已断开"))

	err := cmdMonitor(m, 0)
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.ErrSerialPortRead))
}

func TestMonitorHonorsLimit(t *testing.T) {
	m := testMeter([]string{"1.0E-01,2.0E-01", "1.1E-01,2.1E-01", "1.2E-01,2.2E-01"}, nil)

	require.NoError(t, cmdMonitor(m, 2))
}
