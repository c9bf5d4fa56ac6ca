package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDefaults(t *testing.T) {
	// 无配置文件时应使用默认配置
	require.NoError(t, Init(""))

	cfg := Get()
	require.NotNil(t, cfg)

	// 串口默认值：仪表固定9600 8N1
	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)
	assert.Equal(t, 8, cfg.Serial.DataBits)
	assert.Equal(t, 1, cfg.Serial.StopBits)
	assert.Equal(t, "N", cfg.Serial.Parity)

	// 仪表默认值
	assert.Equal(t, "879b", cfg.Meter.Model)
	assert.Equal(t, []string{"N", "----"}, cfg.Meter.NullSentinels)
	assert.Positive(t, cfg.Meter.PostCommandDelay)

	// 日志默认值
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "lcr-driver.log", cfg.Log.File.Filename)
}

func TestAccessors(t *testing.T) {
	require.NoError(t, Init(""))

	assert.Equal(t, 9600, GetInt("serial.baud_rate"))
	assert.Equal(t, "879b", GetString("meter.model"))
	assert.True(t, IsSet("serial.port"))

	Set("meter.model", "891")
	assert.Equal(t, "891", GetString("meter.model"))
}
