package meter

import (
	"fmt"
	"strings"

	apperrors "github.com/wfunc/lcr-driver/internal/errors"
	"github.com/wfunc/lcr-driver/internal/scpi"
	"github.com/wfunc/lcr-driver/internal/transport"
)

// 879B面板允许的参数集合
var (
	frequencies879B   = map[int]bool{100: true, 120: true, 1000: true, 10000: true}
	primaryMeasures   = map[string]bool{"L": true, "C": true, "R": true, "Z": true}
	secondaryMeasures = map[string]bool{"D": true, "Q": true, "THETA": true, "ESR": true}
	toleranceRanges   = map[int]bool{1: true, 5: true, 10: true, 20: true}
)

// BKP879B BK Precision 879B LCR表驱动，878B同样适用。
// 命令助记符与879B编程手册一致。
type BKP879B struct {
	conn *Conn
}

// NewBKP879B 在已有连接上创建879B驱动
func NewBKP879B(conn *Conn) *BKP879B {
	return &BKP879B{conn: conn}
}

// Connect879B 打开串口并连接879B
func Connect879B(cfg *transport.Config, opts *Options) (*BKP879B, error) {
	conn, err := dial(cfg, opts)
	if err != nil {
		return nil, err
	}
	return NewBKP879B(conn), nil
}

// Conn 返回底层连接
func (m *BKP879B) Conn() *Conn {
	return m.conn
}

// Close 关闭连接
func (m *BKP879B) Close() error {
	return m.conn.Close()
}

// Fetch子系统

// Fetch 读取当前测量值。
// 返回元组：主参数值（浮点）、副参数值（浮点）、容差比较结果（整数或空值）。
func (m *BKP879B) Fetch() (scpi.Value, error) {
	return m.conn.Query("FETCh?")
}

// AutoFetch 进入自动取数模式，limit为采样数量上限（0不限）
func (m *BKP879B) AutoFetch(limit int) *scpi.Stream {
	return m.conn.AutoFetch(limit)
}

// Frequency子系统

// SetFrequency 设置测试频率（Hz），可选值：100、120、1000、10000
func (m *BKP879B) SetFrequency(hz int) error {
	if !frequencies879B[hz] {
		return apperrors.Newf(apperrors.ErrInvalidParam,
			"频率 %d 无效，可选: 100/120/1000/10000", hz)
	}
	return m.conn.Exec(fmt.Sprintf("FREQuency %d", hz))
}

// GetFrequency 查询测试频率。
// 仪表返回文本："100Hz"、"120Hz"、"1kHz"或"10kHz"。
func (m *BKP879B) GetFrequency() (scpi.Value, error) {
	return m.conn.Query("FREQuency?")
}

// Function子系统

// SetPrimary 设置主测量参数：L（电感）、C（电容）、R（电阻）、Z（阻抗）
func (m *BKP879B) SetPrimary(param string) error {
	param = strings.ToUpper(param)
	if !primaryMeasures[param] {
		return apperrors.Newf(apperrors.ErrInvalidParam,
			"主参数 %q 无效，可选: L/C/R/Z", param)
	}
	return m.conn.Exec(fmt.Sprintf("FUNCtion:impa %s", param))
}

// SetSecondary 设置副测量参数：D（损耗因数）、Q（品质因数）、
// THETA（相角）、ESR（等效串联电阻）
func (m *BKP879B) SetSecondary(param string) error {
	param = strings.ToUpper(param)
	if !secondaryMeasures[param] {
		return apperrors.Newf(apperrors.ErrInvalidParam,
			"副参数 %q 无效，可选: D/Q/THETA/ESR", param)
	}
	return m.conn.Exec(fmt.Sprintf("FUNCtion:impb %s", param))
}

// GetPrimary 查询主测量参数，返回L、C、R或Z
func (m *BKP879B) GetPrimary() (scpi.Value, error) {
	return m.conn.Query("FUNCtion: impa?")
}

// GetSecondary 查询副测量参数，返回D、Q、THETA或ESR
func (m *BKP879B) GetSecondary() (scpi.Value, error) {
	return m.conn.Query("FUNCtion: impb?")
}

// SetEquivSeries 设置为串联等效模式
func (m *BKP879B) SetEquivSeries() error {
	return m.conn.Exec("FUNCtion:EQUivalent SERies")
}

// SetEquivParallel 设置为并联等效模式
func (m *BKP879B) SetEquivParallel() error {
	return m.conn.Exec("FUNCtion:EQUivalent parallel")
}

// GetEquiv 查询等效模式，返回SER或PAL
func (m *BKP879B) GetEquiv() (scpi.Value, error) {
	return m.conn.Query("FUNCtion:EQUivalent?")
}

// Calculate子系统

// SetRelative 启用或关闭相对测量
func (m *BKP879B) SetRelative(on bool) error {
	if on {
		return m.conn.Exec("CALCulate:RELative:STATe ON")
	}
	return m.conn.Exec("CALCulate:RELative:STATe OFF")
}

// GetRelativeState 查询相对测量开关状态
func (m *BKP879B) GetRelativeState() (scpi.Value, error) {
	return m.conn.Query("CALCulate:RELative:STATe?")
}

// GetRelativeValue 查询相对偏移值，相对测量未启用时返回空值
func (m *BKP879B) GetRelativeValue() (scpi.Value, error) {
	return m.conn.Query("CALCulate:RELative:VALUe?")
}

// SetToleranceState 启用或关闭容差比较
func (m *BKP879B) SetToleranceState(on bool) error {
	if on {
		return m.conn.Exec("CALCulate:TOLerance:STATe ON")
	}
	return m.conn.Exec("CALCulate:TOLerance:STATe OFF")
}

// SetToleranceRange 设置容差范围，可选1、5、10、20（百分比）
func (m *BKP879B) SetToleranceRange(pct int) error {
	if !toleranceRanges[pct] {
		return apperrors.Newf(apperrors.ErrInvalidParam,
			"容差范围 %d 无效，可选: 1/5/10/20", pct)
	}
	return m.conn.Exec(fmt.Sprintf("CALCulate:TOLerance:RANGe %d", pct))
}

// GetToleranceState 查询容差比较开关状态
func (m *BKP879B) GetToleranceState() (scpi.Value, error) {
	return m.conn.Query("CALCulate:TOLerance:STATe?")
}

// GetToleranceNominal 查询容差标称值，不可用时返回空值
func (m *BKP879B) GetToleranceNominal() (scpi.Value, error) {
	return m.conn.Query("CALCulate:TOLerance:NOMinal?")
}

// GetToleranceValue 查询容差百分比值，不可用时返回空值
func (m *BKP879B) GetToleranceValue() (scpi.Value, error) {
	return m.conn.Query("CALCulate:TOLerance:VALUe?")
}

// GetToleranceRange 查询容差档位，返回BIN1~BIN4或空值
func (m *BKP879B) GetToleranceRange() (scpi.Value, error) {
	return m.conn.Query("CALCulate:TOLerance:RANGe?")
}

// SetRecordingState 启用或关闭记录功能
func (m *BKP879B) SetRecordingState(on bool) error {
	if on {
		return m.conn.Exec("CALCulate:RECording:STATe ON")
	}
	return m.conn.Exec("CALCulate:RECording:STATe OFF")
}

// GetRecordingState 查询记录功能开关状态
func (m *BKP879B) GetRecordingState() (scpi.Value, error) {
	return m.conn.Query("CALCulate:RECording:STATe?")
}

// GetRecordingMax 查询记录的最大值（主、副参数的元组）
func (m *BKP879B) GetRecordingMax() (scpi.Value, error) {
	return m.conn.Query("CALCulate:RECording:MAXimum?")
}

// GetRecordingMin 查询记录的最小值（主、副参数的元组）
func (m *BKP879B) GetRecordingMin() (scpi.Value, error) {
	return m.conn.Query("CALCulate:RECording:MINimum?")
}

// GetRecordingAvg 查询记录的平均值（主、副参数的元组）
func (m *BKP879B) GetRecordingAvg() (scpi.Value, error) {
	return m.conn.Query("CALCulate:RECording:AVERage?")
}

// GetRecordingPresent 查询记录功能的当前值（主、副参数的元组）
func (m *BKP879B) GetRecordingPresent() (scpi.Value, error) {
	return m.conn.Query("CALCulate:RECording:PRESent?")
}

// IEEE 488命令

// LocalLockout 锁定前面板
func (m *BKP879B) LocalLockout() error {
	return m.conn.Exec("*LLO")
}

// GoLocal 解除前面板锁定，仪表回到本地状态
func (m *BKP879B) GoLocal() error {
	return m.conn.Exec("*GLO")
}

// Identify 查询仪表标识（型号、固件版本、序列号）
func (m *BKP879B) Identify() (scpi.Value, error) {
	return m.conn.Query("*IDN?")
}
