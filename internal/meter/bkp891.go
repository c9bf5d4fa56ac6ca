package meter

import (
	"fmt"
	"strconv"
	"time"

	apperrors "github.com/wfunc/lcr-driver/internal/errors"
	"github.com/wfunc/lcr-driver/internal/scpi"
	"github.com/wfunc/lcr-driver/internal/transport"
)

// Measurement 891的测量功能（主/副参数组合）
type Measurement int

const (
	MeasurementCSQ Measurement = iota
	MeasurementCSD
	MeasurementCSR
	MeasurementCPQ
	MeasurementCPD
	MeasurementCPR
	MeasurementCPG
	MeasurementLSQ
	MeasurementLSD
	MeasurementLSR
	MeasurementLPQ
	MeasurementLPD
	MeasurementLPR
	MeasurementLPG
	MeasurementZTH
	MeasurementYTH
	MeasurementRX
	MeasurementGB
	MeasurementDCR
)

var measurementNames = [...]string{
	"CSQ", "CSD", "CSR", "CPQ", "CPD", "CPR", "CPG",
	"LSQ", "LSD", "LSR", "LPQ", "LPD", "LPR", "LPG",
	"ZTH", "YTH", "RX", "GB", "DCR",
}

// String 返回测量功能名
func (m Measurement) String() string {
	if m < 0 || int(m) >= len(measurementNames) {
		return fmt.Sprintf("Measurement(%d)", int(m))
	}
	return measurementNames[m]
}

// MeasSpeed 测量速度
type MeasSpeed int

const (
	SpeedSlow MeasSpeed = 1
	SpeedFast MeasSpeed = 2
)

// MeasRange 量程模式
type MeasRange int

const (
	RangeHold MeasRange = 0
	RangeAuto MeasRange = 1
)

// 891的频率与电平范围
const (
	minFrequency891 = 20.0
	maxFrequency891 = 300000.0
)

// BKP891 BK Precision 891 LCR表驱动。
// 命令助记符与891编程手册一致。
type BKP891 struct {
	conn *Conn
}

// NewBKP891 在已有连接上创建891驱动
func NewBKP891(conn *Conn) *BKP891 {
	return &BKP891{conn: conn}
}

// Connect891 打开串口并连接891
func Connect891(cfg *transport.Config, opts *Options) (*BKP891, error) {
	conn, err := dial(cfg, opts)
	if err != nil {
		return nil, err
	}
	return NewBKP891(conn), nil
}

// Conn 返回底层连接
func (m *BKP891) Conn() *Conn {
	return m.conn
}

// Close 关闭连接
func (m *BKP891) Close() error {
	return m.conn.Close()
}

// Calibrate子系统

// Calibrate 启动校准。openCal为true时执行开路校准，否则执行短路校准。
func (m *BKP891) Calibrate(openCal bool) error {
	if openCal {
		return m.conn.Exec("CALibrate:OPEN")
	}
	return m.conn.Exec("CALibrate:SHORt")
}

// CalibrateBusy 查询校准状态：0完成、1进行中、-1失败
func (m *BKP891) CalibrateBusy() (scpi.Value, error) {
	return m.conn.Query("CALibrate:BUSY?")
}

// Display子系统

// SetDisplayFont 设置显示字体：large为true时用大字体
func (m *BKP891) SetDisplayFont(large bool) error {
	return m.conn.Exec(fmt.Sprintf("DISPlay:FONT %d", boolToInt(large)))
}

// GetDisplayFont 查询显示字体：0普通、1大字体
func (m *BKP891) GetDisplayFont() (scpi.Value, error) {
	return m.conn.Query("DISPlay:FONT?")
}

// SetDisplayMode 设置数字显示模式：scientific为true时用科学计数法
func (m *BKP891) SetDisplayMode(scientific bool) error {
	return m.conn.Exec(fmt.Sprintf("DISPlay:MODE %d", boolToInt(scientific)))
}

// GetDisplayMode 查询数字显示模式：0十进制、1科学计数法
func (m *BKP891) GetDisplayMode() (scpi.Value, error) {
	return m.conn.Query("DISPlay:MODE?")
}

// SetDisplayPage 切换显示页：0分选、1测量、2扫描、3系统
func (m *BKP891) SetDisplayPage(page int) error {
	if page < 0 || page > 3 {
		return apperrors.Newf(apperrors.ErrInvalidParam, "显示页 %d 无效，范围0-3", page)
	}
	return m.conn.Exec(fmt.Sprintf("DISPlay:PAGE %d", page))
}

// GetDisplayPage 查询当前显示页
func (m *BKP891) GetDisplayPage() (scpi.Value, error) {
	return m.conn.Query("DISPlay:PAGE?")
}

// Fetch子系统

// Fetch 读取当前测量的主、副参数值
func (m *BKP891) Fetch() (scpi.Value, error) {
	return m.conn.Query("FETCh?")
}

// AutoFetch 进入自动取数模式，limit为采样数量上限（0不限）
func (m *BKP891) AutoFetch(limit int) *scpi.Stream {
	return m.conn.AutoFetch(limit)
}

// Format子系统

// SetFormat 设置数字格式：binary为true时返回纯数字，否则带单位的ASCII
func (m *BKP891) SetFormat(binary bool) error {
	return m.conn.Exec(fmt.Sprintf("FORMat %d", boolToInt(binary)))
}

// GetFormat 查询数字格式（ASCii或REAL）
func (m *BKP891) GetFormat() (scpi.Value, error) {
	return m.conn.Query("FORMat?")
}

// Frequency子系统

// SetFrequency 设置测试频率（Hz），范围20Hz~300kHz
func (m *BKP891) SetFrequency(hz float64) error {
	if hz < minFrequency891 || hz > maxFrequency891 {
		return apperrors.Newf(apperrors.ErrInvalidParam,
			"频率 %g 无效，范围 %g-%g Hz", hz, minFrequency891, maxFrequency891)
	}
	return m.conn.Exec("FREQuency " + strconv.FormatFloat(hz, 'f', -1, 64))
}

// GetFrequency 查询测试频率（Hz）
func (m *BKP891) GetFrequency() (float64, error) {
	v, err := m.conn.Query("FREQuency?")
	if err != nil {
		return 0, err
	}
	f, ok := v.Float()
	if !ok {
		return 0, apperrors.Newf(apperrors.ErrDecodeInvalid, "频率响应不是数值: %s", v)
	}
	return f, nil
}

// Level子系统

// SetACLevel 设置测试信号电平，可选0.5或1.0（Vrms）
func (m *BKP891) SetACLevel(level float64) error {
	if level != 0.5 && level != 1.0 {
		return apperrors.Newf(apperrors.ErrInvalidParam, "电平 %g 无效，可选: 0.5/1.0", level)
	}
	return m.conn.Exec("LEVel:AC " + strconv.FormatFloat(level, 'f', -1, 64))
}

// GetACLevel 查询测试信号电平
func (m *BKP891) GetACLevel() (scpi.Value, error) {
	return m.conn.Query("LEVel:AC?")
}

// Measurement子系统

// SetFunction 设置测量功能
func (m *BKP891) SetFunction(funct Measurement) error {
	if funct < MeasurementCSQ || funct > MeasurementDCR {
		return apperrors.Newf(apperrors.ErrInvalidParam, "测量功能 %d 无效", int(funct))
	}
	return m.conn.Exec(fmt.Sprintf("MEASurement:FUNCtion %d", int(funct)))
}

// GetFunction 查询测量功能
func (m *BKP891) GetFunction() (scpi.Value, error) {
	return m.conn.Query("MEASurement:FUNCtion?")
}

// SetSpeed 设置测量速度
func (m *BKP891) SetSpeed(speed MeasSpeed) error {
	if speed != SpeedSlow && speed != SpeedFast {
		return apperrors.Newf(apperrors.ErrInvalidParam, "测量速度 %d 无效", int(speed))
	}
	return m.conn.Exec(fmt.Sprintf("MEASurement:SPEED %d", int(speed)))
}

// GetSpeed 查询测量速度
func (m *BKP891) GetSpeed() (scpi.Value, error) {
	return m.conn.Query("MEASurement:SPEED?")
}

// SetRange 设置量程模式：自动或保持
func (m *BKP891) SetRange(r MeasRange) error {
	if r != RangeHold && r != RangeAuto {
		return apperrors.Newf(apperrors.ErrInvalidParam, "量程模式 %d 无效", int(r))
	}
	return m.conn.Exec(fmt.Sprintf("MEASurement:RANGe %d", int(r)))
}

// GetRange 查询量程模式
func (m *BKP891) GetRange() (scpi.Value, error) {
	return m.conn.Query("MEASurement:RANGe?")
}

// System子系统

// SetBrightness 设置屏幕亮度，范围0-9
func (m *BKP891) SetBrightness(level int) error {
	if level < 0 || level > 9 {
		return apperrors.Newf(apperrors.ErrInvalidParam, "亮度 %d 无效，范围0-9", level)
	}
	return m.conn.Exec(fmt.Sprintf("SYStem:BRIGhtness %d", level))
}

// GetBrightness 查询屏幕亮度
func (m *BKP891) GetBrightness() (scpi.Value, error) {
	return m.conn.Query("SYStem:BRIGhtness?")
}

// SetBeeper 设置蜂鸣器开关
func (m *BKP891) SetBeeper(on bool) error {
	if on {
		return m.conn.Exec("SYStem:BEEPer ON")
	}
	return m.conn.Exec("SYStem:BEEPer OFF")
}

// GetBeeper 查询蜂鸣器状态
func (m *BKP891) GetBeeper() (scpi.Value, error) {
	return m.conn.Query("SYStem:BEEPer?")
}

// SetDate 设置仪表日期
func (m *BKP891) SetDate(t time.Time) error {
	return m.conn.Exec(fmt.Sprintf("SYStem:DATE %d,%d,%d", t.Year(), int(t.Month()), t.Day()))
}

// GetDate 查询仪表日期
func (m *BKP891) GetDate() (scpi.Value, error) {
	return m.conn.Query("SYStem:DATE?")
}

// SetTime 设置仪表时间
func (m *BKP891) SetTime(t time.Time) error {
	return m.conn.Exec(fmt.Sprintf("SYStem:TIME %d,%d,%d", t.Hour(), t.Minute(), t.Second()))
}

// GetTime 查询仪表时间
func (m *BKP891) GetTime() (scpi.Value, error) {
	return m.conn.Query("SYStem:TIME?")
}

// GetError 查询错误栈的第一条错误
func (m *BKP891) GetError() (scpi.Value, error) {
	return m.conn.Query("SYStem:ERRor?")
}

// IEEE 488.2命令

// Identify 查询仪表标识（型号、固件版本、序列号）
func (m *BKP891) Identify() (scpi.Value, error) {
	return m.conn.Query("*IDN?")
}

// ClearStatus 清除仪表状态（*CLS）
func (m *BKP891) ClearStatus() error {
	return m.conn.Exec("*CLS")
}

// Reset 复位仪表（*RST）
func (m *BKP891) Reset() error {
	return m.conn.Exec("*RST")
}

// SaveConfiguration 把当前配置保存到指定存储位
func (m *BKP891) SaveConfiguration(number int) error {
	if number < 0 {
		return apperrors.Newf(apperrors.ErrInvalidParam, "存储位 %d 无效", number)
	}
	return m.conn.Exec(fmt.Sprintf("*SAV %d", number))
}

// RecallConfiguration 从指定存储位恢复配置
func (m *BKP891) RecallConfiguration(number int) error {
	if number < 0 {
		return apperrors.Newf(apperrors.ErrInvalidParam, "存储位 %d 无效", number)
	}
	return m.conn.Exec(fmt.Sprintf("*RCL %d", number))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
