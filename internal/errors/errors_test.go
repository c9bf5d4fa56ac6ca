package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

// ErrorsTestSuite 错误包测试套件
type ErrorsTestSuite struct {
	suite.Suite
}

// 测试创建新错误
func (suite *ErrorsTestSuite) TestNew() {
	// 测试基本错误创建
	err := New(ErrInvalidParam)
	suite.NotNil(err)
	suite.Equal(ErrInvalidParam, err.Code)
	suite.Equal("无效的参数", err.Message)
	suite.Empty(err.Details)

	// 测试带详情的错误
	err = New(ErrSerialPortOpen, "/dev/ttyUSB0 不存在")
	suite.NotNil(err)
	suite.Equal(ErrSerialPortOpen, err.Code)
	suite.Equal("串口打开失败", err.Message)
	suite.Equal("/dev/ttyUSB0 不存在", err.Details)

	// 测试多个详情
	err = New(ErrSerialTimeout, "读超时", "端口: /dev/ttyUSB0", "等待: 10s")
	suite.Equal("读超时; 端口: /dev/ttyUSB0; 等待: 10s", err.Details)
}

// 测试格式化错误创建
func (suite *ErrorsTestSuite) TestNewf() {
	err := Newf(ErrInvalidParam, "频率 %d 不在允许范围内", 90)
	suite.NotNil(err)
	suite.Equal(ErrInvalidParam, err.Code)
	suite.Equal("频率 90 不在允许范围内", err.Details)
}

// 测试错误包装
func (suite *ErrorsTestSuite) TestWrap() {
	// 包装标准错误
	originalErr := errors.New("原始错误")
	wrappedErr := Wrap(originalErr, ErrSerialPortRead)
	suite.NotNil(wrappedErr)
	suite.Equal(ErrSerialPortRead, wrappedErr.Code)
	suite.Equal("原始错误", wrappedErr.Details)
	suite.Equal(originalErr, wrappedErr.Cause)

	// 包装nil错误
	nilErr := Wrap(nil, ErrUnknown)
	suite.Nil(nilErr)

	// 包装已有的AppError
	appErr := New(ErrSerialTimeout, "读超时")
	wrappedAppErr := Wrap(appErr, ErrSerialPortRead, "额外信息")
	suite.Equal(ErrSerialTimeout, wrappedAppErr.Code) // 保留原始错误码
	suite.Contains(wrappedAppErr.Details, "额外信息")
}

// 测试格式化错误包装
func (suite *ErrorsTestSuite) TestWrapf() {
	originalErr := errors.New("device or resource busy")
	wrappedErr := Wrapf(originalErr, ErrSerialPortOpen, "打开 %s 失败", "/dev/ttyUSB1")
	suite.NotNil(wrappedErr)
	suite.Equal(ErrSerialPortOpen, wrappedErr.Code)
	suite.Equal("打开 /dev/ttyUSB1 失败", wrappedErr.Details)
	suite.Equal(originalErr, wrappedErr.Cause)
}

// 测试错误码判断
func (suite *ErrorsTestSuite) TestIs() {
	err := New(ErrSerialTimeout)
	suite.True(Is(err, ErrSerialTimeout))
	suite.False(Is(err, ErrDecodeInvalid))
	suite.False(Is(nil, ErrSerialTimeout))

	// 测试标准错误
	standardErr := errors.New("标准错误")
	suite.False(Is(standardErr, ErrUnknown))
}

// 测试获取错误码
func (suite *ErrorsTestSuite) TestGetCode() {
	// AppError
	appErr := New(ErrDecodeInvalid)
	suite.Equal(ErrDecodeInvalid, GetCode(appErr))

	// 标准错误
	standardErr := errors.New("标准错误")
	suite.Equal(ErrUnknown, GetCode(standardErr))

	// nil错误
	suite.Equal(ErrorCode(0), GetCode(nil))
}

// 测试超时判断
func (suite *ErrorsTestSuite) TestIsTimeout() {
	suite.True(IsTimeout(New(ErrSerialTimeout)))
	suite.True(IsTimeout(New(ErrTimeout)))
	suite.False(IsTimeout(New(ErrDecodeEmpty)))
	suite.False(IsTimeout(nil))
}

// 测试错误链
func (suite *ErrorsTestSuite) TestUnwrap() {
	originalErr := errors.New("底层错误")
	appErr := Wrap(originalErr, ErrSerialPortRead)
	suite.True(errors.Is(appErr, originalErr))
}

// 测试可重试判断
func (suite *ErrorsTestSuite) TestIsRetryable() {
	suite.True(IsRetryable(New(ErrSerialTimeout)))
	suite.True(IsRetryable(New(ErrDeviceBusy)))
	suite.False(IsRetryable(New(ErrInvalidParam)))
	suite.False(IsRetryable(nil))
}

// 测试严重错误判断
func (suite *ErrorsTestSuite) TestIsCritical() {
	suite.True(IsCritical(New(ErrSerialPortOpen)))
	suite.True(IsCritical(New(ErrConfigLoad)))
	suite.False(IsCritical(New(ErrSerialTimeout)))
	suite.False(IsCritical(nil))
}

// 测试错误消息格式
func (suite *ErrorsTestSuite) TestErrorString() {
	err := New(ErrSerialTimeout)
	suite.Equal("[2004] 串口通信超时", err.Error())

	err = New(ErrSerialTimeout, "等待 10s 无响应")
	suite.Equal("[2004] 串口通信超时: 等待 10s 无响应", err.Error())
}

func TestErrorsTestSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}
