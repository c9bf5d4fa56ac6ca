package scpi

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	apperrors "github.com/wfunc/lcr-driver/internal/errors"
)

var (
	// 科学计数法：必须带指数标记，否则按整数或文本处理
	floatPattern = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]+)?[eE][+-]?[0-9]+$`)
	// 整数：可选符号加纯数字，无小数点无指数
	intPattern = regexp.MustCompile(`^[+-]?[0-9]+$`)
)

// DefaultNullSentinels 879B/878B/891手册中的空值标记。
// 量程内无读数时仪表返回N；显示空白时返回----。
var DefaultNullSentinels = []string{"N", "----"}

// Decoder 响应解码器：把仪表返回的一行文本转成带类型的Value。
// 空值标记列表可配置，不同型号的标记不尽相同。
type Decoder struct {
	nulls []string
}

// NewDecoder 创建解码器。不传空值标记时使用默认列表。
func NewDecoder(nullSentinels ...string) *Decoder {
	if len(nullSentinels) == 0 {
		nullSentinels = DefaultNullSentinels
	}
	return &Decoder{nulls: nullSentinels}
}

// Decode 解码一行响应。对符合约定的仪表输出总是成功；
// 空行和非UTF-8输入报解码错误。
func (d *Decoder) Decode(line string) (Value, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Value{}, apperrors.New(apperrors.ErrDecodeEmpty)
	}
	if !utf8.ValidString(trimmed) {
		return Value{}, apperrors.Newf(apperrors.ErrDecodeInvalid, "响应不是合法的UTF-8: %q", trimmed)
	}

	// 多值响应按顶层逗号切分，各段独立分类，保持顺序。
	// 仪表协议中逗号没有转义形式，所以不存在嵌套。
	if strings.Contains(trimmed, ",") {
		segments := strings.Split(trimmed, ",")
		tuple := make([]Value, 0, len(segments))
		for _, seg := range segments {
			tuple = append(tuple, d.classify(strings.TrimSpace(seg)))
		}
		return TupleValue(tuple), nil
	}

	return d.classify(trimmed), nil
}

// classify 对单个token按固定顺序分类。顺序不可调整：
// ON/OFF和空值标记优先于任何数值匹配；科学计数法要求指数标记，
// 纯数字串永远不会被误判成浮点数。
func (d *Decoder) classify(token string) Value {
	switch {
	case token == "ON":
		return BoolValue(true)
	case token == "OFF":
		return BoolValue(false)
	case d.isNull(token):
		return NullValue()
	case floatPattern.MatchString(token):
		if f, err := strconv.ParseFloat(token, 64); err == nil {
			return FloatValue(f)
		}
		return TextValue(token)
	case intPattern.MatchString(token):
		if n, err := strconv.ParseInt(token, 10, 64); err == nil {
			return IntValue(n)
		}
		// 超出int64表示范围的数字串按文本透传
		return TextValue(token)
	default:
		return TextValue(token)
	}
}

// isNull 判断token是否为空值标记。
// 连字符标记按前缀匹配：空读数显示的连字符个数随量程变化。
func (d *Decoder) isNull(token string) bool {
	for _, s := range d.nulls {
		if token == s {
			return true
		}
		if len(s) > 1 && strings.Count(s, "-") == len(s) && strings.HasPrefix(token, s) {
			return true
		}
	}
	return false
}
