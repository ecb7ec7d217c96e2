package domain

import (
	"database/sql/driver"
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// Date 表示一个日历日，内部存储为自 1970-01-01 起的天数
// 这样既可以直接作为 map 的键，也可以直接做加减法
type Date int32

func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf 取时间所在的日历日（按时间自身的时区计算）
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	u := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return Date(u.Unix() / 86400)
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return 0, fmt.Errorf("日期 %q 格式错误，应为 YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

func (d Date) Time() time.Time {
	return time.Unix(int64(d)*86400, 0).UTC()
}

func (d Date) String() string {
	return d.Time().Format(DateLayout)
}

func (d Date) AddDays(n int) Date {
	return d + Date(n)
}

// DaysSince 返回 d 与 other 之间相差的天数（d - other）
func (d Date) DaysSince(other Date) int {
	return int(d - other)
}

func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		// toml 的本地日期会以 RFC3339 的形式传进来
		t, rfcErr := time.Parse(time.RFC3339, string(text))
		if rfcErr != nil {
			return err
		}
		parsed = DateOf(t)
	}
	*d = parsed
	return nil
}

// Value 让 Date 可以直接写入 postgres 的 date 列
func (d Date) Value() (driver.Value, error) {
	return d.Time(), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = DateOf(v)
	case string:
		return d.UnmarshalText([]byte(v))
	case []byte:
		return d.UnmarshalText(v)
	default:
		return fmt.Errorf("无法将 %T 转换为日期", src)
	}
	return nil
}
