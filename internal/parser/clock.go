package parser

import "time"

// Clock 时钟抽象，便于测试中注入可控时间
// time.Time携带单调时钟读数，Sub计算不受系统时间调整影响
type Clock interface {
	Now() time.Time
}

// systemClock 默认时钟实现
type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// seconds 计算两个时间点之间的整秒时长
func seconds(c Clock, start time.Time) int64 {
	return int64(c.Now().Sub(start) / time.Second)
}
