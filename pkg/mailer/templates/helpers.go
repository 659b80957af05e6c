package templates

import "time"

type Option func(*NoticeData)

func WithIP(ip string) Option        { return func(d *NoticeData) { d.IP = ip } }
func WithUserAgent(ua string) Option { return func(d *NoticeData) { d.UserAgent = ua } }
func WithTime(t time.Time) Option {
	return func(d *NoticeData) {
		d.TimeAt = t.UTC()
		d.Time = t.UTC().Format("02 Jan 2006 15:04 MST")
	}
}

// NewEmployeeNoticeData builds the data for the "new employee registered" notice.
func NewEmployeeNoticeData(appName, recipient, name, employeeID, role string, opts ...Option) NoticeData {
	d := NoticeData{
		AppName:    appName,
		Recipient:  recipient,
		Name:       name,
		EmployeeID: employeeID,
		Role:       role,
	}
	for _, o := range opts {
		o(&d)
	}
	return d
}
