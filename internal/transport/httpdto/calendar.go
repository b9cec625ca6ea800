package httpdto

import "time"

type CalendarEventRequest struct {
	Title    string     `json:"title"`
	Notes    string     `json:"notes"`
	StartsAt time.Time  `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
	AllDay   bool       `json:"all_day"`
}
