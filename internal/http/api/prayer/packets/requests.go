package packets

import "time"

type CycleStatusRequest struct {
	Day    string `json:"day" binding:"required"`
	Prayer string `json:"prayer" binding:"required"`
}

type SetNotificationRequest struct {
	Day    string     `json:"day" binding:"required"`
	Prayer string     `json:"prayer" binding:"required"`
	Mode   string     `json:"mode" binding:"required"`
	FireAt *time.Time `json:"fire_at"` // required unless mode is Silent
}

type SetDefaultNotificationRequest struct {
	Prayer string `json:"prayer" binding:"required"`
	Mode   string `json:"mode" binding:"required"`
}

type ArmNextDayRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Method    string  `json:"method"`
	Madhab    string  `json:"madhab"`
}
