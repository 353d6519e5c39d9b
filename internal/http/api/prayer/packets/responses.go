package packets

type InstantResponse struct {
	Name string `json:"name"`
	Time string `json:"time"`
}

type DailyTimesResponse struct {
	Day      string            `json:"day"`
	Times    []InstantResponse `json:"times"`
	Statuses map[string]string `json:"statuses"`
}

type WindowResponse struct {
	CurrentPrayer string  `json:"current_prayer"`
	NextPrayer    string  `json:"next_prayer"`
	Remaining     string  `json:"remaining"`
	Progress      float64 `json:"progress"`
}

type CycleStatusResponse struct {
	Day    string `json:"day"`
	Prayer string `json:"prayer"`
	Status string `json:"status"`
}

type StatusesResponse struct {
	Day      string            `json:"day"`
	Statuses map[string]string `json:"statuses"`
}

type NotificationResponse struct {
	Day    string `json:"day,omitempty"`
	Prayer string `json:"prayer"`
	Mode   string `json:"mode"`
}

type ArmNextDayResponse struct {
	Day   string `json:"day"`
	Armed bool   `json:"armed"`
}
