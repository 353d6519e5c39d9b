package provider

// response is the subset of the AlAdhan timings payload we consume.
type response struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   struct {
		Timings timings `json:"timings"`
	} `json:"data"`
}

// timings holds the clock strings ("04:55" or "04:55 (AST)") per prayer.
type timings struct {
	Fajr    string `json:"Fajr"`
	Dhuhr   string `json:"Dhuhr"`
	Asr     string `json:"Asr"`
	Maghrib string `json:"Maghrib"`
	Isha    string `json:"Isha"`
}
