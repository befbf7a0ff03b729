package record

import (
	"math"
	"time"
)

// Record is one defect observation.
type Record struct {
	ID         string  `json:"id"`
	Time       string  `json:"time"`
	Quality    string  `json:"qualidade"`
	Occurrence string  `json:"occurrence"`
	Timestamp  float64 `json:"timestamp"`
}

// CreatedAt converts the epoch-seconds timestamp back to an instant.
func (r Record) CreatedAt() time.Time {
	sec, frac := math.Modf(r.Timestamp)
	return time.Unix(int64(sec), int64(math.Round(frac*1e9)))
}

// QualityValue returns the numeric quality, 0 when the stored string is malformed.
func (r Record) QualityValue() float64 {
	return QualityValue(r.Quality)
}

// View is a record as shown in the status list, newest first.
type View struct {
	Record
	Index int  `json:"index"`
	Low   bool `json:"low"`
}

func epochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
