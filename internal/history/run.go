// Package history persists analysis runs in a local SQLite database.
package history

import "time"

// Run is one recorded analysis. Report holds the encoded report and is
// only populated by Get.
type Run struct {
	ID         string
	RecordedAt time.Time
	Table      string
	SampleSize int
	Outliers   int
	Rounds     int
	Mean       string
	StopReason string
	Report     []byte
}
