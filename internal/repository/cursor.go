package repository

import (
	"encoding/base64"
	"time"
)

const (
	timeFormat = "2006-01-02T15:04:05.999Z07:00"

	// PageDefaultNum bounds for cursor pagination
	PageDefaultNum = 10
	PageMaxNum     = 30
)

// EncodeCursor will encode the time to a base64-encoded cursor
func EncodeCursor(t time.Time) string {
	timeString := t.Format(timeFormat)
	return base64.StdEncoding.EncodeToString([]byte(timeString))
}

// DecodeCursor will decode the cursor to a time. An empty cursor
// decodes to the zero time so the first page starts at the beginning.
func DecodeCursor(encodedTime string) (time.Time, error) {
	if encodedTime == "" {
		return time.Time{}, nil
	}

	byt, err := base64.StdEncoding.DecodeString(encodedTime)
	if err != nil {
		return time.Time{}, err
	}

	return time.Parse(timeFormat, string(byt))
}

// PageVerify clamps the page size into the allowed range.
func PageVerify(num *int64) {
	if *num <= 0 {
		*num = PageDefaultNum
	}
	if *num > PageMaxNum {
		*num = PageMaxNum
	}
}
