package entity

// RawCandle is one historical candle as returned by the brokerage API.
// Timestamp is an ISO-8601 string such as "2024-01-03T00:00:00+05:30".
type RawCandle struct {
	Timestamp string
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// BhavcopyFile is one CSV member of a bulk exchange archive.
type BhavcopyFile struct {
	Name string
	Data []byte
}
